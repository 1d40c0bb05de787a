package runtime

import (
	"errors"
	"reflect"
	"testing"
)

func mustPush(t *testing.T, env *Environment[int], parent Scope) Scope {
	t.Helper()
	s, err := env.Push(parent)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	return s
}

func TestEnvironmentLookupWalksParents(t *testing.T) {
	env := NewEnvironment[int]()
	global := mustPush(t, env, NoScope)
	if err := env.Define(global, "x", 1); err != nil {
		t.Fatalf("define: %v", err)
	}
	inner := mustPush(t, env, global)
	v, owner, ok := env.Lookup(inner, "x")
	if !ok || v != 1 || owner != global {
		t.Fatalf("expected x=1 owned by global, got %d %v %v", v, owner, ok)
	}
	if _, ok := env.LookupLocal(inner, "x"); ok {
		t.Fatalf("x should not be local to the inner scope")
	}
	if _, _, ok := env.Lookup(inner, "missing"); ok {
		t.Fatalf("missing name should not resolve")
	}
}

func TestEnvironmentShadowingLeavesOuterUntouched(t *testing.T) {
	env := NewEnvironment[int]()
	global := mustPush(t, env, NoScope)
	_ = env.Define(global, "x", 1)

	inner := mustPush(t, env, global)
	if err := env.Define(inner, "x", 2); err != nil {
		t.Fatalf("shadowing define: %v", err)
	}
	_, owner, _ := env.Lookup(inner, "x")
	if err := env.Update(owner, "x", 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := env.Pop(inner); err != nil {
		t.Fatalf("pop: %v", err)
	}
	v, _, _ := env.Lookup(global, "x")
	if v != 1 {
		t.Fatalf("outer x changed to %d", v)
	}
}

func TestEnvironmentDuplicateDefinition(t *testing.T) {
	env := NewEnvironment[int]()
	s := mustPush(t, env, NoScope)
	_ = env.Define(s, "x", 1)
	err := env.Define(s, "x", 2)
	if !errors.Is(err, ErrDuplicateBinding) {
		t.Fatalf("expected ErrDuplicateBinding, got %v", err)
	}
}

func TestEnvironmentUpdateRequiresOwnedBinding(t *testing.T) {
	env := NewEnvironment[int]()
	global := mustPush(t, env, NoScope)
	_ = env.Define(global, "x", 1)
	inner := mustPush(t, env, global)
	if err := env.Update(inner, "x", 5); !errors.Is(err, ErrUndefinedBinding) {
		t.Fatalf("expected ErrUndefinedBinding, got %v", err)
	}
}

func TestEnvironmentStaleHandlesAfterReuse(t *testing.T) {
	env := NewEnvironment[int]()
	global := mustPush(t, env, NoScope)
	first := mustPush(t, env, global)
	_ = env.Define(first, "tmp", 7)
	if err := env.Pop(first); err != nil {
		t.Fatalf("pop: %v", err)
	}
	second := mustPush(t, env, global)
	if env.Capacity() != 2 {
		t.Fatalf("expected the popped slot to be reused, capacity %d", env.Capacity())
	}
	if env.Valid(first) {
		t.Fatalf("stale handle should be invalid")
	}
	if _, ok := env.LookupLocal(second, "tmp"); ok {
		t.Fatalf("recycled scope should start empty")
	}
	if err := env.Define(first, "y", 1); !errors.Is(err, ErrStaleScope) {
		t.Fatalf("expected ErrStaleScope, got %v", err)
	}
	if err := env.Pop(first); !errors.Is(err, ErrStaleScope) {
		t.Fatalf("double pop should fail, got %v", err)
	}
	if _, err := env.Push(first); !errors.Is(err, ErrStaleScope) {
		t.Fatalf("push under stale parent should fail, got %v", err)
	}
	if env.Live() != 2 {
		t.Fatalf("expected 2 live scopes, got %d", env.Live())
	}
}

func TestEnvironmentNamesKeepDeclarationOrder(t *testing.T) {
	env := NewEnvironment[int]()
	s := mustPush(t, env, NoScope)
	for i, name := range []string{"zeta", "alpha", "mid"} {
		_ = env.Define(s, name, i)
	}
	_ = env.Update(s, "zeta", 10)
	want := []string{"zeta", "alpha", "mid"}
	if got := env.Names(s); !reflect.DeepEqual(got, want) {
		t.Fatalf("names mismatch: got %v, want %v", got, want)
	}
	parent, err := env.Parent(s)
	if err != nil || parent != NoScope {
		t.Fatalf("root parent should be NoScope, got %v (%v)", parent, err)
	}
}
