package runtime

import (
	"errors"
	"fmt"
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/stacks/arraystack"
)

var (
	// ErrStaleScope reports use of a scope handle after it was popped.
	ErrStaleScope = errors.New("runtime: stale scope handle")
	// ErrDuplicateBinding reports a second definition of a name in one scope.
	ErrDuplicateBinding = errors.New("runtime: duplicate binding")
	// ErrUndefinedBinding reports an update of a name the scope does not own.
	ErrUndefinedBinding = errors.New("runtime: undefined binding")
)

// Scope is a handle into an Environment. The generation guards against
// handles that outlive the scope they name: once a slot is recycled, older
// handles stop resolving.
type Scope struct {
	index      int
	generation uint32
}

// NoScope is the parent of a root scope.
var NoScope = Scope{index: -1}

func (s Scope) String() string {
	if s.index < 0 {
		return "scope(none)"
	}
	return fmt.Sprintf("scope(%d@%d)", s.index, s.generation)
}

type scopeRecord struct {
	parent     Scope
	generation uint32
	live       bool
	bindings   *linkedhashmap.Map
}

// Environment is an arena of lexical scopes. Each scope holds bindings in
// declaration order and a non-owning link to its parent; lookups walk the
// chain from child to ancestor. Popped slots are recycled through a
// free list with a bumped generation.
type Environment[T any] struct {
	mu     sync.RWMutex
	scopes []scopeRecord
	free   *arraystack.Stack
	live   int
}

// NewEnvironment creates an empty arena.
func NewEnvironment[T any]() *Environment[T] {
	return &Environment[T]{free: arraystack.New()}
}

// Push opens a scope under parent. Pass NoScope for a root scope.
func (e *Environment[T]) Push(parent Scope) (Scope, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if parent != NoScope && !e.validLocked(parent) {
		return NoScope, fmt.Errorf("push under %s: %w", parent, ErrStaleScope)
	}
	if slot, ok := e.free.Pop(); ok {
		idx := slot.(int)
		rec := &e.scopes[idx]
		rec.parent = parent
		rec.live = true
		rec.bindings.Clear()
		e.live++
		return Scope{index: idx, generation: rec.generation}, nil
	}
	e.scopes = append(e.scopes, scopeRecord{
		parent:   parent,
		live:     true,
		bindings: linkedhashmap.New(),
	})
	e.live++
	return Scope{index: len(e.scopes) - 1}, nil
}

// Pop discards the scope and its bindings. The handle, and any handle to
// it held elsewhere, becomes invalid.
func (e *Environment[T]) Pop(s Scope) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.validLocked(s) {
		return fmt.Errorf("pop %s: %w", s, ErrStaleScope)
	}
	rec := &e.scopes[s.index]
	rec.live = false
	rec.generation++
	rec.bindings.Clear()
	e.free.Push(s.index)
	e.live--
	return nil
}

// Valid reports whether the handle still names a live scope.
func (e *Environment[T]) Valid(s Scope) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.validLocked(s)
}

func (e *Environment[T]) validLocked(s Scope) bool {
	if s.index < 0 || s.index >= len(e.scopes) {
		return false
	}
	rec := e.scopes[s.index]
	return rec.live && rec.generation == s.generation
}

// Parent returns the enclosing scope, or NoScope for a root.
func (e *Environment[T]) Parent(s Scope) (Scope, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.validLocked(s) {
		return NoScope, fmt.Errorf("parent of %s: %w", s, ErrStaleScope)
	}
	return e.scopes[s.index].parent, nil
}

// Define binds name in s. Shadowing an ancestor's binding is allowed;
// redefining a name in the same scope is not.
func (e *Environment[T]) Define(s Scope, name string, value T) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.validLocked(s) {
		return fmt.Errorf("define %q in %s: %w", name, s, ErrStaleScope)
	}
	bindings := e.scopes[s.index].bindings
	if _, exists := bindings.Get(name); exists {
		return fmt.Errorf("define %q: %w", name, ErrDuplicateBinding)
	}
	bindings.Put(name, value)
	return nil
}

// Lookup resolves name from s outward and returns the value together with
// the scope that owns the binding.
func (e *Environment[T]) Lookup(s Scope, name string) (T, Scope, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var zero T
	for cur := s; cur != NoScope; {
		if !e.validLocked(cur) {
			return zero, NoScope, false
		}
		rec := e.scopes[cur.index]
		if v, ok := rec.bindings.Get(name); ok {
			return v.(T), cur, true
		}
		cur = rec.parent
	}
	return zero, NoScope, false
}

// LookupLocal resolves name in s only.
func (e *Environment[T]) LookupLocal(s Scope, name string) (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var zero T
	if !e.validLocked(s) {
		return zero, false
	}
	if v, ok := e.scopes[s.index].bindings.Get(name); ok {
		return v.(T), true
	}
	return zero, false
}

// Update replaces the value of an existing binding owned by s, typically the
// owner returned by Lookup.
func (e *Environment[T]) Update(s Scope, name string, value T) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.validLocked(s) {
		return fmt.Errorf("update %q in %s: %w", name, s, ErrStaleScope)
	}
	bindings := e.scopes[s.index].bindings
	if _, exists := bindings.Get(name); !exists {
		return fmt.Errorf("update %q: %w", name, ErrUndefinedBinding)
	}
	bindings.Put(name, value)
	return nil
}

// Names returns the names bound directly in s, in declaration order.
func (e *Environment[T]) Names(s Scope) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.validLocked(s) {
		return nil
	}
	keys := e.scopes[s.index].bindings.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.(string)
	}
	return out
}

// Live returns the number of scopes currently open.
func (e *Environment[T]) Live() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.live
}

// Capacity returns the number of slots allocated so far, live or free.
func (e *Environment[T]) Capacity() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.scopes)
}
