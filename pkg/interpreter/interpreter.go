package interpreter

import (
	"fmt"
	"io"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/runtime"
	"microkotlin/interpreter-go/pkg/typechecker"
)

// DefaultMaxCallDepth bounds user function recursion.
const DefaultMaxCallDepth = 4096

// Options configures an interpreter run.
type Options struct {
	// Input feeds readInt/readBoolean/readDouble/readLine. Nil is an empty stream.
	Input io.Reader
	// Output receives print/printLn text. Nil discards it.
	Output io.Writer
	// MaxCallDepth limits nested user function calls; zero selects
	// DefaultMaxCallDepth.
	MaxCallDepth int
}

// Binding is a variable slot in the runtime scope arena.
type Binding struct {
	Value   runtime.Value
	Mutable bool
}

// Interpreter evaluates one checked program. Each instance owns its scope
// arena and I/O, so separate instances can run concurrently.
type Interpreter struct {
	program  *typechecker.CheckedProgram
	env      *runtime.Environment[Binding]
	global   runtime.Scope
	input    *Input
	output   io.Writer
	maxDepth int
	depth    int
}

// New prepares an interpreter for program.
func New(program *typechecker.CheckedProgram, opts Options) (*Interpreter, error) {
	if program == nil {
		return nil, fmt.Errorf("interpreter: program is nil")
	}
	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	depth := opts.MaxCallDepth
	if depth <= 0 {
		depth = DefaultMaxCallDepth
	}
	return &Interpreter{
		program:  program,
		env:      runtime.NewEnvironment[Binding](),
		global:   runtime.NoScope,
		input:    NewInput(opts.Input),
		output:   out,
		maxDepth: depth,
	}, nil
}

// Run evaluates the top-level declarations in source order and then calls
// main. The global scope is torn down when Run returns.
func (i *Interpreter) Run() error {
	if i.program.Main() == nil {
		return fmt.Errorf("interpreter: program has no main function")
	}
	global, err := i.env.Push(runtime.NoScope)
	if err != nil {
		return internalError(nil, err, "open global scope")
	}
	i.global = global
	defer func() {
		_ = i.env.Pop(global)
		i.global = runtime.NoScope
	}()

	for _, decl := range i.program.Globals() {
		if err := i.execVariableDeclaration(global, decl); err != nil {
			return err
		}
	}
	_, err = i.callFunction(i.program.Main(), nil, i.program.Main())
	return err
}

// Globals returns the value of each top-level binding while a run is in
// progress; it is empty otherwise.
func (i *Interpreter) Globals() map[string]runtime.Value {
	out := make(map[string]runtime.Value)
	for _, name := range i.env.Names(i.global) {
		if b, ok := i.env.LookupLocal(i.global, name); ok {
			out[name] = b.Value
		}
	}
	return out
}

// callFunction invokes fn in a fresh scope whose parent is the global scope.
func (i *Interpreter) callFunction(fn *ast.FunctionDeclaration, args []runtime.Value, site ast.Node) (runtime.Value, error) {
	if i.depth >= i.maxDepth {
		return nil, runtimeErrorf(StackOverflow, site, "call depth exceeded %d calling '%s'", i.maxDepth, fn.ID.Name)
	}
	if len(args) != len(fn.Params) {
		return nil, internalError(site, nil, "'%s' called with %d argument(s), expects %d", fn.ID.Name, len(args), len(fn.Params))
	}
	i.depth++
	defer func() { i.depth-- }()

	scope, err := i.env.Push(i.global)
	if err != nil {
		return nil, internalError(site, err, "open scope for '%s'", fn.ID.Name)
	}
	defer func() { _ = i.env.Pop(scope) }()

	for idx, param := range fn.Params {
		if err := i.env.Define(scope, param.ID.Name, Binding{Value: args[idx]}); err != nil {
			return nil, internalError(param, err, "bind parameter '%s'", param.ID.Name)
		}
	}
	if fn.Body != nil {
		if err := i.execStatements(scope, fn.Body.Body); err != nil {
			if ret, ok := err.(returnSignal); ok {
				if ret.value == nil {
					return runtime.Unit, nil
				}
				return ret.value, nil
			}
			return nil, err
		}
	}
	return runtime.Unit, nil
}
