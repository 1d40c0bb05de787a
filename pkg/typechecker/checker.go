package typechecker

import (
	"fmt"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/diag"
	"microkotlin/interpreter-go/pkg/runtime"
)

// Symbol is a checked variable or parameter binding.
type Symbol struct {
	Name    string
	Type    Type
	Mutable bool
	Node    ast.Node
}

// CallTarget records what a call expression resolved to: a built-in by name
// or a user function declaration.
type CallTarget struct {
	Builtin  string
	Function *ast.FunctionDeclaration
}

// IsBuiltin reports whether the call targets a built-in.
func (t CallTarget) IsBuiltin() bool {
	return t.Function == nil
}

// CheckedProgram is a program the checker accepted, together with the static
// facts the interpreter relies on. Only the checker constructs one, so
// holding a CheckedProgram means checking succeeded.
type CheckedProgram struct {
	program   *ast.Program
	types     InferenceMap
	binary    map[*ast.BinaryExpression]BinaryResolution
	calls     map[*ast.CallExpression]CallTarget
	functions map[string]*ast.FunctionDeclaration
	globals   []*ast.VariableDeclaration
	main      *ast.FunctionDeclaration
}

func (p *CheckedProgram) Program() *ast.Program { return p.program }

// Main returns the entry function.
func (p *CheckedProgram) Main() *ast.FunctionDeclaration { return p.main }

// Globals returns the top-level variable declarations in source order.
func (p *CheckedProgram) Globals() []*ast.VariableDeclaration { return p.globals }

// TypeOf returns the resolved type of expr.
func (p *CheckedProgram) TypeOf(expr ast.Expression) (Type, bool) {
	t, ok := p.types[expr]
	return t, ok
}

// Binary returns the static resolution recorded for expr.
func (p *CheckedProgram) Binary(expr *ast.BinaryExpression) (BinaryResolution, bool) {
	res, ok := p.binary[expr]
	return res, ok
}

// Call returns the resolved target of call.
func (p *CheckedProgram) Call(call *ast.CallExpression) (CallTarget, bool) {
	target, ok := p.calls[call]
	return target, ok
}

// Function returns the user function declared under name.
func (p *CheckedProgram) Function(name string) (*ast.FunctionDeclaration, bool) {
	fn, ok := p.functions[name]
	return fn, ok
}

// Checker validates MicroKotlin programs.
type Checker struct {
	infer     InferenceMap
	binary    map[*ast.BinaryExpression]BinaryResolution
	calls     map[*ast.CallExpression]CallTarget
	functions map[string]*ast.FunctionDeclaration
	env       *runtime.Environment[Symbol]
	diags     *diag.Collector

	returnType    Type
	inInitializer bool
	internalErr   error
}

// New returns a checker instance.
func New() *Checker {
	return &Checker{}
}

func (c *Checker) reset() {
	c.infer = make(InferenceMap)
	c.binary = make(map[*ast.BinaryExpression]BinaryResolution)
	c.calls = make(map[*ast.CallExpression]CallTarget)
	c.functions = make(map[string]*ast.FunctionDeclaration)
	c.env = runtime.NewEnvironment[Symbol]()
	c.diags = diag.NewCollector(diag.StageTypechecker)
	c.returnType = nil
	c.inInitializer = false
	c.internalErr = nil
}

// CheckProgram type checks program. On success it returns the checked
// program and no diagnostics; otherwise it returns every diagnostic found and
// a nil program. The error result is reserved for internal failures.
func (c *Checker) CheckProgram(program *ast.Program) (*CheckedProgram, diag.List, error) {
	if program == nil {
		return nil, nil, fmt.Errorf("typechecker: program is nil")
	}
	c.reset()

	global, err := c.env.Push(runtime.NoScope)
	if err != nil {
		return nil, nil, fmt.Errorf("typechecker: %w", err)
	}
	globalScope := &scopeChain{checker: c, scope: global}

	var order []*ast.FunctionDeclaration
	var globals []*ast.VariableDeclaration
	for _, decl := range program.Declarations {
		if fn, ok := decl.(*ast.FunctionDeclaration); ok {
			if c.declareFunction(fn) {
				order = append(order, fn)
			}
		}
	}
	for _, decl := range program.Declarations {
		if v, ok := decl.(*ast.VariableDeclaration); ok {
			c.inInitializer = true
			c.checkVariableDeclaration(globalScope, v)
			c.inInitializer = false
			globals = append(globals, v)
		}
	}
	for _, fn := range order {
		c.checkFunction(globalScope, fn)
	}
	main := c.checkMain(program)

	if c.internalErr != nil {
		return nil, nil, c.internalErr
	}
	if diags := c.diags.List(); len(diags) > 0 {
		return nil, diags, nil
	}
	return &CheckedProgram{
		program:   program,
		types:     c.infer,
		binary:    c.binary,
		calls:     c.calls,
		functions: c.functions,
		globals:   globals,
		main:      main,
	}, nil, nil
}

func (c *Checker) record(expr ast.Expression, typ Type) Type {
	c.infer.set(expr, typ)
	return typ
}

func (c *Checker) internal(err error) {
	if err != nil && c.internalErr == nil {
		c.internalErr = fmt.Errorf("typechecker: %w", err)
	}
}

func (c *Checker) declareFunction(fn *ast.FunctionDeclaration) bool {
	name := fn.ID.Name
	if _, ok := LookupBuiltin(name); ok {
		c.diags.Errorf(diag.DuplicateSymbol, fn.ID.Span(), "function '%s' conflicts with the built-in of the same name", name)
		return false
	}
	if prev, ok := c.functions[name]; ok {
		c.diags.Errorf(diag.DuplicateSymbol, fn.ID.Span(), "function '%s' is already declared at %d:%d", name, prev.ID.Span().Start.Line, prev.ID.Span().Start.Column)
		return false
	}
	c.functions[name] = fn
	return true
}

func (c *Checker) checkMain(program *ast.Program) *ast.FunctionDeclaration {
	main, ok := c.functions["main"]
	if !ok {
		span := program.Span()
		c.diags.Errorf(diag.MissingMain, ast.Span{Start: span.Start, End: span.Start}, "program has no 'main' function")
		return nil
	}
	if len(main.Params) > 0 {
		c.diags.Errorf(diag.InvalidMain, main.ID.Span(), "'main' must not declare parameters")
	}
	if ret := fromTypeReference(main.ReturnType); ret != UnitType {
		c.diags.Errorf(diag.InvalidMain, main.ReturnType.Span(), "'main' must return Unit, not %s", typeName(ret))
	}
	return main
}

// checkFunction checks a body in a scope under the globals. Parameters and
// the body's top-level statements share that scope.
func (c *Checker) checkFunction(global *scopeChain, fn *ast.FunctionDeclaration) {
	scope := global.nested()
	defer scope.close()

	for _, param := range fn.Params {
		scope.define(param.ID, Symbol{
			Name: param.ID.Name,
			Type: fromTypeReference(param.TypeRef),
			Node: param,
		})
	}
	c.returnType = fromTypeReference(fn.ReturnType)
	defer func() { c.returnType = nil }()

	if fn.Body == nil {
		return
	}
	for _, stmt := range fn.Body.Body {
		c.checkStatement(scope, stmt)
	}
	if c.returnType != UnitType && !alwaysReturns(fn.Body.Body) {
		c.diags.Errorf(diag.MissingReturn, fn.ID.Span(), "function '%s' must return a value of type %s on every path", fn.ID.Name, typeName(c.returnType))
	}
}

// scopeChain is the checker's view of one scope in the symbol arena.
type scopeChain struct {
	checker *Checker
	scope   runtime.Scope
}

func (s *scopeChain) nested() *scopeChain {
	child, err := s.checker.env.Push(s.scope)
	if err != nil {
		s.checker.internal(err)
		return &scopeChain{checker: s.checker, scope: runtime.NoScope}
	}
	return &scopeChain{checker: s.checker, scope: child}
}

func (s *scopeChain) close() {
	if err := s.checker.env.Pop(s.scope); err != nil {
		s.checker.internal(err)
	}
}

func (s *scopeChain) lookup(name string) (Symbol, bool) {
	sym, _, ok := s.checker.env.Lookup(s.scope, name)
	return sym, ok
}

// define binds a symbol, reporting DuplicateSymbol when the name is already
// bound in this same scope.
func (s *scopeChain) define(id *ast.Identifier, sym Symbol) {
	if prev, ok := s.checker.env.LookupLocal(s.scope, sym.Name); ok {
		where := ""
		if prev.Node != nil {
			pos := prev.Node.Span().Start
			where = fmt.Sprintf(" (previous declaration at %d:%d)", pos.Line, pos.Column)
		}
		s.checker.diags.Errorf(diag.DuplicateSymbol, id.Span(), "'%s' is already declared in this scope%s", sym.Name, where)
		return
	}
	s.checker.internal(s.checker.env.Define(s.scope, sym.Name, sym))
}

func errUnsupported(node ast.Node) error {
	return fmt.Errorf("unsupported node %T", node)
}
