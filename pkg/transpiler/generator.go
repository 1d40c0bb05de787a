package transpiler

import (
	"bytes"
	"fmt"
	"strings"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/typechecker"
)

var javaTypes = map[ast.TypeName]string{
	ast.TypeInt:     "int",
	ast.TypeDouble:  "double",
	ast.TypeBoolean: "boolean",
	ast.TypeString:  "String",
	ast.TypeUnit:    "void",
}

type generator struct {
	opts     Options
	program  *typechecker.CheckedProgram
	fields   map[string]string
	methods  map[string]string
	warnings []string

	buf        bytes.Buffer
	depth      int
	scope      *localScope
	unitReturn bool
}

func newGenerator(opts Options, program *typechecker.CheckedProgram) *generator {
	return &generator{
		opts:    opts,
		program: program,
		fields:  make(map[string]string),
		methods: make(map[string]string),
	}
}

func (g *generator) warnf(node ast.Node, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if node != nil {
		start := node.Span().Start
		if start.Line > 0 {
			msg = fmt.Sprintf("%d:%d %s", start.Line, start.Column, msg)
		}
	}
	g.warnings = append(g.warnings, "transpiler: "+msg)
}

func (g *generator) line(format string, args ...any) {
	g.buf.WriteString(strings.Repeat(g.opts.Indent, g.depth))
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func (g *generator) blank() {
	g.buf.WriteByte('\n')
}

func (g *generator) render() ([]byte, error) {
	program := g.program.Program()
	for _, decl := range g.program.Globals() {
		javaName := sanitizeIdent(decl.ID.Name)
		if javaName == scannerField {
			javaName += "_"
		}
		g.fields[decl.ID.Name] = javaName
	}
	for _, decl := range program.Declarations {
		if fn, ok := decl.(*ast.FunctionDeclaration); ok && fn.ID != nil {
			g.methods[fn.ID.Name] = methodIdent(fn.ID.Name)
		}
	}

	usesInput := usesInput(g.program)
	if usesInput {
		g.line("import java.util.Scanner;")
		g.blank()
	}
	g.line("public class %s {", g.opts.ClassName)
	g.depth++
	if usesInput {
		g.line("private static final Scanner %s = new Scanner(System.in);", scannerField)
		g.blank()
	}
	if globals := g.program.Globals(); len(globals) > 0 {
		for _, decl := range globals {
			if err := g.renderField(decl); err != nil {
				return nil, err
			}
		}
		g.blank()
	}
	for _, decl := range program.Declarations {
		fn, ok := decl.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		if err := g.renderFunction(fn); err != nil {
			return nil, err
		}
		g.blank()
	}
	g.depth--
	g.line("}")
	return g.buf.Bytes(), nil
}

func (g *generator) renderField(decl *ast.VariableDeclaration) error {
	typ, err := g.valueType(decl, decl.TypeRef)
	if err != nil {
		return err
	}
	init, err := g.expression(decl.Initializer)
	if err != nil {
		return err
	}
	modifiers := "private static"
	if !decl.Mutable {
		modifiers += " final"
	}
	g.line("%s %s %s = %s;", modifiers, typ, g.fields[decl.ID.Name], init)
	return nil
}

func (g *generator) renderFunction(fn *ast.FunctionDeclaration) error {
	g.scope = newLocalScope(nil)
	defer func() { g.scope = nil }()
	g.scope.reserve(scannerField)
	for _, javaName := range g.fields {
		g.scope.reserve(javaName)
	}
	g.unitReturn = fn.ReturnType == nil || fn.ReturnType.Name == ast.TypeUnit

	if fn == g.program.Main() {
		g.scope.reserve(mainArgs)
		g.line("public static void main(String[] %s) {", mainArgs)
	} else {
		ret, err := g.javaType(fn.ReturnType)
		if err != nil {
			return err
		}
		params := make([]string, len(fn.Params))
		for idx, param := range fn.Params {
			typ, err := g.valueType(param, param.TypeRef)
			if err != nil {
				return err
			}
			params[idx] = typ + " " + g.scope.declare(param.ID.Name)
		}
		g.line("private static %s %s(%s) {", ret, g.methods[fn.ID.Name], strings.Join(params, ", "))
	}
	g.depth++
	if fn.Body != nil {
		if err := g.statements(fn.Body.Body); err != nil {
			return err
		}
	}
	g.depth--
	g.line("}")
	return nil
}

func (g *generator) javaType(ref *ast.TypeReference) (string, error) {
	if ref == nil {
		return "void", nil
	}
	typ, ok := javaTypes[ref.Name]
	if !ok {
		return "", fmt.Errorf("transpiler: unsupported type %q", ref.Name)
	}
	return typ, nil
}

// valueType is javaType for storage locations, which cannot be void.
func (g *generator) valueType(node ast.Node, ref *ast.TypeReference) (string, error) {
	if ref == nil || ref.Name == ast.TypeUnit {
		return "", g.errorf(node, "Unit values cannot be stored in Java fields or parameters")
	}
	return g.javaType(ref)
}

func (g *generator) errorf(node ast.Node, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if start := node.Span().Start; start.Line > 0 {
		msg = fmt.Sprintf("%d:%d %s", start.Line, start.Column, msg)
	}
	return fmt.Errorf("transpiler: %s", msg)
}

// discard emits expr for its side effects. Only calls have any, and a Unit
// typed expression is either a call or a Unit local.
func (g *generator) discard(expr ast.Expression) error {
	if _, ok := expr.(*ast.CallExpression); !ok {
		return nil
	}
	text, err := g.expression(expr)
	if err != nil {
		return err
	}
	g.line("%s;", text)
	return nil
}

// statements emits stmts in order. Java rejects unreachable statements, so
// anything after a statement that cannot complete normally is dropped.
func (g *generator) statements(stmts []ast.Statement) error {
	for idx, stmt := range stmts {
		if err := g.statement(stmt); err != nil {
			return err
		}
		if !completesNormally(stmt) && idx+1 < len(stmts) {
			g.warnf(stmts[idx+1], "dropping %d unreachable statement(s)", len(stmts)-idx-1)
			return nil
		}
	}
	return nil
}

func (g *generator) block(block *ast.Block) error {
	g.scope = newLocalScope(g.scope)
	defer func() { g.scope = g.scope.parent }()
	g.depth++
	defer func() { g.depth-- }()
	if block == nil {
		return nil
	}
	return g.statements(block.Body)
}

func (g *generator) statement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		if s.TypeRef != nil && s.TypeRef.Name == ast.TypeUnit {
			if err := g.discard(s.Initializer); err != nil {
				return err
			}
			g.scope.declareUnit(s.ID.Name)
			return nil
		}
		typ, err := g.javaType(s.TypeRef)
		if err != nil {
			return err
		}
		init, err := g.expression(s.Initializer)
		if err != nil {
			return err
		}
		g.line("%s %s = %s;", typ, g.scope.declare(s.ID.Name), init)
	case *ast.AssignmentStatement:
		if g.identifier(s.Target.Name) == "" {
			return g.discard(s.Value)
		}
		value, err := g.expression(s.Value)
		if err != nil {
			return err
		}
		g.line("%s = %s;", g.identifier(s.Target.Name), value)
	case *ast.ExpressionStatement:
		if id, ok := s.Expression.(*ast.Identifier); ok && g.identifier(id.Name) == "" {
			return nil
		}
		expr, err := g.expression(s.Expression)
		if err != nil {
			return err
		}
		if _, ok := s.Expression.(*ast.CallExpression); ok {
			g.line("%s;", expr)
		} else {
			// Only invocations are valid Java expression statements.
			g.line("String.valueOf(%s);", expr)
		}
	case *ast.Block:
		g.line("{")
		if err := g.block(s); err != nil {
			return err
		}
		g.line("}")
	case *ast.IfStatement:
		return g.ifStatement(s)
	case *ast.WhileStatement:
		if isConstant(s.Condition, false) {
			g.warnf(s, "dropping loop whose condition is always false")
			return nil
		}
		cond, err := g.expression(s.Condition)
		if err != nil {
			return err
		}
		g.line("while (%s) {", cond)
		if err := g.block(s.Body); err != nil {
			return err
		}
		g.line("}")
	case *ast.DoWhileStatement:
		g.line("do {")
		if err := g.block(s.Body); err != nil {
			return err
		}
		cond, err := g.expression(s.Condition)
		if err != nil {
			return err
		}
		g.line("} while (%s);", cond)
	case *ast.ReturnStatement:
		if s.Argument == nil {
			g.line("return;")
			return nil
		}
		if g.unitReturn {
			if err := g.discard(s.Argument); err != nil {
				return err
			}
			g.line("return;")
			return nil
		}
		value, err := g.expression(s.Argument)
		if err != nil {
			return err
		}
		g.line("return %s;", value)
	default:
		return fmt.Errorf("transpiler: unsupported statement %T", stmt)
	}
	return nil
}

func (g *generator) ifStatement(stmt *ast.IfStatement) error {
	cond, err := g.expression(stmt.Condition)
	if err != nil {
		return err
	}
	g.line("if (%s) {", cond)
	if err := g.block(stmt.Then); err != nil {
		return err
	}
	for _, clause := range stmt.ElseIfs {
		cond, err := g.expression(clause.Condition)
		if err != nil {
			return err
		}
		g.line("} else if (%s) {", cond)
		if err := g.block(clause.Body); err != nil {
			return err
		}
	}
	if stmt.Else != nil {
		g.line("} else {")
		if err := g.block(stmt.Else); err != nil {
			return err
		}
	}
	g.line("}")
	return nil
}

func (g *generator) identifier(name string) string {
	if g.scope != nil {
		if javaName, ok := g.scope.resolve(name); ok {
			return javaName
		}
	}
	if javaName, ok := g.fields[name]; ok {
		return javaName
	}
	return sanitizeIdent(name)
}

// completesNormally mirrors the Java reachability rules for the statement
// forms MicroKotlin has.
func completesNormally(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStatement:
		return false
	case *ast.WhileStatement:
		return !isConstant(s.Condition, true)
	case *ast.DoWhileStatement:
		return blockCompletes(s.Body) && !isConstant(s.Condition, true)
	case *ast.Block:
		return blockCompletes(s)
	case *ast.IfStatement:
		if s.Else == nil || blockCompletes(s.Then) || blockCompletes(s.Else) {
			return true
		}
		for _, clause := range s.ElseIfs {
			if blockCompletes(clause.Body) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func blockCompletes(block *ast.Block) bool {
	if block == nil {
		return true
	}
	for _, stmt := range block.Body {
		if !completesNormally(stmt) {
			return false
		}
	}
	return true
}

func usesInput(program *typechecker.CheckedProgram) bool {
	found := false
	ast.Inspect(program.Program(), func(node ast.Node) bool {
		if call, ok := node.(*ast.CallExpression); ok {
			if target, ok := program.Call(call); ok && target.IsBuiltin() {
				switch target.Builtin {
				case typechecker.BuiltinReadInt, typechecker.BuiltinReadDouble,
					typechecker.BuiltinReadBoolean, typechecker.BuiltinReadLine:
					found = true
				}
			}
		}
		return !found
	})
	return found
}
