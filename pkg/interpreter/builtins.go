package interpreter

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/runtime"
	"microkotlin/interpreter-go/pkg/typechecker"
)

func (i *Interpreter) callBuiltin(call *ast.CallExpression, name string, args []runtime.Value) (runtime.Value, error) {
	switch name {
	case typechecker.BuiltinPrint:
		if len(args) != 1 {
			break
		}
		return runtime.Unit, i.write(call, runtime.Text(args[0]))
	case typechecker.BuiltinPrintLn:
		text := "\n"
		if len(args) == 1 {
			text = runtime.Text(args[0]) + "\n"
		}
		return runtime.Unit, i.write(call, text)
	case typechecker.BuiltinReadInt:
		tok, err := i.readToken(call)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return nil, inputFormatError(call, "Int", tok)
		}
		return runtime.IntValue{Val: int32(n)}, nil
	case typechecker.BuiltinReadDouble:
		tok, err := i.readToken(call)
		if err != nil {
			return nil, err
		}
		d, ok := parseDecimal(tok)
		if !ok {
			return nil, inputFormatError(call, "Double", tok)
		}
		return runtime.DoubleValue{Val: d}, nil
	case typechecker.BuiltinReadBoolean:
		tok, err := i.readToken(call)
		if err != nil {
			return nil, err
		}
		switch {
		case strings.EqualFold(tok, "true"):
			return runtime.True, nil
		case strings.EqualFold(tok, "false"):
			return runtime.False, nil
		}
		return nil, inputFormatError(call, "Boolean", tok)
	case typechecker.BuiltinReadLine:
		line, err := i.input.Line()
		if err != nil {
			return nil, inputUnavailable(call, err)
		}
		return runtime.StringValue{Val: line}, nil
	}
	return nil, internalError(call, nil, "unsupported built-in call '%s' with %d argument(s)", name, len(args))
}

// decimalPattern is the accepted readDouble syntax: no hex, inf or nan forms.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseDecimal reads a decimal Double. Values too large for a Double become
// infinities and values too small become zero.
func parseDecimal(tok string) (float64, bool) {
	if !decimalPattern.MatchString(tok) {
		return 0, false
	}
	d, err := strconv.ParseFloat(tok, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return d, true
}

func (i *Interpreter) write(call *ast.CallExpression, text string) error {
	if _, err := io.WriteString(i.output, text); err != nil {
		return internalError(call, err, "write output")
	}
	return nil
}

func (i *Interpreter) readToken(call *ast.CallExpression) (string, error) {
	tok, err := i.input.Token()
	if err != nil {
		return "", inputUnavailable(call, err)
	}
	return tok, nil
}

func inputUnavailable(call *ast.CallExpression, err error) *RuntimeError {
	rerr := runtimeErrorf(InputUnavailable, call, "%s(): no input available", call.Callee.Name)
	if !errors.Is(err, io.EOF) {
		rerr.Cause = err
	}
	return rerr
}

func inputFormatError(call *ast.CallExpression, want, tok string) *RuntimeError {
	return runtimeErrorf(InputFormatError, call, "%s(): %q is not a valid %s", call.Callee.Name, tok, want)
}
