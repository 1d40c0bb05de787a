package interpreter

import (
	"fmt"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/runtime"
)

// RuntimeErrorKind classifies a fault raised while a checked program runs.
type RuntimeErrorKind string

const (
	DivisionByZero   RuntimeErrorKind = "DivisionByZero"
	InputFormatError RuntimeErrorKind = "InputFormatError"
	InputUnavailable RuntimeErrorKind = "InputUnavailable"
	StackOverflow    RuntimeErrorKind = "StackOverflow"
	Internal         RuntimeErrorKind = "Internal"
)

// ParseRuntimeErrorKind resolves a kind name such as "DivisionByZero".
func ParseRuntimeErrorKind(name string) (RuntimeErrorKind, bool) {
	switch kind := RuntimeErrorKind(name); kind {
	case DivisionByZero, InputFormatError, InputUnavailable, StackOverflow, Internal:
		return kind, true
	}
	return "", false
}

// RuntimeError halts execution. The first one raised ends the run.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Span    ast.Span
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	pos := e.Span.Start
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if pos.Line > 0 {
		return fmt.Sprintf("runtime: %d:%d %s: %s", pos.Line, pos.Column, e.Kind, msg)
	}
	return fmt.Sprintf("runtime: %s: %s", e.Kind, msg)
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

func runtimeErrorf(kind RuntimeErrorKind, node ast.Node, format string, args ...any) *RuntimeError {
	err := &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		err.Span = node.Span()
	}
	return err
}

func internalError(node ast.Node, cause error, format string, args ...any) *RuntimeError {
	err := runtimeErrorf(Internal, node, format, args...)
	err.Cause = cause
	return err
}

// returnSignal unwinds a function body on `return`.
type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string {
	return "return"
}
