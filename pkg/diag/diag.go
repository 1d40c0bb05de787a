package diag

import (
	"fmt"
	"strings"

	"microkotlin/interpreter-go/pkg/ast"
)

// Severity conveys the diagnostic level.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Stage identifies the pipeline stage that produced a diagnostic.
type Stage string

const (
	StageLexer       Stage = "lexer"
	StageParser      Stage = "parser"
	StageTypechecker Stage = "typechecker"
)

// Kind classifies a diagnostic within its stage.
type Kind string

const (
	LexError   Kind = "LexError"
	ParseError Kind = "ParseError"

	TypeMismatch        Kind = "TypeMismatch"
	InvalidOperator     Kind = "InvalidOperator"
	ConditionNotBoolean Kind = "ConditionNotBoolean"
	ReassignImmutable   Kind = "ReassignImmutable"
	UndefinedSymbol     Kind = "UndefinedSymbol"
	DuplicateSymbol     Kind = "DuplicateSymbol"
	InvalidArgument     Kind = "InvalidArgument"
	InvalidCall         Kind = "InvalidCall"
	InvalidReturn       Kind = "InvalidReturn"
	MissingReturn       Kind = "MissingReturn"
	MissingMain         Kind = "MissingMain"
	InvalidMain         Kind = "InvalidMain"
)

var knownKinds = map[Kind]Stage{
	LexError:            StageLexer,
	ParseError:          StageParser,
	TypeMismatch:        StageTypechecker,
	InvalidOperator:     StageTypechecker,
	ConditionNotBoolean: StageTypechecker,
	ReassignImmutable:   StageTypechecker,
	UndefinedSymbol:     StageTypechecker,
	DuplicateSymbol:     StageTypechecker,
	InvalidArgument:     StageTypechecker,
	InvalidCall:         StageTypechecker,
	InvalidReturn:       StageTypechecker,
	MissingReturn:       StageTypechecker,
	MissingMain:         StageTypechecker,
	InvalidMain:         StageTypechecker,
}

// ParseKind resolves a kind name and the stage that reports it.
func ParseKind(name string) (Kind, Stage, bool) {
	stage, ok := knownKinds[Kind(name)]
	if !ok {
		return "", "", false
	}
	return Kind(name), stage, true
}

// Diagnostic is a single stage report.
type Diagnostic struct {
	Severity Severity
	Stage    Stage
	Kind     Kind
	Span     ast.Span
	Message  string
}

func (d Diagnostic) String() string {
	pos := d.Span.Start
	if pos.Line > 0 {
		return fmt.Sprintf("%d:%d %s", pos.Line, pos.Column, d.Message)
	}
	return d.Message
}

// List is an ordered set of diagnostics. A non-empty list is an error.
type List []Diagnostic

func (l List) Error() string {
	if len(l) == 0 {
		return "no diagnostics"
	}
	if len(l) == 1 {
		return l[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d diagnostics:", len(l))
	for _, d := range l {
		b.WriteString("\n- ")
		b.WriteString(d.String())
	}
	return b.String()
}

// HasErrors reports whether any entry is error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Kinds returns the kind of every entry, in order.
func (l List) Kinds() []Kind {
	out := make([]Kind, len(l))
	for i, d := range l {
		out[i] = d.Kind
	}
	return out
}

// Collector accumulates diagnostics in report order.
type Collector struct {
	stage Stage
	items List
}

// NewCollector returns a collector stamping entries with the given stage.
func NewCollector(stage Stage) *Collector {
	return &Collector{stage: stage}
}

// Errorf records an error-severity diagnostic.
func (c *Collector) Errorf(kind Kind, span ast.Span, format string, args ...any) {
	c.items = append(c.items, Diagnostic{
		Severity: SeverityError,
		Stage:    c.stage,
		Kind:     kind,
		Span:     span,
		Message:  fmt.Sprintf("%s: %s", c.stage, fmt.Sprintf(format, args...)),
	})
}

// Warnf records a warning-severity diagnostic.
func (c *Collector) Warnf(kind Kind, span ast.Span, format string, args ...any) {
	c.items = append(c.items, Diagnostic{
		Severity: SeverityWarning,
		Stage:    c.stage,
		Kind:     kind,
		Span:     span,
		Message:  fmt.Sprintf("%s: %s", c.stage, fmt.Sprintf(format, args...)),
	})
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	return len(c.items)
}

// List returns a copy of the recorded diagnostics.
func (c *Collector) List() List {
	if len(c.items) == 0 {
		return nil
	}
	out := make(List, len(c.items))
	copy(out, c.items)
	return out
}
