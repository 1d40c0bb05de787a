package driver

import (
	"errors"
	"fmt"
	"strings"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/diag"
	"microkotlin/interpreter-go/pkg/interpreter"
)

// Stage names how far a program got through the pipeline.
type Stage string

const (
	StageOK      Stage = "ok"
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageCheck   Stage = "check"
	StageRuntime Stage = "runtime"
)

// IsValid reports whether the stage is recognised.
func (s Stage) IsValid() bool {
	switch s {
	case StageOK, StageLex, StageParse, StageCheck, StageRuntime:
		return true
	default:
		return false
	}
}

func stageForDiagnostic(stage diag.Stage) Stage {
	switch stage {
	case diag.StageLexer:
		return StageLex
	case diag.StageParser:
		return StageParse
	default:
		return StageCheck
	}
}

// StageOf classifies the error returned by interpreter.Run. Errors that are
// neither diagnostics nor runtime faults report an empty stage.
func StageOf(err error) Stage {
	if err == nil {
		return StageOK
	}
	var diags diag.List
	if errors.As(err, &diags) && len(diags) > 0 {
		return stageForDiagnostic(diags[0].Stage)
	}
	var rerr *interpreter.RuntimeError
	if errors.As(err, &rerr) {
		return StageRuntime
	}
	return ""
}

// DescribeDiagnostic formats a stage diagnostic for CLI output as
// "<stage>: <path>:<line>:<col> <message>".
func DescribeDiagnostic(path string, d diag.Diagnostic) string {
	stage := string(d.Stage)
	message := strings.TrimSpace(d.Message)
	if stage != "" {
		message = strings.TrimSpace(strings.TrimPrefix(message, stage+":"))
	}
	prefix := ""
	if stage != "" {
		prefix = stage + ": "
	}
	if d.Severity == diag.SeverityWarning {
		prefix = "warning: " + prefix
	}
	if location := formatLocation(path, d.Span); location != "" {
		return fmt.Sprintf("%s%s %s", prefix, location, message)
	}
	return prefix + message
}

// DescribeRuntimeError formats a runtime fault the same way.
func DescribeRuntimeError(path string, err *interpreter.RuntimeError) string {
	message := err.Message
	if err.Cause != nil {
		message = fmt.Sprintf("%s: %v", message, err.Cause)
	}
	if location := formatLocation(path, err.Span); location != "" {
		return fmt.Sprintf("runtime: %s %s: %s", location, err.Kind, message)
	}
	return fmt.Sprintf("runtime: %s: %s", err.Kind, message)
}

// DescribeError renders any pipeline error as one line per problem.
func DescribeError(path string, err error) []string {
	if err == nil {
		return nil
	}
	var diags diag.List
	if errors.As(err, &diags) {
		out := make([]string, len(diags))
		for i, d := range diags {
			out[i] = DescribeDiagnostic(path, d)
		}
		return out
	}
	var rerr *interpreter.RuntimeError
	if errors.As(err, &rerr) {
		return []string{DescribeRuntimeError(path, rerr)}
	}
	return []string{err.Error()}
}

func formatLocation(path string, span ast.Span) string {
	path = strings.TrimSpace(path)
	line := span.Start.Line
	column := span.Start.Column
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d", path, line)
	case path != "":
		return path
	case line > 0 && column > 0:
		return fmt.Sprintf("%d:%d", line, column)
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}
