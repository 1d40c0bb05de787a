package interpreter

import (
	"fmt"

	"microkotlin/interpreter-go/pkg/diag"
	"microkotlin/interpreter-go/pkg/parser"
	"microkotlin/interpreter-go/pkg/typechecker"
)

// Check runs the lexer, parser and type checker over source. Each stage runs
// only when the previous one reported nothing, so the returned diagnostics all
// come from a single stage.
func Check(source string) (*typechecker.CheckedProgram, diag.List, error) {
	program, diags := parser.ParseProgram(source)
	if len(diags) > 0 {
		return nil, diags, nil
	}
	checked, diags, err := typechecker.New().CheckProgram(program)
	if err != nil {
		return nil, nil, err
	}
	if len(diags) > 0 {
		return nil, diags, nil
	}
	return checked, nil, nil
}

// Run checks and executes source. Stage diagnostics are returned as a
// diag.List error; faults during execution as *RuntimeError.
func Run(source string, opts Options) error {
	checked, diags, err := Check(source)
	if err != nil {
		return err
	}
	if len(diags) > 0 {
		return diags
	}
	interp, err := New(checked, opts)
	if err != nil {
		return fmt.Errorf("interpreter: %w", err)
	}
	return interp.Run()
}
