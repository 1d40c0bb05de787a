package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/driver"
	"microkotlin/interpreter-go/pkg/interpreter"
	"microkotlin/interpreter-go/pkg/lexer"
	"microkotlin/interpreter-go/pkg/parser"
	"microkotlin/interpreter-go/pkg/transpiler"
)

func (c *cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("mkt "+name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// parseFlags returns the exit code to use when parsing stops the command.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 1, false
	}
	return 0, true
}

func (c *cli) reportError(path string, err error) {
	for _, line := range driver.DescribeError(path, err) {
		fmt.Fprintln(c.stderr, line)
	}
}

func (c *cli) loadSingle(command string, fs *flag.FlagSet) (*driver.Source, bool) {
	if fs.NArg() != 1 {
		fmt.Fprintf(c.stderr, "mkt %s expects exactly one source file\n", command)
		return nil, false
	}
	src, err := driver.LoadSourceFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(c.stderr, "mkt %s: %v\n", command, err)
		return nil, false
	}
	return src, true
}

func (c *cli) runProgram(args []string) int {
	fs := c.newFlagSet("run")
	maxDepth := fs.Int("max-depth", interpreter.DefaultMaxCallDepth, "maximum nested function calls")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	src, ok := c.loadSingle("run", fs)
	if !ok {
		return 1
	}
	err := interpreter.Run(src.Text, interpreter.Options{
		Input:        c.stdin,
		Output:       c.stdout,
		MaxCallDepth: *maxDepth,
	})
	if err != nil {
		c.reportError(src.Path, err)
		return 1
	}
	return 0
}

func (c *cli) runCheck(args []string) int {
	fs := c.newFlagSet("check")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(c.stderr, "mkt check expects at least one source file")
		return 1
	}
	exit := 0
	for _, path := range fs.Args() {
		src, err := driver.LoadSourceFile(path)
		if err != nil {
			fmt.Fprintf(c.stderr, "mkt check: %v\n", err)
			exit = 1
			continue
		}
		_, diags, err := interpreter.Check(src.Text)
		switch {
		case err != nil:
			c.reportError(src.Path, err)
			exit = 1
		case len(diags) > 0:
			c.reportError(src.Path, diags)
			exit = 1
		default:
			fmt.Fprintf(c.stdout, "%s: ok\n", src.Path)
		}
	}
	return exit
}

func (c *cli) runLex(args []string) int {
	fs := c.newFlagSet("lex")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	src, ok := c.loadSingle("lex", fs)
	if !ok {
		return 1
	}
	tokens, diags := lexer.Lex(src.Text)
	for _, tok := range tokens {
		fmt.Fprintf(c.stdout, "%d:%d\t%s\n", tok.Span.Start.Line, tok.Span.Start.Column, tok)
	}
	if len(diags) > 0 {
		c.reportError(src.Path, diags)
		return 1
	}
	return 0
}

func (c *cli) runFmt(args []string) int {
	fs := c.newFlagSet("fmt")
	write := fs.Bool("w", false, "write the result back to the source file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(c.stderr, "mkt fmt expects at least one source file")
		return 1
	}
	exit := 0
	for _, path := range fs.Args() {
		src, err := driver.LoadSourceFile(path)
		if err != nil {
			fmt.Fprintf(c.stderr, "mkt fmt: %v\n", err)
			exit = 1
			continue
		}
		program, comments, diags := parser.ParseFile(src.Text)
		if len(diags) > 0 {
			c.reportError(src.Path, diags)
			exit = 1
			continue
		}
		formatted := ast.PrintWithComments(program, comments)
		if !*write {
			fmt.Fprint(c.stdout, formatted)
			continue
		}
		if formatted == src.Text {
			continue
		}
		if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
			fmt.Fprintf(c.stderr, "mkt fmt: write %s: %v\n", path, err)
			exit = 1
			continue
		}
		fmt.Fprintln(c.stdout, path)
	}
	return exit
}

func (c *cli) runTranspile(args []string) int {
	fs := c.newFlagSet("transpile")
	className := fs.String("class", "", "Java class name (defaults to the file name)")
	outDir := fs.String("o", "", "directory to write the .java file into (stdout when empty)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	src, ok := c.loadSingle("transpile", fs)
	if !ok {
		return 1
	}
	checked, diags, err := interpreter.Check(src.Text)
	if err == nil && len(diags) > 0 {
		err = diags
	}
	if err != nil {
		c.reportError(src.Path, err)
		return 1
	}

	name := *className
	if name == "" {
		name = transpiler.ClassNameFromPath(src.Path)
	}
	result, err := transpiler.New(transpiler.Options{ClassName: name}).Transpile(checked)
	if err != nil {
		fmt.Fprintf(c.stderr, "mkt transpile: %v\n", err)
		return 1
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(c.stderr, "warning: %s: %s\n", src.Path, warning)
	}
	if *outDir == "" {
		if _, err := c.stdout.Write(result.Source); err != nil {
			fmt.Fprintf(c.stderr, "mkt transpile: %v\n", err)
			return 1
		}
		return 0
	}
	target, err := result.Write(osfs.New(*outDir), "")
	if err != nil {
		fmt.Fprintf(c.stderr, "mkt transpile: %v\n", err)
		return 1
	}
	fmt.Fprintln(c.stdout, filepath.Join(*outDir, filepath.FromSlash(target)))
	return 0
}
