package transpiler

import (
	"fmt"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"microkotlin/interpreter-go/pkg/typechecker"
)

// Options configures Java generation.
type Options struct {
	// ClassName names the emitted public class. Empty selects "Main".
	ClassName string
	// Indent is one indentation level. Empty selects two spaces.
	Indent string
}

// Result holds one generated Java compilation unit.
type Result struct {
	ClassName string
	Source    []byte
	Warnings  []string
}

// Transpiler turns checked MicroKotlin programs into Java source.
type Transpiler struct {
	opts Options
}

func New(opts Options) *Transpiler {
	if opts.ClassName == "" {
		opts.ClassName = "Main"
	}
	opts.ClassName = exportIdent(opts.ClassName)
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	return &Transpiler{opts: opts}
}

// Transpile emits a single Java class equivalent to program.
func (t *Transpiler) Transpile(program *typechecker.CheckedProgram) (*Result, error) {
	if program == nil || program.Program() == nil || program.Main() == nil {
		return nil, fmt.Errorf("transpiler: missing checked program")
	}
	gen := newGenerator(t.opts, program)
	src, err := gen.render()
	if err != nil {
		return nil, err
	}
	return &Result{ClassName: t.opts.ClassName, Source: src, Warnings: gen.warnings}, nil
}

// FileName is the Java file name the class must be stored under.
func (r *Result) FileName() string {
	return r.ClassName + ".java"
}

// Write stores the generated class under dir in fs and returns its path.
func (r *Result) Write(fs billy.Filesystem, dir string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("transpiler: nil result")
	}
	if dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("transpiler: create %s: %w", dir, err)
		}
	}
	target := path.Join(dir, r.FileName())
	if err := util.WriteFile(fs, target, r.Source, os.FileMode(0o644)); err != nil {
		return "", fmt.Errorf("transpiler: write %s: %w", target, err)
	}
	return target, nil
}
