package driver

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"gopkg.in/yaml.v3"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/diag"
	"microkotlin/interpreter-go/pkg/interpreter"
)

const factorialProgram = `
fun main() {
  print("Digite um número: ");
  var n: Int = readInt();

  if (n < 0) {
    printLn("Não pode número negativo");
  } else {
    var acm: Int = 1;
    var i: Int = 1;
    while (i <= n) {
      acm = acm * i;
      i = i + 1;
    }
    printLn(n + "! = " + acm);
  }
}
`

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func initGitRepo(t *testing.T, dir string) (*git.Repository, string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "MicroKotlin",
			Email: "mkt@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return repo, hash.String()
}

func TestDescribeDiagnostic(t *testing.T) {
	d := diag.Diagnostic{
		Severity: diag.SeverityError,
		Stage:    diag.StageTypechecker,
		Kind:     diag.TypeMismatch,
		Span:     ast.Span{Start: ast.Position{Line: 3, Column: 7}, End: ast.Position{Line: 3, Column: 9}},
		Message:  "typechecker: cannot assign String to 'x' of type Int",
	}
	got := DescribeDiagnostic("Main.kt", d)
	want := "typechecker: Main.kt:3:7 cannot assign String to 'x' of type Int"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	d.Severity = diag.SeverityWarning
	if got := DescribeDiagnostic("", d); got != "warning: typechecker: 3:7 cannot assign String to 'x' of type Int" {
		t.Fatalf("unexpected warning form %q", got)
	}
}

func TestDescribeErrorFromPipeline(t *testing.T) {
	err := interpreter.Run("fun main() { val x: Int = ; }", interpreter.Options{})
	if StageOf(err) != StageParse {
		t.Fatalf("expected parse stage, got %q (%v)", StageOf(err), err)
	}
	lines := DescribeError("prog.kt", err)
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "parser: prog.kt:1:27 ") {
		t.Fatalf("unexpected description %v", lines)
	}

	err = interpreter.Run("fun main() { printLn(1 / 0); }", interpreter.Options{})
	if StageOf(err) != StageRuntime {
		t.Fatalf("expected runtime stage, got %v", err)
	}
	lines = DescribeError("prog.kt", err)
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "runtime: prog.kt:1:22 DivisionByZero: ") {
		t.Fatalf("unexpected description %v", lines)
	}
}

func TestStageOf(t *testing.T) {
	cases := map[string]Stage{
		`fun main() { printLn("ok"); }`:      StageOK,
		`fun main() { val s: String = "x; }`: StageLex,
		`fun main() { printLn( }`:            StageParse,
		`fun main() { val x: Int = true; }`:  StageCheck,
	}
	for src, want := range cases {
		if got := StageOf(interpreter.Run(src, interpreter.Options{})); got != want {
			t.Fatalf("StageOf(%q) = %q, want %q", src, got, want)
		}
	}
	if got := StageOf(errors.New("boom")); got != "" {
		t.Fatalf("unclassified error should have no stage, got %q", got)
	}
}

func TestLoadSourceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Fatorial.kt")
	writeFile(t, path, factorialProgram)
	src, err := LoadSourceFile(path)
	if err != nil {
		t.Fatalf("LoadSourceFile: %v", err)
	}
	if src.Path != path || !strings.Contains(src.Text, "readInt()") {
		t.Fatalf("unexpected source %+v", src)
	}
	if _, err := LoadSourceFile(filepath.Join(dir, "missing.kt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDecodeCorpusAppliesDefaults(t *testing.T) {
	manifest := `
name: samples
defaults:
  stdin: "5\n"
  max_call_depth: 64
fixtures:
  - file: Fatorial.kt
    stdout: "ok\n"
  - name: bad-assign
    code: "fun main() { val x: Int = 1; x = 2; }"
    stage: check
    diagnostics: ReassignImmutable
  - name: two-errors
    code: "fun main() { val x: Int = true; y = 1; }"
    stage: check
    diagnostics: [TypeMismatch, UndefinedSymbol]
  - name: bad-input
    code: "fun main() { val n: Int = readInt(); }"
    stdin: "abc"
    stage: runtime
    runtime_error: InputFormatError
`
	corpus, err := DecodeCorpus(strings.NewReader(manifest), "corpus.yml")
	if err != nil {
		t.Fatalf("DecodeCorpus: %v", err)
	}
	if corpus.Name != "samples" || len(corpus.Fixtures) != 4 {
		t.Fatalf("unexpected corpus %+v", corpus)
	}
	first := corpus.Fixtures[0]
	if first.Name != "Fatorial" || first.Stdin != "5\n" || first.MaxCallDepth != 64 || first.Stage != StageOK {
		t.Fatalf("defaults not applied: %+v", first)
	}
	if got := corpus.Fixtures[1].Diagnostics; len(got) != 1 || got[0] != diag.ReassignImmutable {
		t.Fatalf("scalar diagnostics not decoded: %v", got)
	}
	if got := corpus.Fixtures[2].Diagnostics; len(got) != 2 || got[1] != diag.UndefinedSymbol {
		t.Fatalf("list diagnostics not decoded: %v", got)
	}
	last := corpus.Fixtures[3]
	if last.Stdin != "abc" || last.RuntimeError != interpreter.InputFormatError {
		t.Fatalf("fixture override lost: %+v", last)
	}
}

func TestDecodeCorpusRejectsUnknownFields(t *testing.T) {
	manifest := `
name: samples
fixtures:
  - name: a
    code: "fun main() { }"
    expected_output: "x"
`
	_, err := DecodeCorpus(strings.NewReader(manifest), "corpus.yml")
	if err == nil || !strings.Contains(err.Error(), "expected_output") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestDecodeCorpusDefaultsOnlyShareRunSettings(t *testing.T) {
	for _, key := range []string{"name: shared", "file: Fatorial.kt", "code: \"fun main() { }\"", "stdout: \"x\""} {
		manifest := "name: samples\ndefaults:\n  " + key + "\nfixtures:\n  - name: a\n    code: \"fun main() { }\"\n"
		_, err := DecodeCorpus(strings.NewReader(manifest), "corpus.yml")
		field := strings.SplitN(key, ":", 2)[0]
		if err == nil || !strings.Contains(err.Error(), "field "+field+" not found") {
			t.Fatalf("defaults %q: expected unknown field error, got %v", key, err)
		}
	}
}

func TestDecodeCorpusValidation(t *testing.T) {
	manifest := `
source:
  branch: main
  tag: v1
fixtures:
  - name: dup
    code: "fun main() { }"
  - name: dup
    code: "fun main() { }"
  - name: both
    file: a.kt
    code: "fun main() { }"
  - name: wrong-stage
    code: "fun main() { }"
    diagnostics: TypeMismatch
  - name: unknown
    code: "fun main() { }"
    stage: runtime
    runtime_error: Overflow
`
	_, err := DecodeCorpus(strings.NewReader(manifest), "corpus.yml")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := []string{
		"name must be provided",
		"source.git must be provided with branch, tag or rev",
		"source accepts only one of branch, tag or rev",
		`fixtures[1]: name "dup" already used by fixtures[0]`,
		`fixture "both": file and code are mutually exclusive`,
		`fixture "wrong-stage": diagnostic TypeMismatch is not reported at stage ok`,
		`fixture "unknown": unknown runtime error "Overflow"`,
	}
	if strings.Join(verr.Issues, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected issues:\n%s", strings.Join(verr.Issues, "\n"))
	}
}

func TestRunCorpusFromDisk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "samples", "Fatorial.kt"), factorialProgram)
	writeFile(t, filepath.Join(dir, "corpus.yml"), `
name: local
source:
  dir: samples
fixtures:
  - file: Fatorial.kt
    stdin: "5\n"
    stdout: "Digite um número: 5! = 120\n"
  - name: wrong-output
    file: Fatorial.kt
    stdin: "3\n"
    stdout: "Digite um número: 3! = 7\n"
  - name: type-error
    code: "fun main() { var x: Int = 5; x = \"hi\"; }"
    stage: check
    diagnostics: [TypeMismatch]
  - name: no-input
    file: Fatorial.kt
    stage: runtime
    runtime_error: InputUnavailable
    stdout: "Digite um número: "
`)
	corpus, err := LoadCorpus(filepath.Join(dir, "corpus.yml"))
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	cfs, err := OpenCorpusFS(context.Background(), corpus)
	if err != nil {
		t.Fatalf("OpenCorpusFS: %v", err)
	}
	report, err := RunCorpus(context.Background(), corpus, cfs, HarnessOptions{Parallel: 2})
	if err != nil {
		t.Fatalf("RunCorpus: %v", err)
	}
	if report.Passed != 3 || report.Failed != 1 || report.OK() {
		t.Fatalf("unexpected report:\n%s", report.Summary())
	}
	failed := report.Results[1]
	if failed.Name != "wrong-output" || failed.Passed {
		t.Fatalf("expected wrong-output to fail, got %+v", failed)
	}
	if !strings.Contains(failed.Diff, "- Digite um número: 3! = 7\n") || !strings.Contains(failed.Diff, "+ Digite um número: 3! = 6\n") {
		t.Fatalf("unexpected diff:\n%s", failed.Diff)
	}

	filtered, err := RunCorpus(context.Background(), corpus, cfs, HarnessOptions{Filter: "type"})
	if err != nil {
		t.Fatalf("RunCorpus: %v", err)
	}
	if len(filtered.Results) != 1 || !filtered.OK() {
		t.Fatalf("filter not applied:\n%s", filtered.Summary())
	}
}

func TestRunCorpusFromGit(t *testing.T) {
	repoDir := t.TempDir()
	writeFile(t, filepath.Join(repoDir, "kt", "Fatorial.kt"), factorialProgram)
	repo, commit := initGitRepo(t, repoDir)
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if _, err := repo.CreateTag("v1", head.Hash(), nil); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	for _, source := range []*CorpusSource{
		{Git: repoDir, Tag: "v1", Dir: "kt"},
		{Git: repoDir, Rev: commit, Dir: "kt"},
		{Git: repoDir, Dir: "kt"},
	} {
		corpus := &Corpus{
			Name:   "remote",
			Source: source,
			Fixtures: []*Fixture{{
				Name:   "factorial",
				File:   "Fatorial.kt",
				Stdin:  "4",
				Stdout: "Digite um número: 4! = 24\n",
				Stage:  StageOK,
			}},
		}
		cfs, err := OpenCorpusFS(context.Background(), corpus)
		if err != nil {
			t.Fatalf("OpenCorpusFS(%+v): %v", source, err)
		}
		if cfs.Commit != commit {
			t.Fatalf("checked out %s, want %s", cfs.Commit, commit)
		}
		report, err := RunCorpus(context.Background(), corpus, cfs, HarnessOptions{})
		if err != nil {
			t.Fatalf("RunCorpus: %v", err)
		}
		if !report.OK() || report.Commit != commit {
			t.Fatalf("unexpected report:\n%s", report.Summary())
		}
	}

	_, err = FetchGitCorpus(context.Background(), &CorpusSource{Git: repoDir, Tag: "missing"})
	if err == nil {
		t.Fatalf("expected unknown tag to fail")
	}
}

func TestWriteReport(t *testing.T) {
	report := &Report{
		Corpus: "samples",
		Passed: 1,
		Failed: 1,
		Results: []FixtureResult{
			{Name: "a", Passed: true, Stage: StageOK},
			{Name: "b", Stage: StageCheck, Failures: []string{"expected stage ok, got check"}},
		},
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, report); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	var decoded Report
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode report: %v\n%s", err, buf.String())
	}
	if decoded.Corpus != "samples" || len(decoded.Results) != 2 || decoded.Results[1].Failures[0] != "expected stage ok, got check" {
		t.Fatalf("unexpected decoded report %+v", decoded)
	}
	if strings.Contains(buf.String(), "commit:") {
		t.Fatalf("empty commit should be omitted:\n%s", buf.String())
	}
}

func TestLineDiff(t *testing.T) {
	got := LineDiff("a\nb\nc\n", "a\nx\nc\n")
	want := "  a\n- b\n+ x\n  c\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if LineDiff("same\n", "same\n") != "  same\n" {
		t.Fatalf("identical inputs should only have context lines")
	}
}
