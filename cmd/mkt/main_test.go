package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"microkotlin/interpreter-go/pkg/driver"
)

const samplesManifest = "../../testdata/corpus.yml"

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimLeft(contents, "\n")), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func captureCLI(t *testing.T, stdin string, args []string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := &cli{stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr}
	code := c.run(args)
	return code, stdout.String(), stderr.String()
}

func TestRunExecutesProgram(t *testing.T) {
	code, stdout, stderr := captureCLI(t, "5\n", []string{"run", "../../testdata/samples/Fatorial.kt"})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	if stdout != "Digite um número: 5! = 120\n" {
		t.Fatalf("unexpected stdout %q", stdout)
	}
}

func TestBareSourcePathRuns(t *testing.T) {
	code, stdout, stderr := captureCLI(t, "7\n", []string{"../../testdata/samples/Fibonacci.kt"})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	if !strings.HasSuffix(stdout, "1, 1, 2, 3, 5, 8, 13\n") {
		t.Fatalf("unexpected stdout %q", stdout)
	}
}

func TestRunReportsRuntimeError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep.kt")
	writeFile(t, path, `
fun down(n: Int): Int {
  return down(n + 1);
}

fun main() {
  printLn(down(0));
}
`)
	code, _, stderr := captureCLI(t, "", []string{"run", "-max-depth", "32", path})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.HasPrefix(stderr, "runtime: "+path+":2:") || !strings.Contains(stderr, "StackOverflow") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestCheckReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.kt")
	bad := filepath.Join(dir, "bad.kt")
	writeFile(t, good, "fun main() { printLn(1); }\n")
	writeFile(t, bad, "fun main() {\n  val x: Int = \"a\";\n}\n")

	code, stdout, stderr := captureCLI(t, "", []string{"check", good, bad})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if stdout != good+": ok\n" {
		t.Fatalf("unexpected stdout %q", stdout)
	}
	if !strings.HasPrefix(stderr, "typechecker: "+bad+":2:") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
	if strings.Count(stderr, "\n") != 1 {
		t.Fatalf("expected a single diagnostic, got %q", stderr)
	}
}

func TestLexPrintsTokens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.kt")
	writeFile(t, path, "fun main() {}\n")
	code, stdout, stderr := captureCLI(t, "", []string{"lex", path})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 tokens (including end of input), got %d: %q", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "1:1\t") || !strings.Contains(lines[0], `"fun"`) {
		t.Fatalf("unexpected first token %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1:5\t") {
		t.Fatalf("unexpected second token %q", lines[1])
	}
}

func TestLexReportsErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.kt")
	writeFile(t, path, "fun main() { val s: String = \"open; }\n")
	code, _, stderr := captureCLI(t, "", []string{"lex", path})
	if code != 1 || !strings.HasPrefix(stderr, "lexer: "+path+":1:") {
		t.Fatalf("expected lexer diagnostic, got code=%d stderr=%q", code, stderr)
	}
}

func TestFmtRewritesSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.kt")
	writeFile(t, path, "val  k : Int=2;fun main(){var x:Int=(1+2)*k; while(x>0){x=x-1;}printLn(x);}\n")
	want := `val k: Int = 2;

fun main() {
  var x: Int = (1 + 2) * k;
  while (x > 0) {
    x = x - 1;
  }
  printLn(x);
}
`
	code, stdout, stderr := captureCLI(t, "", []string{"fmt", path})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	if stdout != want {
		t.Fatalf("unexpected formatted output:\n%s", stdout)
	}

	code, stdout, _ = captureCLI(t, "", []string{"fmt", "-w", path})
	if code != 0 || stdout != path+"\n" {
		t.Fatalf("expected rewrite of %s, got code=%d stdout=%q", path, code, stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != want {
		t.Fatalf("file not rewritten:\n%s", data)
	}

	code, stdout, _ = captureCLI(t, "", []string{"fmt", "-w", path})
	if code != 0 || stdout != "" {
		t.Fatalf("formatted file should be left alone, got code=%d stdout=%q", code, stdout)
	}
}

func TestFmtWriteKeepsComments(t *testing.T) {
	sample, err := os.ReadFile("../../testdata/samples/Fatorial.kt")
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	path := filepath.Join(t.TempDir(), "Fatorial.kt")
	writeFile(t, path, string(sample))

	code, stdout, stderr := captureCLI(t, "", []string{"fmt", "-w", path})
	if code != 0 || stdout != path+"\n" {
		t.Fatalf("expected rewrite of %s, got code=%d stdout=%q stderr=%q", path, code, stdout, stderr)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(data), "/**\n * Calcula o fatorial de um número.\n */\nfun main() {\n") {
		t.Fatalf("doc comment lost:\n%s", data)
	}

	code, stdout, _ = captureCLI(t, "5\n", []string{"run", path})
	if code != 0 || stdout != "Digite um número: 5! = 120\n" {
		t.Fatalf("rewritten program changed behavior: code=%d stdout=%q", code, stdout)
	}
}

func TestTranspileWritesJava(t *testing.T) {
	out := t.TempDir()
	code, stdout, stderr := captureCLI(t, "", []string{"transpile", "-o", out, "../../testdata/samples/CalculoArea.kt"})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	target := filepath.Join(out, "CalculoArea.java")
	if strings.TrimSpace(stdout) != target {
		t.Fatalf("unexpected stdout %q", stdout)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	src := string(data)
	for _, want := range []string{
		"public class CalculoArea {",
		"private static final double PI = 3.14;",
		"raio = scanner.nextInt();",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("generated source missing %q:\n%s", want, src)
		}
	}
}

func TestTranspileToStdoutWithClassName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.kt")
	writeFile(t, path, "fun main() { printLn(\"hi\"); }\n")
	code, stdout, stderr := captureCLI(t, "", []string{"transpile", "-class", "Greeter", path})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	if !strings.Contains(stdout, "public class Greeter {") || !strings.Contains(stdout, `System.out.println("hi");`) {
		t.Fatalf("unexpected java:\n%s", stdout)
	}
}

func TestCorpusRunsSamples(t *testing.T) {
	code, stdout, stderr := captureCLI(t, "", []string{"corpus", samplesManifest})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stdout=%q stderr=%q)", code, stdout, stderr)
	}
	if !strings.HasSuffix(stdout, "samples: 6 passed, 0 failed\n") {
		t.Fatalf("unexpected summary %q", stdout)
	}
}

func TestCorpusUsesEnvironmentManifestAndWritesReport(t *testing.T) {
	t.Setenv(corpusEnvVar, samplesManifest)
	code, stdout, stderr := captureCLI(t, "", []string{"corpus", "-filter", "Fatorial", "-report", "-"})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	var report driver.Report
	if err := yaml.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, stdout)
	}
	if report.Corpus != "samples" || report.Passed != 2 || len(report.Results) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Results[0].Name != "Fatorial" || report.Results[1].Name != "Fatorial-negative" {
		t.Fatalf("results out of manifest order: %+v", report.Results)
	}
}

func TestCorpusFailureExitCode(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "corpus.yml")
	writeFile(t, manifest, `
name: broken
fixtures:
  - name: wrong
    code: "fun main() { printLn(1 + 1); }"
    stdout: "3\n"
`)
	code, stdout, _ := captureCLI(t, "", []string{"corpus", manifest})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	for _, want := range []string{"FAIL wrong", "- 3", "+ 2", "broken: 0 passed, 1 failed"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("summary missing %q:\n%s", want, stdout)
		}
	}
}

func TestCorpusRequiresManifest(t *testing.T) {
	t.Setenv(corpusEnvVar, "")
	code, _, stderr := captureCLI(t, "", []string{"corpus"})
	if code != 1 || !strings.Contains(stderr, corpusEnvVar) {
		t.Fatalf("expected manifest error, got code=%d stderr=%q", code, stderr)
	}
}

func TestVersionAndUnknownCommand(t *testing.T) {
	code, stdout, _ := captureCLI(t, "", []string{"version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("unexpected version output code=%d stdout=%q", code, stdout)
	}
	code, _, stderr := captureCLI(t, "", []string{"frobnicate"})
	if code != 1 || !strings.Contains(stderr, `unknown command "frobnicate"`) || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("unexpected unknown-command handling code=%d stderr=%q", code, stderr)
	}
}
