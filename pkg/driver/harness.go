package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"microkotlin/interpreter-go/pkg/diag"
	"microkotlin/interpreter-go/pkg/interpreter"
)

// HarnessOptions configures a corpus run.
type HarnessOptions struct {
	// Parallel bounds concurrently running fixtures; zero uses GOMAXPROCS.
	Parallel int
	// Filter keeps only fixtures whose name contains it.
	Filter string
}

// FixtureResult is the outcome of one fixture.
type FixtureResult struct {
	Name     string   `yaml:"name"`
	Passed   bool     `yaml:"passed"`
	Stage    Stage    `yaml:"stage"`
	Failures []string `yaml:"failures,omitempty"`
	Diff     string   `yaml:"diff,omitempty"`
}

// Report summarizes a corpus run in manifest order.
type Report struct {
	Corpus  string          `yaml:"corpus"`
	Commit  string          `yaml:"commit,omitempty"`
	Passed  int             `yaml:"passed"`
	Failed  int             `yaml:"failed"`
	Results []FixtureResult `yaml:"results"`
}

// OK reports whether every fixture passed.
func (r *Report) OK() bool {
	return r != nil && r.Failed == 0
}

// RunCorpus executes every fixture against files in fs. Each fixture gets
// its own interpreter, so fixtures run concurrently.
func RunCorpus(ctx context.Context, corpus *Corpus, cfs *CorpusFS, opts HarnessOptions) (*Report, error) {
	if corpus == nil {
		return nil, fmt.Errorf("corpus: nil manifest")
	}
	if cfs == nil || cfs.FS == nil {
		return nil, fmt.Errorf("corpus: nil filesystem")
	}
	var fixtures []*Fixture
	for _, fixture := range corpus.Fixtures {
		if opts.Filter == "" || strings.Contains(fixture.Name, opts.Filter) {
			fixtures = append(fixtures, fixture)
		}
	}
	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	results := make([]FixtureResult, len(fixtures))
	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	for idx, fixture := range fixtures {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(idx int, fixture *Fixture) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = runFixture(cfs.FS, fixture)
		}(idx, fixture)
	}
	wg.Wait()

	report := &Report{Corpus: corpus.Name, Commit: cfs.Commit, Results: results}
	for _, res := range results {
		if res.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

func runFixture(fs billy.Filesystem, fixture *Fixture) FixtureResult {
	result := FixtureResult{Name: fixture.Name}
	text := fixture.Code
	if fixture.File != "" {
		data, err := util.ReadFile(fs, fixture.File)
		if err != nil {
			result.Failures = []string{fmt.Sprintf("read %s: %v", fixture.File, err)}
			return result
		}
		text = string(data)
	}

	var stdout strings.Builder
	err := interpreter.Run(text, interpreter.Options{
		Input:        strings.NewReader(fixture.Stdin),
		Output:       &stdout,
		MaxCallDepth: fixture.MaxCallDepth,
	})
	result.Stage = StageOf(err)
	if result.Stage == "" {
		result.Failures = append(result.Failures, fmt.Sprintf("unexpected error: %v", err))
		return result
	}
	if result.Stage != fixture.Stage {
		result.Failures = append(result.Failures, fmt.Sprintf("expected stage %s, got %s", fixture.Stage, result.Stage))
		for _, line := range DescribeError(fixture.File, err) {
			result.Failures = append(result.Failures, "  "+line)
		}
	}

	var diags diag.List
	if len(fixture.Diagnostics) > 0 && errors.As(err, &diags) {
		if got := diags.Kinds(); !equalKinds(got, fixture.Diagnostics) {
			result.Failures = append(result.Failures, fmt.Sprintf("expected diagnostics %v, got %v", fixture.Diagnostics, got))
		}
	}
	var rerr *interpreter.RuntimeError
	if fixture.RuntimeError != "" && errors.As(err, &rerr) && rerr.Kind != fixture.RuntimeError {
		result.Failures = append(result.Failures, fmt.Sprintf("expected runtime error %s, got %s", fixture.RuntimeError, rerr.Kind))
	}
	if (fixture.Stage == StageOK || fixture.Stage == StageRuntime) && stdout.String() != fixture.Stdout {
		result.Failures = append(result.Failures, "stdout mismatch")
		result.Diff = LineDiff(fixture.Stdout, stdout.String())
	}
	result.Passed = len(result.Failures) == 0
	return result
}

func equalKinds(a, b []diag.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LineDiff renders a line-oriented diff from want to got: "-" lines are
// expected but missing, "+" lines were produced instead.
func LineDiff(want, got string) string {
	var lines []string
	index := make(map[string]rune)
	a := linesToRunes(want, index, &lines)
	b := linesToRunes(got, index, &lines)
	diffs := diffmatchpatch.New().DiffMainRunes(a, b, false)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, r := range d.Text {
			line := lines[runeIndex(r)]
			out.WriteString(prefix)
			out.WriteString(strings.TrimSuffix(line, "\n"))
			out.WriteByte('\n')
			if !strings.HasSuffix(line, "\n") && d.Type != diffmatchpatch.DiffEqual {
				out.WriteString("\\ no newline at end\n")
			}
		}
	}
	return out.String()
}

// Each distinct line maps to one rune, skipping the surrogate range so the
// diff text survives string conversion.
const surrogateStart, surrogateEnd = 0xD800, 0xE000

func linesToRunes(text string, index map[string]rune, lines *[]string) []rune {
	var out []rune
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		r, ok := index[line]
		if !ok {
			r = rune(len(*lines) + 1)
			if r >= surrogateStart {
				r += surrogateEnd - surrogateStart
			}
			index[line] = r
			*lines = append(*lines, line)
		}
		out = append(out, r)
	}
	return out
}

func runeIndex(r rune) int {
	if r >= surrogateEnd {
		r -= surrogateEnd - surrogateStart
	}
	return int(r) - 1
}

// WriteReport encodes report as YAML.
func WriteReport(w io.Writer, report *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("corpus: encode report: %w", err)
	}
	return enc.Close()
}

// Summary renders a human-readable report, one line per fixture.
func (r *Report) Summary() string {
	var b strings.Builder
	for _, res := range r.Results {
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s %s\n", status, res.Name)
		for _, failure := range res.Failures {
			fmt.Fprintf(&b, "    %s\n", failure)
		}
		if res.Diff != "" {
			for _, line := range strings.Split(strings.TrimSuffix(res.Diff, "\n"), "\n") {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
	}
	fmt.Fprintf(&b, "%s: %d passed, %d failed\n", r.Corpus, r.Passed, r.Failed)
	return b.String()
}
