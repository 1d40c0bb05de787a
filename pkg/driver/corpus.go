package driver

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/go-git/go-billy/v5/osfs"
	"gopkg.in/yaml.v3"

	"microkotlin/interpreter-go/pkg/diag"
	"microkotlin/interpreter-go/pkg/interpreter"
)

// Corpus is a parsed corpus manifest: a set of sample programs with their
// expected behavior.
type Corpus struct {
	// Path is the manifest location; relative fixture files resolve against
	// its directory unless Source names a git repository.
	Path     string
	Name     string
	Source   *CorpusSource
	Fixtures []*Fixture
}

// CorpusSource points at a git repository holding the fixture files.
type CorpusSource struct {
	Git    string
	Branch string
	Tag    string
	Rev    string
	Dir    string
}

// Fixture describes one program run and its expected outcome.
type Fixture struct {
	Name string
	// File is a path inside the corpus filesystem; Code holds the program
	// inline. Exactly one is set.
	File         string
	Code         string
	Stdin        string
	Stdout       string
	Stage        Stage
	Diagnostics  []diag.Kind
	RuntimeError interpreter.RuntimeErrorKind
	MaxCallDepth int
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "corpus: invalid manifest"
	}
	var b strings.Builder
	b.WriteString("corpus manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type corpusFile struct {
	Name     string        `yaml:"name"`
	Source   *sourceYAML   `yaml:"source"`
	Defaults defaultsYAML  `yaml:"defaults"`
	Fixtures []fixtureYAML `yaml:"fixtures"`
}

type sourceYAML struct {
	Git    string `yaml:"git"`
	Branch string `yaml:"branch"`
	Tag    string `yaml:"tag"`
	Rev    string `yaml:"rev"`
	Dir    string `yaml:"dir"`
}

type fixtureYAML struct {
	Name         string     `yaml:"name"`
	File         string     `yaml:"file"`
	Code         string     `yaml:"code"`
	Stdin        string     `yaml:"stdin"`
	Stdout       string     `yaml:"stdout"`
	Stage        string     `yaml:"stage"`
	Diagnostics  stringList `yaml:"diagnostics"`
	RuntimeError string     `yaml:"runtime_error"`
	MaxCallDepth int        `yaml:"max_call_depth"`
}

// defaultsYAML holds the fixture keys that may be shared. Identity and
// expectation keys stay per fixture.
type defaultsYAML struct {
	Stdin        string `yaml:"stdin"`
	Stage        string `yaml:"stage"`
	MaxCallDepth int    `yaml:"max_call_depth"`
}

func (d defaultsYAML) fixture() fixtureYAML {
	return fixtureYAML{Stdin: d.Stdin, Stage: d.Stage, MaxCallDepth: d.MaxCallDepth}
}

// stringList accepts either a single scalar or a sequence of scalars.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			if str = strings.TrimSpace(str); str != "" {
				items = append(items, str)
			}
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("corpus: expected string or sequence but found %s", value.ShortTag())
	}
}

// LoadCorpus parses and validates a manifest from the local disk.
func LoadCorpus(path string) (*Corpus, error) {
	if path == "" {
		return nil, fmt.Errorf("corpus: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: resolve %s: %w", path, err)
	}
	fs := osfs.New(filepath.Dir(absPath))
	file, err := fs.Open(filepath.Base(absPath))
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", absPath, err)
	}
	defer file.Close()
	return DecodeCorpus(file, absPath)
}

// DecodeCorpus parses a manifest from r. Unknown keys are rejected.
func DecodeCorpus(r io.Reader, path string) (*Corpus, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw corpusFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("corpus: %s is empty", path)
		}
		return nil, fmt.Errorf("corpus: parse %s: %w", path, err)
	}
	return raw.toCorpus(path)
}

func (cf corpusFile) toCorpus(path string) (*Corpus, error) {
	var errs ValidationError
	corpus := &Corpus{Path: path, Name: strings.TrimSpace(cf.Name)}
	if corpus.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if cf.Source != nil {
		corpus.Source = &CorpusSource{
			Git:    strings.TrimSpace(cf.Source.Git),
			Branch: strings.TrimSpace(cf.Source.Branch),
			Tag:    strings.TrimSpace(cf.Source.Tag),
			Rev:    strings.TrimSpace(cf.Source.Rev),
			Dir:    strings.TrimSpace(cf.Source.Dir),
		}
		errs.Issues = append(errs.Issues, corpus.Source.validate()...)
	}
	if len(cf.Fixtures) == 0 {
		errs.Issues = append(errs.Issues, "fixtures must list at least one program")
	}

	defaults := cf.Defaults.fixture()
	seen := make(map[string]int, len(cf.Fixtures))
	for idx, raw := range cf.Fixtures {
		merged := raw
		if err := mergo.Merge(&merged, defaults); err != nil {
			return nil, fmt.Errorf("corpus: apply defaults to fixtures[%d]: %w", idx, err)
		}
		fixture, issues := merged.toFixture(idx)
		errs.Issues = append(errs.Issues, issues...)
		if fixture == nil {
			continue
		}
		if prev, dup := seen[fixture.Name]; dup {
			errs.Issues = append(errs.Issues, fmt.Sprintf("fixtures[%d]: name %q already used by fixtures[%d]", idx, fixture.Name, prev))
			continue
		}
		seen[fixture.Name] = idx
		corpus.Fixtures = append(corpus.Fixtures, fixture)
	}
	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return corpus, nil
}

func (s *CorpusSource) validate() []string {
	var issues []string
	refs := 0
	for _, ref := range []string{s.Branch, s.Tag, s.Rev} {
		if ref != "" {
			refs++
		}
	}
	if refs > 0 && s.Git == "" {
		issues = append(issues, "source.git must be provided with branch, tag or rev")
	}
	if refs > 1 {
		issues = append(issues, "source accepts only one of branch, tag or rev")
	}
	return issues
}

func (f fixtureYAML) toFixture(idx int) (*Fixture, []string) {
	var issues []string
	label := fmt.Sprintf("fixtures[%d]", idx)
	fixture := &Fixture{
		Name:         strings.TrimSpace(f.Name),
		File:         strings.TrimSpace(f.File),
		Code:         f.Code,
		Stdin:        f.Stdin,
		Stdout:       f.Stdout,
		Stage:        Stage(strings.TrimSpace(f.Stage)),
		MaxCallDepth: f.MaxCallDepth,
	}
	if fixture.Name == "" {
		fixture.Name = strings.TrimSuffix(filepath.Base(fixture.File), filepath.Ext(fixture.File))
	}
	if fixture.Name == "" || fixture.Name == "." {
		issues = append(issues, label+": name or file must be provided")
	} else {
		label = fmt.Sprintf("fixture %q", fixture.Name)
	}
	if fixture.File != "" && fixture.Code != "" {
		issues = append(issues, label+": file and code are mutually exclusive")
	}
	if fixture.File == "" && fixture.Code == "" {
		issues = append(issues, label+": file or code must be provided")
	}
	if fixture.Stage == "" {
		fixture.Stage = StageOK
	}
	if !fixture.Stage.IsValid() {
		issues = append(issues, fmt.Sprintf("%s: unsupported stage %q", label, fixture.Stage))
	}
	if fixture.MaxCallDepth < 0 {
		issues = append(issues, label+": max_call_depth must not be negative")
	}
	for _, name := range f.Diagnostics {
		kind, stage, ok := diag.ParseKind(name)
		if !ok {
			issues = append(issues, fmt.Sprintf("%s: unknown diagnostic kind %q", label, name))
			continue
		}
		if fixture.Stage.IsValid() && stageForDiagnostic(stage) != fixture.Stage {
			issues = append(issues, fmt.Sprintf("%s: diagnostic %s is not reported at stage %s", label, kind, fixture.Stage))
			continue
		}
		fixture.Diagnostics = append(fixture.Diagnostics, kind)
	}
	if name := strings.TrimSpace(f.RuntimeError); name != "" {
		kind, ok := interpreter.ParseRuntimeErrorKind(name)
		switch {
		case !ok:
			issues = append(issues, fmt.Sprintf("%s: unknown runtime error %q", label, name))
		case fixture.Stage != StageRuntime:
			issues = append(issues, fmt.Sprintf("%s: runtime_error requires stage runtime", label))
		default:
			fixture.RuntimeError = kind
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return fixture, nil
}
