package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"microkotlin/interpreter-go/pkg/driver"
)

func (c *cli) runCorpus(args []string) int {
	fs := c.newFlagSet("corpus")
	parallel := fs.Int("parallel", 0, "fixtures to run concurrently (0 uses GOMAXPROCS)")
	filter := fs.String("filter", "", "run only fixtures whose name contains this text")
	reportPath := fs.String("report", "", "write a YAML report to this file, or - for stdout")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(c.stderr, "mkt corpus: unexpected arguments: %s\n", strings.Join(fs.Args()[1:], " "))
		return 1
	}
	manifestPath := fs.Arg(0)
	if manifestPath == "" {
		manifestPath = strings.TrimSpace(os.Getenv(corpusEnvVar))
	}
	if manifestPath == "" {
		fmt.Fprintf(c.stderr, "mkt corpus requires a manifest path (or %s)\n", corpusEnvVar)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	corpus, err := driver.LoadCorpus(manifestPath)
	if err != nil {
		fmt.Fprintf(c.stderr, "mkt corpus: %v\n", err)
		return 1
	}
	cfs, err := driver.OpenCorpusFS(ctx, corpus)
	if err != nil {
		fmt.Fprintf(c.stderr, "mkt corpus: %v\n", err)
		return 1
	}
	if cfs.Commit != "" {
		fmt.Fprintf(c.stderr, "mkt corpus: using %s at %s\n", corpus.Source.Git, cfs.Commit)
	}
	report, err := driver.RunCorpus(ctx, corpus, cfs, driver.HarnessOptions{Parallel: *parallel, Filter: *filter})
	if err != nil {
		fmt.Fprintf(c.stderr, "mkt corpus: %v\n", err)
		return 1
	}

	switch *reportPath {
	case "":
		fmt.Fprint(c.stdout, report.Summary())
	case "-":
		if err := driver.WriteReport(c.stdout, report); err != nil {
			fmt.Fprintf(c.stderr, "mkt corpus: %v\n", err)
			return 1
		}
	default:
		fmt.Fprint(c.stdout, report.Summary())
		if err := writeReportFile(*reportPath, report); err != nil {
			fmt.Fprintf(c.stderr, "mkt corpus: %v\n", err)
			return 1
		}
	}
	if !report.OK() {
		return 1
	}
	return 0
}

func writeReportFile(path string, report *driver.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := driver.WriteReport(file, report); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
