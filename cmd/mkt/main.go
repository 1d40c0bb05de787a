package main

import (
	"fmt"
	"io"
	"os"
)

const cliToolVersion = "mkt 0.1.0-dev"

// corpusEnvVar names the manifest `mkt corpus` uses when none is given.
const corpusEnvVar = "MKT_CORPUS"

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.run(os.Args[1:]))
}

func (c *cli) run(args []string) int {
	if len(args) == 0 {
		c.printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		c.printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(c.stdout, cliToolVersion)
		return 0
	case "run":
		return c.runProgram(args[1:])
	case "check":
		return c.runCheck(args[1:])
	case "lex":
		return c.runLex(args[1:])
	case "fmt":
		return c.runFmt(args[1:])
	case "transpile":
		return c.runTranspile(args[1:])
	case "corpus":
		return c.runCorpus(args[1:])
	default:
		if looksLikeSourcePath(args[0]) {
			return c.runProgram(args)
		}
		fmt.Fprintf(c.stderr, "mkt: unknown command %q\n", args[0])
		c.printUsage()
		return 1
	}
}
