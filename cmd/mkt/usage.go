package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *cli) printUsage() {
	fmt.Fprintln(c.stderr, "Usage:")
	fmt.Fprintln(c.stderr, "  mkt run [-max-depth N] <file.kt>")
	fmt.Fprintln(c.stderr, "  mkt <file.kt>")
	fmt.Fprintln(c.stderr, "  mkt check <file.kt> [...]")
	fmt.Fprintln(c.stderr, "  mkt lex <file.kt>")
	fmt.Fprintln(c.stderr, "  mkt fmt [-w] <file.kt> [...]")
	fmt.Fprintln(c.stderr, "  mkt transpile [-class Name] [-o dir] <file.kt>")
	fmt.Fprintln(c.stderr, "  mkt corpus [-parallel N] [-filter text] [-report file|-] [manifest.yml]")
	fmt.Fprintln(c.stderr, "  mkt version")
}

func looksLikeSourcePath(arg string) bool {
	if strings.HasPrefix(arg, "-") {
		return false
	}
	return filepath.Ext(arg) == ".kt" || strings.ContainsRune(arg, filepath.Separator)
}
