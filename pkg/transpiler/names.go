package transpiler

import (
	"path"
	"strconv"
	"strings"
	"unicode"
)

var javaKeywords = map[string]struct{}{
	"abstract": {}, "assert": {}, "boolean": {}, "break": {}, "byte": {},
	"case": {}, "catch": {}, "char": {}, "class": {}, "const": {},
	"continue": {}, "default": {}, "do": {}, "double": {}, "else": {},
	"enum": {}, "extends": {}, "final": {}, "finally": {}, "float": {},
	"for": {}, "goto": {}, "if": {}, "implements": {}, "import": {},
	"instanceof": {}, "int": {}, "interface": {}, "long": {}, "native": {},
	"new": {}, "package": {}, "private": {}, "protected": {}, "public": {},
	"return": {}, "short": {}, "static": {}, "strictfp": {}, "super": {},
	"switch": {}, "synchronized": {}, "this": {}, "throw": {}, "throws": {},
	"transient": {}, "try": {}, "void": {}, "volatile": {}, "while": {},
	"true": {}, "false": {}, "null": {}, "var": {}, "yield": {},
	"record": {}, "_": {},
}

// Instance methods of java.lang.Object cannot be hidden by static methods.
var objectMethods = map[string]struct{}{
	"clone": {}, "equals": {}, "finalize": {}, "getClass": {}, "hashCode": {},
	"notify": {}, "notifyAll": {}, "toString": {}, "wait": {},
}

const (
	scannerField = "scanner"
	mainArgs     = "args"
)

func sanitizeIdent(name string) string {
	if name == "" {
		return "_x"
	}
	var b strings.Builder
	for i, r := range name {
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			if i == 0 && unicode.IsDigit(r) {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	out := b.String()
	if _, ok := javaKeywords[out]; ok {
		return out + "_"
	}
	return out
}

func exportIdent(name string) string {
	safe := sanitizeIdent(name)
	if strings.HasPrefix(safe, "_") {
		safe = "X" + safe
	}
	return strings.ToUpper(safe[:1]) + safe[1:]
}

func methodIdent(name string) string {
	safe := sanitizeIdent(name)
	if _, ok := objectMethods[safe]; ok {
		return safe + "_"
	}
	return safe
}

// ClassNameFromPath derives a Java class name from a source file path, the
// way CalculoArea.kt becomes CalculoArea.
func ClassNameFromPath(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == "/" {
		return "Main"
	}
	return exportIdent(base)
}

// localScope tracks Java local names. Java rejects a local that redeclares
// another local of the same method, so shadowing declarations get a suffix.
// Locals also avoid the names of static fields, which they would hide.
// A MicroKotlin name bound to the empty string is a Unit local with no Java
// variable behind it.
type localScope struct {
	names  map[string]string
	parent *localScope
}

func newLocalScope(parent *localScope) *localScope {
	return &localScope{names: make(map[string]string), parent: parent}
}

func (s *localScope) resolve(name string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if javaName, ok := cur.names[name]; ok {
			return javaName, true
		}
	}
	return "", false
}

func (s *localScope) inUse(javaName string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		for _, used := range cur.names {
			if used == javaName {
				return true
			}
		}
	}
	return false
}

// reserve marks javaName as taken without binding a MicroKotlin name to it.
func (s *localScope) reserve(javaName string) {
	s.names["\x00"+javaName] = javaName
}

func (s *localScope) declareUnit(name string) {
	s.names[name] = ""
}

func (s *localScope) declare(name string) string {
	base := sanitizeIdent(name)
	javaName := base
	for n := 2; s.inUse(javaName); n++ {
		javaName = base + "_" + strconv.Itoa(n)
	}
	s.names[name] = javaName
	return javaName
}
