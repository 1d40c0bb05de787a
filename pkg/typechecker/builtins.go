package typechecker

import (
	"sort"
	"strconv"
	"strings"
)

// Builtin describes a console built-in. A parameter typed nil accepts any
// printable value (Int, Double, Boolean or String).
type Builtin struct {
	Name     string
	Overload [][]Type
	Result   Type
}

const (
	BuiltinPrint       = "print"
	BuiltinPrintLn     = "printLn"
	BuiltinReadInt     = "readInt"
	BuiltinReadBoolean = "readBoolean"
	BuiltinReadDouble  = "readDouble"
	BuiltinReadLine    = "readLine"
)

var builtins = map[string]Builtin{
	BuiltinPrint:       {Name: BuiltinPrint, Overload: [][]Type{{nil}}, Result: UnitType},
	BuiltinPrintLn:     {Name: BuiltinPrintLn, Overload: [][]Type{{}, {nil}}, Result: UnitType},
	BuiltinReadInt:     {Name: BuiltinReadInt, Overload: [][]Type{{}}, Result: IntType},
	BuiltinReadBoolean: {Name: BuiltinReadBoolean, Overload: [][]Type{{}}, Result: BooleanType},
	BuiltinReadDouble:  {Name: BuiltinReadDouble, Overload: [][]Type{{}}, Result: DoubleType},
	BuiltinReadLine:    {Name: BuiltinReadLine, Overload: [][]Type{{}}, Result: StringType},
}

// LookupBuiltin returns the built-in registered under name.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

// BuiltinNames lists the built-in function names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b Builtin) arities() []int {
	out := make([]int, len(b.Overload))
	for i, params := range b.Overload {
		out[i] = len(params)
	}
	return out
}

func (b Builtin) overloadFor(argc int) ([]Type, bool) {
	for _, params := range b.Overload {
		if len(params) == argc {
			return params, true
		}
	}
	return nil, false
}

func describeArities(arities []int) string {
	switch len(arities) {
	case 0:
		return "no"
	case 1:
		return strconv.Itoa(arities[0])
	}
	parts := make([]string, len(arities))
	for i, n := range arities {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " or " + parts[len(parts)-1]
}
