package runtime

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInt Kind = iota
	KindDouble
	KindBoolean
	KindString
	KindUnit
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindDouble:
		return "Double"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindUnit:
		return "Unit"
	default:
		return "unknown"
	}
}

// Value is a MicroKotlin runtime value.
type Value interface {
	Kind() Kind
}

type IntValue struct {
	Val int32
}

func (IntValue) Kind() Kind { return KindInt }

type DoubleValue struct {
	Val float64
}

func (DoubleValue) Kind() Kind { return KindDouble }

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBoolean }

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

type UnitValue struct{}

func (UnitValue) Kind() Kind { return KindUnit }

var (
	Unit  Value = UnitValue{}
	True  Value = BoolValue{Val: true}
	False Value = BoolValue{Val: false}
)

// Bool returns the shared Boolean value for b.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Text renders the textual form used by string concatenation and printing.
func Text(v Value) string {
	switch val := v.(type) {
	case IntValue:
		return strconv.FormatInt(int64(val.Val), 10)
	case DoubleValue:
		return FormatDouble(val.Val)
	case BoolValue:
		return strconv.FormatBool(val.Val)
	case StringValue:
		return val.Val
	case UnitValue:
		return "kotlin.Unit"
	default:
		return "<invalid>"
	}
}

// FormatDouble renders d the way Kotlin's Double.toString does: plain
// decimal with at least one fractional digit for 1e-3 <= |d| < 1e7, and
// computerized scientific notation ("1.0E7", "1.5E-4") otherwise. The digit
// string is the shortest one that round-trips.
func FormatDouble(d float64) string {
	switch {
	case math.IsNaN(d):
		return "NaN"
	case math.IsInf(d, 1):
		return "Infinity"
	case math.IsInf(d, -1):
		return "-Infinity"
	case d == 0:
		if math.Signbit(d) {
			return "-0.0"
		}
		return "0.0"
	}
	abs := math.Abs(d)
	if abs >= 1e-3 && abs < 1e7 {
		text := strconv.FormatFloat(d, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
		return text
	}
	// 'e' gives "d.ddde+XX"; rewrite to "d.dddEXX".
	text := strconv.FormatFloat(d, 'e', -1, 64)
	mantissa, exponent, _ := strings.Cut(text, "e")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	exp, _ := strconv.Atoi(exponent)
	return mantissa + "E" + strconv.Itoa(exp)
}
