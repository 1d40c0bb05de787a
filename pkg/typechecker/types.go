package typechecker

import "microkotlin/interpreter-go/pkg/ast"

// Type is a resolved static type.
type Type interface {
	Name() string
	isType()
}

type PrimitiveKind string

const (
	PrimitiveInt     PrimitiveKind = "Int"
	PrimitiveDouble  PrimitiveKind = "Double"
	PrimitiveBoolean PrimitiveKind = "Boolean"
	PrimitiveString  PrimitiveKind = "String"
	PrimitiveUnit    PrimitiveKind = "Unit"
)

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (t PrimitiveType) Name() string { return string(t.Kind) }
func (PrimitiveType) isType()        {}

// ErrorType marks an expression whose type could not be determined because
// an error was already reported for it. Enclosing expressions inherit it
// silently.
type ErrorType struct{}

func (ErrorType) Name() string { return "<error>" }
func (ErrorType) isType()      {}

var (
	IntType     Type = PrimitiveType{Kind: PrimitiveInt}
	DoubleType  Type = PrimitiveType{Kind: PrimitiveDouble}
	BooleanType Type = PrimitiveType{Kind: PrimitiveBoolean}
	StringType  Type = PrimitiveType{Kind: PrimitiveString}
	UnitType    Type = PrimitiveType{Kind: PrimitiveUnit}
	Error       Type = ErrorType{}
)

// FromTypeName maps a source type annotation to its Type.
func FromTypeName(name ast.TypeName) Type {
	switch name {
	case ast.TypeInt:
		return IntType
	case ast.TypeDouble:
		return DoubleType
	case ast.TypeBoolean:
		return BooleanType
	case ast.TypeString:
		return StringType
	case ast.TypeUnit:
		return UnitType
	default:
		return Error
	}
}

func fromTypeReference(ref *ast.TypeReference) Type {
	if ref == nil {
		return UnitType
	}
	return FromTypeName(ref.Name)
}

func isErrorType(t Type) bool {
	_, ok := t.(ErrorType)
	return ok || t == nil
}

func isNumericType(t Type) bool {
	return t == IntType || t == DoubleType
}

// isPrintable reports whether t has a textual form accepted by print and
// string concatenation.
func isPrintable(t Type) bool {
	return t == IntType || t == DoubleType || t == BooleanType || t == StringType
}

func typeName(t Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.Name()
}

// InferenceMap stores the resolved type of every checked expression.
type InferenceMap map[ast.Expression]Type

func (m InferenceMap) set(expr ast.Expression, typ Type) {
	if m == nil || expr == nil {
		return
	}
	m[expr] = typ
}
