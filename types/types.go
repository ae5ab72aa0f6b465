package types

import (
	"strings"
)

// Type represents a semantic (source-level) type: the type of an expression
// or declaration as the front end resolved it.  Types are immutable values:
// lowering passes build new types rather than mutating existing ones.
type Type interface {
	// Returns whether this type is equal to the other type.  This does not
	// account for nullability wrapping: it should only be called from Equals.
	equals(other Type) bool

	// Returns the representative string for this type.  Two types are
	// structurally equal if and only if their representations are equal.
	Repr() string
}

// -----------------------------------------------------------------------------

// PrimitiveType represents a primitive type.  This must be one of the enumerated
// primitive type values below.
type PrimitiveType int

// Enumeration of the different primitive types.
const (
	PrimUnit PrimitiveType = iota
	PrimBoolean
	PrimChar
	PrimByte
	PrimShort
	PrimInt
	PrimLong
	PrimFloat
	PrimDouble
	PrimNothing
)

func (pt PrimitiveType) equals(other Type) bool {
	if opt, ok := other.(PrimitiveType); ok {
		return pt == opt
	}

	return false
}

func (pt PrimitiveType) Repr() string {
	switch pt {
	case PrimUnit:
		return "Unit"
	case PrimBoolean:
		return "Boolean"
	case PrimChar:
		return "Char"
	case PrimByte:
		return "Byte"
	case PrimShort:
		return "Short"
	case PrimInt:
		return "Int"
	case PrimLong:
		return "Long"
	case PrimFloat:
		return "Float"
	case PrimDouble:
		return "Double"
	default:
		return "Nothing"
	}
}

// IsIntegral returns whether this primitive is an integral type.
func (pt PrimitiveType) IsIntegral() bool {
	return PrimByte <= pt && pt <= PrimLong
}

// IsFloating returns whether this primitive type is a floating-point type.
func (pt PrimitiveType) IsFloating() bool {
	return pt == PrimFloat || pt == PrimDouble
}

// -----------------------------------------------------------------------------

// Variance is the use-site variance of a type argument.
type Variance int

// Enumeration of variances.
const (
	Invariant Variance = iota
	In
	Out
)

// TypeArg is a single type argument.  A nil Type denotes a star projection.
type TypeArg struct {
	Variance Variance
	Type     Type
}

// IsStar returns whether the argument is a star projection.
func (ta TypeArg) IsStar() bool {
	return ta.Type == nil
}

func (ta TypeArg) Repr() string {
	if ta.Type == nil {
		return "*"
	}

	switch ta.Variance {
	case In:
		return "in " + ta.Type.Repr()
	case Out:
		return "out " + ta.Type.Repr()
	default:
		return ta.Type.Repr()
	}
}

// Invariantly returns an invariant type argument for typ.
func Invariantly(typ Type) TypeArg {
	return TypeArg{Type: typ}
}

// ClassType is a reference to a class, interface, object, enum or annotation
// class, possibly applied to type arguments.
type ClassType struct {
	Classifier Classifier
	Args       []TypeArg
}

func (ct *ClassType) equals(other Type) bool {
	oct, ok := other.(*ClassType)
	if !ok || ct.Classifier.ClassifierID() != oct.Classifier.ClassifierID() || len(ct.Args) != len(oct.Args) {
		return false
	}

	for i, arg := range ct.Args {
		oarg := oct.Args[i]
		if arg.Variance != oarg.Variance || arg.IsStar() != oarg.IsStar() {
			return false
		}

		if !arg.IsStar() && !Equals(arg.Type, oarg.Type) {
			return false
		}
	}

	return true
}

func (ct *ClassType) Repr() string {
	sb := strings.Builder{}
	sb.WriteString(QualifiedName(ct.Classifier))

	if len(ct.Args) > 0 {
		sb.WriteRune('<')

		for i, arg := range ct.Args {
			if i != 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(arg.Repr())
		}

		sb.WriteRune('>')
	}

	return sb.String()
}

// NewClassType creates a class type applying the classifier to invariant
// type arguments.
func NewClassType(cls Classifier, args ...Type) *ClassType {
	ct := &ClassType{Classifier: cls}
	for _, arg := range args {
		ct.Args = append(ct.Args, Invariantly(arg))
	}

	return ct
}

// -----------------------------------------------------------------------------

// TypeVar is a reference to a type parameter.
type TypeVar struct {
	Param Classifier
}

func (tv *TypeVar) equals(other Type) bool {
	if otv, ok := other.(*TypeVar); ok {
		return tv.Param.ClassifierID() == otv.Param.ClassifierID()
	}

	return false
}

func (tv *TypeVar) Repr() string {
	return tv.Param.NameSegments()[0]
}

// -----------------------------------------------------------------------------

// ArrayType is an array type.  Arrays of non-nullable primitives are the
// specialized primitive arrays (eg. IntArray).
type ArrayType struct {
	ElemType Type
}

func (at *ArrayType) equals(other Type) bool {
	if oat, ok := other.(*ArrayType); ok {
		return Equals(at.ElemType, oat.ElemType)
	}

	return false
}

func (at *ArrayType) Repr() string {
	if pt, ok := at.ElemType.(PrimitiveType); ok {
		return pt.Repr() + "Array"
	}

	return "Array<" + at.ElemType.Repr() + ">"
}

// -----------------------------------------------------------------------------

// FuncType represents a function type, optionally with a receiver and
// optionally suspending.
type FuncType struct {
	// The receiver type of an extension function type.  May be nil.
	ReceiverType Type

	// The parameter types of the function.
	ParamTypes []Type

	// The return type of the function.
	ReturnType Type

	// Whether the function type is a suspend function type.
	Suspend bool
}

func (ft *FuncType) equals(other Type) bool {
	oft, ok := other.(*FuncType)
	if !ok || ft.Suspend != oft.Suspend || len(ft.ParamTypes) != len(oft.ParamTypes) {
		return false
	}

	if (ft.ReceiverType == nil) != (oft.ReceiverType == nil) {
		return false
	} else if ft.ReceiverType != nil && !Equals(ft.ReceiverType, oft.ReceiverType) {
		return false
	}

	for i, paramtyp := range ft.ParamTypes {
		if !Equals(paramtyp, oft.ParamTypes[i]) {
			return false
		}
	}

	return Equals(ft.ReturnType, oft.ReturnType)
}

func (ft *FuncType) Repr() string {
	sb := strings.Builder{}

	if ft.Suspend {
		sb.WriteString("suspend ")
	}

	if ft.ReceiverType != nil {
		sb.WriteString(ft.ReceiverType.Repr())
		sb.WriteRune('.')
	}

	sb.WriteRune('(')

	for i, paramtyp := range ft.ParamTypes {
		if i != 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(paramtyp.Repr())
	}

	sb.WriteString(") -> ")
	sb.WriteString(ft.ReturnType.Repr())

	return sb.String()
}

// Arity returns the number of value parameters of the function type
// including the receiver.
func (ft *FuncType) Arity() int {
	if ft.ReceiverType != nil {
		return len(ft.ParamTypes) + 1
	}

	return len(ft.ParamTypes)
}

// -----------------------------------------------------------------------------

// NullableType wraps a type that admits null.
type NullableType struct {
	ElemType Type
}

func (nt *NullableType) equals(other Type) bool {
	if ont, ok := other.(*NullableType); ok {
		return Equals(nt.ElemType, ont.ElemType)
	}

	return false
}

func (nt *NullableType) Repr() string {
	if _, ok := nt.ElemType.(*FuncType); ok {
		return "(" + nt.ElemType.Repr() + ")?"
	}

	return nt.ElemType.Repr() + "?"
}
