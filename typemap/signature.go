package typemap

import "strings"

// SigType is a node of a structured generic signature.  Erase returns the
// erased descriptor of the node and Generic its generic signature.  The
// descriptor of every mapped type is computed by erasing its signature tree,
// so the two never disagree.
type SigType interface {
	// Erase returns the erased type descriptor.
	Erase() string

	// Generic returns the generic signature.
	Generic() string
}

// SigPrimitive is a primitive or void descriptor.
type SigPrimitive struct {
	Desc string
}

func (sp *SigPrimitive) Erase() string {
	return sp.Desc
}

func (sp *SigPrimitive) Generic() string {
	return sp.Desc
}

// SigClass is a class type applied to type arguments.
type SigClass struct {
	InternalName string
	Args         []SigArg
}

func (sc *SigClass) Erase() string {
	return "L" + sc.InternalName + ";"
}

func (sc *SigClass) Generic() string {
	if len(sc.Args) == 0 {
		return sc.Erase()
	}

	sb := strings.Builder{}
	sb.WriteRune('L')
	sb.WriteString(sc.InternalName)
	sb.WriteRune('<')

	for _, arg := range sc.Args {
		sb.WriteString(arg.Generic())
	}

	sb.WriteString(">;")
	return sb.String()
}

// SigTypeVar is a reference to a type variable.  Erasure is the signature of
// the erasure of its bound.
type SigTypeVar struct {
	Name    string
	Erasure SigType
}

func (sv *SigTypeVar) Erase() string {
	return sv.Erasure.Erase()
}

func (sv *SigTypeVar) Generic() string {
	return "T" + sv.Name + ";"
}

// SigArray is an array type.
type SigArray struct {
	Elem SigType
}

func (sa *SigArray) Erase() string {
	return "[" + sa.Elem.Erase()
}

func (sa *SigArray) Generic() string {
	return "[" + sa.Elem.Generic()
}

// Wildcard is the wildcard indicator of a type argument.
type Wildcard byte

// Enumeration of wildcards.
const (
	WildcardNone    Wildcard = 0
	WildcardExtends Wildcard = '+'
	WildcardSuper   Wildcard = '-'
	WildcardStar    Wildcard = '*'
)

// SigArg is a type argument of a class signature.  Type is nil for star
// projections.
type SigArg struct {
	Wildcard Wildcard
	Type     SigType
}

func (sa SigArg) Generic() string {
	switch sa.Wildcard {
	case WildcardStar:
		return "*"
	case WildcardNone:
		return sa.Type.Generic()
	default:
		return string(sa.Wildcard) + sa.Type.Generic()
	}
}

// -----------------------------------------------------------------------------

// Signature is the mapping of a type: its erased descriptor and structured
// generic signature.
type Signature struct {
	// Descriptor is the erased type descriptor.
	Descriptor string

	// Type is the structured generic signature.
	Type SigType
}

// GenericSignature returns the generic signature of the type or the empty
// string if it is the same as the descriptor.
func (s Signature) GenericSignature() string {
	if generic := s.Type.Generic(); generic != s.Descriptor {
		return generic
	}

	return ""
}

// TypeParamSig is a type parameter declaration in a generic signature.
type TypeParamSig struct {
	Name string

	// ClassBound is the bound in class position.  May be nil.
	ClassBound SigType

	// InterfaceBounds are the bounds in interface position.
	InterfaceBounds []SigType
}

func (tp TypeParamSig) Generic() string {
	sb := strings.Builder{}
	sb.WriteString(tp.Name)
	sb.WriteRune(':')

	if tp.ClassBound != nil {
		sb.WriteString(tp.ClassBound.Generic())
	}

	for _, bound := range tp.InterfaceBounds {
		sb.WriteRune(':')
		sb.WriteString(bound.Generic())
	}

	return sb.String()
}

func typeParamsGeneric(params []TypeParamSig) string {
	if len(params) == 0 {
		return ""
	}

	sb := strings.Builder{}
	sb.WriteRune('<')

	for _, tp := range params {
		sb.WriteString(tp.Generic())
	}

	sb.WriteRune('>')
	return sb.String()
}

// MethodSignature is the mapping of a function.
type MethodSignature struct {
	Name string

	// Descriptor is the erased method descriptor.
	Descriptor string

	TypeParams []TypeParamSig
	Params     []SigType
	Return     SigType
}

// Erase recomputes the method descriptor from the parameter and return
// signatures.
func (ms MethodSignature) Erase() string {
	sb := strings.Builder{}
	sb.WriteRune('(')

	for _, param := range ms.Params {
		sb.WriteString(param.Erase())
	}

	sb.WriteRune(')')
	sb.WriteString(ms.Return.Erase())
	return sb.String()
}

// Generic returns the generic method signature.
func (ms MethodSignature) Generic() string {
	sb := strings.Builder{}
	sb.WriteString(typeParamsGeneric(ms.TypeParams))
	sb.WriteRune('(')

	for _, param := range ms.Params {
		sb.WriteString(param.Generic())
	}

	sb.WriteRune(')')
	sb.WriteString(ms.Return.Generic())
	return sb.String()
}

// GenericSignature returns the generic method signature or the empty string
// if it is the same as the descriptor.
func (ms MethodSignature) GenericSignature() string {
	if generic := ms.Generic(); generic != ms.Descriptor {
		return generic
	}

	return ""
}

func (ms MethodSignature) String() string {
	return ms.Name + ms.Descriptor
}
