package typemap

import (
	"strings"

	"irbackend/report"
	"irbackend/types"
)

// Mode is the position a type is mapped in.  The position decides whether
// value classes and primitives are boxed and how Unit is represented.
type Mode int

// Enumeration of mapping modes.
const (
	// ModeDefault is the mode of parameter, field and variable types.
	ModeDefault Mode = iota

	// ModeReturnType maps Unit and Nothing to void.
	ModeReturnType

	// ModeTypeArgument boxes primitives and value classes.
	ModeTypeArgument

	// ModeSuperType is the mode of the supertypes of a class.
	ModeSuperType

	// ModeBound is the mode of type parameter bounds: a covariant position
	// in which value classes stay boxed.
	ModeBound
)

func (m Mode) String() string {
	switch m {
	case ModeReturnType:
		return "return"
	case ModeTypeArgument:
		return "type-argument"
	case ModeSuperType:
		return "supertype"
	case ModeBound:
		return "bound"
	default:
		return "default"
	}
}

// boxes returns whether the mode requires boxed representations.
func (m Mode) boxes() bool {
	return m == ModeTypeArgument || m == ModeSuperType || m == ModeBound
}

// maxBoundDepth limits how far chains of type parameter bounds are followed.
const maxBoundDepth = 32

// Mapper converts semantic types into target type descriptors and
// signatures.  A mapper is shared by every pass of a compilation and by the
// code generator: once a type has been mapped, it maps to the same descriptor
// for the rest of the compilation.  Mappers are safe for concurrent use.
type Mapper struct {
	cache  *cache
	native *nativeLayout
}

// NewMapper creates a new mapper with an empty cache.
func NewMapper() *Mapper {
	return &Mapper{
		cache:  newCache(),
		native: newNativeLayout(),
	}
}

// MapType returns the erased descriptor of typ in the given mode.
func (m *Mapper) MapType(typ types.Type, mode Mode) string {
	return m.MapSignature(typ, mode).Descriptor
}

// MapSignature returns the descriptor and generic signature of typ in the
// given mode.
func (m *Mapper) MapSignature(typ types.Type, mode Mode) Signature {
	if typ == nil {
		report.Fault("cannot map a missing type")
	}

	key := structuralKey(typ, mode)
	if sig, ok := m.cache.lookup(key); ok {
		return sig
	}

	st := m.mapSig(typ, mode, 0)
	return m.cache.store(key, Signature{Descriptor: st.Erase(), Type: st})
}

// CachedTypes returns the number of distinct type mappings memoized so far.
func (m *Mapper) CachedTypes() int {
	return m.cache.len()
}

// ClassInternalName returns the slash-separated internal name of a class.
// Builtin classes and local classes carry explicit target names.  Nested
// classes are separated from their enclosing classes by '$'.
func (m *Mapper) ClassInternalName(cls types.Classifier) string {
	if tn, ok := cls.(types.TargetNamed); ok {
		if name, ok := tn.TargetName(); ok {
			return name
		}
	}

	if cls.ClassifierKind() == types.ClassifierTypeParameter {
		report.Fault("type parameter %s has no internal name", cls.NameSegments()[0])
	}

	name := strings.Join(cls.NameSegments(), "$")
	if pkg := cls.PackageName(); pkg != "" {
		return strings.ReplaceAll(pkg, ".", "/") + "/" + name
	}

	return name
}

// -----------------------------------------------------------------------------

func (m *Mapper) mapSig(typ types.Type, mode Mode, depth int) SigType {
	if typ == nil {
		report.Fault("cannot map a missing type")
	}

	switch v := typ.(type) {
	case types.PrimitiveType:
		return m.mapPrimitive(v, mode)
	case *types.NullableType:
		return m.mapNullable(v, mode, depth)
	case *types.ClassType:
		return m.mapClass(v, mode, depth)
	case *types.TypeVar:
		return m.mapTypeVar(v, depth)
	case *types.ArrayType:
		return m.mapArray(v, depth)
	case *types.FuncType:
		return m.mapFunction(v, depth)
	}

	report.Fault("cannot map type %s", typ.Repr())
	return nil
}

// primitiveDescs maps primitives to their descriptors.
var primitiveDescs = map[types.PrimitiveType]string{
	types.PrimBoolean: "Z",
	types.PrimChar:    "C",
	types.PrimByte:    "B",
	types.PrimShort:   "S",
	types.PrimInt:     "I",
	types.PrimLong:    "J",
	types.PrimFloat:   "F",
	types.PrimDouble:  "D",
}

// boxedNames maps primitives to the internal names of their boxes.
var boxedNames = map[types.PrimitiveType]string{
	types.PrimUnit:    "kotlin/Unit",
	types.PrimNothing: "java/lang/Void",
	types.PrimBoolean: "java/lang/Boolean",
	types.PrimChar:    "java/lang/Character",
	types.PrimByte:    "java/lang/Byte",
	types.PrimShort:   "java/lang/Short",
	types.PrimInt:     "java/lang/Integer",
	types.PrimLong:    "java/lang/Long",
	types.PrimFloat:   "java/lang/Float",
	types.PrimDouble:  "java/lang/Double",
}

var voidSig = &SigPrimitive{Desc: "V"}

func (m *Mapper) mapPrimitive(pt types.PrimitiveType, mode Mode) SigType {
	switch {
	case (pt == types.PrimUnit || pt == types.PrimNothing) && mode == ModeReturnType:
		return voidSig
	case pt == types.PrimUnit || pt == types.PrimNothing || mode.boxes():
		return &SigClass{InternalName: boxedNames[pt]}
	}

	return &SigPrimitive{Desc: primitiveDescs[pt]}
}

func (m *Mapper) mapNullable(nt *types.NullableType, mode Mode, depth int) SigType {
	switch v := nt.ElemType.(type) {
	case types.PrimitiveType:
		return &SigClass{InternalName: boxedNames[v]}
	case *types.ClassType:
		if underlying := valueUnderlying(v); underlying != nil {
			// A nullable value class over a primitive or a nullable type
			// cannot use null as its unboxed representation.
			if _, ok := underlying.(types.PrimitiveType); ok || types.IsNullable(underlying) || mode.boxes() {
				return m.classSig(v, depth)
			}

			return m.mapSig(types.MakeNullable(underlying), mode, depth+1)
		}
	}

	return m.mapSig(nt.ElemType, mode, depth)
}

func (m *Mapper) mapClass(ct *types.ClassType, mode Mode, depth int) SigType {
	if !mode.boxes() {
		if underlying := valueUnderlying(ct); underlying != nil {
			return m.mapSig(underlying, mode, depth+1)
		}
	}

	return m.classSig(ct, depth)
}

// valueUnderlying returns the type values of the value class type ct are
// unboxed to, following value classes wrapping other value classes.  It
// returns nil if ct is not a value class.
func valueUnderlying(ct *types.ClassType) types.Type {
	underlying := ct.Classifier.ValueUnderlying()
	if underlying == nil {
		return nil
	}

	seen := map[types.Classifier]bool{ct.Classifier: true}
	for {
		next, ok := underlying.(*types.ClassType)
		if !ok || next.Classifier.ValueUnderlying() == nil {
			return underlying
		}

		if seen[next.Classifier] {
			report.Fault("value class %s wraps itself", ct.Repr())
		}

		seen[next.Classifier] = true
		underlying = next.Classifier.ValueUnderlying()
	}
}

func (m *Mapper) classSig(ct *types.ClassType, depth int) *SigClass {
	sc := &SigClass{InternalName: m.ClassInternalName(ct.Classifier)}

	for _, arg := range ct.Args {
		sc.Args = append(sc.Args, m.mapArg(arg, depth))
	}

	return sc
}

func (m *Mapper) mapArg(arg types.TypeArg, depth int) SigArg {
	if arg.IsStar() {
		return SigArg{Wildcard: WildcardStar}
	}

	sa := SigArg{Type: m.mapSig(arg.Type, ModeTypeArgument, depth+1)}
	switch arg.Variance {
	case types.In:
		sa.Wildcard = WildcardSuper
	case types.Out:
		sa.Wildcard = WildcardExtends
	}

	return sa
}

func (m *Mapper) mapTypeVar(tv *types.TypeVar, depth int) SigType {
	return &SigTypeVar{
		Name:    tv.Param.NameSegments()[0],
		Erasure: m.erasure(tv, depth),
	}
}

// erasure returns the raw signature a type erases to when it is used as a
// bound.  Type arguments are dropped, which keeps recursive bounds such as
// T : Comparable<T> finite.
func (m *Mapper) erasure(typ types.Type, depth int) SigType {
	if depth > maxBoundDepth {
		report.Fault("type parameter bounds of %s are too deep", typ.Repr())
	}

	switch v := types.NotNull(typ).(type) {
	case *types.ClassType:
		return &SigClass{InternalName: m.ClassInternalName(v.Classifier)}
	case *types.TypeVar:
		bounds := v.Param.Supertypes()
		if len(bounds) == 0 {
			return &SigClass{InternalName: m.ClassInternalName(types.AnyClass)}
		}

		return m.erasure(bounds[0], depth+1)
	case *types.ArrayType:
		return m.mapArray(v, depth+1)
	case *types.FuncType:
		return &SigClass{InternalName: m.ClassInternalName(functionClassOf(v))}
	case types.PrimitiveType:
		return &SigClass{InternalName: boxedNames[v]}
	}

	report.Fault("cannot erase type %s", typ.Repr())
	return nil
}

func (m *Mapper) mapArray(at *types.ArrayType, depth int) SigType {
	if pt, ok := at.ElemType.(types.PrimitiveType); ok && pt != types.PrimUnit && pt != types.PrimNothing {
		return &SigArray{Elem: &SigPrimitive{Desc: primitiveDescs[pt]}}
	}

	return &SigArray{Elem: m.mapSig(at.ElemType, ModeTypeArgument, depth+1)}
}

// mapFunction maps a function type to its function interface.  A suspend
// function type takes an extra trailing continuation argument and returns
// Any? since it may suspend instead of producing its result.
func (m *Mapper) mapFunction(ft *types.FuncType, depth int) SigType {
	sc := &SigClass{InternalName: m.ClassInternalName(functionClassOf(ft))}

	if ft.ReceiverType != nil {
		sc.Args = append(sc.Args, SigArg{Type: m.mapSig(ft.ReceiverType, ModeTypeArgument, depth+1)})
	}

	for _, paramType := range ft.ParamTypes {
		sc.Args = append(sc.Args, SigArg{Type: m.mapSig(paramType, ModeTypeArgument, depth+1)})
	}

	if ft.Suspend {
		sc.Args = append(sc.Args,
			SigArg{Type: m.continuationSig(ft.ReturnType, depth)},
			SigArg{Type: m.mapSig(types.NullableAnyType, ModeTypeArgument, depth+1)},
		)
	} else {
		sc.Args = append(sc.Args, SigArg{Type: m.mapSig(ft.ReturnType, ModeTypeArgument, depth+1)})
	}

	return sc
}

// continuationSig returns the signature of Continuation<in R>.
func (m *Mapper) continuationSig(result types.Type, depth int) *SigClass {
	return &SigClass{
		InternalName: m.ClassInternalName(types.ContinuationClass),
		Args: []SigArg{{
			Wildcard: WildcardSuper,
			Type:     m.mapSig(result, ModeTypeArgument, depth+1),
		}},
	}
}

// functionClassOf returns the function interface implemented by values of
// the function type.
func functionClassOf(ft *types.FuncType) *types.BuiltinClass {
	arity := ft.Arity()
	if ft.Suspend {
		arity++
	}

	return types.FunctionClass(arity)
}
