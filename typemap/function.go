package typemap

import (
	"irbackend/ir"
	"irbackend/types"
)

// MapFunction returns the method signature of fn.  The dispatch receiver is
// implicit and not part of the signature; the extension receiver is the
// first parameter.  Suspend functions which have not yet been given their
// continuation parameter are mapped in the shape they will have afterwards.
func (m *Mapper) MapFunction(fn ir.Function) MethodSignature {
	fb := fn.FuncBase()
	ms := MethodSignature{Name: fb.Name}

	for _, tp := range fb.TypeParams {
		ms.TypeParams = append(ms.TypeParams, m.typeParamSig(tp))
	}

	if fb.ExtensionReceiver != nil {
		ms.Params = append(ms.Params, m.MapSignature(fb.ExtensionReceiver.Type, ModeDefault).Type)
	}

	for _, param := range fb.Params {
		ms.Params = append(ms.Params, m.MapSignature(param.Type, ModeDefault).Type)
	}

	switch {
	case fn.Kind() == ir.KindConstructor:
		ms.Name = "<init>"
		ms.Return = voidSig
	case fb.IsSuspend && !HasContinuationParam(fn):
		ms.Params = append(ms.Params, m.continuationSig(fb.ReturnType, 0))
		ms.Return = m.MapSignature(types.NullableAnyType, ModeReturnType).Type
	default:
		ms.Return = m.MapSignature(fb.ReturnType, ModeReturnType).Type
	}

	ms.Descriptor = ms.Erase()
	return ms
}

// HasContinuationParam returns whether fn has already been given its explicit
// continuation parameter.
func HasContinuationParam(fn ir.Function) bool {
	params := fn.FuncBase().Params
	return len(params) > 0 && params[len(params)-1].Origin == ir.OriginContinuationParameter
}

// ContinuationType returns the semantic type of the continuation parameter of
// a suspend function returning result.
func ContinuationType(result types.Type) types.Type {
	return &types.ClassType{
		Classifier: types.ContinuationClass,
		Args:       []types.TypeArg{{Variance: types.In, Type: result}},
	}
}

// ClassSignature returns the generic signature of cls: its type parameters
// followed by its superclass and interfaces.  It returns the empty string if
// the class needs no generic signature.
func (m *Mapper) ClassSignature(cls *ir.Class) string {
	var typeParams []TypeParamSig
	for _, tp := range cls.TypeParams {
		typeParams = append(typeParams, m.typeParamSig(tp))
	}

	var superclass SigType
	var interfaces []SigType
	generic := len(typeParams) > 0

	for _, st := range cls.Supertypes {
		sig := m.MapSignature(st, ModeSuperType)
		if sig.GenericSignature() != "" {
			generic = true
		}

		if c := types.ClassifierOf(st); c != nil && c.ClassifierKind() == types.ClassifierInterface {
			interfaces = append(interfaces, sig.Type)
		} else {
			superclass = sig.Type
		}
	}

	if !generic {
		return ""
	}

	if superclass == nil {
		superclass = &SigClass{InternalName: m.ClassInternalName(types.AnyClass)}
	}

	result := typeParamsGeneric(typeParams) + superclass.Generic()
	for _, iface := range interfaces {
		result += iface.Generic()
	}

	return result
}

func (m *Mapper) typeParamSig(tp *ir.TypeParameter) TypeParamSig {
	tps := TypeParamSig{Name: tp.Name}

	for _, bound := range tp.Supertypes {
		sig := m.MapSignature(bound, ModeBound).Type
		if c := types.ClassifierOf(bound); c != nil && c.ClassifierKind() == types.ClassifierInterface {
			tps.InterfaceBounds = append(tps.InterfaceBounds, sig)
		} else if tps.ClassBound == nil {
			tps.ClassBound = sig
		}
	}

	if tps.ClassBound == nil && len(tps.InterfaceBounds) == 0 {
		tps.ClassBound = &SigClass{InternalName: m.ClassInternalName(types.AnyClass)}
	}

	return tps
}
