package lower

import (
	"irbackend/ir"
	"irbackend/typemap"
	"irbackend/types"
)

// TypeOperators expands the type operators the code generator does not
// implement directly: safe casts, negated instance checks, coercions to Unit
// and implicit casts.
func TypeOperators() Phase[*FileContext] {
	return FilePass("TypeOperators", "Expand safe casts, implicit casts and negated instance checks",
		func(fc *FileContext) FileLoweringPass {
			return newTypeOperatorLowering(fc)
		},
	)
}

type typeOperatorLowering struct {
	fc          *FileContext
	transformer *ir.Transformer[*typeOperatorLowering]
}

func newTypeOperatorLowering(fc *FileContext) *typeOperatorLowering {
	tol := &typeOperatorLowering{fc: fc, transformer: ir.NewTransformer[*typeOperatorLowering]()}

	ir.OnTransform(tol.transformer, ir.KindTypeOperatorCall, func(call *ir.TypeOperatorCall, tol *typeOperatorLowering) ir.Element {
		tol.transformer.TransformChildren(call, tol)

		result := tol.lower(call)
		if result != call {
			result.SetSpan(call.Span())
		}

		return result
	})

	return tol
}

func (tol *typeOperatorLowering) LowerFile(file *ir.File) {
	tol.transformer.TransformChildren(file, tol)
	tol.fc.patchParents()
}

func (tol *typeOperatorLowering) lower(call *ir.TypeOperatorCall) ir.Expression {
	switch call.Operator {
	case ir.OpSafeCast:
		tmp := tol.fc.temporary("safe_as", call.Arg, ir.OriginSafeCast)
		resultType := types.MakeNullable(call.Operand)

		check := ir.NewIfThenElse(resultType,
			ir.NewTypeOperatorCall(ir.OpInstanceOf, ir.NewGetValue(tmp), call.Operand),
			ir.NewTypeOperatorCall(ir.OpCast, ir.NewGetValue(tmp), call.Operand),
			ir.NewNullConst(call.Operand),
		)

		return ir.NewBlock(resultType, ir.OriginSafeCast, tmp, check)
	case ir.OpNotInstanceOf:
		return tol.fc.Intrinsics.Call("Boolean.not", ir.NewTypeOperatorCall(ir.OpInstanceOf, call.Arg, call.Operand))
	case ir.OpImplicitCoercionToUnit:
		return ir.NewBlock(types.PrimUnit, nil, call.Arg)
	case ir.OpImplicitCast:
		mapper := tol.fc.Mapper
		if mapper.MapType(call.Arg.Type(), typemap.ModeDefault) == mapper.MapType(call.Operand, typemap.ModeDefault) {
			call.Arg.SetType(call.Operand)
			return call.Arg
		}

		return ir.NewTypeOperatorCall(ir.OpCast, call.Arg, call.Operand)
	}

	return call
}
