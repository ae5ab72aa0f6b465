package lower

import (
	"irbackend/ir"
	"irbackend/types"
)

// FlattenStringConcatenation flattens nested string templates and chains of
// String.plus into one concatenation per expression and merges adjacent
// constants.
func FlattenStringConcatenation() Phase[*FileContext] {
	return FilePass("FlattenStringConcatenation", "Flatten nested string concatenations",
		func(fc *FileContext) FileLoweringPass {
			return newConcatenationFlattener(fc.Intrinsics)
		},
	)
}

type concatenationFlattener struct {
	intrinsics  *ir.Intrinsics
	transformer *ir.Transformer[struct{}]
}

func newConcatenationFlattener(intrinsics *ir.Intrinsics) *concatenationFlattener {
	cf := &concatenationFlattener{intrinsics: intrinsics, transformer: ir.NewTransformer[struct{}]()}

	ir.OnTransform(cf.transformer, ir.KindStringConcatenation, func(sc *ir.StringConcatenation, _ struct{}) ir.Element {
		cf.transformer.TransformChildren(sc, struct{}{})
		return cf.flatten(sc, sc.Args)
	})

	ir.OnTransform(cf.transformer, ir.KindCall, func(call *ir.Call, _ struct{}) ir.Element {
		cf.transformer.TransformChildren(call, struct{}{})

		if name, ok := cf.intrinsics.NameOf(call.Symbol); ok && name == "String.plus" {
			return cf.flatten(call, call.Args)
		}

		return call
	})

	return cf
}

func (cf *concatenationFlattener) LowerFile(file *ir.File) {
	cf.transformer.TransformChildren(file, struct{}{})
}

// flatten returns the flat concatenation of args replacing orig.
func (cf *concatenationFlattener) flatten(orig ir.Expression, args []ir.Expression) ir.Expression {
	var flat []ir.Expression
	for _, arg := range args {
		if inner, ok := arg.(*ir.StringConcatenation); ok {
			flat = append(flat, inner.Args...)
		} else {
			flat = append(flat, arg)
		}
	}

	var merged []ir.Expression
	for _, arg := range flat {
		c, ok := arg.(*ir.Const)
		if !ok {
			merged = append(merged, arg)
			continue
		}

		if last := len(merged) - 1; last >= 0 {
			if prev, ok := merged[last].(*ir.Const); ok && prev.ConstKind == ir.ConstString {
				joined := ir.NewStringConst(prev.Value.(string) + constString(c))
				joined.SetSpan(prev.Span())
				merged[last] = joined
				continue
			}
		}

		if c.ConstKind != ir.ConstString {
			converted := ir.NewStringConst(constString(c))
			converted.SetSpan(c.Span())
			c = converted
		}

		merged = append(merged, c)
	}

	var result ir.Expression
	switch {
	case len(merged) == 0:
		result = ir.NewStringConst("")
	case len(merged) == 1 && types.IsString(merged[0].Type()):
		if c, ok := merged[0].(*ir.Const); ok {
			result = c
		}
	}

	if result == nil {
		result = &ir.StringConcatenation{ExpressionBase: ir.NewExpressionBase(types.StringType), Args: merged}
	}

	result.SetSpan(orig.Span())
	return result
}
