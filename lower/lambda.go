package lower

import "irbackend/ir"

// ProvisionalFunctionExpression turns each function expression into a block
// declaring the function locally followed by a reference to it.  Function
// references later materialize the reference as a class.
func ProvisionalFunctionExpression() Phase[*FileContext] {
	return FilePass("ProvisionalFunctionExpression", "Turn function expressions into local functions and references",
		func(fc *FileContext) FileLoweringPass {
			return newFunctionExpressionLowering()
		},
	)
}

type functionExpressionLowering struct {
	transformer *ir.Transformer[struct{}]
}

func newFunctionExpressionLowering() *functionExpressionLowering {
	fel := &functionExpressionLowering{transformer: ir.NewTransformer[struct{}]()}

	ir.OnTransform(fel.transformer, ir.KindFunctionExpression, func(fe *ir.FunctionExpression, _ struct{}) ir.Element {
		fel.transformer.TransformChildren(fe, struct{}{})

		fn := fe.Function
		fn.Visibility = ir.Local
		if fn.Origin == nil || fn.Origin == ir.OriginDefined {
			fn.Origin = ir.OriginLambda
		}

		ref := &ir.FunctionReference{
			MemberAccessBase: ir.MemberAccessBase{ExpressionBase: ir.NewExpressionBase(fe.Type())},
			Symbol:           fn.Symbol,
			Origin:           ir.OriginLambda,
		}
		ref.SetSpan(fe.Span())

		block := ir.NewBlock(fe.Type(), ir.OriginLambda, fn, ref)
		block.SetSpan(fe.Span())
		ir.CopyAttributesFrom(block, fe)
		return block
	})

	return fel
}

func (fel *functionExpressionLowering) LowerFile(file *ir.File) {
	fel.transformer.TransformChildren(file, struct{}{})
}
