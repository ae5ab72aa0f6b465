package lower

import (
	"irbackend/ir"
	"irbackend/types"
)

// InlineClasses unboxes value classes where their representation is the
// underlying value: calls of the primary constructor become their argument
// and reads of the underlying field become the receiver.  Members of the
// value class itself still see the boxed receiver.
func InlineClasses() Phase[*FileContext] {
	return FilePass("InlineClasses", "Unbox value class construction and field reads",
		func(fc *FileContext) FileLoweringPass {
			return newInlineClassLowering()
		},
	)
}

type inlineClassLowering struct {
	transformer *ir.Transformer[struct{}]
}

func newInlineClassLowering() *inlineClassLowering {
	icl := &inlineClassLowering{transformer: ir.NewTransformer[struct{}]()}

	ir.OnTransform(icl.transformer, ir.KindConstructorCall, func(call *ir.ConstructorCall, _ struct{}) ir.Element {
		icl.transformer.TransformChildren(call, struct{}{})

		ctor, ok := call.Symbol.Owner().(*ir.Constructor)
		if !ok || !ctor.IsPrimary || len(call.Args) != 1 || call.Args[0] == nil {
			return call
		}

		if !types.IsValueClassType(call.Type()) || types.IsNullable(call.Type()) {
			return call
		}

		arg := call.Args[0]
		arg.SetType(call.Type())
		return arg
	})

	ir.OnTransform(icl.transformer, ir.KindGetField, func(gf *ir.GetField, _ struct{}) ir.Element {
		icl.transformer.TransformChildren(gf, struct{}{})

		if gf.Receiver == nil || isReceiverRead(gf.Receiver) {
			return gf
		}

		// a value class has a single instance field: its underlying value
		recvType := gf.Receiver.Type()
		if !types.IsValueClassType(recvType) || types.IsNullable(recvType) {
			return gf
		}

		recv := gf.Receiver
		recv.SetType(gf.Type())
		return recv
	})

	return icl
}

func (icl *inlineClassLowering) LowerFile(file *ir.File) {
	icl.transformer.TransformChildren(file, struct{}{})
}

// isReceiverRead returns whether expr reads a receiver parameter.
func isReceiverRead(expr ir.Expression) bool {
	gv, ok := expr.(*ir.GetValue)
	if !ok {
		return false
	}

	vp, ok := gv.Symbol.Owner().(*ir.ValueParameter)
	return ok && vp.Index < 0
}
