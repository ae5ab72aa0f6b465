package lower

import (
	"irbackend/ir"
	"irbackend/report"
	"irbackend/typemap"
	"irbackend/types"
)

// AddContinuation gives every suspend function of the file an explicit
// trailing continuation parameter and makes it return Any?.  Calls to suspend
// functions pass on the continuation of their caller.  External suspend
// functions keep their declared shape: the code generator adapts calls to
// them.
func AddContinuation() Phase[*FileContext] {
	return FilePass("AddContinuation", "Add explicit continuation parameters to suspend functions",
		func(fc *FileContext) FileLoweringPass {
			return newContinuationLowering(fc)
		},
	)
}

type continuationLowering struct {
	fc *FileContext

	// continuations maps each lowered suspend function to its continuation
	// parameter.
	continuations map[ir.Function]*ir.ValueParameter

	// functions is the stack of functions enclosing the current element.
	functions []ir.Function

	transformer *ir.Transformer[*continuationLowering]
}

func newContinuationLowering(fc *FileContext) *continuationLowering {
	cl := &continuationLowering{
		fc:            fc,
		continuations: make(map[ir.Function]*ir.ValueParameter),
		transformer:   ir.NewTransformer[*continuationLowering](),
	}

	ir.OnTransform(cl.transformer, ir.KindFunction, func(fn ir.Function, cl *continuationLowering) ir.Element {
		cl.functions = append(cl.functions, fn)
		cl.transformer.TransformChildren(fn, cl)
		cl.functions = cl.functions[:len(cl.functions)-1]
		return fn
	})

	ir.OnTransform(cl.transformer, ir.KindCall, func(call *ir.Call, cl *continuationLowering) ir.Element {
		cl.transformer.TransformChildren(call, cl)

		callee := call.Symbol.Owner().FuncBase()
		if !callee.IsSuspend || callee.IsExternal {
			return call
		}

		if shape := cl.fc.shapeOf(call.Symbol); shape.continuation || len(call.Args) != len(shape.params) {
			return call
		}

		call.Args = append(call.Args, ir.NewGetValue(cl.continuation(call)))
		return call
	})

	return cl
}

func (cl *continuationLowering) LowerFile(file *ir.File) {
	for _, fn := range collectFunctions(file) {
		fb := fn.FuncBase()
		if !fb.IsSuspend || fb.IsExternal {
			continue
		}

		if typemap.HasContinuationParam(fn) {
			cl.continuations[fn] = fb.Params[len(fb.Params)-1]
			continue
		}

		cl.continuations[fn] = cl.fc.Factory.AddParam(fn, "$completion", typemap.ContinuationType(fb.ReturnType), ir.OriginContinuationParameter)
		fb.ReturnType = types.NullableAnyType
	}

	cl.transformer.TransformChildren(file, cl)
}

// continuation returns the continuation the innermost enclosing function of
// call passes to suspend callees.
func (cl *continuationLowering) continuation(call *ir.Call) *ir.ValueParameter {
	if len(cl.functions) > 0 {
		if param, ok := cl.continuations[cl.functions[len(cl.functions)-1]]; ok {
			return param
		}
	}

	report.Fault("suspend function %s called outside of a suspend function", ir.SymbolName(call.Symbol))
	return nil
}
