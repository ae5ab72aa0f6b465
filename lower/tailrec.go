package lower

import (
	"irbackend/ir"
	"irbackend/report"
	"irbackend/types"
)

// Tailrec turns the self tail calls of tailrec functions into jumps back to
// the start of a loop wrapping the body.  Parameters are copied into
// variables which tail calls reassign.
func Tailrec() Phase[*FileContext] {
	return FilePass("Tailrec", "Turn self tail calls into loops",
		func(fc *FileContext) FileLoweringPass {
			return &tailrecLowering{fc: fc}
		},
	)
}

type tailrecLowering struct {
	fc *FileContext
}

func (tl *tailrecLowering) LowerFile(file *ir.File) {
	for _, fn := range collectFunctions(file) {
		if sf, ok := fn.(*ir.SimpleFunction); ok && sf.IsTailrec {
			tl.lowerFunction(sf)
		}
	}

	tl.fc.patchParents()
}

// isTailCall returns whether ret returns the result of a call of fn on its
// own receiver.
func isTailCall(fn *ir.SimpleFunction, ret *ir.Return) (*ir.Call, bool) {
	if ret.Target != fn.Symbol {
		return nil, false
	}

	call, ok := ret.Value.(*ir.Call)
	if !ok || call.Symbol != fn.Symbol {
		return nil, false
	}

	if fn.DispatchReceiver != nil {
		gv, ok := call.DispatchReceiver.(*ir.GetValue)
		if !ok || gv.Symbol != fn.DispatchReceiver.Symbol {
			return nil, false
		}
	}

	return call, true
}

func (tl *tailrecLowering) lowerFunction(fn *ir.SimpleFunction) {
	body := ir.FunctionBody(fn)
	if body == nil {
		return
	}

	found := false
	walkSkippingClasses(body, func(elem ir.Element) {
		if ret, ok := elem.(*ir.Return); ok {
			if _, ok := isTailCall(fn, ret); ok {
				found = true
			}
		}
	})

	if !found {
		return
	}

	var params []*ir.ValueParameter
	if fn.ExtensionReceiver != nil {
		params = append(params, fn.ExtensionReceiver)
	}
	params = append(params, fn.Params...)

	// each parameter lives in a variable the tail calls reassign
	vars := make(map[*ir.ValueSymbol]*ir.Variable, len(params))
	var stmts []ir.Statement
	for _, param := range params {
		v := tl.fc.Factory.NewVariable(param.Name, param.Type, ir.NewGetValue(param), ir.OriginTailrecTemporary)
		v.IsVar = true
		vars[param.Symbol] = v
		stmts = append(stmts, v)
	}

	loop := &ir.WhileLoop{LoopBase: ir.LoopBase{
		ExpressionBase: ir.NewExpressionBase(types.PrimUnit),
		Origin:         ir.OriginLoweredLoop,
		Label:          fn.Name,
		Cond:           ir.NewBooleanConst(true),
	}}

	loopBody := ir.NewBlock(types.PrimUnit, nil, body.Statements...)
	if unitResult(fn) {
		loopBody.Statements = append(loopBody.Statements, ir.NewReturn(fn, nil))
	}

	loop.Body = loopBody

	t := ir.NewTransformer[struct{}]()

	ir.OnTransform(t, ir.KindClass, func(cls *ir.Class, _ struct{}) ir.Element {
		return cls
	})

	ir.OnTransform(t, ir.KindReturn, func(ret *ir.Return, _ struct{}) ir.Element {
		call, ok := isTailCall(fn, ret)
		if !ok {
			t.TransformChildren(ret, struct{}{})
			return ret
		}

		t.TransformChildren(call, struct{}{})
		return tl.jump(fn, call, params, vars, loop)
	})

	ir.OnTransform(t, ir.KindGetValue, func(gv *ir.GetValue, _ struct{}) ir.Element {
		if v, ok := vars[gv.Symbol]; ok {
			read := ir.NewGetValue(v)
			read.SetSpan(gv.Span())
			return read
		}

		return gv
	})

	loop.Body = ir.TransformExpr(t, loop.Body, struct{}{})

	body.Statements = append(stmts, loop)
}

// jump replaces a self tail call: the arguments are evaluated into
// temporaries, assigned to the parameter variables and the loop restarts.
func (tl *tailrecLowering) jump(fn *ir.SimpleFunction, call *ir.Call, params []*ir.ValueParameter, vars map[*ir.ValueSymbol]*ir.Variable, loop *ir.WhileLoop) ir.Expression {
	var args []ir.Expression
	if fn.ExtensionReceiver != nil {
		args = append(args, call.ExtensionReceiver)
	}

	for i, arg := range call.Args {
		if arg == nil {
			dv := fn.Params[i].DefaultValue
			if dv == nil {
				report.Fault("tail call of %s omits parameter %s which has no default", fn.Name, fn.Params[i].Name)
			}

			// default values may refer to other parameters: read their variables
			arg = remapValues(ir.DeepCopy(dv, fn).Expr, vars)
		}

		args = append(args, arg)
	}

	jump := ir.NewComposite(types.PrimNothing, ir.OriginLoweredLoop)

	temps := make([]*ir.Variable, len(args))
	for i, arg := range args {
		temps[i] = tl.fc.temporary(params[i].Name, arg, ir.OriginTailrecTemporary)
		jump.Statements = append(jump.Statements, temps[i])
	}

	for i, param := range params {
		jump.Statements = append(jump.Statements, ir.NewSetValue(vars[param.Symbol], ir.NewGetValue(temps[i])))
	}

	jump.Statements = append(jump.Statements, &ir.Continue{BreakContinueBase: ir.BreakContinueBase{
		ExpressionBase: ir.NewExpressionBase(types.PrimNothing),
		Loop:           loop,
		Label:          loop.Label,
	}})

	jump.SetSpan(call.Span())
	return jump
}

// remapValues replaces reads of parameters with reads of their variables.
func remapValues(expr ir.Expression, vars map[*ir.ValueSymbol]*ir.Variable) ir.Expression {
	t := ir.NewTransformer[struct{}]()
	ir.OnTransform(t, ir.KindGetValue, func(gv *ir.GetValue, _ struct{}) ir.Element {
		if v, ok := vars[gv.Symbol]; ok {
			return ir.NewGetValue(v)
		}

		return gv
	})

	return ir.TransformExpr(t, expr, struct{}{})
}
