package lower

import (
	"strconv"
	"strings"

	"irbackend/ir"
	"irbackend/report"
	"irbackend/types"
)

// FunctionReferences materializes callable references and lambdas as
// instances of synthetic classes implementing the function interface of
// their type.  Bound receivers and captured values become fields of the
// class set by its constructor.
func FunctionReferences() Phase[*FileContext] {
	return FilePass("FunctionReferences", "Materialize callable references and lambdas as classes",
		func(fc *FileContext) FileLoweringPass {
			return newFunctionReferenceLowering(fc)
		},
	)
}

type functionReferenceLowering struct {
	fc          *FileContext
	transformer *ir.Transformer[*functionReferenceLowering]
}

func newFunctionReferenceLowering(fc *FileContext) *functionReferenceLowering {
	frl := &functionReferenceLowering{fc: fc, transformer: ir.NewTransformer[*functionReferenceLowering]()}

	ir.OnTransform(frl.transformer, ir.KindBlock, func(block *ir.Block, frl *functionReferenceLowering) ir.Element {
		if fn, ref, ok := isLambdaBlock(block); ok {
			return frl.lowerLambda(block, fn, ref)
		}

		frl.transformer.TransformChildren(block, frl)
		return block
	})

	ir.OnTransform(frl.transformer, ir.KindFunctionReference, func(ref *ir.FunctionReference, frl *functionReferenceLowering) ir.Element {
		frl.transformer.TransformChildren(ref, frl)
		return frl.lowerFunctionReference(ref)
	})

	ir.OnTransform(frl.transformer, ir.KindPropertyReference, func(ref *ir.PropertyReference, frl *functionReferenceLowering) ir.Element {
		frl.transformer.TransformChildren(ref, frl)
		return frl.lowerPropertyReference(ref)
	})

	return frl
}

func (frl *functionReferenceLowering) LowerFile(file *ir.File) {
	frl.transformer.TransformChildren(file, frl)
	frl.fc.patchParents()
}

// -----------------------------------------------------------------------------

// referenceClass is the class a callable reference is materialized as.
type referenceClass struct {
	cls  *ir.Class
	ctor *ir.Constructor

	// args are the arguments of the constructor call creating the instance.
	args []ir.Expression
}

func (frl *functionReferenceLowering) newReferenceClass(ref ir.MemberAccess, origin *ir.Origin, super types.Type, ft *types.FuncType) *referenceClass {
	name, ok := ir.GetAttribute(ref, referenceClassNameKey)
	if !ok {
		report.Fault("callable reference to %s has no invented class name", ir.SymbolName(ref.MemberSymbol()))
	}

	f := frl.fc.Factory

	cls := f.NewClass(name[strings.LastIndexByte(name, '/')+1:], types.ClassifierClass, origin)
	cls.Visibility = ir.Local
	cls.Supertypes = []types.Type{super, ft}
	cls.SetSpan(ref.Span())
	ir.SetAttribute(cls, ir.LocalClassNameKey, name)

	ctor := f.NewConstructor(cls, origin)
	ctor.IsPrimary = true
	ctor.Body = &ir.BlockBody{}
	cls.AddDeclaration(ctor)

	return &referenceClass{cls: cls, ctor: ctor}
}

// capture adds a field initialized by a new constructor parameter and passes
// arg for it when the class is instantiated.
func (rc *referenceClass) capture(f *ir.Factory, name string, arg ir.Expression) *ir.Field {
	field := f.NewField(name, arg.Type(), ir.OriginCapturedValueField)
	field.IsFinal = true
	field.Visibility = ir.Private
	rc.cls.AddDeclaration(field)

	param := f.AddParam(rc.ctor, name, arg.Type(), ir.OriginDefined)

	body := rc.ctor.Body.(*ir.BlockBody)
	body.Statements = append(body.Statements,
		ir.NewSetField(field, ir.NewGetValue(rc.cls.ThisReceiver), ir.NewGetValue(param)),
	)

	rc.args = append(rc.args, arg)
	return field
}

// instantiate returns the block declaring the class and creating its
// instance.
func (rc *referenceClass) instantiate(typ types.Type, origin *ir.Origin, span ir.Element) ir.Expression {
	call := ir.NewConstructorCall(rc.ctor, rc.args...)
	call.SetSpan(span.Span())

	block := ir.NewBlock(typ, origin, rc.cls, call)
	block.SetSpan(span.Span())
	ir.CopyAttributesFrom(block, span)
	return block
}

// -----------------------------------------------------------------------------

func (frl *functionReferenceLowering) lowerLambda(block *ir.Block, fn *ir.SimpleFunction, ref *ir.FunctionReference) ir.Element {
	// nested lambdas capture through this one so they go first
	frl.transformer.TransformChildren(fn, frl)

	if fn.DispatchReceiver != nil {
		report.Fault("lambda %s has a dispatch receiver", ir.Describe(fn))
	}

	f := frl.fc.Factory
	ft := funcTypeOf(ref, shapeOf(fn))
	rc := frl.newReferenceClass(ref, ir.OriginLambdaImpl, types.AnyType, ft)

	fields := make(map[*ir.ValueSymbol]*ir.Field)
	for _, decl := range capturedValues(fn) {
		fields[decl.ValueSymbol()] = rc.capture(f, capturedFieldName(decl), ir.NewGetValue(decl))
	}

	if er := fn.ExtensionReceiver; er != nil {
		er.Name = "$receiver"
		fn.Params = append([]*ir.ValueParameter{er}, fn.Params...)
		fn.ExtensionReceiver = nil
		shiftParams(fn)
	}

	fn.Name = "invoke"
	fn.Visibility = ir.Public
	fn.Origin = ir.OriginLambdaImpl
	fn.IsSuspend = fn.IsSuspend || ft.Suspend

	this := f.AddDispatchReceiver(fn, rc.cls)
	frl.rewriteCaptures(fn, this, fields)

	rc.cls.AddDeclaration(fn)
	return rc.instantiate(block.Type(), ir.OriginLambdaImpl, block)
}

// capturedValues returns the values fn reads or writes which are declared
// outside of it in order of first use.  Local classes inside fn are skipped.
func capturedValues(fn *ir.SimpleFunction) []ir.ValueDeclaration {
	declared := make(map[*ir.ValueSymbol]bool)
	walkSkippingClasses(fn, func(elem ir.Element) {
		if vd, ok := elem.(ir.ValueDeclaration); ok {
			declared[vd.ValueSymbol()] = true
		}
	})

	var captured []ir.ValueDeclaration
	seen := make(map[*ir.ValueSymbol]bool)

	walkSkippingClasses(fn, func(elem ir.Element) {
		var sym *ir.ValueSymbol
		switch v := elem.(type) {
		case *ir.GetValue:
			sym = v.Symbol
		case *ir.SetValue:
			sym = v.Symbol
		default:
			return
		}

		if !declared[sym] && !seen[sym] {
			seen[sym] = true
			captured = append(captured, sym.Owner())
		}
	})

	return captured
}

func walkSkippingClasses(elem ir.Element, fn func(ir.Element)) {
	fn(elem)
	elem.WalkChildren(func(child ir.Element) {
		if _, ok := child.(*ir.Class); !ok {
			walkSkippingClasses(child, fn)
		}
	})
}

func capturedFieldName(decl ir.ValueDeclaration) string {
	if vp, ok := decl.(*ir.ValueParameter); ok && vp.Index < 0 {
		return "$this"
	}

	return "$" + decl.DeclName()
}

// rewriteCaptures makes the body of invoke read captured values from the
// fields of its class.
func (frl *functionReferenceLowering) rewriteCaptures(invoke *ir.SimpleFunction, this *ir.ValueParameter, fields map[*ir.ValueSymbol]*ir.Field) {
	if len(fields) == 0 {
		return
	}

	t := ir.NewTransformer[struct{}]()

	ir.OnTransform(t, ir.KindClass, func(cls *ir.Class, _ struct{}) ir.Element {
		return cls
	})

	ir.OnTransform(t, ir.KindGetValue, func(gv *ir.GetValue, _ struct{}) ir.Element {
		if field, ok := fields[gv.Symbol]; ok {
			read := ir.NewGetField(field, ir.NewGetValue(this))
			read.SetSpan(gv.Span())
			return read
		}

		return gv
	})

	ir.OnTransform(t, ir.KindSetValue, func(sv *ir.SetValue, _ struct{}) ir.Element {
		t.TransformChildren(sv, struct{}{})

		if _, ok := fields[sv.Symbol]; ok {
			frl.fc.reportError("CAPTURED_VARIABLE_ASSIGNMENT", sv,
				"assignment to captured variable `%s` is not supported", ir.SymbolName(sv.Symbol))
		}

		return sv
	})

	if invoke.Body != nil {
		t.TransformChildren(invoke, struct{}{})
	}
}

// -----------------------------------------------------------------------------

// referenceTarget describes how the invoke method of a reference class
// reaches the referenced declaration.
type referenceTarget struct {
	frl    *functionReferenceLowering
	rc     *referenceClass
	invoke *ir.SimpleFunction
	params []*ir.ValueParameter
	next   int
}

func (frl *functionReferenceLowering) newReferenceTarget(rc *referenceClass, ft *types.FuncType, origin *ir.Origin) *referenceTarget {
	f := frl.fc.Factory

	invoke := f.NewFunction("invoke", ft.ReturnType, origin)
	invoke.IsSuspend = ft.Suspend
	f.AddDispatchReceiver(invoke, rc.cls)

	rt := &referenceTarget{frl: frl, rc: rc, invoke: invoke}

	var paramTypes []types.Type
	if ft.ReceiverType != nil {
		paramTypes = append(paramTypes, ft.ReceiverType)
	}

	for i, pt := range append(paramTypes, ft.ParamTypes...) {
		rt.params = append(rt.params, f.AddParam(invoke, "p"+strconv.Itoa(i), pt, ir.OriginDefined))
	}

	return rt
}

// receiver returns the value of a receiver of the target: the bound receiver
// stored in the class if there is one, or the next invoke parameter.
func (rt *referenceTarget) receiver(bound ir.Expression, name string) ir.Expression {
	if bound != nil {
		field := rt.rc.capture(rt.frl.fc.Factory, name, bound)
		return ir.NewGetField(field, ir.NewGetValue(rt.invoke.DispatchReceiver))
	}

	return rt.take()
}

// take returns a read of the next invoke parameter.
func (rt *referenceTarget) take() ir.Expression {
	if rt.next >= len(rt.params) {
		report.Fault("callable reference type has too few parameters")
	}

	param := rt.params[rt.next]
	rt.next++
	return ir.NewGetValue(param)
}

// args returns the value arguments of a call to the target.  Parameters the
// reference type does not cover take their default values.
func (rt *referenceTarget) args(n int) []ir.Expression {
	args := make([]ir.Expression, n)
	for i := range args {
		if rt.next < len(rt.params) {
			args[i] = rt.take()
		}
	}

	return args
}

// finish gives invoke a body returning result and adds it to the class.
func (rt *referenceTarget) finish(result ir.Expression) {
	rt.invoke.Body = &ir.BlockBody{Statements: []ir.Statement{ir.NewReturn(rt.invoke, result)}}
	rt.rc.cls.AddDeclaration(rt.invoke)
}

func (frl *functionReferenceLowering) lowerFunctionReference(ref *ir.FunctionReference) ir.Element {
	shape := frl.fc.shapeOf(ref.Symbol)

	ft := funcTypeOf(ref, shape)
	super := types.NewClassType(types.FunctionReferenceImplClass)
	rc := frl.newReferenceClass(ref, ir.OriginFunctionReferenceImpl, super, ft)
	rt := frl.newReferenceTarget(rc, ft, ir.OriginFunctionReferenceImpl)

	rt.finish(rt.call(ref, ref.Symbol, shape))
	return rc.instantiate(ref.Type(), ir.OriginFunctionReferenceImpl, ref)
}

// call returns a call of the target through the receivers and parameters of
// invoke.
func (rt *referenceTarget) call(ref ir.MemberAccess, sym *ir.FunctionSymbol, shape *funcShape) ir.Expression {
	mb := ref.MemberBase()

	access := ir.MemberAccessBase{ExpressionBase: ir.NewExpressionBase(shape.result), TypeArgs: mb.TypeArgs}
	if shape.dispatch != nil {
		access.DispatchReceiver = rt.receiver(mb.DispatchReceiver, "$receiver")
	}

	if shape.extension != nil {
		access.ExtensionReceiver = rt.receiver(mb.ExtensionReceiver, "$extension")
	}

	access.Args = rt.args(len(shape.params))

	if _, ok := sym.Owner().(*ir.Constructor); ok {
		return &ir.ConstructorCall{MemberAccessBase: access, Symbol: sym}
	}

	return &ir.Call{MemberAccessBase: access, Symbol: sym}
}

func (frl *functionReferenceLowering) lowerPropertyReference(ref *ir.PropertyReference) ir.Element {
	var shape *funcShape
	if ref.Getter != nil {
		shape = frl.fc.shapeOf(ref.Getter)
	}

	ft := funcTypeOf(ref, shape)
	super := types.NewClassType(types.FunctionReferenceImplClass)
	rc := frl.newReferenceClass(ref, ir.OriginFunctionReferenceImpl, super, ft)
	rt := frl.newReferenceTarget(rc, ft, ir.OriginFunctionReferenceImpl)

	var result ir.Expression
	switch {
	case ref.Getter != nil:
		result = rt.call(ref, ref.Getter, shape)
	case ref.Field != nil:
		field := ref.Field.Owner()

		var receiver ir.Expression
		if !field.IsStatic {
			receiver = rt.receiver(ref.DispatchReceiver, "$receiver")
		}

		result = ir.NewGetField(field, receiver)
	default:
		report.Fault("property reference to %s has neither getter nor field", ir.SymbolName(ref.Symbol))
	}

	rt.finish(result)
	return rc.instantiate(ref.Type(), ir.OriginFunctionReferenceImpl, ref)
}

// funcTypeOf returns the function type of a callable reference.  References
// typed otherwise, eg. as reflection types, get the function type of the
// unbound receivers and parameters of the target shape.
func funcTypeOf(ref ir.MemberAccess, shape *funcShape) *types.FuncType {
	if ft, ok := types.NotNull(ref.Type()).(*types.FuncType); ok {
		return ft
	}

	if shape == nil {
		report.Fault("cannot derive the function type of %s", ir.Describe(ref))
	}

	mb := ref.MemberBase()

	var params []types.Type
	if shape.dispatch != nil && mb.DispatchReceiver == nil {
		params = append(params, shape.dispatch)
	}

	if shape.extension != nil && mb.ExtensionReceiver == nil {
		params = append(params, shape.extension)
	}

	return &types.FuncType{ReturnType: shape.result, ParamTypes: append(params, shape.params...)}
}
