package lower

import (
	"irbackend/ir"
	"irbackend/types"
)

// Interfaces moves the bodies of interface methods into a static nested
// DefaultImpls class.  Each moved method takes the interface receiver as its
// first parameter, followed by its extension receiver if it has one.  The
// interface keeps an abstract declaration of every method.
func Interfaces() Phase[*FileContext] {
	return ClassPass("Interfaces", "Move interface method bodies into DefaultImpls classes",
		func(fc *FileContext) ClassLoweringPass {
			return &interfaceLowering{fc: fc}
		},
	)
}

type interfaceLowering struct {
	fc *FileContext
}

func (il *interfaceLowering) LowerClass(cls *ir.Class) {
	if !cls.IsInterface() || cls.IsExternal {
		return
	}

	var methods []*ir.SimpleFunction
	for _, decl := range cls.Decls {
		if fn, ok := decl.(*ir.SimpleFunction); ok && fn.Body != nil && !fn.IsStatic {
			methods = append(methods, fn)
		}
	}

	if len(methods) == 0 {
		return
	}

	impls := il.fc.Factory.NewClass("DefaultImpls", types.ClassifierClass, ir.OriginDefaultImpls)
	impls.Supertypes = []types.Type{types.AnyType}
	impls.SetSpan(cls.Span())
	cls.AddDeclaration(impls)

	for _, fn := range methods {
		impls.AddDeclaration(il.moveBody(cls, fn, impls))
	}
}

// moveBody returns the static DefaultImpls copy of fn and makes fn abstract.
func (il *interfaceLowering) moveBody(cls *ir.Class, fn *ir.SimpleFunction, impls *ir.Class) *ir.SimpleFunction {
	impl := ir.DeepCopy(fn, impls)
	impl.Origin = ir.OriginDefaultImpls
	impl.IsStatic = true
	impl.Modality = ir.Final
	impl.Overridden = nil

	var receivers []*ir.ValueParameter

	self := impl.DispatchReceiver
	if self == nil {
		self = il.fc.Factory.NewValueParameter("$this", cls.DefaultType(), 0, ir.OriginDefaultImpls)
	}

	self.Name = "$this"
	receivers = append(receivers, self)

	if ext := impl.ExtensionReceiver; ext != nil {
		ext.Name = "$receiver"
		receivers = append(receivers, ext)
	}

	impl.DispatchReceiver = nil
	impl.ExtensionReceiver = nil
	impl.Params = append(receivers, impl.Params...)
	for _, param := range receivers {
		param.Parent = impl
	}

	shiftParams(impl)

	// bodies may also read the receiver through the class
	if cls.ThisReceiver != nil {
		t := ir.NewTransformer[struct{}]()
		ir.OnTransform(t, ir.KindGetValue, func(gv *ir.GetValue, _ struct{}) ir.Element {
			if gv.Symbol == cls.ThisReceiver.Symbol {
				return ir.NewGetValue(self)
			}

			return gv
		})

		t.TransformChildren(impl, struct{}{})
	}

	fn.Body = nil
	fn.Modality = ir.Abstract

	return impl
}
