package lower

import (
	"irbackend/ir"
)

// ObjectClasses gives every object an INSTANCE field created by its primary
// constructor.  Reads of an object inside its own members use the receiver;
// all other reads use the field.
func ObjectClasses() Phase[*FileContext] {
	return FilePass("ObjectClasses", "Add INSTANCE fields to objects",
		func(fc *FileContext) FileLoweringPass {
			return newObjectLowering(fc)
		},
	)
}

type objectLowering struct {
	fc *FileContext

	// functions is the stack of functions enclosing the current element.
	functions []ir.Function

	transformer *ir.Transformer[*objectLowering]
}

func newObjectLowering(fc *FileContext) *objectLowering {
	ol := &objectLowering{fc: fc, transformer: ir.NewTransformer[*objectLowering]()}

	ir.OnTransform(ol.transformer, ir.KindFunction, func(fn ir.Function, ol *objectLowering) ir.Element {
		ol.functions = append(ol.functions, fn)
		ol.transformer.TransformChildren(fn, ol)
		ol.functions = ol.functions[:len(ol.functions)-1]
		return fn
	})

	ir.OnTransform(ol.transformer, ir.KindGetObjectValue, func(gv *ir.GetObjectValue, ol *objectLowering) ir.Element {
		if ol.fc.isExternal(gv.Symbol) {
			return gv
		}

		var result ir.Expression
		if receiver := ol.ownReceiver(gv.Symbol.Owner()); receiver != nil {
			result = ir.NewGetValue(receiver)
		} else {
			result = ir.NewGetField(ol.fc.objectInstanceField(gv.Symbol.Owner()), nil)
		}

		result.SetType(gv.Type())
		result.SetSpan(gv.Span())
		return result
	})

	return ol
}

func (ol *objectLowering) LowerFile(file *ir.File) {
	ol.fc.Registry.Each(func(cls *ir.Class) {
		if cls.IsObject() && !cls.IsExternal {
			ol.addInstance(cls)
		}
	})

	ol.transformer.TransformChildren(file, ol)
}

func (ol *objectLowering) addInstance(cls *ir.Class) {
	ctors := cls.Constructors()
	if len(ctors) == 0 {
		return
	}

	ctor := ctors[0]
	for _, c := range ctors {
		if c.IsPrimary {
			ctor = c
			break
		}
	}

	init := ir.NewConstructorCall(ctor, make([]ir.Expression, len(ctor.Params))...)
	init.SetType(cls.DefaultType())

	field := ol.fc.objectInstanceField(cls)
	field.Initializer = &ir.ExpressionBody{Expr: init}
	field.SetSpan(cls.Span())

	// the instance is created before any other static state
	field.Parent = cls
	cls.Decls = append([]ir.Declaration{field}, cls.Decls...)
}

// ownReceiver returns the receiver standing for obj inside the innermost
// enclosing function if that function is a member of obj.  Constructors use
// the this receiver of the class.
func (ol *objectLowering) ownReceiver(obj *ir.Class) *ir.ValueParameter {
	if len(ol.functions) == 0 {
		return nil
	}

	fn := ol.functions[len(ol.functions)-1]
	if fn.FuncBase().Parent != obj {
		return nil
	}

	switch v := fn.(type) {
	case *ir.Constructor:
		return obj.ThisReceiver
	case *ir.SimpleFunction:
		if v.DispatchReceiver != nil && !v.IsStatic {
			return v.DispatchReceiver
		}
	}

	return nil
}
