package lower

import (
	"irbackend/ir"
	"irbackend/types"
)

// Initializers expands the instance initializer call of each constructor into
// the field initializers and init blocks of its class in declaration order.
// Every constructor gets its own copy of the initializer code.
func Initializers() Phase[*FileContext] {
	return ClassPass("Initializers", "Copy instance initializers into constructors",
		func(fc *FileContext) ClassLoweringPass {
			return &initializersLowering{fc: fc}
		},
	)
}

type initializersLowering struct {
	fc *FileContext
}

func (il *initializersLowering) LowerClass(cls *ir.Class) {
	for _, ctor := range cls.Constructors() {
		body, ok := ctor.Body.(*ir.BlockBody)
		if !ok {
			continue
		}

		t := ir.NewTransformer[struct{}]()
		ir.OnTransform(t, ir.KindInstanceInitializerCall, func(call *ir.InstanceInitializerCall, _ struct{}) ir.Element {
			if call.Class != cls.Symbol {
				return call
			}

			init := il.expand(cls, ctor)
			init.SetSpan(call.Span())
			return init
		})

		t.TransformChildren(body, struct{}{})
	}
}

// expand returns a fresh copy of the instance initialization code of cls
// for ctor.
func (il *initializersLowering) expand(cls *ir.Class, ctor *ir.Constructor) *ir.Composite {
	init := ir.NewComposite(types.PrimUnit, ir.OriginInitializer)

	for _, decl := range cls.Decls {
		switch v := decl.(type) {
		case *ir.Field:
			if v.IsStatic || v.Initializer == nil {
				continue
			}

			value := ir.DeepCopy(v.Initializer.Expr, ctor)
			set := ir.NewSetField(v, ir.NewGetValue(cls.ThisReceiver), value)
			set.SetSpan(v.Span())
			init.Statements = append(init.Statements, set)
		case *ir.AnonymousInitializer:
			if v.IsStatic {
				continue
			}

			for _, stmt := range v.Body.Statements {
				init.Statements = append(init.Statements, ir.DeepCopy(stmt, ctor))
			}
		}
	}

	return init
}

// InitializersCleanup removes the instance initialization code Initializers
// has copied into the constructors.
func InitializersCleanup() Phase[*FileContext] {
	return ClassPass("InitializersCleanup", "Remove instance initializers copied into constructors",
		func(fc *FileContext) ClassLoweringPass {
			return &initializersCleanup{fc: fc}
		},
	)
}

type initializersCleanup struct {
	fc *FileContext
}

func (ic *initializersCleanup) LowerClass(cls *ir.Class) {
	if cls.IsInterface() {
		return
	}

	ir.TransformDeclarationsFlat(cls, func(decl ir.Declaration) []ir.Declaration {
		switch v := decl.(type) {
		case *ir.AnonymousInitializer:
			if !v.IsStatic {
				return []ir.Declaration{}
			}
		case *ir.Field:
			if !v.IsStatic {
				v.Initializer = nil
			}
		}

		return nil
	})
}
