package lower

import (
	"irbackend/ir"
	"irbackend/types"
)

// DefaultConstructors gives every class without constructors a primary
// constructor calling the no-argument constructor of its superclass.
// Objects and enum classes get a private one.  Interfaces and the static
// holder classes created by lowering get none.
func DefaultConstructors() Phase[*FileContext] {
	return ClassPass("DefaultConstructors", "Add default constructors to classes without constructors",
		func(fc *FileContext) ClassLoweringPass {
			return &defaultConstructorLowering{fc: fc}
		},
	)
}

type defaultConstructorLowering struct {
	fc *FileContext
}

func (dcl *defaultConstructorLowering) LowerClass(cls *ir.Class) {
	if !needsConstructor(cls) || len(cls.Constructors()) > 0 {
		return
	}

	cls.AddDeclaration(dcl.fc.defaultConstructorFor(cls))
}

func needsConstructor(cls *ir.Class) bool {
	if cls.IsInterface() || cls.IsExternal || cls.IsExpect {
		return false
	}

	// enum entry classes get their constructors from EnumClasses
	if isEnumEntryClass(cls) {
		return false
	}

	switch cls.Origin {
	case ir.OriginFileClass, ir.OriginMultifileFacade, ir.OriginDefaultImpls:
		return false
	}

	return true
}

func buildDefaultConstructor(lc *Context, cls *ir.Class) *ir.Constructor {
	ctor := ir.NewFactory(nil).NewConstructor(cls, ir.OriginDefaultConstructor)
	ctor.IsPrimary = true

	if cls.IsObject() || cls.IsEnumClass() {
		ctor.Visibility = ir.Private
	}

	body := &ir.BlockBody{}
	if super := superclassOf(cls); super != nil {
		if superCtor := lc.noArgConstructor(super); superCtor != nil {
			body.Statements = append(body.Statements,
				ir.NewDelegatingConstructorCall(superCtor, make([]ir.Expression, len(superCtor.Params))...),
			)
		}
	}

	body.Statements = append(body.Statements, &ir.InstanceInitializerCall{
		ExpressionBase: ir.NewExpressionBase(types.PrimUnit),
		Class:          cls.Symbol,
	})

	ctor.Body = body
	return ctor
}

// isEnumEntryClass returns whether cls is the body of an entry of its
// enclosing enum class.
func isEnumEntryClass(cls *ir.Class) bool {
	enum, ok := cls.Parent.(*ir.Class)
	if !ok || !enum.IsEnumClass() {
		return false
	}

	for _, decl := range enum.Decls {
		if entry, ok := decl.(*ir.EnumEntry); ok && entry.Class == cls {
			return true
		}
	}

	return false
}
