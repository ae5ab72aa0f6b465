package lower

import (
	"irbackend/ir"
	"irbackend/types"
)

// StaticInitializers moves the initializers of static fields and the static
// init blocks of each class into its <clinit> function.  Constant fields
// keep their initializers: the code generator emits them as constant
// values.
func StaticInitializers() Phase[*FileContext] {
	return ClassPass("StaticInitializers", "Collect static initializers into <clinit>",
		func(fc *FileContext) ClassLoweringPass {
			return &staticInitializersLowering{fc: fc}
		},
	)
}

type staticInitializersLowering struct {
	fc *FileContext
}

func (sil *staticInitializersLowering) LowerClass(cls *ir.Class) {
	var stmts []ir.Statement

	ir.TransformDeclarationsFlat(cls, func(decl ir.Declaration) []ir.Declaration {
		switch v := decl.(type) {
		case *ir.Field:
			if !v.IsStatic || v.Initializer == nil || isConstField(v) {
				return nil
			}

			set := ir.NewSetField(v, nil, v.Initializer.Expr)
			set.SetSpan(v.Span())
			stmts = append(stmts, set)
			v.Initializer = nil
		case *ir.AnonymousInitializer:
			if !v.IsStatic {
				return nil
			}

			stmts = append(stmts, v.Body.Statements...)
			return []ir.Declaration{}
		}

		return nil
	})

	if len(stmts) == 0 {
		return
	}

	clinit := staticInitializerOf(sil.fc, cls)
	body := clinit.Body.(*ir.BlockBody)
	body.Statements = append(body.Statements, stmts...)

	ir.PatchDeclarationParents(clinit, cls)
}

func isConstField(field *ir.Field) bool {
	if field.CorrespondingProperty == nil {
		return false
	}

	prop, ok := field.CorrespondingProperty.OwnerDecl().(*ir.Property)
	return ok && prop.IsConst
}

// staticInitializerOf returns the <clinit> function of cls, adding an empty
// one if it has none.
func staticInitializerOf(fc *FileContext, cls *ir.Class) *ir.SimpleFunction {
	for _, decl := range cls.Decls {
		if fn, ok := decl.(*ir.SimpleFunction); ok && fn.Name == "<clinit>" && fn.IsStatic {
			if ir.FunctionBody(fn) != nil {
				return fn
			}
		}
	}

	clinit := fc.Factory.NewFunction("<clinit>", types.PrimUnit, ir.OriginStaticInitializer)
	clinit.IsStatic = true
	clinit.Visibility = ir.Private
	clinit.Body = &ir.BlockBody{}
	cls.AddDeclaration(clinit)
	return clinit
}
