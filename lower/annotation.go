package lower

import "irbackend/ir"

// Annotations removes the constructors of annotation classes.  Annotation
// classes are interfaces in the target and cannot be instantiated.
func Annotations() Phase[*FileContext] {
	return ClassPass("Annotations", "Remove constructors of annotation classes",
		func(fc *FileContext) ClassLoweringPass {
			return annotationLowering{}
		},
	)
}

type annotationLowering struct{}

func (annotationLowering) LowerClass(cls *ir.Class) {
	if !cls.IsAnnotationClass() {
		return
	}

	ir.TransformDeclarationsFlat(cls, func(decl ir.Declaration) []ir.Declaration {
		if _, ok := decl.(*ir.Constructor); ok {
			return []ir.Declaration{}
		}

		return nil
	})
}
