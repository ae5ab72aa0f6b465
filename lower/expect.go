package lower

import "irbackend/ir"

// ExpectDeclarationRemover removes expect declarations: their actual
// counterparts are compiled instead.
func ExpectDeclarationRemover() Phase[*ir.ModuleFragment] {
	return ModulePass("ExpectDeclarationRemover", "Remove expect declarations from the module",
		func(lc *Context) ModuleLoweringPass {
			return &expectDeclarationRemover{}
		},
	)
}

type expectDeclarationRemover struct{}

func (edr *expectDeclarationRemover) LowerModule(module *ir.ModuleFragment) {
	for _, file := range module.Files {
		edr.removeFrom(file)
	}
}

func (edr *expectDeclarationRemover) removeFrom(container ir.DeclarationContainer) {
	ir.TransformDeclarationsFlat(container, func(decl ir.Declaration) []ir.Declaration {
		if isExpect(decl) {
			return []ir.Declaration{}
		}

		if cls, ok := decl.(*ir.Class); ok {
			edr.removeFrom(cls)
		}

		return nil
	})
}

func isExpect(decl ir.Declaration) bool {
	switch v := decl.(type) {
	case *ir.Class:
		return v.IsExpect
	case ir.Function:
		return v.FuncBase().IsExpect
	case *ir.Property:
		return v.IsExpect
	}

	return false
}
