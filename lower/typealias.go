package lower

import "irbackend/ir"

// TypeAliases removes type aliases.  Their uses were expanded by the front
// end so nothing refers to them anymore.
func TypeAliases() Phase[*FileContext] {
	return FilePass("TypeAliases", "Remove type aliases",
		func(fc *FileContext) FileLoweringPass {
			return &typeAliasLowering{}
		},
	)
}

type typeAliasLowering struct{}

func (tal *typeAliasLowering) LowerFile(file *ir.File) {
	ir.TransformDeclarationsFlat(file, dropTypeAlias)
	for _, cls := range collectClasses(file) {
		ir.TransformDeclarationsFlat(cls, dropTypeAlias)
	}

	transformStatementLists(file, func(stmts []ir.Statement) []ir.Statement {
		return ir.TransformStatementsFlat(stmts, func(stmt ir.Statement) []ir.Statement {
			if _, ok := stmt.(*ir.TypeAlias); ok {
				return []ir.Statement{}
			}

			return nil
		})
	})
}

func dropTypeAlias(decl ir.Declaration) []ir.Declaration {
	if _, ok := decl.(*ir.TypeAlias); ok {
		return []ir.Declaration{}
	}

	return nil
}
