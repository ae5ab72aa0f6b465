package lower

import (
	"irbackend/ir"
	"irbackend/report"
)

// LocalClassPopup moves classes declared inside code into the innermost class
// enclosing them.  They keep the names invented for them.
func LocalClassPopup() Phase[*FileContext] {
	return FilePass("LocalClassPopup", "Move local classes into the enclosing class",
		func(fc *FileContext) FileLoweringPass {
			return &localClassPopup{}
		},
	)
}

type localClassPopup struct {
	moved []poppedClass
}

type poppedClass struct {
	cls, owner *ir.Class
}

func (lcp *localClassPopup) LowerFile(file *ir.File) {
	lcp.visit(file, nil)

	for _, pc := range lcp.moved {
		pc.owner.AddDeclaration(pc.cls)
	}
}

func (lcp *localClassPopup) visit(elem ir.Element, owner *ir.Class) {
	if cls, ok := elem.(*ir.Class); ok {
		owner = cls
	}

	elem.WalkChildren(func(child ir.Element) {
		lcp.visit(child, owner)
	})

	switch v := elem.(type) {
	case *ir.BlockBody:
		v.Statements = lcp.extract(v.Statements, owner)
	case ir.ContainerExpression:
		list := v.StatementList()
		*list = lcp.extract(*list, owner)
	}
}

// extract removes the classes of stmts and records them for owner.
func (lcp *localClassPopup) extract(stmts []ir.Statement, owner *ir.Class) []ir.Statement {
	return ir.TransformStatementsFlat(stmts, func(stmt ir.Statement) []ir.Statement {
		cls, ok := stmt.(*ir.Class)
		if !ok {
			return nil
		}

		if owner == nil {
			report.Fault("local class %s has no enclosing class", cls.Name)
		}

		lcp.moved = append(lcp.moved, poppedClass{cls: cls, owner: owner})
		return []ir.Statement{}
	})
}
