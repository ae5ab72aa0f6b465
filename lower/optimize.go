package lower

import (
	"irbackend/ir"
	"irbackend/types"
)

// Optimization removes code which can never run: statements following a
// jump in the same statement list and when branches whose condition is the
// constant false or which follow a branch whose condition is the constant
// true.
func Optimization() Phase[*FileContext] {
	return FilePass("Optimization", "Remove unreachable statements and constant when branches",
		func(fc *FileContext) FileLoweringPass {
			return &optimizer{fc: fc}
		},
	)
}

type optimizer struct {
	fc *FileContext
}

func (o *optimizer) LowerFile(file *ir.File) {
	t := ir.NewTransformer[struct{}]()
	ir.OnTransform(t, ir.KindWhen, func(w *ir.When, _ struct{}) ir.Element {
		t.TransformChildren(w, struct{}{})
		return foldWhen(w)
	})

	t.TransformChildren(file, struct{}{})

	transformStatementLists(file, dropUnreachable)
	o.fc.patchParents()
}

// dropUnreachable truncates stmts after the first jump.
func dropUnreachable(stmts []ir.Statement) []ir.Statement {
	for i, stmt := range stmts {
		switch stmt.(type) {
		case *ir.Return, *ir.Throw, *ir.Break, *ir.Continue:
			if i+1 < len(stmts) {
				return stmts[:i+1]
			}
		}
	}

	return stmts
}

// foldWhen removes the branches of w which are never taken.  A when whose
// first remaining branch is always taken becomes the result of that branch.
func foldWhen(w *ir.When) ir.Expression {
	var branches []*ir.Branch
	for _, branch := range w.Branches {
		value, known := constCondition(branch.Cond)
		if known && !value {
			continue
		}

		branches = append(branches, branch)
		if known && value {
			break
		}
	}

	if len(branches) > 0 {
		if value, known := constCondition(branches[0].Cond); known && value && isExpressionTyped(branches[0].Result, w) {
			return branches[0].Result
		}
	}

	if len(branches) != len(w.Branches) {
		w.Branches = branches
	}

	return w
}

func constCondition(cond ir.Expression) (bool, bool) {
	c, ok := cond.(*ir.Const)
	if !ok || c.ConstKind != ir.ConstBoolean {
		return false, false
	}

	value, ok := c.Value.(bool)
	return value, ok
}

// isExpressionTyped returns whether result can stand in for w without
// changing the type seen by the parent of w.
func isExpressionTyped(result ir.Expression, w *ir.When) bool {
	return types.Equals(result.Type(), w.Type())
}
