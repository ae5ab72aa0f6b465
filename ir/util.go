package ir

// PatchDeclarationParents sets the parent of every declaration in elem to its
// innermost enclosing declaration parent.  The parent of elem itself is set to
// parent unless it is nil.  Parents which are already correct are not
// written.
func PatchDeclarationParents(elem Element, parent DeclarationParent) {
	if decl, ok := elem.(Declaration); ok && parent != nil && decl.DeclBase().Parent != parent {
		decl.DeclBase().Parent = parent
	}

	switch v := elem.(type) {
	case *ModuleFragment:
		for _, file := range v.Files {
			file.Module = v
		}
	case DeclarationParent:
		parent = v
	}

	elem.WalkChildren(func(child Element) {
		PatchDeclarationParents(child, parent)
	})
}

// TransformDeclarationsFlat replaces each member declaration of container by
// the declarations fn returns for it.  If fn returns nil, the declaration is
// kept.  An empty non-nil result removes the declaration.  The declaration
// list is only reallocated if a declaration is replaced.
func TransformDeclarationsFlat(container DeclarationContainer, fn func(Declaration) []Declaration) {
	decls := container.DeclarationList()

	var result []Declaration
	for i, decl := range *decls {
		replacement := fn(decl)
		if replacement == nil {
			if result != nil {
				result = append(result, decl)
			}

			continue
		}

		if result == nil {
			result = make([]Declaration, i, len(*decls)+len(replacement))
			copy(result, (*decls)[:i])
		}

		for _, newDecl := range replacement {
			newDecl.DeclBase().Parent = container
			result = append(result, newDecl)
		}
	}

	if result != nil {
		*decls = result
	}
}

// TransformStatementsFlat replaces each statement of stmts by the statements
// fn returns for it, with the same conventions as TransformDeclarationsFlat.
// The original slice is returned if nothing is replaced.
func TransformStatementsFlat(stmts []Statement, fn func(Statement) []Statement) []Statement {
	var result []Statement
	for i, stmt := range stmts {
		replacement := fn(stmt)
		if replacement == nil {
			if result != nil {
				result = append(result, stmt)
			}

			continue
		}

		if result == nil {
			result = make([]Statement, i, len(stmts)+len(replacement))
			copy(result, stmts[:i])
		}

		result = append(result, replacement...)
	}

	if result == nil {
		return stmts
	}

	return result
}

// RemoveDeclaration removes decl from container.  It returns whether decl was
// found.
func RemoveDeclaration(container DeclarationContainer, decl Declaration) bool {
	decls := container.DeclarationList()
	for i, d := range *decls {
		if d == decl {
			result := make([]Declaration, 0, len(*decls)-1)
			result = append(result, (*decls)[:i]...)
			*decls = append(result, (*decls)[i+1:]...)
			return true
		}
	}

	return false
}

// FunctionBody returns the block body of fn, converting an expression body
// into a block body returning the expression.  It returns nil if fn has no
// body or a synthetic body.
func FunctionBody(fn Function) *BlockBody {
	fb := fn.FuncBase()
	switch body := fb.Body.(type) {
	case *BlockBody:
		return body
	case *ExpressionBody:
		bb := &BlockBody{Statements: []Statement{NewReturn(fn, body.Expr)}}
		bb.SetSpan(body.Span())
		CopyAttributesFrom(bb, body)
		fb.Body = bb
		return bb
	}

	return nil
}
