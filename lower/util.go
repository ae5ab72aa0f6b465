package lower

import (
	"unicode"
	"unicode/utf8"

	"irbackend/ir"
)

// capitalize upper-cases the first letter of s.
func capitalize(s string) string {
	if s == "" {
		return s
	}

	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// transformStatementLists calls fn on every statement list below elem: the
// declarations of containers are not included.  fn is applied to inner lists
// before outer ones so it may move statements out of nested lists.
func transformStatementLists(elem ir.Element, fn func(stmts []ir.Statement) []ir.Statement) {
	elem.WalkChildren(func(child ir.Element) {
		transformStatementLists(child, fn)
	})

	switch v := elem.(type) {
	case *ir.BlockBody:
		v.Statements = fn(v.Statements)
	case ir.ContainerExpression:
		list := v.StatementList()
		*list = fn(*list)
	}
}

// collectFunctions returns every function declared in elem in pre-order.
func collectFunctions(elem ir.Element) []ir.Function {
	var fns []ir.Function
	ir.Walk(elem, func(e ir.Element) {
		if fn, ok := e.(ir.Function); ok {
			fns = append(fns, fn)
		}
	})

	return fns
}

// collectClasses returns every class declared in elem in pre-order.
func collectClasses(elem ir.Element) []*ir.Class {
	var classes []*ir.Class
	ir.Walk(elem, func(e ir.Element) {
		if cls, ok := e.(*ir.Class); ok {
			classes = append(classes, cls)
		}
	})

	return classes
}

// shiftParams renumbers the value parameters of fn after receivers have been
// turned into parameters or parameters have been prepended.
func shiftParams(fn ir.Function) {
	for i, param := range fn.FuncBase().Params {
		param.Index = i
	}
}

// isLambdaBlock returns whether block is the local function plus reference
// pair a function expression was lowered to.
func isLambdaBlock(block *ir.Block) (*ir.SimpleFunction, *ir.FunctionReference, bool) {
	if block.Origin != ir.OriginLambda || len(block.Statements) != 2 {
		return nil, nil, false
	}

	fn, ok := block.Statements[0].(*ir.SimpleFunction)
	if !ok {
		return nil, nil, false
	}

	ref, ok := block.Statements[1].(*ir.FunctionReference)
	if !ok || ref.Symbol != fn.Symbol {
		return nil, nil, false
	}

	return fn, ref, true
}
