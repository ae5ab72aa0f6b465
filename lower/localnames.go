package lower

import (
	"irbackend/ir"
	"irbackend/report"
)

// referenceClassNameKey holds the invented name of the class a callable
// reference will be materialized as.
var referenceClassNameKey = ir.NewAttributeKey[string]("referenceClassName")

// InventNamesForLocalClasses gives every local and anonymous class, and every
// class a callable reference will become, a target name derived from its
// enclosing declarations: `Outer$Local`, `Outer$fn$Local` and `Outer$fn$1`
// for anonymous ones.  Counters are per file and per prefix so names do not
// depend on how files are scheduled.
func InventNamesForLocalClasses() Phase[*FileContext] {
	return Required[*FileContext](FilePass("InventNamesForLocalClasses", "Invent target names for local classes",
		func(fc *FileContext) FileLoweringPass {
			return &localClassNamer{fc: fc}
		},
	))
}

type localClassNamer struct {
	fc *FileContext
}

func (lcn *localClassNamer) LowerFile(file *ir.File) {
	file.WalkChildren(func(child ir.Element) {
		lcn.visit(child, "", false)
	})
}

// visit names the classes below elem.  prefix is the name of the innermost
// enclosing named scope and local is set once the walk has entered code.
func (lcn *localClassNamer) visit(elem ir.Element, prefix string, local bool) {
	switch v := elem.(type) {
	case *ir.Class:
		var name string
		switch {
		case !local:
			name = lcn.fc.Mapper.ClassInternalName(v.Symbol)
		case v.Name == "" || v.Name == "<no name provided>":
			name = lcn.fc.inventLocalName(prefix)
		default:
			name = prefix + "$" + v.Name
		}

		if local {
			ir.SetAttribute(v, ir.LocalClassNameKey, name)
		}

		v.WalkChildren(func(child ir.Element) {
			lcn.visit(child, name, local)
		})
		return
	case *ir.SimpleFunction:
		if prefix == "" {
			report.Fault("function %s is not declared in a class", v.Name)
		}

		inner := prefix + "$" + v.Name
		v.WalkChildren(func(child ir.Element) {
			lcn.visit(child, inner, true)
		})
		return
	case *ir.Block:
		if fn, ref, ok := isLambdaBlock(v); ok {
			name := lcn.fc.inventLocalName(prefix)
			ir.SetAttribute(ref, referenceClassNameKey, name)

			fn.WalkChildren(func(child ir.Element) {
				lcn.visit(child, name, true)
			})
			return
		}
	case *ir.FunctionReference:
		ir.SetAttribute(v, referenceClassNameKey, lcn.fc.inventLocalName(prefix))
	case *ir.PropertyReference:
		ir.SetAttribute(v, referenceClassNameKey, lcn.fc.inventLocalName(prefix))
	}

	switch elem.(type) {
	case ir.Expression, ir.Body:
		local = true
	}

	elem.WalkChildren(func(child ir.Element) {
		lcn.visit(child, prefix, local)
	})
}
