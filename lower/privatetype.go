package lower

import (
	"irbackend/ir"
)

// PrivateTypeFromInternalInline reports the private classes an internal
// inline function exposes.  Inlining copies the body of such a function into
// other modules, where private classes are not accessible.  A private class
// is exposed if the function calls one of its members or constructors
// directly or through a private inline function it calls.  Each class is
// reported once per exposing function, at its first use.
func PrivateTypeFromInternalInline() Phase[*FileContext] {
	return FilePass("PrivateTypeFromInternalInline", "Report private classes exposed by internal inline functions",
		func(fc *FileContext) FileLoweringPass {
			return &privateTypeChecker{fc: fc}
		},
	)
}

// PrivateTypeInInlineCode is the diagnostic code reported by
// PrivateTypeFromInternalInline.
const PrivateTypeInInlineCode = "PRIVATE_TYPE_USED_IN_NON_PRIVATE_INLINE_FUNCTION"

type privateTypeChecker struct {
	fc *FileContext
}

func (ptc *privateTypeChecker) LowerFile(file *ir.File) {
	for _, fn := range collectFunctions(file) {
		fb := fn.FuncBase()
		if fb.IsInline && fb.Visibility == ir.Internal && fb.Body != nil {
			ptc.checkCaller(fn)
		}
	}
}

// checkCaller reports the private classes used by caller.
func (ptc *privateTypeChecker) checkCaller(caller ir.Function) {
	reported := make(map[string]bool)
	visited := map[ir.Function]bool{caller: true}

	var check func(body ir.Element, site func(ir.Element) ir.Element)
	check = func(body ir.Element, site func(ir.Element) ir.Element) {
		ir.Walk(body, func(elem ir.Element) {
			ma, ok := elem.(ir.MemberAccess)
			if !ok {
				return
			}

			callee, ok := ma.MemberSymbol().OwnerDecl().(ir.Function)
			if !ok {
				return
			}

			if cls := ownerClass(callee); cls != nil && isEffectivelyPrivate(cls) {
				id := ptc.fc.Mapper.ClassInternalName(cls.Symbol)
				if !reported[id] {
					reported[id] = true
					ptc.fc.reportError(PrivateTypeInInlineCode, site(elem),
						"private class %s is used in non-private inline function %s", id, caller.FuncBase().Name)
				}
			}

			// private inline callees are inlined along with the caller
			cb := callee.FuncBase()
			if cb.IsInline && cb.Body != nil && isEffectivelyPrivateFunction(callee) && !visited[callee] {
				visited[callee] = true

				outer := site(elem)
				check(cb.Body, func(ir.Element) ir.Element { return outer })
			}
		})
	}

	check(caller.FuncBase().Body, func(elem ir.Element) ir.Element { return elem })
}

// ownerClass returns the class declaring fn: the constructed class for
// constructors and the enclosing class for members.
func ownerClass(fn ir.Function) *ir.Class {
	cls, _ := fn.FuncBase().Parent.(*ir.Class)
	return cls
}

// isEffectivelyPrivate returns whether cls or one of its enclosing classes is
// private.
func isEffectivelyPrivate(cls *ir.Class) bool {
	for cls != nil {
		if cls.Visibility == ir.Private {
			return true
		}

		cls, _ = cls.Parent.(*ir.Class)
	}

	return false
}

func isEffectivelyPrivateFunction(fn ir.Function) bool {
	if fn.FuncBase().Visibility == ir.Private {
		return true
	}

	cls := ownerClass(fn)
	return cls != nil && isEffectivelyPrivate(cls)
}
