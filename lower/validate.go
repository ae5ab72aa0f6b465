package lower

import (
	"fmt"

	"irbackend/ir"
	"irbackend/util"
)

// ValidationError is raised by a validation phase when the tree violates one
// of its structural invariants.  It is fatal for the compilation.
type ValidationError struct {
	// Phase is the name of the validation phase.
	Phase string

	// File is the name of the file containing the offending node.  It is
	// empty for nodes outside of any file.
	File string

	// Node is a one-line description of the offending node.
	Node string

	Message string
}

func (ve *ValidationError) Error() string {
	if ve.File == "" {
		return fmt.Sprintf("%s: %s: %s", ve.Phase, ve.Node, ve.Message)
	}

	return fmt.Sprintf("%s: %s: %s: %s", ve.Phase, ve.File, ve.Node, ve.Message)
}

// validator holds the state of one validation run.
type validator struct {
	phase string

	// lowered enables the postconditions of the lowering pipeline.
	lowered bool

	// declared holds the symbols of every declaration in the module.
	declared map[ir.Symbol]bool

	// seen holds every element visited so far.  An element seen twice is
	// owned by two parents.
	seen map[ir.Element]bool

	file      *ir.File
	external  bool
	parents   []ir.DeclarationParent
	functions []*ir.FunctionSymbol
	loops     []ir.Loop

	err *ValidationError
}

// ValidateBeforeLowering creates the validation step run before any lowering.
func ValidateBeforeLowering() Phase[*ir.ModuleFragment] {
	return newValidation("ValidateBeforeLowering", "Check the invariants of the input tree", false)
}

// ValidateAfterLowering creates the validation step run after all lowerings.
// Besides the invariants, it checks that no construct without a direct
// encoding in the target remains.
func ValidateAfterLowering() Phase[*ir.ModuleFragment] {
	return newValidation("ValidateAfterLowering", "Check the invariants and postconditions of the lowered tree", true)
}

func newValidation(name, description string, lowered bool) Phase[*ir.ModuleFragment] {
	return &step[*ir.ModuleFragment]{
		info: PhaseInfo{Name: name, Description: description, Scope: "module", DefaultEnabled: true, Required: true},
		lower: func(lc *Context, module *ir.ModuleFragment) error {
			if err := Validate(module, name, lowered); err != nil {
				return err
			}

			return nil
		},
	}
}

// Validate checks the structural invariants of module: every declaration is
// bound to its own symbol and linked to its enclosing parent, every element
// has exactly one owner, every symbol reference resolves to a declaration of
// the module, every expression has a type and every jump and return targets
// an enclosing loop or function.  If lowered is set, the postconditions of
// the lowering pipeline are checked as well.  The first violation found is
// returned.
func Validate(module *ir.ModuleFragment, phase string, lowered bool) *ValidationError {
	v := &validator{
		phase:    phase,
		lowered:  lowered,
		declared: make(map[ir.Symbol]bool),
		seen:     make(map[ir.Element]bool),
	}

	ir.Walk(module, func(elem ir.Element) {
		if decl, ok := elem.(ir.Declaration); ok {
			if sym := decl.DeclSymbol(); sym != nil {
				v.declared[sym] = true
			}
		}
	})

	for _, file := range module.Files {
		if file.Module != module {
			v.fail(file, "file is not linked to its module")
			return v.err
		}

		v.file = file
		v.parents = []ir.DeclarationParent{file}
		validationVisitor.VisitChildren(file, v)

		if v.err != nil {
			return v.err
		}
	}

	v.file = nil
	v.external = true
	for _, ext := range module.Externals {
		v.parents = []ir.DeclarationParent{ext}
		validationVisitor.VisitChildren(ext, v)

		if v.err != nil {
			return v.err
		}
	}

	return nil
}

// validationVisitor is the visitor performing validation.  It is stateless:
// all state lives in the validator passed along.
var validationVisitor = newValidationVisitor()

func newValidationVisitor() *ir.Visitor[*validator] {
	vis := ir.NewVisitor[*validator]()

	vis.On(ir.KindElement, func(elem ir.Element, v *validator) {
		if v.enter(elem) {
			vis.VisitChildren(elem, v)
		}
	})

	ir.OnVisit(vis, ir.KindDeclaration, func(decl ir.Declaration, v *validator) {
		if !v.enter(decl) || !v.checkDeclaration(decl) {
			return
		}

		if fn, ok := decl.(ir.Function); ok {
			v.functions = append(v.functions, fn.FuncSymbol())
			defer func() { v.functions = v.functions[:len(v.functions)-1] }()
		}

		if parent, ok := decl.(ir.DeclarationParent); ok {
			v.parents = append(v.parents, parent)
			defer func() { v.parents = v.parents[:len(v.parents)-1] }()
		}

		vis.VisitChildren(decl, v)
	})

	vis.On(ir.KindErrorDeclaration, func(elem ir.Element, v *validator) {
		v.fail(elem, "unresolved declaration")
	})

	ir.OnVisit(vis, ir.KindExpression, func(expr ir.Expression, v *validator) {
		if v.enter(expr) && v.checkType(expr) {
			vis.VisitChildren(expr, v)
		}
	})

	ir.OnVisit(vis, ir.KindDeclarationReference, func(expr ir.Expression, v *validator) {
		if v.enter(expr) && v.checkType(expr) && v.checkReference(expr) {
			vis.VisitChildren(expr, v)
		}
	})

	ir.OnVisit(vis, ir.KindMemberAccess, func(ma ir.MemberAccess, v *validator) {
		if v.enter(ma) && v.checkType(ma) && v.checkReference(ma) && v.checkArguments(ma) {
			vis.VisitChildren(ma, v)
		}
	})

	ir.OnVisit(vis, ir.KindInstanceInitializerCall, func(ic *ir.InstanceInitializerCall, v *validator) {
		if v.enter(ic) && v.checkType(ic) {
			v.checkReference(ic)
		}
	})

	ir.OnVisit(vis, ir.KindLoop, func(loop ir.Loop, v *validator) {
		if !v.enter(loop) || !v.checkType(loop) {
			return
		}

		v.loops = append(v.loops, loop)
		vis.VisitChildren(loop, v)
		v.loops = v.loops[:len(v.loops)-1]
	})

	ir.OnVisit(vis, ir.KindBreakContinue, func(jump ir.BreakContinue, v *validator) {
		if !v.enter(jump) || !v.checkType(jump) {
			return
		}

		if util.Contains(v.loops, jump.JumpBase().Loop) {
			return
		}

		v.fail(jump, "jump outside of its target loop")
	})

	ir.OnVisit(vis, ir.KindReturn, func(ret *ir.Return, v *validator) {
		if !v.enter(ret) || !v.checkType(ret) {
			return
		}

		for _, fn := range v.functions {
			if fn == ret.Target {
				vis.VisitChildren(ret, v)
				return
			}
		}

		v.fail(ret, "return outside of its target function")
	})

	vis.On(ir.KindErrorExpression, func(elem ir.Element, v *validator) {
		v.fail(elem, "unresolved expression")
	})

	return vis
}

// -----------------------------------------------------------------------------

// enter records that elem has been visited and checks the postconditions
// applying to it.  It returns whether validation should continue into elem.
func (v *validator) enter(elem ir.Element) bool {
	if v.err != nil {
		return false
	}

	if v.seen[elem] {
		v.fail(elem, "element is owned by more than one parent")
		return false
	}

	v.seen[elem] = true

	if v.lowered && !v.external {
		if msg := loweredViolation(elem); msg != "" {
			v.fail(elem, msg)
			return false
		}
	}

	return true
}

// loweredViolation returns why elem may not appear in a lowered tree or the
// empty string if it may.
func loweredViolation(elem ir.Element) string {
	switch v := elem.(type) {
	case *ir.FunctionExpression:
		return "lambda was not lowered"
	case *ir.FunctionReference, *ir.PropertyReference:
		return "callable reference was not materialized"
	case *ir.Property:
		return "property was not split into a field and accessors"
	case *ir.TypeAlias:
		return "type alias was not removed"
	case *ir.AnonymousInitializer:
		return "anonymous initializer was not moved into constructors"
	case *ir.InstanceInitializerCall:
		return "instance initializer call was not expanded"
	case *ir.EnumEntry:
		return "enum entry was not replaced by a field"
	case *ir.Class:
		if v.IsExpect {
			return "expect declaration was not removed"
		}
	case *ir.SimpleFunction:
		if v.IsExpect {
			return "expect declaration was not removed"
		}
	}

	return ""
}

func (v *validator) checkDeclaration(decl ir.Declaration) bool {
	sym := decl.DeclSymbol()
	if sym == nil || !sym.IsBound() {
		v.fail(decl, "declaration has no bound symbol")
		return false
	}

	if sym.OwnerDecl() != decl {
		v.fail(decl, "declaration symbol is bound to another declaration")
		return false
	}

	if parent := v.parents[len(v.parents)-1]; decl.DeclBase().Parent != parent {
		v.fail(decl, fmt.Sprintf("declaration parent is not its enclosing %s", parent.Kind()))
		return false
	}

	return true
}

func (v *validator) checkType(expr ir.Expression) bool {
	if expr.Type() == nil {
		v.fail(expr, "expression has no type")
		return false
	}

	return true
}

// checkReference checks that the symbol elem refers to resolves to a
// declaration of the module.
func (v *validator) checkReference(elem ir.Element) bool {
	sym, ok := referencedSymbol(elem)
	if !ok {
		return true
	}

	if sym == nil {
		v.fail(elem, "reference without a symbol")
		return false
	}

	if !sym.IsBound() {
		v.fail(elem, fmt.Sprintf("reference to unbound symbol %d", sym.ID()))
		return false
	}

	if !v.declared[sym] {
		v.fail(elem, fmt.Sprintf("reference to %s which is not declared in the module", ir.SymbolName(sym)))
		return false
	}

	return true
}

// checkArguments checks that a call passes one argument slot per parameter of
// its callee.
func (v *validator) checkArguments(ma ir.MemberAccess) bool {
	switch ma.(type) {
	case *ir.FunctionReference, *ir.PropertyReference:
		return true
	}

	sym, _ := referencedSymbol(ma)
	fn, ok := sym.OwnerDecl().(ir.Function)
	if !ok {
		v.fail(ma, "call to a symbol which is not a function")
		return false
	}

	if got, want := len(ma.MemberBase().Args), len(fn.FuncBase().Params); got != want {
		v.fail(ma, fmt.Sprintf("call passes %d arguments to %d parameters", got, want))
		return false
	}

	return true
}

func (v *validator) fail(elem ir.Element, msg string) {
	if v.err != nil {
		return
	}

	v.err = &ValidationError{Phase: v.phase, Node: ir.Describe(elem), Message: msg}
	if v.file != nil {
		v.err.File = v.file.Name
	}
}

// -----------------------------------------------------------------------------

// referencedSymbol returns the symbol elem refers to and whether elem is a
// reference at all.  The symbol is nil if elem is a reference missing its
// symbol.
func referencedSymbol(elem ir.Element) (ir.Symbol, bool) {
	switch v := elem.(type) {
	case *ir.Call:
		return symbolOrNil(v.Symbol), true
	case *ir.ConstructorCall:
		return symbolOrNil(v.Symbol), true
	case *ir.DelegatingConstructorCall:
		return symbolOrNil(v.Symbol), true
	case *ir.EnumConstructorCall:
		return symbolOrNil(v.Symbol), true
	case *ir.FunctionReference:
		return symbolOrNil(v.Symbol), true
	case *ir.PropertyReference:
		return symbolOrNil(v.Symbol), true
	case *ir.GetValue:
		return symbolOrNil(v.Symbol), true
	case *ir.SetValue:
		return symbolOrNil(v.Symbol), true
	case *ir.GetField:
		return symbolOrNil(v.Symbol), true
	case *ir.SetField:
		return symbolOrNil(v.Symbol), true
	case *ir.GetObjectValue:
		return symbolOrNil(v.Symbol), true
	case *ir.GetEnumValue:
		return symbolOrNil(v.Symbol), true
	case *ir.InstanceInitializerCall:
		return symbolOrNil(v.Class), true
	case *ir.ClassReference:
		// class literals may refer to builtin classes
		if cs, ok := v.Symbol.(*ir.ClassSymbol); ok {
			return symbolOrNil(cs), true
		}
	}

	return nil, false
}

// symbolOrNil converts a possibly nil symbol pointer into a Symbol which is
// nil if the pointer is.
func symbolOrNil[S interface {
	ir.Symbol
	comparable
}](sym S) ir.Symbol {
	var zero S
	if sym == zero {
		return nil
	}

	return sym
}
