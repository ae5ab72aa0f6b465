package ir

import (
	"irbackend/report"
	"irbackend/types"
)

// DeepCopy returns a deep copy of elem.  Every declaration inside elem gets a
// fresh symbol and every reference to it from inside the copy is redirected
// to the fresh symbol.  References to declarations outside elem are kept.
// Each copied element receives the attributes of its source and shares its
// source's attribute owner.  If parent is not nil, it becomes the parent of
// the copied top-level declaration.
func DeepCopy[T Element](elem T, parent DeclarationParent) T {
	c := &copier{
		symbols: make(map[Symbol]Symbol),
		loops:   make(map[Loop]Loop),
		parent:  parent,
	}

	Walk(elem, c.collect)

	result, ok := c.copy(elem).(T)
	if !ok {
		report.Fault("copy of %s changed its category", elem.Kind())
	}

	return result
}

// copier holds the state of a single deep copy.
type copier struct {
	symbols map[Symbol]Symbol
	loops   map[Loop]Loop

	// parent is the declaration parent of the declarations being copied.
	parent DeclarationParent
}

// collect creates the fresh symbol of a declaration about to be copied.
func (c *copier) collect(elem Element) {
	switch v := elem.(type) {
	case *Class:
		c.symbols[v.Symbol] = NewClassSymbol()
	case *SimpleFunction:
		c.symbols[v.Symbol] = NewFunctionSymbol()
	case *Constructor:
		c.symbols[v.Symbol] = NewFunctionSymbol()
	case *Property:
		c.symbols[v.Symbol] = NewPropertySymbol()
	case *Field:
		c.symbols[v.Symbol] = NewFieldSymbol()
	case *Variable:
		c.symbols[v.Symbol] = NewValueSymbol()
	case *ValueParameter:
		c.symbols[v.Symbol] = NewValueSymbol()
	case *TypeParameter:
		c.symbols[v.Symbol] = NewTypeParameterSymbol()
	case *EnumEntry:
		c.symbols[v.Symbol] = NewEnumEntrySymbol()
	case *AnonymousInitializer:
		c.symbols[v.Symbol] = NewAnonymousInitializerSymbol()
	case *TypeAlias:
		c.symbols[v.Symbol] = NewTypeAliasSymbol()
	}
}

// remap returns the fresh symbol for sym if its declaration is being copied
// and sym itself otherwise.
func remap[S Symbol](c *copier, sym S) S {
	if newSym, ok := c.symbols[sym]; ok {
		return newSym.(S)
	}

	return sym
}

func remapList[S Symbol](c *copier, syms []S) []S {
	if syms == nil {
		return nil
	}

	result := make([]S, len(syms))
	for i, sym := range syms {
		result[i] = remap(c, sym)
	}

	return result
}

func copyList[T Element](c *copier, list []T) []T {
	if list == nil {
		return nil
	}

	result := make([]T, len(list))
	for i, elem := range list {
		result[i] = copyChild(c, elem)
	}

	return result
}

func copyChild[T Element](c *copier, elem T) T {
	if isAbsent(elem) {
		return elem
	}

	result, ok := c.copy(elem).(T)
	if !ok {
		report.Fault("copy of %s changed its category", Element(elem).Kind())
	}

	return result
}

// within copies the children of a declaration parent with the copy as their
// parent.
func (c *copier) within(parent DeclarationParent, fn func()) {
	prev := c.parent
	c.parent = parent
	fn()
	c.parent = prev
}

func (c *copier) declaration(db *DeclarationBase) {
	if c.parent != nil {
		db.Parent = c.parent
	}

	db.Annotations = copyList(c, db.Annotations)
}

func (c *copier) expression(eb *ExpressionBase) {
	eb.typ = c.typ(eb.typ)
}

func (c *copier) memberAccess(mb *MemberAccessBase) {
	c.expression(&mb.ExpressionBase)
	mb.DispatchReceiver = copyChild(c, mb.DispatchReceiver)
	mb.ExtensionReceiver = copyChild(c, mb.ExtensionReceiver)
	mb.Args = copyList(c, mb.Args)
	mb.TypeArgs = c.typeList(mb.TypeArgs)
}

func (c *copier) function(fb *FunctionBase, fn Function) {
	c.declaration(&fb.DeclarationBase)
	fb.ReturnType = c.typ(fb.ReturnType)

	c.within(fn, func() {
		fb.TypeParams = copyList(c, fb.TypeParams)
		fb.DispatchReceiver = copyChild(c, fb.DispatchReceiver)
		fb.ExtensionReceiver = copyChild(c, fb.ExtensionReceiver)
		fb.Params = copyList(c, fb.Params)
		fb.Body = copyChild(c, fb.Body)
	})
}

func (c *copier) copy(elem Element) Element {
	var result Element

	switch v := elem.(type) {
	case *ModuleFragment:
		n := *v
		n.Files = copyList(c, v.Files)
		n.Externals = copyList(c, v.Externals)
		for _, file := range n.Files {
			file.Module = &n
		}
		result = &n
	case *File:
		n := *v
		c.within(&n, func() {
			n.Decls = copyList(c, v.Decls)
		})
		result = &n
	case *ExternalPackageFragment:
		n := *v
		c.within(&n, func() {
			n.Decls = copyList(c, v.Decls)
		})
		result = &n

	case *Class:
		n := *v
		c.declaration(&n.DeclarationBase)
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		n.Supertypes = c.typeList(v.Supertypes)
		n.ValueUnderlyingType = c.typ(v.ValueUnderlyingType)
		c.within(&n, func() {
			n.TypeParams = copyList(c, v.TypeParams)
			n.ThisReceiver = copyChild(c, v.ThisReceiver)
			n.Decls = copyList(c, v.Decls)
		})
		result = &n
	case *SimpleFunction:
		n := *v
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		n.CorrespondingProperty = remap(c, v.CorrespondingProperty)
		n.Overridden = remapList(c, v.Overridden)
		c.function(&n.FunctionBase, &n)
		result = &n
	case *Constructor:
		n := *v
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		c.function(&n.FunctionBase, &n)
		result = &n
	case *Property:
		n := *v
		c.declaration(&n.DeclarationBase)
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		n.Type = c.typ(v.Type)
		n.BackingField = copyChild(c, v.BackingField)
		n.Getter = copyChild(c, v.Getter)
		n.Setter = copyChild(c, v.Setter)
		result = &n
	case *Field:
		n := *v
		c.declaration(&n.DeclarationBase)
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		n.Type = c.typ(v.Type)
		n.CorrespondingProperty = remap(c, v.CorrespondingProperty)
		n.Initializer = copyChild(c, v.Initializer)
		result = &n
	case *Variable:
		n := *v
		c.declaration(&n.DeclarationBase)
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		n.Type = c.typ(v.Type)
		n.Initializer = copyChild(c, v.Initializer)
		result = &n
	case *ValueParameter:
		n := *v
		c.declaration(&n.DeclarationBase)
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		n.Type = c.typ(v.Type)
		n.VarargElementType = c.typ(v.VarargElementType)
		n.DefaultValue = copyChild(c, v.DefaultValue)
		result = &n
	case *TypeParameter:
		n := *v
		c.declaration(&n.DeclarationBase)
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		n.Supertypes = c.typeList(v.Supertypes)
		result = &n
	case *EnumEntry:
		n := *v
		c.declaration(&n.DeclarationBase)
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		n.Initializer = copyChild(c, v.Initializer)
		n.Class = copyChild(c, v.Class)
		result = &n
	case *AnonymousInitializer:
		n := *v
		c.declaration(&n.DeclarationBase)
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		n.Body = copyChild(c, v.Body)
		result = &n
	case *TypeAlias:
		n := *v
		c.declaration(&n.DeclarationBase)
		n.Symbol = remap(c, v.Symbol)
		n.Symbol.Bind(&n)
		n.Expanded = c.typ(v.Expanded)
		n.TypeParams = copyList(c, v.TypeParams)
		result = &n
	case *ErrorDeclaration:
		n := *v
		c.declaration(&n.DeclarationBase)
		result = &n

	case *ExpressionBody:
		n := *v
		n.Expr = copyChild(c, v.Expr)
		result = &n
	case *BlockBody:
		n := *v
		n.Statements = copyList(c, v.Statements)
		result = &n
	case *SyntheticBody:
		n := *v
		result = &n

	case *Const:
		n := *v
		c.expression(&n.ExpressionBase)
		result = &n
	case *Vararg:
		n := *v
		c.expression(&n.ExpressionBase)
		n.ElementType = c.typ(v.ElementType)
		n.Elements = copyList(c, v.Elements)
		result = &n
	case *SpreadElement:
		n := *v
		n.Expr = copyChild(c, v.Expr)
		result = &n
	case *Block:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Statements = copyList(c, v.Statements)
		result = &n
	case *Composite:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Statements = copyList(c, v.Statements)
		result = &n
	case *StringConcatenation:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Args = copyList(c, v.Args)
		result = &n
	case *GetObjectValue:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Symbol = remap(c, v.Symbol)
		result = &n
	case *GetEnumValue:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Symbol = remap(c, v.Symbol)
		result = &n
	case *GetValue:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Symbol = remap(c, v.Symbol)
		result = &n
	case *SetValue:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Symbol = remap(c, v.Symbol)
		n.Value = copyChild(c, v.Value)
		result = &n
	case *GetField:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Symbol = remap(c, v.Symbol)
		n.Receiver = copyChild(c, v.Receiver)
		result = &n
	case *SetField:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Symbol = remap(c, v.Symbol)
		n.Receiver = copyChild(c, v.Receiver)
		n.Value = copyChild(c, v.Value)
		result = &n
	case *Call:
		n := *v
		c.memberAccess(&n.MemberAccessBase)
		n.Symbol = remap(c, v.Symbol)
		n.SuperQualifier = remap(c, v.SuperQualifier)
		result = &n
	case *ConstructorCall:
		n := *v
		c.memberAccess(&n.MemberAccessBase)
		n.Symbol = remap(c, v.Symbol)
		result = &n
	case *DelegatingConstructorCall:
		n := *v
		c.memberAccess(&n.MemberAccessBase)
		n.Symbol = remap(c, v.Symbol)
		result = &n
	case *EnumConstructorCall:
		n := *v
		c.memberAccess(&n.MemberAccessBase)
		n.Symbol = remap(c, v.Symbol)
		result = &n
	case *FunctionReference:
		n := *v
		c.memberAccess(&n.MemberAccessBase)
		n.Symbol = remap(c, v.Symbol)
		result = &n
	case *PropertyReference:
		n := *v
		c.memberAccess(&n.MemberAccessBase)
		n.Symbol = remap(c, v.Symbol)
		n.Field = remap(c, v.Field)
		n.Getter = remap(c, v.Getter)
		n.Setter = remap(c, v.Setter)
		result = &n
	case *GetClass:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Arg = copyChild(c, v.Arg)
		result = &n
	case *FunctionExpression:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Function = copyChild(c, v.Function)
		result = &n
	case *ClassReference:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Symbol = c.classifier(v.Symbol)
		n.ClassType = c.typ(v.ClassType)
		result = &n
	case *InstanceInitializerCall:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Class = remap(c, v.Class)
		result = &n
	case *TypeOperatorCall:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Arg = copyChild(c, v.Arg)
		n.Operand = c.typ(v.Operand)
		result = &n
	case *When:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Branches = copyList(c, v.Branches)
		result = &n
	case *Branch:
		n := *v
		n.Cond = copyChild(c, v.Cond)
		n.Result = copyChild(c, v.Result)
		result = &n
	case *WhileLoop:
		n := *v
		c.loop(v, &n, &n.LoopBase)
		result = &n
	case *DoWhileLoop:
		n := *v
		c.loop(v, &n, &n.LoopBase)
		result = &n
	case *Try:
		n := *v
		c.expression(&n.ExpressionBase)
		n.TryResult = copyChild(c, v.TryResult)
		n.Catches = copyList(c, v.Catches)
		n.Finally = copyChild(c, v.Finally)
		result = &n
	case *Catch:
		n := *v
		n.Param = copyChild(c, v.Param)
		n.Result = copyChild(c, v.Result)
		result = &n
	case *Break:
		n := *v
		c.jump(&n.BreakContinueBase)
		result = &n
	case *Continue:
		n := *v
		c.jump(&n.BreakContinueBase)
		result = &n
	case *Return:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Target = remap(c, v.Target)
		n.Value = copyChild(c, v.Value)
		result = &n
	case *Throw:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Value = copyChild(c, v.Value)
		result = &n
	case *ErrorExpression:
		n := *v
		c.expression(&n.ExpressionBase)
		result = &n
	case *ErrorCallExpression:
		n := *v
		c.expression(&n.ExpressionBase)
		n.Receiver = copyChild(c, v.Receiver)
		n.Args = copyList(c, v.Args)
		result = &n
	default:
		report.Fault("cannot copy element of kind %s", elem.Kind())
	}

	rb := result.base()
	rb.attributes = nil
	rb.owner = nil
	CopyAttributesFrom(result, elem)

	return result
}

func (c *copier) loop(orig, loop Loop, lb *LoopBase) {
	c.loops[orig] = loop
	c.expression(&lb.ExpressionBase)

	origBase := orig.LoopData()
	lb.Cond = copyChild(c, origBase.Cond)
	lb.Body = copyChild(c, origBase.Body)
}

func (c *copier) jump(jb *BreakContinueBase) {
	c.expression(&jb.ExpressionBase)
	if loop, ok := c.loops[jb.Loop]; ok {
		jb.Loop = loop
	}
}

// -----------------------------------------------------------------------------

func (c *copier) classifier(cls types.Classifier) types.Classifier {
	switch v := cls.(type) {
	case *ClassSymbol:
		return remap(c, v)
	case *TypeParameterSymbol:
		return remap(c, v)
	}

	return cls
}

func (c *copier) typeList(typs []types.Type) []types.Type {
	if typs == nil {
		return nil
	}

	result := make([]types.Type, len(typs))
	for i, typ := range typs {
		result[i] = c.typ(typ)
	}

	return result
}

// typ redirects the classifiers of typ which are being copied.
func (c *copier) typ(typ types.Type) types.Type {
	switch v := typ.(type) {
	case *types.ClassType:
		ct := &types.ClassType{Classifier: c.classifier(v.Classifier)}
		for _, arg := range v.Args {
			ct.Args = append(ct.Args, types.TypeArg{Variance: arg.Variance, Type: c.typ(arg.Type)})
		}
		return ct
	case *types.TypeVar:
		return &types.TypeVar{Param: c.classifier(v.Param)}
	case *types.NullableType:
		return &types.NullableType{ElemType: c.typ(v.ElemType)}
	case *types.ArrayType:
		return &types.ArrayType{ElemType: c.typ(v.ElemType)}
	case *types.FuncType:
		return &types.FuncType{
			ReceiverType: c.typ(v.ReceiverType),
			ParamTypes:   c.typeList(v.ParamTypes),
			ReturnType:   c.typ(v.ReturnType),
			Suspend:      v.Suspend,
		}
	}

	return typ
}
