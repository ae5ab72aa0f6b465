package ir

import (
	"irbackend/types"
)

// ConstKind is the kind of a constant value.
type ConstKind int

// Enumeration of constant kinds.
const (
	ConstNull ConstKind = iota
	ConstBoolean
	ConstChar
	ConstByte
	ConstShort
	ConstInt
	ConstLong
	ConstFloat
	ConstDouble
	ConstString
)

// Const is a constant value.  Value holds a bool for booleans, a rune for
// characters, an int64 for all integral kinds, a float64 for floating kinds,
// a string for strings and nil for null.
type Const struct {
	ExpressionBase

	ConstKind ConstKind
	Value     any
}

func (c *Const) Kind() Kind {
	return KindConst
}

func (c *Const) WalkChildren(fn func(Element))            {}
func (c *Const) RewriteChildren(fn func(Element) Element) {}

// -----------------------------------------------------------------------------

// Vararg is the collected argument of a vararg parameter.
type Vararg struct {
	ExpressionBase

	ElementType types.Type
	Elements    []VarargElement
}

func (v *Vararg) Kind() Kind {
	return KindVararg
}

func (v *Vararg) WalkChildren(fn func(Element)) {
	walkList(v.Elements, fn)
}

func (v *Vararg) RewriteChildren(fn func(Element) Element) {
	v.Elements = rewriteList(v.Elements, fn)
}

// SpreadElement is a spread array inside a vararg.
type SpreadElement struct {
	ElementBase

	Expr Expression
}

func (se *SpreadElement) Kind() Kind {
	return KindSpreadElement
}

func (se *SpreadElement) WalkChildren(fn func(Element)) {
	walkChild(se.Expr, fn)
}

func (se *SpreadElement) RewriteChildren(fn func(Element) Element) {
	se.Expr = rewriteChild(se.Expr, fn)
}

func (se *SpreadElement) isVarargElement() {}

// -----------------------------------------------------------------------------

// ContainerExpression is an expression holding a list of statements.
type ContainerExpression interface {
	Expression

	// StatementList returns a pointer to the statements of the container.
	StatementList() *[]Statement
}

// Block is a block of statements evaluating to its last statement.  It
// introduces a scope.
type Block struct {
	ExpressionBase

	Origin     *Origin
	Statements []Statement
}

func (b *Block) Kind() Kind {
	return KindBlock
}

func (b *Block) WalkChildren(fn func(Element)) {
	walkList(b.Statements, fn)
}

func (b *Block) RewriteChildren(fn func(Element) Element) {
	b.Statements = rewriteList(b.Statements, fn)
}

func (b *Block) StatementList() *[]Statement {
	return &b.Statements
}

// Composite is a list of statements which does not introduce a scope.
type Composite struct {
	ExpressionBase

	Origin     *Origin
	Statements []Statement
}

func (c *Composite) Kind() Kind {
	return KindComposite
}

func (c *Composite) WalkChildren(fn func(Element)) {
	walkList(c.Statements, fn)
}

func (c *Composite) RewriteChildren(fn func(Element) Element) {
	c.Statements = rewriteList(c.Statements, fn)
}

func (c *Composite) StatementList() *[]Statement {
	return &c.Statements
}

// StringConcatenation is a string template.
type StringConcatenation struct {
	ExpressionBase

	Args []Expression
}

func (sc *StringConcatenation) Kind() Kind {
	return KindStringConcatenation
}

func (sc *StringConcatenation) WalkChildren(fn func(Element)) {
	walkList(sc.Args, fn)
}

func (sc *StringConcatenation) RewriteChildren(fn func(Element) Element) {
	sc.Args = rewriteList(sc.Args, fn)
}

// -----------------------------------------------------------------------------

// GetObjectValue reads the instance of an object.
type GetObjectValue struct {
	ExpressionBase

	Symbol *ClassSymbol
}

func (g *GetObjectValue) Kind() Kind {
	return KindGetObjectValue
}

func (g *GetObjectValue) WalkChildren(fn func(Element))            {}
func (g *GetObjectValue) RewriteChildren(fn func(Element) Element) {}

// GetEnumValue reads an enum entry.
type GetEnumValue struct {
	ExpressionBase

	Symbol *EnumEntrySymbol
}

func (g *GetEnumValue) Kind() Kind {
	return KindGetEnumValue
}

func (g *GetEnumValue) WalkChildren(fn func(Element))            {}
func (g *GetEnumValue) RewriteChildren(fn func(Element) Element) {}

// GetValue reads a variable or value parameter.
type GetValue struct {
	ExpressionBase

	Symbol *ValueSymbol
	Origin *Origin
}

func (g *GetValue) Kind() Kind {
	return KindGetValue
}

func (g *GetValue) WalkChildren(fn func(Element))            {}
func (g *GetValue) RewriteChildren(fn func(Element) Element) {}

// SetValue assigns a variable.
type SetValue struct {
	ExpressionBase

	Symbol *ValueSymbol
	Origin *Origin
	Value  Expression
}

func (s *SetValue) Kind() Kind {
	return KindSetValue
}

func (s *SetValue) WalkChildren(fn func(Element)) {
	walkChild(s.Value, fn)
}

func (s *SetValue) RewriteChildren(fn func(Element) Element) {
	s.Value = rewriteChild(s.Value, fn)
}

// GetField reads a field.  Receiver is nil for static fields.
type GetField struct {
	ExpressionBase

	Symbol   *FieldSymbol
	Receiver Expression
}

func (g *GetField) Kind() Kind {
	return KindGetField
}

func (g *GetField) WalkChildren(fn func(Element)) {
	walkChild(g.Receiver, fn)
}

func (g *GetField) RewriteChildren(fn func(Element) Element) {
	g.Receiver = rewriteChild(g.Receiver, fn)
}

// SetField writes a field.  Receiver is nil for static fields.
type SetField struct {
	ExpressionBase

	Symbol   *FieldSymbol
	Receiver Expression
	Value    Expression
}

func (s *SetField) Kind() Kind {
	return KindSetField
}

func (s *SetField) WalkChildren(fn func(Element)) {
	walkChild(s.Receiver, fn)
	walkChild(s.Value, fn)
}

func (s *SetField) RewriteChildren(fn func(Element) Element) {
	s.Receiver = rewriteChild(s.Receiver, fn)
	s.Value = rewriteChild(s.Value, fn)
}

// -----------------------------------------------------------------------------

// MemberAccess is an expression referring to a member with receivers and
// arguments: a call or a callable reference.
type MemberAccess interface {
	Expression

	// MemberBase returns the receivers and arguments of the access.
	MemberBase() *MemberAccessBase

	// MemberSymbol returns the symbol of the accessed member.
	MemberSymbol() Symbol
}

// MemberAccessBase is the base struct for member accesses.
type MemberAccessBase struct {
	ExpressionBase

	DispatchReceiver  Expression
	ExtensionReceiver Expression

	// Args are the value arguments in parameter order.  An entry is nil if
	// the corresponding parameter takes its default value.
	Args []Expression

	TypeArgs []types.Type
}

func (mb *MemberAccessBase) MemberBase() *MemberAccessBase {
	return mb
}

func (mb *MemberAccessBase) WalkChildren(fn func(Element)) {
	walkChild(mb.DispatchReceiver, fn)
	walkChild(mb.ExtensionReceiver, fn)
	walkList(mb.Args, fn)
}

func (mb *MemberAccessBase) RewriteChildren(fn func(Element) Element) {
	mb.DispatchReceiver = rewriteChild(mb.DispatchReceiver, fn)
	mb.ExtensionReceiver = rewriteChild(mb.ExtensionReceiver, fn)
	mb.Args = rewriteList(mb.Args, fn)
}

// Call is a call to a simple function.
type Call struct {
	MemberAccessBase

	Symbol *FunctionSymbol
	Origin *Origin

	// SuperQualifier is the class whose implementation is called by a super
	// call.  May be nil.
	SuperQualifier *ClassSymbol
}

func (c *Call) Kind() Kind {
	return KindCall
}

func (c *Call) MemberSymbol() Symbol {
	return c.Symbol
}

// ConstructorCall creates a new instance of a class.
type ConstructorCall struct {
	MemberAccessBase

	Symbol *FunctionSymbol
}

func (cc *ConstructorCall) Kind() Kind {
	return KindConstructorCall
}

func (cc *ConstructorCall) MemberSymbol() Symbol {
	return cc.Symbol
}

// DelegatingConstructorCall calls another constructor of the same class or of
// the superclass from a constructor.
type DelegatingConstructorCall struct {
	MemberAccessBase

	Symbol *FunctionSymbol
}

func (dc *DelegatingConstructorCall) Kind() Kind {
	return KindDelegatingConstructorCall
}

func (dc *DelegatingConstructorCall) MemberSymbol() Symbol {
	return dc.Symbol
}

// EnumConstructorCall calls an enum class constructor from an enum entry or
// enum class constructor.
type EnumConstructorCall struct {
	MemberAccessBase

	Symbol *FunctionSymbol
}

func (ec *EnumConstructorCall) Kind() Kind {
	return KindEnumConstructorCall
}

func (ec *EnumConstructorCall) MemberSymbol() Symbol {
	return ec.Symbol
}

// FunctionReference is a reference to a function as a value.
type FunctionReference struct {
	MemberAccessBase

	Symbol *FunctionSymbol
	Origin *Origin
}

func (fr *FunctionReference) Kind() Kind {
	return KindFunctionReference
}

func (fr *FunctionReference) MemberSymbol() Symbol {
	return fr.Symbol
}

// PropertyReference is a reference to a property as a value.
type PropertyReference struct {
	MemberAccessBase

	Symbol *PropertySymbol
	Field  *FieldSymbol
	Getter *FunctionSymbol
	Setter *FunctionSymbol
}

func (pr *PropertyReference) Kind() Kind {
	return KindPropertyReference
}

func (pr *PropertyReference) MemberSymbol() Symbol {
	return pr.Symbol
}

// -----------------------------------------------------------------------------

// GetClass reads the runtime class of a value.
type GetClass struct {
	ExpressionBase

	Arg Expression
}

func (gc *GetClass) Kind() Kind {
	return KindGetClass
}

func (gc *GetClass) WalkChildren(fn func(Element)) {
	walkChild(gc.Arg, fn)
}

func (gc *GetClass) RewriteChildren(fn func(Element) Element) {
	gc.Arg = rewriteChild(gc.Arg, fn)
}

// FunctionExpression is a lambda or anonymous function.  It owns the function
// declaration.
type FunctionExpression struct {
	ExpressionBase

	Function *SimpleFunction
	Origin   *Origin
}

func (fe *FunctionExpression) Kind() Kind {
	return KindFunctionExpression
}

func (fe *FunctionExpression) WalkChildren(fn func(Element)) {
	walkChild(fe.Function, fn)
}

func (fe *FunctionExpression) RewriteChildren(fn func(Element) Element) {
	fe.Function = rewriteChild(fe.Function, fn)
}

// ClassReference is a class literal.
type ClassReference struct {
	ExpressionBase

	Symbol    types.Classifier
	ClassType types.Type
}

func (cr *ClassReference) Kind() Kind {
	return KindClassReference
}

func (cr *ClassReference) WalkChildren(fn func(Element))            {}
func (cr *ClassReference) RewriteChildren(fn func(Element) Element) {}

// InstanceInitializerCall marks the point in a constructor where the field
// initializers and anonymous initializers of the class run.
type InstanceInitializerCall struct {
	ExpressionBase

	Class *ClassSymbol
}

func (ic *InstanceInitializerCall) Kind() Kind {
	return KindInstanceInitializerCall
}

func (ic *InstanceInitializerCall) WalkChildren(fn func(Element))            {}
func (ic *InstanceInitializerCall) RewriteChildren(fn func(Element) Element) {}

// TypeOperator is the operator of a type operator call.
type TypeOperator int

// Enumeration of type operators.
const (
	OpCast TypeOperator = iota
	OpImplicitCast
	OpImplicitNotNull
	OpImplicitCoercionToUnit
	OpSafeCast
	OpInstanceOf
	OpNotInstanceOf
)

func (op TypeOperator) String() string {
	switch op {
	case OpImplicitCast:
		return "IMPLICIT_CAST"
	case OpImplicitNotNull:
		return "IMPLICIT_NOTNULL"
	case OpImplicitCoercionToUnit:
		return "IMPLICIT_COERCION_TO_UNIT"
	case OpSafeCast:
		return "SAFE_CAST"
	case OpInstanceOf:
		return "INSTANCEOF"
	case OpNotInstanceOf:
		return "NOT_INSTANCEOF"
	default:
		return "CAST"
	}
}

// TypeOperatorCall applies a type operator to an argument.
type TypeOperatorCall struct {
	ExpressionBase

	Operator TypeOperator
	Arg      Expression
	Operand  types.Type
}

func (tc *TypeOperatorCall) Kind() Kind {
	return KindTypeOperatorCall
}

func (tc *TypeOperatorCall) WalkChildren(fn func(Element)) {
	walkChild(tc.Arg, fn)
}

func (tc *TypeOperatorCall) RewriteChildren(fn func(Element) Element) {
	tc.Arg = rewriteChild(tc.Arg, fn)
}

// -----------------------------------------------------------------------------

// When is a multi-way conditional.  Branches are tested in order.
type When struct {
	ExpressionBase

	Origin   *Origin
	Branches []*Branch
}

func (w *When) Kind() Kind {
	return KindWhen
}

func (w *When) WalkChildren(fn func(Element)) {
	walkList(w.Branches, fn)
}

func (w *When) RewriteChildren(fn func(Element) Element) {
	w.Branches = rewriteList(w.Branches, fn)
}

// Branch is a branch of a when.  An else branch has a constant true
// condition and is always last.
type Branch struct {
	ElementBase

	Cond   Expression
	Result Expression
	Else   bool
}

func (b *Branch) Kind() Kind {
	if b.Else {
		return KindElseBranch
	}

	return KindBranch
}

func (b *Branch) WalkChildren(fn func(Element)) {
	walkChild(b.Cond, fn)
	walkChild(b.Result, fn)
}

func (b *Branch) RewriteChildren(fn func(Element) Element) {
	b.Cond = rewriteChild(b.Cond, fn)
	b.Result = rewriteChild(b.Result, fn)
}

// -----------------------------------------------------------------------------

// Loop is a while or do-while loop.
type Loop interface {
	Expression

	// LoopData returns the data common to loops.
	LoopData() *LoopBase
}

// LoopBase is the base struct for loops.
type LoopBase struct {
	ExpressionBase

	Origin *Origin
	Label  string
	Cond   Expression
	Body   Expression
}

func (lb *LoopBase) LoopData() *LoopBase {
	return lb
}

// WhileLoop is a loop which tests its condition before each iteration.
type WhileLoop struct {
	LoopBase
}

func (wl *WhileLoop) Kind() Kind {
	return KindWhileLoop
}

func (wl *WhileLoop) WalkChildren(fn func(Element)) {
	walkChild(wl.Cond, fn)
	walkChild(wl.Body, fn)
}

func (wl *WhileLoop) RewriteChildren(fn func(Element) Element) {
	wl.Cond = rewriteChild(wl.Cond, fn)
	wl.Body = rewriteChild(wl.Body, fn)
}

// DoWhileLoop is a loop which tests its condition after each iteration.  Its
// body is visited before its condition.
type DoWhileLoop struct {
	LoopBase
}

func (dl *DoWhileLoop) Kind() Kind {
	return KindDoWhileLoop
}

func (dl *DoWhileLoop) WalkChildren(fn func(Element)) {
	walkChild(dl.Body, fn)
	walkChild(dl.Cond, fn)
}

func (dl *DoWhileLoop) RewriteChildren(fn func(Element) Element) {
	dl.Body = rewriteChild(dl.Body, fn)
	dl.Cond = rewriteChild(dl.Cond, fn)
}

// -----------------------------------------------------------------------------

// Try is a try expression with catch clauses and an optional finally block.
type Try struct {
	ExpressionBase

	TryResult Expression
	Catches   []*Catch
	Finally   Expression
}

func (t *Try) Kind() Kind {
	return KindTry
}

func (t *Try) WalkChildren(fn func(Element)) {
	walkChild(t.TryResult, fn)
	walkList(t.Catches, fn)
	walkChild(t.Finally, fn)
}

func (t *Try) RewriteChildren(fn func(Element) Element) {
	t.TryResult = rewriteChild(t.TryResult, fn)
	t.Catches = rewriteList(t.Catches, fn)
	t.Finally = rewriteChild(t.Finally, fn)
}

// Catch is a catch clause of a try.
type Catch struct {
	ElementBase

	Param  *Variable
	Result Expression
}

func (c *Catch) Kind() Kind {
	return KindCatch
}

func (c *Catch) WalkChildren(fn func(Element)) {
	walkChild(c.Param, fn)
	walkChild(c.Result, fn)
}

func (c *Catch) RewriteChildren(fn func(Element) Element) {
	c.Param = rewriteChild(c.Param, fn)
	c.Result = rewriteChild(c.Result, fn)
}

// -----------------------------------------------------------------------------

// BreakContinue is a break or continue.
type BreakContinue interface {
	Expression

	// JumpBase returns the data common to jumps.
	JumpBase() *BreakContinueBase
}

// BreakContinueBase is the base struct for breaks and continues.
type BreakContinueBase struct {
	ExpressionBase

	// Loop is the loop the jump targets.  This reference is non-owning.
	Loop Loop

	Label string
}

func (bc *BreakContinueBase) JumpBase() *BreakContinueBase {
	return bc
}

func (bc *BreakContinueBase) WalkChildren(fn func(Element))            {}
func (bc *BreakContinueBase) RewriteChildren(fn func(Element) Element) {}

// Break exits its loop.
type Break struct {
	BreakContinueBase
}

func (b *Break) Kind() Kind {
	return KindBreak
}

// Continue starts the next iteration of its loop.
type Continue struct {
	BreakContinueBase
}

func (c *Continue) Kind() Kind {
	return KindContinue
}

// Return returns from the target function.
type Return struct {
	ExpressionBase

	Target *FunctionSymbol
	Value  Expression
}

func (r *Return) Kind() Kind {
	return KindReturn
}

func (r *Return) WalkChildren(fn func(Element)) {
	walkChild(r.Value, fn)
}

func (r *Return) RewriteChildren(fn func(Element) Element) {
	r.Value = rewriteChild(r.Value, fn)
}

// Throw throws an exception.
type Throw struct {
	ExpressionBase

	Value Expression
}

func (t *Throw) Kind() Kind {
	return KindThrow
}

func (t *Throw) WalkChildren(fn func(Element)) {
	walkChild(t.Value, fn)
}

func (t *Throw) RewriteChildren(fn func(Element) Element) {
	t.Value = rewriteChild(t.Value, fn)
}

// -----------------------------------------------------------------------------

// ErrorExpression stands in for an expression the front end could not
// resolve.
type ErrorExpression struct {
	ExpressionBase

	Description string
}

func (ee *ErrorExpression) Kind() Kind {
	return KindErrorExpression
}

func (ee *ErrorExpression) WalkChildren(fn func(Element))            {}
func (ee *ErrorExpression) RewriteChildren(fn func(Element) Element) {}

// ErrorCallExpression stands in for a call the front end could not resolve.
type ErrorCallExpression struct {
	ExpressionBase

	Description string
	Receiver    Expression
	Args        []Expression
}

func (ec *ErrorCallExpression) Kind() Kind {
	return KindErrorCallExpression
}

func (ec *ErrorCallExpression) WalkChildren(fn func(Element)) {
	walkChild(ec.Receiver, fn)
	walkList(ec.Args, fn)
}

func (ec *ErrorCallExpression) RewriteChildren(fn func(Element) Element) {
	ec.Receiver = rewriteChild(ec.Receiver, fn)
	ec.Args = rewriteList(ec.Args, fn)
}
