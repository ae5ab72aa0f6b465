package ir

import (
	"irbackend/types"
)

// Class is a class, interface, object, enum class or annotation class.
type Class struct {
	DeclarationBase

	Symbol     *ClassSymbol
	Name       string
	ClassKind  types.ClassifierKind
	Visibility Visibility
	Modality   Modality

	IsCompanion bool
	IsInner     bool
	IsData      bool
	IsValue     bool
	IsExpect    bool
	IsExternal  bool
	IsFun       bool

	// Supertypes are the direct supertypes of the class.
	Supertypes []types.Type

	// ValueUnderlyingType is the type of the single underlying property of a
	// value class.
	ValueUnderlyingType types.Type

	TypeParams []*TypeParameter

	// ThisReceiver is the implicit receiver parameter used by member bodies.
	ThisReceiver *ValueParameter

	Decls []Declaration
}

func (c *Class) Kind() Kind {
	return KindClass
}

func (c *Class) DeclSymbol() Symbol {
	return c.Symbol
}

func (c *Class) DeclName() string {
	return c.Name
}

func (c *Class) WalkChildren(fn func(Element)) {
	walkList(c.TypeParams, fn)
	walkChild(c.ThisReceiver, fn)
	walkList(c.Decls, fn)
}

func (c *Class) RewriteChildren(fn func(Element) Element) {
	c.TypeParams = rewriteList(c.TypeParams, fn)
	c.ThisReceiver = rewriteChild(c.ThisReceiver, fn)
	c.Decls = rewriteList(c.Decls, fn)
}

func (c *Class) DeclarationList() *[]Declaration {
	return &c.Decls
}

func (c *Class) isDeclarationParent() {}

// DefaultType returns the type of the class applied to its own type
// parameters.
func (c *Class) DefaultType() types.Type {
	ct := &types.ClassType{Classifier: c.Symbol}
	for _, tp := range c.TypeParams {
		ct.Args = append(ct.Args, types.Invariantly(tp.Symbol.Type()))
	}

	return ct
}

// IsInterface returns whether the class is an interface.
func (c *Class) IsInterface() bool {
	return c.ClassKind == types.ClassifierInterface
}

// IsAnnotationClass returns whether the class is an annotation class.
func (c *Class) IsAnnotationClass() bool {
	return c.ClassKind == types.ClassifierAnnotation
}

// IsObject returns whether the class is an object declaration.
func (c *Class) IsObject() bool {
	return c.ClassKind == types.ClassifierObject
}

// IsEnumClass returns whether the class is an enum class.
func (c *Class) IsEnumClass() bool {
	return c.ClassKind == types.ClassifierEnum
}

// Constructors returns the constructors of the class in declaration order.
func (c *Class) Constructors() []*Constructor {
	var ctors []*Constructor
	for _, decl := range c.Decls {
		if ctor, ok := decl.(*Constructor); ok {
			ctors = append(ctors, ctor)
		}
	}

	return ctors
}

// AddDeclaration appends decl to the class and sets its parent.
func (c *Class) AddDeclaration(decl Declaration) {
	decl.DeclBase().Parent = c
	c.Decls = append(c.Decls, decl)
}

// -----------------------------------------------------------------------------

// Function is a simple function or a constructor.
type Function interface {
	Declaration
	DeclarationParent

	// FuncBase returns the data common to all functions.
	FuncBase() *FunctionBase

	// FuncSymbol returns the symbol of the function.
	FuncSymbol() *FunctionSymbol
}

// FunctionBase is the base struct for functions.
type FunctionBase struct {
	DeclarationBase

	Name       string
	Visibility Visibility

	IsInline   bool
	IsSuspend  bool
	IsExpect   bool
	IsExternal bool

	TypeParams        []*TypeParameter
	DispatchReceiver  *ValueParameter
	ExtensionReceiver *ValueParameter
	Params            []*ValueParameter

	ReturnType types.Type

	// Body is the body of the function.  It is nil for abstract and external
	// functions.
	Body Body
}

func (fb *FunctionBase) FuncBase() *FunctionBase {
	return fb
}

func (fb *FunctionBase) DeclName() string {
	return fb.Name
}

func (fb *FunctionBase) isDeclarationParent() {}

func (fb *FunctionBase) WalkChildren(fn func(Element)) {
	walkList(fb.TypeParams, fn)
	walkChild(fb.DispatchReceiver, fn)
	walkChild(fb.ExtensionReceiver, fn)
	walkList(fb.Params, fn)
	walkChild(fb.Body, fn)
}

func (fb *FunctionBase) RewriteChildren(fn func(Element) Element) {
	fb.TypeParams = rewriteList(fb.TypeParams, fn)
	fb.DispatchReceiver = rewriteChild(fb.DispatchReceiver, fn)
	fb.ExtensionReceiver = rewriteChild(fb.ExtensionReceiver, fn)
	fb.Params = rewriteList(fb.Params, fn)
	fb.Body = rewriteChild(fb.Body, fn)
}

// AllParams returns the receivers followed by the value parameters of the
// function.
func (fb *FunctionBase) AllParams() []*ValueParameter {
	var params []*ValueParameter
	if fb.DispatchReceiver != nil {
		params = append(params, fb.DispatchReceiver)
	}

	if fb.ExtensionReceiver != nil {
		params = append(params, fb.ExtensionReceiver)
	}

	return append(params, fb.Params...)
}

// SimpleFunction is a named function or accessor.
type SimpleFunction struct {
	FunctionBase

	Symbol   *FunctionSymbol
	Modality Modality

	IsTailrec      bool
	IsOperator     bool
	IsStatic       bool
	IsFakeOverride bool

	// CorrespondingProperty is the property the function is an accessor of.
	CorrespondingProperty *PropertySymbol

	// Overridden are the functions this function overrides.
	Overridden []*FunctionSymbol
}

func (sf *SimpleFunction) Kind() Kind {
	return KindSimpleFunction
}

func (sf *SimpleFunction) DeclSymbol() Symbol {
	return sf.Symbol
}

func (sf *SimpleFunction) FuncSymbol() *FunctionSymbol {
	return sf.Symbol
}

// Constructor is a class constructor.
type Constructor struct {
	FunctionBase

	Symbol    *FunctionSymbol
	IsPrimary bool
}

func (c *Constructor) Kind() Kind {
	return KindConstructor
}

func (c *Constructor) DeclSymbol() Symbol {
	return c.Symbol
}

func (c *Constructor) FuncSymbol() *FunctionSymbol {
	return c.Symbol
}

// ConstructedClass returns the class the constructor belongs to.
func (c *Constructor) ConstructedClass() *Class {
	cls, _ := c.Parent.(*Class)
	return cls
}

// -----------------------------------------------------------------------------

// Property is a property with an optional backing field and accessors.
type Property struct {
	DeclarationBase

	Symbol     *PropertySymbol
	Name       string
	Type       types.Type
	Visibility Visibility
	Modality   Modality

	IsVar       bool
	IsConst     bool
	IsLateinit  bool
	IsExpect    bool
	IsExternal  bool
	IsDelegated bool

	BackingField *Field
	Getter       *SimpleFunction
	Setter       *SimpleFunction
}

func (p *Property) Kind() Kind {
	return KindProperty
}

func (p *Property) DeclSymbol() Symbol {
	return p.Symbol
}

func (p *Property) DeclName() string {
	return p.Name
}

func (p *Property) WalkChildren(fn func(Element)) {
	walkChild(p.BackingField, fn)
	walkChild(p.Getter, fn)
	walkChild(p.Setter, fn)
}

func (p *Property) RewriteChildren(fn func(Element) Element) {
	p.BackingField = rewriteChild(p.BackingField, fn)
	p.Getter = rewriteChild(p.Getter, fn)
	p.Setter = rewriteChild(p.Setter, fn)
}

// Field is a storage field.
type Field struct {
	DeclarationBase

	Symbol     *FieldSymbol
	Name       string
	Type       types.Type
	Visibility Visibility

	IsFinal  bool
	IsStatic bool

	// Initializer is the initial value of the field.  May be nil.
	Initializer *ExpressionBody

	// CorrespondingProperty is the property the field backs if any.
	CorrespondingProperty *PropertySymbol
}

func (f *Field) Kind() Kind {
	return KindField
}

func (f *Field) DeclSymbol() Symbol {
	return f.Symbol
}

func (f *Field) DeclName() string {
	return f.Name
}

func (f *Field) WalkChildren(fn func(Element)) {
	walkChild(f.Initializer, fn)
}

func (f *Field) RewriteChildren(fn func(Element) Element) {
	f.Initializer = rewriteChild(f.Initializer, fn)
}

// -----------------------------------------------------------------------------

// ValueDeclaration is a declaration of a value: a variable or a value
// parameter.
type ValueDeclaration interface {
	Declaration

	// ValueSymbol returns the symbol of the value.
	ValueSymbol() *ValueSymbol

	// ValueType returns the type of the value.
	ValueType() types.Type
}

// Variable is a local variable.
type Variable struct {
	DeclarationBase

	Symbol *ValueSymbol
	Name   string
	Type   types.Type

	IsVar      bool
	IsConst    bool
	IsLateinit bool

	// Initializer is the initial value of the variable.  May be nil.
	Initializer Expression
}

func (v *Variable) Kind() Kind {
	return KindVariable
}

func (v *Variable) DeclSymbol() Symbol {
	return v.Symbol
}

func (v *Variable) DeclName() string {
	return v.Name
}

func (v *Variable) ValueSymbol() *ValueSymbol {
	return v.Symbol
}

func (v *Variable) ValueType() types.Type {
	return v.Type
}

func (v *Variable) WalkChildren(fn func(Element)) {
	walkChild(v.Initializer, fn)
}

func (v *Variable) RewriteChildren(fn func(Element) Element) {
	v.Initializer = rewriteChild(v.Initializer, fn)
}

// ValueParameter is a value parameter or receiver of a function or class.
type ValueParameter struct {
	DeclarationBase

	Symbol *ValueSymbol
	Name   string
	Type   types.Type

	// Index is the position of the parameter in the function's value
	// parameters.  It is -1 for receivers.
	Index int

	// VarargElementType is the element type of a vararg parameter.  It is nil
	// for other parameters.
	VarargElementType types.Type

	IsCrossinline bool
	IsNoinline    bool

	// DefaultValue is the default argument of the parameter.  May be nil.
	DefaultValue *ExpressionBody
}

func (vp *ValueParameter) Kind() Kind {
	return KindValueParameter
}

func (vp *ValueParameter) DeclSymbol() Symbol {
	return vp.Symbol
}

func (vp *ValueParameter) DeclName() string {
	return vp.Name
}

func (vp *ValueParameter) ValueSymbol() *ValueSymbol {
	return vp.Symbol
}

func (vp *ValueParameter) ValueType() types.Type {
	return vp.Type
}

func (vp *ValueParameter) WalkChildren(fn func(Element)) {
	walkChild(vp.DefaultValue, fn)
}

func (vp *ValueParameter) RewriteChildren(fn func(Element) Element) {
	vp.DefaultValue = rewriteChild(vp.DefaultValue, fn)
}

// TypeParameter is a type parameter of a class or function.
type TypeParameter struct {
	DeclarationBase

	Symbol     *TypeParameterSymbol
	Name       string
	Index      int
	Variance   types.Variance
	IsReified  bool
	Supertypes []types.Type
}

func (tp *TypeParameter) Kind() Kind {
	return KindTypeParameter
}

func (tp *TypeParameter) DeclSymbol() Symbol {
	return tp.Symbol
}

func (tp *TypeParameter) DeclName() string {
	return tp.Name
}

func (tp *TypeParameter) WalkChildren(fn func(Element))            {}
func (tp *TypeParameter) RewriteChildren(fn func(Element) Element) {}

// -----------------------------------------------------------------------------

// EnumEntry is an entry of an enum class.
type EnumEntry struct {
	DeclarationBase

	Symbol *EnumEntrySymbol
	Name   string

	// Initializer is the enum constructor call creating the entry.
	Initializer *ExpressionBody

	// Class is the class of an entry with a body.  May be nil.
	Class *Class
}

func (ee *EnumEntry) Kind() Kind {
	return KindEnumEntry
}

func (ee *EnumEntry) DeclSymbol() Symbol {
	return ee.Symbol
}

func (ee *EnumEntry) DeclName() string {
	return ee.Name
}

func (ee *EnumEntry) WalkChildren(fn func(Element)) {
	walkChild(ee.Initializer, fn)
	walkChild(ee.Class, fn)
}

func (ee *EnumEntry) RewriteChildren(fn func(Element) Element) {
	ee.Initializer = rewriteChild(ee.Initializer, fn)
	ee.Class = rewriteChild(ee.Class, fn)
}

// AnonymousInitializer is an `init` block of a class.
type AnonymousInitializer struct {
	DeclarationBase

	Symbol   *AnonymousInitializerSymbol
	IsStatic bool
	Body     *BlockBody
}

func (ai *AnonymousInitializer) Kind() Kind {
	return KindAnonymousInitializer
}

func (ai *AnonymousInitializer) DeclSymbol() Symbol {
	return ai.Symbol
}

func (ai *AnonymousInitializer) DeclName() string {
	return ""
}

func (ai *AnonymousInitializer) WalkChildren(fn func(Element)) {
	walkChild(ai.Body, fn)
}

func (ai *AnonymousInitializer) RewriteChildren(fn func(Element) Element) {
	ai.Body = rewriteChild(ai.Body, fn)
}

// TypeAlias is a type alias declaration.
type TypeAlias struct {
	DeclarationBase

	Symbol     *TypeAliasSymbol
	Name       string
	Visibility Visibility
	IsActual   bool
	TypeParams []*TypeParameter
	Expanded   types.Type
}

func (ta *TypeAlias) Kind() Kind {
	return KindTypeAlias
}

func (ta *TypeAlias) DeclSymbol() Symbol {
	return ta.Symbol
}

func (ta *TypeAlias) DeclName() string {
	return ta.Name
}

func (ta *TypeAlias) WalkChildren(fn func(Element)) {
	walkList(ta.TypeParams, fn)
}

func (ta *TypeAlias) RewriteChildren(fn func(Element) Element) {
	ta.TypeParams = rewriteList(ta.TypeParams, fn)
}

// ErrorDeclaration stands in for a declaration the front end could not
// resolve.
type ErrorDeclaration struct {
	DeclarationBase
}

func (ed *ErrorDeclaration) Kind() Kind {
	return KindErrorDeclaration
}

func (ed *ErrorDeclaration) DeclSymbol() Symbol {
	return nil
}

func (ed *ErrorDeclaration) DeclName() string {
	return "<error>"
}

func (ed *ErrorDeclaration) WalkChildren(fn func(Element))            {}
func (ed *ErrorDeclaration) RewriteChildren(fn func(Element) Element) {}

// -----------------------------------------------------------------------------

// ExpressionBody is a body consisting of a single expression.
type ExpressionBody struct {
	ElementBase

	Expr Expression
}

func (eb *ExpressionBody) Kind() Kind {
	return KindExpressionBody
}

func (eb *ExpressionBody) WalkChildren(fn func(Element)) {
	walkChild(eb.Expr, fn)
}

func (eb *ExpressionBody) RewriteChildren(fn func(Element) Element) {
	eb.Expr = rewriteChild(eb.Expr, fn)
}

func (eb *ExpressionBody) isBody() {}

// BlockBody is a body consisting of a list of statements.
type BlockBody struct {
	ElementBase

	Statements []Statement
}

func (bb *BlockBody) Kind() Kind {
	return KindBlockBody
}

func (bb *BlockBody) WalkChildren(fn func(Element)) {
	walkList(bb.Statements, fn)
}

func (bb *BlockBody) RewriteChildren(fn func(Element) Element) {
	bb.Statements = rewriteList(bb.Statements, fn)
}

func (bb *BlockBody) isBody() {}

// SyntheticBodyKind is the kind of body a synthetic body stands for.
type SyntheticBodyKind int

// Enumeration of synthetic body kinds.
const (
	SyntheticEnumValues SyntheticBodyKind = iota
	SyntheticEnumValueOf
)

// SyntheticBody is a body whose code is produced by the code generator.
type SyntheticBody struct {
	ElementBase

	SyntheticKind SyntheticBodyKind
}

func (sb *SyntheticBody) Kind() Kind {
	return KindSyntheticBody
}

func (sb *SyntheticBody) WalkChildren(fn func(Element))            {}
func (sb *SyntheticBody) RewriteChildren(fn func(Element) Element) {}

func (sb *SyntheticBody) isBody() {}
