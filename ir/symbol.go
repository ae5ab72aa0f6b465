package ir

import (
	"sync/atomic"

	"irbackend/report"
	"irbackend/types"
)

// Symbol is a stable handle identifying a declaration.  All non-owning
// references between elements go through symbols.
type Symbol interface {
	// ID returns the unique identifier of the symbol.
	ID() uint64

	// IsBound returns whether the symbol has been bound to its declaration.
	IsBound() bool

	// OwnerDecl returns the declaration the symbol is bound to or nil if the
	// symbol is unbound.
	OwnerDecl() Declaration
}

// symbolCounter generates symbol IDs.  Symbol IDs start above the range
// reserved for builtin classifiers so the two can share one ID space.
var symbolCounter atomic.Uint64

// symbol is the common implementation of all symbol kinds.
type symbol[D Declaration] struct {
	id    uint64
	owner D
	bound bool
}

func newSymbol[D Declaration]() symbol[D] {
	return symbol[D]{id: types.MaxBuiltinID + symbolCounter.Add(1)}
}

func (s *symbol[D]) ID() uint64 {
	return s.id
}

func (s *symbol[D]) IsBound() bool {
	return s.bound
}

// Bind binds the symbol to its declaration.  A symbol is bound exactly once.
func (s *symbol[D]) Bind(decl D) {
	if s.bound {
		report.Fault("symbol %d is already bound", s.id)
	}

	s.owner = decl
	s.bound = true
}

// Owner returns the declaration the symbol is bound to.
func (s *symbol[D]) Owner() D {
	if !s.bound {
		report.Fault("symbol %d is unbound", s.id)
	}

	return s.owner
}

func (s *symbol[D]) OwnerDecl() Declaration {
	if !s.bound {
		return nil
	}

	return s.owner
}

// -----------------------------------------------------------------------------

// ClassSymbol is the symbol of a class.  Class symbols are the classifiers of
// the semantic types referring to user classes.
type ClassSymbol struct {
	symbol[*Class]
}

// NewClassSymbol creates a new unbound class symbol.
func NewClassSymbol() *ClassSymbol {
	return &ClassSymbol{symbol: newSymbol[*Class]()}
}

func (cs *ClassSymbol) ClassifierID() uint64 {
	return cs.id
}

func (cs *ClassSymbol) ClassifierKind() types.ClassifierKind {
	return cs.Owner().ClassKind
}

func (cs *ClassSymbol) PackageName() string {
	return PackageOf(cs.Owner())
}

// NameSegments returns the names of the class and of its enclosing classes.
// Enclosing functions of local classes are skipped: local classes are named
// by the invented name attached to them instead.
func (cs *ClassSymbol) NameSegments() []string {
	var segments []string

	var decl Declaration = cs.Owner()
	for decl != nil {
		if cls, ok := decl.(*Class); ok {
			segments = append([]string{cls.Name}, segments...)
		}

		decl, _ = decl.DeclBase().Parent.(Declaration)
	}

	return segments
}

func (cs *ClassSymbol) ValueUnderlying() types.Type {
	cls := cs.Owner()
	if cls.IsValue {
		return cls.ValueUnderlyingType
	}

	return nil
}

func (cs *ClassSymbol) Supertypes() []types.Type {
	return cs.Owner().Supertypes
}

// TargetName returns the invented target name of a local class.
func (cs *ClassSymbol) TargetName() (string, bool) {
	return GetAttribute(cs.Owner(), LocalClassNameKey)
}

// Type returns the type of a reference to the class with no type arguments.
func (cs *ClassSymbol) Type() types.Type {
	return &types.ClassType{Classifier: cs}
}

// -----------------------------------------------------------------------------

// FunctionSymbol is the symbol of a simple function or a constructor.
type FunctionSymbol struct {
	symbol[Function]
}

// NewFunctionSymbol creates a new unbound function symbol.
func NewFunctionSymbol() *FunctionSymbol {
	return &FunctionSymbol{symbol: newSymbol[Function]()}
}

// PropertySymbol is the symbol of a property.
type PropertySymbol struct {
	symbol[*Property]
}

// NewPropertySymbol creates a new unbound property symbol.
func NewPropertySymbol() *PropertySymbol {
	return &PropertySymbol{symbol: newSymbol[*Property]()}
}

// FieldSymbol is the symbol of a field.
type FieldSymbol struct {
	symbol[*Field]
}

// NewFieldSymbol creates a new unbound field symbol.
func NewFieldSymbol() *FieldSymbol {
	return &FieldSymbol{symbol: newSymbol[*Field]()}
}

// ValueSymbol is the symbol of a variable or value parameter.
type ValueSymbol struct {
	symbol[ValueDeclaration]
}

// NewValueSymbol creates a new unbound value symbol.
func NewValueSymbol() *ValueSymbol {
	return &ValueSymbol{symbol: newSymbol[ValueDeclaration]()}
}

// EnumEntrySymbol is the symbol of an enum entry.
type EnumEntrySymbol struct {
	symbol[*EnumEntry]
}

// NewEnumEntrySymbol creates a new unbound enum entry symbol.
func NewEnumEntrySymbol() *EnumEntrySymbol {
	return &EnumEntrySymbol{symbol: newSymbol[*EnumEntry]()}
}

// TypeAliasSymbol is the symbol of a type alias.
type TypeAliasSymbol struct {
	symbol[*TypeAlias]
}

// NewTypeAliasSymbol creates a new unbound type alias symbol.
func NewTypeAliasSymbol() *TypeAliasSymbol {
	return &TypeAliasSymbol{symbol: newSymbol[*TypeAlias]()}
}

// AnonymousInitializerSymbol is the symbol of an anonymous initializer.
type AnonymousInitializerSymbol struct {
	symbol[*AnonymousInitializer]
}

// NewAnonymousInitializerSymbol creates a new unbound anonymous initializer
// symbol.
func NewAnonymousInitializerSymbol() *AnonymousInitializerSymbol {
	return &AnonymousInitializerSymbol{symbol: newSymbol[*AnonymousInitializer]()}
}

// TypeParameterSymbol is the symbol of a type parameter.  Type parameter
// symbols are the classifiers of type variables.
type TypeParameterSymbol struct {
	symbol[*TypeParameter]
}

// NewTypeParameterSymbol creates a new unbound type parameter symbol.
func NewTypeParameterSymbol() *TypeParameterSymbol {
	return &TypeParameterSymbol{symbol: newSymbol[*TypeParameter]()}
}

func (ts *TypeParameterSymbol) ClassifierID() uint64 {
	return ts.id
}

func (ts *TypeParameterSymbol) ClassifierKind() types.ClassifierKind {
	return types.ClassifierTypeParameter
}

func (ts *TypeParameterSymbol) PackageName() string {
	return ""
}

func (ts *TypeParameterSymbol) NameSegments() []string {
	return []string{ts.Owner().Name}
}

func (ts *TypeParameterSymbol) ValueUnderlying() types.Type {
	return nil
}

func (ts *TypeParameterSymbol) Supertypes() []types.Type {
	return ts.Owner().Supertypes
}

// Type returns the type variable referring to the type parameter.
func (ts *TypeParameterSymbol) Type() types.Type {
	return &types.TypeVar{Param: ts}
}

// -----------------------------------------------------------------------------

// SymbolName returns the name of the declaration bound to sym or a
// placeholder if the symbol is unbound.
func SymbolName(sym Symbol) string {
	if decl := sym.OwnerDecl(); decl != nil {
		return decl.DeclName()
	}

	return "<unbound>"
}

// PackageOf returns the package name of the file or external fragment
// containing decl.
func PackageOf(decl Declaration) string {
	var parent DeclarationParent = decl.DeclBase().Parent
	for parent != nil {
		switch v := parent.(type) {
		case *File:
			return v.PackageName
		case *ExternalPackageFragment:
			return v.PackageName
		case Declaration:
			parent = v.DeclBase().Parent
		default:
			return ""
		}
	}

	return ""
}

// ParentClassOf returns the innermost class enclosing decl or nil.
func ParentClassOf(decl Declaration) *Class {
	var parent DeclarationParent = decl.DeclBase().Parent
	for parent != nil {
		switch v := parent.(type) {
		case *Class:
			return v
		case Declaration:
			parent = v.DeclBase().Parent
		default:
			return nil
		}
	}

	return nil
}

// FileOf returns the file containing decl or nil if it is external.
func FileOf(decl Declaration) *File {
	var parent DeclarationParent = decl.DeclBase().Parent
	for parent != nil {
		switch v := parent.(type) {
		case *File:
			return v
		case Declaration:
			parent = v.DeclBase().Parent
		default:
			return nil
		}
	}

	return nil
}
