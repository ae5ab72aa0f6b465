package ir

import (
	"irbackend/report"
	"irbackend/types"
)

// Element is the interface implemented by every node of the IR tree.  The set
// of implementations is closed: every element embeds ElementBase.
type Element interface {
	// Kind returns the exact kind of the element.
	Kind() Kind

	// Span returns the source span of the element.  It may be nil for
	// synthesized elements.
	Span() *report.TextSpan

	// SetSpan sets the source span of the element.
	SetSpan(span *report.TextSpan)

	// WalkChildren calls fn on each direct child of the element in stored
	// order.  Absent optional children are skipped.
	WalkChildren(fn func(Element))

	// RewriteChildren replaces each direct child of the element with the
	// result of calling fn on it.  Child lists are only reallocated if the
	// identity of at least one of their elements changes.
	RewriteChildren(fn func(Element) Element)

	base() *ElementBase
}

// ElementBase is the base struct for all elements.
type ElementBase struct {
	span *report.TextSpan

	// owner is the attribute owner of the element: the original element this
	// element was copied from.  It is nil if the element is its own owner.
	owner Element

	attributes map[any]any
}

func (eb *ElementBase) Span() *report.TextSpan {
	return eb.span
}

// SetSpan sets the source span of the element.
func (eb *ElementBase) SetSpan(span *report.TextSpan) {
	eb.span = span
}

func (eb *ElementBase) base() *ElementBase {
	return eb
}

// -----------------------------------------------------------------------------

// Statement is an element which can appear in a block: an expression or a
// local declaration.
type Statement interface {
	Element

	isStatement()
}

// Expression is an element which produces a value.
type Expression interface {
	Statement
	VarargElement

	// Type returns the resolved type of the expression.
	Type() types.Type

	// SetType sets the resolved type of the expression.
	SetType(typ types.Type)
}

// ExpressionBase is the base struct for all expressions.
type ExpressionBase struct {
	ElementBase

	typ types.Type
}

// NewExpressionBase creates a new expression base with the given type.
func NewExpressionBase(typ types.Type) ExpressionBase {
	return ExpressionBase{typ: typ}
}

func (eb *ExpressionBase) Type() types.Type {
	return eb.typ
}

func (eb *ExpressionBase) SetType(typ types.Type) {
	eb.typ = typ
}

func (eb *ExpressionBase) isStatement()     {}
func (eb *ExpressionBase) isVarargElement() {}

// VarargElement is an element of a vararg expression: an expression or a
// spread element.
type VarargElement interface {
	Element

	isVarargElement()
}

// Body is the body of a function or initializer.
type Body interface {
	Element

	isBody()
}

// -----------------------------------------------------------------------------

// Declaration is an element introducing a named entity.
type Declaration interface {
	Statement

	// DeclBase returns the common declaration data.
	DeclBase() *DeclarationBase

	// DeclSymbol returns the symbol bound to the declaration.  It is nil only
	// for error declarations.
	DeclSymbol() Symbol

	// DeclName returns the name of the declaration or the empty string if it
	// is anonymous.
	DeclName() string
}

// DeclarationBase is the base struct for all declarations.
type DeclarationBase struct {
	ElementBase

	// Parent is the declaration parent of the declaration.  This reference is
	// non-owning: the parent owns the declaration, not the other way round.
	Parent DeclarationParent

	// Origin records why the declaration exists.
	Origin *Origin

	// Annotations are the annotations applied to the declaration.
	Annotations []*ConstructorCall
}

func (db *DeclarationBase) DeclBase() *DeclarationBase {
	return db
}

func (db *DeclarationBase) isStatement() {}

// DeclarationParent is an element which can be the parent of a declaration.
type DeclarationParent interface {
	Element

	isDeclarationParent()
}

// DeclarationContainer is a declaration parent holding an ordered list of
// member declarations.
type DeclarationContainer interface {
	DeclarationParent

	// DeclarationList returns a pointer to the member declarations of the
	// container so they can be replaced.
	DeclarationList() *[]Declaration
}

// Visibility is the visibility of a declaration.
type Visibility int

// Enumeration of visibilities.
const (
	Public Visibility = iota
	Protected
	Internal
	Private
	Local
)

func (v Visibility) String() string {
	switch v {
	case Protected:
		return "protected"
	case Internal:
		return "internal"
	case Private:
		return "private"
	case Local:
		return "local"
	default:
		return "public"
	}
}

// Modality is the modality of a class or member.
type Modality int

// Enumeration of modalities.
const (
	Final Modality = iota
	Open
	Abstract
	Sealed
)

func (m Modality) String() string {
	switch m {
	case Open:
		return "open"
	case Abstract:
		return "abstract"
	case Sealed:
		return "sealed"
	default:
		return "final"
	}
}

// -----------------------------------------------------------------------------

// rewriteList applies fn to every element of list.  The original list is
// returned if no element identity changes.  Each result must belong to the
// list's element category: anything else is an internal fault.
func rewriteList[T Element](list []T, fn func(Element) Element) []T {
	var result []T

	for i, elem := range list {
		if isAbsent(elem) {
			continue
		}

		newElem, ok := fn(elem).(T)
		if !ok {
			report.Fault("cannot replace %s with an element of a different category", Element(elem).Kind())
		}

		if result == nil {
			if Element(newElem) == Element(elem) {
				continue
			}

			result = make([]T, len(list))
			copy(result, list[:i])
		}

		result[i] = newElem
	}

	if result == nil {
		return list
	}

	return result
}

// rewriteChild applies fn to the optional child slot elem.
func rewriteChild[T Element](elem T, fn func(Element) Element) T {
	if isAbsent(elem) {
		return elem
	}

	newElem, ok := fn(elem).(T)
	if !ok {
		report.Fault("cannot replace %s with an element of a different category", Element(elem).Kind())
	}

	return newElem
}

// walkList calls fn on every present element of list.
func walkList[T Element](list []T, fn func(Element)) {
	for _, elem := range list {
		if !isAbsent(elem) {
			fn(elem)
		}
	}
}

// walkChild calls fn on elem if it is present.
func walkChild[T Element](elem T, fn func(Element)) {
	if !isAbsent(elem) {
		fn(elem)
	}
}

// isAbsent returns whether an optional child slot is empty.  Slots are either
// nil interfaces or nil pointers depending on their static type.
func isAbsent[T Element](elem T) bool {
	var zero T
	return any(elem) == any(zero)
}
