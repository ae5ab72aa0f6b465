package ir

import "irbackend/report"

// Visitor is a read-only traversal over the IR.  It dispatches each element
// to the handler registered for its exact kind.  If there is none, the
// handlers of the kinds along the element's fallback chain are tried in order
// and, failing that, the element's children are visited.  Handlers receive an
// auxiliary value threaded through the traversal and must not mutate the
// tree.
type Visitor[D any] struct {
	handlers [kindCount]func(Element, D)
}

// NewVisitor creates a new visitor with no handlers.
func NewVisitor[D any]() *Visitor[D] {
	return &Visitor[D]{}
}

// On registers handler for kind and returns the visitor.
func (v *Visitor[D]) On(kind Kind, handler func(Element, D)) *Visitor[D] {
	v.handlers[kind] = handler
	return v
}

// Visit dispatches elem to its handler.
func (v *Visitor[D]) Visit(elem Element, data D) {
	if handler := v.handlerFor(elem.Kind()); handler != nil {
		handler(elem, data)
	} else {
		v.VisitChildren(elem, data)
	}
}

// VisitChildren visits each child of elem in stored order.
func (v *Visitor[D]) VisitChildren(elem Element, data D) {
	elem.WalkChildren(func(child Element) {
		v.Visit(child, data)
	})
}

// Resolve returns the kind whose handler handles elements of the given kind
// and whether there is any such handler.
func (v *Visitor[D]) Resolve(kind Kind) (Kind, bool) {
	for k := kind; ; k = k.Fallback() {
		if v.handlers[k] != nil {
			return k, true
		} else if k == KindElement {
			return KindElement, false
		}
	}
}

func (v *Visitor[D]) handlerFor(kind Kind) func(Element, D) {
	if k, ok := v.Resolve(kind); ok {
		return v.handlers[k]
	}

	return nil
}

// OnVisit registers a typed handler for kind.  T must be the element type (or
// an interface implemented by every element type) of kind and of every kind
// falling back to it.
func OnVisit[T Element, D any](v *Visitor[D], kind Kind, handler func(T, D)) *Visitor[D] {
	return v.On(kind, func(elem Element, data D) {
		typed, ok := elem.(T)
		if !ok {
			report.Fault("visitor handler for %s cannot accept %s", kind, elem.Kind())
		}

		handler(typed, data)
	})
}

// Walk calls fn on elem and on every element below it in pre-order.
func Walk(elem Element, fn func(Element)) {
	fn(elem)
	elem.WalkChildren(func(child Element) {
		Walk(child, fn)
	})
}
