package ir

import "irbackend/report"

// Transformer is a rewriting traversal over the IR.  Each element is
// dispatched to the handler registered for its exact kind or along its
// fallback chain like a Visitor.  The handler returns the replacement of the
// element, which may be the element itself.  If no handler applies, the
// element's children are transformed in place and the element is returned.
type Transformer[D any] struct {
	handlers [kindCount]func(Element, D) Element
}

// NewTransformer creates a new transformer with no handlers.
func NewTransformer[D any]() *Transformer[D] {
	return &Transformer[D]{}
}

// On registers handler for kind and returns the transformer.
func (t *Transformer[D]) On(kind Kind, handler func(Element, D) Element) *Transformer[D] {
	t.handlers[kind] = handler
	return t
}

// Transform dispatches elem to its handler and returns its replacement.
func (t *Transformer[D]) Transform(elem Element, data D) Element {
	if k, ok := t.Resolve(elem.Kind()); ok {
		result := t.handlers[k](elem, data)
		if result == nil {
			report.Fault("transformer handler for %s returned nothing", k)
		}

		return result
	}

	t.TransformChildren(elem, data)
	return elem
}

// TransformChildren replaces each child of elem with its transformation.
func (t *Transformer[D]) TransformChildren(elem Element, data D) {
	elem.RewriteChildren(func(child Element) Element {
		return t.Transform(child, data)
	})
}

// Resolve returns the kind whose handler handles elements of the given kind
// and whether there is any such handler.
func (t *Transformer[D]) Resolve(kind Kind) (Kind, bool) {
	for k := kind; ; k = k.Fallback() {
		if t.handlers[k] != nil {
			return k, true
		} else if k == KindElement {
			return KindElement, false
		}
	}
}

// OnTransform registers a typed handler for kind.  T must be the element type
// (or an interface implemented by every element type) of kind and of every
// kind falling back to it.
func OnTransform[T Element, D any](t *Transformer[D], kind Kind, handler func(T, D) Element) *Transformer[D] {
	return t.On(kind, func(elem Element, data D) Element {
		typed, ok := elem.(T)
		if !ok {
			report.Fault("transformer handler for %s cannot accept %s", kind, elem.Kind())
		}

		return handler(typed, data)
	})
}

// TransformExpr transforms an expression and checks that the result is still
// an expression.
func TransformExpr[D any](t *Transformer[D], expr Expression, data D) Expression {
	result, ok := t.Transform(expr, data).(Expression)
	if !ok {
		report.Fault("transformation of %s did not produce an expression", expr.Kind())
	}

	return result
}
