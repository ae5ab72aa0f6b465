package ir

// AttributeKey is a typed key for out-of-band element metadata.  Keys are
// compared by identity, so each key must be created once.
type AttributeKey[T any] struct {
	name string
}

// NewAttributeKey creates a new attribute key.
func NewAttributeKey[T any](name string) *AttributeKey[T] {
	return &AttributeKey[T]{name: name}
}

func (ak *AttributeKey[T]) String() string {
	return ak.name
}

// GetAttribute returns the value stored on elem for key.
func GetAttribute[T any](elem Element, key *AttributeKey[T]) (T, bool) {
	if value, ok := elem.base().attributes[key]; ok {
		return value.(T), true
	}

	var zero T
	return zero, false
}

// SetAttribute stores value on elem for key, replacing any previous value.
func SetAttribute[T any](elem Element, key *AttributeKey[T], value T) {
	eb := elem.base()
	if eb.attributes == nil {
		eb.attributes = make(map[any]any)
	}

	eb.attributes[key] = value
}

// RemoveAttribute removes the value stored on elem for key.
func RemoveAttribute[T any](elem Element, key *AttributeKey[T]) {
	delete(elem.base().attributes, key)
}

// CopyAttributesFrom copies every attribute of source onto target and makes
// target share the attribute owner of source.
func CopyAttributesFrom(target, source Element) {
	sb, tb := source.base(), target.base()

	if len(sb.attributes) > 0 {
		if tb.attributes == nil {
			tb.attributes = make(map[any]any, len(sb.attributes))
		}

		for key, value := range sb.attributes {
			tb.attributes[key] = value
		}
	}

	if target != source {
		tb.owner = OriginalOf(source)
	}
}

// OriginalOf returns the attribute owner of elem: the element it was
// ultimately copied from or elem itself.  Owners are always stored collapsed,
// so this never walks a chain.
func OriginalOf(elem Element) Element {
	if owner := elem.base().owner; owner != nil {
		return owner
	}

	return elem
}

// LocalClassNameKey holds the invented target name of a local or anonymous
// class, eg. "pkg/Outer$1".
var LocalClassNameKey = NewAttributeKey[string]("localClassName")
