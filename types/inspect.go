package types

// Equals returns whether two types are structurally equal.
func Equals(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.equals(b)
}

// MakeNullable returns the nullable form of typ.  It is idempotent.
func MakeNullable(typ Type) Type {
	if _, ok := typ.(*NullableType); ok {
		return typ
	}

	return &NullableType{ElemType: typ}
}

// NotNull strips any nullability from typ.
func NotNull(typ Type) Type {
	if nt, ok := typ.(*NullableType); ok {
		return nt.ElemType
	}

	return typ
}

// IsNullable returns whether typ admits null.
func IsNullable(typ Type) bool {
	_, ok := typ.(*NullableType)
	return ok
}

// IsUnit returns whether the given type is the unit type.
func IsUnit(typ Type) bool {
	return Equals(typ, PrimUnit)
}

// IsNothing returns whether the given type is the non-nullable nothing type.
func IsNothing(typ Type) bool {
	return Equals(typ, PrimNothing)
}

// IsString returns whether the given type is the non-nullable string type.
func IsString(typ Type) bool {
	if ct, ok := typ.(*ClassType); ok {
		return ct.Classifier.ClassifierID() == StringClass.ClassifierID()
	}

	return false
}

// ClassifierOf returns the classifier of a (possibly nullable) class type or
// type variable and nil for every other type.
func ClassifierOf(typ Type) Classifier {
	switch v := NotNull(typ).(type) {
	case *ClassType:
		return v.Classifier
	case *TypeVar:
		return v.Param
	}

	return nil
}

// IsValueClassType returns whether typ is a (possibly nullable) reference to a
// value class.
func IsValueClassType(typ Type) bool {
	if ct, ok := NotNull(typ).(*ClassType); ok {
		return ct.Classifier.ValueUnderlying() != nil
	}

	return false
}
