package types

import "strings"

// ClassifierKind is the kind of declaration a classifier names.
type ClassifierKind int

// Enumeration of classifier kinds.
const (
	ClassifierClass ClassifierKind = iota
	ClassifierInterface
	ClassifierEnum
	ClassifierAnnotation
	ClassifierObject
	ClassifierTypeParameter
)

func (ck ClassifierKind) String() string {
	switch ck {
	case ClassifierInterface:
		return "interface"
	case ClassifierEnum:
		return "enum class"
	case ClassifierAnnotation:
		return "annotation class"
	case ClassifierObject:
		return "object"
	case ClassifierTypeParameter:
		return "type parameter"
	default:
		return "class"
	}
}

// Classifier is a named entity a type can refer to: a class-like declaration
// or a type parameter.  Types never hold declarations directly; they refer to
// them through classifiers, which the IR implements with its symbols.
type Classifier interface {
	// ClassifierID returns the unique identifier of the classifier.
	ClassifierID() uint64

	// ClassifierKind returns the kind of declaration the classifier names.
	ClassifierKind() ClassifierKind

	// PackageName returns the dot-separated name of the package containing
	// the classifier.  It is empty for type parameters.
	PackageName() string

	// NameSegments returns the names of the classifier and its enclosing
	// classes, outermost first.  Type parameters have a single segment.
	NameSegments() []string

	// ValueUnderlying returns the underlying type of a value class and nil
	// for any other classifier.
	ValueUnderlying() Type

	// Supertypes returns the supertypes of a class or the upper bounds of a
	// type parameter.
	Supertypes() []Type
}

// TargetNamed is implemented by classifiers that may carry an explicit target
// name overriding the one derived from their package and name segments.
type TargetNamed interface {
	TargetName() (string, bool)
}

// QualifiedName returns the dot-separated source name of the classifier.
func QualifiedName(c Classifier) string {
	name := strings.Join(c.NameSegments(), ".")
	if pkg := c.PackageName(); pkg != "" {
		return pkg + "." + name
	}

	return name
}
