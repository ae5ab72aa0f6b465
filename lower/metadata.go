package lower

import (
	"irbackend/ir"
	"irbackend/types"
)

// Metadata records what a declaration was in the source before lowering
// turned it into something else.  Code generation emits it alongside the
// lowered declaration.
type Metadata struct {
	// Kind is the source-level kind: "class", "interface", "object",
	// "enum class", "annotation class", "function" or "constructor".
	Kind string

	// Name is the source name of the declaration.
	Name string

	// Value indicates a value class.
	Value bool

	// Suspend indicates a suspend function.
	Suspend bool
}

// MetadataKey is the attribute holding the metadata of classes and functions.
var MetadataKey = ir.NewAttributeKey[*Metadata]("metadata")

// MetadataOf returns the metadata of elem.  Copies made during lowering find
// the metadata recorded on the declaration they were copied from.
func MetadataOf(elem ir.Element) (*Metadata, bool) {
	if md, ok := ir.GetAttribute(elem, MetadataKey); ok {
		return md, true
	}

	return ir.GetAttribute(ir.OriginalOf(elem), MetadataKey)
}

// recordMetadata records the metadata of every class and function of file
// which does not have any yet.
func recordMetadata(file *ir.File) {
	ir.Walk(file, func(elem ir.Element) {
		if _, ok := ir.GetAttribute(elem, MetadataKey); ok {
			return
		}

		switch v := elem.(type) {
		case *ir.Class:
			ir.SetAttribute(elem, MetadataKey, &Metadata{Kind: classKindName(v.ClassKind), Name: v.Name, Value: v.IsValue})
		case *ir.SimpleFunction:
			ir.SetAttribute(elem, MetadataKey, &Metadata{Kind: "function", Name: v.Name, Suspend: v.IsSuspend})
		case *ir.Constructor:
			ir.SetAttribute(elem, MetadataKey, &Metadata{Kind: "constructor", Name: v.Name})
		}
	})
}

func classKindName(kind types.ClassifierKind) string {
	switch kind {
	case types.ClassifierInterface:
		return "interface"
	case types.ClassifierObject:
		return "object"
	case types.ClassifierEnum:
		return "enum class"
	case types.ClassifierAnnotation:
		return "annotation class"
	default:
		return "class"
	}
}
