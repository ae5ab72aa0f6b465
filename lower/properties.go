package lower

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"irbackend/ir"
	"irbackend/types"
)

// Properties splits each property into its backing field and accessor
// functions.  Properties of file classes and objects get static fields and
// file-class accessors are static too.
func Properties() Phase[*FileContext] {
	return FilePass("Properties", "Split properties into fields and accessors",
		func(fc *FileContext) FileLoweringPass {
			return &propertiesLowering{fc: fc}
		},
	)
}

type propertiesLowering struct {
	fc *FileContext
}

func (pl *propertiesLowering) LowerFile(file *ir.File) {
	for _, cls := range collectClasses(file) {
		ir.TransformDeclarationsFlat(cls, func(decl ir.Declaration) []ir.Declaration {
			if prop, ok := decl.(*ir.Property); ok {
				return pl.lowerProperty(cls, prop)
			}

			return nil
		})
	}
}

func (pl *propertiesLowering) lowerProperty(cls *ir.Class, prop *ir.Property) []ir.Declaration {
	layout := propertyLayoutOf(cls, prop)

	decls := []ir.Declaration{}

	field := prop.BackingField
	if field == nil && layout.needsField(prop) {
		field = pl.fc.Factory.NewField(prop.Name, prop.Type, ir.OriginPropertyBackingField)
		prop.BackingField = field
	}

	if field != nil {
		field.CorrespondingProperty = prop.Symbol
		field.IsStatic = layout.staticField
		field.IsFinal = !prop.IsVar

		switch {
		case prop.IsConst, prop.IsLateinit:
			field.Visibility = prop.Visibility
		default:
			field.Visibility = ir.Private
		}

		ir.CopyAttributesFrom(field, prop)
		decls = append(decls, field)
	}

	if prop.IsConst {
		return decls
	}

	if prop.Getter == nil {
		prop.Getter = defaultGetter(pl.fc.Factory, cls, prop, layout)
	}

	decls = append(decls, pl.accessor(prop.Getter, prop, layout))

	if prop.IsVar {
		if prop.Setter == nil {
			prop.Setter = defaultSetter(pl.fc.Factory, cls, prop, layout)
		}

		decls = append(decls, pl.accessor(prop.Setter, prop, layout))
	}

	return decls
}

func (pl *propertiesLowering) accessor(fn *ir.SimpleFunction, prop *ir.Property, layout propertyLayout) *ir.SimpleFunction {
	fn.CorrespondingProperty = prop.Symbol
	if layout.staticAccessors {
		fn.IsStatic = true
		fn.DispatchReceiver = nil
	}

	return fn
}

// -----------------------------------------------------------------------------

// propertyLayout describes where the parts of a property end up.
type propertyLayout struct {
	staticField     bool
	staticAccessors bool
	abstract        bool
}

func propertyLayoutOf(cls *ir.Class, prop *ir.Property) propertyLayout {
	fileClass := cls != nil && cls.Origin == ir.OriginFileClass

	return propertyLayout{
		staticField:     fileClass || (cls != nil && cls.IsObject()) || prop.IsConst,
		staticAccessors: fileClass,
		abstract:        (cls != nil && cls.IsInterface()) || prop.Modality == ir.Abstract || prop.IsExternal,
	}
}

// needsField returns whether prop needs a backing field its front end did
// not create: some accessor is missing and must read or write the field.
func (pl propertyLayout) needsField(prop *ir.Property) bool {
	if pl.abstract {
		return false
	}

	return prop.Getter == nil || (prop.IsVar && prop.Setter == nil)
}

// receiverFor returns the receiver expression of a field access from
// accessor fn, or nil if the field is static.
func receiverFor(fn *ir.SimpleFunction, field *ir.Field) ir.Expression {
	if field.IsStatic || fn.DispatchReceiver == nil {
		return nil
	}

	return ir.NewGetValue(fn.DispatchReceiver)
}

// defaultGetter creates the getter of a property which has none.
func defaultGetter(f *ir.Factory, cls *ir.Class, prop *ir.Property, layout propertyLayout) *ir.SimpleFunction {
	fn := f.NewFunction(getterName(prop.Name), prop.Type, ir.OriginPropertyAccessor)
	fn.Visibility = prop.Visibility
	fn.Modality = prop.Modality
	fn.CorrespondingProperty = prop.Symbol
	fn.Parent = cls

	if layout.staticAccessors {
		fn.IsStatic = true
	} else if cls != nil {
		f.AddDispatchReceiver(fn, cls)
	}

	if layout.abstract || prop.BackingField == nil {
		fn.Modality = ir.Abstract
		return fn
	}

	field := prop.BackingField
	fn.Body = &ir.BlockBody{Statements: []ir.Statement{
		ir.NewReturn(fn, ir.NewGetField(field, receiverFor(fn, field))),
	}}

	return fn
}

// defaultSetter creates the setter of a mutable property which has none.
func defaultSetter(f *ir.Factory, cls *ir.Class, prop *ir.Property, layout propertyLayout) *ir.SimpleFunction {
	fn := f.NewFunction(setterName(prop.Name), types.PrimUnit, ir.OriginPropertyAccessor)
	fn.Visibility = prop.Visibility
	fn.Modality = prop.Modality
	fn.CorrespondingProperty = prop.Symbol
	fn.Parent = cls

	if layout.staticAccessors {
		fn.IsStatic = true
	} else if cls != nil {
		f.AddDispatchReceiver(fn, cls)
	}

	value := f.AddParam(fn, "<set-?>", prop.Type, ir.OriginDefined)

	if layout.abstract || prop.BackingField == nil {
		fn.Modality = ir.Abstract
		return fn
	}

	field := prop.BackingField
	fn.Body = &ir.BlockBody{Statements: []ir.Statement{
		ir.NewSetField(field, receiverFor(fn, field), ir.NewGetValue(value)),
	}}

	return fn
}

// getterName returns the JVM name of the getter of a property.  Properties
// named like `isEmpty` keep their name.
func getterName(name string) string {
	if startsWithIs(name) {
		return name
	}

	return "get" + capitalize(name)
}

// setterName returns the JVM name of the setter of a property.
func setterName(name string) string {
	if startsWithIs(name) {
		return "set" + name[len("is"):]
	}

	return "set" + capitalize(name)
}

func startsWithIs(name string) bool {
	if !strings.HasPrefix(name, "is") || len(name) == len("is") {
		return false
	}

	r, _ := utf8.DecodeRuneInString(name[len("is"):])
	return !unicode.IsLower(r)
}
