package lower

import (
	"irbackend/ir"
	"irbackend/types"
)

// Lateinit makes the storage of lateinit properties and variables nullable
// and checks every read of it: reading an uninitialized value throws.
func Lateinit() Phase[*FileContext] {
	return FilePass("Lateinit", "Check reads of lateinit properties and variables",
		func(fc *FileContext) FileLoweringPass {
			return newLateinitLowering(fc)
		},
	)
}

type lateinitLowering struct {
	fc *FileContext

	// fields maps the backing fields of lateinit properties to the property.
	fields map[*ir.FieldSymbol]*ir.Property
	props  []*ir.Property

	// variables maps lateinit local variables to their declared type.
	variables map[*ir.ValueSymbol]*ir.Variable

	// checkFields is set while the getters are rewritten.
	checkFields bool

	transformer *ir.Transformer[*lateinitLowering]
}

func newLateinitLowering(fc *FileContext) *lateinitLowering {
	ll := &lateinitLowering{
		fc:          fc,
		fields:      make(map[*ir.FieldSymbol]*ir.Property),
		variables:   make(map[*ir.ValueSymbol]*ir.Variable),
		transformer: ir.NewTransformer[*lateinitLowering](),
	}

	ir.OnTransform(ll.transformer, ir.KindGetField, func(gf *ir.GetField, ll *lateinitLowering) ir.Element {
		ll.transformer.TransformChildren(gf, ll)

		if prop, ok := ll.fields[gf.Symbol]; ok {
			gf.SetType(types.MakeNullable(prop.Type))

			if ll.checkFields {
				return ll.checkedRead(gf, prop.Name, prop.Type)
			}
		}

		return gf
	})

	ir.OnTransform(ll.transformer, ir.KindGetValue, func(gv *ir.GetValue, ll *lateinitLowering) ir.Element {
		if v, ok := ll.variables[gv.Symbol]; ok {
			return ll.checkedRead(gv, v.Name, types.NotNull(v.Type))
		}

		return gv
	})

	return ll
}

func (ll *lateinitLowering) LowerFile(file *ir.File) {
	ir.Walk(file, func(elem ir.Element) {
		switch v := elem.(type) {
		case *ir.Property:
			ll.prepareProperty(v)
		case *ir.Variable:
			if v.IsLateinit {
				ll.variables[v.Symbol] = v
			}
		}
	})

	// getters are the only readers of a lateinit backing field
	ll.checkFields = true
	for _, prop := range ll.props {
		if prop.Getter != nil && prop.Getter.Body != nil {
			ll.transformer.TransformChildren(prop.Getter, ll)
		}
	}
	ll.checkFields = false

	if len(ll.variables) > 0 || len(ll.fields) > 0 {
		ll.transformer.TransformChildren(file, ll)

		for _, v := range ll.variables {
			v.Type = types.MakeNullable(v.Type)
			if v.Initializer == nil {
				v.Initializer = ir.NewNullConst(v.Type)
			}
		}
	}

	ll.fc.patchParents()
}

// InapplicableLateinitCode is the diagnostic code reported by Lateinit for a
// lateinit property which cannot have a backing field.
const InapplicableLateinitCode = "INAPPLICABLE_LATEINIT_MODIFIER"

func (ll *lateinitLowering) prepareProperty(prop *ir.Property) {
	if !prop.IsLateinit {
		return
	}

	cls, _ := prop.Parent.(*ir.Class)
	layout := propertyLayoutOf(cls, prop)

	if prop.BackingField == nil {
		if layout.abstract {
			ll.fc.reportError(InapplicableLateinitCode, prop,
				"lateinit property %s has no backing field", prop.Name)
			return
		}

		field := ll.fc.Factory.NewField(prop.Name, prop.Type, ir.OriginPropertyBackingField)
		field.CorrespondingProperty = prop.Symbol
		field.Parent = prop.Parent
		prop.BackingField = field
	}

	prop.BackingField.IsStatic = layout.staticField
	if prop.Getter == nil {
		prop.Getter = defaultGetter(ll.fc.Factory, cls, prop, layout)
	}

	prop.BackingField.Type = types.MakeNullable(prop.Type)
	ll.fields[prop.BackingField.Symbol] = prop
	ll.props = append(ll.props, prop)
}

// checkedRead wraps read so that it throws if the value read is null.
func (ll *lateinitLowering) checkedRead(read ir.Expression, name string, typ types.Type) ir.Expression {
	in := ll.fc.Intrinsics

	tmp := ll.fc.temporary("lateinit", read, ir.OriginLateinitCheck)
	tmp.Type = types.MakeNullable(tmp.Type)
	check := ir.NewIfThenElse(types.PrimUnit,
		in.Call("EQEQ", ir.NewGetValue(tmp), ir.NewNullConst(types.AnyType)),
		in.Call("throwUninitializedPropertyAccessException", ir.NewStringConst(name)),
		nil,
	)
	result := ir.NewTypeOperatorCall(ir.OpImplicitNotNull, ir.NewGetValue(tmp), typ)

	block := ir.NewBlock(typ, ir.OriginLateinitCheck, tmp, check, result)
	block.SetSpan(read.Span())
	return block
}
