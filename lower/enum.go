package lower

import (
	"irbackend/ir"
	"irbackend/report"
	"irbackend/types"
)

// EnumClasses replaces the entries of each enum class by static fields.
// Constructors take the name and ordinal of the entry they create as two
// leading parameters.  Entries with a body become nested subclasses of the
// enum.  The enum gets a $VALUES array of its entries along with the
// synthetic values() and valueOf(String) functions.  Reads of entries anywhere
// in the file become reads of their fields.
func EnumClasses() Phase[*FileContext] {
	return FilePass("EnumClasses", "Replace enum entries by static fields",
		func(fc *FileContext) FileLoweringPass {
			return newEnumLowering(fc)
		},
	)
}

type enumLowering struct {
	fc          *FileContext
	transformer *ir.Transformer[*enumLowering]
}

func newEnumLowering(fc *FileContext) *enumLowering {
	el := &enumLowering{fc: fc, transformer: ir.NewTransformer[*enumLowering]()}

	ir.OnTransform(el.transformer, ir.KindGetEnumValue, func(gv *ir.GetEnumValue, el *enumLowering) ir.Element {
		if el.fc.isExternal(gv.Symbol) {
			return gv
		}

		field := el.fc.enumEntryField(gv.Symbol.Owner())
		read := ir.NewGetField(field, nil)
		read.SetType(gv.Type())
		read.SetSpan(gv.Span())
		return read
	})

	return el
}

func (el *enumLowering) LowerFile(file *ir.File) {
	el.fc.Registry.Each(func(cls *ir.Class) {
		if cls.IsEnumClass() && !cls.IsExternal {
			el.lowerEnum(cls)
		}
	})

	el.transformer.TransformChildren(file, el)
	el.fc.patchParents()
}

// enumConstructorParams are the leading parameters of a constructor of an
// enum class or of an entry class.
type enumConstructorParams struct {
	name, ordinal *ir.ValueParameter
}

func (el *enumLowering) lowerEnum(cls *ir.Class) {
	ctors := cls.Constructors()

	owned := make(map[*ir.FunctionSymbol]bool)
	for _, ctor := range ctors {
		owned[ctor.Symbol] = true
	}

	for _, ctor := range ctors {
		el.lowerConstructor(ctor, owned)
	}

	var entries []*ir.EnumEntry
	for _, decl := range cls.Decls {
		if entry, ok := decl.(*ir.EnumEntry); ok {
			entries = append(entries, entry)
		}
	}

	fields := make(map[*ir.EnumEntry]*ir.Field)
	for ordinal, entry := range entries {
		fields[entry] = el.lowerEntry(cls, entry, ordinal, ctors, owned)
	}

	ir.TransformDeclarationsFlat(cls, func(decl ir.Declaration) []ir.Declaration {
		if entry, ok := decl.(*ir.EnumEntry); ok {
			return []ir.Declaration{fields[entry]}
		}

		return nil
	})

	el.addValues(cls, entries, fields)
}

// lowerConstructor prepends the name and ordinal parameters to ctor and
// passes them on to the enum constructors it delegates to.  Delegation to the
// builtin Enum constructor is left to the code generator.
func (el *enumLowering) lowerConstructor(ctor *ir.Constructor, owned map[*ir.FunctionSymbol]bool) {
	params := el.addEnumParams(ctor)

	body := ir.FunctionBody(ctor)
	if body == nil {
		return
	}

	t := ir.NewTransformer[struct{}]()
	delegate := func(ma ir.MemberAccess, sym *ir.FunctionSymbol) ir.Element {
		mb := ma.MemberBase()
		if !owned[sym] {
			return ir.NewComposite(types.PrimUnit, nil)
		}

		call := ir.NewDelegatingConstructorCall(sym.Owner().(*ir.Constructor),
			append([]ir.Expression{ir.NewGetValue(params.name), ir.NewGetValue(params.ordinal)}, mb.Args...)...,
		)
		call.SetSpan(ma.Span())
		return call
	}

	ir.OnTransform(t, ir.KindEnumConstructorCall, func(call *ir.EnumConstructorCall, _ struct{}) ir.Element {
		return delegate(call, call.Symbol)
	})

	ir.OnTransform(t, ir.KindDelegatingConstructorCall, func(call *ir.DelegatingConstructorCall, _ struct{}) ir.Element {
		if !owned[call.Symbol] {
			return call
		}

		return delegate(call, call.Symbol)
	})

	t.TransformChildren(body, struct{}{})
}

func (el *enumLowering) addEnumParams(ctor *ir.Constructor) enumConstructorParams {
	f := el.fc.Factory
	params := enumConstructorParams{
		name:    f.NewValueParameter("$enum$name", types.StringType, 0, ir.OriginEnumConstructorParam),
		ordinal: f.NewValueParameter("$enum$ordinal", types.PrimInt, 1, ir.OriginEnumConstructorParam),
	}

	params.name.Parent = ctor
	params.ordinal.Parent = ctor

	ctor.Params = append([]*ir.ValueParameter{params.name, params.ordinal}, ctor.Params...)
	shiftParams(ctor)
	return params
}

// lowerEntry creates the field holding entry and returns it.
func (el *enumLowering) lowerEntry(cls *ir.Class, entry *ir.EnumEntry, ordinal int, ctors []*ir.Constructor, owned map[*ir.FunctionSymbol]bool) *ir.Field {
	target, args := el.entryConstructor(cls, entry, ctors)

	name := ir.NewStringConst(entry.Name)
	index := ir.NewIntConst(int64(ordinal))

	var init ir.Expression
	if sub := entry.Class; sub != nil {
		ctor := el.entryClassConstructor(sub, target, args, owned)

		entry.Class = nil
		cls.AddDeclaration(sub)

		init = ir.NewConstructorCall(ctor, name, index)
	} else {
		init = ir.NewConstructorCall(target, append([]ir.Expression{name, index}, args...)...)
	}

	init.SetType(cls.DefaultType())
	init.SetSpan(entry.Span())

	field := el.fc.enumEntryField(entry)
	field.Initializer = &ir.ExpressionBody{Expr: init}
	field.SetSpan(entry.Span())
	return field
}

// entryConstructor returns the enum constructor entry calls and the
// arguments it passes.
func (el *enumLowering) entryConstructor(cls *ir.Class, entry *ir.EnumEntry, ctors []*ir.Constructor) (*ir.Constructor, []ir.Expression) {
	if entry.Initializer != nil {
		if call, ok := entry.Initializer.Expr.(*ir.EnumConstructorCall); ok {
			ctor, ok := call.Symbol.Owner().(*ir.Constructor)
			if !ok || ctor.Parent != cls {
				report.Fault("entry %s of enum %s does not call an enum constructor", entry.Name, cls.Name)
			}

			return ctor, call.Args
		}
	}

	for _, ctor := range ctors {
		// the name and ordinal have been prepended already
		if allDefaulted(ctor.Params[2:]) {
			return ctor, make([]ir.Expression, len(ctor.Params)-2)
		}
	}

	report.Fault("entry %s of enum %s has no constructor to call", entry.Name, cls.Name)
	return nil, nil
}

// entryClassConstructor returns the constructor of the entry class sub.  An
// entry class without constructors gets one passing args on to the enum
// constructor target.
func (el *enumLowering) entryClassConstructor(sub *ir.Class, target *ir.Constructor, args []ir.Expression, owned map[*ir.FunctionSymbol]bool) *ir.Constructor {
	if ctors := sub.Constructors(); len(ctors) > 0 {
		for _, ctor := range ctors {
			owned[ctor.Symbol] = true
		}

		for _, ctor := range ctors {
			el.lowerConstructor(ctor, owned)
		}

		return ctors[0]
	}

	ctor := el.fc.Factory.NewConstructor(sub, ir.OriginDefaultConstructor)
	ctor.IsPrimary = true
	ctor.Visibility = ir.Private

	params := el.addEnumParams(ctor)
	ctor.Body = &ir.BlockBody{Statements: []ir.Statement{
		ir.NewDelegatingConstructorCall(target,
			append([]ir.Expression{ir.NewGetValue(params.name), ir.NewGetValue(params.ordinal)}, args...)...,
		),
		&ir.InstanceInitializerCall{ExpressionBase: ir.NewExpressionBase(types.PrimUnit), Class: sub.Symbol},
	}}

	sub.AddDeclaration(ctor)
	return ctor
}

// addValues adds the $VALUES array and the values and valueOf functions to
// cls unless it declares them itself.
func (el *enumLowering) addValues(cls *ir.Class, entries []*ir.EnumEntry, fields map[*ir.EnumEntry]*ir.Field) {
	f := el.fc.Factory
	enumType := cls.DefaultType()
	arrayType := &types.ArrayType{ElemType: enumType}

	all := &ir.Vararg{ExpressionBase: ir.NewExpressionBase(arrayType), ElementType: enumType}
	for _, entry := range entries {
		all.Elements = append(all.Elements, ir.NewGetField(fields[entry], nil))
	}

	values := f.NewField("$VALUES", arrayType, ir.OriginEnumValuesField)
	values.IsStatic = true
	values.IsFinal = true
	values.Visibility = ir.Private
	values.Initializer = &ir.ExpressionBody{Expr: all}
	cls.AddDeclaration(values)

	if !declaresFunction(cls, "values", 0) {
		fn := f.NewFunction("values", arrayType, ir.OriginEnumValues)
		fn.IsStatic = true
		fn.Body = &ir.SyntheticBody{SyntheticKind: ir.SyntheticEnumValues}
		cls.AddDeclaration(fn)
	}

	if !declaresFunction(cls, "valueOf", 1) {
		fn := f.NewFunction("valueOf", enumType, ir.OriginEnumValues)
		fn.IsStatic = true
		f.AddParam(fn, "value", types.StringType, ir.OriginDefined)
		fn.Body = &ir.SyntheticBody{SyntheticKind: ir.SyntheticEnumValueOf}
		cls.AddDeclaration(fn)
	}
}

func declaresFunction(cls *ir.Class, name string, arity int) bool {
	for _, decl := range cls.Decls {
		if fn, ok := decl.(*ir.SimpleFunction); ok && fn.Name == name && len(fn.Params) == arity {
			return true
		}
	}

	return false
}
