package ir

import (
	"irbackend/types"
)

// Factory creates declarations with freshly bound symbols.  Classes created
// through a factory are recorded in its class registry so passes running
// while tracking is active can find them.
type Factory struct {
	registry *ClassRegistry
}

// NewFactory creates a new factory reporting classes to registry.  The
// registry may be nil if no tracking is needed.
func NewFactory(registry *ClassRegistry) *Factory {
	return &Factory{registry: registry}
}

// Registry returns the class registry of the factory.
func (f *Factory) Registry() *ClassRegistry {
	return f.registry
}

// NewClass creates a new class with its this receiver.  The caller is
// responsible for attaching the class to its parent.
func (f *Factory) NewClass(name string, kind types.ClassifierKind, origin *Origin) *Class {
	cls := &Class{
		DeclarationBase: DeclarationBase{Origin: origin},
		Symbol:          NewClassSymbol(),
		Name:            name,
		ClassKind:       kind,
	}
	cls.Symbol.Bind(cls)

	cls.ThisReceiver = f.NewValueParameter("<this>", cls.DefaultType(), -1, OriginDefined)
	cls.ThisReceiver.Parent = cls

	if f.registry != nil {
		f.registry.Add(cls)
	}

	return cls
}

// NewFunction creates a new simple function with no parameters or body.
func (f *Factory) NewFunction(name string, returnType types.Type, origin *Origin) *SimpleFunction {
	fn := &SimpleFunction{
		FunctionBase: FunctionBase{
			DeclarationBase: DeclarationBase{Origin: origin},
			Name:            name,
			ReturnType:      returnType,
		},
		Symbol: NewFunctionSymbol(),
	}
	fn.Symbol.Bind(fn)
	return fn
}

// NewConstructor creates a new constructor of cls returning its default type.
// The constructor is not added to the class.
func (f *Factory) NewConstructor(cls *Class, origin *Origin) *Constructor {
	ctor := &Constructor{
		FunctionBase: FunctionBase{
			DeclarationBase: DeclarationBase{Origin: origin, Parent: cls},
			Name:            "<init>",
			ReturnType:      cls.DefaultType(),
		},
		Symbol: NewFunctionSymbol(),
	}
	ctor.Symbol.Bind(ctor)
	return ctor
}

// NewProperty creates a new property with no field or accessors.
func (f *Factory) NewProperty(name string, typ types.Type, origin *Origin) *Property {
	prop := &Property{
		DeclarationBase: DeclarationBase{Origin: origin},
		Symbol:          NewPropertySymbol(),
		Name:            name,
		Type:            typ,
	}
	prop.Symbol.Bind(prop)
	return prop
}

// NewField creates a new field.
func (f *Factory) NewField(name string, typ types.Type, origin *Origin) *Field {
	field := &Field{
		DeclarationBase: DeclarationBase{Origin: origin},
		Symbol:          NewFieldSymbol(),
		Name:            name,
		Type:            typ,
	}
	field.Symbol.Bind(field)
	return field
}

// NewVariable creates a new local variable.
func (f *Factory) NewVariable(name string, typ types.Type, init Expression, origin *Origin) *Variable {
	v := &Variable{
		DeclarationBase: DeclarationBase{Origin: origin},
		Symbol:          NewValueSymbol(),
		Name:            name,
		Type:            typ,
		Initializer:     init,
	}
	v.Symbol.Bind(v)
	return v
}

// NewValueParameter creates a new value parameter at index.  Receivers have
// index -1.
func (f *Factory) NewValueParameter(name string, typ types.Type, index int, origin *Origin) *ValueParameter {
	vp := &ValueParameter{
		DeclarationBase: DeclarationBase{Origin: origin},
		Symbol:          NewValueSymbol(),
		Name:            name,
		Type:            typ,
		Index:           index,
	}
	vp.Symbol.Bind(vp)
	return vp
}

// NewTypeParameter creates a new type parameter bounded by Any?.
func (f *Factory) NewTypeParameter(name string, index int, origin *Origin) *TypeParameter {
	tp := &TypeParameter{
		DeclarationBase: DeclarationBase{Origin: origin},
		Symbol:          NewTypeParameterSymbol(),
		Name:            name,
		Index:           index,
		Supertypes:      []types.Type{types.NullableAnyType},
	}
	tp.Symbol.Bind(tp)
	return tp
}

// NewEnumEntry creates a new enum entry.
func (f *Factory) NewEnumEntry(name string, origin *Origin) *EnumEntry {
	ee := &EnumEntry{
		DeclarationBase: DeclarationBase{Origin: origin},
		Symbol:          NewEnumEntrySymbol(),
		Name:            name,
	}
	ee.Symbol.Bind(ee)
	return ee
}

// NewAnonymousInitializer creates a new anonymous initializer with an empty
// body.
func (f *Factory) NewAnonymousInitializer(static bool, origin *Origin) *AnonymousInitializer {
	ai := &AnonymousInitializer{
		DeclarationBase: DeclarationBase{Origin: origin},
		Symbol:          NewAnonymousInitializerSymbol(),
		IsStatic:        static,
		Body:            &BlockBody{},
	}
	ai.Symbol.Bind(ai)
	return ai
}

// NewTypeAlias creates a new type alias.
func (f *Factory) NewTypeAlias(name string, expanded types.Type, origin *Origin) *TypeAlias {
	ta := &TypeAlias{
		DeclarationBase: DeclarationBase{Origin: origin},
		Symbol:          NewTypeAliasSymbol(),
		Name:            name,
		Expanded:        expanded,
	}
	ta.Symbol.Bind(ta)
	return ta
}

// AddParam appends a new value parameter to fn.
func (f *Factory) AddParam(fn Function, name string, typ types.Type, origin *Origin) *ValueParameter {
	fb := fn.FuncBase()
	vp := f.NewValueParameter(name, typ, len(fb.Params), origin)
	vp.Parent = fn
	fb.Params = append(fb.Params, vp)
	return vp
}

// AddDispatchReceiver gives fn a dispatch receiver of the default type of cls.
func (f *Factory) AddDispatchReceiver(fn Function, cls *Class) *ValueParameter {
	fb := fn.FuncBase()
	fb.DispatchReceiver = f.NewValueParameter("<this>", cls.DefaultType(), -1, OriginDefined)
	fb.DispatchReceiver.Parent = fn
	return fb.DispatchReceiver
}
