package ir

import (
	"testing"

	"irbackend/types"
)

// sampleElement returns a minimal element of the given concrete kind.
func sampleElement(t *testing.T, kind Kind) Element {
	t.Helper()

	f := NewFactory(nil)
	fn := f.NewFunction("f", types.PrimUnit, OriginDefined)
	cls := f.NewClass("C", types.ClassifierClass, OriginDefined)
	v := f.NewVariable("v", types.PrimInt, nil, OriginDefined)
	field := f.NewField("x", types.PrimInt, OriginDefined)
	ctor := f.NewConstructor(cls, OriginDefined)
	loop := &WhileLoop{LoopBase{ExpressionBase: NewExpressionBase(types.PrimUnit), Cond: NewBooleanConst(true), Body: NewUnitBlock()}}

	switch kind {
	case KindModuleFragment:
		return &ModuleFragment{Name: "m"}
	case KindFile:
		return &File{Name: "a.kt"}
	case KindExternalPackageFragment:
		return &ExternalPackageFragment{PackageName: "kotlin"}
	case KindClass:
		return cls
	case KindSimpleFunction:
		return fn
	case KindConstructor:
		return ctor
	case KindProperty:
		return f.NewProperty("p", types.PrimInt, OriginDefined)
	case KindField:
		return field
	case KindVariable:
		return v
	case KindTypeParameter:
		return f.NewTypeParameter("T", 0, OriginDefined)
	case KindValueParameter:
		return f.NewValueParameter("a", types.PrimInt, 0, OriginDefined)
	case KindEnumEntry:
		return f.NewEnumEntry("A", OriginDefined)
	case KindAnonymousInitializer:
		return f.NewAnonymousInitializer(false, OriginDefined)
	case KindTypeAlias:
		return f.NewTypeAlias("A", types.PrimInt, OriginDefined)
	case KindErrorDeclaration:
		return &ErrorDeclaration{}
	case KindExpressionBody:
		return &ExpressionBody{Expr: NewIntConst(1)}
	case KindBlockBody:
		return &BlockBody{}
	case KindSyntheticBody:
		return &SyntheticBody{}
	case KindConst:
		return NewIntConst(1)
	case KindVararg:
		return &Vararg{ExpressionBase: NewExpressionBase(&types.ArrayType{ElemType: types.PrimInt}), ElementType: types.PrimInt}
	case KindSpreadElement:
		return &SpreadElement{Expr: NewIntConst(1)}
	case KindBlock:
		return NewUnitBlock()
	case KindComposite:
		return NewComposite(types.PrimUnit, nil)
	case KindStringConcatenation:
		return &StringConcatenation{ExpressionBase: NewExpressionBase(types.StringType)}
	case KindGetObjectValue:
		obj := f.NewClass("O", types.ClassifierObject, OriginDefined)
		return NewGetObjectValue(obj)
	case KindGetEnumValue:
		return &GetEnumValue{ExpressionBase: NewExpressionBase(types.AnyType), Symbol: f.NewEnumEntry("A", OriginDefined).Symbol}
	case KindGetValue:
		return NewGetValue(v)
	case KindSetValue:
		return NewSetValue(v, NewIntConst(1))
	case KindGetField:
		return NewGetField(field, nil)
	case KindSetField:
		return NewSetField(field, nil, NewIntConst(1))
	case KindCall:
		return NewCall(fn)
	case KindConstructorCall:
		return NewConstructorCall(ctor)
	case KindDelegatingConstructorCall:
		return NewDelegatingConstructorCall(ctor)
	case KindEnumConstructorCall:
		return &EnumConstructorCall{MemberAccessBase: MemberAccessBase{ExpressionBase: NewExpressionBase(types.PrimUnit)}, Symbol: ctor.Symbol}
	case KindGetClass:
		return &GetClass{ExpressionBase: NewExpressionBase(types.AnyType), Arg: NewIntConst(1)}
	case KindFunctionReference:
		return &FunctionReference{MemberAccessBase: MemberAccessBase{ExpressionBase: NewExpressionBase(&types.FuncType{ReturnType: types.PrimUnit})}, Symbol: fn.Symbol}
	case KindPropertyReference:
		prop := f.NewProperty("p", types.PrimInt, OriginDefined)
		return &PropertyReference{MemberAccessBase: MemberAccessBase{ExpressionBase: NewExpressionBase(types.AnyType)}, Symbol: prop.Symbol}
	case KindFunctionExpression:
		return &FunctionExpression{ExpressionBase: NewExpressionBase(&types.FuncType{ReturnType: types.PrimUnit}), Function: fn, Origin: OriginLambda}
	case KindClassReference:
		return &ClassReference{ExpressionBase: NewExpressionBase(types.AnyType), Symbol: cls.Symbol, ClassType: cls.DefaultType()}
	case KindInstanceInitializerCall:
		return &InstanceInitializerCall{ExpressionBase: NewExpressionBase(types.PrimUnit), Class: cls.Symbol}
	case KindTypeOperatorCall:
		return NewTypeOperatorCall(OpCast, NewIntConst(1), types.AnyType)
	case KindWhen:
		return NewIfThenElse(types.PrimUnit, NewBooleanConst(true), NewUnitBlock(), nil)
	case KindBranch:
		return &Branch{Cond: NewBooleanConst(true), Result: NewUnitBlock()}
	case KindElseBranch:
		return &Branch{Cond: NewBooleanConst(true), Result: NewUnitBlock(), Else: true}
	case KindWhileLoop:
		return loop
	case KindDoWhileLoop:
		return &DoWhileLoop{LoopBase{ExpressionBase: NewExpressionBase(types.PrimUnit), Cond: NewBooleanConst(false), Body: NewUnitBlock()}}
	case KindTry:
		return &Try{ExpressionBase: NewExpressionBase(types.PrimUnit), TryResult: NewUnitBlock()}
	case KindCatch:
		return &Catch{Param: f.NewVariable("e", types.ThrowableType, nil, OriginDefined), Result: NewUnitBlock()}
	case KindBreak:
		return &Break{BreakContinueBase{ExpressionBase: NewExpressionBase(types.PrimNothing), Loop: loop}}
	case KindContinue:
		return &Continue{BreakContinueBase{ExpressionBase: NewExpressionBase(types.PrimNothing), Loop: loop}}
	case KindReturn:
		return NewReturn(fn, nil)
	case KindThrow:
		return NewThrow(NewConstructorCall(ctor))
	case KindErrorExpression:
		return &ErrorExpression{ExpressionBase: NewExpressionBase(types.PrimNothing), Description: "err"}
	case KindErrorCallExpression:
		return &ErrorCallExpression{ExpressionBase: NewExpressionBase(types.PrimNothing), Description: "err"}
	}

	t.Fatalf("no sample element for %s", kind)
	return nil
}

// concreteKinds returns every kind which is the kind of some element.
func concreteKinds() []Kind {
	var kinds []Kind
	for _, kind := range Kinds() {
		if !kind.IsAbstract() {
			kinds = append(kinds, kind)
		}
	}

	return kinds
}
