package ir

import (
	"irbackend/report"
	"irbackend/types"
)

// NewIntConst creates an Int constant.
func NewIntConst(value int64) *Const {
	return &Const{ExpressionBase: NewExpressionBase(types.PrimInt), ConstKind: ConstInt, Value: value}
}

// NewBooleanConst creates a Boolean constant.
func NewBooleanConst(value bool) *Const {
	return &Const{ExpressionBase: NewExpressionBase(types.PrimBoolean), ConstKind: ConstBoolean, Value: value}
}

// NewStringConst creates a String constant.
func NewStringConst(value string) *Const {
	return &Const{ExpressionBase: NewExpressionBase(types.StringType), ConstKind: ConstString, Value: value}
}

// NewNullConst creates a null constant of the given nullable type.
func NewNullConst(typ types.Type) *Const {
	return &Const{ExpressionBase: NewExpressionBase(types.MakeNullable(typ)), ConstKind: ConstNull}
}

// NewConst creates a constant of the given kind.  The value must have the Go
// type documented on Const.
func NewConst(kind ConstKind, value any, typ types.Type) *Const {
	return &Const{ExpressionBase: NewExpressionBase(typ), ConstKind: kind, Value: value}
}

// NewGetValue creates a read of a variable or parameter.
func NewGetValue(decl ValueDeclaration) *GetValue {
	return &GetValue{ExpressionBase: NewExpressionBase(decl.ValueType()), Symbol: decl.ValueSymbol()}
}

// NewSetValue creates an assignment to a variable.
func NewSetValue(decl ValueDeclaration, value Expression) *SetValue {
	return &SetValue{ExpressionBase: NewExpressionBase(types.PrimUnit), Symbol: decl.ValueSymbol(), Value: value}
}

// NewGetField creates a read of field.  receiver must be nil for static
// fields.
func NewGetField(field *Field, receiver Expression) *GetField {
	return &GetField{ExpressionBase: NewExpressionBase(field.Type), Symbol: field.Symbol, Receiver: receiver}
}

// NewSetField creates a write of field.  receiver must be nil for static
// fields.
func NewSetField(field *Field, receiver, value Expression) *SetField {
	return &SetField{ExpressionBase: NewExpressionBase(types.PrimUnit), Symbol: field.Symbol, Receiver: receiver, Value: value}
}

// NewCall creates a call to fn with the given value arguments.
func NewCall(fn Function, args ...Expression) *Call {
	return &Call{
		MemberAccessBase: MemberAccessBase{
			ExpressionBase: NewExpressionBase(fn.FuncBase().ReturnType),
			Args:           args,
		},
		Symbol: fn.FuncSymbol(),
	}
}

// NewConstructorCall creates a call of ctor with the given value arguments.
func NewConstructorCall(ctor *Constructor, args ...Expression) *ConstructorCall {
	return &ConstructorCall{
		MemberAccessBase: MemberAccessBase{
			ExpressionBase: NewExpressionBase(ctor.ReturnType),
			Args:           args,
		},
		Symbol: ctor.Symbol,
	}
}

// NewDelegatingConstructorCall creates a delegating call of ctor.
func NewDelegatingConstructorCall(ctor *Constructor, args ...Expression) *DelegatingConstructorCall {
	return &DelegatingConstructorCall{
		MemberAccessBase: MemberAccessBase{
			ExpressionBase: NewExpressionBase(types.PrimUnit),
			Args:           args,
		},
		Symbol: ctor.Symbol,
	}
}

// NewBlock creates a block of the given type.
func NewBlock(typ types.Type, origin *Origin, stmts ...Statement) *Block {
	return &Block{ExpressionBase: NewExpressionBase(typ), Origin: origin, Statements: stmts}
}

// NewComposite creates a composite of the given type.
func NewComposite(typ types.Type, origin *Origin, stmts ...Statement) *Composite {
	return &Composite{ExpressionBase: NewExpressionBase(typ), Origin: origin, Statements: stmts}
}

// NewReturn creates a return from target.  value may be nil for functions
// returning Unit.
func NewReturn(target Function, value Expression) *Return {
	return &Return{ExpressionBase: NewExpressionBase(types.PrimNothing), Target: target.FuncSymbol(), Value: value}
}

// NewThrow creates a throw of value.
func NewThrow(value Expression) *Throw {
	return &Throw{ExpressionBase: NewExpressionBase(types.PrimNothing), Value: value}
}

// NewTypeOperatorCall creates a type operator call.
func NewTypeOperatorCall(op TypeOperator, arg Expression, operand types.Type) *TypeOperatorCall {
	var typ types.Type
	switch op {
	case OpInstanceOf, OpNotInstanceOf:
		typ = types.PrimBoolean
	case OpImplicitCoercionToUnit:
		typ = types.PrimUnit
	case OpSafeCast:
		typ = types.MakeNullable(operand)
	default:
		typ = operand
	}

	return &TypeOperatorCall{ExpressionBase: NewExpressionBase(typ), Operator: op, Arg: arg, Operand: operand}
}

// NewIfThenElse creates a two-way when.  elseResult may be nil.
func NewIfThenElse(typ types.Type, cond, thenResult, elseResult Expression) *When {
	w := &When{ExpressionBase: NewExpressionBase(typ)}
	w.Branches = append(w.Branches, &Branch{Cond: cond, Result: thenResult})

	if elseResult != nil {
		w.Branches = append(w.Branches, &Branch{Cond: NewBooleanConst(true), Result: elseResult, Else: true})
	}

	return w
}

// NewUnitBlock creates an empty block standing for the Unit value.
func NewUnitBlock() *Block {
	return NewBlock(types.PrimUnit, nil)
}

// NewGetObjectValue creates a read of the instance of object cls.
func NewGetObjectValue(cls *Class) *GetObjectValue {
	if !cls.IsObject() {
		report.Fault("class %s is not an object", cls.Name)
	}

	return &GetObjectValue{ExpressionBase: NewExpressionBase(cls.DefaultType()), Symbol: cls.Symbol}
}

// CallArgs returns the argument expressions of a member access in receiver
// then parameter order.  Nil arguments are skipped.
func CallArgs(ma MemberAccess) []Expression {
	mb := ma.MemberBase()

	var args []Expression
	if mb.DispatchReceiver != nil {
		args = append(args, mb.DispatchReceiver)
	}

	if mb.ExtensionReceiver != nil {
		args = append(args, mb.ExtensionReceiver)
	}

	for _, arg := range mb.Args {
		if arg != nil {
			args = append(args, arg)
		}
	}

	return args
}
