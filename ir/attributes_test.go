package ir

import (
	"testing"

	"irbackend/types"
)

var (
	testNoteKey  = NewAttributeKey[string]("note")
	testCountKey = NewAttributeKey[int]("count")
)

func TestAttributeGetSet(t *testing.T) {
	c := NewIntConst(1)

	if _, ok := GetAttribute(c, testNoteKey); ok {
		t.Errorf("fresh element has an attribute")
	}

	SetAttribute(c, testNoteKey, "first")
	SetAttribute(c, testNoteKey, "second")
	SetAttribute(c, testCountKey, 3)

	if note, _ := GetAttribute(c, testNoteKey); note != "second" {
		t.Errorf("last write did not win: %q", note)
	}

	if count, ok := GetAttribute(c, testCountKey); !ok || count != 3 {
		t.Errorf("count = %d, %v", count, ok)
	}

	RemoveAttribute(c, testCountKey)
	if _, ok := GetAttribute(c, testCountKey); ok {
		t.Errorf("removed attribute is still present")
	}
}

func TestAttributeCorrelationAcrossCopies(t *testing.T) {
	f := NewFactory(nil)
	a := f.NewFunction("f", types.PrimInt, OriginDefined)
	a.Body = &BlockBody{Statements: []Statement{NewReturn(a, NewIntConst(1))}}

	SetAttribute(a, testNoteKey, "recorded")
	SetAttribute(a, testCountKey, 7)

	current := a
	for i := 0; i < 5; i++ {
		current = DeepCopy(current, nil)

		if note, _ := GetAttribute(current, testNoteKey); note != "recorded" {
			t.Errorf("generation %d: note = %q", i+1, note)
		}

		if count, _ := GetAttribute(current, testCountKey); count != 7 {
			t.Errorf("generation %d: count = %d", i+1, count)
		}

		// The owner is stored collapsed: one indirection reaches the original.
		if current.base().owner != Element(a) {
			t.Errorf("generation %d: owner is not the original", i+1)
		}

		if OriginalOf(current) != Element(a) {
			t.Errorf("generation %d: original is not a", i+1)
		}
	}

	if OriginalOf(a) != Element(a) {
		t.Errorf("original is not its own owner")
	}
}

func TestCopyAttributesFromSelf(t *testing.T) {
	c := NewIntConst(1)
	SetAttribute(c, testNoteKey, "x")
	CopyAttributesFrom(c, c)

	if OriginalOf(c) != Element(c) {
		t.Errorf("copying from self changed the owner")
	}
}

func TestDeepCopyRemapsInnerSymbols(t *testing.T) {
	f := NewFactory(nil)
	outer := f.NewFunction("outer", types.PrimUnit, OriginDefined)

	fn := f.NewFunction("f", types.PrimInt, OriginDefined)
	param := f.AddParam(fn, "p", types.PrimInt, OriginDefined)
	local := f.NewVariable("x", types.PrimInt, NewGetValue(param), OriginDefined)
	local.Parent = fn
	loop := &WhileLoop{LoopBase{ExpressionBase: NewExpressionBase(types.PrimUnit), Cond: NewBooleanConst(true)}}
	loop.Body = NewBlock(types.PrimUnit, nil, &Break{BreakContinueBase{ExpressionBase: NewExpressionBase(types.PrimNothing), Loop: loop}})
	fn.Body = &BlockBody{Statements: []Statement{
		local,
		loop,
		NewCall(outer),
		NewReturn(fn, NewGetValue(local)),
	}}

	cls := f.NewClass("C", types.ClassifierClass, OriginDefined)
	fnCopy := DeepCopy(fn, cls)

	if fnCopy.Symbol == fn.Symbol || fnCopy.Symbol.Owner() != Function(fnCopy) {
		t.Fatalf("copy does not have its own bound symbol")
	}

	if fnCopy.Parent != cls {
		t.Errorf("copy was not attached to the new parent")
	}

	stmts := fnCopy.Body.(*BlockBody).Statements
	localCopy := stmts[0].(*Variable)
	if localCopy == local || localCopy.Parent != Function(fnCopy) {
		t.Errorf("local variable was not copied into the new function")
	}

	if get := localCopy.Initializer.(*GetValue); get.Symbol != fnCopy.Params[0].Symbol {
		t.Errorf("parameter reference was not remapped")
	}

	loopCopy := stmts[1].(*WhileLoop)
	brk := loopCopy.Body.(*Block).Statements[0].(*Break)
	if brk.Loop != Loop(loopCopy) {
		t.Errorf("break target was not remapped")
	}

	if call := stmts[2].(*Call); call.Symbol != outer.Symbol {
		t.Errorf("reference to an outside function was remapped")
	}

	ret := stmts[3].(*Return)
	if ret.Target != fnCopy.Symbol || ret.Value.(*GetValue).Symbol != localCopy.Symbol {
		t.Errorf("return was not remapped")
	}

	if Render(fnCopy) != Render(fn) {
		t.Errorf("copy renders differently:\n%s\nvs\n%s", Render(fnCopy), Render(fn))
	}
}

func TestDeepCopyRemapsClassTypes(t *testing.T) {
	f := NewFactory(nil)
	cls := f.NewClass("Box", types.ClassifierClass, OriginDefined)
	tp := f.NewTypeParameter("T", 0, OriginDefined)
	tp.Parent = cls
	cls.TypeParams = []*TypeParameter{tp}
	field := f.NewField("value", tp.Symbol.Type(), OriginDefined)
	cls.AddDeclaration(field)

	file := &File{Name: "box.kt", PackageName: "test"}
	cls.Parent = file

	clsCopy := DeepCopy(cls, nil)
	fieldCopy := clsCopy.Decls[0].(*Field)

	tv, ok := fieldCopy.Type.(*types.TypeVar)
	if !ok || tv.Param != types.Classifier(clsCopy.TypeParams[0].Symbol) {
		t.Errorf("field type does not refer to the copied type parameter")
	}

	if clsCopy.Parent != file {
		t.Errorf("copy lost its original parent")
	}
}
