package lower

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"irbackend/ir"
	"irbackend/types"
	"irbackend/util"
)

// host adds a class named Host in package demo to a new file.  Code under
// test lives in its members since local names derive from the enclosing
// class.
func (fx *fixture) host(name string) (*ir.File, *ir.Class) {
	file := fx.file(name, "demo")
	return file, fx.class(file, "Host", types.ClassifierClass)
}

// memberNames describes the member declarations of cls by kind and name.
func memberNames(cls *ir.Class) []string {
	var names []string
	for _, decl := range cls.Decls {
		switch v := decl.(type) {
		case *ir.Field:
			names = append(names, "field "+v.Name)
		case *ir.SimpleFunction:
			names = append(names, "fun "+v.Name)
		case *ir.Constructor:
			names = append(names, "constructor")
		case *ir.Class:
			names = append(names, "class "+v.Name)
		default:
			names = append(names, fmt.Sprintf("%T %s", decl, decl.DeclName()))
		}
	}

	return names
}

func TestFunctionExpressionBecomesLocalFunction(t *testing.T) {
	fx := newFixture()
	_, host := fx.host("a.kt")

	ft := &types.FuncType{ReturnType: types.PrimInt}
	lambda := fx.f.NewFunction("<anonymous>", types.PrimInt, ir.OriginDefined)
	lambda.Body = &ir.BlockBody{Statements: []ir.Statement{ir.NewReturn(lambda, ir.NewIntConst(1))}}

	v := fx.f.NewVariable("f", ft, &ir.FunctionExpression{ExpressionBase: ir.NewExpressionBase(ft), Function: lambda}, ir.OriginDefined)
	fx.function(host, "run", types.PrimUnit, v)

	fx.lowerWith(t, nil, ProvisionalFunctionExpression())

	block, ok := v.Initializer.(*ir.Block)
	if !ok {
		t.Fatalf("function expression became %s", ir.Describe(v.Initializer))
	}

	fn, ref, ok := isLambdaBlock(block)
	if !ok || fn != lambda {
		t.Fatalf("function expression is not a local function and reference:\n%s", ir.Render(block))
	}

	if fn.Visibility != ir.Local || fn.Origin != ir.OriginLambda || ref.Origin != ir.OriginLambda {
		t.Errorf("unexpected lambda declaration %s", ir.Describe(fn))
	}

	if !types.Equals(block.Type(), ft) {
		t.Errorf("block has type %s, want %s", block.Type().Repr(), ft.Repr())
	}
}

func TestLambdaBecomesClass(t *testing.T) {
	fx := newFixture()
	_, host := fx.host("a.kt")

	run := fx.function(host, "run", types.PrimUnit)
	x := fx.f.AddParam(run, "x", types.PrimInt, ir.OriginDefined)

	ft := &types.FuncType{ReturnType: types.PrimInt}
	lambda := fx.f.NewFunction("<anonymous>", types.PrimInt, ir.OriginDefined)
	lambda.Body = &ir.BlockBody{Statements: []ir.Statement{ir.NewReturn(lambda, ir.NewGetValue(x))}}

	v := fx.f.NewVariable("f", ft, &ir.FunctionExpression{ExpressionBase: ir.NewExpressionBase(ft), Function: lambda}, ir.OriginDefined)
	run.Body.(*ir.BlockBody).Statements = []ir.Statement{v}

	fx.lowerWith(t, nil, ProvisionalFunctionExpression(), InventNamesForLocalClasses(), FunctionReferences())

	block, ok := v.Initializer.(*ir.Block)
	if !ok || block.Origin != ir.OriginLambdaImpl || len(block.Statements) != 2 {
		t.Fatalf("lambda was not materialized:\n%s", ir.Render(v))
	}

	cls := block.Statements[0].(*ir.Class)
	if name, _ := ir.GetAttribute(cls, ir.LocalClassNameKey); name != "demo/Host$run$1" {
		t.Errorf("lambda class is named %q", name)
	}

	if diff := pretty.Diff(memberNames(cls), []string{"constructor", "field $x", "fun invoke"}); len(diff) > 0 {
		t.Errorf("lambda class members: %v", diff)
	}

	call := block.Statements[1].(*ir.ConstructorCall)
	if len(call.Args) != 1 {
		t.Fatalf("instance created with %d arguments, want the captured value", len(call.Args))
	}

	if gv, ok := call.Args[0].(*ir.GetValue); !ok || gv.Symbol != x.Symbol {
		t.Errorf("captured argument is %s", ir.Describe(call.Args[0]))
	}

	invoke := findFunction(cls, "invoke")
	if invoke == nil || invoke.DispatchReceiver == nil {
		t.Fatalf("invoke is missing or unbound")
	}

	for _, gv := range walkFind[*ir.GetValue](invoke) {
		if gv.Symbol == x.Symbol {
			t.Errorf("invoke still reads the captured parameter:\n%s", ir.Render(invoke))
		}
	}

	if len(walkFind[*ir.GetField](invoke)) != 1 {
		t.Errorf("invoke does not read the captured field:\n%s", ir.Render(invoke))
	}
}

func TestFunctionReferences(t *testing.T) {
	fx := newFixture()
	_, host := fx.host("a.kt")

	twice := fx.function(host, "twice", types.PrimInt)
	n := fx.f.AddParam(twice, "n", types.PrimInt, ir.OriginDefined)
	twice.Body.(*ir.BlockBody).Statements = []ir.Statement{ir.NewReturn(twice, ir.NewGetValue(n))}

	run := fx.function(host, "run", types.PrimUnit)

	unboundType := &types.FuncType{ParamTypes: []types.Type{host.DefaultType(), types.PrimInt}, ReturnType: types.PrimInt}
	unbound := &ir.FunctionReference{
		MemberAccessBase: ir.MemberAccessBase{ExpressionBase: ir.NewExpressionBase(unboundType)},
		Symbol:           twice.Symbol,
	}

	boundType := &types.FuncType{ParamTypes: []types.Type{types.PrimInt}, ReturnType: types.PrimInt}
	bound := &ir.FunctionReference{
		MemberAccessBase: ir.MemberAccessBase{
			ExpressionBase:   ir.NewExpressionBase(boundType),
			DispatchReceiver: ir.NewGetValue(run.DispatchReceiver),
		},
		Symbol: twice.Symbol,
	}

	u := fx.f.NewVariable("u", unboundType, unbound, ir.OriginDefined)
	b := fx.f.NewVariable("b", boundType, bound, ir.OriginDefined)
	run.Body.(*ir.BlockBody).Statements = []ir.Statement{u, b}

	fx.lowerWith(t, nil, InventNamesForLocalClasses(), FunctionReferences())

	tests := []struct {
		v      *ir.Variable
		name   string
		args   int
		params int
	}{
		{u, "demo/Host$run$1", 0, 2},
		{b, "demo/Host$run$2", 1, 1},
	}

	for _, test := range tests {
		block, ok := test.v.Initializer.(*ir.Block)
		if !ok || block.Origin != ir.OriginFunctionReferenceImpl {
			t.Errorf("reference %s was not materialized:\n%s", test.v.Name, ir.Render(test.v))
			continue
		}

		cls := block.Statements[0].(*ir.Class)
		if name, _ := ir.GetAttribute(cls, ir.LocalClassNameKey); name != test.name {
			t.Errorf("reference %s: class named %q, want %q", test.v.Name, name, test.name)
		}

		if call := block.Statements[1].(*ir.ConstructorCall); len(call.Args) != test.args {
			t.Errorf("reference %s: instance created with %d arguments, want %d", test.v.Name, len(call.Args), test.args)
		}

		invoke := findFunction(cls, "invoke")
		if invoke == nil || len(invoke.Params) != test.params {
			t.Errorf("reference %s: bad invoke:\n%s", test.v.Name, ir.Render(cls))
			continue
		}

		calls := walkFind[*ir.Call](invoke)
		if len(calls) != 1 || calls[0].Symbol != twice.Symbol || calls[0].DispatchReceiver == nil {
			t.Errorf("reference %s: invoke does not call the target:\n%s", test.v.Name, ir.Render(invoke))
		}
	}
}

func TestSuspendFunctionWithoutSuspensionPoints(t *testing.T) {
	fx := newFixture()
	_, host := fx.host("a.kt")

	ping := fx.function(host, "ping", types.PrimInt)
	ping.IsSuspend = true
	ping.Body.(*ir.BlockBody).Statements = []ir.Statement{ir.NewReturn(ping, ir.NewIntConst(1))}

	plain := fx.function(host, "plain", types.PrimInt)

	fx.lowerWith(t, nil, AddContinuation())

	if len(ping.Params) != 1 {
		t.Fatalf("suspend function has %d parameters, want the continuation", len(ping.Params))
	}

	completion := ping.Params[0]
	if completion.Name != "$completion" || completion.Origin != ir.OriginContinuationParameter {
		t.Errorf("unexpected continuation parameter %s", ir.Describe(completion))
	}

	if !types.Equals(ping.ReturnType, types.NullableAnyType) {
		t.Errorf("suspend function returns %s, want Any?", ping.ReturnType.Repr())
	}

	if len(plain.Params) != 0 || !types.Equals(plain.ReturnType, types.PrimInt) {
		t.Errorf("plain function was changed: %s", ir.Describe(plain))
	}
}

func TestSuspendCallsAcrossFiles(t *testing.T) {
	fx := newFixture()

	a := fx.file("a.kt", "demo")
	source := fx.class(a, "Source", types.ClassifierClass)
	load := fx.function(source, "load", types.PrimInt)
	load.IsSuspend = true
	load.Body.(*ir.BlockBody).Statements = []ir.Statement{ir.NewReturn(load, ir.NewIntConst(1))}

	b := fx.file("b.kt", "demo")
	sink := fx.class(b, "Sink", types.ClassifierClass)
	use := fx.function(sink, "use", types.PrimInt)
	use.IsSuspend = true
	s := fx.f.AddParam(use, "s", source.DefaultType(), ir.OriginDefined)

	call := ir.NewCall(load)
	call.DispatchReceiver = ir.NewGetValue(s)
	use.Body.(*ir.BlockBody).Statements = []ir.Statement{ir.NewReturn(use, call)}

	fx.lowerWith(t, &Config{Workers: 4}, AddContinuation())

	if len(load.Params) != 1 || len(use.Params) != 2 {
		t.Fatalf("got %d and %d parameters, want 1 and 2", len(load.Params), len(use.Params))
	}

	if len(call.Args) != 1 {
		t.Fatalf("call passes %d arguments, want the continuation", len(call.Args))
	}

	if gv, ok := call.Args[0].(*ir.GetValue); !ok || gv.Symbol != use.Params[1].Symbol {
		t.Errorf("call does not pass on the caller's continuation:\n%s", ir.Render(call))
	}
}

func TestLateinitProperty(t *testing.T) {
	fx := newFixture()
	_, holder := fx.host("a.kt")

	name := fx.f.NewProperty("name", types.StringType, ir.OriginDefined)
	name.IsVar = true
	name.IsLateinit = true
	addDecl(holder, name)

	// a property whose front end already created the backing field
	other := fx.f.NewProperty("other", types.StringType, ir.OriginDefined)
	other.IsVar = true
	other.IsLateinit = true
	other.BackingField = fx.f.NewField("other", types.StringType, ir.OriginPropertyBackingField)
	other.BackingField.CorrespondingProperty = other.Symbol
	addDecl(holder, other)

	raw := fx.function(holder, "raw", types.StringType)
	raw.Body.(*ir.BlockBody).Statements = []ir.Statement{
		ir.NewReturn(raw, ir.NewGetField(other.BackingField, ir.NewGetValue(raw.DispatchReceiver))),
	}

	diagnostics := fx.lowerWith(t, nil, Lateinit())
	if diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics %v", diagnostics.Sorted())
	}

	field := name.BackingField
	if field == nil {
		t.Fatalf("lateinit property has no backing field")
	}

	if field.Origin != ir.OriginPropertyBackingField || field.CorrespondingProperty != name.Symbol || !types.IsNullable(field.Type) {
		t.Errorf("unexpected backing field %s", ir.Describe(field))
	}

	for _, prop := range []*ir.Property{name, other} {
		getter := prop.Getter
		if getter == nil || getter.Body == nil {
			t.Fatalf("property %s has no getter", prop.Name)
		}

		text := ir.Render(getter)
		if !strings.Contains(text, "CALL 'throwUninitializedPropertyAccessException'") {
			t.Errorf("getter of %s does not check its field:\n%s", prop.Name, text)
		}

		for _, gf := range walkFind[*ir.GetField](getter) {
			if !types.IsNullable(gf.Type()) {
				t.Errorf("getter of %s reads its field as %s", prop.Name, gf.Type().Repr())
			}
		}
	}

	// reads outside the getter see the nullable field unchecked
	reads := walkFind[*ir.GetField](raw)
	if len(reads) != 1 || !types.IsNullable(reads[0].Type()) {
		t.Errorf("direct read was not retyped:\n%s", ir.Render(raw))
	}

	if strings.Contains(ir.Render(raw), "throwUninitializedPropertyAccessException") {
		t.Errorf("direct read was checked:\n%s", ir.Render(raw))
	}
}

func TestLateinitAbstractProperty(t *testing.T) {
	fx := newFixture()
	file := fx.file("a.kt", "demo")
	named := fx.class(file, "Named", types.ClassifierInterface)

	prop := fx.f.NewProperty("name", types.StringType, ir.OriginDefined)
	prop.IsVar = true
	prop.IsLateinit = true
	addDecl(named, prop)

	diags := fx.lowerWith(t, nil, Lateinit()).Sorted()
	if len(diags) != 1 || diags[0].Code != InapplicableLateinitCode || diags[0].File != "a.kt" {
		t.Fatalf("got diagnostics %# v", pretty.Formatter(diags))
	}

	if prop.BackingField != nil {
		t.Errorf("interface property got a backing field")
	}
}

func TestLateinitLocalVariable(t *testing.T) {
	fx := newFixture()
	_, host := fx.host("a.kt")

	v := fx.f.NewVariable("s", types.StringType, nil, ir.OriginDefined)
	v.IsVar = true
	v.IsLateinit = true

	read := fx.f.NewVariable("t", types.StringType, ir.NewGetValue(v), ir.OriginDefined)
	fx.function(host, "run", types.PrimUnit, v, read)

	fx.lowerWith(t, nil, Lateinit())

	if !types.IsNullable(v.Type) {
		t.Errorf("lateinit variable has type %s", v.Type.Repr())
	}

	if c, ok := v.Initializer.(*ir.Const); !ok || c.ConstKind != ir.ConstNull {
		t.Errorf("lateinit variable is not initialized to null")
	}

	block, ok := read.Initializer.(*ir.Block)
	if !ok || block.Origin != ir.OriginLateinitCheck || !types.Equals(block.Type(), types.StringType) {
		t.Errorf("read was not checked:\n%s", ir.Render(read))
	}
}

func TestPropertiesSplit(t *testing.T) {
	fx := newFixture()
	file, box := fx.host("a.kt")

	size := fx.f.NewProperty("size", types.PrimInt, ir.OriginDefined)
	size.IsVar = true
	size.BackingField = fx.f.NewField("size", types.PrimInt, ir.OriginPropertyBackingField)
	size.BackingField.Initializer = &ir.ExpressionBody{Expr: ir.NewIntConst(0)}
	addDecl(box, size)

	isOpen := fx.f.NewProperty("isOpen", types.PrimBoolean, ir.OriginDefined)
	addDecl(box, isOpen)

	single := fx.class(file, "Single", types.ClassifierObject)
	count := fx.f.NewProperty("count", types.PrimInt, ir.OriginDefined)
	addDecl(single, count)

	fx.lowerWith(t, nil, Properties())

	want := []string{"field size", "fun getSize", "fun setSize", "field isOpen", "fun isOpen"}
	if diff := pretty.Diff(memberNames(box), want); len(diff) > 0 {
		t.Errorf("split members: %v", diff)
	}

	if f := size.BackingField; f.Visibility != ir.Private || f.IsFinal || f.IsStatic {
		t.Errorf("unexpected field %s", ir.Describe(f))
	}

	if f := isOpen.BackingField; f == nil || !f.IsFinal {
		t.Errorf("read-only property got no final field")
	}

	getter := findFunction(box, "getSize")
	if getter.DispatchReceiver == nil || len(walkFind[*ir.GetField](getter)) != 1 {
		t.Errorf("unexpected getter:\n%s", ir.Render(getter))
	}

	if count.BackingField == nil || !count.BackingField.IsStatic {
		t.Errorf("object property got no static field")
	}

	if getter := findFunction(single, "getCount"); getter == nil || getter.IsStatic {
		t.Errorf("object accessors must stay instance members")
	}
}

func TestInlineClasses(t *testing.T) {
	fx := newFixture()
	file, host := fx.host("a.kt")

	meters := fx.class(file, "Meters", types.ClassifierClass)
	meters.IsValue = true
	meters.ValueUnderlyingType = types.PrimInt
	ctor := fx.constructor(meters)
	fx.f.AddParam(ctor, "value", types.PrimInt, ir.OriginDefined)
	value := fx.f.NewField("value", types.PrimInt, ir.OriginPropertyBackingField)
	addDecl(meters, value)

	build := fx.function(host, "build", meters.DefaultType())
	build.Body.(*ir.BlockBody).Statements = []ir.Statement{
		ir.NewReturn(build, ir.NewConstructorCall(ctor, ir.NewIntConst(5))),
	}

	unwrap := fx.function(host, "unwrap", types.PrimInt)
	m := fx.f.AddParam(unwrap, "m", meters.DefaultType(), ir.OriginDefined)
	unwrap.Body.(*ir.BlockBody).Statements = []ir.Statement{
		ir.NewReturn(unwrap, ir.NewGetField(value, ir.NewGetValue(m))),
	}

	// members of the value class keep reading the boxed receiver
	get := fx.function(meters, "get", types.PrimInt)
	get.Body.(*ir.BlockBody).Statements = []ir.Statement{
		ir.NewReturn(get, ir.NewGetField(value, ir.NewGetValue(get.DispatchReceiver))),
	}

	fx.lowerWith(t, nil, InlineClasses())

	made := build.Body.(*ir.BlockBody).Statements[0].(*ir.Return).Value
	if c, ok := made.(*ir.Const); !ok || c.Value != int64(5) || !types.Equals(c.Type(), meters.DefaultType()) {
		t.Errorf("construction was not unboxed:\n%s", ir.Render(build))
	}

	unwrapped := unwrap.Body.(*ir.BlockBody).Statements[0].(*ir.Return).Value
	if gv, ok := unwrapped.(*ir.GetValue); !ok || gv.Symbol != m.Symbol || !types.Equals(gv.Type(), types.PrimInt) {
		t.Errorf("field read was not unboxed:\n%s", ir.Render(unwrap))
	}

	if _, ok := get.Body.(*ir.BlockBody).Statements[0].(*ir.Return).Value.(*ir.GetField); !ok {
		t.Errorf("receiver read in the value class was unboxed:\n%s", ir.Render(get))
	}
}

func TestTailrecWithDefaultArgument(t *testing.T) {
	fx := newFixture()
	in := ir.EnsureIntrinsics(fx.module)
	_, host := fx.host("a.kt")

	count := fx.function(host, "count", types.PrimInt)
	count.IsTailrec = true
	n := fx.f.AddParam(count, "n", types.PrimInt, ir.OriginDefined)
	step := fx.f.AddParam(count, "step", types.PrimInt, ir.OriginDefined)
	step.DefaultValue = &ir.ExpressionBody{Expr: ir.NewIntConst(1)}

	// the tail call omits step
	call := ir.NewCall(count, in.Call("Int.minus", ir.NewGetValue(n), ir.NewGetValue(step)), nil)
	call.DispatchReceiver = ir.NewGetValue(count.DispatchReceiver)

	count.Body.(*ir.BlockBody).Statements = []ir.Statement{
		ir.NewIfThenElse(types.PrimUnit,
			in.Call("Int.greater", ir.NewGetValue(n), ir.NewIntConst(0)),
			ir.NewReturn(count, call),
			nil,
		),
		ir.NewReturn(count, ir.NewGetValue(n)),
	}

	fx.lowerWith(t, nil, Tailrec())

	stmts := count.Body.(*ir.BlockBody).Statements
	if len(stmts) != 3 {
		t.Fatalf("lowered body has %d statements, want two variables and a loop:\n%s", len(stmts), ir.Render(count))
	}

	loop, ok := stmts[2].(*ir.WhileLoop)
	if !ok || loop.Label != "count" {
		t.Fatalf("body does not end in the tail call loop:\n%s", ir.Render(count))
	}

	for _, c := range walkFind[*ir.Call](loop) {
		if c.Symbol == count.Symbol {
			t.Errorf("self call survived:\n%s", ir.Render(count))
		}
	}

	for _, gv := range walkFind[*ir.GetValue](loop) {
		if gv.Symbol == n.Symbol || gv.Symbol == step.Symbol {
			t.Errorf("loop reads parameter %s directly", ir.SymbolName(gv.Symbol))
		}
	}

	// the omitted argument is evaluated from the default value
	defaulted := false
	for _, v := range walkFind[*ir.Variable](loop) {
		if c, ok := v.Initializer.(*ir.Const); ok && v.Origin == ir.OriginTailrecTemporary && c.Value == int64(1) {
			defaulted = true
		}
	}

	if !defaulted {
		t.Errorf("default argument was not passed:\n%s", ir.Render(loop))
	}

	if len(walkFind[*ir.Continue](loop)) != 1 {
		t.Errorf("tail call does not restart the loop:\n%s", ir.Render(loop))
	}
}

func TestTypeOperators(t *testing.T) {
	fx := newFixture()
	_, host := fx.host("a.kt")

	run := fx.function(host, "run", types.PrimUnit)
	a := fx.f.AddParam(run, "a", types.NullableAnyType, ir.OriginDefined)

	safe := fx.f.NewVariable("safe", types.MakeNullable(types.StringType),
		ir.NewTypeOperatorCall(ir.OpSafeCast, ir.NewGetValue(a), types.StringType), ir.OriginDefined)
	notIs := fx.f.NewVariable("notIs", types.PrimBoolean,
		ir.NewTypeOperatorCall(ir.OpNotInstanceOf, ir.NewGetValue(a), types.StringType), ir.OriginDefined)
	unit := fx.f.NewVariable("unit", types.PrimUnit,
		ir.NewTypeOperatorCall(ir.OpImplicitCoercionToUnit, ir.NewIntConst(1), types.PrimUnit), ir.OriginDefined)
	same := fx.f.NewVariable("same", types.StringType,
		ir.NewTypeOperatorCall(ir.OpImplicitCast, ir.NewStringConst("s"), types.StringType), ir.OriginDefined)
	narrow := fx.f.NewVariable("narrow", types.StringType,
		ir.NewTypeOperatorCall(ir.OpImplicitCast, ir.NewGetValue(a), types.StringType), ir.OriginDefined)

	run.Body.(*ir.BlockBody).Statements = []ir.Statement{safe, notIs, unit, same, narrow}

	fx.lowerWith(t, nil, TypeOperators())

	if block, ok := safe.Initializer.(*ir.Block); !ok || block.Origin != ir.OriginSafeCast || len(walkFind[*ir.When](block)) != 1 {
		t.Errorf("safe cast was not expanded:\n%s", ir.Render(safe))
	}

	if call, ok := notIs.Initializer.(*ir.Call); !ok || ir.SymbolName(call.Symbol) != "Boolean.not" {
		t.Errorf("negated instance check was not expanded:\n%s", ir.Render(notIs))
	}

	if block, ok := unit.Initializer.(*ir.Block); !ok || !types.IsUnit(block.Type()) {
		t.Errorf("coercion to Unit was not expanded:\n%s", ir.Render(unit))
	}

	if _, ok := same.Initializer.(*ir.Const); !ok {
		t.Errorf("implicit cast between equal representations was kept:\n%s", ir.Render(same))
	}

	if call, ok := narrow.Initializer.(*ir.TypeOperatorCall); !ok || call.Operator != ir.OpCast {
		t.Errorf("narrowing implicit cast is not a checked cast:\n%s", ir.Render(narrow))
	}
}

func TestLocalClassNamesAndPopup(t *testing.T) {
	fx := newFixture()
	_, host := fx.host("a.kt")

	local := fx.f.NewClass("Local", types.ClassifierClass, ir.OriginDefined)
	anon := fx.f.NewClass("", types.ClassifierClass, ir.OriginDefined)
	second := fx.f.NewClass("<no name provided>", types.ClassifierClass, ir.OriginDefined)

	// a function of the local class declares its own anonymous class
	inner := fx.f.NewClass("", types.ClassifierClass, ir.OriginDefined)
	fx.function(local, "go", types.PrimUnit, inner)

	run := fx.function(host, "run", types.PrimUnit, local, anon, ir.NewBlock(types.PrimUnit, nil, second))

	fx.lowerWith(t, nil, InventNamesForLocalClasses(), LocalClassPopup())

	names := make(map[*ir.Class]string)
	for _, cls := range []*ir.Class{local, anon, second, inner} {
		names[cls], _ = ir.GetAttribute(cls, ir.LocalClassNameKey)
	}

	want := map[*ir.Class]string{
		local:  "demo/Host$run$Local",
		anon:   "demo/Host$run$1",
		second: "demo/Host$run$2",
		inner:  "demo/Host$run$Local$go$1",
	}

	for cls, name := range want {
		if names[cls] != name {
			t.Errorf("class %q is named %q, want %q", cls.Name, names[cls], name)
		}
	}

	if diff := pretty.Diff(memberNames(host), []string{"fun run", "class <no name provided>", "class Local", "class "}); len(diff) > 0 {
		t.Errorf("host members: %v", diff)
	}

	if diff := pretty.Diff(memberNames(local), []string{"fun go", "class "}); len(diff) > 0 {
		t.Errorf("local class members: %v", diff)
	}

	if len(walkFind[*ir.Class](run)) != 0 {
		t.Errorf("classes left in code:\n%s", ir.Render(run))
	}
}

func TestDefaultConstructors(t *testing.T) {
	fx := newFixture()
	file := fx.file("a.kt", "demo")

	base := fx.class(file, "Base", types.ClassifierClass)
	derived := fx.class(file, "Derived", types.ClassifierClass)
	derived.Supertypes = []types.Type{base.DefaultType()}
	single := fx.class(file, "Single", types.ClassifierObject)
	shape := fx.class(file, "Shape", types.ClassifierInterface)
	declared := fx.class(file, "Declared", types.ClassifierClass)
	fx.constructor(declared)

	fx.lowerWith(t, nil, DefaultConstructors())

	for _, cls := range []*ir.Class{base, derived, single, declared} {
		if n := len(cls.Constructors()); n != 1 {
			t.Errorf("class %s has %d constructors, want 1", cls.Name, n)
		}
	}

	if n := len(shape.Constructors()); n != 0 {
		t.Errorf("interface got %d constructors", n)
	}

	if ctor := single.Constructors()[0]; ctor.Visibility != ir.Private || ctor.Origin != ir.OriginDefaultConstructor {
		t.Errorf("unexpected object constructor %s", ir.Describe(ctor))
	}

	body := derived.Constructors()[0].Body.(*ir.BlockBody)
	delegation, ok := body.Statements[0].(*ir.DelegatingConstructorCall)
	if !ok || delegation.Symbol != base.Constructors()[0].Symbol {
		t.Errorf("subclass constructor does not delegate to its superclass:\n%s", ir.Render(body))
	}
}

// newEntryClassModule builds an enum whose first entry has a body.
func newEntryClassModule() (*fixture, *ir.Class, *ir.Class) {
	fx := newFixture()
	file := fx.file("src/color.kt", "demo")

	color := fx.class(file, "Color", types.ClassifierEnum)
	label := fx.function(color, "label", types.StringType)
	label.Modality = ir.Open
	label.Body.(*ir.BlockBody).Statements = []ir.Statement{ir.NewReturn(label, ir.NewStringConst("color"))}

	red := fx.f.NewEnumEntry("RED", ir.OriginDefined)
	body := fx.f.NewClass("RED", types.ClassifierClass, ir.OriginDefined)
	body.Supertypes = []types.Type{color.DefaultType()}
	red.Class = body
	color.AddDeclaration(red)
	color.AddDeclaration(fx.f.NewEnumEntry("GREEN", ir.OriginDefined))

	override := fx.function(body, "label", types.StringType)
	override.Body.(*ir.BlockBody).Statements = []ir.Statement{ir.NewReturn(override, ir.NewStringConst("red"))}

	return fx, color, body
}

func TestEnumEntryClassConstructor(t *testing.T) {
	fx, color, body := newEntryClassModule()

	fx.lowerWith(t, nil, DefaultConstructors(), EnumClasses())

	ctors := body.Constructors()
	if len(ctors) != 1 {
		t.Fatalf("entry class has %d constructors, want 1:\n%s", len(ctors), ir.Render(body))
	}

	ctor := ctors[0]
	if ctor.Visibility != ir.Private || !ctor.IsPrimary || len(ctor.Params) != 2 || ctor.Params[0].Name != "$enum$name" {
		t.Errorf("unexpected entry class constructor:\n%s", ir.Render(ctor))
	}

	enumCtors := color.Constructors()
	if len(enumCtors) != 1 {
		t.Fatalf("enum has %d constructors, want 1", len(enumCtors))
	}

	delegation, ok := ctor.Body.(*ir.BlockBody).Statements[0].(*ir.DelegatingConstructorCall)
	if !ok || delegation.Symbol != enumCtors[0].Symbol || len(delegation.Args) != 2 {
		t.Errorf("entry class constructor does not delegate to the enum:\n%s", ir.Render(ctor))
	}

	if body.Parent != color || !util.Contains(color.Decls, ir.Declaration(body)) {
		t.Errorf("entry class is not a member of its enum")
	}

	var initOf *ir.ConstructorCall
	for _, field := range declsOf[*ir.Field](color) {
		if field.Name == "RED" {
			initOf, _ = field.Initializer.Expr.(*ir.ConstructorCall)
		}
	}

	if initOf == nil || initOf.Symbol != ctor.Symbol || !types.Equals(initOf.Type(), color.DefaultType()) {
		t.Errorf("entry field does not create the entry class")
	}
}

func TestEnumEntryClassLowering(t *testing.T) {
	fx, _, body := newEntryClassModule()

	if _, err := fx.lower(t, nil); err != nil {
		t.Fatal(err)
	}

	ctors := body.Constructors()
	if len(ctors) != 1 || ctors[0].Origin != ir.OriginDefaultConstructor {
		t.Fatalf("entry class constructors after lowering:\n%s", ir.Render(body))
	}
}

func TestInitializers(t *testing.T) {
	fx := newFixture()
	_, box := fx.host("a.kt")

	size := fx.f.NewField("size", types.PrimInt, ir.OriginDefined)
	size.Initializer = &ir.ExpressionBody{Expr: ir.NewIntConst(3)}
	addDecl(box, size)

	init := fx.f.NewAnonymousInitializer(false, ir.OriginDefined)
	init.Body.Statements = []ir.Statement{ir.NewIntConst(7)}
	addDecl(box, init)

	first := fx.constructor(box)
	second := fx.constructor(box)

	fx.lowerWith(t, nil, Initializers(), InitializersCleanup())

	var composites []*ir.Composite
	for _, ctor := range []*ir.Constructor{first, second} {
		stmts := ctor.Body.(*ir.BlockBody).Statements
		c, ok := stmts[0].(*ir.Composite)
		if !ok || c.Origin != ir.OriginInitializer || len(c.Statements) != 2 {
			t.Fatalf("initializer call was not expanded:\n%s", ir.Render(ctor))
		}

		if _, ok := c.Statements[0].(*ir.SetField); !ok {
			t.Errorf("field initializer is not first:\n%s", ir.Render(c))
		}

		composites = append(composites, c)
	}

	if composites[0].Statements[1] == composites[1].Statements[1] {
		t.Errorf("constructors share initializer code")
	}

	if size.Initializer != nil {
		t.Errorf("field initializer was not removed")
	}

	if diff := pretty.Diff(memberNames(box), []string{"field size", "constructor", "constructor"}); len(diff) > 0 {
		t.Errorf("members after cleanup: %v", diff)
	}
}

func TestStaticInitializers(t *testing.T) {
	fx := newFixture()
	_, holder := fx.host("a.kt")

	counter := fx.f.NewField("counter", types.PrimInt, ir.OriginDefined)
	counter.IsStatic = true
	counter.Initializer = &ir.ExpressionBody{Expr: ir.NewIntConst(1)}
	addDecl(holder, counter)

	limit := fx.f.NewProperty("LIMIT", types.PrimInt, ir.OriginDefined)
	limit.IsConst = true
	limitField := fx.f.NewField("LIMIT", types.PrimInt, ir.OriginPropertyBackingField)
	limitField.IsStatic = true
	limitField.CorrespondingProperty = limit.Symbol
	limitField.Initializer = &ir.ExpressionBody{Expr: ir.NewIntConst(10)}
	addDecl(holder, limitField)

	static := fx.f.NewAnonymousInitializer(true, ir.OriginDefined)
	static.Body.Statements = []ir.Statement{ir.NewIntConst(2)}
	addDecl(holder, static)

	fx.lowerWith(t, nil, StaticInitializers())

	clinit := findFunction(holder, "<clinit>")
	if clinit == nil || !clinit.IsStatic || clinit.Visibility != ir.Private || clinit.Origin != ir.OriginStaticInitializer {
		t.Fatalf("no static initializer:\n%s", ir.Render(holder))
	}

	stmts := clinit.Body.(*ir.BlockBody).Statements
	if len(stmts) != 2 {
		t.Fatalf("static initializer has %d statements, want 2:\n%s", len(stmts), ir.Render(clinit))
	}

	if set, ok := stmts[0].(*ir.SetField); !ok || set.Symbol != counter.Symbol {
		t.Errorf("static field is not initialized first:\n%s", ir.Render(clinit))
	}

	if counter.Initializer != nil || limitField.Initializer == nil {
		t.Errorf("initializers of counter and constant: %v, %v", counter.Initializer != nil, limitField.Initializer != nil)
	}

	if len(declsOf[*ir.AnonymousInitializer](holder)) != 0 {
		t.Errorf("static init block was not removed")
	}
}

func TestTypeAliasesRemoved(t *testing.T) {
	fx := newFixture()
	file, host := fx.host("a.kt")

	addDecl(file, fx.f.NewTypeAlias("Names", types.StringType, ir.OriginDefined))
	addDecl(host, fx.f.NewTypeAlias("Inner", types.PrimInt, ir.OriginDefined))
	fx.function(host, "run", types.PrimUnit,
		fx.f.NewTypeAlias("Local", types.PrimInt, ir.OriginDefined),
		ir.NewIntConst(1),
	)

	fx.lowerWith(t, nil, TypeAliases())

	if aliases := walkFind[*ir.TypeAlias](file); len(aliases) != 0 {
		t.Errorf("%d type aliases left:\n%s", len(aliases), ir.Render(file))
	}

	run := findFunction(host, "run")
	if n := len(run.Body.(*ir.BlockBody).Statements); n != 1 {
		t.Errorf("function body has %d statements, want 1", n)
	}
}

func TestExpectDeclarationRemover(t *testing.T) {
	fx := newFixture()
	file, host := fx.host("a.kt")

	platform := fx.class(file, "Platform", types.ClassifierClass)
	platform.IsExpect = true

	fx.function(file, "now", types.PrimLong).IsExpect = true
	fx.function(file, "today", types.PrimLong)

	prop := fx.f.NewProperty("zone", types.StringType, ir.OriginDefined)
	prop.IsExpect = true
	addDecl(host, prop)
	fx.function(host, "run", types.PrimUnit)

	fx.lowerModuleWith(t, ExpectDeclarationRemover())

	var names []string
	for _, decl := range file.Decls {
		names = append(names, decl.DeclName())
	}

	if diff := pretty.Diff(names, []string{"Host", "today"}); len(diff) > 0 {
		t.Errorf("file declarations: %v", diff)
	}

	if diff := pretty.Diff(memberNames(host), []string{"fun run"}); len(diff) > 0 {
		t.Errorf("class members: %v", diff)
	}
}

func TestMultifileFacade(t *testing.T) {
	fx := newFixture()
	in := ir.EnsureIntrinsics(fx.module)

	a := fx.file("a.kt", "demo")
	a.FacadeName = "Util"
	a.IsMultifilePart = true

	countdown := fx.function(a, "countdown", types.PrimInt)
	countdown.IsTailrec = true
	n := fx.f.AddParam(countdown, "n", types.PrimInt, ir.OriginDefined)
	countdown.Body.(*ir.BlockBody).Statements = []ir.Statement{
		ir.NewIfThenElse(types.PrimUnit,
			in.Call("Int.greater", ir.NewGetValue(n), ir.NewIntConst(0)),
			ir.NewReturn(countdown, ir.NewCall(countdown, in.Call("Int.minus", ir.NewGetValue(n), ir.NewIntConst(1)))),
			nil,
		),
		ir.NewReturn(countdown, ir.NewGetValue(n)),
	}

	fx.function(a, "hidden", types.PrimUnit).Visibility = ir.Private

	b := fx.file("b.kt", "demo")
	b.FacadeName = "Util"
	b.IsMultifilePart = true
	greet := fx.function(b, "greet", types.StringType)
	greet.Body.(*ir.BlockBody).Statements = []ir.Statement{ir.NewReturn(greet, ir.NewStringConst("hi"))}

	if _, err := fx.lower(t, nil); err != nil {
		t.Fatal(err)
	}

	facade := facadeIn(a, "Util")
	if facade == nil {
		t.Fatalf("no facade class in the first part:\n%s", ir.Render(a))
	}

	if diff := pretty.Diff(memberNames(facade), []string{"fun countdown", "fun greet"}); len(diff) > 0 {
		t.Errorf("facade members: %v", diff)
	}

	del := findFunction(facade, "countdown")
	if del.IsTailrec || del.IsExternal || !del.IsStatic || del.Origin != ir.OriginMultifileFacade {
		t.Errorf("unexpected delegate %s", ir.Describe(del))
	}

	calls := walkFind[*ir.Call](del)
	if len(calls) != 1 || calls[0].Symbol != countdown.Symbol || len(calls[0].Args) != 1 {
		t.Errorf("delegate does not forward to the part:\n%s", ir.Render(del))
	}

	if len(walkFind[*ir.WhileLoop](del)) != 0 {
		t.Errorf("delegate copied the lowered loop:\n%s", ir.Render(del))
	}
}

// facadeIn returns the facade class named name declared in file.
func facadeIn(file *ir.File, name string) *ir.Class {
	for _, decl := range file.Decls {
		if cls, ok := decl.(*ir.Class); ok && cls.Origin == ir.OriginMultifileFacade && cls.Name == name {
			return cls
		}
	}

	return nil
}
