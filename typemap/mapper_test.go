package typemap

import (
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	lltypes "github.com/llir/llvm/ir/types"

	"irbackend/ir"
	"irbackend/report"
	"irbackend/types"
)

// fixture holds a small set of user classes to map.
type fixture struct {
	file       *ir.File
	meters     *ir.Class
	name       *ir.Class
	outer      *ir.Class
	inner      *ir.Class
	comparable *ir.Class
	box        *ir.Class
}

func newFixture() *fixture {
	f := ir.NewFactory(nil)
	fx := &fixture{file: &ir.File{Name: "test.kt", PackageName: "test"}}

	add := func(cls *ir.Class) *ir.Class {
		cls.Parent = fx.file
		fx.file.Decls = append(fx.file.Decls, cls)
		return cls
	}

	fx.meters = add(f.NewClass("Meters", types.ClassifierClass, ir.OriginDefined))
	fx.meters.IsValue = true
	fx.meters.ValueUnderlyingType = types.PrimInt

	fx.name = add(f.NewClass("Name", types.ClassifierClass, ir.OriginDefined))
	fx.name.IsValue = true
	fx.name.ValueUnderlyingType = types.StringType

	fx.outer = add(f.NewClass("Outer", types.ClassifierClass, ir.OriginDefined))
	fx.inner = f.NewClass("Inner", types.ClassifierClass, ir.OriginDefined)
	fx.outer.AddDeclaration(fx.inner)

	fx.comparable = add(f.NewClass("Comparable", types.ClassifierInterface, ir.OriginDefined))
	ct := f.NewTypeParameter("T", 0, ir.OriginDefined)
	ct.Variance = types.In
	ct.Parent = fx.comparable
	fx.comparable.TypeParams = []*ir.TypeParameter{ct}

	fx.box = add(f.NewClass("Box", types.ClassifierClass, ir.OriginDefined))
	bt := f.NewTypeParameter("T", 0, ir.OriginDefined)
	bt.Parent = fx.box
	bt.Supertypes = []types.Type{types.NewClassType(fx.comparable.Symbol, bt.Symbol.Type())}
	fx.box.TypeParams = []*ir.TypeParameter{bt}

	return fx
}

func TestMapType(t *testing.T) {
	fx := newFixture()
	m := NewMapper()

	boxT := fx.box.TypeParams[0].Symbol.Type()

	tests := []struct {
		typ     types.Type
		mode    Mode
		desc    string
		generic string
	}{
		{types.PrimInt, ModeDefault, "I", ""},
		{types.PrimBoolean, ModeDefault, "Z", ""},
		{types.PrimLong, ModeTypeArgument, "Ljava/lang/Long;", ""},
		{types.MakeNullable(types.PrimInt), ModeDefault, "Ljava/lang/Integer;", ""},
		{types.PrimUnit, ModeReturnType, "V", ""},
		{types.PrimUnit, ModeDefault, "Lkotlin/Unit;", ""},
		{types.PrimNothing, ModeReturnType, "V", ""},
		{types.PrimNothing, ModeDefault, "Ljava/lang/Void;", ""},
		{types.StringType, ModeDefault, "Ljava/lang/String;", ""},
		{types.NullableAnyType, ModeDefault, "Ljava/lang/Object;", ""},
		{&types.ArrayType{ElemType: types.PrimInt}, ModeDefault, "[I", ""},
		{&types.ArrayType{ElemType: types.StringType}, ModeDefault, "[Ljava/lang/String;", ""},
		{&types.ArrayType{ElemType: types.MakeNullable(types.PrimInt)}, ModeDefault, "[Ljava/lang/Integer;", ""},
		{&types.ArrayType{ElemType: &types.ArrayType{ElemType: types.PrimDouble}}, ModeDefault, "[[D", ""},
		{
			types.NewClassType(types.ListClass, types.StringType), ModeDefault,
			"Ljava/util/List;", "Ljava/util/List<Ljava/lang/String;>;",
		},
		{
			&types.ClassType{Classifier: types.ListClass, Args: []types.TypeArg{{Variance: types.Out, Type: types.PrimInt}}}, ModeDefault,
			"Ljava/util/List;", "Ljava/util/List<+Ljava/lang/Integer;>;",
		},
		{
			&types.ClassType{Classifier: types.ListClass, Args: []types.TypeArg{{}}}, ModeDefault,
			"Ljava/util/List;", "Ljava/util/List<*>;",
		},
		{
			&types.FuncType{ParamTypes: []types.Type{types.PrimInt}, ReturnType: types.StringType}, ModeDefault,
			"Lkotlin/jvm/functions/Function1;", "Lkotlin/jvm/functions/Function1<Ljava/lang/Integer;Ljava/lang/String;>;",
		},
		{
			&types.FuncType{ReceiverType: types.StringType, ReturnType: types.PrimUnit}, ModeDefault,
			"Lkotlin/jvm/functions/Function1;", "Lkotlin/jvm/functions/Function1<Ljava/lang/String;Lkotlin/Unit;>;",
		},
		{
			&types.FuncType{ReturnType: types.PrimInt, Suspend: true}, ModeDefault,
			"Lkotlin/jvm/functions/Function1;",
			"Lkotlin/jvm/functions/Function1<Lkotlin/coroutines/Continuation<-Ljava/lang/Integer;>;Ljava/lang/Object;>;",
		},
		{fx.meters.DefaultType(), ModeDefault, "I", ""},
		{fx.meters.DefaultType(), ModeReturnType, "I", ""},
		{fx.meters.DefaultType(), ModeTypeArgument, "Ltest/Meters;", ""},
		{fx.meters.DefaultType(), ModeBound, "Ltest/Meters;", ""},
		{types.MakeNullable(fx.meters.DefaultType()), ModeDefault, "Ltest/Meters;", ""},
		{fx.name.DefaultType(), ModeDefault, "Ljava/lang/String;", ""},
		{types.MakeNullable(fx.name.DefaultType()), ModeDefault, "Ljava/lang/String;", ""},
		{
			types.NewClassType(types.ListClass, fx.meters.DefaultType()), ModeDefault,
			"Ljava/util/List;", "Ljava/util/List<Ltest/Meters;>;",
		},
		{fx.inner.DefaultType(), ModeDefault, "Ltest/Outer$Inner;", ""},
		{boxT, ModeDefault, "Ltest/Comparable;", "TT;"},
		{&types.ArrayType{ElemType: boxT}, ModeDefault, "[Ltest/Comparable;", "[TT;"},
	}

	for _, test := range tests {
		sig := m.MapSignature(test.typ, test.mode)

		if sig.Descriptor != test.desc {
			t.Errorf("%s in %s mode: descriptor %s, want %s", test.typ.Repr(), test.mode, sig.Descriptor, test.desc)
		}

		if got := sig.GenericSignature(); got != test.generic {
			t.Errorf("%s in %s mode: generic signature %q, want %q", test.typ.Repr(), test.mode, got, test.generic)
		}
	}
}

func TestLocalClassUsesInventedName(t *testing.T) {
	fx := newFixture()
	f := ir.NewFactory(nil)

	fn := f.NewFunction("run", types.PrimUnit, ir.OriginDefined)
	fx.outer.AddDeclaration(fn)
	local := f.NewClass("<no name provided>", types.ClassifierClass, ir.OriginDefined)
	local.Parent = fn
	ir.SetAttribute(local, ir.LocalClassNameKey, "test/Outer$run$1")

	if got := NewMapper().MapType(local.DefaultType(), ModeDefault); got != "Ltest/Outer$run$1;" {
		t.Errorf("local class descriptor = %s", got)
	}
}

func TestMapFunction(t *testing.T) {
	fx := newFixture()
	f := ir.NewFactory(nil)
	m := NewMapper()

	suspendFn := f.NewFunction("fetch", types.StringType, ir.OriginDefined)
	suspendFn.IsSuspend = true
	f.AddParam(suspendFn, "id", types.PrimInt, ir.OriginDefined)

	ms := m.MapFunction(suspendFn)
	if want := "(ILkotlin/coroutines/Continuation;)Ljava/lang/Object;"; ms.Descriptor != want {
		t.Errorf("suspend function descriptor = %s, want %s", ms.Descriptor, want)
	}

	if want := "(ILkotlin/coroutines/Continuation<-Ljava/lang/String;>;)Ljava/lang/Object;"; ms.GenericSignature() != want {
		t.Errorf("suspend function signature = %s, want %s", ms.GenericSignature(), want)
	}

	// Once the continuation parameter exists, the signature is unchanged.
	f.AddParam(suspendFn, "$completion", ContinuationType(types.StringType), ir.OriginContinuationParameter)
	suspendFn.ReturnType = types.NullableAnyType
	if lowered := m.MapFunction(suspendFn); lowered.Descriptor != ms.Descriptor {
		t.Errorf("lowered suspend function descriptor = %s, want %s", lowered.Descriptor, ms.Descriptor)
	}

	generic := f.NewFunction("max", types.PrimUnit, ir.OriginDefined)
	tp := f.NewTypeParameter("T", 0, ir.OriginDefined)
	tp.Parent = generic
	tp.Supertypes = []types.Type{types.NewClassType(fx.comparable.Symbol, tp.Symbol.Type())}
	generic.TypeParams = []*ir.TypeParameter{tp}
	generic.ReturnType = tp.Symbol.Type()
	f.AddParam(generic, "a", tp.Symbol.Type(), ir.OriginDefined)
	f.AddParam(generic, "b", fx.meters.DefaultType(), ir.OriginDefined)

	gs := m.MapFunction(generic)
	if want := "(Ltest/Comparable;I)Ltest/Comparable;"; gs.Descriptor != want {
		t.Errorf("generic function descriptor = %s, want %s", gs.Descriptor, want)
	}

	if want := "<T::Ltest/Comparable<TT;>;>(TT;I)TT;"; gs.GenericSignature() != want {
		t.Errorf("generic function signature = %s, want %s", gs.GenericSignature(), want)
	}

	ctor := f.NewConstructor(fx.outer, ir.OriginDefined)
	f.AddParam(ctor, "x", types.StringType, ir.OriginDefined)
	if cs := m.MapFunction(ctor); cs.String() != "<init>(Ljava/lang/String;)V" {
		t.Errorf("constructor signature = %s", cs)
	}
}

func TestClassSignature(t *testing.T) {
	fx := newFixture()
	m := NewMapper()

	if got := m.ClassSignature(fx.box); got != "<T::Ltest/Comparable<TT;>;>Ljava/lang/Object;" {
		t.Errorf("box class signature = %s", got)
	}

	if got := m.ClassSignature(fx.outer); got != "" {
		t.Errorf("non-generic class has signature %s", got)
	}
}

func TestUnmappableTypeFaults(t *testing.T) {
	err := func() (err error) {
		defer report.CatchFault(&err)
		NewMapper().MapType(nil, ModeDefault)
		return nil
	}()

	if _, ok := err.(*report.InternalError); !ok {
		t.Errorf("mapping a missing type did not fault: %v", err)
	}
}

func TestCyclicValueClassFaults(t *testing.T) {
	f := ir.NewFactory(nil)
	file := &ir.File{Name: "cycle.kt", PackageName: "test"}

	first := f.NewClass("First", types.ClassifierClass, ir.OriginDefined)
	second := f.NewClass("Second", types.ClassifierClass, ir.OriginDefined)
	for _, cls := range []*ir.Class{first, second} {
		cls.IsValue = true
		cls.Parent = file
		file.Decls = append(file.Decls, cls)
	}

	first.ValueUnderlyingType = second.DefaultType()
	second.ValueUnderlyingType = first.DefaultType()

	for _, typ := range []types.Type{first.DefaultType(), types.MakeNullable(second.DefaultType())} {
		err := func() (err error) {
			defer report.CatchFault(&err)
			NewMapper().MapType(typ, ModeDefault)
			return nil
		}()

		if _, ok := err.(*report.InternalError); !ok {
			t.Errorf("mapping %s did not fault: %v", typ.Repr(), err)
		}
	}

	// boxed positions never unbox, so the cycle is not followed
	if got := NewMapper().MapType(first.DefaultType(), ModeTypeArgument); got != "Ltest/First;" {
		t.Errorf("boxed cyclic value class = %s", got)
	}
}

// -----------------------------------------------------------------------------

// sampleType builds a random type from r over the fixture classes.
func (fx *fixture) sampleType(r *rand.Rand, depth int) types.Type {
	prims := []types.PrimitiveType{
		types.PrimBoolean, types.PrimChar, types.PrimByte, types.PrimShort,
		types.PrimInt, types.PrimLong, types.PrimFloat, types.PrimDouble, types.PrimUnit,
	}

	choice := r.Intn(9)
	if depth > 3 {
		choice = r.Intn(3)
	}

	switch choice {
	case 0:
		return prims[r.Intn(len(prims))]
	case 1:
		return []types.Type{types.StringType, types.AnyType, fx.meters.DefaultType(), fx.name.DefaultType(), fx.inner.DefaultType()}[r.Intn(5)]
	case 2:
		return fx.box.TypeParams[0].Symbol.Type()
	case 3:
		return types.MakeNullable(fx.sampleType(r, depth+1))
	case 4:
		return &types.ArrayType{ElemType: fx.sampleType(r, depth+1)}
	case 5:
		variance := types.Variance(r.Intn(3))
		if r.Intn(4) == 0 {
			return &types.ClassType{Classifier: types.ListClass, Args: []types.TypeArg{{}}}
		}
		return &types.ClassType{Classifier: types.ListClass, Args: []types.TypeArg{{Variance: variance, Type: fx.sampleType(r, depth+1)}}}
	case 6:
		return types.NewClassType(fx.comparable.Symbol, fx.sampleType(r, depth+1))
	default:
		ft := &types.FuncType{ReturnType: fx.sampleType(r, depth+1), Suspend: choice == 8}
		for i := r.Intn(3); i > 0; i-- {
			ft.ParamTypes = append(ft.ParamTypes, fx.sampleType(r, depth+1))
		}
		if r.Intn(3) == 0 {
			ft.ReceiverType = fx.sampleType(r, depth+1)
		}
		return ft
	}
}

func TestMappingConsistency(t *testing.T) {
	fx := newFixture()
	m := NewMapper()

	// Two generators with the same seed build structurally equal but
	// distinct type values.
	r1, r2 := rand.New(rand.NewSource(42)), rand.New(rand.NewSource(42))
	modes := []Mode{ModeDefault, ModeReturnType, ModeTypeArgument, ModeBound}

	sawArray, sawGeneric, sawSuspend := false, false, false
	for i := 0; i < 100; i++ {
		typ, twin := fx.sampleType(r1, 0), fx.sampleType(r2, 0)
		mode := modes[i%len(modes)]

		if !types.Equals(typ, twin) {
			t.Fatalf("sample %d: generators diverged", i)
		}

		switch v := typ.(type) {
		case *types.ArrayType:
			sawArray = true
		case *types.ClassType:
			sawGeneric = sawGeneric || len(v.Args) > 0
		case *types.FuncType:
			sawSuspend = sawSuspend || v.Suspend
		}

		first := m.MapSignature(typ, mode)
		second := m.MapSignature(typ, mode)
		fromTwin := m.MapSignature(twin, mode)
		fresh := NewMapper().MapSignature(twin, mode)

		if first.Descriptor != second.Descriptor || first.Descriptor != fromTwin.Descriptor || first.Descriptor != fresh.Descriptor {
			t.Errorf("sample %d (%s): descriptors differ: %s %s %s %s", i, typ.Repr(), first.Descriptor, second.Descriptor, fromTwin.Descriptor, fresh.Descriptor)
		}

		if erased := first.Type.Erase(); erased != first.Descriptor {
			t.Errorf("sample %d (%s): erased signature %s != descriptor %s", i, typ.Repr(), erased, first.Descriptor)
		}
	}

	if !sawArray || !sawGeneric || !sawSuspend {
		t.Errorf("samples did not span arrays (%v), generics (%v) and suspend functions (%v)", sawArray, sawGeneric, sawSuspend)
	}
}

func TestConcurrentMapping(t *testing.T) {
	fx := newFixture()
	m := NewMapper()

	var wg sync.WaitGroup
	results := make([][]string, 8)

	for w := range results {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			r := rand.New(rand.NewSource(7))
			for i := 0; i < 50; i++ {
				results[w] = append(results[w], m.MapType(fx.sampleType(r, 0), ModeDefault))
			}
		}(w)
	}

	wg.Wait()

	for w := 1; w < len(results); w++ {
		for i := range results[0] {
			if results[w][i] != results[0][i] {
				t.Errorf("worker %d sample %d: %s != %s", w, i, results[w][i], results[0][i])
			}
		}
	}
}

func TestNativeProjection(t *testing.T) {
	m := NewMapper()

	tests := []struct {
		desc string
		want lltypes.Type
	}{
		{"I", lltypes.I32},
		{"J", lltypes.I64},
		{"Z", lltypes.I1},
		{"D", lltypes.Double},
		{"V", lltypes.Void},
	}

	for _, test := range tests {
		if got := m.NativeType(test.desc); !got.Equal(test.want) {
			t.Errorf("%s: got %s, want %s", test.desc, got, test.want)
		}
	}

	str := m.NativeType("Ljava/lang/String;")
	if str2 := m.NativeType("Ljava/lang/String;"); !str.Equal(str2) {
		t.Errorf("class pointer types are not shared")
	}

	ft := m.NativeMethodType("(I[JLjava/lang/String;)V", "test/Outer")
	if len(ft.Params) != 4 || !ft.RetType.Equal(lltypes.Void) {
		t.Errorf("unexpected method type %s", ft)
	}

	var names []string
	for _, st := range m.NativeClassTypes() {
		names = append(names, st.Name())
	}

	if want := []string{"java.lang.String", "test.Outer"}; !reflect.DeepEqual(names, want) {
		t.Errorf("native class types = %v, want %v", names, want)
	}

	err := func() (err error) {
		defer report.CatchFault(&err)
		m.NativeType("Lbroken")
		return nil
	}()

	if err == nil {
		t.Errorf("malformed descriptor did not fault")
	}
}

func ExampleMapper_MapType() {
	m := NewMapper()
	fmt.Println(m.MapType(&types.ArrayType{ElemType: types.PrimInt}, ModeDefault))
	fmt.Println(m.MapType(types.MakeNullable(types.PrimInt), ModeDefault))
	// Output:
	// [I
	// Ljava/lang/Integer;
}
