package lower

import (
	"context"
	"testing"

	"irbackend/ir"
	"irbackend/report"
	"irbackend/types"
)

// fixture builds small modules for lowering tests.
type fixture struct {
	f      *ir.Factory
	module *ir.ModuleFragment
}

func newFixture() *fixture {
	return &fixture{f: ir.NewFactory(nil), module: &ir.ModuleFragment{Name: "test"}}
}

func (fx *fixture) file(name, pkg string) *ir.File {
	file := &ir.File{Name: name, PackageName: pkg}
	fx.module.AddFile(file)
	return file
}

func addDecl(container ir.DeclarationContainer, decl ir.Declaration) {
	decl.DeclBase().Parent = container

	decls := container.DeclarationList()
	*decls = append(*decls, decl)
}

func (fx *fixture) class(container ir.DeclarationContainer, name string, kind types.ClassifierKind) *ir.Class {
	cls := fx.f.NewClass(name, kind, ir.OriginDefined)
	if kind != types.ClassifierInterface && kind != types.ClassifierAnnotation {
		cls.Supertypes = []types.Type{types.AnyType}
	}

	addDecl(container, cls)
	return cls
}

func (fx *fixture) constructor(cls *ir.Class) *ir.Constructor {
	ctor := fx.f.NewConstructor(cls, ir.OriginDefined)
	ctor.IsPrimary = true
	ctor.Body = &ir.BlockBody{Statements: []ir.Statement{
		&ir.InstanceInitializerCall{ExpressionBase: ir.NewExpressionBase(types.PrimUnit), Class: cls.Symbol},
	}}

	cls.AddDeclaration(ctor)
	return ctor
}

// function adds a function to container.  Functions declared in classes get
// a dispatch receiver.
func (fx *fixture) function(container ir.DeclarationContainer, name string, ret types.Type, stmts ...ir.Statement) *ir.SimpleFunction {
	fn := fx.f.NewFunction(name, ret, ir.OriginDefined)
	if cls, ok := container.(*ir.Class); ok {
		fx.f.AddDispatchReceiver(fn, cls)
	}

	fn.Body = &ir.BlockBody{Statements: stmts}
	addDecl(container, fn)
	return fn
}

func (fx *fixture) lower(t *testing.T, cfg *Config) (*report.DiagnosticSink, error) {
	t.Helper()

	ir.PatchDeclarationParents(fx.module, nil)

	diagnostics := report.NewDiagnosticSink()
	_, err := Run(context.Background(), fx.module, cfg, diagnostics)
	return diagnostics, err
}

// lowerWith runs phases over every file of the module inside the class
// tracking window.  A nil cfg lowers one file at a time.
func (fx *fixture) lowerWith(t *testing.T, cfg *Config, phases ...Phase[*FileContext]) *report.DiagnosticSink {
	t.Helper()

	ir.PatchDeclarationParents(fx.module, nil)
	if cfg == nil {
		cfg = &Config{Workers: 1}
	}

	steps := append([]Phase[*FileContext]{StartTrackingClasses()}, phases...)
	steps = append(steps, StopTrackingClasses())

	lc := newTestContext(fx.module, cfg)
	if err := PerformByFile("PerFile", "", Sequence("Steps", steps...)).Invoke(context.Background(), lc, fx.module); err != nil {
		t.Fatal(err)
	}

	return lc.Diagnostics
}

// lowerModuleWith runs a single module phase over the module.
func (fx *fixture) lowerModuleWith(t *testing.T, phase Phase[*ir.ModuleFragment]) {
	t.Helper()

	ir.PatchDeclarationParents(fx.module, nil)
	if err := phase.Invoke(context.Background(), newTestContext(fx.module, nil), fx.module); err != nil {
		t.Fatal(err)
	}
}

// walkFind returns the elements of type T below elem in pre-order.
func walkFind[T ir.Element](elem ir.Element) []T {
	var found []T
	ir.Walk(elem, func(e ir.Element) {
		if v, ok := e.(T); ok {
			found = append(found, v)
		}
	})

	return found
}

// sample is a module exercising most of the per-file pipeline.
type sample struct {
	*fixture

	marker, box, color, registry, shape, outer, hidden *ir.Class
}

func newSample() *sample {
	s := &sample{fixture: newFixture()}

	a := s.file("src/main.kt", "demo")

	s.marker = s.class(a, "Marker", types.ClassifierAnnotation)
	s.constructor(s.marker)

	s.box = s.class(a, "Box", types.ClassifierClass)
	s.constructor(s.box)

	s.color = s.class(a, "Color", types.ClassifierEnum)
	s.color.Supertypes = []types.Type{types.AnyType}
	red := s.f.NewEnumEntry("RED", ir.OriginDefined)
	green := s.f.NewEnumEntry("GREEN", ir.OriginDefined)
	s.color.AddDeclaration(red)
	s.color.AddDeclaration(green)

	s.registry = s.class(a, "Registry", types.ClassifierObject)
	s.function(s.registry, "touch", types.PrimUnit)

	s.shape = s.class(a, "Shape", types.ClassifierInterface)
	area := s.function(s.shape, "area", types.PrimInt)
	area.Modality = ir.Open
	area.Body = &ir.BlockBody{Statements: []ir.Statement{ir.NewReturn(area, ir.NewIntConst(1))}}

	loop := &ir.WhileLoop{LoopBase: ir.LoopBase{
		ExpressionBase: ir.NewExpressionBase(types.PrimUnit),
		Cond:           ir.NewBooleanConst(true),
	}}
	loop.Body = ir.NewBlock(types.PrimUnit, nil,
		&ir.Break{BreakContinueBase: ir.BreakContinueBase{ExpressionBase: ir.NewExpressionBase(types.PrimNothing), Loop: loop}},
	)

	s.function(a, "main", types.PrimUnit,
		&ir.GetEnumValue{ExpressionBase: ir.NewExpressionBase(s.color.DefaultType()), Symbol: red.Symbol},
		ir.NewGetObjectValue(s.registry),
		loop,
	)

	b := s.file("src/peek.kt", "demo")

	s.outer = s.class(b, "Outer", types.ClassifierClass)
	s.hidden = s.class(s.outer, "Hidden", types.ClassifierClass)
	s.hidden.Visibility = ir.Private
	hiddenCtor := s.constructor(s.hidden)

	peek := s.function(b, "peek", types.PrimUnit,
		ir.NewConstructorCall(hiddenCtor),
		ir.NewConstructorCall(hiddenCtor),
	)
	peek.IsInline = true
	peek.Visibility = ir.Internal

	return s
}

// declsOf returns the declarations of cls of type T.
func declsOf[T ir.Declaration](cls *ir.Class) []T {
	var result []T
	for _, decl := range cls.Decls {
		if d, ok := decl.(T); ok {
			result = append(result, d)
		}
	}

	return result
}

func findClass(elem ir.Element, name string) *ir.Class {
	for _, cls := range collectClasses(elem) {
		if cls.Name == name {
			return cls
		}
	}

	return nil
}

func findFunction(cls *ir.Class, name string) *ir.SimpleFunction {
	for _, fn := range declsOf[*ir.SimpleFunction](cls) {
		if fn.Name == name {
			return fn
		}
	}

	return nil
}
