package lower

import (
	"context"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/pkg/errors"

	"irbackend/ir"
	"irbackend/report"
	"irbackend/types"
)

func TestPipelineOrder(t *testing.T) {
	p, err := BuildPipeline(nil)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, step := range p.Steps() {
		names = append(names, step.Name)
	}

	want := []string{
		"ValidateBeforeLowering",
		"ExpectDeclarationRemover",
		"ConstEvaluation",
		"FileClasses",
		"StartTrackingClasses",
		"TypeAliases",
		"ProvisionalFunctionExpression",
		"Lateinit",
		"InventNamesForLocalClasses",
		"FunctionReferences",
		"AddContinuation",
		"Properties",
		"InlineClasses",
		"Tailrec",
		"TypeOperators",
		"FlattenStringConcatenation",
		"LocalClassPopup",
		"DefaultConstructors",
		"Interfaces",
		"EnumClasses",
		"ObjectClasses",
		"Initializers",
		"InitializersCleanup",
		"StaticInitializers",
		"UniqueLoopLabels",
		"RenameFields",
		"Annotations",
		"PrivateTypeFromInternalInline",
		"Optimization",
		"StopTrackingClasses",
		"MultifileFacades",
		"ValidateAfterLowering",
	}

	if diff := pretty.Diff(names, want); len(diff) > 0 {
		t.Errorf("pipeline order differs: %v", diff)
	}

	for _, step := range p.Steps() {
		switch step.Name {
		case "ValidateBeforeLowering", "ValidateAfterLowering", "StartTrackingClasses", "StopTrackingClasses", "InventNamesForLocalClasses":
			if !step.Required {
				t.Errorf("%s is not required", step.Name)
			}
		case "Optimization":
			if step.DefaultEnabled {
				t.Errorf("experimental step %s is enabled by default", step.Name)
			}
		}
	}
}

func TestPipelineToggles(t *testing.T) {
	tests := []struct {
		toggles map[string]bool
		errMsg  string
	}{
		{map[string]bool{"Optimization": true}, ""},
		{map[string]bool{"Tailrec": false}, ""},
		{map[string]bool{"NoSuchPhase": true}, "unknown phase toggle"},
		{map[string]bool{"ValidateAfterLowering": false}, "is required"},
		{map[string]bool{"StopTrackingClasses": true}, ""},
	}

	for _, test := range tests {
		_, err := BuildPipeline(&Config{Workers: 1, Toggles: test.toggles})

		switch {
		case test.errMsg == "" && err != nil:
			t.Errorf("toggles %v: unexpected error: %v", test.toggles, err)
		case test.errMsg != "" && (err == nil || !strings.Contains(err.Error(), test.errMsg)):
			t.Errorf("toggles %v: got error %v, want %q", test.toggles, err, test.errMsg)
		}
	}
}

func TestAnnotationConstructorsRemoved(t *testing.T) {
	s := newSample()

	if n := len(s.marker.Constructors()); n != 1 {
		t.Fatalf("annotation class has %d constructors before lowering", n)
	}

	if _, err := s.lower(t, nil); err != nil && err != report.ErrDiagnostics {
		t.Fatal(err)
	}

	if n := len(s.marker.Constructors()); n != 0 {
		t.Errorf("annotation class has %d constructors after lowering, want 0", n)
	}

	if n := len(s.box.Constructors()); n != 1 {
		t.Errorf("plain class has %d constructors after lowering, want 1", n)
	}
}

func TestAnnotationPassOnly(t *testing.T) {
	fx := newFixture()
	file := fx.file("a.kt", "")

	marker := fx.class(file, "Marker", types.ClassifierAnnotation)
	fx.constructor(marker)
	plain := fx.class(file, "Plain", types.ClassifierClass)
	fx.constructor(plain)
	fx.constructor(plain)

	for _, cls := range []*ir.Class{marker, plain} {
		annotationLowering{}.LowerClass(cls)
	}

	if len(marker.Constructors()) != 0 || len(plain.Constructors()) != 2 {
		t.Errorf("got %d and %d constructors", len(marker.Constructors()), len(plain.Constructors()))
	}
}

func TestPrivateTypeReportedOncePerClass(t *testing.T) {
	s := newSample()

	diagnostics, err := s.lower(t, nil)
	if err != report.ErrDiagnostics {
		t.Fatalf("got error %v, want the diagnostics error", err)
	}

	diags := diagnostics.Sorted()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %# v", len(diags), pretty.Formatter(diags))
	}

	d := diags[0]
	if d.Code != PrivateTypeInInlineCode || d.File != "src/peek.kt" || !strings.Contains(d.Message, "demo/Outer$Hidden") {
		t.Errorf("unexpected diagnostic %s", d)
	}
}

func TestPrivateTypeThroughPrivateInlineCallee(t *testing.T) {
	fx := newFixture()
	file := fx.file("a.kt", "p")

	hidden := fx.class(file, "Hidden", types.ClassifierClass)
	hidden.Visibility = ir.Private
	ctor := fx.constructor(hidden)

	helper := fx.function(file, "helper", types.PrimUnit, ir.NewConstructorCall(ctor))
	helper.IsInline = true
	helper.Visibility = ir.Private

	api := fx.function(file, "api", types.PrimUnit, ir.NewCall(helper), ir.NewCall(helper), ir.NewConstructorCall(ctor))
	api.IsInline = true
	api.Visibility = ir.Internal

	diagnostics, _ := fx.lower(t, nil)
	if n := diagnostics.ErrorCount(); n != 1 {
		t.Errorf("got %d errors, want 1", n)
	}
}

func TestSampleLowering(t *testing.T) {
	s := newSample()

	if _, err := s.lower(t, nil); err != nil && err != report.ErrDiagnostics {
		t.Fatal(err)
	}

	// enums
	if n := len(declsOf[*ir.EnumEntry](s.color)); n != 0 {
		t.Errorf("enum still has %d entries", n)
	}

	var fieldNames []string
	for _, field := range declsOf[*ir.Field](s.color) {
		fieldNames = append(fieldNames, field.Name)
	}

	if diff := pretty.Diff(fieldNames, []string{"RED", "GREEN", "$VALUES"}); len(diff) > 0 {
		t.Errorf("enum fields: %v", diff)
	}

	for _, name := range []string{"values", "valueOf", "<clinit>"} {
		if findFunction(s.color, name) == nil {
			t.Errorf("enum has no %s function", name)
		}
	}

	ctor := s.color.Constructors()[0]
	if len(ctor.Params) != 2 || ctor.Params[0].Name != "$enum$name" || ctor.Params[1].Name != "$enum$ordinal" {
		t.Errorf("enum constructor parameters: %s", ir.Render(ctor))
	}

	// objects
	if instance, ok := s.registry.Decls[0].(*ir.Field); !ok || instance.Name != "INSTANCE" || !instance.IsStatic {
		t.Errorf("object does not start with its INSTANCE field: %s", ir.Describe(s.registry.Decls[0]))
	}

	if ctors := s.registry.Constructors(); len(ctors) != 1 || ctors[0].Visibility != ir.Private {
		t.Errorf("object constructor not private")
	}

	// interfaces
	impls := findClass(s.shape, "DefaultImpls")
	if impls == nil {
		t.Fatalf("interface has no DefaultImpls class")
	}

	area := findFunction(impls, "area")
	if area == nil || !area.IsStatic || len(area.Params) != 1 || area.Params[0].Name != "$this" {
		t.Errorf("DefaultImpls.area is not static with a $this parameter")
	}

	if abstract := findFunction(s.shape, "area"); abstract.Body != nil || abstract.Modality != ir.Abstract {
		t.Errorf("interface method kept its body")
	}

	// file classes
	mainKt := findClass(s.module.Files[0], "MainKt")
	if mainKt == nil {
		t.Fatalf("no file class")
	}

	rendered := ir.Render(findFunction(mainKt, "main"))
	for _, want := range []string{"GET_FIELD", "loop$1"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("main does not contain %s:\n%s", want, rendered)
		}
	}

	if strings.Contains(rendered, "GET_ENUM ") || strings.Contains(rendered, "GET_OBJECT ") {
		t.Errorf("singleton reads were not lowered:\n%s", rendered)
	}
}

func TestLoweringIsDeterministic(t *testing.T) {
	var renders []string
	for _, workers := range []int{1, 4} {
		s := newSample()
		if _, err := s.lower(t, &Config{Workers: workers}); err != nil && err != report.ErrDiagnostics {
			t.Fatal(err)
		}

		renders = append(renders, ir.Render(s.module))
	}

	if renders[0] != renders[1] {
		t.Errorf("lowering depends on the number of workers: %v", pretty.Diff(renders[0], renders[1]))
	}
}

func TestValidationFailure(t *testing.T) {
	fx := newFixture()
	file := fx.file("a.kt", "")

	// a read of a variable which is not declared anywhere
	stray := fx.f.NewVariable("x", types.PrimInt, nil, ir.OriginDefined)
	fx.function(file, "f", types.PrimUnit, ir.NewGetValue(stray))

	_, err := fx.lower(t, nil)

	verr, ok := errors.Cause(err).(*ValidationError)
	if !ok {
		t.Fatalf("got error %v, want a validation error", err)
	}

	if verr.Phase != "ValidateBeforeLowering" || verr.File != "a.kt" {
		t.Errorf("unexpected validation error %v", verr)
	}
}

func TestRunCancelled(t *testing.T) {
	s := newSample()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, s.module, nil, report.NewDiagnosticSink())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got error %v, want cancellation", err)
	}

	if findClass(s.module, "MainKt") != nil {
		t.Errorf("lowering ran after cancellation")
	}
}
