package lower

import (
	"context"

	"github.com/pkg/errors"

	"irbackend/ir"
	"irbackend/report"
	"irbackend/typemap"
)

// Pipeline is the ordered lowering pipeline of one compilation.
type Pipeline struct {
	cfg  *Config
	root Phase[*ir.ModuleFragment]
}

// The per-file block: every phase from StartTrackingClasses to
// StopTrackingClasses runs over one file at a time.  The order is curated:
// each phase may rely on the output of the phases before it.
func perFilePhases() Phase[*FileContext] {
	return Sequence("PerFile",
		StartTrackingClasses(),
		TypeAliases(),
		ProvisionalFunctionExpression(),
		Lateinit(),
		InventNamesForLocalClasses(),
		FunctionReferences(),
		AddContinuation(),
		Properties(),
		InlineClasses(),
		Tailrec(),
		TypeOperators(),
		FlattenStringConcatenation(),
		LocalClassPopup(),
		DefaultConstructors(),
		Interfaces(),
		EnumClasses(),
		ObjectClasses(),
		Initializers(),
		InitializersCleanup(),
		StaticInitializers(),
		UniqueLoopLabels(),
		RenameFields(),
		Annotations(),
		PrivateTypeFromInternalInline(),
		Experimental(Optimization()),
		StopTrackingClasses(),
	)
}

// BuildPipeline builds the lowering pipeline for cfg.  It fails if cfg toggles
// a phase which does not exist or which cannot be turned off.
func BuildPipeline(cfg *Config) (p *Pipeline, err error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	defer report.CatchFault(&err)

	root := Sequence("Lowering",
		ValidateBeforeLowering(),
		ExpectDeclarationRemover(),
		ConstEvaluation(),
		FileClasses(),
		PerformByFile("PerFile", "Lower each file", perFilePhases()),
		MultifileFacades(),
		ValidateAfterLowering(),
	)

	if err := cfg.checkToggles(root.Steps()); err != nil {
		return nil, err
	}

	return &Pipeline{cfg: cfg, root: root}, nil
}

// Steps returns the lowering steps of the pipeline in execution order.
func (p *Pipeline) Steps() []PhaseInfo {
	return p.root.Steps()
}

// Run lowers module in place.  It returns the type mapper used during
// lowering so code generation can reuse its mappings.  Internal faults and
// validation failures abort the pipeline and are returned immediately; user
// diagnostics accumulate in diagnostics and make Run return
// report.ErrDiagnostics once the whole pipeline has run.
func (p *Pipeline) Run(ctx context.Context, module *ir.ModuleFragment, diagnostics *report.DiagnosticSink) (*typemap.Mapper, error) {
	lc := NewContext(module, p.cfg, diagnostics)

	if err := p.root.Invoke(ctx, lc, module); err != nil {
		return lc.Mapper, err
	}

	if diagnostics.HasErrors() {
		return lc.Mapper, report.ErrDiagnostics
	}

	return lc.Mapper, nil
}

// Run builds the pipeline for cfg and runs it over module.
func Run(ctx context.Context, module *ir.ModuleFragment, cfg *Config, diagnostics *report.DiagnosticSink) (*typemap.Mapper, error) {
	p, err := BuildPipeline(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "building lowering pipeline")
	}

	return p.Run(ctx, module, diagnostics)
}
