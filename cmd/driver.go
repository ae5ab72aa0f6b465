package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/kr/pretty"

	"irbackend/ir"
	"irbackend/irtoml"
	"irbackend/lower"
	"irbackend/report"
	"irbackend/typemap"
	"irbackend/util"
)

// Driver runs one lowering of a build profile.
type Driver struct {
	profile     *BuildProfile
	diagnostics *report.DiagnosticSink

	// stdout is where output goes when the profile names no output file.
	stdout io.Writer
}

// NewDriver creates a new driver for profile.
func NewDriver(profile *BuildProfile) *Driver {
	return &Driver{
		profile:     profile,
		diagnostics: report.NewDiagnosticSink(),
		stdout:      os.Stdout,
	}
}

// Run decodes the profile's input, lowers it and writes the result.  It
// returns whether lowering succeeded.
func (d *Driver) Run() bool {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	module, ok := d.decode()
	if !ok {
		return false
	}

	cfg := &lower.Config{Workers: d.profile.Workers, Toggles: d.profile.Phases}
	if d.profile.Debug && !d.dump(cfg) {
		return false
	}

	report.ReportBeginPhase("Lowering")
	mapper, err := lower.Run(ctx, module, cfg, d.diagnostics)
	report.ReportDiagnostics(d.diagnostics)

	success := err == nil
	if err != nil && err != report.ErrDiagnostics {
		report.ReportStdError("lowering", err)
	}

	report.ReportEndPhase(success)

	if success {
		report.ReportBeginPhase("Emitting")
		success = d.emit(module, mapper)
		report.ReportEndPhase(success)
	}

	report.ReportLoweringFinished(success, d.diagnostics.ErrorCount(), d.diagnostics.WarningCount())
	return success
}

// decode loads and validates the program description of the profile.
func (d *Driver) decode() (*ir.ModuleFragment, bool) {
	report.ReportBeginPhase("Decoding")

	module, err := irtoml.LoadFile(d.profile.InputPath)
	if err != nil {
		report.ReportStdError("decode", err)
		report.ReportEndPhase(false)
		return nil, false
	}

	if verr := lower.Validate(module, "decoded", false); verr != nil {
		report.ReportStdError("decode", verr)
		report.ReportEndPhase(false)
		return nil, false
	}

	report.ReportEndPhase(true)
	return module, true
}

// dump prints the profile and the steps the pipeline will run.
func (d *Driver) dump(cfg *lower.Config) bool {
	p, err := lower.BuildPipeline(cfg)
	if err != nil {
		report.ReportStdError("pipeline", err)
		return false
	}

	fmt.Fprintf(d.stdout, "%# v\n", pretty.Formatter(d.profile))

	for _, name := range d.profile.toggleNames() {
		fmt.Fprintf(d.stdout, "toggle %s = %v\n", name, d.profile.Phases[name])
	}

	steps := util.Map(p.Steps(), func(step lower.PhaseInfo) string { return step.Name })
	fmt.Fprintf(d.stdout, "steps: %s\n", strings.Join(steps, " "))
	return true
}

// emit writes the lowered module to the output of the profile.
func (d *Driver) emit(module *ir.ModuleFragment, mapper *typemap.Mapper) bool {
	var text string
	if d.profile.Native {
		text = emitNative(module, mapper)
	} else {
		text = ir.Render(module)
	}

	if d.profile.OutputPath == "" {
		fmt.Fprint(d.stdout, text)
		return true
	}

	if err := os.WriteFile(d.profile.OutputPath, []byte(text), 0644); err != nil {
		report.ReportStdError("output", err)
		return false
	}

	return true
}
