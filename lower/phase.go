package lower

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"irbackend/ir"
	"irbackend/report"
)

// Phase is a named fragment of the lowering pipeline operating on scopes of
// type S: the whole module or a single file.  Fragments compose with Then
// into longer fragments of the same granularity, and PerformByFile lifts a
// per-file fragment to a whole-module one.
type Phase[S any] interface {
	// Name returns the name of the phase.
	Name() string

	// Steps returns the descriptions of the lowering steps making up the
	// phase in execution order.
	Steps() []PhaseInfo

	// Invoke runs the phase over scope.  Cancellation of ctx is observed
	// between steps only.
	Invoke(ctx context.Context, lc *Context, scope S) error
}

// PhaseInfo describes a single lowering step.
type PhaseInfo struct {
	Name        string
	Description string

	// Scope is "module" or "file".
	Scope string

	// DefaultEnabled indicates whether the step runs when no toggle names it.
	DefaultEnabled bool

	// Required steps always run.  Bracket and validation steps are required.
	Required bool
}

// -----------------------------------------------------------------------------

// step is a single lowering step.
type step[S any] struct {
	info  PhaseInfo
	lower func(lc *Context, scope S) error
}

func (s *step[S]) Name() string {
	return s.info.Name
}

func (s *step[S]) Steps() []PhaseInfo {
	return []PhaseInfo{s.info}
}

func (s *step[S]) Invoke(ctx context.Context, lc *Context, scope S) (err error) {
	if !lc.Config.enabled(s.info) {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	defer func() {
		if err != nil {
			err = errors.Wrapf(err, "phase %s", s.info.Name)
		}
	}()

	// internal faults raised by the pass are converted into errors here
	defer report.CatchFault(&err)

	return s.lower(lc, scope)
}

// sequence runs its phases in order.
type sequence[S any] struct {
	name   string
	phases []Phase[S]
}

func (sq *sequence[S]) Name() string {
	return sq.name
}

func (sq *sequence[S]) Steps() []PhaseInfo {
	var steps []PhaseInfo
	for _, phase := range sq.phases {
		steps = append(steps, phase.Steps()...)
	}

	return steps
}

func (sq *sequence[S]) Invoke(ctx context.Context, lc *Context, scope S) error {
	for _, phase := range sq.phases {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := phase.Invoke(ctx, lc, scope); err != nil {
			return err
		}
	}

	return nil
}

// Then composes two phases so that second runs on the output of first.
func Then[S any](first, second Phase[S]) Phase[S] {
	var phases []Phase[S]
	for _, phase := range []Phase[S]{first, second} {
		if sq, ok := phase.(*sequence[S]); ok {
			phases = append(phases, sq.phases...)
		} else {
			phases = append(phases, phase)
		}
	}

	return &sequence[S]{name: first.Name() + " then " + second.Name(), phases: phases}
}

// Sequence folds phases with Then into one named phase.
func Sequence[S any](name string, phases ...Phase[S]) Phase[S] {
	if len(phases) == 0 {
		return &sequence[S]{name: name}
	}

	result := phases[0]
	for _, phase := range phases[1:] {
		result = Then(result, phase)
	}

	if sq, ok := result.(*sequence[S]); ok {
		return &sequence[S]{name: name, phases: sq.phases}
	}

	return &sequence[S]{name: name, phases: []Phase[S]{result}}
}

// -----------------------------------------------------------------------------

// perFile runs a per-file phase over every file of the module.
type perFile struct {
	name        string
	description string
	filePhase   Phase[*FileContext]
}

// PerformByFile lifts a per-file phase to a module phase.  Each file gets its
// own file context and runs the whole of filePhase in order.  Up to
// Config.Workers files are lowered concurrently; the first failing file
// cancels the others at their next step boundary.
func PerformByFile(name, description string, filePhase Phase[*FileContext]) Phase[*ir.ModuleFragment] {
	return &perFile{name: name, description: description, filePhase: filePhase}
}

func (pf *perFile) Name() string {
	return pf.name
}

func (pf *perFile) Steps() []PhaseInfo {
	return pf.filePhase.Steps()
}

func (pf *perFile) Invoke(ctx context.Context, lc *Context, module *ir.ModuleFragment) error {
	report.ReportBeginPhase(pf.name)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lc.Config.workers())

	for _, file := range module.Files {
		file := file

		g.Go(func() error {
			fc := newFileContext(lc, file)
			if err := pf.filePhase.Invoke(gctx, lc, fc); err != nil {
				return errors.Wrapf(err, "file %s", file.Name)
			}

			return nil
		})
	}

	err := g.Wait()
	report.ReportEndPhase(err == nil)
	return err
}

// -----------------------------------------------------------------------------

// FileLoweringPass is a pass lowering one file at a time.
type FileLoweringPass interface {
	LowerFile(file *ir.File)
}

// ModuleLoweringPass is a pass which needs the whole module at once, usually
// because it creates declarations shared by several files.
type ModuleLoweringPass interface {
	LowerModule(module *ir.ModuleFragment)
}

// ClassLoweringPass is a pass lowering each tracked class of a file.  It may
// only run between StartTrackingClasses and StopTrackingClasses.
type ClassLoweringPass interface {
	LowerClass(cls *ir.Class)
}

// FilePass creates a per-file step from a file lowering pass factory.
func FilePass(name, description string, factory func(fc *FileContext) FileLoweringPass) Phase[*FileContext] {
	return &step[*FileContext]{
		info: PhaseInfo{Name: name, Description: description, Scope: "file", DefaultEnabled: true},
		lower: func(lc *Context, fc *FileContext) error {
			factory(fc).LowerFile(fc.File)
			return nil
		},
	}
}

// ClassPass creates a per-file step running a class lowering pass over the
// classes tracked so far.  Classes the pass creates while it runs are tracked
// but not visited: the iteration is bounded by the registry size at entry.
func ClassPass(name, description string, factory func(fc *FileContext) ClassLoweringPass) Phase[*FileContext] {
	return &step[*FileContext]{
		info: PhaseInfo{Name: name, Description: description, Scope: "file", DefaultEnabled: true},
		lower: func(lc *Context, fc *FileContext) error {
			if !fc.Registry.IsActive() {
				report.Fault("class pass %s runs outside of the class tracking window", name)
			}

			pass := factory(fc)
			fc.Registry.Each(pass.LowerClass)
			return nil
		},
	}
}

// ModulePass creates a module step from a module lowering pass factory.
func ModulePass(name, description string, factory func(lc *Context) ModuleLoweringPass) Phase[*ir.ModuleFragment] {
	return &step[*ir.ModuleFragment]{
		info: PhaseInfo{Name: name, Description: description, Scope: "module", DefaultEnabled: true},
		lower: func(lc *Context, module *ir.ModuleFragment) error {
			report.ReportBeginPhase(name)
			factory(lc).LowerModule(module)
			report.ReportEndPhase(true)
			return nil
		},
	}
}

// Experimental marks a step as disabled unless toggled on.
func Experimental[S any](phase Phase[S]) Phase[S] {
	if s, ok := phase.(*step[S]); ok {
		s.info.DefaultEnabled = false
		return s
	}

	report.Fault("only single steps can be marked experimental")
	return nil
}

// Required marks a step as impossible to toggle off.
func Required[S any](phase Phase[S]) Phase[S] {
	if s, ok := phase.(*step[S]); ok {
		s.info.Required = true
		return s
	}

	report.Fault("only single steps can be marked required")
	return nil
}
