package lower

import (
	"strconv"
	"sync"

	"irbackend/ir"
	"irbackend/report"
	"irbackend/typemap"
	"irbackend/types"
)

// Context is the state shared by every phase of one lowering run.  Whole
// program phases may use all of it; phases inside the per-file block run
// concurrently and must only touch the concurrency-safe parts: the config, the
// diagnostic sink, the type mapper, the snapshots taken before lowering and
// the memoized synthetic declarations.
//
// Files lowered concurrently never write declarations of other files, but a
// file does rewrite the signatures of its own functions: AddContinuation
// appends a parameter and changes the return type of suspend functions.
// Another file may therefore read the flags of a foreign declaration, which
// no pass changes, but must read its parameters and return type through the
// shape and constructor snapshots taken at context creation (shapeOf,
// noArgConstructor).
type Context struct {
	Config      *Config
	Diagnostics *report.DiagnosticSink
	Mapper      *typemap.Mapper
	Module      *ir.ModuleFragment
	Intrinsics  *ir.Intrinsics

	// constructors are the constructors of every class of the module as
	// declared before lowering.
	constructors map[*ir.ClassSymbol][]*ir.Constructor

	// shapes are the receivers, parameters and results of every function of
	// the module as declared before lowering.
	shapes map[*ir.FunctionSymbol]*funcShape

	// external is the set of declarations compiled outside the module.
	external map[ir.Symbol]bool

	// staticFields holds the static fields created on demand for enum entries
	// and object instances keyed by the symbol they stand for.  Files refer to
	// enum entries and objects declared in other files, so the field for a
	// declaration may be requested by any file before or after the file
	// declaring it is lowered.
	staticFieldsMu sync.Mutex
	staticFields   map[ir.Symbol]*ir.Field

	// defaultCtors holds the default constructors invented for classes which
	// declare none.  Subclasses in other files delegate to them.
	defaultCtorsMu sync.Mutex
	defaultCtors   map[*ir.ClassSymbol]*ir.Constructor
}

// NewContext creates the context of a lowering run over module.
func NewContext(module *ir.ModuleFragment, cfg *Config, diagnostics *report.DiagnosticSink) *Context {
	lc := &Context{
		Config:       cfg,
		Diagnostics:  diagnostics,
		Mapper:       typemap.NewMapper(),
		Module:       module,
		Intrinsics:   ir.EnsureIntrinsics(module),
		constructors: make(map[*ir.ClassSymbol][]*ir.Constructor),
		shapes:       make(map[*ir.FunctionSymbol]*funcShape),
		external:     make(map[ir.Symbol]bool),
		staticFields: make(map[ir.Symbol]*ir.Field),
		defaultCtors: make(map[*ir.ClassSymbol]*ir.Constructor),
	}

	ir.Walk(module, func(elem ir.Element) {
		switch v := elem.(type) {
		case *ir.Class:
			lc.constructors[v.Symbol] = v.Constructors()
		case ir.Function:
			lc.shapes[v.FuncSymbol()] = shapeOf(v)
		}
	})

	for _, ext := range module.Externals {
		ir.Walk(ext, func(elem ir.Element) {
			if decl, ok := elem.(ir.Declaration); ok && decl.DeclSymbol() != nil {
				lc.external[decl.DeclSymbol()] = true
			}
		})
	}

	return lc
}

// isExternal returns whether sym is declared outside the module.
func (lc *Context) isExternal(sym ir.Symbol) bool {
	return lc.external[sym]
}

// funcShape is the part of a function signature callers depend on.
type funcShape struct {
	dispatch, extension types.Type
	params              []types.Type
	result              types.Type

	// continuation is set if the last parameter is an explicit continuation.
	continuation bool
}

func shapeOf(fn ir.Function) *funcShape {
	fb := fn.FuncBase()

	shape := &funcShape{result: fb.ReturnType, continuation: typemap.HasContinuationParam(fn)}
	if fb.DispatchReceiver != nil {
		shape.dispatch = fb.DispatchReceiver.Type
	}

	if fb.ExtensionReceiver != nil {
		shape.extension = fb.ExtensionReceiver.Type
	}

	for _, param := range fb.Params {
		shape.params = append(shape.params, param.Type)
	}

	return shape
}

// shapeOf returns the shape sym had before lowering.  Functions created
// during lowering belong to the file creating them and are read directly.
func (lc *Context) shapeOf(sym *ir.FunctionSymbol) *funcShape {
	if shape, ok := lc.shapes[sym]; ok {
		return shape
	}

	return shapeOf(sym.Owner())
}

// staticFieldFor returns the static field standing for sym, calling build to
// create it the first time it is requested.
func (lc *Context) staticFieldFor(sym ir.Symbol, build func() *ir.Field) *ir.Field {
	lc.staticFieldsMu.Lock()
	defer lc.staticFieldsMu.Unlock()

	if field, ok := lc.staticFields[sym]; ok {
		return field
	}

	field := build()
	lc.staticFields[sym] = field
	return field
}

// enumEntryField returns the static field holding entry.
func (lc *Context) enumEntryField(entry *ir.EnumEntry) *ir.Field {
	return lc.staticFieldFor(entry.Symbol, func() *ir.Field {
		enumClass, ok := entry.Parent.(*ir.Class)
		if !ok {
			report.Fault("enum entry %s is not declared in a class", entry.Name)
		}

		field := ir.NewFactory(nil).NewField(entry.Name, enumClass.DefaultType(), ir.OriginEnumEntryField)
		field.IsStatic = true
		field.IsFinal = true
		field.Parent = enumClass
		ir.CopyAttributesFrom(field, entry)
		return field
	})
}

// objectInstanceField returns the static field holding the instance of
// object cls.
func (lc *Context) objectInstanceField(cls *ir.Class) *ir.Field {
	return lc.staticFieldFor(cls.Symbol, func() *ir.Field {
		field := ir.NewFactory(nil).NewField("INSTANCE", cls.DefaultType(), ir.OriginObjectInstance)
		field.IsStatic = true
		field.IsFinal = true
		field.Parent = cls
		return field
	})
}

// noArgConstructor returns the constructor of the class sym refers to which
// can be called without arguments.  Classes without declared constructors
// get their default constructor.  It returns nil for classes compiled outside
// the module.
func (lc *Context) noArgConstructor(sym *ir.ClassSymbol) *ir.Constructor {
	if lc.isExternal(sym) {
		return nil
	}

	ctors, ok := lc.constructors[sym]
	if !ok {
		return nil
	}

	if len(ctors) == 0 {
		return lc.defaultConstructorFor(sym.Owner())
	}

	for _, ctor := range ctors {
		if allDefaulted(ctor.Params) {
			return ctor
		}
	}

	report.Fault("class %s has no constructor callable without arguments", sym.Owner().Name)
	return nil
}

func allDefaulted(params []*ir.ValueParameter) bool {
	for _, param := range params {
		if param.DefaultValue == nil && param.VarargElementType == nil {
			return false
		}
	}

	return true
}

// defaultConstructorFor returns the default constructor of cls, building it
// the first time it is requested.  The constructor is not added to cls.
func (lc *Context) defaultConstructorFor(cls *ir.Class) *ir.Constructor {
	lc.defaultCtorsMu.Lock()
	ctor, ok := lc.defaultCtors[cls.Symbol]
	lc.defaultCtorsMu.Unlock()

	if ok {
		return ctor
	}

	// building may recurse into the superclass so it runs unlocked
	ctor = buildDefaultConstructor(lc, cls)

	lc.defaultCtorsMu.Lock()
	defer lc.defaultCtorsMu.Unlock()

	if existing, ok := lc.defaultCtors[cls.Symbol]; ok {
		return existing
	}

	lc.defaultCtors[cls.Symbol] = ctor
	return ctor
}

// -----------------------------------------------------------------------------

// FileContext is the state of the per-file block for one file.  Each file
// gets its own class registry and factory so files can be lowered
// concurrently.
type FileContext struct {
	*Context

	File *ir.File

	// Registry tracks the classes of the file between StartTrackingClasses
	// and StopTrackingClasses.
	Registry *ir.ClassRegistry

	// Factory creates declarations for the file.  Classes created through it
	// are recorded in Registry while tracking is active.
	Factory *ir.Factory

	// tempCounter is a counter for temporary names.
	tempCounter int

	// localNames counts the anonymous classes invented under each name
	// prefix.
	localNames map[string]int
}

func newFileContext(lc *Context, file *ir.File) *FileContext {
	registry := ir.NewClassRegistry()

	return &FileContext{
		Context:    lc,
		File:       file,
		Registry:   registry,
		Factory:    ir.NewFactory(registry),
		localNames: make(map[string]int),
	}
}

// tempName returns a fresh name for a temporary variable.
func (fc *FileContext) tempName(prefix string) string {
	fc.tempCounter++
	return prefix + "$" + strconv.Itoa(fc.tempCounter)
}

// temporary creates a temporary variable initialized to init.  Its parent is
// fixed up by patchParents once the pass is done.
func (fc *FileContext) temporary(prefix string, init ir.Expression, origin *ir.Origin) *ir.Variable {
	return fc.Factory.NewVariable(fc.tempName(prefix), init.Type(), init, origin)
}

// inventLocalName returns the next invented name under prefix: prefix$1,
// prefix$2 and so on.
func (fc *FileContext) inventLocalName(prefix string) string {
	fc.localNames[prefix]++
	return prefix + "$" + strconv.Itoa(fc.localNames[prefix])
}

// patchParents resets the parents of every declaration of the file after a
// pass has moved declarations or introduced temporaries.
func (fc *FileContext) patchParents() {
	ir.PatchDeclarationParents(fc.File, nil)
}

// reportError reports an error diagnostic located at elem.
func (fc *FileContext) reportError(code string, elem ir.Element, msg string, args ...interface{}) {
	fc.Diagnostics.Errorf(code, fc.File.Name, elem.Span(), msg, args...)
}

// -----------------------------------------------------------------------------

// superclassOf returns the class cls extends if it is declared in the module
// or among the externals.  Interfaces and builtin supertypes are skipped.
func superclassOf(cls *ir.Class) *ir.ClassSymbol {
	for _, st := range cls.Supertypes {
		ct, ok := types.NotNull(st).(*types.ClassType)
		if !ok {
			continue
		}

		if sym, ok := ct.Classifier.(*ir.ClassSymbol); ok && sym.ClassifierKind() != types.ClassifierInterface {
			return sym
		}
	}

	return nil
}

// unitResult returns whether fn returns Unit.
func unitResult(fn ir.Function) bool {
	return types.IsUnit(fn.FuncBase().ReturnType)
}
