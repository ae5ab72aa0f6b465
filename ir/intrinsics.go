package ir

import (
	"irbackend/report"
	"irbackend/types"
)

// IntrinsicsPackage is the package of the external fragment holding the
// intrinsic functions.
const IntrinsicsPackage = "kotlin.internal.ir"

// Intrinsics are the functions the code generator implements directly:
// primitive arithmetic, comparisons and the runtime helpers lowerings call.
// They live in an external package fragment of the module so that every call
// to them resolves within the unit.
type Intrinsics struct {
	Fragment *ExternalPackageFragment

	byName map[string]*SimpleFunction
	names  map[*FunctionSymbol]string
}

// intrinsicSig describes one intrinsic: its name, return type and parameter
// types.
type intrinsicSig struct {
	name   string
	ret    types.Type
	params []types.Type
}

var intrinsicSigs = []intrinsicSig{
	{"Int.plus", types.PrimInt, []types.Type{types.PrimInt, types.PrimInt}},
	{"Int.minus", types.PrimInt, []types.Type{types.PrimInt, types.PrimInt}},
	{"Int.times", types.PrimInt, []types.Type{types.PrimInt, types.PrimInt}},
	{"Int.less", types.PrimBoolean, []types.Type{types.PrimInt, types.PrimInt}},
	{"Int.greater", types.PrimBoolean, []types.Type{types.PrimInt, types.PrimInt}},
	{"Long.plus", types.PrimLong, []types.Type{types.PrimLong, types.PrimLong}},
	{"Long.minus", types.PrimLong, []types.Type{types.PrimLong, types.PrimLong}},
	{"Long.times", types.PrimLong, []types.Type{types.PrimLong, types.PrimLong}},
	{"Boolean.not", types.PrimBoolean, []types.Type{types.PrimBoolean}},
	{"EQEQ", types.PrimBoolean, []types.Type{types.NullableAnyType, types.NullableAnyType}},
	{"String.plus", types.StringType, []types.Type{types.StringType, types.NullableAnyType}},
	{"throwUninitializedPropertyAccessException", types.PrimNothing, []types.Type{types.StringType}},
}

// EnsureIntrinsics returns the intrinsics of module, adding their external
// fragment to the module if it does not have one yet.  It must not be called
// concurrently with other mutations of the module.
func EnsureIntrinsics(module *ModuleFragment) *Intrinsics {
	for _, ext := range module.Externals {
		if ext.PackageName == IntrinsicsPackage {
			return indexIntrinsics(ext)
		}
	}

	ext := &ExternalPackageFragment{PackageName: IntrinsicsPackage}
	f := NewFactory(nil)

	for _, sig := range intrinsicSigs {
		fn := f.NewFunction(sig.name, sig.ret, OriginDefined)
		fn.IsExternal = true
		fn.IsStatic = true

		for i, pt := range sig.params {
			f.AddParam(fn, string(rune('a'+i)), pt, OriginDefined)
		}

		fn.Parent = ext
		ext.Decls = append(ext.Decls, fn)
	}

	module.Externals = append(module.Externals, ext)
	return indexIntrinsics(ext)
}

func indexIntrinsics(ext *ExternalPackageFragment) *Intrinsics {
	in := &Intrinsics{
		Fragment: ext,
		byName:   make(map[string]*SimpleFunction),
		names:    make(map[*FunctionSymbol]string),
	}

	for _, decl := range ext.Decls {
		if fn, ok := decl.(*SimpleFunction); ok {
			in.byName[fn.Name] = fn
			in.names[fn.Symbol] = fn.Name
		}
	}

	return in
}

// Named returns the intrinsic with the given name.  An unknown name is an
// internal fault.
func (in *Intrinsics) Named(name string) *SimpleFunction {
	fn, ok := in.byName[name]
	if !ok {
		report.Fault("unknown intrinsic %s", name)
	}

	return fn
}

// Lookup returns the intrinsic with the given name if there is one.
func (in *Intrinsics) Lookup(name string) (*SimpleFunction, bool) {
	fn, ok := in.byName[name]
	return fn, ok
}

// NameOf returns the intrinsic name of the function sym refers to and whether
// it is an intrinsic at all.
func (in *Intrinsics) NameOf(sym *FunctionSymbol) (string, bool) {
	name, ok := in.names[sym]
	return name, ok
}

// Call creates a call to the named intrinsic.
func (in *Intrinsics) Call(name string, args ...Expression) *Call {
	return NewCall(in.Named(name), args...)
}
