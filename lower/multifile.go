package lower

import (
	"irbackend/ir"
	"irbackend/types"
)

// MultifileFacades generates a facade class for each group of multifile
// parts sharing a package and facade name.  The facade delegates each public
// static function of the parts' file classes.
func MultifileFacades() Phase[*ir.ModuleFragment] {
	return ModulePass("MultifileFacades", "Generate facade classes for multifile parts",
		func(lc *Context) ModuleLoweringPass {
			return &multifileFacades{factory: ir.NewFactory(nil)}
		},
	)
}

type multifileFacades struct {
	factory *ir.Factory
}

type facadeKey struct {
	pkg, name string
}

func (mf *multifileFacades) LowerModule(module *ir.ModuleFragment) {
	var order []facadeKey
	parts := make(map[facadeKey][]*ir.File)

	for _, file := range module.Files {
		if !file.IsMultifilePart || file.FacadeName == "" {
			continue
		}

		key := facadeKey{file.PackageName, file.FacadeName}
		if _, ok := parts[key]; !ok {
			order = append(order, key)
		}

		parts[key] = append(parts[key], file)
	}

	for _, key := range order {
		mf.generateFacade(key.name, parts[key])
	}
}

func (mf *multifileFacades) generateFacade(name string, files []*ir.File) {
	facade := mf.factory.NewClass(name, types.ClassifierClass, ir.OriginMultifileFacade)
	facade.Supertypes = []types.Type{types.AnyType}

	for _, file := range files {
		part := fileClassOf(file)
		if part == nil {
			continue
		}

		for _, decl := range part.Decls {
			fn, ok := decl.(*ir.SimpleFunction)
			if !ok || !fn.IsStatic || fn.Visibility != ir.Public || fn.Origin == ir.OriginStaticInitializer {
				continue
			}

			facade.AddDeclaration(mf.delegate(fn, facade))
		}
	}

	host := files[0]
	facade.Parent = host
	host.Decls = append(host.Decls, facade)
}

// delegate creates a facade member forwarding its arguments to fn.
func (mf *multifileFacades) delegate(fn *ir.SimpleFunction, facade *ir.Class) *ir.SimpleFunction {
	del := ir.DeepCopy(fn, facade)
	del.Origin = ir.OriginMultifileFacade

	// the delegate only forwards: it never calls itself and has a body
	del.IsTailrec = false
	del.IsExternal = false

	call := ir.NewCall(fn)
	if del.ExtensionReceiver != nil {
		call.ExtensionReceiver = ir.NewGetValue(del.ExtensionReceiver)
	}

	for _, param := range del.Params {
		call.Args = append(call.Args, ir.NewGetValue(param))
	}

	for _, tp := range del.TypeParams {
		call.TypeArgs = append(call.TypeArgs, tp.Symbol.Type())
	}

	del.Body = &ir.BlockBody{Statements: []ir.Statement{ir.NewReturn(del, call)}}
	return del
}
