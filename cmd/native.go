package cmd

import (
	"fmt"
	"strings"

	llir "github.com/llir/llvm/ir"

	"irbackend/ir"
	"irbackend/typemap"
)

// emitNative projects the functions of a lowered module onto LLVM function
// declarations.  Classes become named opaque structs.
func emitNative(module *ir.ModuleFragment, mapper *typemap.Mapper) string {
	m := llir.NewModule()
	m.SourceFilename = module.Name

	seen := make(map[string]int)
	for _, file := range module.Files {
		ir.Walk(file, func(elem ir.Element) {
			fn, ok := elem.(ir.Function)
			if !ok {
				return
			}

			name, receiver := nativeName(fn, mapper)
			if n := seen[name]; n > 0 {
				seen[name]++
				name = fmt.Sprintf("%s.%d", name, n)
			} else {
				seen[name] = 1
			}

			sig := mapper.MapFunction(fn)
			ft := mapper.NativeMethodType(sig.Descriptor, receiver)

			names := nativeParamNames(fn, receiver != "")
			params := make([]*llir.Param, len(ft.Params))
			for i, pt := range ft.Params {
				pname := fmt.Sprintf("p%d", i)
				if i < len(names) {
					pname = names[i]
				}

				params[i] = llir.NewParam(pname, pt)
			}

			m.NewFunc(name, ft.RetType, params...)
		})
	}

	for _, st := range mapper.NativeClassTypes() {
		m.NewTypeDef(st.Name(), st)
	}

	return m.String()
}

// nativeName returns the symbol name of fn and the internal name of its
// receiver class, which is empty if fn takes no dispatch receiver.
func nativeName(fn ir.Function, mapper *typemap.Mapper) (string, string) {
	fb := fn.FuncBase()
	name := mapper.MapFunction(fn).Name

	cls, ok := fb.Parent.(*ir.Class)
	if !ok {
		return name, ""
	}

	owner := mapper.ClassInternalName(cls.Symbol)
	name = strings.ReplaceAll(owner, "/", ".") + "." + name

	if fb.DispatchReceiver == nil && fn.Kind() != ir.KindConstructor {
		return name, ""
	}

	return name, owner
}

// nativeParamNames returns the names of the native parameters of fn.  Any
// parameter the mapping adds beyond these is named by position.
func nativeParamNames(fn ir.Function, hasReceiver bool) []string {
	fb := fn.FuncBase()

	var names []string
	if hasReceiver {
		names = append(names, "this")
	}

	if fb.ExtensionReceiver != nil {
		names = append(names, "receiver")
	}

	for _, param := range fb.Params {
		names = append(names, param.Name)
	}

	return names
}
