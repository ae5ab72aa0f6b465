package lower

import (
	"path"
	"strings"
	"unicode"

	"irbackend/ir"
	"irbackend/types"
)

// FileClasses moves the top-level functions and properties of each file into
// a synthetic file class.  Top-level classes and type aliases stay where they
// are.
func FileClasses() Phase[*ir.ModuleFragment] {
	return ModulePass("FileClasses", "Put top-level functions and properties into file classes",
		func(lc *Context) ModuleLoweringPass {
			return &fileClassLowering{factory: ir.NewFactory(nil)}
		},
	)
}

type fileClassLowering struct {
	factory *ir.Factory
}

func (fcl *fileClassLowering) LowerModule(module *ir.ModuleFragment) {
	for _, file := range module.Files {
		fcl.lowerFile(file)
	}
}

func (fcl *fileClassLowering) lowerFile(file *ir.File) {
	var members, rest []ir.Declaration
	for _, decl := range file.Decls {
		switch decl.(type) {
		case *ir.SimpleFunction, *ir.Property:
			members = append(members, decl)
		default:
			rest = append(rest, decl)
		}
	}

	if len(members) == 0 {
		return
	}

	cls := fcl.factory.NewClass(FileClassName(file), types.ClassifierClass, ir.OriginFileClass)
	cls.Supertypes = []types.Type{types.AnyType}
	cls.Parent = file

	for _, member := range members {
		if fn, ok := member.(*ir.SimpleFunction); ok {
			fn.IsStatic = true
		}

		cls.AddDeclaration(member)
	}

	file.Decls = append(rest, cls)
}

// FileClassName returns the simple name of the class holding the top-level
// members of file.  Parts of a multifile facade get a name derived from both
// the facade and the file.
func FileClassName(file *ir.File) string {
	base := path.Base(file.Name)
	base = strings.TrimSuffix(base, path.Ext(base))

	sb := strings.Builder{}
	for i, r := range base {
		switch {
		case i == 0:
			sb.WriteRune(unicode.ToUpper(r))
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}

	sb.WriteString("Kt")

	switch {
	case file.IsMultifilePart && file.FacadeName != "":
		return file.FacadeName + "__" + sb.String()
	case file.FacadeName != "":
		return file.FacadeName
	default:
		return sb.String()
	}
}

// fileClassOf returns the file class of file or nil if it has none.
func fileClassOf(file *ir.File) *ir.Class {
	for _, decl := range file.Decls {
		if cls, ok := decl.(*ir.Class); ok && cls.Origin == ir.OriginFileClass {
			return cls
		}
	}

	return nil
}
