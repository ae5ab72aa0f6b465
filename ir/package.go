package ir

// ModuleFragment is the root of one compilation unit.
type ModuleFragment struct {
	ElementBase

	// Name is the name of the module.
	Name string

	// Files are the source files of the module in compilation order.
	Files []*File

	// Externals hold the declarations the module refers to which are not
	// compiled as part of it: builtins and intrinsics.
	Externals []*ExternalPackageFragment
}

func (mf *ModuleFragment) Kind() Kind {
	return KindModuleFragment
}

func (mf *ModuleFragment) WalkChildren(fn func(Element)) {
	walkList(mf.Files, fn)
	walkList(mf.Externals, fn)
}

func (mf *ModuleFragment) RewriteChildren(fn func(Element) Element) {
	mf.Files = rewriteList(mf.Files, fn)
	mf.Externals = rewriteList(mf.Externals, fn)
}

// AddFile appends a file to the module.
func (mf *ModuleFragment) AddFile(file *File) {
	file.Module = mf
	mf.Files = append(mf.Files, file)
}

// -----------------------------------------------------------------------------

// File is a single source file.
type File struct {
	ElementBase

	// Module is the module containing the file.
	Module *ModuleFragment

	// Name is the path of the file relative to the module root.
	Name string

	// PackageName is the dot-separated name of the file's package.
	PackageName string

	// FacadeName is the explicit name of the class holding the file's
	// top-level members.  If it is empty, the name is derived from Name.
	FacadeName string

	// IsMultifilePart indicates that the file's top-level members are also
	// exposed through a facade class shared with other files of the same
	// package and facade name.
	IsMultifilePart bool

	// Decls are the top-level declarations of the file.
	Decls []Declaration
}

func (f *File) Kind() Kind {
	return KindFile
}

func (f *File) WalkChildren(fn func(Element)) {
	walkList(f.Decls, fn)
}

func (f *File) RewriteChildren(fn func(Element) Element) {
	f.Decls = rewriteList(f.Decls, fn)
}

func (f *File) DeclarationList() *[]Declaration {
	return &f.Decls
}

func (f *File) isDeclarationParent() {}

// -----------------------------------------------------------------------------

// ExternalPackageFragment holds declarations visible to the module which are
// compiled elsewhere.
type ExternalPackageFragment struct {
	ElementBase

	PackageName string
	Decls       []Declaration
}

func (ef *ExternalPackageFragment) Kind() Kind {
	return KindExternalPackageFragment
}

func (ef *ExternalPackageFragment) WalkChildren(fn func(Element)) {
	walkList(ef.Decls, fn)
}

func (ef *ExternalPackageFragment) RewriteChildren(fn func(Element) Element) {
	ef.Decls = rewriteList(ef.Decls, fn)
}

func (ef *ExternalPackageFragment) DeclarationList() *[]Declaration {
	return &ef.Decls
}

func (ef *ExternalPackageFragment) isDeclarationParent() {}
