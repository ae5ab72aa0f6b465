package irtoml

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"irbackend/ir"
	"irbackend/types"
)

// Decode decodes the module description in buff into a module fragment whose
// declaration parents are set and whose intrinsics are installed.
func Decode(buff []byte) (*ir.ModuleFragment, error) {
	tomlMod := &tomlModule{}
	if err := toml.Unmarshal(buff, tomlMod); err != nil {
		return nil, errors.Wrap(err, "parsing module description")
	}

	if err := validateModule(tomlMod); err != nil {
		return nil, err
	}

	return newDecoder(tomlMod.Name).decode(tomlMod)
}

// LoadFile reads and decodes the module description at path.
func LoadFile(path string) (*ir.ModuleFragment, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading module description at `%s`", path)
	}

	module, err := Decode(buff)
	if err != nil {
		return nil, errors.Wrapf(err, "module description at `%s`", path)
	}

	return module, nil
}

// validateModule checks the parts of the description which do not depend on
// name resolution.
func validateModule(tomlMod *tomlModule) error {
	if tomlMod.Name == "" {
		return errors.New("missing module name")
	}

	if !isValidPath(tomlMod.Name) {
		return errors.Errorf("module name `%s` must be a valid identifier", tomlMod.Name)
	}

	seen := make(map[string]bool)
	for _, tf := range tomlMod.Files {
		if tf.Name == "" {
			return errors.New("file with no name")
		}

		if seen[tf.Name] {
			return errors.Errorf("file `%s` is declared more than once", tf.Name)
		}
		seen[tf.Name] = true

		if tf.Package != "" && !isValidPath(tf.Package) {
			return errors.Errorf("file %s: package name `%s` is not a dotted identifier", tf.Name, tf.Package)
		}
	}

	return nil
}

// isValidIdentifier returns whether idstr is a valid identifier.
func isValidIdentifier(idstr string) bool {
	if idstr == "" {
		return false
	}

	if idstr[0] == '_' || ('a' <= idstr[0] && idstr[0] <= 'z') || ('A' <= idstr[0] && idstr[0] <= 'Z') {
		for _, c := range idstr[1:] {
			if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
				continue
			}

			return false
		}

		return true
	}

	return false
}

// isValidPath returns whether path is a dot-separated list of identifiers.
func isValidPath(path string) bool {
	for _, part := range strings.Split(path, ".") {
		if !isValidIdentifier(part) {
			return false
		}
	}

	return true
}

// -----------------------------------------------------------------------------

// decoder builds a module fragment from its description in three rounds:
// classes are declared first so that any type can refer to them, then the
// signatures of all members, and finally bodies, which may call anything.
type decoder struct {
	module     *ir.ModuleFragment
	factory    *ir.Factory
	intrinsics *ir.Intrinsics

	// classes maps the paths of classes, with and without their package, to
	// the class.  Paths shared by several classes are ambiguous.
	classes   map[string]*ir.Class
	ambiguous map[string]bool

	// functions maps the paths of top-level functions to the overloads
	// declared under that path.
	functions map[string][]*ir.SimpleFunction

	// defaulted records the parameters which declare a default value.
	defaulted map[*ir.ValueParameter]bool

	declared []declaredClass
	bodies   []func() error
}

type declaredClass struct {
	file *ir.File
	cls  *ir.Class
	path string
	tc   *tomlClass
}

func newDecoder(name string) *decoder {
	module := &ir.ModuleFragment{Name: name}

	return &decoder{
		module:     module,
		factory:    ir.NewFactory(nil),
		intrinsics: ir.EnsureIntrinsics(module),
		classes:    make(map[string]*ir.Class),
		ambiguous:  make(map[string]bool),
		functions:  make(map[string][]*ir.SimpleFunction),
		defaulted:  make(map[*ir.ValueParameter]bool),
	}
}

func (d *decoder) decode(tomlMod *tomlModule) (*ir.ModuleFragment, error) {
	files := make([]*ir.File, len(tomlMod.Files))

	for i := range tomlMod.Files {
		tf := &tomlMod.Files[i]

		file := &ir.File{
			Name:            tf.Name,
			PackageName:     tf.Package,
			FacadeName:      tf.Facade,
			IsMultifilePart: tf.Multifile,
		}
		d.module.AddFile(file)
		files[i] = file

		for j := range tf.Classes {
			if err := d.declareClass(file, file, "", &tf.Classes[j]); err != nil {
				return nil, errors.Wrapf(err, "file %s", tf.Name)
			}
		}
	}

	for _, dc := range d.declared {
		if err := d.declareClassMembers(dc); err != nil {
			return nil, errors.Wrapf(err, "file %s: class %s", dc.file.Name, dc.path)
		}
	}

	for i := range tomlMod.Files {
		if err := d.declareFileMembers(files[i], &tomlMod.Files[i]); err != nil {
			return nil, errors.Wrapf(err, "file %s", files[i].Name)
		}
	}

	for _, body := range d.bodies {
		if err := body(); err != nil {
			return nil, err
		}
	}

	ir.PatchDeclarationParents(d.module, nil)
	return d.module, nil
}

// -----------------------------------------------------------------------------

var classKinds = map[string]types.ClassifierKind{
	"":           types.ClassifierClass,
	"class":      types.ClassifierClass,
	"interface":  types.ClassifierInterface,
	"enum":       types.ClassifierEnum,
	"object":     types.ClassifierObject,
	"annotation": types.ClassifierAnnotation,
}

var visibilities = map[string]ir.Visibility{
	"":          ir.Public,
	"public":    ir.Public,
	"protected": ir.Protected,
	"internal":  ir.Internal,
	"private":   ir.Private,
}

var modalities = map[string]ir.Modality{
	"final":    ir.Final,
	"open":     ir.Open,
	"abstract": ir.Abstract,
	"sealed":   ir.Sealed,
}

func parseVisibility(text string) (ir.Visibility, error) {
	if vis, ok := visibilities[text]; ok {
		return vis, nil
	}

	return ir.Public, errors.Errorf("unknown visibility `%s`", text)
}

func parseModality(text string, fallback ir.Modality) (ir.Modality, error) {
	if text == "" {
		return fallback, nil
	}

	if mod, ok := modalities[text]; ok {
		return mod, nil
	}

	return fallback, errors.Errorf("unknown modality `%s`", text)
}

// setFlags sets the boolean field named by each flag.
func setFlags(flags []string, fields map[string]*bool) error {
	for _, flag := range flags {
		field, ok := fields[flag]
		if !ok {
			return errors.Errorf("unknown flag `%s`", flag)
		}

		*field = true
	}

	return nil
}

// declareClass creates the class described by tc and its nested classes and
// adds it to container.
func (d *decoder) declareClass(file *ir.File, container ir.DeclarationContainer, outerPath string, tc *tomlClass) error {
	if !isValidIdentifier(tc.Name) {
		return errors.Errorf("invalid class name `%s`", tc.Name)
	}

	kind, ok := classKinds[tc.Kind]
	if !ok {
		return errors.Errorf("class %s: unknown class kind `%s`", tc.Name, tc.Kind)
	}

	cls := d.factory.NewClass(tc.Name, kind, ir.OriginDefined)

	var err error
	if cls.Visibility, err = parseVisibility(tc.Visibility); err != nil {
		return errors.Wrapf(err, "class %s", tc.Name)
	}

	defaultModality := ir.Final
	if cls.IsInterface() {
		defaultModality = ir.Abstract
	}

	if cls.Modality, err = parseModality(tc.Modality, defaultModality); err != nil {
		return errors.Wrapf(err, "class %s", tc.Name)
	}

	err = setFlags(tc.Flags, map[string]*bool{
		"companion": &cls.IsCompanion,
		"inner":     &cls.IsInner,
		"data":      &cls.IsData,
		"value":     &cls.IsValue,
		"expect":    &cls.IsExpect,
		"external":  &cls.IsExternal,
		"fun":       &cls.IsFun,
	})
	if err != nil {
		return errors.Wrapf(err, "class %s", tc.Name)
	}

	cls.Parent = container
	decls := container.DeclarationList()
	*decls = append(*decls, cls)

	path := tc.Name
	if outerPath != "" {
		path = outerPath + "." + tc.Name
	}

	d.registerClass(path, cls)
	if file.PackageName != "" {
		d.registerClass(file.PackageName+"."+path, cls)
	}

	d.declared = append(d.declared, declaredClass{file: file, cls: cls, path: path, tc: tc})

	for i := range tc.Classes {
		if err := d.declareClass(file, cls, path, &tc.Classes[i]); err != nil {
			return err
		}
	}

	return nil
}

func (d *decoder) registerClass(path string, cls *ir.Class) {
	if _, ok := d.classes[path]; ok {
		d.ambiguous[path] = true
		return
	}

	d.classes[path] = cls
}

func (d *decoder) lookupClass(path string) (*ir.Class, error) {
	if d.ambiguous[path] {
		return nil, errors.Errorf("class path `%s` is ambiguous", path)
	}

	if cls, ok := d.classes[path]; ok {
		return cls, nil
	}

	return nil, errors.Errorf("unknown class `%s`", path)
}

// declareClassMembers resolves the header of a declared class and declares
// its members.
func (d *decoder) declareClassMembers(dc declaredClass) error {
	cls, tc := dc.cls, dc.tc

	if len(tc.Supertypes) > 0 {
		supertypes, err := d.parseTypes(tc.Supertypes)
		if err != nil {
			return errors.Wrap(err, "supertypes")
		}

		cls.Supertypes = supertypes
	} else if !cls.IsInterface() && !cls.IsAnnotationClass() {
		cls.Supertypes = []types.Type{types.AnyType}
	}

	if tc.Underlying != "" {
		if !cls.IsValue {
			return errors.New("only value classes have an underlying type")
		}

		underlying, err := d.parseType(tc.Underlying, nil)
		if err != nil {
			return errors.Wrap(err, "underlying type")
		}

		cls.ValueUnderlyingType = underlying
	}

	if len(tc.Entries) > 0 && !cls.IsEnumClass() {
		return errors.New("only enum classes have entries")
	}

	for _, name := range tc.Entries {
		if !isValidIdentifier(name) {
			return errors.Errorf("invalid enum entry name `%s`", name)
		}

		cls.AddDeclaration(d.factory.NewEnumEntry(name, ir.OriginDefined))
	}

	for i := range tc.Constructors {
		if err := d.declareConstructor(dc, &tc.Constructors[i]); err != nil {
			return errors.Wrapf(err, "constructor %d", i)
		}
	}

	for i := range tc.Properties {
		tp := &tc.Properties[i]
		if err := d.declareProperty(dc.file, cls, tp); err != nil {
			return errors.Wrapf(err, "property %s", tp.Name)
		}
	}

	for i := range tc.Functions {
		tfn := &tc.Functions[i]
		if err := d.declareFunction(dc.file, cls, dc.path, tfn); err != nil {
			return errors.Wrapf(err, "function %s", tfn.Name)
		}
	}

	for i := range tc.Initializers {
		d.declareInitializer(dc, &tc.Initializers[i], i)
	}

	return nil
}

func (d *decoder) declareFileMembers(file *ir.File, tf *tomlFile) error {
	for _, ta := range tf.TypeAlias {
		expanded, err := d.parseType(ta.Type, nil)
		if err != nil {
			return errors.Wrapf(err, "type alias %s", ta.Name)
		}

		alias := d.factory.NewTypeAlias(ta.Name, expanded, ir.OriginDefined)
		if alias.Visibility, err = parseVisibility(ta.Visibility); err != nil {
			return errors.Wrapf(err, "type alias %s", ta.Name)
		}

		alias.Parent = file
		file.Decls = append(file.Decls, alias)
	}

	for i := range tf.Properties {
		tp := &tf.Properties[i]
		if err := d.declareProperty(file, file, tp); err != nil {
			return errors.Wrapf(err, "property %s", tp.Name)
		}
	}

	for i := range tf.Functions {
		tfn := &tf.Functions[i]
		if err := d.declareFunction(file, file, "", tfn); err != nil {
			return errors.Wrapf(err, "function %s", tfn.Name)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *decoder) declareParams(file *ir.File, fn ir.Function, tparams []tomlParam) error {
	for i := range tparams {
		tparam := &tparams[i]
		if !isValidIdentifier(tparam.Name) {
			return errors.Errorf("invalid parameter name `%s`", tparam.Name)
		}

		typ, err := d.parseType(tparam.Type, nil)
		if err != nil {
			return errors.Wrapf(err, "parameter %s", tparam.Name)
		}

		param := d.factory.AddParam(fn, tparam.Name, typ, ir.OriginDefined)
		if tparam.Default == nil {
			continue
		}

		d.defaulted[param] = true
		d.bodies = append(d.bodies, func() error {
			sc := newScope(file, fn)
			value, err := d.expr(sc, tparam.Default)
			if err != nil {
				return errors.Wrapf(err, "file %s: function %s: default value of %s", file.Name, fn.FuncBase().Name, param.Name)
			}

			param.DefaultValue = &ir.ExpressionBody{Expr: value}
			return nil
		})
	}

	return nil
}

func (d *decoder) declareConstructor(dc declaredClass, tctor *tomlConstructor) error {
	cls := dc.cls
	if cls.IsInterface() {
		return errors.New("interfaces have no constructors")
	}

	ctor := d.factory.NewConstructor(cls, ir.OriginDefined)
	ctor.IsPrimary = tctor.Primary

	var err error
	if ctor.Visibility, err = parseVisibility(tctor.Visibility); err != nil {
		return err
	}

	if err := d.declareParams(dc.file, ctor, tctor.Params); err != nil {
		return err
	}

	cls.AddDeclaration(ctor)

	d.bodies = append(d.bodies, func() error {
		body := &ir.BlockBody{Statements: []ir.Statement{
			&ir.InstanceInitializerCall{ExpressionBase: ir.NewExpressionBase(types.PrimUnit), Class: cls.Symbol},
		}}

		sc := newScope(dc.file, ctor)
		stmts, err := d.stmts(sc, tctor.Body)
		if err != nil {
			return errors.Wrapf(err, "file %s: class %s: constructor", dc.file.Name, dc.path)
		}

		body.Statements = append(body.Statements, stmts...)
		ctor.Body = body
		return nil
	})

	return nil
}

func (d *decoder) declareFunction(file *ir.File, container ir.DeclarationContainer, classPath string, tfn *tomlFunction) error {
	if !isValidIdentifier(tfn.Name) {
		return errors.Errorf("invalid function name `%s`", tfn.Name)
	}

	ret, err := d.parseType(tfn.Returns, types.PrimUnit)
	if err != nil {
		return errors.Wrap(err, "return type")
	}

	fn := d.factory.NewFunction(tfn.Name, ret, ir.OriginDefined)
	if fn.Visibility, err = parseVisibility(tfn.Visibility); err != nil {
		return err
	}

	cls, _ := container.(*ir.Class)

	defaultModality := ir.Final
	if cls != nil && cls.IsInterface() {
		defaultModality = ir.Open
		if tfn.Body == nil {
			defaultModality = ir.Abstract
		}
	}

	if fn.Modality, err = parseModality(tfn.Modality, defaultModality); err != nil {
		return err
	}

	err = setFlags(tfn.Flags, map[string]*bool{
		"inline":   &fn.IsInline,
		"suspend":  &fn.IsSuspend,
		"tailrec":  &fn.IsTailrec,
		"operator": &fn.IsOperator,
		"static":   &fn.IsStatic,
		"expect":   &fn.IsExpect,
		"external": &fn.IsExternal,
	})
	if err != nil {
		return err
	}

	if cls != nil && !fn.IsStatic {
		d.factory.AddDispatchReceiver(fn, cls)
	}

	if tfn.Extension != "" {
		recvType, err := d.parseType(tfn.Extension, nil)
		if err != nil {
			return errors.Wrap(err, "extension receiver")
		}

		fn.ExtensionReceiver = d.factory.NewValueParameter("<receiver>", recvType, -1, ir.OriginDefined)
		fn.ExtensionReceiver.Parent = fn
	}

	if err := d.declareParams(file, fn, tfn.Params); err != nil {
		return err
	}

	fn.Parent = container
	decls := container.DeclarationList()
	*decls = append(*decls, fn)

	if cls == nil {
		d.functions[fn.Name] = append(d.functions[fn.Name], fn)
		if file.PackageName != "" {
			qualName := file.PackageName + "." + fn.Name
			d.functions[qualName] = append(d.functions[qualName], fn)
		}
	}

	if tfn.Body == nil {
		return nil
	}

	d.bodies = append(d.bodies, func() error {
		sc := newScope(file, fn)
		stmts, err := d.stmts(sc, tfn.Body)
		if err != nil {
			if classPath != "" {
				return errors.Wrapf(err, "file %s: class %s: function %s", file.Name, classPath, fn.Name)
			}

			return errors.Wrapf(err, "file %s: function %s", file.Name, fn.Name)
		}

		fn.Body = &ir.BlockBody{Statements: stmts}
		return nil
	})

	return nil
}

func (d *decoder) declareProperty(file *ir.File, container ir.DeclarationContainer, tp *tomlProperty) error {
	if !isValidIdentifier(tp.Name) {
		return errors.Errorf("invalid property name `%s`", tp.Name)
	}

	typ, err := d.parseType(tp.Type, nil)
	if err != nil {
		return err
	}

	prop := d.factory.NewProperty(tp.Name, typ, ir.OriginDefined)
	if prop.Visibility, err = parseVisibility(tp.Visibility); err != nil {
		return err
	}

	if prop.Modality, err = parseModality(tp.Modality, ir.Final); err != nil {
		return err
	}

	err = setFlags(tp.Flags, map[string]*bool{
		"var":       &prop.IsVar,
		"const":     &prop.IsConst,
		"lateinit":  &prop.IsLateinit,
		"expect":    &prop.IsExpect,
		"external":  &prop.IsExternal,
		"delegated": &prop.IsDelegated,
	})
	if err != nil {
		return err
	}

	switch {
	case prop.IsLateinit && !prop.IsVar:
		return errors.New("lateinit properties must be mutable")
	case prop.IsLateinit && tp.Init != nil:
		return errors.New("lateinit properties have no initializer")
	case prop.IsConst && tp.Init == nil:
		return errors.New("const properties need an initializer")
	}

	prop.Parent = container
	decls := container.DeclarationList()
	*decls = append(*decls, prop)

	if tp.Init == nil {
		return nil
	}

	field := d.factory.NewField(prop.Name, prop.Type, ir.OriginPropertyBackingField)
	field.Visibility = ir.Private
	field.CorrespondingProperty = prop.Symbol
	field.Parent = container
	prop.BackingField = field

	d.bodies = append(d.bodies, func() error {
		sc := newScope(file, nil)
		if cls, ok := container.(*ir.Class); ok {
			sc.this = cls.ThisReceiver
			sc.cls = cls
		}

		value, err := d.expr(sc, tp.Init)
		if err != nil {
			return errors.Wrapf(err, "file %s: property %s", file.Name, prop.Name)
		}

		if prop.IsConst {
			if _, ok := value.(*ir.Const); !ok {
				return errors.Errorf("file %s: property %s: const initializer is not a constant", file.Name, prop.Name)
			}
		}

		field.Initializer = &ir.ExpressionBody{Expr: value}
		return nil
	})

	return nil
}

func (d *decoder) declareInitializer(dc declaredClass, ti *tomlInitializer, n int) {
	init := d.factory.NewAnonymousInitializer(ti.Static, ir.OriginDefined)
	dc.cls.AddDeclaration(init)

	d.bodies = append(d.bodies, func() error {
		sc := newScope(dc.file, nil)
		sc.cls = dc.cls
		if !ti.Static {
			sc.this = dc.cls.ThisReceiver
		}

		stmts, err := d.stmts(sc, ti.Body)
		if err != nil {
			return errors.Wrapf(err, "file %s: class %s: initializer %d", dc.file.Name, dc.path, n)
		}

		init.Body.Statements = stmts
		return nil
	})
}
