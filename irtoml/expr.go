package irtoml

import (
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"irbackend/ir"
	"irbackend/report"
	"irbackend/types"
	"irbackend/util"
)

// scope is the name resolution environment of a body.
type scope struct {
	file *ir.File
	cls  *ir.Class
	fn   ir.Function

	// this is the receiver `this` refers to.  May be nil.
	this ir.ValueDeclaration

	values []ir.ValueDeclaration
	loops  []ir.Loop
}

func newScope(file *ir.File, fn ir.Function) *scope {
	sc := &scope{file: file, fn: fn}
	if fn == nil {
		return sc
	}

	fb := fn.FuncBase()
	sc.cls, _ = fb.Parent.(*ir.Class)

	switch {
	case fb.DispatchReceiver != nil:
		sc.this = fb.DispatchReceiver
	case fb.ExtensionReceiver != nil:
		sc.this = fb.ExtensionReceiver
	}

	if ctor, ok := fn.(*ir.Constructor); ok {
		sc.this = ctor.ConstructedClass().ThisReceiver
	}

	for _, param := range fb.Params {
		sc.values = append(sc.values, param)
	}

	return sc
}

func (sc *scope) lookup(name string) (ir.ValueDeclaration, bool) {
	if name == "this" {
		return sc.this, sc.this != nil
	}

	for i := len(sc.values) - 1; i >= 0; i-- {
		if sc.values[i].DeclName() == name {
			return sc.values[i], true
		}
	}

	return nil, false
}

// -----------------------------------------------------------------------------

// heads are the keys which select the kind of an expression.  Exactly one of
// them must be present in each expression table.
var heads = []string{
	"int", "long", "bool", "string", "null",
	"get", "set", "var",
	"call", "new", "template",
	"enum", "object",
	"return", "throw",
	"while", "dowhile", "break", "continue",
	"if", "block",
	"is", "as", "safeas",
}

// table normalizes a decoded TOML value holding a table.
func table(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case *toml.Tree:
		return v.ToMap(), true
	}

	return nil, false
}

// list normalizes a decoded TOML value holding an array.
func list(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return v, true
	case []map[string]interface{}:
		items := make([]interface{}, len(v))
		for i, item := range v {
			items[i] = item
		}
		return items, true
	case []*toml.Tree:
		items := make([]interface{}, len(v))
		for i, item := range v {
			items[i] = item.ToMap()
		}
		return items, true
	}

	return nil, false
}

func stringField(t map[string]interface{}, key string) (string, error) {
	value, ok := t[key]
	if !ok {
		return "", nil
	}

	s, ok := value.(string)
	if !ok {
		return "", errors.Errorf("`%s` must be a string", key)
	}

	return s, nil
}

func headOf(t map[string]interface{}) (string, error) {
	var found []string
	for _, head := range heads {
		if _, ok := t[head]; ok {
			found = append(found, head)
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", errors.Errorf("expression with keys [%s] has no kind", strings.Join(util.SortedKeys(t), ", "))
	default:
		return "", errors.Errorf("expression has several kinds: %s", strings.Join(found, ", "))
	}
}

// -----------------------------------------------------------------------------

// stmts decodes a statement list.  A nil value is an empty list.
func (d *decoder) stmts(sc *scope, value interface{}) ([]ir.Statement, error) {
	if value == nil {
		return nil, nil
	}

	items, ok := list(value)
	if !ok {
		return nil, errors.New("body must be an array of statements")
	}

	mark := len(sc.values)
	defer func() {
		sc.values = sc.values[:mark]
	}()

	var result []ir.Statement
	for i, item := range items {
		stmt, err := d.stmt(sc, item)
		if err != nil {
			return nil, errors.Wrapf(err, "statement %d", i)
		}

		result = append(result, stmt)
	}

	return result, nil
}

func (d *decoder) stmt(sc *scope, value interface{}) (ir.Statement, error) {
	t, ok := table(value)
	if !ok {
		return nil, errors.New("statement must be a table")
	}

	if _, ok := t["var"]; ok {
		v, err := d.variable(sc, t)
		if err != nil {
			return nil, err
		}

		setLine(v, t)
		sc.values = append(sc.values, v)
		return v, nil
	}

	return d.expr(sc, t)
}

func (d *decoder) variable(sc *scope, t map[string]interface{}) (*ir.Variable, error) {
	name, err := stringField(t, "var")
	if err != nil {
		return nil, err
	}

	if !isValidIdentifier(name) {
		return nil, errors.Errorf("invalid variable name `%s`", name)
	}

	var init ir.Expression
	if initValue, ok := t["init"]; ok {
		if init, err = d.expr(sc, initValue); err != nil {
			return nil, errors.Wrapf(err, "initializer of %s", name)
		}
	}

	typeText, err := stringField(t, "type")
	if err != nil {
		return nil, err
	}

	var fallback types.Type
	if init != nil {
		fallback = init.Type()
	}

	typ, err := d.parseType(typeText, fallback)
	if err != nil {
		return nil, errors.Wrapf(err, "variable %s", name)
	}

	v := d.factory.NewVariable(name, typ, init, ir.OriginDefined)
	v.IsVar, _ = t["mutable"].(bool)
	return v, nil
}

// setLine gives elem the span of the one-based line named by the `line` key.
func setLine(elem ir.Element, t map[string]interface{}) {
	if line, ok := t["line"].(int64); ok && line > 0 {
		elem.SetSpan(&report.TextSpan{StartLine: int(line) - 1, EndLine: int(line) - 1})
	}
}

// expr decodes an expression table.
func (d *decoder) expr(sc *scope, value interface{}) (ir.Expression, error) {
	t, ok := table(value)
	if !ok {
		return nil, errors.New("expression must be a table")
	}

	head, err := headOf(t)
	if err != nil {
		return nil, err
	}

	expr, err := d.exprOf(sc, head, t)
	if err != nil {
		return nil, errors.Wrap(err, head)
	}

	setLine(expr, t)
	return expr, nil
}

func (d *decoder) exprOf(sc *scope, head string, t map[string]interface{}) (ir.Expression, error) {
	switch head {
	case "int", "long":
		n, ok := t[head].(int64)
		if !ok {
			return nil, errors.New("value must be an integer")
		}

		if head == "long" {
			return ir.NewConst(ir.ConstLong, n, types.PrimLong), nil
		}

		if n != int64(int32(n)) {
			return nil, errors.Errorf("%d does not fit in an Int", n)
		}

		return ir.NewIntConst(n), nil
	case "bool":
		b, ok := t[head].(bool)
		if !ok {
			return nil, errors.New("value must be a boolean")
		}

		return ir.NewBooleanConst(b), nil
	case "string":
		s, err := stringField(t, head)
		if err != nil {
			return nil, err
		}

		return ir.NewStringConst(s), nil
	case "null":
		typeText, err := stringField(t, head)
		if err != nil {
			return nil, err
		}

		typ, err := d.parseType(typeText, types.PrimNothing)
		if err != nil {
			return nil, err
		}

		return ir.NewNullConst(typ), nil
	case "get":
		return d.get(sc, t)
	case "set":
		return d.set(sc, t)
	case "var":
		return nil, errors.New("variables can only be declared as statements")
	case "call":
		return d.call(sc, t)
	case "new":
		return d.constructorCall(sc, t)
	case "template":
		args, err := d.exprList(sc, t["template"])
		if err != nil {
			return nil, err
		}

		return &ir.StringConcatenation{ExpressionBase: ir.NewExpressionBase(types.StringType), Args: args}, nil
	case "enum":
		return d.enumValue(t)
	case "object":
		return d.objectValue(t)
	case "return":
		return d.returnExpr(sc, t)
	case "throw":
		value, err := d.expr(sc, t["throw"])
		if err != nil {
			return nil, err
		}

		return ir.NewThrow(value), nil
	case "while", "dowhile":
		return d.loop(sc, head, t)
	case "break", "continue":
		return d.jump(sc, head, t)
	case "if":
		return d.ifExpr(sc, t)
	case "block":
		stmts, err := d.stmts(sc, t["block"])
		if err != nil {
			return nil, err
		}

		typ := types.Type(types.PrimUnit)
		if n := len(stmts); n > 0 {
			if last, ok := stmts[n-1].(ir.Expression); ok {
				typ = last.Type()
			}
		}

		return ir.NewBlock(typ, nil, stmts...), nil
	default:
		return d.typeOperator(sc, head, t)
	}
}

func (d *decoder) exprList(sc *scope, value interface{}) ([]ir.Expression, error) {
	if value == nil {
		return nil, nil
	}

	items, ok := list(value)
	if !ok {
		return nil, errors.New("expected an array of expressions")
	}

	var result []ir.Expression
	for i, item := range items {
		expr, err := d.expr(sc, item)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i)
		}

		result = append(result, expr)
	}

	return result, nil
}

func (d *decoder) get(sc *scope, t map[string]interface{}) (ir.Expression, error) {
	name, err := stringField(t, "get")
	if err != nil {
		return nil, err
	}

	decl, ok := sc.lookup(name)
	if !ok {
		return nil, errors.Errorf("undefined value `%s`", name)
	}

	return ir.NewGetValue(decl), nil
}

func (d *decoder) set(sc *scope, t map[string]interface{}) (ir.Expression, error) {
	name, err := stringField(t, "set")
	if err != nil {
		return nil, err
	}

	decl, ok := sc.lookup(name)
	if !ok {
		return nil, errors.Errorf("undefined value `%s`", name)
	}

	if v, ok := decl.(*ir.Variable); !ok || !v.IsVar {
		return nil, errors.Errorf("`%s` is not a mutable variable", name)
	}

	value, err := d.expr(sc, t["value"])
	if err != nil {
		return nil, errors.Wrap(err, "value")
	}

	return ir.NewSetValue(decl, value), nil
}

// -----------------------------------------------------------------------------

// matchArgs checks args against the value parameters of fn and pads
// defaulted trailing parameters with nil arguments.
func (d *decoder) matchArgs(fn ir.Function, args []ir.Expression) ([]ir.Expression, bool) {
	params := fn.FuncBase().Params
	if len(args) > len(params) {
		return nil, false
	}

	for _, param := range params[len(args):] {
		if !d.defaulted[param] {
			return nil, false
		}
	}

	padded := make([]ir.Expression, len(params))
	copy(padded, args)
	return padded, true
}

func (d *decoder) call(sc *scope, t map[string]interface{}) (ir.Expression, error) {
	name, err := stringField(t, "call")
	if err != nil {
		return nil, err
	}

	args, err := d.exprList(sc, t["args"])
	if err != nil {
		return nil, err
	}

	var receiver ir.Expression
	if recvValue, ok := t["receiver"]; ok {
		if receiver, err = d.expr(sc, recvValue); err != nil {
			return nil, errors.Wrap(err, "receiver")
		}
	}

	if intrinsic, ok := d.intrinsics.Lookup(name); ok {
		if receiver != nil {
			args = append([]ir.Expression{receiver}, args...)
		}

		if len(args) != len(intrinsic.Params) {
			return nil, errors.Errorf("intrinsic %s takes %d arguments", name, len(intrinsic.Params))
		}

		return ir.NewCall(intrinsic, args...), nil
	}

	// members of the receiver's class, or of the enclosing class when the
	// call has no receiver
	memberOwner := sc.cls
	if receiver != nil {
		memberOwner = classOfType(receiver.Type())
	}

	if memberOwner != nil && !strings.Contains(name, ".") {
		for _, fn := range memberFunctions(memberOwner, name) {
			padded, ok := d.matchArgs(fn, args)
			if !ok {
				continue
			}

			call := ir.NewCall(fn, padded...)
			if !fn.IsStatic {
				if receiver == nil {
					this, ok := sc.lookup("this")
					if !ok {
						return nil, errors.Errorf("member %s called without a receiver", name)
					}

					receiver = ir.NewGetValue(this)
				}

				call.DispatchReceiver = receiver
			}

			return call, nil
		}
	}

	candidates := d.functions[sc.file.PackageName+"."+name]
	if len(candidates) == 0 {
		candidates = d.functions[name]
	}

	for _, fn := range candidates {
		if (fn.ExtensionReceiver != nil) != (receiver != nil) {
			continue
		}

		padded, ok := d.matchArgs(fn, args)
		if !ok {
			continue
		}

		call := ir.NewCall(fn, padded...)
		call.ExtensionReceiver = receiver
		return call, nil
	}

	return nil, errors.Errorf("no function %s taking %d arguments", name, len(args))
}

// classOfType returns the module class typ refers to if any.
func classOfType(typ types.Type) *ir.Class {
	if sym, ok := types.ClassifierOf(typ).(*ir.ClassSymbol); ok {
		return sym.Owner()
	}

	return nil
}

// memberFunctions returns the functions named name declared in cls or the
// module classes it inherits from.
func memberFunctions(cls *ir.Class, name string) []*ir.SimpleFunction {
	var result []*ir.SimpleFunction
	visited := make(map[*ir.Class]bool)

	var collect func(cls *ir.Class)
	collect = func(cls *ir.Class) {
		if cls == nil || visited[cls] {
			return
		}
		visited[cls] = true

		for _, decl := range cls.Decls {
			if fn, ok := decl.(*ir.SimpleFunction); ok && fn.Name == name {
				result = append(result, fn)
			}
		}

		for _, super := range cls.Supertypes {
			collect(classOfType(super))
		}
	}

	collect(cls)
	return result
}

func (d *decoder) constructorCall(sc *scope, t map[string]interface{}) (ir.Expression, error) {
	path, err := stringField(t, "new")
	if err != nil {
		return nil, err
	}

	cls, err := d.lookupClass(path)
	if err != nil {
		return nil, err
	}

	args, err := d.exprList(sc, t["args"])
	if err != nil {
		return nil, err
	}

	for _, ctor := range cls.Constructors() {
		if padded, ok := d.matchArgs(ctor, args); ok {
			return ir.NewConstructorCall(ctor, padded...), nil
		}
	}

	return nil, errors.Errorf("class %s has no constructor taking %d arguments", path, len(args))
}

func (d *decoder) enumValue(t map[string]interface{}) (ir.Expression, error) {
	path, err := stringField(t, "enum")
	if err != nil {
		return nil, err
	}

	dot := strings.LastIndexByte(path, '.')
	if dot < 0 {
		return nil, errors.Errorf("`%s` is not of the form Class.ENTRY", path)
	}

	cls, err := d.lookupClass(path[:dot])
	if err != nil {
		return nil, err
	}

	for _, decl := range cls.Decls {
		if entry, ok := decl.(*ir.EnumEntry); ok && entry.Name == path[dot+1:] {
			return &ir.GetEnumValue{ExpressionBase: ir.NewExpressionBase(cls.DefaultType()), Symbol: entry.Symbol}, nil
		}
	}

	return nil, errors.Errorf("enum class %s has no entry %s", path[:dot], path[dot+1:])
}

func (d *decoder) objectValue(t map[string]interface{}) (ir.Expression, error) {
	path, err := stringField(t, "object")
	if err != nil {
		return nil, err
	}

	cls, err := d.lookupClass(path)
	if err != nil {
		return nil, err
	}

	if !cls.IsObject() {
		return nil, errors.Errorf("class %s is not an object", path)
	}

	return ir.NewGetObjectValue(cls), nil
}

func (d *decoder) returnExpr(sc *scope, t map[string]interface{}) (ir.Expression, error) {
	if sc.fn == nil {
		return nil, errors.New("return outside of a function")
	}

	vt, ok := table(t["return"])
	if !ok {
		return nil, errors.New("returned value must be a table")
	}

	if len(vt) == 0 {
		return ir.NewReturn(sc.fn, nil), nil
	}

	value, err := d.expr(sc, vt)
	if err != nil {
		return nil, err
	}

	return ir.NewReturn(sc.fn, value), nil
}

// -----------------------------------------------------------------------------

func (d *decoder) loop(sc *scope, head string, t map[string]interface{}) (ir.Expression, error) {
	label, err := stringField(t, "label")
	if err != nil {
		return nil, err
	}

	var loop ir.Loop
	lb := ir.LoopBase{ExpressionBase: ir.NewExpressionBase(types.PrimUnit), Label: label}
	if head == "while" {
		loop = &ir.WhileLoop{LoopBase: lb}
	} else {
		loop = &ir.DoWhileLoop{LoopBase: lb}
	}

	data := loop.LoopData()
	if data.Cond, err = d.expr(sc, t[head]); err != nil {
		return nil, errors.Wrap(err, "condition")
	}

	sc.loops = append(sc.loops, loop)
	stmts, err := d.stmts(sc, t["body"])
	sc.loops = sc.loops[:len(sc.loops)-1]
	if err != nil {
		return nil, err
	}

	data.Body = ir.NewBlock(types.PrimUnit, nil, stmts...)
	return loop, nil
}

func (d *decoder) jump(sc *scope, head string, t map[string]interface{}) (ir.Expression, error) {
	label, err := stringField(t, head)
	if err != nil {
		return nil, err
	}

	var target ir.Loop
	for i := len(sc.loops) - 1; i >= 0; i-- {
		if label == "" || sc.loops[i].LoopData().Label == label {
			target = sc.loops[i]
			break
		}
	}

	if target == nil {
		if label == "" {
			return nil, errors.Errorf("%s outside of a loop", head)
		}

		return nil, errors.Errorf("no enclosing loop labeled %s", label)
	}

	jb := ir.BreakContinueBase{ExpressionBase: ir.NewExpressionBase(types.PrimNothing), Loop: target, Label: label}
	if head == "break" {
		return &ir.Break{BreakContinueBase: jb}, nil
	}

	return &ir.Continue{BreakContinueBase: jb}, nil
}

func (d *decoder) ifExpr(sc *scope, t map[string]interface{}) (ir.Expression, error) {
	cond, err := d.expr(sc, t["if"])
	if err != nil {
		return nil, errors.Wrap(err, "condition")
	}

	thenResult, err := d.expr(sc, t["then"])
	if err != nil {
		return nil, errors.Wrap(err, "then")
	}

	var elseResult ir.Expression
	if elseValue, ok := t["else"]; ok {
		if elseResult, err = d.expr(sc, elseValue); err != nil {
			return nil, errors.Wrap(err, "else")
		}
	}

	fallback := types.Type(types.PrimUnit)
	if elseResult != nil && types.Equals(thenResult.Type(), elseResult.Type()) {
		fallback = thenResult.Type()
	}

	typeText, err := stringField(t, "type")
	if err != nil {
		return nil, err
	}

	typ, err := d.parseType(typeText, fallback)
	if err != nil {
		return nil, err
	}

	return ir.NewIfThenElse(typ, cond, thenResult, elseResult), nil
}

var typeOperators = map[string]ir.TypeOperator{
	"is":     ir.OpInstanceOf,
	"as":     ir.OpCast,
	"safeas": ir.OpSafeCast,
}

func (d *decoder) typeOperator(sc *scope, head string, t map[string]interface{}) (ir.Expression, error) {
	op, ok := typeOperators[head]
	if !ok {
		report.Fault("expression kind %s has no decoder", head)
	}

	arg, err := d.expr(sc, t[head])
	if err != nil {
		return nil, err
	}

	typeText, err := stringField(t, "type")
	if err != nil {
		return nil, err
	}

	operand, err := d.parseType(typeText, nil)
	if err != nil {
		return nil, err
	}

	return ir.NewTypeOperatorCall(op, arg, operand), nil
}
