package lower

import (
	"math"
	"strconv"

	"irbackend/ir"
	"irbackend/types"
)

// ConstEvaluation folds calls of arithmetic, comparison and concatenation
// intrinsics whose arguments are all constants.
func ConstEvaluation() Phase[*ir.ModuleFragment] {
	return ModulePass("ConstEvaluation", "Evaluate intrinsic calls on constant arguments",
		func(lc *Context) ModuleLoweringPass {
			return newConstEvaluator(lc.Intrinsics)
		},
	)
}

type constEvaluator struct {
	intrinsics  *ir.Intrinsics
	transformer *ir.Transformer[*constEvaluator]
}

func newConstEvaluator(intrinsics *ir.Intrinsics) *constEvaluator {
	ce := &constEvaluator{intrinsics: intrinsics}

	ce.transformer = ir.NewTransformer[*constEvaluator]()
	ir.OnTransform(ce.transformer, ir.KindCall, func(call *ir.Call, ce *constEvaluator) ir.Element {
		ce.transformer.TransformChildren(call, ce)

		if folded := ce.fold(call); folded != nil {
			folded.SetSpan(call.Span())
			return folded
		}

		return call
	})

	return ce
}

func (ce *constEvaluator) LowerModule(module *ir.ModuleFragment) {
	for _, file := range module.Files {
		ce.transformer.TransformChildren(file, ce)
	}
}

// fold returns the constant value of call or nil if it cannot be folded.
func (ce *constEvaluator) fold(call *ir.Call) *ir.Const {
	name, ok := ce.intrinsics.NameOf(call.Symbol)
	if !ok {
		return nil
	}

	args := make([]*ir.Const, len(call.Args))
	for i, arg := range call.Args {
		c, ok := arg.(*ir.Const)
		if !ok {
			return nil
		}

		args[i] = c
	}

	switch name {
	case "Int.plus", "Int.minus", "Int.times":
		a, b, ok := integralArgs(args, ir.ConstInt)
		if !ok {
			return nil
		}

		// Int arithmetic wraps around at 32 bits
		return ir.NewIntConst(int64(int32(applyIntegral(name[len("Int."):], a, b))))
	case "Long.plus", "Long.minus", "Long.times":
		a, b, ok := integralArgs(args, ir.ConstLong)
		if !ok {
			return nil
		}

		return ir.NewConst(ir.ConstLong, applyIntegral(name[len("Long."):], a, b), types.PrimLong)
	case "Int.less", "Int.greater":
		a, b, ok := integralArgs(args, ir.ConstInt)
		if !ok {
			return nil
		}

		if name == "Int.less" {
			return ir.NewBooleanConst(a < b)
		}

		return ir.NewBooleanConst(a > b)
	case "Boolean.not":
		if len(args) != 1 || args[0].ConstKind != ir.ConstBoolean {
			return nil
		}

		return ir.NewBooleanConst(!args[0].Value.(bool))
	case "EQEQ":
		if len(args) != 2 {
			return nil
		}

		if args[0].ConstKind == ir.ConstNull || args[1].ConstKind == ir.ConstNull {
			return ir.NewBooleanConst(args[0].ConstKind == args[1].ConstKind)
		}

		if args[0].ConstKind != args[1].ConstKind {
			return nil
		}

		return ir.NewBooleanConst(args[0].Value == args[1].Value)
	case "String.plus":
		if len(args) != 2 || args[0].ConstKind != ir.ConstString {
			return nil
		}

		return ir.NewStringConst(args[0].Value.(string) + constString(args[1]))
	}

	return nil
}

func integralArgs(args []*ir.Const, kind ir.ConstKind) (int64, int64, bool) {
	if len(args) != 2 || args[0].ConstKind != kind || args[1].ConstKind != kind {
		return 0, 0, false
	}

	return args[0].Value.(int64), args[1].Value.(int64), true
}

func applyIntegral(op string, a, b int64) int64 {
	switch op {
	case "plus":
		return a + b
	case "minus":
		return a - b
	default:
		return a * b
	}
}

// constString returns the string form of a constant as string templates
// render it.
func constString(c *ir.Const) string {
	switch c.ConstKind {
	case ir.ConstNull:
		return "null"
	case ir.ConstBoolean:
		return strconv.FormatBool(c.Value.(bool))
	case ir.ConstChar:
		return string(c.Value.(rune))
	case ir.ConstFloat, ir.ConstDouble:
		return floatString(c.Value.(float64), c.ConstKind == ir.ConstFloat)
	case ir.ConstString:
		return c.Value.(string)
	default:
		return strconv.FormatInt(c.Value.(int64), 10)
	}
}

func floatString(f float64, single bool) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	bits := 64
	if single {
		bits = 32
	}

	s := strconv.FormatFloat(f, 'f', -1, bits)
	for _, r := range s {
		if r == '.' {
			return s
		}
	}

	return s + ".0"
}
