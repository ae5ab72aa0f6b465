package ir

import (
	"fmt"
	"strings"

	"irbackend/types"
)

// Render returns a textual dump of elem and all of its descendants, one
// element per line indented by depth.  The dump only depends on the structure
// of the tree, never on symbol IDs or addresses, so equal trees render
// equally.
func Render(elem Element) string {
	sb := &strings.Builder{}
	render(sb, elem, 0)
	return sb.String()
}

func render(sb *strings.Builder, elem Element, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(Describe(elem))
	sb.WriteRune('\n')

	elem.WalkChildren(func(child Element) {
		render(sb, child, depth+1)
	})
}

// Describe returns a one-line description of elem without its children.
func Describe(elem Element) string {
	sb := &strings.Builder{}
	sb.WriteString(elem.Kind().String())

	switch v := elem.(type) {
	case *ModuleFragment:
		fmt.Fprintf(sb, " name:%s", v.Name)
	case *File:
		fmt.Fprintf(sb, " name:%s package:%s", v.Name, v.PackageName)
		if v.FacadeName != "" {
			fmt.Fprintf(sb, " facade:%s", v.FacadeName)
		}
		writeFlags(sb, flag{v.IsMultifilePart, "multifile"})
	case *ExternalPackageFragment:
		fmt.Fprintf(sb, " package:%s", v.PackageName)

	case *Class:
		fmt.Fprintf(sb, " %s name:%s %s %s", v.ClassKind, v.Name, v.Visibility, v.Modality)
		writeFlags(sb,
			flag{v.IsCompanion, "companion"}, flag{v.IsInner, "inner"},
			flag{v.IsData, "data"}, flag{v.IsValue, "value"},
			flag{v.IsExpect, "expect"}, flag{v.IsExternal, "external"},
			flag{v.IsFun, "fun"},
		)
		if len(v.Supertypes) > 0 {
			fmt.Fprintf(sb, " supertypes:[%s]", typeListRepr(v.Supertypes))
		}
		writeOrigin(sb, v.Origin)
	case *SimpleFunction:
		fmt.Fprintf(sb, " name:%s %s %s returnType:%s", v.Name, v.Visibility, v.Modality, typeRepr(v.ReturnType))
		writeFlags(sb,
			flag{v.IsInline, "inline"}, flag{v.IsSuspend, "suspend"},
			flag{v.IsTailrec, "tailrec"}, flag{v.IsOperator, "operator"},
			flag{v.IsStatic, "static"}, flag{v.IsExpect, "expect"},
			flag{v.IsExternal, "external"}, flag{v.IsFakeOverride, "fake_override"},
		)
		writeOrigin(sb, v.Origin)
	case *Constructor:
		fmt.Fprintf(sb, " %s returnType:%s", v.Visibility, typeRepr(v.ReturnType))
		writeFlags(sb, flag{v.IsPrimary, "primary"}, flag{v.IsExpect, "expect"})
		writeOrigin(sb, v.Origin)
	case *Property:
		fmt.Fprintf(sb, " name:%s type:%s %s %s", v.Name, typeRepr(v.Type), v.Visibility, v.Modality)
		writeFlags(sb,
			flag{v.IsVar, "var"}, flag{v.IsConst, "const"},
			flag{v.IsLateinit, "lateinit"}, flag{v.IsExpect, "expect"},
			flag{v.IsExternal, "external"}, flag{v.IsDelegated, "delegated"},
		)
		writeOrigin(sb, v.Origin)
	case *Field:
		fmt.Fprintf(sb, " name:%s type:%s %s", v.Name, typeRepr(v.Type), v.Visibility)
		writeFlags(sb, flag{v.IsFinal, "final"}, flag{v.IsStatic, "static"})
		writeOrigin(sb, v.Origin)
	case *Variable:
		fmt.Fprintf(sb, " name:%s type:%s", v.Name, typeRepr(v.Type))
		writeFlags(sb, flag{v.IsVar, "var"}, flag{v.IsConst, "const"}, flag{v.IsLateinit, "lateinit"})
		writeOrigin(sb, v.Origin)
	case *ValueParameter:
		fmt.Fprintf(sb, " name:%s index:%d type:%s", v.Name, v.Index, typeRepr(v.Type))
		if v.VarargElementType != nil {
			fmt.Fprintf(sb, " varargElementType:%s", typeRepr(v.VarargElementType))
		}
		writeFlags(sb, flag{v.IsCrossinline, "crossinline"}, flag{v.IsNoinline, "noinline"})
		writeOrigin(sb, v.Origin)
	case *TypeParameter:
		fmt.Fprintf(sb, " name:%s index:%d variance:%s superTypes:[%s]", v.Name, v.Index, varianceRepr(v.Variance), typeListRepr(v.Supertypes))
		writeFlags(sb, flag{v.IsReified, "reified"})
	case *EnumEntry:
		fmt.Fprintf(sb, " name:%s", v.Name)
		writeOrigin(sb, v.Origin)
	case *AnonymousInitializer:
		writeFlags(sb, flag{v.IsStatic, "static"})
		writeOrigin(sb, v.Origin)
	case *TypeAlias:
		fmt.Fprintf(sb, " name:%s %s expandedType:%s", v.Name, v.Visibility, typeRepr(v.Expanded))
		writeFlags(sb, flag{v.IsActual, "actual"})

	case *SyntheticBody:
		if v.SyntheticKind == SyntheticEnumValueOf {
			sb.WriteString(" kind:ENUM_VALUEOF")
		} else {
			sb.WriteString(" kind:ENUM_VALUES")
		}

	case *Const:
		fmt.Fprintf(sb, " type:%s value:%s", typeRepr(v.Type()), constRepr(v))
	case *Vararg:
		fmt.Fprintf(sb, " type:%s varargElementType:%s", typeRepr(v.Type()), typeRepr(v.ElementType))
	case *Block:
		fmt.Fprintf(sb, " type:%s", typeRepr(v.Type()))
		writeOrigin(sb, v.Origin)
	case *Composite:
		fmt.Fprintf(sb, " type:%s", typeRepr(v.Type()))
		writeOrigin(sb, v.Origin)
	case *StringConcatenation:
		fmt.Fprintf(sb, " type:%s", typeRepr(v.Type()))
	case *GetObjectValue:
		fmt.Fprintf(sb, " '%s' type:%s", SymbolName(v.Symbol), typeRepr(v.Type()))
	case *GetEnumValue:
		fmt.Fprintf(sb, " '%s' type:%s", SymbolName(v.Symbol), typeRepr(v.Type()))
	case *GetValue:
		fmt.Fprintf(sb, " '%s' type:%s", SymbolName(v.Symbol), typeRepr(v.Type()))
		writeOrigin(sb, v.Origin)
	case *SetValue:
		fmt.Fprintf(sb, " '%s' type:%s", SymbolName(v.Symbol), typeRepr(v.Type()))
		writeOrigin(sb, v.Origin)
	case *GetField:
		fmt.Fprintf(sb, " '%s' type:%s", SymbolName(v.Symbol), typeRepr(v.Type()))
	case *SetField:
		fmt.Fprintf(sb, " '%s' type:%s", SymbolName(v.Symbol), typeRepr(v.Type()))
	case *Call:
		fmt.Fprintf(sb, " '%s' type:%s", SymbolName(v.Symbol), typeRepr(v.Type()))
		if v.SuperQualifier != nil {
			fmt.Fprintf(sb, " superQualifier:%s", SymbolName(v.SuperQualifier))
		}
		writeOrigin(sb, v.Origin)
	case *ConstructorCall:
		fmt.Fprintf(sb, " '%s' type:%s", constructedName(v.Symbol), typeRepr(v.Type()))
	case *DelegatingConstructorCall:
		fmt.Fprintf(sb, " '%s' type:%s", constructedName(v.Symbol), typeRepr(v.Type()))
	case *EnumConstructorCall:
		fmt.Fprintf(sb, " '%s' type:%s", constructedName(v.Symbol), typeRepr(v.Type()))
	case *FunctionReference:
		fmt.Fprintf(sb, " '%s' type:%s", SymbolName(v.Symbol), typeRepr(v.Type()))
		writeOrigin(sb, v.Origin)
	case *PropertyReference:
		fmt.Fprintf(sb, " '%s' type:%s", SymbolName(v.Symbol), typeRepr(v.Type()))
	case *GetClass, *InstanceInitializerCall, *Try, *When, *Throw, *Return:
		if ic, ok := v.(*InstanceInitializerCall); ok {
			fmt.Fprintf(sb, " class:%s", SymbolName(ic.Class))
		} else if ret, ok := v.(*Return); ok {
			fmt.Fprintf(sb, " from:'%s'", SymbolName(ret.Target))
		}
		fmt.Fprintf(sb, " type:%s", typeRepr(v.(Expression).Type()))
	case *FunctionExpression:
		fmt.Fprintf(sb, " type:%s", typeRepr(v.Type()))
		writeOrigin(sb, v.Origin)
	case *ClassReference:
		fmt.Fprintf(sb, " '%s' type:%s", types.QualifiedName(v.Symbol), typeRepr(v.Type()))
	case *TypeOperatorCall:
		fmt.Fprintf(sb, " type:%s origin:%s typeOperand:%s", typeRepr(v.Type()), v.Operator, typeRepr(v.Operand))
	case Loop:
		lb := v.LoopData()
		if lb.Label != "" {
			fmt.Fprintf(sb, " label:%s", lb.Label)
		}
		fmt.Fprintf(sb, " type:%s", typeRepr(v.Type()))
		writeOrigin(sb, lb.Origin)
	case BreakContinue:
		jb := v.JumpBase()
		if jb.Label != "" {
			fmt.Fprintf(sb, " label:%s", jb.Label)
		} else if jb.Loop != nil && jb.Loop.LoopData().Label != "" {
			fmt.Fprintf(sb, " loop.label:%s", jb.Loop.LoopData().Label)
		}
	case *ErrorExpression:
		fmt.Fprintf(sb, " '%s' type:%s", v.Description, typeRepr(v.Type()))
	case *ErrorCallExpression:
		fmt.Fprintf(sb, " '%s' type:%s", v.Description, typeRepr(v.Type()))
	}

	return sb.String()
}

type flag struct {
	set  bool
	name string
}

func writeFlags(sb *strings.Builder, flags ...flag) {
	var names []string
	for _, f := range flags {
		if f.set {
			names = append(names, f.name)
		}
	}

	if len(names) > 0 {
		fmt.Fprintf(sb, " [%s]", strings.Join(names, ","))
	}
}

func writeOrigin(sb *strings.Builder, origin *Origin) {
	if origin != nil && origin != OriginDefined {
		fmt.Fprintf(sb, " origin:%s", origin.Name)
	}
}

func typeRepr(typ types.Type) string {
	if typ == nil {
		return "<none>"
	}

	return typ.Repr()
}

func typeListRepr(typs []types.Type) string {
	reprs := make([]string, len(typs))
	for i, typ := range typs {
		reprs[i] = typeRepr(typ)
	}

	return strings.Join(reprs, ", ")
}

func varianceRepr(v types.Variance) string {
	switch v {
	case types.In:
		return "in"
	case types.Out:
		return "out"
	default:
		return "invariant"
	}
}

func constRepr(c *Const) string {
	switch c.ConstKind {
	case ConstNull:
		return "null"
	case ConstString:
		return fmt.Sprintf("%q", c.Value)
	case ConstChar:
		return fmt.Sprintf("'%c'", c.Value)
	default:
		return fmt.Sprint(c.Value)
	}
}

func constructedName(sym *FunctionSymbol) string {
	if ctor, ok := sym.OwnerDecl().(*Constructor); ok {
		if cls := ctor.ConstructedClass(); cls != nil {
			return cls.Name + ".<init>"
		}
	}

	return SymbolName(sym)
}
