package irtoml

import (
	"strings"

	"github.com/pkg/errors"

	"irbackend/types"
)

var primitives = map[string]types.PrimitiveType{
	"Unit":    types.PrimUnit,
	"Boolean": types.PrimBoolean,
	"Char":    types.PrimChar,
	"Byte":    types.PrimByte,
	"Short":   types.PrimShort,
	"Int":     types.PrimInt,
	"Long":    types.PrimLong,
	"Float":   types.PrimFloat,
	"Double":  types.PrimDouble,
	"Nothing": types.PrimNothing,
}

// parseType parses a type written in a module description.  An empty string
// yields fallback.
func (d *decoder) parseType(text string, fallback types.Type) (types.Type, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		if fallback == nil {
			return nil, errors.New("missing type")
		}

		return fallback, nil
	}

	if strings.HasSuffix(text, "?") {
		inner, err := d.parseType(strings.TrimSuffix(text, "?"), nil)
		if err != nil {
			return nil, err
		}

		return types.MakeNullable(inner), nil
	}

	if strings.HasPrefix(text, "Array<") && strings.HasSuffix(text, ">") {
		elem, err := d.parseType(text[len("Array<"):len(text)-1], nil)
		if err != nil {
			return nil, err
		}

		return &types.ArrayType{ElemType: elem}, nil
	}

	if pt, ok := primitives[text]; ok {
		return pt, nil
	}

	if cls, err := d.lookupClass(text); err == nil {
		return cls.DefaultType(), nil
	} else if d.ambiguous[text] {
		return nil, err
	}

	for _, name := range []string{text, "kotlin." + text} {
		if bc, ok := types.BuiltinByName(name); ok {
			return types.NewClassType(bc), nil
		}
	}

	return nil, errors.Errorf("unknown type `%s`", text)
}

// parseTypes parses a list of types.
func (d *decoder) parseTypes(texts []string) ([]types.Type, error) {
	var result []types.Type
	for _, text := range texts {
		typ, err := d.parseType(text, nil)
		if err != nil {
			return nil, err
		}

		result = append(result, typ)
	}

	return result, nil
}
