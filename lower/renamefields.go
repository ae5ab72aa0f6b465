package lower

import (
	"strconv"

	"irbackend/ir"
)

// RenameFields gives every field of a class a distinct name.  Non-private
// fields keep their names; clashing private fields are renamed name$1,
// name$2 and so on.
func RenameFields() Phase[*FileContext] {
	return ClassPass("RenameFields", "Rename clashing fields",
		func(fc *FileContext) ClassLoweringPass {
			return fieldRenamer{}
		},
	)
}

type fieldRenamer struct{}

func (fieldRenamer) LowerClass(cls *ir.Class) {
	var fields []*ir.Field
	for _, decl := range cls.Decls {
		if field, ok := decl.(*ir.Field); ok {
			fields = append(fields, field)
		}
	}

	taken := make(map[string]bool)
	for _, field := range fields {
		if field.Visibility != ir.Private {
			taken[field.Name] = true
		}
	}

	for _, field := range fields {
		if field.Visibility != ir.Private {
			continue
		}

		if !taken[field.Name] {
			taken[field.Name] = true
			continue
		}

		for n := 1; ; n++ {
			name := field.Name + "$" + strconv.Itoa(n)
			if !taken[name] {
				field.Name = name
				taken[name] = true
				break
			}
		}
	}
}
