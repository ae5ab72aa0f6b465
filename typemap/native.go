package typemap

import (
	"sort"
	"strings"
	"sync"

	lltypes "github.com/llir/llvm/ir/types"

	"irbackend/report"
)

// nativeLayout holds the named LLVM struct types standing for classes in
// native code.
type nativeLayout struct {
	mu      sync.Mutex
	classes map[string]*lltypes.StructType
}

func newNativeLayout() *nativeLayout {
	return &nativeLayout{classes: make(map[string]*lltypes.StructType)}
}

func (nl *nativeLayout) classType(internalName string) *lltypes.StructType {
	nl.mu.Lock()
	defer nl.mu.Unlock()

	if st, ok := nl.classes[internalName]; ok {
		return st
	}

	st := &lltypes.StructType{Opaque: true}
	st.SetName(strings.ReplaceAll(internalName, "/", "."))
	nl.classes[internalName] = st
	return st
}

// NativeClassTypes returns the class structs created by native projections so
// far, sorted by name.
func (m *Mapper) NativeClassTypes() []*lltypes.StructType {
	m.native.mu.Lock()
	defer m.native.mu.Unlock()

	result := make([]*lltypes.StructType, 0, len(m.native.classes))
	for _, st := range m.native.classes {
		result = append(result, st)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})

	return result
}

// NativeType returns the LLVM type holding values of the type with the given
// descriptor.  References are pointers to opaque class structs; arrays are
// pointers to a length-prefixed struct.
func (m *Mapper) NativeType(desc string) lltypes.Type {
	typ, rest := m.nativeType(desc)
	if rest != "" {
		report.Fault("malformed type descriptor %q", desc)
	}

	return typ
}

// NativeMethodType returns the LLVM function type of a method with the given
// descriptor.  Instance methods take their receiver as an additional first
// parameter.
func (m *Mapper) NativeMethodType(desc string, receiver string) *lltypes.FuncType {
	if !strings.HasPrefix(desc, "(") {
		report.Fault("malformed method descriptor %q", desc)
	}

	var params []lltypes.Type
	if receiver != "" {
		params = append(params, lltypes.NewPointer(m.native.classType(receiver)))
	}

	rest := desc[1:]
	for !strings.HasPrefix(rest, ")") {
		if rest == "" {
			report.Fault("malformed method descriptor %q", desc)
		}

		var param lltypes.Type
		param, rest = m.nativeType(rest)
		params = append(params, param)
	}

	ret, rest := m.nativeType(rest[1:])
	if rest != "" {
		report.Fault("malformed method descriptor %q", desc)
	}

	return lltypes.NewFunc(ret, params...)
}

// nativeType converts the first type of desc and returns the unconsumed
// remainder.
func (m *Mapper) nativeType(desc string) (lltypes.Type, string) {
	if desc == "" {
		report.Fault("empty type descriptor")
	}

	switch desc[0] {
	case 'V':
		return lltypes.Void, desc[1:]
	case 'Z':
		return lltypes.I1, desc[1:]
	case 'B':
		return lltypes.I8, desc[1:]
	case 'C', 'S':
		return lltypes.I16, desc[1:]
	case 'I':
		return lltypes.I32, desc[1:]
	case 'J':
		return lltypes.I64, desc[1:]
	case 'F':
		return lltypes.Float, desc[1:]
	case 'D':
		return lltypes.Double, desc[1:]
	case 'L':
		end := strings.IndexByte(desc, ';')
		if end < 0 {
			report.Fault("unterminated class descriptor %q", desc)
		}

		return lltypes.NewPointer(m.native.classType(desc[1:end])), desc[end+1:]
	case '[':
		elem, rest := m.nativeType(desc[1:])
		if elem.Equal(lltypes.Void) {
			report.Fault("array of void in descriptor %q", desc)
		}

		return lltypes.NewPointer(lltypes.NewStruct(lltypes.I32, lltypes.NewArray(0, elem))), rest
	}

	report.Fault("unknown type descriptor %q", desc)
	return nil, ""
}
