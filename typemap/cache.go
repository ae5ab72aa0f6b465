package typemap

import (
	"strconv"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"

	"irbackend/types"
)

// cache memoizes type mappings by the structural key of the mapped type.  The
// first mapping stored for a key wins, so concurrent mappers of the same type
// always observe one descriptor.
type cache struct {
	mu      sync.RWMutex
	entries map[uint64][]cacheEntry
	size    int
}

type cacheEntry struct {
	key string
	sig Signature
}

func newCache() *cache {
	return &cache{entries: make(map[uint64][]cacheEntry)}
}

func (c *cache) lookup(key string) (Signature, bool) {
	hash := xxh3.HashString(key)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, entry := range c.entries[hash] {
		if entry.key == key {
			return entry.sig, true
		}
	}

	return Signature{}, false
}

// store records sig for key unless another mapping got there first.  It
// returns the mapping which is now in the cache.
func (c *cache) store(key string, sig Signature) Signature {
	hash := xxh3.HashString(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.entries[hash] {
		if entry.key == key {
			return entry.sig
		}
	}

	c.entries[hash] = append(c.entries[hash], cacheEntry{key: key, sig: sig})
	c.size++
	return sig
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.size
}

// -----------------------------------------------------------------------------

// structuralKey returns a string identifying typ and mode such that two
// structurally equal types mapped in the same mode have the same key.
// Classifiers are identified by ID rather than name.
func structuralKey(typ types.Type, mode Mode) string {
	sb := &strings.Builder{}
	sb.WriteString(strconv.Itoa(int(mode)))
	sb.WriteRune('|')
	writeKey(sb, typ)
	return sb.String()
}

func writeKey(sb *strings.Builder, typ types.Type) {
	switch v := typ.(type) {
	case nil:
		sb.WriteRune('_')
	case types.PrimitiveType:
		sb.WriteRune('P')
		sb.WriteString(strconv.Itoa(int(v)))
	case *types.NullableType:
		sb.WriteRune('?')
		writeKey(sb, v.ElemType)
	case *types.ClassType:
		sb.WriteRune('C')
		sb.WriteString(strconv.FormatUint(v.Classifier.ClassifierID(), 10))

		if len(v.Args) > 0 {
			sb.WriteRune('<')
			for _, arg := range v.Args {
				if arg.IsStar() {
					sb.WriteRune('*')
				} else {
					sb.WriteString(strconv.Itoa(int(arg.Variance)))
					writeKey(sb, arg.Type)
				}
				sb.WriteRune(',')
			}
			sb.WriteRune('>')
		}
	case *types.TypeVar:
		sb.WriteRune('V')
		sb.WriteString(strconv.FormatUint(v.Param.ClassifierID(), 10))
	case *types.ArrayType:
		sb.WriteRune('[')
		writeKey(sb, v.ElemType)
	case *types.FuncType:
		if v.Suspend {
			sb.WriteRune('S')
		}

		sb.WriteString("F(")
		if v.ReceiverType != nil {
			writeKey(sb, v.ReceiverType)
			sb.WriteRune('.')
		}

		for _, paramType := range v.ParamTypes {
			writeKey(sb, paramType)
			sb.WriteRune(',')
		}

		sb.WriteRune(')')
		writeKey(sb, v.ReturnType)
	default:
		sb.WriteString(typ.Repr())
	}
}
