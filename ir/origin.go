package ir

import "sync"

// Origin records why an element exists: whether it was written by the user or
// synthesized by the compiler and, if so, by which lowering.  Origins are
// interned so they can be compared by identity.
type Origin struct {
	Name      string
	Synthetic bool
}

func (o *Origin) String() string {
	return o.Name
}

var (
	originsMu sync.Mutex
	origins   = make(map[string]*Origin)
)

// DefineOrigin returns the interned origin with the given name, creating it if
// it does not exist.
func DefineOrigin(name string, synthetic bool) *Origin {
	originsMu.Lock()
	defer originsMu.Unlock()

	if o, ok := origins[name]; ok {
		return o
	}

	o := &Origin{Name: name, Synthetic: synthetic}
	origins[name] = o
	return o
}

// Enumeration of origins.
var (
	OriginDefined               = DefineOrigin("DEFINED", false)
	OriginFakeOverride          = DefineOrigin("FAKE_OVERRIDE", false)
	OriginFileClass             = DefineOrigin("FILE_CLASS", true)
	OriginMultifileFacade       = DefineOrigin("MULTIFILE_FACADE", true)
	OriginDefaultImpls          = DefineOrigin("DEFAULT_IMPLS", true)
	OriginEnumValues            = DefineOrigin("ENUM_VALUES", true)
	OriginEnumValuesField       = DefineOrigin("ENUM_VALUES_FIELD", true)
	OriginEnumEntryField        = DefineOrigin("ENUM_ENTRY_FIELD", true)
	OriginEnumConstructorParam  = DefineOrigin("ENUM_CONSTRUCTOR_PARAMETER", true)
	OriginObjectInstance        = DefineOrigin("OBJECT_INSTANCE", true)
	OriginPropertyBackingField  = DefineOrigin("PROPERTY_BACKING_FIELD", true)
	OriginPropertyAccessor      = DefineOrigin("PROPERTY_ACCESSOR", true)
	OriginLambda                = DefineOrigin("LAMBDA", false)
	OriginLambdaImpl            = DefineOrigin("LAMBDA_IMPL", true)
	OriginFunctionReferenceImpl = DefineOrigin("FUNCTION_REFERENCE_IMPL", true)
	OriginStaticInitializer     = DefineOrigin("STATIC_INITIALIZER", true)
	OriginContinuationParameter = DefineOrigin("CONTINUATION_PARAMETER", true)
	OriginDefaultConstructor    = DefineOrigin("DEFAULT_CONSTRUCTOR", true)
	OriginLateinitCheck         = DefineOrigin("LATEINIT_CHECK", true)
	OriginLoweredLoop           = DefineOrigin("LOWERED_LOOP", true)
	OriginTailrecTemporary      = DefineOrigin("TAILREC_TEMPORARY", true)
	OriginTemporary             = DefineOrigin("TEMPORARY", true)
	OriginSafeCast              = DefineOrigin("SAFE_CAST", true)
	OriginStringConcatenation   = DefineOrigin("STRING_CONCATENATION", false)
	OriginInitializer           = DefineOrigin("INITIALIZER", true)
	OriginCapturedValueField    = DefineOrigin("FIELD_FOR_CAPTURED_VALUE", true)
)
