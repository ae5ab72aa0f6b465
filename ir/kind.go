package ir

// Kind identifies the exact variant of an IR element.  The enumeration is
// closed: it covers every concrete element kind plus the abstract kinds which
// only exist as dispatch targets for handler fallback.
type Kind int

// Enumeration of abstract kinds.  These are never returned by Kind() except
// for KindErrorExpression which is also concrete.
const (
	KindElement Kind = iota
	KindPackageFragment
	KindDeclaration
	KindFunction
	KindBody
	KindExpression
	KindContainerExpression
	KindDeclarationReference
	KindSingletonReference
	KindValueAccess
	KindFieldAccess
	KindMemberAccess
	KindFunctionAccess
	KindCallableReference
	KindLoop
	KindBreakContinue
	KindErrorExpression

	// Packages
	KindModuleFragment
	KindFile
	KindExternalPackageFragment

	// Declarations
	KindClass
	KindSimpleFunction
	KindConstructor
	KindProperty
	KindField
	KindVariable
	KindTypeParameter
	KindValueParameter
	KindEnumEntry
	KindAnonymousInitializer
	KindTypeAlias
	KindErrorDeclaration

	// Bodies
	KindExpressionBody
	KindBlockBody
	KindSyntheticBody

	// Expressions
	KindConst
	KindVararg
	KindSpreadElement
	KindBlock
	KindComposite
	KindStringConcatenation
	KindGetObjectValue
	KindGetEnumValue
	KindGetValue
	KindSetValue
	KindGetField
	KindSetField
	KindCall
	KindConstructorCall
	KindDelegatingConstructorCall
	KindEnumConstructorCall
	KindGetClass
	KindFunctionReference
	KindPropertyReference
	KindFunctionExpression
	KindClassReference
	KindInstanceInitializerCall
	KindTypeOperatorCall
	KindWhen
	KindBranch
	KindElseBranch
	KindWhileLoop
	KindDoWhileLoop
	KindTry
	KindCatch
	KindBreak
	KindContinue
	KindReturn
	KindThrow
	KindErrorCallExpression

	kindCount
)

// kindFallbacks is the handler fallback table: when a visitor or transformer
// has no handler for a kind, it retries with the kind's fallback until it
// reaches KindElement.  Passes override a handful of handlers and rely on this
// exact order, so the table must not be changed casually.
var kindFallbacks = [kindCount]Kind{
	KindElement:              KindElement,
	KindPackageFragment:      KindElement,
	KindDeclaration:          KindElement,
	KindFunction:             KindDeclaration,
	KindBody:                 KindElement,
	KindExpression:           KindElement,
	KindContainerExpression:  KindExpression,
	KindDeclarationReference: KindExpression,
	KindSingletonReference:   KindDeclarationReference,
	KindValueAccess:          KindDeclarationReference,
	KindFieldAccess:          KindDeclarationReference,
	KindMemberAccess:         KindExpression,
	KindFunctionAccess:       KindMemberAccess,
	KindCallableReference:    KindMemberAccess,
	KindLoop:                 KindExpression,
	KindBreakContinue:        KindExpression,
	KindErrorExpression:      KindExpression,

	KindModuleFragment:          KindElement,
	KindFile:                    KindPackageFragment,
	KindExternalPackageFragment: KindPackageFragment,

	KindClass:                KindDeclaration,
	KindSimpleFunction:       KindFunction,
	KindConstructor:          KindFunction,
	KindProperty:             KindDeclaration,
	KindField:                KindDeclaration,
	KindVariable:             KindDeclaration,
	KindTypeParameter:        KindDeclaration,
	KindValueParameter:       KindDeclaration,
	KindEnumEntry:            KindDeclaration,
	KindAnonymousInitializer: KindDeclaration,
	KindTypeAlias:            KindDeclaration,
	KindErrorDeclaration:     KindDeclaration,

	KindExpressionBody: KindBody,
	KindBlockBody:      KindBody,
	KindSyntheticBody:  KindBody,

	KindConst:                     KindExpression,
	KindVararg:                    KindExpression,
	KindSpreadElement:             KindElement,
	KindBlock:                     KindContainerExpression,
	KindComposite:                 KindContainerExpression,
	KindStringConcatenation:       KindExpression,
	KindGetObjectValue:            KindSingletonReference,
	KindGetEnumValue:              KindSingletonReference,
	KindGetValue:                  KindValueAccess,
	KindSetValue:                  KindValueAccess,
	KindGetField:                  KindFieldAccess,
	KindSetField:                  KindFieldAccess,
	KindCall:                      KindFunctionAccess,
	KindConstructorCall:           KindFunctionAccess,
	KindDelegatingConstructorCall: KindFunctionAccess,
	KindEnumConstructorCall:       KindFunctionAccess,
	KindGetClass:                  KindExpression,
	KindFunctionReference:         KindCallableReference,
	KindPropertyReference:         KindCallableReference,
	KindFunctionExpression:        KindExpression,
	KindClassReference:            KindDeclarationReference,
	KindInstanceInitializerCall:   KindExpression,
	KindTypeOperatorCall:          KindExpression,
	KindWhen:                      KindExpression,
	KindBranch:                    KindElement,
	KindElseBranch:                KindBranch,
	KindWhileLoop:                 KindLoop,
	KindDoWhileLoop:               KindLoop,
	KindTry:                       KindExpression,
	KindCatch:                     KindElement,
	KindBreak:                     KindBreakContinue,
	KindContinue:                  KindBreakContinue,
	KindReturn:                    KindExpression,
	KindThrow:                     KindExpression,
	KindErrorCallExpression:       KindErrorExpression,
}

var kindNames = [kindCount]string{
	KindElement:              "ELEMENT",
	KindPackageFragment:      "PACKAGE_FRAGMENT",
	KindDeclaration:          "DECLARATION",
	KindFunction:             "FUNCTION",
	KindBody:                 "BODY",
	KindExpression:           "EXPRESSION",
	KindContainerExpression:  "CONTAINER_EXPRESSION",
	KindDeclarationReference: "DECLARATION_REFERENCE",
	KindSingletonReference:   "SINGLETON_REFERENCE",
	KindValueAccess:          "VALUE_ACCESS",
	KindFieldAccess:          "FIELD_ACCESS",
	KindMemberAccess:         "MEMBER_ACCESS",
	KindFunctionAccess:       "FUNCTION_ACCESS",
	KindCallableReference:    "CALLABLE_REFERENCE",
	KindLoop:                 "LOOP",
	KindBreakContinue:        "BREAK_CONTINUE",
	KindErrorExpression:      "ERROR_EXPR",

	KindModuleFragment:          "MODULE_FRAGMENT",
	KindFile:                    "FILE",
	KindExternalPackageFragment: "EXTERNAL_PACKAGE_FRAGMENT",

	KindClass:                "CLASS",
	KindSimpleFunction:       "FUN",
	KindConstructor:          "CONSTRUCTOR",
	KindProperty:             "PROPERTY",
	KindField:                "FIELD",
	KindVariable:             "VAR",
	KindTypeParameter:        "TYPE_PARAMETER",
	KindValueParameter:       "VALUE_PARAMETER",
	KindEnumEntry:            "ENUM_ENTRY",
	KindAnonymousInitializer: "ANONYMOUS_INITIALIZER",
	KindTypeAlias:            "TYPEALIAS",
	KindErrorDeclaration:     "ERROR_DECL",

	KindExpressionBody: "EXPRESSION_BODY",
	KindBlockBody:      "BLOCK_BODY",
	KindSyntheticBody:  "SYNTHETIC_BODY",

	KindConst:                     "CONST",
	KindVararg:                    "VARARG",
	KindSpreadElement:             "SPREAD_ELEMENT",
	KindBlock:                     "BLOCK",
	KindComposite:                 "COMPOSITE",
	KindStringConcatenation:       "STRING_CONCATENATION",
	KindGetObjectValue:            "GET_OBJECT",
	KindGetEnumValue:              "GET_ENUM",
	KindGetValue:                  "GET_VAR",
	KindSetValue:                  "SET_VAR",
	KindGetField:                  "GET_FIELD",
	KindSetField:                  "SET_FIELD",
	KindCall:                      "CALL",
	KindConstructorCall:           "CONSTRUCTOR_CALL",
	KindDelegatingConstructorCall: "DELEGATING_CONSTRUCTOR_CALL",
	KindEnumConstructorCall:       "ENUM_CONSTRUCTOR_CALL",
	KindGetClass:                  "GET_CLASS",
	KindFunctionReference:         "FUNCTION_REFERENCE",
	KindPropertyReference:         "PROPERTY_REFERENCE",
	KindFunctionExpression:        "FUN_EXPR",
	KindClassReference:            "CLASS_REFERENCE",
	KindInstanceInitializerCall:   "INSTANCE_INITIALIZER_CALL",
	KindTypeOperatorCall:          "TYPE_OP",
	KindWhen:                      "WHEN",
	KindBranch:                    "BRANCH",
	KindElseBranch:                "ELSE",
	KindWhileLoop:                 "WHILE",
	KindDoWhileLoop:               "DO_WHILE",
	KindTry:                       "TRY",
	KindCatch:                     "CATCH",
	KindBreak:                     "BREAK",
	KindContinue:                  "CONTINUE",
	KindReturn:                    "RETURN",
	KindThrow:                     "THROW",
	KindErrorCallExpression:       "ERROR_CALL",
}

// Fallback returns the kind whose handler is tried when no handler for k is
// registered.  The fallback of KindElement is KindElement itself.
func (k Kind) Fallback() Kind {
	return kindFallbacks[k]
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "UNKNOWN"
	}

	return kindNames[k]
}

// IsAbstract returns whether the kind is only a dispatch target.
func (k Kind) IsAbstract() bool {
	return k < KindModuleFragment && k != KindErrorExpression
}

// Chain returns k followed by every kind on its fallback chain, ending with
// KindElement.
func (k Kind) Chain() []Kind {
	chain := []Kind{k}
	for k != KindElement {
		k = k.Fallback()
		chain = append(chain, k)
	}

	return chain
}

// Kinds returns every kind in enumeration order.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}

	return kinds
}
