package types

import (
	"fmt"
	"sync"
)

// BuiltinClass is a classifier for a class the lowering pipeline knows about
// without a declaration in the compilation unit.
type BuiltinClass struct {
	id         uint64
	pkg        string
	name       string
	kind       ClassifierKind
	targetName string
}

func (bc *BuiltinClass) ClassifierID() uint64 {
	return bc.id
}

func (bc *BuiltinClass) ClassifierKind() ClassifierKind {
	return bc.kind
}

func (bc *BuiltinClass) PackageName() string {
	return bc.pkg
}

func (bc *BuiltinClass) NameSegments() []string {
	return []string{bc.name}
}

func (bc *BuiltinClass) ValueUnderlying() Type {
	return nil
}

func (bc *BuiltinClass) Supertypes() []Type {
	if bc == AnyClass {
		return nil
	}

	return []Type{AnyType}
}

func (bc *BuiltinClass) TargetName() (string, bool) {
	return bc.targetName, true
}

// Builtin classifier IDs occupy a fixed range below every symbol ID.
const (
	builtinIDBase  = 1
	functionIDBase = 256

	// MaxBuiltinID is the largest ID a builtin classifier may have.
	MaxBuiltinID = 1 << 12
)

func newBuiltin(n int, pkg, name string, kind ClassifierKind, target string) *BuiltinClass {
	return &BuiltinClass{
		id:         uint64(builtinIDBase + n),
		pkg:        pkg,
		name:       name,
		kind:       kind,
		targetName: target,
	}
}

// The builtin classes.
var (
	AnyClass          = newBuiltin(0, "kotlin", "Any", ClassifierClass, "java/lang/Object")
	StringClass       = newBuiltin(1, "kotlin", "String", ClassifierClass, "java/lang/String")
	ThrowableClass    = newBuiltin(2, "kotlin", "Throwable", ClassifierClass, "java/lang/Throwable")
	EnumClass         = newBuiltin(3, "kotlin", "Enum", ClassifierClass, "java/lang/Enum")
	AnnotationClass   = newBuiltin(4, "kotlin", "Annotation", ClassifierInterface, "java/lang/annotation/Annotation")
	NumberClass       = newBuiltin(5, "kotlin", "Number", ClassifierClass, "java/lang/Number")
	UnitClass         = newBuiltin(6, "kotlin", "Unit", ClassifierObject, "kotlin/Unit")
	ListClass         = newBuiltin(7, "kotlin.collections", "List", ClassifierInterface, "java/util/List")
	ContinuationClass = newBuiltin(8, "kotlin.coroutines", "Continuation", ClassifierInterface, "kotlin/coroutines/Continuation")

	UninitializedPropertyAccessExceptionClass = newBuiltin(9, "kotlin", "UninitializedPropertyAccessException", ClassifierClass, "kotlin/UninitializedPropertyAccessException")
	ClassCastExceptionClass                   = newBuiltin(10, "kotlin", "ClassCastException", ClassifierClass, "java/lang/ClassCastException")
	KClassClass                               = newBuiltin(11, "kotlin.reflect", "KClass", ClassifierInterface, "kotlin/reflect/KClass")
	FunctionReferenceImplClass                = newBuiltin(12, "kotlin.jvm.internal", "FunctionReferenceImpl", ClassifierClass, "kotlin/jvm/internal/FunctionReferenceImpl")
)

// Commonly used builtin types.
var (
	AnyType         Type = &ClassType{Classifier: AnyClass}
	NullableAnyType Type = &NullableType{ElemType: AnyType}
	StringType      Type = &ClassType{Classifier: StringClass}
	ThrowableType   Type = &ClassType{Classifier: ThrowableClass}
)

var (
	functionClassesMu sync.Mutex
	functionClasses   = make(map[int]*BuiltinClass)
)

// FunctionClass returns the builtin function interface of the given arity.
func FunctionClass(arity int) *BuiltinClass {
	if arity < 0 || functionIDBase+arity >= MaxBuiltinID {
		panic(fmt.Sprintf("function arity %d out of range", arity))
	}

	functionClassesMu.Lock()
	defer functionClassesMu.Unlock()

	if fc, ok := functionClasses[arity]; ok {
		return fc
	}

	fc := &BuiltinClass{
		id:         uint64(functionIDBase + arity),
		pkg:        "kotlin",
		name:       fmt.Sprintf("Function%d", arity),
		kind:       ClassifierInterface,
		targetName: fmt.Sprintf("kotlin/jvm/functions/Function%d", arity),
	}
	functionClasses[arity] = fc
	return fc
}

// Builtins returns the fixed builtin classes in ID order.
func Builtins() []*BuiltinClass {
	return []*BuiltinClass{
		AnyClass, StringClass, ThrowableClass, EnumClass, AnnotationClass,
		NumberClass, UnitClass, ListClass, ContinuationClass,
		UninitializedPropertyAccessExceptionClass, ClassCastExceptionClass,
		KClassClass, FunctionReferenceImplClass,
	}
}

// BuiltinByName looks up a fixed builtin class or function interface by its
// qualified source name.
func BuiltinByName(qualName string) (*BuiltinClass, bool) {
	for _, bc := range Builtins() {
		if QualifiedName(bc) == qualName {
			return bc, true
		}
	}

	var arity int
	if _, err := fmt.Sscanf(qualName, "kotlin.Function%d", &arity); err == nil && arity >= 0 && functionIDBase+arity < MaxBuiltinID {
		return FunctionClass(arity), true
	}

	return nil, false
}
