package report

import (
	"fmt"
)

// TextSpan represents a range or "span" of source text. It is used to locate
// erroneous or otherwise significant nodes in the original program.  Text
// spans are inclusive on both sides and zero-indexed.
type TextSpan struct {
	// The line and column beginning the text span.
	StartLine, StartCol int

	// The line and column ending the text span.
	EndLine, EndCol int
}

// NewSpanOver returns a new text span which spans over and between the two
// given text spans.
func NewSpanOver(start, end *TextSpan) *TextSpan {
	return &TextSpan{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func (ts *TextSpan) String() string {
	if ts == nil {
		return "?"
	}

	return fmt.Sprintf("%d:%d", ts.StartLine+1, ts.StartCol+1)
}

// -----------------------------------------------------------------------------

// InternalError is an internal compiler error: a fault that indicates a defect
// in the lowering pipeline rather than an invalid input program.  Internal
// errors are never batched.
type InternalError struct {
	Message string
}

func (ie *InternalError) Error() string {
	return "internal compiler error: " + ie.Message
}

// Fault raises an internal compiler error.  It panics with an *InternalError
// which is recovered at the nearest phase boundary by CatchFault.
func Fault(message string, args ...interface{}) {
	panic(&InternalError{Message: fmt.Sprintf(message, args...)})
}

// CatchFault converts a panicking internal compiler error into an error
// stored in errp.  Any other panic value is re-raised.
// NB: This function must ALWAYS be deferred.
func CatchFault(errp *error) {
	if x := recover(); x != nil {
		switch v := x.(type) {
		case *InternalError:
			*errp = v
		case error:
			if *errp == nil {
				*errp = &InternalError{Message: v.Error()}
			}
		default:
			panic(x)
		}
	}
}
