package report

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Severity is the severity of a user-facing diagnostic.
type Severity int

// Enumeration of diagnostic severities.
const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// Diagnostic is a single user-facing message discovered during lowering: eg.
// a private type escaping through a broader-visibility inline function.
type Diagnostic struct {
	Severity Severity

	// Code is the stable identifier of the diagnostic kind.
	Code string

	// File is the path of the file containing the offending node.
	File string

	// Span is the location of the offending node.  It may be nil.
	Span *TextSpan

	// Message is the rendered message.
	Message string
}

func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s:%s: %s: %s [%s]", d.File, d.Span, d.Severity, d.Message, d.Code)
}

// ErrDiagnostics is returned by a pipeline step that finished with at least
// one error diagnostic in its sink.
var ErrDiagnostics = errors.New("lowering finished with errors")

// DiagnosticSink accumulates diagnostics for one compilation.  Reporting a
// diagnostic never halts the run: the caller decides whether to fail once the
// pipeline step finishes.  The sink is safe for concurrent use.
type DiagnosticSink struct {
	m     sync.Mutex
	diags []*Diagnostic
}

// NewDiagnosticSink creates a new empty diagnostic sink.
func NewDiagnosticSink() *DiagnosticSink {
	return &DiagnosticSink{}
}

// Report adds a diagnostic to the sink.
func (ds *DiagnosticSink) Report(d *Diagnostic) {
	ds.m.Lock()
	defer ds.m.Unlock()

	ds.diags = append(ds.diags, d)
}

// Errorf reports an error diagnostic.
func (ds *DiagnosticSink) Errorf(code, file string, span *TextSpan, msg string, args ...interface{}) {
	ds.Report(&Diagnostic{
		Severity: SeverityError,
		Code:     code,
		File:     file,
		Span:     span,
		Message:  fmt.Sprintf(msg, args...),
	})
}

// Warnf reports a warning diagnostic.
func (ds *DiagnosticSink) Warnf(code, file string, span *TextSpan, msg string, args ...interface{}) {
	ds.Report(&Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		File:     file,
		Span:     span,
		Message:  fmt.Sprintf(msg, args...),
	})
}

// ErrorCount returns the number of error diagnostics.
func (ds *DiagnosticSink) ErrorCount() int {
	return ds.count(SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (ds *DiagnosticSink) WarningCount() int {
	return ds.count(SeverityWarning)
}

// HasErrors returns whether any error diagnostic was reported.
func (ds *DiagnosticSink) HasErrors() bool {
	return ds.ErrorCount() > 0
}

func (ds *DiagnosticSink) count(sev Severity) int {
	ds.m.Lock()
	defer ds.m.Unlock()

	n := 0
	for _, d := range ds.diags {
		if d.Severity == sev {
			n++
		}
	}

	return n
}

// Sorted returns a copy of the reported diagnostics ordered by file, position
// and code.  Files lowered concurrently report in arbitrary order, so anything
// displayed or compared must go through this.
func (ds *DiagnosticSink) Sorted() []*Diagnostic {
	ds.m.Lock()
	out := make([]*Diagnostic, len(ds.diags))
	copy(out, ds.diags)
	ds.m.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}

		al, ac := spanKey(a.Span)
		bl, bc := spanKey(b.Span)
		if al != bl {
			return al < bl
		}
		if ac != bc {
			return ac < bc
		}

		if a.Code != b.Code {
			return a.Code < b.Code
		}

		return a.Message < b.Message
	})

	return out
}

func spanKey(span *TextSpan) (int, int) {
	if span == nil {
		return -1, -1
	}

	return span.StartLine, span.StartCol
}
