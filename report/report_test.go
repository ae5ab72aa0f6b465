package report

import (
	"fmt"
	"sync"
	"testing"

	"github.com/kr/pretty"
)

func TestSortedDiagnostics(t *testing.T) {
	ds := NewDiagnosticSink()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds.Errorf("E", fmt.Sprintf("f%d.kt", i%2), &TextSpan{StartLine: 8 - i}, "error %d", i)
		}(i)
	}
	wg.Wait()

	ds.Warnf("W", "f0.kt", nil, "unlocated")

	var got []string
	for _, d := range ds.Sorted() {
		got = append(got, d.String())
	}

	want := []string{
		"f0.kt:?: warning: unlocated [W]",
		"f0.kt:3:1: error: error 6 [E]",
		"f0.kt:5:1: error: error 4 [E]",
		"f0.kt:7:1: error: error 2 [E]",
		"f0.kt:9:1: error: error 0 [E]",
		"f1.kt:2:1: error: error 7 [E]",
		"f1.kt:4:1: error: error 5 [E]",
		"f1.kt:6:1: error: error 3 [E]",
		"f1.kt:8:1: error: error 1 [E]",
	}

	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Errorf("sorted diagnostics differ: %v", diff)
	}

	if ds.ErrorCount() != 8 || ds.WarningCount() != 1 || !ds.HasErrors() {
		t.Errorf("wrong counts: %d errors, %d warnings", ds.ErrorCount(), ds.WarningCount())
	}
}

func TestCatchFault(t *testing.T) {
	err := func() (err error) {
		defer CatchFault(&err)
		Fault("bad node %s", "x")
		return nil
	}()

	if _, ok := err.(*InternalError); !ok || err.Error() != "internal compiler error: bad node x" {
		t.Errorf("unexpected error %v", err)
	}

	defer func() {
		if x := recover(); x != "other" {
			t.Errorf("foreign panic was not re-raised: %v", x)
		}
	}()

	func() (err error) {
		defer CatchFault(&err)
		panic("other")
	}()
}
