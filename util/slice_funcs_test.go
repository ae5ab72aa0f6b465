package util

import (
	"reflect"
	"testing"
)

func TestSliceFuncs(t *testing.T) {
	if !Contains([]string{"a", "b"}, "b") || Contains([]string{"a"}, "c") {
		t.Error("Contains is wrong")
	}

	if got := Map([]int{1, 2, 3}, func(x int) int { return x * 2 }); !reflect.DeepEqual(got, []int{2, 4, 6}) {
		t.Errorf("Map = %v", got)
	}

	keys := SortedKeys(map[string]bool{"b": true, "c": false, "a": true})
	if !reflect.DeepEqual(keys, []string{"a", "b", "c"}) {
		t.Errorf("SortedKeys = %v", keys)
	}
}
