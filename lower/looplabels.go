package lower

import (
	"strconv"

	"irbackend/ir"
)

// UniqueLoopLabels gives every loop of the file a label unique within the
// file and points the labels of jumps at it.  Labelled loops keep their
// label as a prefix.
func UniqueLoopLabels() Phase[*FileContext] {
	return FilePass("UniqueLoopLabels", "Give every loop a unique label",
		func(fc *FileContext) FileLoweringPass {
			return &loopLabels{}
		},
	)
}

type loopLabels struct {
	counter int
}

func (ll *loopLabels) LowerFile(file *ir.File) {
	// loops are visited before the jumps they contain
	ir.Walk(file, func(elem ir.Element) {
		switch v := elem.(type) {
		case ir.Loop:
			lb := v.LoopData()

			prefix := lb.Label
			if prefix == "" {
				prefix = "loop"
			}

			ll.counter++
			lb.Label = prefix + "$" + strconv.Itoa(ll.counter)
		case ir.BreakContinue:
			jb := v.JumpBase()
			if jb.Loop != nil {
				jb.Label = jb.Loop.LoopData().Label
			}
		}
	})
}
