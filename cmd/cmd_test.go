package cmd

import (
	"os"
	"testing"

	"github.com/pterm/pterm"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"irbackend": func() int {
			pterm.DisableColor()
			return Execute()
		},
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{Dir: "testdata/script"})
}
