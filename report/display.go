package report

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// DisplayInfoMessage prints an informational message regardless of the log
// level.  It is used for direct answers to CLI requests (eg. `version`).
func DisplayInfoMessage(tag, msg string) {
	displayInfo(tag, msg)
}

func displayInfo(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// displayStdError displays a standard Go error.
func displayStdError(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// displayDiagnostic displays a single lowering diagnostic.
func displayDiagnostic(d *Diagnostic) {
	fmt.Printf("%s:%s: ", d.File, d.Span)

	if d.Severity == SeverityError {
		ErrorStyleBG.Print("error")
	} else {
		WarnStyleBG.Print("warning")
	}

	fmt.Printf(" %s ", d.Message)
	InfoColorFG.Println("[" + d.Code + "]")
}

// displayPhase displays the result and timing of a single phase.
func displayPhase(name string, success bool, elapsed time.Duration) {
	if success {
		SuccessStyleBG.Print("Done")
	} else {
		ErrorStyleBG.Print("Fail")
	}

	fmt.Printf(" %-32s ", name)
	InfoColorFG.Println(fmt.Sprintf("(%.3fs)", elapsed.Seconds()))
}

// displayFinished displays the concluding message of a lowering run.
func displayFinished(success bool, errorCount, warningCount int) {
	fmt.Print("\n")

	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Println(" warnings)")
	case 1:
		WarnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		WarnColorFG.Print(warningCount)
		fmt.Println(" warnings)")
	}
}
