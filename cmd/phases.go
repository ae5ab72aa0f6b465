package cmd

import (
	"github.com/pterm/pterm"

	"irbackend/lower"
	"irbackend/report"
)

// execPhasesCommand displays the steps of the default lowering pipeline.
func execPhasesCommand() int {
	p, err := lower.BuildPipeline(lower.DefaultConfig())
	if err != nil {
		report.ReportStdError("pipeline", err)
		return 1
	}

	data := pterm.TableData{{"Name", "Scope", "Default", "Required", "Description"}}
	for _, step := range p.Steps() {
		data = append(data, []string{
			step.Name,
			step.Scope,
			yesNo(step.DefaultEnabled),
			yesNo(step.Required),
			step.Description,
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		report.ReportStdError("phases", err)
		return 1
	}

	return 0
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
