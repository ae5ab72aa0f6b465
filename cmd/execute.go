// Package cmd is the driver of the backend: it parses command-line arguments,
// loads build profiles and runs the lowering pipeline over program
// descriptions.
package cmd

import (
	"fmt"
	"os"

	"github.com/ComedicChimera/olive"

	"irbackend/common"
	"irbackend/report"
)

// Execute is the main entry point for the `irbackend` CLI utility.  It returns
// the exit code of the process.
func Execute() int {
	cli := olive.NewCLI(common.ToolName, "irbackend lowers high-level IR modules for code generation", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	lowerCmd := cli.AddSubcommand("lower", "lower a program description", true)
	lowerCmd.AddPrimaryArg("profile-path", "the path to the build profile or its directory", true)
	lowerCmd.AddStringArg("input", "i", "the program description to lower instead of the profile's", false)
	lowerCmd.AddStringArg("output", "o", "the file to write the lowered module to", false)
	lowerCmd.AddFlag("native", "n", "emit native declarations instead of the lowered IR")
	lowerCmd.AddFlag("debug", "d", "dump the profile and the pipeline before lowering")

	cli.AddSubcommand("phases", "list the lowering phases", false)
	cli.AddSubcommand("version", "print the backend version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		fmt.Println(err)
		return 2
	}

	loglevel, _ := result.Arguments["loglevel"].(string)
	report.InitReporter(report.LogLevelFromName(loglevel))

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "lower":
		return execLowerCommand(subResult)
	case "phases":
		return execPhasesCommand()
	case "version":
		report.DisplayInfoMessage(common.ToolName+" version", common.ToolVersion)
	}

	return 0
}

// execLowerCommand executes the `lower` subcommand.
func execLowerCommand(result *olive.ArgParseResult) int {
	profilePath, _ := result.PrimaryArg()

	profile, err := LoadProfile(profilePath)
	if err != nil {
		report.ReportStdError("profile", err)
		return 1
	}

	if input, ok := result.Arguments["input"]; ok {
		profile.InputPath = input.(string)
	}

	if output, ok := result.Arguments["output"]; ok {
		profile.OutputPath = output.(string)
	}

	if result.HasFlag("native") {
		profile.Native = true
	}

	if result.HasFlag("debug") {
		profile.Debug = true
	}

	if !NewDriver(profile).Run() {
		return 1
	}

	return 0
}
