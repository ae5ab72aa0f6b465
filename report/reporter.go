package report

import (
	"sync"
	"time"
)

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during program execution.  The reporter respects the set
// log level and is synchronized: its methods can be safely called from multiple
// goroutines.
type Reporter struct {
	// The mutex used to synchonize different report method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// The time at which the current phase began.
	phaseStart time.Time

	// The name of the current phase.
	phaseName string
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages to the user (default).
)

// rep is the global reporter instance.
var rep = &Reporter{m: &sync.Mutex{}, logLevel: LogLevelError}

// InitReporter sets the log level of the global reporter.
func InitReporter(logLevel int) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.logLevel = logLevel
}

// LogLevelFromName converts a log level name as it is given on the command
// line into an enumerated log level.  Unknown names yield verbose.
func LogLevelFromName(name string) int {
	switch name {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	default:
		return LogLevelVerbose
	}
}

// LogLevel returns the current log level.
func LogLevel() int {
	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.logLevel
}

// -----------------------------------------------------------------------------

// ReportBeginPhase marks the beginning of a named compilation phase.  Nothing
// is displayed unless the reporter is verbose.
func ReportBeginPhase(name string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.phaseName = name
	rep.phaseStart = time.Now()
}

// ReportEndPhase marks the end of the current phase and displays its timing
// when the reporter is verbose.
func ReportEndPhase(success bool) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.phaseName == "" {
		return
	}

	if rep.logLevel == LogLevelVerbose {
		displayPhase(rep.phaseName, success, time.Since(rep.phaseStart))
	}

	rep.phaseName = ""
}

// ReportInfo displays an informational message in verbose mode.
func ReportInfo(tag, msg string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel == LogLevelVerbose {
		displayInfo(tag, msg)
	}
}

// ReportStdError reports a non-fatal, standard Go error.
func ReportStdError(tag string, err error) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel > LogLevelSilent {
		displayStdError(tag, err)
	}
}

// ReportDiagnostics displays every diagnostic in the sink that passes the log
// level.  Errors are displayed at LogLevelError and above, warnings at
// LogLevelWarn and above.
func ReportDiagnostics(sink *DiagnosticSink) {
	rep.m.Lock()
	defer rep.m.Unlock()

	for _, d := range sink.Sorted() {
		switch {
		case d.Severity == SeverityError && rep.logLevel >= LogLevelError:
			displayDiagnostic(d)
		case d.Severity == SeverityWarning && rep.logLevel >= LogLevelWarn:
			displayDiagnostic(d)
		}
	}
}

// ReportLoweringFinished displays the concluding message of a lowering run.
func ReportLoweringFinished(success bool, errorCount, warningCount int) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel == LogLevelVerbose {
		displayFinished(success, errorCount, warningCount)
	}
}
