package lower

// fileStep creates a per-file step running lower over the file context.
func fileStep(name, description string, lower func(fc *FileContext)) *step[*FileContext] {
	return &step[*FileContext]{
		info: PhaseInfo{Name: name, Description: description, Scope: "file", DefaultEnabled: true},
		lower: func(lc *Context, fc *FileContext) error {
			lower(fc)
			return nil
		},
	}
}

// StartTrackingClasses opens the class tracking window of the file and
// collects the classes it already declares.
func StartTrackingClasses() Phase[*FileContext] {
	return Required[*FileContext](fileStep("StartTrackingClasses", "Start tracking the classes of the file",
		func(fc *FileContext) {
			fc.Registry.Start()
			fc.Registry.CollectClasses(fc.File)
			recordMetadata(fc.File)
		},
	))
}

// StopTrackingClasses closes the class tracking window of the file.
func StopTrackingClasses() Phase[*FileContext] {
	return Required[*FileContext](fileStep("StopTrackingClasses", "Stop tracking the classes of the file",
		func(fc *FileContext) {
			fc.Registry.Stop()
		},
	))
}
