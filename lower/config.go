package lower

import (
	"github.com/pkg/errors"
)

// Config is the configuration of one lowering run.  It is supplied to the
// pipeline builder at compilation start: there is no global pass list.
type Config struct {
	// Workers is the number of files lowered concurrently inside the per-file
	// block.  Values below 1 are treated as 1.
	Workers int

	// Toggles turns named phases on or off, overriding their defaults.
	// Required phases cannot be turned off.
	Toggles map[string]bool
}

// DefaultConfig returns a configuration lowering one file at a time with
// every phase in its default state.
func DefaultConfig() *Config {
	return &Config{Workers: 1}
}

// workers returns the effective number of concurrent file workers.
func (c *Config) workers() int {
	if c.Workers < 1 {
		return 1
	}

	return c.Workers
}

// enabled returns whether the phase described by info should run.
func (c *Config) enabled(info PhaseInfo) bool {
	if info.Required {
		return true
	}

	if on, ok := c.Toggles[info.Name]; ok {
		return on
	}

	return info.DefaultEnabled
}

// checkToggles verifies that every toggle names a phase of steps and that no
// required phase is turned off.
func (c *Config) checkToggles(steps []PhaseInfo) error {
	byName := make(map[string]PhaseInfo, len(steps))
	for _, step := range steps {
		byName[step.Name] = step
	}

	for name, on := range c.Toggles {
		info, ok := byName[name]
		if !ok {
			return errors.Errorf("unknown phase toggle `%s`", name)
		}

		if info.Required && !on {
			return errors.Errorf("phase `%s` is required and cannot be disabled", name)
		}
	}

	return nil
}
