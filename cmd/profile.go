package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"golang.org/x/mod/semver"

	"irbackend/common"
	"irbackend/util"
)

// BuildProfile is a loaded and validated build profile.  All of its paths are
// absolute.
type BuildProfile struct {
	Name string

	// ProfilePath is the path of the profile file itself.
	ProfilePath string

	// InputPath is the path of the program description to lower.
	InputPath string

	// OutputPath is the path to write the lowered module to.  An empty path
	// means standard output.
	OutputPath string

	Workers int
	Debug   bool
	Native  bool

	// Phases holds the phase toggles of the profile.
	Phases map[string]bool
}

// tomlProfile is the on-disk representation of a build profile.
type tomlProfile struct {
	Name        string          `toml:"name"`
	ToolVersion string          `toml:"tool-version"`
	Input       string          `toml:"input"`
	Output      string          `toml:"output"`
	Workers     int             `toml:"workers"`
	Debug       bool            `toml:"debug"`
	Native      bool            `toml:"native"`
	Phases      map[string]bool `toml:"phases"`
}

// LoadProfile loads the build profile at path.  If path is a directory, the
// profile file is looked for inside it.
func LoadProfile(path string) (*BuildProfile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if finfo, err := os.Stat(absPath); err != nil {
		return nil, errors.Wrap(err, "loading build profile")
	} else if finfo.IsDir() {
		absPath = filepath.Join(absPath, common.ProfileFileName)
	}

	buff, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading build profile")
	}

	tp := &tomlProfile{}
	if err := toml.Unmarshal(buff, tp); err != nil {
		return nil, errors.Wrapf(err, "profile %s", filepath.Base(absPath))
	}

	if err := validateProfile(tp); err != nil {
		return nil, errors.Wrapf(err, "profile %s", filepath.Base(absPath))
	}

	dir := filepath.Dir(absPath)
	profile := &BuildProfile{
		Name:        tp.Name,
		ProfilePath: absPath,
		InputPath:   resolvePath(dir, tp.Input),
		Workers:     tp.Workers,
		Debug:       tp.Debug,
		Native:      tp.Native,
		Phases:      tp.Phases,
	}

	if profile.InputPath == "" {
		profile.InputPath = filepath.Join(dir, tp.Name+common.ProgramFileExt)
	}

	if tp.Output != "" {
		profile.OutputPath = resolvePath(dir, tp.Output)
	}

	if profile.Workers == 0 {
		profile.Workers = 1
	}

	return profile, nil
}

// validateProfile checks the fields of a decoded profile.
func validateProfile(tp *tomlProfile) error {
	if tp.Name == "" {
		return errors.New("missing profile name")
	}

	if tp.ToolVersion != "" {
		if !semver.IsValid(tp.ToolVersion) {
			return fmt.Errorf("invalid tool version: `%s`", tp.ToolVersion)
		}

		if semver.Major(tp.ToolVersion) != semver.Major(common.ToolVersion) {
			return fmt.Errorf("profile targets %s %s which is incompatible with %s",
				common.ToolName, tp.ToolVersion, common.ToolVersion)
		}

		if semver.Compare(tp.ToolVersion, common.ToolVersion) > 0 {
			return fmt.Errorf("profile requires %s %s or newer", common.ToolName, tp.ToolVersion)
		}
	}

	if tp.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", tp.Workers)
	}

	return nil
}

// resolvePath makes path absolute relative to dir.
func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}

// toggleNames returns the phase names toggled by the profile in order.
func (bp *BuildProfile) toggleNames() []string {
	return util.SortedKeys(bp.Phases)
}
