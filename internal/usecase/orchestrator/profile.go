package orchestrator

import (
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// StageConfig describes one named pipeline stage. The configured order is the
// execution order.
type StageConfig struct {
	Name    string `toml:"name"`
	Command string `toml:"command"`
}

type Profile struct {
	Version int           `toml:"version"`
	Stages  []StageConfig `toml:"stages"`
}

// DefaultProfile is used when no pipeline.toml is present.
func DefaultProfile() Profile {
	return Profile{
		Version: 1,
		Stages: []StageConfig{
			{Name: "unit", Command: "go test {path}"},
			{Name: "integration", Command: "go test -tags=integration {path}"},
			{Name: "e2e", Command: "go test -tags=e2e {path}"},
		},
	}
}

// LoadProfile reads the stage profile. A missing file yields the default
// profile rather than an error.
func LoadProfile(profileFile string) (Profile, error) {
	path := strings.TrimSpace(profileFile)
	if path == "" {
		return DefaultProfile(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultProfile(), nil
		}
		return Profile{}, err
	}

	var profile Profile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return Profile{}, err
	}
	if err := validateProfile(profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func validateProfile(profile Profile) error {
	if profile.Version != 1 {
		return errors.New("unsupported pipeline profile version: expected version = 1")
	}
	if len(profile.Stages) == 0 {
		return errors.New("pipeline profile requires at least one stage")
	}

	seen := make(map[string]struct{}, len(profile.Stages))
	for _, stage := range profile.Stages {
		name := strings.TrimSpace(stage.Name)
		if name == "" {
			return errors.New("stage name is required")
		}
		if strings.TrimSpace(stage.Command) == "" {
			return errors.New("stage " + name + " requires a command")
		}
		if _, ok := seen[name]; ok {
			return errors.New("duplicate stage name " + name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
