package orchestrator

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadProfileFromFile(t *testing.T) {
	path := writeProfile(t, `
version = 1

[[stages]]
name = "unit"
command = "go test {path}"

[[stages]]
name = "smoke"
command = "./smoke.sh {branch}"
`)

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if len(profile.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(profile.Stages))
	}
	if profile.Stages[1].Name != "smoke" || profile.Stages[1].Command != "./smoke.sh {branch}" {
		t.Fatalf("stage[1] = %+v", profile.Stages[1])
	}
}

func TestLoadProfileMissingFileYieldsDefault(t *testing.T) {
	profile, err := LoadProfile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	want := DefaultProfile()
	if len(profile.Stages) != len(want.Stages) {
		t.Fatalf("stages = %d, want %d", len(profile.Stages), len(want.Stages))
	}
	for i := range want.Stages {
		if profile.Stages[i] != want.Stages[i] {
			t.Fatalf("stage[%d] = %+v, want %+v", i, profile.Stages[i], want.Stages[i])
		}
	}
}

func TestLoadProfileEmptyPathYieldsDefault(t *testing.T) {
	profile, err := LoadProfile("  ")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if profile.Version != 1 || len(profile.Stages) == 0 {
		t.Fatalf("profile = %+v", profile)
	}
}

func TestLoadProfileRejectsBadVersion(t *testing.T) {
	path := writeProfile(t, `
version = 2

[[stages]]
name = "unit"
command = "go test ./..."
`)
	if _, err := LoadProfile(path); err == nil {
		t.Fatalf("LoadProfile() expected version error")
	}
}

func TestLoadProfileRejectsDuplicateStageNames(t *testing.T) {
	path := writeProfile(t, `
version = 1

[[stages]]
name = "unit"
command = "go test ./..."

[[stages]]
name = "unit"
command = "go test -race ./..."
`)
	if _, err := LoadProfile(path); err == nil {
		t.Fatalf("LoadProfile() expected duplicate name error")
	}
}

func TestLoadProfileRejectsEmptyCommand(t *testing.T) {
	path := writeProfile(t, `
version = 1

[[stages]]
name = "unit"
command = "  "
`)
	if _, err := LoadProfile(path); err == nil {
		t.Fatalf("LoadProfile() expected command error")
	}
}
