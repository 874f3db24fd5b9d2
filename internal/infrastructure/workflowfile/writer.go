// Package workflowfile emits the on-disk workflow definition files consumed
// by the delivery automation. The engine only triggers regeneration; the file
// shape is not part of the core contract.
package workflowfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/UOR-Foundation/stone/internal/ports"
)

type Writer struct {
	dir string
}

var _ ports.WorkflowWriter = (*Writer)(nil)

func New(dir string) *Writer {
	resolved := strings.TrimSpace(dir)
	if resolved == "" {
		resolved = filepath.Join(".github", "workflows")
	}
	return &Writer{dir: resolved}
}

type definition struct {
	Name string         `yaml:"name"`
	On   map[string]any `yaml:"on"`
	Jobs map[string]job `yaml:"jobs"`
}

type job struct {
	RunsOn string `yaml:"runs-on"`
	Steps  []step `yaml:"steps"`
}

type step struct {
	Name string `yaml:"name,omitempty"`
	Uses string `yaml:"uses,omitempty"`
	Run  string `yaml:"run,omitempty"`
}

// EnsureWorkflows writes every definition, overwriting existing files so
// regeneration stays idempotent.
func (w *Writer) EnsureWorkflows(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create workflow directory %q: %w", w.dir, err)
	}

	for filename, def := range definitions() {
		raw, err := yaml.Marshal(def)
		if err != nil {
			return fmt.Errorf("marshal workflow %q: %w", filename, err)
		}
		path := filepath.Join(w.dir, filename)
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return fmt.Errorf("write workflow %q: %w", path, err)
		}
	}
	return nil
}

func definitions() map[string]definition {
	labeledTrigger := map[string]any{
		"issues": map[string]any{"types": []string{"labeled"}},
	}

	return map[string]definition{
		"stone-test.yml": {
			Name: "Stone Test Pipeline",
			On:   labeledTrigger,
			Jobs: map[string]job{
				"test": {
					RunsOn: "ubuntu-latest",
					Steps: []step{
						{Uses: "actions/checkout@v4"},
						{Name: "Run test pipeline", Run: "stone pipeline --branch ${{ github.ref_name }}"},
					},
				},
			},
		},
		"stone-build.yml": {
			Name: "Stone Build",
			On:   labeledTrigger,
			Jobs: map[string]job{
				"build": {
					RunsOn: "ubuntu-latest",
					Steps: []step{
						{Uses: "actions/checkout@v4"},
						{Name: "Run build step", Run: "stone build --branch ${{ github.ref_name }}"},
					},
				},
			},
		},
		"stone-deploy.yml": {
			Name: "Stone Deploy",
			On:   labeledTrigger,
			Jobs: map[string]job{
				"deploy": {
					RunsOn: "ubuntu-latest",
					Steps: []step{
						{Uses: "actions/checkout@v4"},
						{Name: "Run deployment", Run: "stone deploy --env staging --branch ${{ github.ref_name }}"},
					},
				},
			},
		},
	}
}
