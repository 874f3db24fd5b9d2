package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/UOR-Foundation/stone/internal/domain/workflow"
	"github.com/UOR-Foundation/stone/internal/ports"
)

type trackerCall struct {
	Method string
	Number int
	Body   string
	Labels []string
	Label  string
	SHA    string
	State  workflow.CommitState
}

type fakeTracker struct {
	mu     sync.Mutex
	issues map[int]ports.TrackerIssue
	calls  []trackerCall

	failures map[string]error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		issues:   make(map[int]ports.TrackerIssue),
		failures: make(map[string]error),
	}
}

func (f *fakeTracker) record(call trackerCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeTracker) callsFor(method string) []trackerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []trackerCall
	for _, call := range f.calls {
		if call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

func (f *fakeTracker) GetIssue(_ context.Context, number int) (ports.TrackerIssue, error) {
	if err := f.failures["GetIssue"]; err != nil {
		return ports.TrackerIssue{}, err
	}
	issue, ok := f.issues[number]
	if !ok {
		return ports.TrackerIssue{}, ports.ErrIssueNotFound
	}
	return issue, nil
}

func (f *fakeTracker) CreateComment(_ context.Context, number int, body string) error {
	if err := f.failures["CreateComment"]; err != nil {
		return err
	}
	f.record(trackerCall{Method: "CreateComment", Number: number, Body: body})
	return nil
}

func (f *fakeTracker) AddLabels(_ context.Context, number int, labels []string) error {
	if err := f.failures["AddLabels"]; err != nil {
		return err
	}
	f.record(trackerCall{Method: "AddLabels", Number: number, Labels: labels})
	return nil
}

func (f *fakeTracker) RemoveLabel(_ context.Context, number int, label string) error {
	if err := f.failures["RemoveLabel"]; err != nil {
		return err
	}
	f.record(trackerCall{Method: "RemoveLabel", Number: number, Label: label})
	return nil
}

func (f *fakeTracker) UpdateCommitStatus(_ context.Context, sha string, state workflow.CommitState, description string) error {
	if err := f.failures["UpdateCommitStatus"]; err != nil {
		return err
	}
	f.record(trackerCall{Method: "UpdateCommitStatus", SHA: sha, State: state, Body: description})
	return nil
}

// fakeRunner resolves each command against configured exit codes. Commands
// without an entry succeed with empty output.
type fakeRunner struct {
	mu       sync.Mutex
	commands []string

	exitCodes map[string]int
	stdout    map[string]string
	stderr    map[string]string
	runErr    error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		exitCodes: make(map[string]int),
		stdout:    make(map[string]string),
		stderr:    make(map[string]string),
	}
}

func (f *fakeRunner) Run(_ context.Context, command string) (ports.CommandResult, error) {
	f.mu.Lock()
	f.commands = append(f.commands, command)
	f.mu.Unlock()

	if f.runErr != nil {
		return ports.CommandResult{}, f.runErr
	}
	return ports.CommandResult{
		Stdout:   f.stdout[command],
		Stderr:   f.stderr[command],
		ExitCode: f.exitCodes[command],
	}, nil
}

func (f *fakeRunner) ranCommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

type fakeWriter struct {
	calls int
}

func (f *fakeWriter) EnsureWorkflows(_ context.Context) error {
	f.calls++
	return nil
}

// fakeRepo is an in-memory RunRepository.
type fakeRepo struct {
	mu         sync.Mutex
	deliveries map[string]struct{}
	runs       map[string]ports.PipelineRun
	stages     map[string][]ports.StageRecord
	workflows  []ports.WorkflowRunCreate
	prLinks    []ports.PRLinkCreate

	deliveryErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		deliveries: make(map[string]struct{}),
		runs:       make(map[string]ports.PipelineRun),
		stages:     make(map[string][]ports.StageRecord),
	}
}

func (f *fakeRepo) RecordDelivery(_ context.Context, deliveryID string, _ string, _ string) (bool, error) {
	if f.deliveryErr != nil {
		return false, f.deliveryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.deliveries[deliveryID]; ok {
		return false, nil
	}
	f.deliveries[deliveryID] = struct{}{}
	return true, nil
}

func (f *fakeRepo) CreatePipelineRun(_ context.Context, run ports.PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.runs[run.RunID]; ok {
		return fmt.Errorf("duplicate run %s", run.RunID)
	}
	f.runs[run.RunID] = run
	return nil
}

func (f *fakeRepo) AppendStageRecord(_ context.Context, record ports.StageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages[record.RunID] = append(f.stages[record.RunID], record)
	return nil
}

func (f *fakeRepo) FinishPipelineRun(_ context.Context, runID string, success bool, finishedAt string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[runID]
	if !ok {
		return ports.ErrRunNotFound
	}
	run.Success = success
	run.FinishedAt = finishedAt
	f.runs[runID] = run
	return nil
}

func (f *fakeRepo) GetPipelineRun(_ context.Context, runID string) (ports.PipelineRun, []ports.StageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[runID]
	if !ok {
		return ports.PipelineRun{}, nil, ports.ErrRunNotFound
	}
	return run, append([]ports.StageRecord(nil), f.stages[runID]...), nil
}

func (f *fakeRepo) ListPipelineRuns(_ context.Context, branch string, limit int) ([]ports.PipelineRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ports.PipelineRun
	for _, run := range f.runs {
		if branch != "" && run.Branch != branch {
			continue
		}
		out = append(out, run)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) RecordWorkflowRun(_ context.Context, input ports.WorkflowRunCreate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workflows = append(f.workflows, input)
	return nil
}

func (f *fakeRepo) RecordPRLink(_ context.Context, input ports.PRLinkCreate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prLinks = append(f.prLinks, input)
	return nil
}

// fakeUOW runs the callback directly; there is no real transaction to manage.
type fakeUOW struct{}

func (fakeUOW) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	return fn(ctx)
}

type testCache struct {
	data map[string]string
}

func newTestCache() *testCache {
	return &testCache{data: make(map[string]string)}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

type testEnv struct {
	orch    *Orchestrator
	tracker *fakeTracker
	runner  *fakeRunner
	writer  *fakeWriter
	repo    *fakeRepo
	cache   *testCache
}

func setupOrchestrator(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tracker: newFakeTracker(),
		runner:  newFakeRunner(),
		writer:  &fakeWriter{},
		repo:    newFakeRepo(),
		cache:   newTestCache(),
	}

	env.orch = New(
		Deps{
			Tracker: env.tracker,
			Runner:  env.runner,
			Writer:  env.writer,
			Repo:    env.repo,
			UOW:     fakeUOW{},
			Cache:   env.cache,
		},
		DefaultProfile(),
		Commands{
			Test:  "go test ./...",
			Build: "go build ./...",
			Deploy: map[string]string{
				"staging": "deploy.sh staging {branch}",
			},
		},
	)
	// Disarm real backoff waits.
	env.orch.retryPolicy.sleep = func(context.Context, time.Duration) error { return nil }
	return env
}

func containsLine(body string, line string) bool {
	return strings.Contains(body, line)
}
