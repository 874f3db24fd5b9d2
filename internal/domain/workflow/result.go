package workflow

// StageResult records one stage execution. Immutable after creation.
type StageResult struct {
	StageType       string
	Success         bool
	Output          string
	ErrorOutput     string
	DurationSeconds float64
}

// PipelineResult aggregates the executed stages. Stages is always a strict
// prefix of the configured stage list: execution stops at the first failure,
// so a truncated Stages slice ends with a failed stage.
type PipelineResult struct {
	Success bool
	Stages  []StageResult
}

// FailedStage returns the failing stage when the pipeline did not succeed.
func (r PipelineResult) FailedStage() (StageResult, bool) {
	for _, stage := range r.Stages {
		if !stage.Success {
			return stage, true
		}
	}
	return StageResult{}, false
}

type BuildResult struct {
	Success         bool
	Output          string
	DurationSeconds float64
}

type DeploymentResult struct {
	Success         bool
	Output          string
	DurationSeconds float64
	Environment     string
}

// CommitState is the tracker's commit-status vocabulary.
type CommitState string

const (
	CommitStateSuccess CommitState = "success"
	CommitStateFailure CommitState = "failure"
	CommitStatePending CommitState = "pending"
)

// CommitStateFor maps an aggregate pipeline outcome to a commit state.
func CommitStateFor(result PipelineResult) CommitState {
	if result.Success {
		return CommitStateSuccess
	}
	return CommitStateFailure
}
