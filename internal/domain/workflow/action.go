package workflow

import "strings"

// LabelPrefix marks labels owned by the delivery workflow. Labels without the
// prefix never route anywhere.
const LabelPrefix = "stone-"

const (
	LabelReadyForTests = "stone-ready-for-tests"
	LabelDocs          = "stone-docs"
	LabelTestFailure   = "stone-test-failure"
)

type Action string

const (
	ActionProcess Action = "process"
	ActionPM      Action = "pm"
	ActionQA      Action = "qa"
	ActionFeature Action = "feature"
	ActionAudit   Action = "audit"
	ActionTest    Action = "test"
)

// labelActions is the closed label -> action dispatch table. Lookups outside
// the table are a no-op, never an error.
var labelActions = map[string]Action{
	"stone-process":    ActionProcess,
	"stone-pm":         ActionPM,
	"stone-qa":         ActionQA,
	"stone-feature":    ActionFeature,
	"stone-audit":      ActionAudit,
	LabelReadyForTests: ActionTest,
}

func IsStoneLabel(label string) bool {
	return strings.HasPrefix(strings.TrimSpace(label), LabelPrefix)
}

// ActionForLabel resolves a label to its workflow action. The second return is
// false for labels outside the reserved prefix or absent from the table.
func ActionForLabel(label string) (Action, bool) {
	trimmed := strings.TrimSpace(label)
	if !strings.HasPrefix(trimmed, LabelPrefix) {
		return "", false
	}

	action, ok := labelActions[trimmed]
	return action, ok
}
