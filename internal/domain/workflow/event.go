package workflow

import (
	"regexp"
	"strconv"
	"strings"
)

type EventKind string

const (
	EventIssueLabeled EventKind = "issue_labeled"
	EventPullRequest  EventKind = "pull_request"
)

type PullRequestAction string

const (
	PRActionOpened      PullRequestAction = "opened"
	PRActionReopened    PullRequestAction = "reopened"
	PRActionSynchronize PullRequestAction = "synchronize"
	PRActionClosed      PullRequestAction = "closed"
)

// IssueLabeledEvent is constructed once per inbound labeled notification.
type IssueLabeledEvent struct {
	IssueNumber int
	Label       string
}

// PullRequestEvent carries the PR lifecycle fields the router dispatches on.
// Merged is only meaningful for the closed action.
type PullRequestEvent struct {
	Number  int
	Action  PullRequestAction
	Merged  bool
	Title   string
	HeadSHA string
}

var issueBackRefPattern = regexp.MustCompile(`#(\d+)`)

// IssueBackReference extracts the first "#<digits>" issue reference from a PR
// title, e.g. "Fix login flow (#123)" -> 123.
func IssueBackReference(title string) (int, bool) {
	match := issueBackRefPattern.FindStringSubmatch(strings.TrimSpace(title))
	if match == nil {
		return 0, false
	}

	number, err := strconv.Atoi(match[1])
	if err != nil || number <= 0 {
		return 0, false
	}
	return number, true
}
