// Package github implements the ports.IssueTracker collaborator using the
// go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/UOR-Foundation/stone/internal/bootstrap/config"
	"github.com/UOR-Foundation/stone/internal/domain/workflow"
	"github.com/UOR-Foundation/stone/internal/ports"
)

const commitStatusContext = "stone/pipeline"

type Client struct {
	gh    *gh.Client
	owner string
	repo  string
}

var _ ports.IssueTracker = (*Client)(nil)

// NewClient builds a tracker client from config. GitHub App installation
// credentials win over a personal token when both are present.
func NewClient(ctx context.Context, cfg config.GitHubConfig) (*Client, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	owner := strings.TrimSpace(cfg.Owner)
	repo := strings.TrimSpace(cfg.Repo)
	if owner == "" || repo == "" {
		return nil, errors.New("github.owner and github.repo are required")
	}

	httpClient, err := newAuthHTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		gh:    gh.NewClient(httpClient),
		owner: owner,
		repo:  repo,
	}, nil
}

// NewClientWithBaseURL injects a custom http client and API base URL,
// intended for httptest servers.
func NewClientWithBaseURL(httpClient *http.Client, baseURL string, owner string, repo string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	client.BaseURL = u

	return &Client{
		gh:    client,
		owner: owner,
		repo:  repo,
	}, nil
}

func newAuthHTTPClient(ctx context.Context, cfg config.GitHubConfig) (*http.Client, error) {
	if cfg.App.ID != 0 && cfg.App.InstallationID != 0 {
		transport, err := ghinstallation.NewKeyFromFile(
			http.DefaultTransport,
			cfg.App.ID,
			cfg.App.InstallationID,
			cfg.App.PrivateKeyFile,
		)
		if err != nil {
			return nil, fmt.Errorf("load github app key: %w", err)
		}
		return &http.Client{Transport: transport}, nil
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("github.token or github.app credentials are required")
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(ctx, source), nil
}

func (c *Client) GetIssue(ctx context.Context, number int) (ports.TrackerIssue, error) {
	issue, resp, err := c.gh.Issues.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return ports.TrackerIssue{}, ports.ErrIssueNotFound
		}
		return ports.TrackerIssue{}, classify(err, fmt.Sprintf("get issue #%d", number))
	}

	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	return ports.TrackerIssue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Labels: labels,
	}, nil
}

func (c *Client) CreateComment(ctx context.Context, number int, body string) error {
	comment := &gh.IssueComment{Body: gh.String(body)}
	if _, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, comment); err != nil {
		return classify(err, fmt.Sprintf("create comment on #%d", number))
	}
	return nil
}

func (c *Client) AddLabels(ctx context.Context, number int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	if _, _, err := c.gh.Issues.AddLabelsToIssue(ctx, c.owner, c.repo, number, labels); err != nil {
		return classify(err, fmt.Sprintf("add labels to #%d", number))
	}
	return nil
}

func (c *Client) RemoveLabel(ctx context.Context, number int, label string) error {
	resp, err := c.gh.Issues.RemoveLabelForIssue(ctx, c.owner, c.repo, number, label)
	if err != nil {
		// Removing an absent label is a no-op.
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return classify(err, fmt.Sprintf("remove label %q from #%d", label, number))
	}
	return nil
}

func (c *Client) UpdateCommitStatus(ctx context.Context, sha string, state workflow.CommitState, description string) error {
	status := &gh.RepoStatus{
		State:       gh.String(string(state)),
		Description: gh.String(description),
		Context:     gh.String(commitStatusContext),
	}
	if _, _, err := c.gh.Repositories.CreateStatus(ctx, c.owner, c.repo, sha, status); err != nil {
		return classify(err, fmt.Sprintf("update commit status for %s", sha))
	}
	return nil
}

// classify wraps go-github rate-limit error types with the domain sentinel so
// the retry executor can match structurally.
func classify(err error, msg string) error {
	if err == nil {
		return nil
	}

	var rateLimit *gh.RateLimitError
	var abuseLimit *gh.AbuseRateLimitError
	if errors.As(err, &rateLimit) || errors.As(err, &abuseLimit) {
		return fmt.Errorf("%s: %w", msg, errors.Join(workflow.ErrRateLimited, err))
	}

	var apiErr *gh.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil && apiErr.Response.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", msg, errors.Join(workflow.ErrRateLimited, err))
	}

	return fmt.Errorf("%s: %w", msg, err)
}
