package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"webhook-notifier/internal/circuitbreaker"
	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
)

const githubAPIBaseURL = "https://api.github.com"

// WorkflowDispatch describes one workflow_dispatch call: which repo, which
// workflow file, and the inputs to hand it.
type WorkflowDispatch struct {
	// Repo is the "owner/name" slug.
	Repo string
	// WorkflowID is the workflow file name, e.g. "process.yml".
	WorkflowID string
	// Token is a PAT with workflow scope on Repo.
	Token string
	// Ref is the git ref to run on. Defaults to "main".
	Ref string
	// Inputs are passed to the workflow as dispatch inputs.
	Inputs map[string]string
}

// WorkflowTrigger starts a GitHub Actions workflow run.
type WorkflowTrigger interface {
	Trigger(ctx context.Context, d WorkflowDispatch) error
}

// GitHubDispatcher triggers workflow runs through the GitHub REST API.
type GitHubDispatcher struct {
	baseURL string
	client  *http.Client
	breaker *circuitbreaker.Breaker
	logger  logging.Logger
}

// DispatcherOption configures a GitHubDispatcher.
type DispatcherOption func(*GitHubDispatcher)

// WithGitHubBaseURL overrides the GitHub API endpoint.
func WithGitHubBaseURL(baseURL string) DispatcherOption {
	return func(d *GitHubDispatcher) {
		d.baseURL = baseURL
	}
}

// NewGitHubDispatcher creates a workflow trigger backed by the GitHub API.
func NewGitHubDispatcher(client *http.Client, logger logging.Logger, opts ...DispatcherOption) *GitHubDispatcher {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	d := &GitHubDispatcher{
		baseURL: githubAPIBaseURL,
		client:  client,
		breaker: circuitbreaker.New("github-dispatch", circuitbreaker.SinkConfig, logger),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger implements WorkflowTrigger
func (d *GitHubDispatcher) Trigger(ctx context.Context, dispatch WorkflowDispatch) error {
	if dispatch.Repo == "" || dispatch.WorkflowID == "" || dispatch.Token == "" {
		return errors.ConfigError("workflow dispatch target not configured")
	}

	return d.breaker.Execute(ctx, func() error {
		return d.trigger(ctx, dispatch)
	})
}

func (d *GitHubDispatcher) trigger(ctx context.Context, dispatch WorkflowDispatch) error {
	ref := dispatch.Ref
	if ref == "" {
		ref = "main"
	}

	payload := struct {
		Ref    string            `json:"ref"`
		Inputs map[string]string `json:"inputs,omitempty"`
	}{
		Ref:    ref,
		Inputs: dispatch.Inputs,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.DispatchError("encoding dispatch payload", err)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/actions/workflows/%s/dispatches",
		d.baseURL, dispatch.Repo, dispatch.WorkflowID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.DispatchError("building dispatch request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+dispatch.Token)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return errors.DispatchError("dispatch request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.DispatchError(
			fmt.Sprintf("github returned status %d: %s", resp.StatusCode, string(detail)), nil)
	}

	d.logger.Info("Workflow dispatched",
		logging.String("repo", dispatch.Repo),
		logging.String("workflow", dispatch.WorkflowID),
	)
	return nil
}
