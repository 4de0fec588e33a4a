package events

import (
	"encoding/json"
	"fmt"
	"time"

	"webhook-notifier/internal/common/errors"
)

// GitHub trigger kinds
const (
	TriggerKindWorkflowFailure = "workflow_failure"
	TriggerKindWorkflowRun     = "workflow_run"
)

// GitHubEvent is an inbound GitHub workflow_run webhook event.
type GitHubEvent struct {
	Action       string
	WorkflowName string
	Conclusion   string
	HeadBranch   string
	RepoName     string
	createdAt    time.Time
}

// githubPayload is the wire form of a workflow_run event.
type githubPayload struct {
	Action      string `json:"action"`
	WorkflowRun *struct {
		Name       string `json:"name"`
		HeadBranch string `json:"head_branch"`
		Conclusion string `json:"conclusion"`
	} `json:"workflow_run"`
	Repository *struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// Source implements Event
func (e GitHubEvent) Source() string { return SourceGitHub }

// TriggerKind implements Event
func (e GitHubEvent) TriggerKind() string {
	if e.IsFailureOnMain() {
		return TriggerKindWorkflowFailure
	}
	return TriggerKindWorkflowRun
}

// CreatedAt implements Event
func (e GitHubEvent) CreatedAt() time.Time { return e.createdAt }

// OutputMessage implements Event
func (e GitHubEvent) OutputMessage() string {
	workflow := e.WorkflowName
	if workflow == "" {
		workflow = "Unknown Workflow"
	}
	return fmt.Sprintf("GitHub Action failed: %s - %s", e.RepoName, workflow)
}

// IsFailureOnMain reports whether this is a completed failed run on main,
// the only condition that dispatches.
func (e GitHubEvent) IsFailureOnMain() bool {
	return e.Action == "completed" && e.Conclusion == "failure" && e.HeadBranch == "main"
}

// ParseGitHub validates and decodes a GitHub workflow_run webhook payload.
func ParseGitHub(body []byte, receivedAt time.Time) (GitHubEvent, error) {
	var payload githubPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return GitHubEvent{}, errors.PayloadError("invalid github payload", err)
	}

	if payload.Action == "" {
		return GitHubEvent{}, errors.MalformedPayloadError("action")
	}
	if payload.WorkflowRun == nil {
		return GitHubEvent{}, errors.MalformedPayloadError("workflow_run")
	}
	if payload.WorkflowRun.HeadBranch == "" {
		return GitHubEvent{}, errors.MalformedPayloadError("workflow_run.head_branch")
	}
	if payload.Repository == nil || payload.Repository.Name == "" {
		return GitHubEvent{}, errors.MalformedPayloadError("repository.name")
	}

	return GitHubEvent{
		Action:       payload.Action,
		WorkflowName: payload.WorkflowRun.Name,
		Conclusion:   payload.WorkflowRun.Conclusion,
		HeadBranch:   payload.WorkflowRun.HeadBranch,
		RepoName:     payload.Repository.Name,
		createdAt:    receivedAt,
	}, nil
}
