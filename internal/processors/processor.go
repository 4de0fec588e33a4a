// Package processors contains the per-source webhook pipelines. Each source
// implements the same three-step contract: authenticate the request, decode
// the payload into an event, then decide what (if anything) to dispatch.
package processors

import (
	"context"
	"net/http"
	"time"

	"webhook-notifier/internal/events"
)

// Outcome classifies what happened to a webhook after it was accepted.
type Outcome string

const (
	// OutcomeDispatched means at least one sink was invoked.
	OutcomeDispatched Outcome = "dispatched"
	// OutcomeSuppressed means the cooldown guard swallowed a duplicate.
	OutcomeSuppressed Outcome = "suppressed"
	// OutcomeIgnored means the event did not match any dispatch condition.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeAcknowledged means a setup or test event was accepted without
	// dispatching and without touching cooldown state.
	OutcomeAcknowledged Outcome = "acknowledged"
)

// Result reports how a webhook was resolved.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

// Processor handles webhooks from one source.
type Processor interface {
	// Source returns the source identifier this processor is registered under.
	Source() string
	// Verify authenticates the request. It must not consume r.Body; the raw
	// body is passed separately.
	Verify(r *http.Request, body []byte) error
	// Parse decodes and validates the payload.
	Parse(body []byte, receivedAt time.Time) (events.Event, error)
	// Handle decides what to dispatch for the event.
	Handle(ctx context.Context, evt events.Event) (Result, error)
}

// ChallengeResponder is implemented by processors whose provider probes the
// endpoint with a GET subscription challenge before sending events.
type ChallengeResponder interface {
	// Challenge validates the probe and returns the response body to echo.
	Challenge(r *http.Request) ([]byte, error)
}
