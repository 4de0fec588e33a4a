package processors

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
	"webhook-notifier/internal/events"
	"webhook-notifier/internal/signature"
)

// GitHubProcessor handles inbound workflow_run webhooks. Only completed runs
// that failed on main dispatch; everything else is acknowledged and dropped.
type GitHubProcessor struct {
	secret     string
	dispatcher *Dispatcher
	logger     logging.Logger
}

// NewGitHubProcessor creates the GitHub pipeline.
func NewGitHubProcessor(secret string, dispatcher *Dispatcher, logger logging.Logger) *GitHubProcessor {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &GitHubProcessor{
		secret:     secret,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Source implements Processor
func (p *GitHubProcessor) Source() string { return events.SourceGitHub }

// Verify implements Processor. GitHub signs with HMAC-SHA256 in
// X-Hub-Signature-256 when the webhook has a secret.
func (p *GitHubProcessor) Verify(r *http.Request, body []byte) error {
	if p.secret == "" {
		p.logger.Warn("GitHub webhook accepted without signature check, no secret configured")
		return nil
	}
	return signature.Verify(body, p.secret, r.Header.Get("X-Hub-Signature-256"))
}

// Parse implements Processor
func (p *GitHubProcessor) Parse(body []byte, receivedAt time.Time) (events.Event, error) {
	return events.ParseGitHub(body, receivedAt)
}

// Handle implements Processor
func (p *GitHubProcessor) Handle(ctx context.Context, evt events.Event) (Result, error) {
	ghEvt, ok := evt.(events.GitHubEvent)
	if !ok {
		return Result{}, errors.InternalError("unexpected event type for github", nil)
	}

	if !ghEvt.IsFailureOnMain() {
		return Result{
			Outcome: OutcomeIgnored,
			Detail:  fmt.Sprintf("%s run on %s with conclusion %q", ghEvt.Action, ghEvt.HeadBranch, ghEvt.Conclusion),
		}, nil
	}

	return p.dispatcher.Dispatch(ctx, evt, Plan{
		SMS: ghEvt.OutputMessage(),
	})
}
