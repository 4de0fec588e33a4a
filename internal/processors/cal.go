package processors

import (
	"context"
	"net/http"
	"time"

	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
	"webhook-notifier/internal/config"
	"webhook-notifier/internal/events"
	"webhook-notifier/internal/signature"
)

// CalProcessor handles Cal.com booking webhooks. Cal.com signs the raw body
// with HMAC-SHA256 in X-Cal-Signature-256 when a secret is configured on the
// webhook; without a configured secret the signature cannot be checked and
// requests are accepted with a warning.
type CalProcessor struct {
	secret     string
	workflow   config.GitHubDispatch
	dispatcher *Dispatcher
	logger     logging.Logger
}

// NewCalProcessor creates the Cal.com pipeline.
func NewCalProcessor(secret string, workflow config.GitHubDispatch, dispatcher *Dispatcher, logger logging.Logger) *CalProcessor {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &CalProcessor{
		secret:     secret,
		workflow:   workflow,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Source implements Processor
func (p *CalProcessor) Source() string { return events.SourceCal }

// Verify implements Processor
func (p *CalProcessor) Verify(r *http.Request, body []byte) error {
	if p.secret == "" {
		p.logger.Warn("Cal.com webhook accepted without signature check, no secret configured")
		return nil
	}
	return signature.Verify(body, p.secret, r.Header.Get("X-Cal-Signature-256"))
}

// Parse implements Processor
func (p *CalProcessor) Parse(body []byte, receivedAt time.Time) (events.Event, error) {
	return events.ParseCal(body, receivedAt)
}

// Handle implements Processor. PING is Cal.com's setup test and is
// acknowledged without dispatching or consuming a cooldown window.
func (p *CalProcessor) Handle(ctx context.Context, evt events.Event) (Result, error) {
	calEvt, ok := evt.(events.CalEvent)
	if !ok {
		return Result{}, errors.InternalError("unexpected event type for cal", nil)
	}

	if calEvt.IsPing() {
		return Result{Outcome: OutcomeAcknowledged, Detail: "ping"}, nil
	}

	return p.dispatcher.Dispatch(ctx, evt, Plan{
		SMS:      calEvt.OutputMessage(),
		Workflow: p.workflow,
		WorkflowInputs: map[string]string{
			"trigger": calEvt.Trigger,
			"title":   calEvt.Title,
		},
	})
}
