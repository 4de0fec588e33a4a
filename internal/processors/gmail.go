package processors

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
	"webhook-notifier/internal/config"
	"webhook-notifier/internal/events"
	"webhook-notifier/internal/signature"
)

// GmailProcessor handles Gmail notifications pushed by Cloud Pub/Sub. The
// push endpoint is authenticated by a shared token carried in the query
// string (or a header), set on the push subscription.
type GmailProcessor struct {
	token      string
	workflow   config.GitHubDispatch
	dispatcher *Dispatcher
	logger     logging.Logger
}

// NewGmailProcessor creates the Gmail pipeline.
func NewGmailProcessor(token string, workflow config.GitHubDispatch, dispatcher *Dispatcher, logger logging.Logger) *GmailProcessor {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &GmailProcessor{
		token:      token,
		workflow:   workflow,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Source implements Processor
func (p *GmailProcessor) Source() string { return events.SourceGmail }

// Verify implements Processor. An unset token rejects all traffic rather than
// accepting unauthenticated pushes.
func (p *GmailProcessor) Verify(r *http.Request, body []byte) error {
	if p.token == "" {
		return errors.AuthError("pubsub token not configured")
	}

	provided := r.URL.Query().Get("token")
	if provided == "" {
		provided = r.Header.Get("X-Pubsub-Token")
	}
	if provided == "" {
		return errors.AuthError("missing pubsub token")
	}
	if !signature.Equal(provided, p.token) {
		return errors.AuthError("invalid pubsub token")
	}
	return nil
}

// Parse implements Processor
func (p *GmailProcessor) Parse(body []byte, receivedAt time.Time) (events.Event, error) {
	return events.ParseGmail(body, receivedAt)
}

// Handle implements Processor. Every new-mail notification texts the operator
// and kicks the mail-processing workflow (when configured).
func (p *GmailProcessor) Handle(ctx context.Context, evt events.Event) (Result, error) {
	gmailEvt, ok := evt.(events.GmailEvent)
	if !ok {
		return Result{}, errors.InternalError("unexpected event type for gmail", nil)
	}

	return p.dispatcher.Dispatch(ctx, evt, Plan{
		SMS:      gmailEvt.OutputMessage(),
		Workflow: p.workflow,
		WorkflowInputs: map[string]string{
			"email_address": gmailEvt.EmailAddress,
			"history_id":    strconv.FormatUint(gmailEvt.HistoryID, 10),
		},
	})
}
