package processors

import (
	"context"
	"net/http"
	"time"

	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/events"
	"webhook-notifier/internal/signature"
)

// SimpleProcessor handles operator-initiated triggers authenticated by a
// shared token carried in the payload.
type SimpleProcessor struct {
	token      string
	dispatcher *Dispatcher
}

// NewSimpleProcessor creates the simple trigger pipeline.
func NewSimpleProcessor(token string, dispatcher *Dispatcher) *SimpleProcessor {
	return &SimpleProcessor{
		token:      token,
		dispatcher: dispatcher,
	}
}

// Source implements Processor
func (p *SimpleProcessor) Source() string { return events.SourceSimple }

// Verify implements Processor. An unset token rejects all traffic.
func (p *SimpleProcessor) Verify(r *http.Request, body []byte) error {
	if p.token == "" {
		return errors.AuthError("simple trigger token not configured")
	}

	provided, err := events.SimpleToken(body)
	if err != nil {
		return err
	}
	if !signature.Equal(provided, p.token) {
		return errors.AuthError("invalid token")
	}
	return nil
}

// Parse implements Processor
func (p *SimpleProcessor) Parse(body []byte, receivedAt time.Time) (events.Event, error) {
	return events.ParseSimple(body, receivedAt)
}

// Handle implements Processor
func (p *SimpleProcessor) Handle(ctx context.Context, evt events.Event) (Result, error) {
	return p.dispatcher.Dispatch(ctx, evt, Plan{
		SMS: evt.OutputMessage(),
	})
}
