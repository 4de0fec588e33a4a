package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
	"webhook-notifier/internal/config"
	"webhook-notifier/internal/events"
	"webhook-notifier/internal/notion"
	"webhook-notifier/internal/signature"
)

// NotionProcessor handles Notion page webhooks. The one-time setup handshake
// delivers the verification token that becomes the signing secret; it is
// logged for the operator and acknowledged. Page events are signed with
// HMAC-SHA256 in X-Notion-Signature and dispatch the processing workflow
// when the page's "Today" checkbox is set.
type NotionProcessor struct {
	secret     string
	pages      notion.PageFetcher
	workflow   config.GitHubDispatch
	dispatcher *Dispatcher
	logger     logging.Logger
}

// NewNotionProcessor creates the Notion pipeline.
func NewNotionProcessor(secret string, pages notion.PageFetcher, workflow config.GitHubDispatch, dispatcher *Dispatcher, logger logging.Logger) *NotionProcessor {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &NotionProcessor{
		secret:     secret,
		pages:      pages,
		workflow:   workflow,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Source implements Processor
func (p *NotionProcessor) Source() string { return events.SourceNotion }

// Verify implements Processor. The setup handshake arrives before any secret
// exists and is unsigned, so it bypasses the signature check. Everything else
// fails closed.
func (p *NotionProcessor) Verify(r *http.Request, body []byte) error {
	if isNotionHandshake(body) {
		return nil
	}
	return signature.Verify(body, p.secret, r.Header.Get("X-Notion-Signature"))
}

// isNotionHandshake probes the body for a verification_token without full
// validation; Parse does the rest.
func isNotionHandshake(body []byte) bool {
	var probe struct {
		VerificationToken string `json:"verification_token"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return probe.VerificationToken != ""
}

// Parse implements Processor
func (p *NotionProcessor) Parse(body []byte, receivedAt time.Time) (events.Event, error) {
	return events.ParseNotion(body, receivedAt)
}

// Handle implements Processor
func (p *NotionProcessor) Handle(ctx context.Context, evt events.Event) (Result, error) {
	notionEvt, ok := evt.(events.NotionEvent)
	if !ok {
		return Result{}, errors.InternalError("unexpected event type for notion", nil)
	}

	if notionEvt.IsVerification() {
		// The operator copies this token into NOTION_WEBHOOK_SECRET.
		p.logger.Info("Notion webhook verification received",
			logging.String("verification_token", notionEvt.VerificationToken))
		return Result{Outcome: OutcomeAcknowledged, Detail: "verification token logged"}, nil
	}

	if p.pages == nil {
		p.logger.Warn("Notion event received but no API client configured",
			logging.String("page_id", notionEvt.PageID))
		return Result{Outcome: OutcomeIgnored, Detail: "notion api not configured"}, nil
	}

	page, err := p.pages.GetPage(ctx, notionEvt.PageID)
	if err != nil {
		return Result{}, err
	}
	if !page.Today {
		return Result{
			Outcome: OutcomeIgnored,
			Detail:  fmt.Sprintf("page %s not marked for today", page.ID),
		}, nil
	}

	return p.dispatcher.Dispatch(ctx, evt, Plan{
		Workflow: p.workflow,
		WorkflowInputs: map[string]string{
			"page_id":    page.ID,
			"page_title": page.Title,
		},
	})
}
