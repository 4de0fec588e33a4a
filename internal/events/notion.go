package events

import (
	"encoding/json"
	"fmt"
	"time"

	"webhook-notifier/internal/common/errors"
)

// Notion event types
const (
	NotionPageCreated        = "page.created"
	NotionPageUpdated        = "page.properties_updated"
	NotionPageContentUpdated = "page.content_updated"
	// NotionVerification is the one-time webhook setup handshake. The token
	// must reach the operator (via logs) and nothing may be dispatched.
	NotionVerification = "verification"
)

var notionPageEvents = map[string]struct{}{
	NotionPageCreated:        {},
	NotionPageUpdated:        {},
	NotionPageContentUpdated: {},
}

// NotionEvent is a Notion page webhook event or the setup handshake.
type NotionEvent struct {
	EventType         string
	PageID            string
	VerificationToken string
	createdAt         time.Time
}

// notionPayload is the wire form of a Notion webhook.
type notionPayload struct {
	Type   string `json:"type"`
	Entity *struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"entity"`
	VerificationToken string `json:"verification_token"`
	Timestamp         string `json:"timestamp"`
}

// Source implements Event
func (e NotionEvent) Source() string { return SourceNotion }

// TriggerKind implements Event
func (e NotionEvent) TriggerKind() string { return e.EventType }

// CreatedAt implements Event
func (e NotionEvent) CreatedAt() time.Time { return e.createdAt }

// OutputMessage implements Event
func (e NotionEvent) OutputMessage() string {
	return fmt.Sprintf("Notion %s for page %s", e.EventType, e.PageID)
}

// IsVerification reports whether this is the webhook setup handshake.
func (e NotionEvent) IsVerification() bool { return e.EventType == NotionVerification }

// ParseNotion validates and decodes a Notion webhook payload. Handshake
// payloads carry only a verification_token and produce a verification event.
func ParseNotion(body []byte, receivedAt time.Time) (NotionEvent, error) {
	var payload notionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return NotionEvent{}, errors.PayloadError("invalid notion payload", err)
	}

	if payload.VerificationToken != "" {
		return NotionEvent{
			EventType:         NotionVerification,
			VerificationToken: payload.VerificationToken,
			createdAt:         receivedAt,
		}, nil
	}

	if payload.Type == "" {
		return NotionEvent{}, errors.MalformedPayloadError("type")
	}
	if _, ok := notionPageEvents[payload.Type]; !ok {
		return NotionEvent{}, errors.MalformedPayloadError("type")
	}
	if payload.Entity == nil || payload.Entity.ID == "" {
		return NotionEvent{}, errors.MalformedPayloadError("entity.id")
	}
	if payload.Entity.Type != "page" {
		return NotionEvent{}, errors.MalformedPayloadError("entity.type")
	}

	createdAt := receivedAt
	if payload.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, payload.Timestamp); err == nil {
			createdAt = t
		}
	}

	return NotionEvent{
		EventType: payload.Type,
		PageID:    payload.Entity.ID,
		createdAt: createdAt,
	}, nil
}
