package events

import (
	"encoding/json"
	"time"

	"webhook-notifier/internal/common/errors"
)

// TriggerKindManual is the simple trigger's only kind.
const TriggerKindManual = "manual"

// SimpleTriggerEvent is an operator-initiated SMS trigger.
type SimpleTriggerEvent struct {
	Message   string
	createdAt time.Time
}

// simplePayload is the wire form of the simple trigger.
type simplePayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Source implements Event
func (e SimpleTriggerEvent) Source() string { return SourceSimple }

// TriggerKind implements Event
func (e SimpleTriggerEvent) TriggerKind() string { return TriggerKindManual }

// CreatedAt implements Event
func (e SimpleTriggerEvent) CreatedAt() time.Time { return e.createdAt }

// OutputMessage implements Event
func (e SimpleTriggerEvent) OutputMessage() string { return e.Message }

// ParseSimple validates and decodes a simple trigger payload. The token field
// is checked by the processor's verify step, not here.
func ParseSimple(body []byte, receivedAt time.Time) (SimpleTriggerEvent, error) {
	var payload simplePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return SimpleTriggerEvent{}, errors.PayloadError("invalid simple trigger payload", err)
	}

	if payload.Type != "simple" {
		return SimpleTriggerEvent{}, errors.MalformedPayloadError("type")
	}
	if payload.Message == "" {
		return SimpleTriggerEvent{}, errors.MalformedPayloadError("message")
	}

	return SimpleTriggerEvent{
		Message:   payload.Message,
		createdAt: receivedAt,
	}, nil
}

// SimpleToken extracts the shared-secret token from a simple trigger payload
// for the verify step.
func SimpleToken(body []byte) (string, error) {
	var payload simplePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", errors.PayloadError("invalid simple trigger payload", err)
	}
	if payload.Token == "" {
		return "", errors.AuthError("missing token")
	}
	return payload.Token, nil
}
