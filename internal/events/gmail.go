package events

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"webhook-notifier/internal/common/errors"
)

// TriggerKindNewMail is the only trigger kind Gmail produces: the watch fires
// for any mailbox change.
const TriggerKindNewMail = "new_mail"

// PushMessage is the inner message of a Pub/Sub push envelope.
type PushMessage struct {
	Data        string `json:"data"`
	MessageID   string `json:"messageId"`
	PublishTime string `json:"publishTime"`
}

// pushEnvelope is the wrapper Pub/Sub adds around the Gmail notification.
type pushEnvelope struct {
	Message      *PushMessage `json:"message"`
	Subscription string       `json:"subscription"`
}

// gmailNotification is the Gmail payload carried base64-encoded in the
// envelope's data field.
type gmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// GmailEvent is a Gmail push notification delivered through Pub/Sub.
type GmailEvent struct {
	EmailAddress string
	HistoryID    uint64
	MessageID    string
	createdAt    time.Time
}

// Source implements Event
func (e GmailEvent) Source() string { return SourceGmail }

// TriggerKind implements Event
func (e GmailEvent) TriggerKind() string { return TriggerKindNewMail }

// CreatedAt implements Event
func (e GmailEvent) CreatedAt() time.Time { return e.createdAt }

// OutputMessage implements Event
func (e GmailEvent) OutputMessage() string {
	return fmt.Sprintf("New email for %s (history %d)", e.EmailAddress, e.HistoryID)
}

// UnwrapPushEnvelope decodes the Pub/Sub push envelope and returns the inner
// message. The envelope always wraps the Gmail payload one extra level; the
// notification itself is parsed separately by ParseGmailNotification.
func UnwrapPushEnvelope(body []byte) (*PushMessage, error) {
	var envelope pushEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.PayloadError("invalid push envelope", err)
	}
	if envelope.Message == nil {
		return nil, errors.MalformedPayloadError("message")
	}
	if envelope.Message.Data == "" {
		return nil, errors.MalformedPayloadError("message.data")
	}
	return envelope.Message, nil
}

// ParseGmailNotification decodes the base64 data of an unwrapped push message
// into a GmailEvent. receivedAt is used when the envelope carries no usable
// publish time.
func ParseGmailNotification(msg *PushMessage, receivedAt time.Time) (GmailEvent, error) {
	decoded, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		// Pub/Sub may use URL-safe encoding depending on the publisher
		decoded, err = base64.URLEncoding.DecodeString(msg.Data)
		if err != nil {
			return GmailEvent{}, errors.PayloadError("message.data is not valid base64", err)
		}
	}

	var notification gmailNotification
	if err := json.Unmarshal(decoded, &notification); err != nil {
		return GmailEvent{}, errors.PayloadError("invalid gmail notification", err)
	}
	if notification.EmailAddress == "" {
		return GmailEvent{}, errors.MalformedPayloadError("emailAddress")
	}
	if notification.HistoryID == 0 {
		return GmailEvent{}, errors.MalformedPayloadError("historyId")
	}

	createdAt := receivedAt
	if msg.PublishTime != "" {
		if t, err := time.Parse(time.RFC3339, msg.PublishTime); err == nil {
			createdAt = t
		}
	}

	return GmailEvent{
		EmailAddress: notification.EmailAddress,
		HistoryID:    notification.HistoryID,
		MessageID:    msg.MessageID,
		createdAt:    createdAt,
	}, nil
}

// ParseGmail runs both stages: envelope unwrap, then notification decode.
func ParseGmail(body []byte, receivedAt time.Time) (GmailEvent, error) {
	msg, err := UnwrapPushEnvelope(body)
	if err != nil {
		return GmailEvent{}, err
	}
	return ParseGmailNotification(msg, receivedAt)
}
