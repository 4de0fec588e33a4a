package events

import (
	"encoding/json"
	"fmt"
	"time"

	"webhook-notifier/internal/common/errors"
)

// Cal.com trigger events
const (
	CalBookingCreated          = "BOOKING_CREATED"
	CalBookingRescheduled      = "BOOKING_RESCHEDULED"
	CalBookingCancelled        = "BOOKING_CANCELLED"
	CalMeetingEnded            = "MEETING_ENDED"
	CalBookingRejected         = "BOOKING_REJECTED"
	CalBookingRequested        = "BOOKING_REQUESTED"
	CalBookingPaymentInitiated = "BOOKING_PAYMENT_INITIATED"
	CalBookingPaid             = "BOOKING_PAID"
	CalMeetingStarted          = "MEETING_STARTED"
	CalRecordingReady          = "RECORDING_READY"
	CalFormSubmitted           = "FORM_SUBMITTED"
	// CalPing is the test event Cal.com sends on webhook setup. It is
	// acknowledged without dispatch and without touching cooldown state.
	CalPing = "PING"
)

var calTriggerEvents = map[string]struct{}{
	CalBookingCreated:          {},
	CalBookingRescheduled:      {},
	CalBookingCancelled:        {},
	CalMeetingEnded:            {},
	CalBookingRejected:         {},
	CalBookingRequested:        {},
	CalBookingPaymentInitiated: {},
	CalBookingPaid:             {},
	CalMeetingStarted:          {},
	CalRecordingReady:          {},
	CalFormSubmitted:           {},
	CalPing:                    {},
}

// CalEvent is a Cal.com booking webhook event.
type CalEvent struct {
	Trigger   string
	Title     string
	Organizer string
	createdAt time.Time
}

// calPayload is the wire form of a Cal.com webhook.
type calPayload struct {
	TriggerEvent string `json:"triggerEvent"`
	CreatedAt    string `json:"createdAt"`
	Payload      struct {
		Title     string `json:"title"`
		Organizer struct {
			Name string `json:"name"`
		} `json:"organizer"`
	} `json:"payload"`
}

// Source implements Event
func (e CalEvent) Source() string { return SourceCal }

// TriggerKind implements Event
func (e CalEvent) TriggerKind() string { return e.Trigger }

// CreatedAt implements Event
func (e CalEvent) CreatedAt() time.Time { return e.createdAt }

// OutputMessage implements Event
func (e CalEvent) OutputMessage() string {
	title := e.Title
	if title == "" {
		title = "No Title"
	}
	organizer := e.Organizer
	if organizer == "" {
		organizer = "Unknown"
	}
	return fmt.Sprintf("Booking %q (%s) created by %s", title, e.Trigger, organizer)
}

// IsPing reports whether this is Cal.com's setup test event.
func (e CalEvent) IsPing() bool { return e.Trigger == CalPing }

// ParseCal validates and decodes a Cal.com webhook payload.
func ParseCal(body []byte, receivedAt time.Time) (CalEvent, error) {
	var payload calPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return CalEvent{}, errors.PayloadError("invalid cal.com payload", err)
	}

	if payload.TriggerEvent == "" {
		return CalEvent{}, errors.MalformedPayloadError("triggerEvent")
	}
	if _, ok := calTriggerEvents[payload.TriggerEvent]; !ok {
		return CalEvent{}, errors.MalformedPayloadError("triggerEvent")
	}

	createdAt := receivedAt
	if payload.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, payload.CreatedAt); err == nil {
			createdAt = t
		}
	}

	return CalEvent{
		Trigger:   payload.TriggerEvent,
		Title:     payload.Payload.Title,
		Organizer: payload.Payload.Organizer.Name,
		createdAt: createdAt,
	}, nil
}
