package events

import (
	"encoding/json"
	"fmt"
	"time"

	"webhook-notifier/internal/common/errors"
)

// Strava object types
const (
	StravaObjectActivity = "activity"
	StravaObjectAthlete  = "athlete"
)

// Strava aspect types
const (
	StravaAspectCreate = "create"
	StravaAspectUpdate = "update"
	StravaAspectDelete = "delete"
)

// StravaEvent is a Strava webhook event for an activity or athlete.
type StravaEvent struct {
	ObjectType     string
	AspectType     string
	ObjectID       int64
	OwnerID        int64
	SubscriptionID int64
	Updates        map[string]string
	createdAt      time.Time
}

// stravaPayload is the wire form; pointer fields distinguish absent from zero.
type stravaPayload struct {
	ObjectType     *string           `json:"object_type"`
	ObjectID       *int64            `json:"object_id"`
	AspectType     *string           `json:"aspect_type"`
	Updates        map[string]string `json:"updates"`
	OwnerID        *int64            `json:"owner_id"`
	SubscriptionID *int64            `json:"subscription_id"`
	EventTime      *int64            `json:"event_time"`
}

// Source implements Event
func (e StravaEvent) Source() string { return SourceStrava }

// TriggerKind implements Event
func (e StravaEvent) TriggerKind() string {
	return e.ObjectType + "_" + e.AspectType
}

// CreatedAt implements Event
func (e StravaEvent) CreatedAt() time.Time { return e.createdAt }

// OutputMessage implements Event
func (e StravaEvent) OutputMessage() string {
	return fmt.Sprintf("Strava %s %s (id %d) by athlete %d",
		e.ObjectType, e.AspectType, e.ObjectID, e.OwnerID)
}

// ParseStrava validates and decodes a Strava webhook payload. receivedAt is
// used when event_time is absent.
func ParseStrava(body []byte, receivedAt time.Time) (StravaEvent, error) {
	var payload stravaPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return StravaEvent{}, errors.PayloadError("invalid strava payload", err)
	}

	switch {
	case payload.ObjectType == nil:
		return StravaEvent{}, errors.MalformedPayloadError("object_type")
	case payload.AspectType == nil:
		return StravaEvent{}, errors.MalformedPayloadError("aspect_type")
	case payload.ObjectID == nil:
		return StravaEvent{}, errors.MalformedPayloadError("object_id")
	case payload.OwnerID == nil:
		return StravaEvent{}, errors.MalformedPayloadError("owner_id")
	case payload.SubscriptionID == nil:
		return StravaEvent{}, errors.MalformedPayloadError("subscription_id")
	}

	if *payload.ObjectType != StravaObjectActivity && *payload.ObjectType != StravaObjectAthlete {
		return StravaEvent{}, errors.MalformedPayloadError("object_type")
	}
	switch *payload.AspectType {
	case StravaAspectCreate, StravaAspectUpdate, StravaAspectDelete:
	default:
		return StravaEvent{}, errors.MalformedPayloadError("aspect_type")
	}

	createdAt := receivedAt
	if payload.EventTime != nil && *payload.EventTime > 0 {
		createdAt = time.Unix(*payload.EventTime, 0).UTC()
	}

	return StravaEvent{
		ObjectType:     *payload.ObjectType,
		AspectType:     *payload.AspectType,
		ObjectID:       *payload.ObjectID,
		OwnerID:        *payload.OwnerID,
		SubscriptionID: *payload.SubscriptionID,
		Updates:        payload.Updates,
		createdAt:      createdAt,
	}, nil
}
