// Package events defines the canonical event form every webhook payload is
// normalized into, plus the per-source parsers that build them. Events are
// immutable value types; every event carries a creation timestamp, defaulting
// to receipt time when the provider omits one.
package events

import "time"

// Event is the canonical form of a received webhook notification.
type Event interface {
	// Source identifies the provider that sent the notification.
	Source() string
	// TriggerKind classifies what happened, in source-specific terms.
	TriggerKind() string
	// CreatedAt is when the event occurred; never zero.
	CreatedAt() time.Time
	// OutputMessage renders the human-readable SMS/log text. Deterministic
	// for identical field values.
	OutputMessage() string
}

// Source identifiers. These are the registry keys and the webhook sub-paths.
const (
	SourceGmail  = "gmail"
	SourceStrava = "strava"
	SourceSimple = "simple"
	SourceCal    = "cal"
	SourceGitHub = "github"
	SourceNotion = "notion"
)
