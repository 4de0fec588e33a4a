package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
	"webhook-notifier/internal/config"
	"webhook-notifier/internal/events"
	"webhook-notifier/internal/signature"
	"webhook-notifier/internal/strava"
)

// StravaProcessor handles Strava webhook events. Subscription setup arrives
// as a GET challenge that must echo hub.challenge; events arrive as POSTs.
// Only newly created activities that turn out to be virtual rides dispatch.
type StravaProcessor struct {
	verifyToken string
	activities  strava.ActivityFetcher
	workflow    config.GitHubDispatch
	dispatcher  *Dispatcher
	logger      logging.Logger
}

// NewStravaProcessor creates the Strava pipeline.
func NewStravaProcessor(verifyToken string, activities strava.ActivityFetcher, workflow config.GitHubDispatch, dispatcher *Dispatcher, logger logging.Logger) *StravaProcessor {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &StravaProcessor{
		verifyToken: verifyToken,
		activities:  activities,
		workflow:    workflow,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Source implements Processor
func (p *StravaProcessor) Source() string { return events.SourceStrava }

// Challenge implements ChallengeResponder. Strava probes the callback URL
// with hub.mode=subscribe and expects the challenge echoed back as JSON.
func (p *StravaProcessor) Challenge(r *http.Request) ([]byte, error) {
	query := r.URL.Query()

	if mode := query.Get("hub.mode"); mode != "subscribe" {
		return nil, errors.MalformedPayloadError("hub.mode")
	}
	if p.verifyToken == "" {
		return nil, errors.AuthError("strava verify token not configured")
	}
	if !signature.Equal(query.Get("hub.verify_token"), p.verifyToken) {
		return nil, errors.AuthError("invalid verify token")
	}

	challenge := query.Get("hub.challenge")
	if challenge == "" {
		return nil, errors.MalformedPayloadError("hub.challenge")
	}

	body, err := json.Marshal(map[string]string{"hub.challenge": challenge})
	if err != nil {
		return nil, errors.InternalError("encoding challenge response", err)
	}

	p.logger.Info("Strava subscription challenge answered")
	return body, nil
}

// Verify implements Processor. Strava does not sign event posts; the
// subscription id inside the payload is validated during Parse.
func (p *StravaProcessor) Verify(r *http.Request, body []byte) error {
	return nil
}

// Parse implements Processor
func (p *StravaProcessor) Parse(body []byte, receivedAt time.Time) (events.Event, error) {
	return events.ParseStrava(body, receivedAt)
}

// Handle implements Processor. Activity creations are looked up through the
// Strava API; only virtual rides text the operator.
func (p *StravaProcessor) Handle(ctx context.Context, evt events.Event) (Result, error) {
	stravaEvt, ok := evt.(events.StravaEvent)
	if !ok {
		return Result{}, errors.InternalError("unexpected event type for strava", nil)
	}

	if stravaEvt.ObjectType != events.StravaObjectActivity || stravaEvt.AspectType != events.StravaAspectCreate {
		return Result{
			Outcome: OutcomeIgnored,
			Detail:  fmt.Sprintf("no dispatch for %s %s", stravaEvt.ObjectType, stravaEvt.AspectType),
		}, nil
	}

	if p.activities == nil {
		p.logger.Warn("Strava activity received but no API client configured",
			logging.Int64("object_id", stravaEvt.ObjectID))
		return Result{Outcome: OutcomeIgnored, Detail: "strava api not configured"}, nil
	}

	activity, err := p.activities.GetActivity(ctx, stravaEvt.ObjectID)
	if err != nil {
		return Result{}, err
	}
	if !activity.IsVirtualRide() {
		return Result{
			Outcome: OutcomeIgnored,
			Detail:  fmt.Sprintf("activity type %s", activity.Type),
		}, nil
	}

	return p.dispatcher.Dispatch(ctx, evt, Plan{
		SMS:      fmt.Sprintf("New virtual ride: %s", activity.Name),
		Workflow: p.workflow,
		WorkflowInputs: map[string]string{
			"activity_id":   strconv.FormatInt(stravaEvt.ObjectID, 10),
			"activity_name": activity.Name,
		},
	})
}
