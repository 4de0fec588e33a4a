package processors

import (
	"context"
	"time"

	"webhook-notifier/internal/common/logging"
	"webhook-notifier/internal/config"
	"webhook-notifier/internal/cooldown"
	"webhook-notifier/internal/events"
	"webhook-notifier/internal/sinks"
)

// Plan describes what a processor wants dispatched for one event.
type Plan struct {
	// SMS is the message to text. Empty means no SMS.
	SMS string
	// Workflow is the workflow-dispatch target. Zero value means no dispatch.
	Workflow config.GitHubDispatch
	// WorkflowInputs are passed to the workflow run.
	WorkflowInputs map[string]string
}

// Dispatcher executes a Plan behind the cooldown guard. The guard is
// consulted exactly once per event, before any sink call, and records the
// grant immediately so a concurrent duplicate cannot also pass. A sink
// failure after the grant does not reopen the window.
type Dispatcher struct {
	guard     *cooldown.Guard
	sms       sinks.SMSSender
	workflows sinks.WorkflowTrigger
	clock     func() time.Time
	logger    logging.Logger
}

// NewDispatcher creates a dispatcher. A nil sms or workflows sink disables
// that channel; plans requesting it are logged and skipped.
func NewDispatcher(guard *cooldown.Guard, sms sinks.SMSSender, workflows sinks.WorkflowTrigger, logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Dispatcher{
		guard:     guard,
		sms:       sms,
		workflows: workflows,
		clock:     time.Now,
		logger:    logger,
	}
}

// WithClock replaces the dispatcher's time source. Test hook.
func (d *Dispatcher) WithClock(clock func() time.Time) *Dispatcher {
	d.clock = clock
	return d
}

// Dispatch runs the plan for an event. Suppressed duplicates return
// OutcomeSuppressed with a nil error.
func (d *Dispatcher) Dispatch(ctx context.Context, evt events.Event, plan Plan) (Result, error) {
	source := evt.Source()
	kind := evt.TriggerKind()

	if !d.guard.Allow(source, kind, d.clock()) {
		d.logger.Info("Dispatch suppressed by cooldown",
			logging.String("source", source),
			logging.String("trigger_kind", kind),
		)
		return Result{
			Outcome: OutcomeSuppressed,
			Detail:  "within cooldown window",
		}, nil
	}

	if plan.SMS != "" {
		if d.sms == nil {
			d.logger.Warn("SMS requested but no sender configured",
				logging.String("source", source))
		} else if err := d.sms.Send(ctx, plan.SMS); err != nil {
			return Result{}, err
		}
	}

	if plan.Workflow.Configured() {
		if d.workflows == nil {
			d.logger.Warn("Workflow dispatch requested but no trigger configured",
				logging.String("source", source))
		} else {
			err := d.workflows.Trigger(ctx, sinks.WorkflowDispatch{
				Repo:       plan.Workflow.Repo,
				WorkflowID: plan.Workflow.WorkflowID,
				Token:      plan.Workflow.Token,
				Inputs:     plan.WorkflowInputs,
			})
			if err != nil {
				return Result{}, err
			}
		}
	}

	d.logger.Info("Dispatched",
		logging.String("source", source),
		logging.String("trigger_kind", kind),
		logging.Bool("sms", plan.SMS != ""),
		logging.Bool("workflow", plan.Workflow.Configured()),
	)
	return Result{Outcome: OutcomeDispatched}, nil
}
