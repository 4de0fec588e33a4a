package processors

import (
	"context"
	"time"

	"webhook-notifier/internal/common/logging"
	"webhook-notifier/internal/cooldown"
	"webhook-notifier/internal/notion"
	"webhook-notifier/internal/sinks"
	"webhook-notifier/internal/strava"
)

type fakeSMS struct {
	messages []string
	err      error
}

func (f *fakeSMS) Send(ctx context.Context, message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

type fakeTrigger struct {
	dispatches []sinks.WorkflowDispatch
	err        error
}

func (f *fakeTrigger) Trigger(ctx context.Context, d sinks.WorkflowDispatch) error {
	if f.err != nil {
		return f.err
	}
	f.dispatches = append(f.dispatches, d)
	return nil
}

type fakeActivities struct {
	activity *strava.Activity
	err      error
}

func (f *fakeActivities) GetActivity(ctx context.Context, id int64) (*strava.Activity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.activity, nil
}

type fakePages struct {
	page *notion.Page
	err  error
}

func (f *fakePages) GetPage(ctx context.Context, id string) (*notion.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func quietLogger() logging.Logger {
	return logging.NewZapLogger(logging.ErrorLevel)
}

func newTestDispatcher(window time.Duration) (*Dispatcher, *fakeSMS, *fakeTrigger, *cooldown.Guard) {
	guard := cooldown.New(window)
	sms := &fakeSMS{}
	trigger := &fakeTrigger{}
	d := NewDispatcher(guard, sms, trigger, quietLogger())
	return d, sms, trigger, guard
}
