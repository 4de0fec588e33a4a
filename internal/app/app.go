// Package app wires configuration, sinks, collaborator clients and processors
// into a running service.
package app

import (
	"webhook-notifier/internal/common/errors"
	httpclient "webhook-notifier/internal/common/http"
	"webhook-notifier/internal/common/logging"
	"webhook-notifier/internal/common/ratelimit"
	"webhook-notifier/internal/config"
	"webhook-notifier/internal/cooldown"
	"webhook-notifier/internal/notion"
	"webhook-notifier/internal/processors"
	"webhook-notifier/internal/sinks"
	"webhook-notifier/internal/strava"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Registry    *processors.Registry
	Guard       *cooldown.Guard
	RateLimiter ratelimit.Limiter
	Logger      logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.String("component", "app")),
	}

	app.initializeGuard()

	if err := app.initializeRateLimiter(); err != nil {
		return nil, err
	}

	if err := app.initializeProcessors(); err != nil {
		return nil, err
	}

	return app, nil
}

// initializeGuard builds the cooldown guard with per-source overrides.
func (a *App) initializeGuard() {
	a.Guard = cooldown.New(a.Config.CooldownWindow)
	for source, window := range a.Config.CooldownOverrides {
		a.Guard.SetSourceWindow(source, window)
		a.Logger.Info("Cooldown override",
			logging.String("source", source),
			logging.Duration("window", window),
		)
	}
}

// initializeRateLimiter builds the per-source inbound rate limiter.
func (a *App) initializeRateLimiter() error {
	if !a.Config.RateLimitEnabled {
		return nil
	}

	rlCfg := ratelimit.DefaultConfig()
	rlCfg.RequestsPerSecond = a.Config.RateLimitRPS
	rlCfg.BurstSize = a.Config.RateLimitBurst

	limiter, err := ratelimit.NewLocalLimiter(rlCfg)
	if err != nil {
		return errors.InternalError("initializing rate limiter", err)
	}
	a.RateLimiter = limiter
	return nil
}

// initializeProcessors builds the sinks, collaborator clients and one
// processor per source, then registers them all.
func (a *App) initializeProcessors() error {
	client := httpclient.NewHTTPClientWithTimeout(a.Config.SinkTimeout)

	var sms sinks.SMSSender
	if a.Config.FreeSMSUser != "" {
		sms = sinks.NewFreeMobileSMS(
			a.Config.FreeSMSUser,
			a.Config.FreeSMSPass,
			a.Config.SMSPrefix,
			client,
			a.Logger,
		)
	} else {
		a.Logger.Warn("No SMS credentials configured, SMS dispatch disabled")
	}

	var workflows sinks.WorkflowTrigger = sinks.NewGitHubDispatcher(client, a.Logger)

	dispatcher := processors.NewDispatcher(a.Guard, sms, workflows, a.Logger)

	var activities strava.ActivityFetcher
	if a.Config.StravaClientID != "" {
		activities = strava.NewClient(
			a.Config.StravaClientID,
			a.Config.StravaClientSecret,
			a.Config.StravaRefreshToken,
			client,
			a.Logger,
		)
	}

	var pages notion.PageFetcher
	if a.Config.NotionAPIToken != "" {
		pages = notion.NewClient(a.Config.NotionAPIToken, client, a.Logger)
	}

	a.Registry = processors.NewRegistry()
	for _, p := range []processors.Processor{
		processors.NewGmailProcessor(a.Config.GmailPubSubToken, a.Config.GmailGitHub, dispatcher, a.Logger),
		processors.NewStravaProcessor(a.Config.StravaVerifyToken, activities, a.Config.StravaGitHub, dispatcher, a.Logger),
		processors.NewSimpleProcessor(a.Config.SimpleTriggerToken, dispatcher),
		processors.NewCalProcessor(a.Config.CalWebhookSecret, a.Config.CalGitHub, dispatcher, a.Logger),
		processors.NewGitHubProcessor(a.Config.GitHubWebhookSecret, dispatcher, a.Logger),
		processors.NewNotionProcessor(a.Config.NotionWebhookSecret, pages, a.Config.NotionGitHub, dispatcher, a.Logger),
	} {
		if err := a.Registry.Register(p); err != nil {
			return err
		}
	}

	a.Logger.Info("Processors registered",
		logging.Int("count", len(a.Registry.Sources())))
	return nil
}
