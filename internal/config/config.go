// Package config provides configuration management for the webhook notifier.
// It loads configuration from environment variables with sensible defaults
// and validates the configuration so the process fails at startup rather than
// on the first inbound webhook.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - TLS_CERT / TLS_KEY: Optional TLS certificate and key paths
//
// Dispatch policy:
//   - COOLDOWN_WINDOW: Minimum time between two dispatches for the same
//     (source, trigger kind) pair (default: 5m)
//   - COOLDOWN_OVERRIDES: Comma-separated per-source overrides,
//     e.g. "notion=5s,gmail=10m"
//   - SINK_TIMEOUT: Bound on every outbound sink call (default: 10s)
//
// SMS sink (Free Mobile API):
//   - SMS_PREFIX: Fixed prefix prepended to every message (default: "[notify] ")
//   - FREE_SMS_USER / FREE_SMS_PASS: Free Mobile API credentials
//
// Inbound verification:
//   - SIMPLE_TRIGGER_TOKEN: Shared secret for the simple trigger source
//   - GMAIL_PUBSUB_TOKEN: Shared token expected on the Pub/Sub push endpoint
//   - STRAVA_VERIFY_TOKEN: Token echoed during Strava subscription challenges
//   - CAL_WEBHOOK_SECRET / NOTION_WEBHOOK_SECRET / GITHUB_WEBHOOK_SECRET:
//     HMAC-SHA256 signing secrets per source
//
// Collaborator APIs:
//   - STRAVA_CLIENT_ID / STRAVA_CLIENT_SECRET / STRAVA_REFRESH_TOKEN
//   - NOTION_API_TOKEN
//
// Workflow dispatch sinks (per-source prefixes GMAIL_, STRAVA_, CAL_, NOTION_):
//   - <PREFIX>GITHUB_TOKEN / <PREFIX>GITHUB_REPO / <PREFIX>GITHUB_WORKFLOW_ID
//
// Rate limiting:
//   - RATE_LIMIT_ENABLED: Enable per-source rate limiting (default: true)
//   - RATE_LIMIT_RPS: Requests per second per source (default: 5)
//   - RATE_LIMIT_BURST: Burst size (default: 10)
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// GitHubDispatch holds the workflow-dispatch sink settings for one source.
type GitHubDispatch struct {
	Token      string // GitHub API token
	Repo       string // Repository in owner/name form
	WorkflowID string // Workflow file name or numeric ID
}

// Configured reports whether this source has a workflow sink wired up.
func (g GitHubDispatch) Configured() bool {
	return g.Token != "" && g.Repo != "" && g.WorkflowID != ""
}

// Config holds all configuration values for the webhook notifier.
type Config struct {
	// Application settings
	Port     string
	LogLevel string
	TLSCert  string
	TLSKey   string

	// Dispatch policy
	CooldownWindow    time.Duration
	CooldownOverrides map[string]time.Duration
	SinkTimeout       time.Duration

	// SMS sink
	SMSPrefix   string
	FreeSMSUser string
	FreeSMSPass string

	// Inbound verification secrets
	SimpleTriggerToken  string
	GmailPubSubToken    string
	StravaVerifyToken   string
	CalWebhookSecret    string
	NotionWebhookSecret string
	GitHubWebhookSecret string

	// Collaborator APIs
	StravaClientID     string
	StravaClientSecret string
	StravaRefreshToken string
	NotionAPIToken     string

	// Workflow dispatch sinks, keyed by source identifier
	GmailGitHub  GitHubDispatch
	StravaGitHub GitHubDispatch
	CalGitHub    GitHubDispatch
	NotionGitHub GitHubDispatch

	// Rate limiting
	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int
}

// Load creates a new Config instance with values loaded from environment
// variables. Call Validate() on the result before use.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		TLSCert:  getEnv("TLS_CERT", ""),
		TLSKey:   getEnv("TLS_KEY", ""),

		CooldownWindow:    getDurationEnv("COOLDOWN_WINDOW", 5*time.Minute),
		CooldownOverrides: parseOverrides(os.Getenv("COOLDOWN_OVERRIDES")),
		SinkTimeout:       getDurationEnv("SINK_TIMEOUT", 10*time.Second),

		SMSPrefix:   getEnv("SMS_PREFIX", "[notify] "),
		FreeSMSUser: getEnv("FREE_SMS_USER", ""),
		FreeSMSPass: getEnv("FREE_SMS_PASS", ""),

		SimpleTriggerToken:  getEnv("SIMPLE_TRIGGER_TOKEN", ""),
		GmailPubSubToken:    getEnv("GMAIL_PUBSUB_TOKEN", ""),
		StravaVerifyToken:   getEnv("STRAVA_VERIFY_TOKEN", ""),
		CalWebhookSecret:    getEnv("CAL_WEBHOOK_SECRET", ""),
		NotionWebhookSecret: getEnv("NOTION_WEBHOOK_SECRET", ""),
		GitHubWebhookSecret: getEnv("GITHUB_WEBHOOK_SECRET", ""),

		StravaClientID:     getEnv("STRAVA_CLIENT_ID", ""),
		StravaClientSecret: getEnv("STRAVA_CLIENT_SECRET", ""),
		StravaRefreshToken: getEnv("STRAVA_REFRESH_TOKEN", ""),
		NotionAPIToken:     getEnv("NOTION_API_TOKEN", ""),

		GmailGitHub:  loadGitHubDispatch("GMAIL_"),
		StravaGitHub: loadGitHubDispatch("STRAVA_"),
		CalGitHub:    loadGitHubDispatch("CAL_"),
		NotionGitHub: loadGitHubDispatch("NOTION_"),

		RateLimitEnabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
		RateLimitRPS:     getIntEnv("RATE_LIMIT_RPS", 5),
		RateLimitBurst:   getIntEnv("RATE_LIMIT_BURST", 10),
	}
}

// loadGitHubDispatch reads one source's workflow sink settings by env prefix.
func loadGitHubDispatch(prefix string) GitHubDispatch {
	return GitHubDispatch{
		Token:      getEnv(prefix+"GITHUB_TOKEN", ""),
		Repo:       getEnv(prefix+"GITHUB_REPO", ""),
		WorkflowID: getEnv(prefix+"GITHUB_WORKFLOW_ID", ""),
	}
}

// parseOverrides parses "source=duration" pairs separated by commas.
// Invalid entries are dropped; Validate reports them.
func parseOverrides(raw string) map[string]time.Duration {
	overrides := make(map[string]time.Duration)
	if raw == "" {
		return overrides
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		d, err := time.ParseDuration(parts[1])
		if err != nil || d <= 0 {
			continue
		}
		overrides[strings.ToLower(parts[0])] = d
	}
	return overrides
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks that required fields are present and all values are valid.
// The required set is intentionally small: sources whose secrets are unset are
// still registered but reject traffic (or accept unsigned traffic where the
// provider cannot sign), so a minimal deployment only needs SMS credentials.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if c.CooldownWindow <= 0 {
		return fmt.Errorf("COOLDOWN_WINDOW must be a positive duration")
	}

	if c.SinkTimeout <= 0 {
		return fmt.Errorf("SINK_TIMEOUT must be a positive duration")
	}

	if (c.FreeSMSUser == "") != (c.FreeSMSPass == "") {
		return fmt.Errorf("FREE_SMS_USER and FREE_SMS_PASS must be set together")
	}

	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("TLS_CERT and TLS_KEY must be set together")
	}

	if c.RateLimitEnabled {
		if c.RateLimitRPS < 1 {
			return fmt.Errorf("RATE_LIMIT_RPS must be a positive number")
		}
		if c.RateLimitBurst < 1 {
			return fmt.Errorf("RATE_LIMIT_BURST must be a positive number")
		}
	}

	// Workflow sinks are optional per source, but a partially configured one
	// is a deployment mistake worth failing on.
	for _, entry := range []struct {
		name     string
		dispatch GitHubDispatch
	}{
		{"GMAIL", c.GmailGitHub},
		{"STRAVA", c.StravaGitHub},
		{"CAL", c.CalGitHub},
		{"NOTION", c.NotionGitHub},
	} {
		d := entry.dispatch
		if d.Token == "" && d.Repo == "" && d.WorkflowID == "" {
			continue
		}
		if !d.Configured() {
			return fmt.Errorf("%s_GITHUB_TOKEN, %s_GITHUB_REPO and %s_GITHUB_WORKFLOW_ID must be set together",
				entry.name, entry.name, entry.name)
		}
	}

	return nil
}

// WindowFor returns the cooldown window for a source, honoring overrides.
func (c *Config) WindowFor(source string) time.Duration {
	if d, ok := c.CooldownOverrides[strings.ToLower(source)]; ok {
		return d
	}
	return c.CooldownWindow
}
