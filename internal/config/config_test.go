package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.CooldownWindow)
	assert.Equal(t, 10*time.Second, cfg.SinkTimeout)
	assert.Equal(t, "[notify] ", cfg.SMSPrefix)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 5, cfg.RateLimitRPS)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("COOLDOWN_WINDOW", "90s")
	t.Setenv("COOLDOWN_OVERRIDES", "notion=5s, gmail=10m, broken, bad=xx")
	t.Setenv("GMAIL_GITHUB_TOKEN", "tok")
	t.Setenv("GMAIL_GITHUB_REPO", "me/notify")
	t.Setenv("GMAIL_GITHUB_WORKFLOW_ID", "send.yml")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.CooldownWindow)
	assert.Equal(t, 5*time.Second, cfg.CooldownOverrides["notion"])
	assert.Equal(t, 10*time.Minute, cfg.CooldownOverrides["gmail"])
	assert.Len(t, cfg.CooldownOverrides, 2)
	assert.True(t, cfg.GmailGitHub.Configured())
	assert.False(t, cfg.StravaGitHub.Configured())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:             "8080",
			CooldownWindow:   time.Minute,
			SinkTimeout:      10 * time.Second,
			RateLimitEnabled: true,
			RateLimitRPS:     5,
			RateLimitBurst:   10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid minimal config",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Port = "not-a-port" },
			wantErr: "PORT",
		},
		{
			name:    "non-positive cooldown",
			mutate:  func(c *Config) { c.CooldownWindow = 0 },
			wantErr: "COOLDOWN_WINDOW",
		},
		{
			name:    "sms user without pass",
			mutate:  func(c *Config) { c.FreeSMSUser = "12345678" },
			wantErr: "FREE_SMS_USER",
		},
		{
			name:    "tls cert without key",
			mutate:  func(c *Config) { c.TLSCert = "/tmp/cert.pem" },
			wantErr: "TLS_CERT",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.RateLimitRPS = 0 },
			wantErr: "RATE_LIMIT_RPS",
		},
		{
			name: "rate limit ignored when disabled",
			mutate: func(c *Config) {
				c.RateLimitEnabled = false
				c.RateLimitRPS = 0
			},
		},
		{
			name:    "partial workflow sink",
			mutate:  func(c *Config) { c.NotionGitHub.Token = "tok" },
			wantErr: "NOTION_GITHUB_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestWindowFor(t *testing.T) {
	cfg := &Config{
		CooldownWindow:    5 * time.Minute,
		CooldownOverrides: map[string]time.Duration{"notion": 5 * time.Second},
	}

	assert.Equal(t, 5*time.Second, cfg.WindowFor("notion"))
	assert.Equal(t, 5*time.Second, cfg.WindowFor("Notion"))
	assert.Equal(t, 5*time.Minute, cfg.WindowFor("gmail"))
}
