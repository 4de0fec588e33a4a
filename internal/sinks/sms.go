// Package sinks contains the outbound notification channels. Every sink call
// is bounded by the caller's context and wrapped in a circuit breaker.
package sinks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"webhook-notifier/internal/circuitbreaker"
	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
)

const freeMobileBaseURL = "https://smsapi.free-mobile.fr"

// SMSSender delivers a short text message to the operator's phone.
type SMSSender interface {
	Send(ctx context.Context, message string) error
}

// FreeMobileSMS sends SMS through the Free Mobile subscriber API. The API is
// a single GET endpoint authenticated by subscriber id and API key.
type FreeMobileSMS struct {
	user    string
	pass    string
	prefix  string
	baseURL string
	client  *http.Client
	breaker *circuitbreaker.Breaker
	logger  logging.Logger
}

// SMSOption configures a FreeMobileSMS sender.
type SMSOption func(*FreeMobileSMS)

// WithSMSBaseURL overrides the Free Mobile API endpoint.
func WithSMSBaseURL(baseURL string) SMSOption {
	return func(s *FreeMobileSMS) {
		s.baseURL = baseURL
	}
}

// WithSMSClient overrides the HTTP client.
func WithSMSClient(client *http.Client) SMSOption {
	return func(s *FreeMobileSMS) {
		s.client = client
	}
}

// NewFreeMobileSMS creates an SMS sender. The prefix is prepended to every
// message so texts from this service are recognizable at a glance.
func NewFreeMobileSMS(user, pass, prefix string, client *http.Client, logger logging.Logger, opts ...SMSOption) *FreeMobileSMS {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &FreeMobileSMS{
		user:    user,
		pass:    pass,
		prefix:  prefix,
		baseURL: freeMobileBaseURL,
		client:  client,
		breaker: circuitbreaker.New("free-mobile-sms", circuitbreaker.SinkConfig, logger),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send implements SMSSender
func (s *FreeMobileSMS) Send(ctx context.Context, message string) error {
	if s.user == "" || s.pass == "" {
		return errors.ConfigError("sms credentials not configured")
	}

	return s.breaker.Execute(ctx, func() error {
		return s.send(ctx, message)
	})
}

func (s *FreeMobileSMS) send(ctx context.Context, message string) error {
	query := url.Values{}
	query.Set("user", s.user)
	query.Set("pass", s.pass)
	query.Set("msg", s.prefix+message)

	endpoint := fmt.Sprintf("%s/sendmsg?%s", s.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.DeliveryError("building sms request", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.DeliveryError("sms request failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.DeliveryError(
			fmt.Sprintf("sms provider returned status %d", resp.StatusCode), nil)
	}

	s.logger.Info("SMS sent", logging.Int("message_length", len(message)))
	return nil
}
