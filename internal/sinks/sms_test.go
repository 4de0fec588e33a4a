package sinks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
)

func testLogger() logging.Logger {
	return logging.NewZapLogger(logging.ErrorLevel)
}

func TestFreeMobileSMS_Send(t *testing.T) {
	var gotPath, gotUser, gotPass, gotMsg string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser = r.URL.Query().Get("user")
		gotPass = r.URL.Query().Get("pass")
		gotMsg = r.URL.Query().Get("msg")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewFreeMobileSMS("12345678", "apikey", "[notify] ",
		server.Client(), testLogger(), WithSMSBaseURL(server.URL))

	err := sender.Send(context.Background(), "Hello World")
	require.NoError(t, err)

	assert.Equal(t, "/sendmsg", gotPath)
	assert.Equal(t, "12345678", gotUser)
	assert.Equal(t, "apikey", gotPass)
	assert.Equal(t, "[notify] Hello World", gotMsg)
}

func TestFreeMobileSMS_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	sender := NewFreeMobileSMS("12345678", "badkey", "",
		server.Client(), testLogger(), WithSMSBaseURL(server.URL))

	err := sender.Send(context.Background(), "Hello")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDelivery))
	assert.Contains(t, err.Error(), "403")
}

func TestFreeMobileSMS_MissingCredentials(t *testing.T) {
	sender := NewFreeMobileSMS("", "", "", http.DefaultClient, testLogger())

	err := sender.Send(context.Background(), "Hello")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestFreeMobileSMS_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	sender := NewFreeMobileSMS("12345678", "apikey", "",
		server.Client(), testLogger(), WithSMSBaseURL(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, "Hello")
	require.Error(t, err)
}

func TestFreeMobileSMS_BreakerOpensAfterFailures(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sender := NewFreeMobileSMS("12345678", "apikey", "",
		server.Client(), testLogger(), WithSMSBaseURL(server.URL))

	for i := 0; i < 5; i++ {
		_ = sender.Send(context.Background(), "Hello")
	}

	// After three consecutive failures the breaker stops calling through.
	assert.Equal(t, 3, calls)
}
