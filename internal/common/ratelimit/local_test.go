package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{Enabled: false}.Validate())
	assert.Error(t, Config{Enabled: true, RequestsPerSecond: 0, BurstSize: 1, MaxKeys: 1, CleanupPeriod: time.Minute}.Validate())
	assert.Error(t, Config{Enabled: true, RequestsPerSecond: 1, BurstSize: 0, MaxKeys: 1, CleanupPeriod: time.Minute}.Validate())
}

func TestLocalLimiter_PerKey(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{
		Enabled:           true,
		RequestsPerSecond: 1,
		BurstSize:         2,
		MaxKeys:           10,
		CleanupPeriod:     time.Minute,
	})
	require.NoError(t, err)

	// Burst of 2 for one key
	assert.True(t, limiter.TryAcquireForKey("gmail"))
	assert.True(t, limiter.TryAcquireForKey("gmail"))
	assert.False(t, limiter.TryAcquireForKey("gmail"))

	// Other keys are unaffected
	assert.True(t, limiter.TryAcquireForKey("strava"))
}

func TestLocalLimiter_Disabled(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{Enabled: false})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.TryAcquireForKey("gmail"))
	}
}

func TestHTTPMiddleware(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{
		Enabled:           true,
		RequestsPerSecond: 1,
		BurstSize:         1,
		MaxKeys:           10,
		CleanupPeriod:     time.Minute,
	})
	require.NoError(t, err)

	router := mux.NewRouter()
	router.Use(HTTPMiddleware(limiter, SourceKey))
	router.HandleFunc("/webhook/{source}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("POST")

	do := func(path string) int {
		req := httptest.NewRequest("POST", path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("/webhook/gmail"))
	assert.Equal(t, http.StatusTooManyRequests, do("/webhook/gmail"))
	assert.Equal(t, http.StatusOK, do("/webhook/strava"))
}

func TestSourceKey(t *testing.T) {
	req := httptest.NewRequest("POST", "/webhook", nil)
	req.Header.Set("X-Webhook-Source", "simple")
	assert.Equal(t, "simple", SourceKey(req))

	req = httptest.NewRequest("POST", "/webhook", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", SourceKey(req))
}
