package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
)

type stravaStub struct {
	tokenCalls    int
	activityCalls int
	activityType  string
	tokenStatus   int
}

func (s *stravaStub) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			s.tokenCalls++
			if s.tokenStatus != 0 {
				w.WriteHeader(s.tokenStatus)
				return
			}
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			assert.Equal(t, "client-id", r.Form.Get("client_id"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "access-1",
				"refresh_token": "refresh-2",
				"expires_at":    time.Now().Add(6 * time.Hour).Unix(),
			})
		case "/api/v3/activities/16448104498":
			s.activityCalls++
			assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":   16448104498,
				"name": "Evening Ride",
				"type": s.activityType,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestClient(t *testing.T, stub *stravaStub) (*Client, *httptest.Server) {
	server := httptest.NewServer(stub.handler(t))
	t.Cleanup(server.Close)
	client := NewClient("client-id", "client-secret", "refresh-1",
		server.Client(), logging.NewZapLogger(logging.ErrorLevel), WithBaseURL(server.URL))
	return client, server
}

func TestClient_GetActivity(t *testing.T) {
	stub := &stravaStub{activityType: "VirtualRide"}
	client, _ := newTestClient(t, stub)

	activity, err := client.GetActivity(context.Background(), 16448104498)
	require.NoError(t, err)
	assert.Equal(t, "Evening Ride", activity.Name)
	assert.True(t, activity.IsVirtualRide())
	assert.Equal(t, 1, stub.tokenCalls)
}

func TestClient_TokenReused(t *testing.T) {
	stub := &stravaStub{activityType: "Ride"}
	client, _ := newTestClient(t, stub)

	for i := 0; i < 3; i++ {
		_, err := client.GetActivity(context.Background(), 16448104498)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, stub.tokenCalls, "access token should be cached across calls")
	assert.Equal(t, 3, stub.activityCalls)
}

func TestClient_IsVirtualRide(t *testing.T) {
	tests := []struct {
		activityType string
		want         bool
	}{
		{"VirtualRide", true},
		{"Ride", false},
		{"Run", false},
	}

	for _, tt := range tests {
		t.Run(tt.activityType, func(t *testing.T) {
			stub := &stravaStub{activityType: tt.activityType}
			client, _ := newTestClient(t, stub)

			virtual, activity, err := client.IsVirtualRide(context.Background(), 16448104498)
			require.NoError(t, err)
			assert.Equal(t, tt.want, virtual)
			assert.Equal(t, "Evening Ride", activity.Name)
		})
	}
}

func TestClient_TokenRefreshRejected(t *testing.T) {
	stub := &stravaStub{tokenStatus: http.StatusUnauthorized}
	client, _ := newTestClient(t, stub)

	_, err := client.GetActivity(context.Background(), 16448104498)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeAuth))
}

func TestClient_MissingCredentials(t *testing.T) {
	client := NewClient("", "", "", http.DefaultClient, logging.NewZapLogger(logging.ErrorLevel))

	_, err := client.GetActivity(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestClient_ActivityNotFound(t *testing.T) {
	stub := &stravaStub{activityType: "Ride"}
	client, server := newTestClient(t, stub)
	_ = server

	_, err := client.GetActivity(context.Background(), 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprint(http.StatusNotFound))
}
