// Package strava is a minimal Strava API client. It holds a refresh token and
// exchanges it for short-lived access tokens as needed, then fetches activity
// details to decide whether an activity is a virtual ride.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
)

const (
	defaultBaseURL  = "https://www.strava.com"
	activityVirtual = "VirtualRide"

	// expiryBuffer refreshes the access token slightly before Strava says it
	// expires so an in-flight request never races the deadline.
	expiryBuffer = 60 * time.Second
)

// Activity is the subset of a Strava activity this service cares about.
type Activity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// IsVirtualRide reports whether the activity was recorded on a trainer.
func (a *Activity) IsVirtualRide() bool {
	return a.Type == activityVirtual
}

// ActivityFetcher fetches activity details by id.
type ActivityFetcher interface {
	GetActivity(ctx context.Context, id int64) (*Activity, error)
}

// Client talks to the Strava v3 API on behalf of a single athlete.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
	logger       logging.Logger

	mu           sync.Mutex
	refreshToken string
	accessToken  string
	expiresAt    time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the Strava API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// NewClient creates a Strava client from OAuth app credentials and the
// athlete's long-lived refresh token.
func NewClient(clientID, clientSecret, refreshToken string, httpClient *http.Client, logger logging.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		baseURL:      defaultBaseURL,
		httpClient:   httpClient,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetActivity implements ActivityFetcher
func (c *Client) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	token, err := c.accessTokenFor(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/v3/activities/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.InternalError("building activity request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.InternalError("activity request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.InternalError(
			fmt.Sprintf("strava returned status %d: %s", resp.StatusCode, string(detail)), nil)
	}

	var activity Activity
	if err := json.NewDecoder(resp.Body).Decode(&activity); err != nil {
		return nil, errors.InternalError("decoding activity", err)
	}
	return &activity, nil
}

// IsVirtualRide fetches the activity and reports whether it is a virtual ride.
func (c *Client) IsVirtualRide(ctx context.Context, id int64) (bool, *Activity, error) {
	activity, err := c.GetActivity(ctx, id)
	if err != nil {
		return false, nil, err
	}
	return activity.IsVirtualRide(), activity, nil
}

// accessTokenFor returns a valid access token, refreshing it if the cached
// one is missing or close to expiry.
func (c *Client) accessTokenFor(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt.Add(-expiryBuffer)) {
		return c.accessToken, nil
	}

	if c.clientID == "" || c.clientSecret == "" || c.refreshToken == "" {
		return "", errors.ConfigError("strava credentials not configured")
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.InternalError("building token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.InternalError("token refresh failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.AuthError(
			fmt.Sprintf("strava token refresh returned status %d: %s", resp.StatusCode, string(detail)))
	}

	var token struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresAt    int64  `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", errors.InternalError("decoding token response", err)
	}
	if token.AccessToken == "" {
		return "", errors.AuthError("strava token refresh returned no access token")
	}

	c.accessToken = token.AccessToken
	c.expiresAt = time.Unix(token.ExpiresAt, 0)
	// Strava rotates refresh tokens on each exchange
	if token.RefreshToken != "" {
		c.refreshToken = token.RefreshToken
	}

	c.logger.Debug("Strava access token refreshed",
		logging.Time("expires_at", c.expiresAt))
	return c.accessToken, nil
}
