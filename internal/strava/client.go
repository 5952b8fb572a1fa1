// Package strava syncs activities from the Strava API into local storage
// for the training signal aggregator to read.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/summitchronicles/summit-tracker/internal/errors"
)

const (
	tokenURL = "https://www.strava.com/oauth/token"
	apiBase  = "https://www.strava.com/api/v3"
)

// ErrNotConfigured is returned when the Strava credentials are absent.
var ErrNotConfigured = errors.NewSentinel("strava credentials not configured")

// Credentials holds the OAuth application credentials plus the athlete's
// long-lived refresh token.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func (c Credentials) configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Client is a minimal Strava API client that refreshes its access token on
// demand.
type Client struct {
	credentials Credentials
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewClient creates a Strava client.
func NewClient(credentials Credentials, logger *slog.Logger) *Client {
	return &Client{
		credentials: credentials,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

// Configured reports whether the client has credentials to work with.
func (c *Client) Configured() bool {
	return c.credentials.configured()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

// accessTokenLocked returns a valid access token, refreshing it against the
// OAuth endpoint when the cached one has expired.
func (c *Client) token(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.credentials.ClientID},
		"client_secret": {c.credentials.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.credentials.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh token: unexpected status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err = json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	c.accessToken = token.AccessToken
	c.expiresAt = time.Unix(token.ExpiresAt, 0)
	c.logger.LogAttrs(ctx, slog.LevelDebug, "refreshed strava access token",
		slog.Time("expires_at", c.expiresAt))
	return c.accessToken, nil
}

// Activities fetches one page of the athlete's activities, newest first.
func (c *Client) Activities(ctx context.Context, page, perPage int) ([]Activity, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.apiEndpoint() + "/athlete/activities?page=" + strconv.Itoa(page) +
		"&per_page=" + strconv.Itoa(perPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build activities request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch activities: unexpected status %d", resp.StatusCode)
	}

	var activities []Activity
	if err = json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return activities, nil
}

func (c *Client) tokenEndpoint() string {
	if c.baseURL != "" {
		return c.baseURL + "/oauth/token"
	}
	return tokenURL
}

func (c *Client) apiEndpoint() string {
	if c.baseURL != "" {
		return c.baseURL + "/api/v3"
	}
	return apiBase
}
