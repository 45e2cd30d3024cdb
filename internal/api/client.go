// Package api is the client for the remote events API (REST/JSON over HTTP)
// together with the error kinds the client workflows report.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/mmynk/volunteermap/internal/metrics"
	"github.com/mmynk/volunteermap/internal/models"
)

// DefaultTimeout bounds every request when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token attached to write requests.
type TokenSource interface {
	AccessToken() string
}

// Options configures a Client.
type Options struct {
	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the transport, e.g. in tests.
	HTTPClient *http.Client

	// Tokens, if set, adds "Authorization: Bearer <token>" to every request.
	Tokens TokenSource

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Client issues requests against the events API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenSource
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("failed to configure HTTP/2 transport: %w", err)
		}
		httpClient = &http.Client{Transport: transport}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.Discard()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		timeout:    timeout,
		tokens:     opts.Tokens,
		metrics:    m,
		logger:     logger,
	}, nil
}

// ListEvents fetches every event.
func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, "/events", "list_events", nil, &events); err != nil {
		return nil, err
	}
	for i := range events {
		events[i].DateTime = events[i].DateTime.UTC()
	}
	return events, nil
}

// GetEvent fetches a single event by ID.
func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), "get_event", nil, &event); err != nil {
		return nil, err
	}
	event.DateTime = event.DateTime.UTC()
	return &event, nil
}

// CreateEvent sends a fully formed event, including its client-generated ID.
func (c *Client) CreateEvent(ctx context.Context, event *models.Event) error {
	return c.do(ctx, http.MethodPost, "/events", "create_event", event, nil)
}

// UpdateEvent replaces the whole event record.
func (c *Client) UpdateEvent(ctx context.Context, event *models.Event) error {
	return c.do(ctx, http.MethodPut, "/events/"+url.PathEscape(event.ID), "update_event", event, nil)
}

// ListUsers fetches every user.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/users", "list_users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Authenticate exchanges credentials for the user record and an access token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	creds := models.Credentials{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth", "authenticate", creds, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("authentication response carried no access token")
	}
	return &resp, nil
}

// do performs one request, decoding a 2xx JSON body into out (if non-nil).
// Non-2xx responses become *ResponseError.
func (c *Client) do(ctx context.Context, method, path, endpoint string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		c.logger.Warn("API request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.metrics.APIRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug("API request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeResponseError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// errorBody is the JSON error shape used by the API.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeResponseError(resp *http.Response) error {
	respErr := &ResponseError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return respErr
	}

	var body errorBody
	if json.Unmarshal(data, &body) == nil && (body.Error != "" || body.Code != "") {
		respErr.Message = body.Error
		respErr.Code = body.Code
		return respErr
	}

	// Plain-text bodies are shown to the user as-is.
	respErr.Message = strings.TrimSpace(string(data))
	return respErr
}
