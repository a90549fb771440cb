// Package api wraps the debate platform REST API. Each method issues exactly
// one HTTP request and returns the decoded payload; there are no retries,
// batching or caching here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joss/debate/internal/logging"
)

// HTTPClient interface for HTTP requests (enables testing)
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Verify http.Client implements HTTPClient
var _ HTTPClient = (*http.Client)(nil)

// VoteRoute selects which vote endpoint the client calls.
type VoteRoute string

const (
	// VoteRouteDefault posts to /vote/{id}.
	VoteRouteDefault VoteRoute = "vote"
	// VoteRouteLegacy posts to /voting/{id}/vote. Deprecated.
	VoteRouteLegacy VoteRoute = "voting"
)

// Client talks to one API base URL.
type Client struct {
	baseURL   string
	http      HTTPClient
	voteRoute VoteRoute
	userAgent string
	log       *logging.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithVoteRoute selects the vote endpoint.
func WithVoteRoute(r VoteRoute) Option {
	return func(c *Client) {
		c.voteRoute = r
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
		voteRoute: VoteRouteDefault,
		userAgent: "debate-cli",
		log:       logging.New("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.voteRoute == VoteRouteLegacy {
		c.log.Warn("deprecated_vote_route", map[string]interface{}{
			"route": "/voting/{id}/vote",
		}, nil)
	}
	return c
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`

	// decodeErr is set when a 2xx body was not an envelope. Calls that
	// ignore the payload still succeed; decodeData reports it.
	decodeErr error
}

// request describes one call.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// do performs the request and returns the decoded envelope.
func (c *Client) do(ctx context.Context, r request) (*envelope, error) {
	ctx, reqID := logging.EnsureRequestID(ctx)
	log := c.log.WithRequestID(reqID)
	start := time.Now()

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(logging.RequestIDHeader, reqID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	extra := map[string]interface{}{
		"op":     r.op,
		"method": r.method,
		"path":   r.path,
	}

	resp, err := c.http.Do(req)
	if err != nil {
		err = fmt.Errorf("%s: %w", r.op, err)
		log.TimedEvent("request", start, extra, err)
		return nil, err
	}
	defer resp.Body.Close()
	extra["status"] = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("%s: read response: %w", r.op, err)
		log.TimedEvent("request", start, extra, err)
		return nil, err
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Op: r.op, Status: resp.StatusCode, Message: env.Message}
		if decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		log.TimedEvent("request", start, extra, apiErr)
		return nil, apiErr
	}
	switch {
	case len(bytes.TrimSpace(raw)) == 0:
		env = envelope{Success: true}
	case decodeErr != nil:
		env = envelope{Success: true, decodeErr: fmt.Errorf("%s: decode response: %w", r.op, decodeErr)}
		extra["undecoded"] = true
	}

	log.TimedEvent("request", start, extra, nil)
	return &env, nil
}

// decodeData unmarshals the envelope payload into v.
func decodeData(op string, env *envelope, v any) error {
	if env.decodeErr != nil {
		return env.decodeErr
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%s: decode data: %w", op, err)
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}
