// Package octopus is a minimal client for the Octopus Energy Japan (Kraken) GraphQL API.
package octopus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jgoulah/octousage/internal/metrics"
)

// AuthError represents an authentication failure
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// UpstreamError is returned when the API answers with a non-empty GraphQL
// errors list. Errors holds the raw payload as received.
type UpstreamError struct {
	Operation string
	Errors    json.RawMessage
}

func (e *UpstreamError) Error() string {
	var parsed []struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Errors, &parsed); err == nil && len(parsed) > 0 {
		msgs := make([]string, 0, len(parsed))
		for _, p := range parsed {
			msgs = append(msgs, strings.TrimSpace(p.Message))
		}
		return fmt.Sprintf("%s: upstream returned errors: %s", e.Operation, strings.Join(msgs, "; "))
	}
	return fmt.Sprintf("%s: upstream returned errors: %s", e.Operation, string(e.Errors))
}

// Client talks to the Kraken GraphQL API. Each call is a single attempt.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records every request on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for the given GraphQL endpoint
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphQLRequest struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// do posts one GraphQL operation and decodes its data into out
func (c *Client) do(ctx context.Context, operation, token, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{
		OperationName: operation,
		Query:         query,
		Variables:     variables,
	})
	if err != nil {
		return fmt.Errorf("%s: marshaling request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", operation, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "JWT "+token)
	}

	c.log.Debug().
		Str("operation", operation).
		Str("url", c.endpoint).
		Str("authorization", maskToken(token)).
		Msg("graphql request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(operation, "transport_error", time.Since(start))
		return fmt.Errorf("%s: sending request: %w", operation, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	dur := time.Since(start)
	if err != nil {
		c.metrics.ObserveUpstream(operation, "transport_error", dur)
		return fmt.Errorf("%s: reading response: %w", operation, err)
	}

	c.log.Debug().
		Str("operation", operation).
		Int("status", resp.StatusCode).
		Dur("duration", dur).
		Int("bytes", len(respBody)).
		Msg("graphql response")

	// Check for authentication errors
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.metrics.ObserveUpstream(operation, "auth_error", dur)
		return &AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: authentication failed (status %d): %s", operation, resp.StatusCode, truncate(string(respBody), 200)),
		}
	}

	var result graphQLResponse
	decodeErr := json.Unmarshal(respBody, &result)
	if decodeErr == nil && hasErrors(result.Errors) {
		c.metrics.ObserveUpstream(operation, "upstream_error", dur)
		return &UpstreamError{Operation: operation, Errors: result.Errors}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.ObserveUpstream(operation, "http_error", dur)
		return fmt.Errorf("%s: API returned status %d: %s", operation, resp.StatusCode, truncate(string(respBody), 200))
	}
	if decodeErr != nil {
		c.metrics.ObserveUpstream(operation, "decode_error", dur)
		return fmt.Errorf("%s: decoding response: %w", operation, decodeErr)
	}

	if err := json.Unmarshal(result.Data, out); err != nil {
		c.metrics.ObserveUpstream(operation, "decode_error", dur)
		return fmt.Errorf("%s: decoding data: %w", operation, err)
	}

	c.metrics.ObserveUpstream(operation, "ok", dur)
	return nil
}

func hasErrors(raw json.RawMessage) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return false
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		// Not a list but present and not null: still an error payload
		return !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
	}
	return len(list) > 0
}

// IsAuthError reports whether err came from a rejected credential or token
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

func maskToken(token string) string {
	switch {
	case token == "":
		return ""
	case len(token) > 12:
		return token[:6] + "..." + token[len(token)-4:]
	default:
		return "***"
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
