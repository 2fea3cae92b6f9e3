// Package graphql is the query executor for the Pharos GraphQL API.
// Client performs exactly one HTTP POST per invocation and classifies the
// result into one of four mutually exclusive Outcome kinds; no retries are
// attempted at this layer.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	mimeJSON          = "application/json"
	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"
)

// Client executes GraphQL queries against a fixed upstream endpoint.
// It holds no per-invocation state; concurrent Execute calls are independent.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the given endpoint. A zero timeout inherits
// the transport default (no explicit deadline). logger may be nil; it is
// used for diagnostics only and never affects the returned outcome.
func NewClient(endpoint, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:  endpoint,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// graphqlRequest is the upstream wire body: {"query": ..., "variables"?: ...}.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Execute sends one POST with the query and optional variables and returns
// the classified outcome. It never returns a Go error: every failure mode,
// including transport-level ones, becomes Outcome data so the gateway always
// has something to render.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) *Outcome {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		// Variables arrive as decoded JSON, so this only fires on values
		// that cannot round-trip (NaN and the like).
		return transportFailure(fmt.Errorf("encode request body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return transportFailure(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set(headerUserAgent, c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("pharos request failed", "error", err)
		return transportFailure(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("pharos response read failed", "status", resp.StatusCode, "error", err)
		return transportFailure(fmt.Errorf("read response body: %w", err))
	}

	// Parseability is checked before the status code: an unparseable 500
	// body is a NonJSON outcome (which still carries the status), not an
	// HTTP error. Collapsing the two would lose the raw-text capture.
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.Warn("pharos returned non-JSON body",
			"status", resp.StatusCode,
			"body", Truncate(string(raw), DiagBodyLimit))
		return &Outcome{
			Kind:       OutcomeNonJSON,
			StatusCode: resp.StatusCode,
			RawText:    Truncate(string(raw), RawTextLimit),
			Message:    "Received non-JSON response from Pharos API",
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("pharos returned HTTP error", "status", resp.StatusCode)
		return &Outcome{
			Kind:       OutcomeHTTPError,
			StatusCode: resp.StatusCode,
			Payload:    payload,
			Message:    fmt.Sprintf("Pharos API HTTP error: status %d", resp.StatusCode),
		}
	}

	// Success carries the body verbatim — including any GraphQL-level
	// `errors` array. The calling assistant inspects that field itself.
	return &Outcome{Kind: OutcomeSuccess, Payload: payload}
}

// transportFailure wraps a client-side failure: the call never reached the
// upstream or never returned.
func transportFailure(err error) *Outcome {
	return &Outcome{
		Kind:    OutcomeTransportFailure,
		Message: err.Error(),
	}
}
