// Package calendar is a minimal HTTP client for the Google Calendar v3
// events surface: just enough to insert follow-up meetings on behalf of the
// dashboard operator.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/riskdash/riskdash/internal/domain/scheduling"
)

const DefaultBaseURL = "https://www.googleapis.com/calendar/v3"

// TokenSource yields a bearer token for each outbound request. Sources
// refresh or mint tokens as needed.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBaseURL points the client at a different API root, mainly for tests.
func WithBaseURL(base string) ClientOption {
	return func(cl *Client) { cl.baseURL = base }
}

// Client talks to the calendar backend for a single configured calendar.
type Client struct {
	baseURL    string
	calendarID string
	tokens     TokenSource
	httpClient *http.Client
}

func NewClient(calendarID string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		calendarID: calendarID,
		tokens:     tokens,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Insert creates an event on the configured calendar. A single attempt:
// failures are reported, never retried here.
func (c *Client) Insert(ctx context.Context, ev *scheduling.CalendarEvent) (*scheduling.InsertedEvent, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire token: %w", err)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Cap only the error snippet; a rejection body can be arbitrarily
		// large and only the first part is diagnostic.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("insert event: %s: %s", resp.Status, string(snippet))
	}

	var inserted scheduling.InsertedEvent
	if err := json.NewDecoder(resp.Body).Decode(&inserted); err != nil {
		return nil, fmt.Errorf("decode insert response: %w", err)
	}
	return &inserted, nil
}
