// Package gamma provides a read-only client for the Polymarket Gamma API and
// the normalization of its raw records into domain events.
package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/polyscout/polyscout/internal/logger"
	"github.com/polyscout/polyscout/internal/models"
)

// Sort orders accepted by the events endpoint.
const (
	OrderVolume24hr = "volume24hr"
	OrderVolume     = "volume"
)

// EventsParams narrows an /events query. Zero values are omitted from the
// request.
type EventsParams struct {
	Slug      string
	Order     string
	Ascending bool
	Featured  bool
	Closed    *bool
	Limit     int
}

// Client provides access to the Gamma API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a Gamma API client.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// Events fetches and normalizes events matching the given parameters.
func (c *Client) Events(ctx context.Context, p EventsParams) ([]models.Event, error) {
	u, err := url.Parse(c.baseURL + "/events")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	if p.Slug != "" {
		q.Set("slug", p.Slug)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
		q.Set("ascending", strconv.FormatBool(p.Ascending))
	}
	if p.Featured {
		q.Set("featured", "true")
	}
	if p.Closed != nil {
		q.Set("closed", strconv.FormatBool(*p.Closed))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	u.RawQuery = q.Encode()

	resp, err := c.doRequest(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	defer resp.Body.Close()

	// Response is an array directly, not wrapped
	var raws []RawEvent
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	events := NormalizeEvents(raws)
	logger.WithFields(map[string]any{
		"fetched":    len(raws),
		"normalized": len(events),
	}).Debug("events fetched")
	return events, nil
}

// EventBySlug fetches the single event with an exactly matching slug.
// Returns models.ErrNotFound when the source has no such event.
func (c *Client) EventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	events, err := c.Events(ctx, EventsParams{Slug: slug})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: event %q", models.ErrNotFound, slug)
	}
	return &events[0], nil
}

// doRequest performs an HTTP GET with linear-backoff retry on transport
// errors and server-side failures.
func (c *Client) doRequest(ctx context.Context, urlStr string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelayBase * time.Duration(i)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
