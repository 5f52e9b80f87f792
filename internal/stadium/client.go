// Package stadium reads the event listing of the Cape Town stadium content API.
package stadium

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pfrederiksen/capetown-events/internal/event"
)

const (
	DefaultAPIURL  = "https://content-dhlstadium.azurewebsites.net/api/events"
	DefaultTimeout = 30 * time.Second

	sinceLayout = "2006-01-02T15:04:05.000Z07:00"
)

// ErrStatus is returned when the API answers with a non-2xx status
var ErrStatus = errors.New("unexpected API status")

// Client is a client for the stadium events API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a stadium API client. An empty baseURL uses DefaultAPIURL
// and a non-positive timeout uses DefaultTimeout.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// eventsResponse mirrors the listing envelope: data[].attributes.event[]
type eventsResponse struct {
	Data []struct {
		Attributes struct {
			Event []event.RawEventRecord `json:"event"`
		} `json:"attributes"`
	} `json:"data"`
}

// QueryURL returns the listing URL filtered to date ranges starting at or
// after since, with the image, date range and thumbnail relations populated.
func (c *Client) QueryURL(since time.Time) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing API URL: %w", err)
	}

	params := u.Query()
	params.Set("filters[event][daterange][start][$gte]", since.UTC().Format(sinceLayout))
	params.Set("populate[0]", "event.image")
	params.Set("populate[1]", "event.daterange")
	params.Set("populate[2]", "thumbnail")
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// Events fetches every event record published since the given time, in the
// order the API returns them.
func (c *Client) Events(ctx context.Context, since time.Time) ([]event.RawEventRecord, error) {
	reqURL, err := c.QueryURL(since)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	var result eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	records := make([]event.RawEventRecord, 0, len(result.Data))
	for _, item := range result.Data {
		records = append(records, item.Attributes.Event...)
	}
	return records, nil
}
