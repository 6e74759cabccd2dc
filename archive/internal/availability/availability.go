// Package availability queries the Wayback Machine availability API, which
// returns the single capture closest to a URL (and optionally a target
// timestamp).
package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hazyhaar/wayback/safeurl"
)

const maxResponseBytes = 1 << 20

// Closest is the capture reported by the availability API.
type Closest struct {
	Available bool   `json:"available"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

type response struct {
	ArchivedSnapshots struct {
		Closest *Closest `json:"closest"`
	} `json:"archived_snapshots"`
}

// Client talks to one availability endpoint.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a Client against baseURL using the given http.Client.
func New(httpClient *http.Client, baseURL string) *Client {
	return &Client{http: httpClient, baseURL: baseURL}
}

// Lookup returns the closest capture for target, or nil when the archive
// reports none available. timestamp is an optional 1-14 digit instant.
func (c *Client) Lookup(ctx context.Context, target, timestamp string) (*Closest, error) {
	params := url.Values{}
	params.Set("url", target)
	if timestamp != "" {
		params.Set("timestamp", timestamp)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("availability: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("availability: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("availability: http %d", resp.StatusCode)
	}

	body, err := safeurl.LimitedReadAll(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("availability: read body: %w", err)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("availability: json decode: %w", err)
	}

	closest := r.ArchivedSnapshots.Closest
	if closest == nil || !closest.Available {
		return nil, nil
	}
	return closest, nil
}
