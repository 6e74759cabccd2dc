// Package cdx queries the Wayback Machine CDX index.
//
// The upstream returns a JSON array of arrays: the first row holds field
// names, subsequent rows hold values positionally. Records are built by
// zipping the header onto each row; rows whose length does not match the
// header are skipped.
package cdx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hazyhaar/wayback/safeurl"
)

// DefaultFields is the field list requested for search results.
var DefaultFields = []string{"timestamp", "original", "statuscode", "mimetype", "length"}

const (
	// DefaultLimit applies when a query requests no limit.
	DefaultLimit = 10
	// MaxLimit is the inclusive cap on requested result counts.
	MaxLimit = 100

	maxResponseBytes = 10 * 1024 * 1024
)

// Record is one capture row from the index.
type Record struct {
	Timestamp  string
	Original   string
	StatusCode string
	MimeType   string
	Length     string
}

// Query describes one CDX search.
type Query struct {
	URL        string   // match pattern, wildcards pass through verbatim
	From       string   // YYYYMMDD lower bound, optional
	To         string   // YYYYMMDD upper bound, optional
	Limit      int      // clamped to [1, MaxLimit]; 0 means DefaultLimit
	StatusCode string   // filter=statuscode:<code>, optional
	FastLatest bool     // ask the index for the most recent capture first
	Fields     []string // fl= selection; DefaultFields when empty
}

// ClampLimit normalises a requested limit into [1, MaxLimit], applying
// DefaultLimit for unset values.
func ClampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// Client talks to one CDX endpoint.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a Client against baseURL using the given http.Client.
func New(httpClient *http.Client, baseURL string) *Client {
	return &Client{http: httpClient, baseURL: baseURL}
}

// Search runs the query and returns the parsed capture records.
// An empty or header-only response yields zero records and no error.
func (c *Client) Search(ctx context.Context, q Query) ([]Record, error) {
	fields := q.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}

	params := url.Values{}
	params.Set("url", q.URL)
	params.Set("output", "json")
	params.Set("fl", strings.Join(fields, ","))
	params.Set("limit", strconv.Itoa(ClampLimit(q.Limit)))
	if q.From != "" {
		params.Set("from", q.From)
	}
	if q.To != "" {
		params.Set("to", q.To)
	}
	if q.StatusCode != "" {
		params.Set("filter", "statuscode:"+q.StatusCode)
	}
	if q.FastLatest {
		params.Set("fastLatest", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("cdx: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cdx: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, fmt.Errorf("cdx: http %d", resp.StatusCode)
	}

	body, err := safeurl.LimitedReadAll(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("cdx: read body: %w", err)
	}

	return parseRows(body)
}

// parseRows zips the header row onto each data row.
func parseRows(body []byte) ([]Record, error) {
	if len(body) == 0 {
		return nil, nil
	}

	var raw [][]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("cdx: json decode: %w", err)
	}
	if len(raw) < 2 {
		return nil, nil
	}

	header := raw[0]
	records := make([]Record, 0, len(raw)-1)
	for _, row := range raw[1:] {
		if len(row) != len(header) {
			// Positional rows of the wrong arity cannot be zipped.
			continue
		}
		var r Record
		for i, name := range header {
			switch name {
			case "timestamp":
				r.Timestamp = row[i]
			case "original":
				r.Original = row[i]
			case "statuscode":
				r.StatusCode = row[i]
			case "mimetype":
				r.MimeType = row[i]
			case "length":
				r.Length = row[i]
			}
		}
		records = append(records, r)
	}
	return records, nil
}
