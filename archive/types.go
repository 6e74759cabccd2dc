package archive

// LatestResult is the outcome of a latest-snapshot lookup. When Available
// is false only URL and Message are set; no snapshot fields appear.
type LatestResult struct {
	Available     bool   `json:"available"`
	URL           string `json:"url,omitempty"`
	Message       string `json:"message,omitempty"`
	OriginalURL   string `json:"original_url,omitempty"`
	SnapshotURL   string `json:"snapshot_url,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	FormattedTime string `json:"formatted_time,omitempty"`
	Status        string `json:"status,omitempty"`
}

// AtDateResult is the outcome of a closest-to-date lookup.
type AtDateResult struct {
	Available           bool   `json:"available"`
	URL                 string `json:"url,omitempty"`
	Message             string `json:"message,omitempty"`
	OriginalURL         string `json:"original_url,omitempty"`
	RequestedTimestamp  string `json:"requested_timestamp"`
	SnapshotURL         string `json:"snapshot_url,omitempty"`
	ActualTimestamp     string `json:"actual_timestamp,omitempty"`
	ActualFormattedTime string `json:"actual_formatted_time,omitempty"`
	Status              string `json:"status,omitempty"`
}

// Snapshot is one capture in a CDX search result.
type Snapshot struct {
	Timestamp     string `json:"timestamp"`
	FormattedTime string `json:"formatted_time"`
	SnapshotURL   string `json:"snapshot_url"`
	OriginalURL   string `json:"original_url"`
	StatusCode    string `json:"status_code"`
	MimeType      string `json:"mime_type"`
	SizeBytes     string `json:"size_bytes"`
}

// SearchParams describes a CDX index search.
type SearchParams struct {
	URL        string
	FromDate   string
	ToDate     string
	Limit      int
	StatusCode string
}

// SearchResult is the outcome of a CDX index search.
type SearchResult struct {
	URL        string     `json:"url"`
	TotalFound int        `json:"total_found"`
	Snapshots  []Snapshot `json:"snapshots"`
}

// ContentParams describes a snapshot content fetch.
type ContentParams struct {
	SnapshotURL string
	Raw         bool
	Format      string // "html" (default), "markdown", "text"
}

// ContentResult is a fetched snapshot body.
type ContentResult struct {
	SnapshotURL   string `json:"snapshot_url"`
	Title         string `json:"title,omitempty"`
	Format        string `json:"format"`
	ContentLength int    `json:"content_length"`
	Truncated     bool   `json:"truncated"`
	Content       string `json:"content"`
}

// SnapshotRef is a minimal capture reference in availability checks.
type SnapshotRef struct {
	Timestamp     string `json:"timestamp"`
	FormattedTime string `json:"formatted_time"`
}

// CheckResult is the outcome of an archive-presence check.
type CheckResult struct {
	URL            string       `json:"url"`
	IsArchived     bool         `json:"is_archived"`
	FirstSnapshot  *SnapshotRef `json:"first_snapshot"`
	LatestSnapshot *SnapshotRef `json:"latest_snapshot"`
	WaybackURL     string       `json:"wayback_url"`
}
