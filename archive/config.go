package archive

import "time"

// Upstream endpoint defaults. The availability API is only served over
// plain HTTP at archive.org.
const (
	DefaultAvailabilityURL = "http://archive.org/wayback/available"
	DefaultCDXURL          = "https://web.archive.org/cdx/search/cdx"
	DefaultReplayBaseURL   = "https://web.archive.org/web"
)

// Config configures the archive service.
type Config struct {
	// Upstream endpoints.
	AvailabilityURL string
	CDXURL          string
	ReplayBaseURL   string

	// LookupTimeout bounds availability and CDX calls.
	LookupTimeout time.Duration
	// ContentTimeout bounds snapshot content fetches.
	ContentTimeout time.Duration

	// MaxContentChars caps returned content; longer bodies are truncated
	// and flagged.
	MaxContentChars int
	// MaxFetchBytes caps the raw bytes read from the replay endpoint.
	MaxFetchBytes int64

	// UserAgent identifies content fetches to the archive.
	UserAgent string

	// URLValidator validates user-supplied snapshot URLs before fetching.
	// Default: safeurl.Validate. CDX match patterns are never validated;
	// they are opaque upstream queries, not fetch targets.
	URLValidator func(string) error
}

func (c *Config) defaults() {
	if c.AvailabilityURL == "" {
		c.AvailabilityURL = DefaultAvailabilityURL
	}
	if c.CDXURL == "" {
		c.CDXURL = DefaultCDXURL
	}
	if c.ReplayBaseURL == "" {
		c.ReplayBaseURL = DefaultReplayBaseURL
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = 30 * time.Second
	}
	if c.ContentTimeout <= 0 {
		c.ContentTimeout = 60 * time.Second
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = 50_000
	}
	if c.MaxFetchBytes <= 0 {
		c.MaxFetchBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "wayback-machine-mcp/1.0"
	}
}

func defaultConfig() *Config {
	c := &Config{}
	c.defaults()
	return c
}
