// Package archive implements lookup operations over the Internet Archive's
// Wayback Machine HTTP APIs: availability lookups, CDX index searches, and
// snapshot content retrieval.
//
// The service is stateless; every operation is a single request/response
// cycle with no retention, caching, or coordination between invocations.
package archive

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/wayback/archive/internal/availability"
	"github.com/hazyhaar/wayback/archive/internal/cdx"
	"github.com/hazyhaar/wayback/archive/internal/fetch"
	"github.com/hazyhaar/wayback/audit"
)

const (
	latestNotFoundMessage = "No snapshots found for this URL"
	atDateNotFoundMessage = "No snapshots found near this date"
)

// Service is the Wayback lookup adapter.
type Service struct {
	config  *Config
	logger  *slog.Logger
	avail   *availability.Client
	cdx     *cdx.Client
	fetcher *fetch.Fetcher
	render  *renderer
	audit   *audit.Logger
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithAudit records every tool invocation to the given audit trail.
func WithAudit(l *audit.Logger) ServiceOption {
	return func(svc *Service) { svc.audit = l }
}

// New creates the archive Service.
func New(cfg *Config, logger *slog.Logger, opts ...ServiceOption) *Service {
	if cfg == nil {
		cfg = defaultConfig()
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	lookupClient := &http.Client{Timeout: cfg.LookupTimeout}

	svc := &Service{
		config: cfg,
		logger: logger,
		avail:  availability.New(lookupClient, cfg.AvailabilityURL),
		cdx:    cdx.New(lookupClient, cfg.CDXURL),
		fetcher: fetch.New(fetch.Config{
			Timeout:      cfg.ContentTimeout,
			MaxBytes:     cfg.MaxFetchBytes,
			UserAgent:    cfg.UserAgent,
			URLValidator: cfg.URLValidator,
		}),
		render: newRenderer(),
	}
	for _, o := range opts {
		o(svc)
	}
	return svc
}

// LatestSnapshot returns the most recent capture of url, or an
// available:false result when the archive has none. Upstream failures are
// returned as errors.
func (svc *Service) LatestSnapshot(ctx context.Context, url string) (*LatestResult, error) {
	closest, err := svc.avail.Lookup(ctx, url, "")
	if err != nil {
		return nil, err
	}
	if closest == nil {
		return &LatestResult{
			Available: false,
			URL:       url,
			Message:   latestNotFoundMessage,
		}, nil
	}
	return &LatestResult{
		Available:     true,
		OriginalURL:   url,
		SnapshotURL:   closest.URL,
		Timestamp:     closest.Timestamp,
		FormattedTime: FormatTimestamp(closest.Timestamp),
		Status:        statusOrUnknown(closest.Status),
	}, nil
}

// SnapshotAtDate returns the capture of url closest to timestamp
// (1-14 digit YYYYMMDDHHMMSS prefix).
func (svc *Service) SnapshotAtDate(ctx context.Context, url, timestamp string) (*AtDateResult, error) {
	closest, err := svc.avail.Lookup(ctx, url, timestamp)
	if err != nil {
		return nil, err
	}
	if closest == nil {
		return &AtDateResult{
			Available:          false,
			URL:                url,
			RequestedTimestamp: timestamp,
			Message:            atDateNotFoundMessage,
		}, nil
	}
	return &AtDateResult{
		Available:           true,
		OriginalURL:         url,
		RequestedTimestamp:  timestamp,
		SnapshotURL:         closest.URL,
		ActualTimestamp:     closest.Timestamp,
		ActualFormattedTime: FormatTimestamp(closest.Timestamp),
		Status:              statusOrUnknown(closest.Status),
	}, nil
}

// SearchSnapshots lists captures of url from the CDX index. The limit is
// clamped to [1,100]; wildcard match patterns pass through verbatim.
func (svc *Service) SearchSnapshots(ctx context.Context, p SearchParams) (*SearchResult, error) {
	records, err := svc.cdx.Search(ctx, cdx.Query{
		URL:        p.URL,
		From:       p.FromDate,
		To:         p.ToDate,
		Limit:      p.Limit,
		StatusCode: p.StatusCode,
	})
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(records))
	for _, r := range records {
		snapshots = append(snapshots, Snapshot{
			Timestamp:     r.Timestamp,
			FormattedTime: FormatTimestamp(r.Timestamp),
			SnapshotURL:   svc.config.ReplayBaseURL + "/" + r.Timestamp + "/" + r.Original,
			OriginalURL:   r.Original,
			StatusCode:    r.StatusCode,
			MimeType:      r.MimeType,
			SizeBytes:     r.Length,
		})
	}

	return &SearchResult{
		URL:        p.URL,
		TotalFound: len(snapshots),
		Snapshots:  snapshots,
	}, nil
}

// CheckAvailability reports whether url has been archived at all, with its
// earliest and latest capture timestamps. Each CDX read degrades
// independently on failure: a failed earliest read yields is_archived:false,
// a failed latest read yields a null latest_snapshot. The check itself
// never fails on upstream errors.
func (svc *Service) CheckAvailability(ctx context.Context, url string) (*CheckResult, error) {
	refFields := []string{"timestamp", "statuscode"}

	var firstRef *SnapshotRef
	first, err := svc.cdx.Search(ctx, cdx.Query{URL: url, Limit: 1, Fields: refFields})
	if err != nil {
		svc.logger.Warn("earliest capture lookup failed", "url", url, "error", err)
	} else if len(first) > 0 {
		firstRef = &SnapshotRef{
			Timestamp:     first[0].Timestamp,
			FormattedTime: FormatTimestamp(first[0].Timestamp),
		}
	}

	var latestRef *SnapshotRef
	latest, err := svc.cdx.Search(ctx, cdx.Query{URL: url, Limit: 1, Fields: refFields, FastLatest: true})
	if err != nil {
		svc.logger.Warn("latest capture lookup failed", "url", url, "error", err)
	} else if len(latest) > 0 {
		latestRef = &SnapshotRef{
			Timestamp:     latest[0].Timestamp,
			FormattedTime: FormatTimestamp(latest[0].Timestamp),
		}
	}

	return &CheckResult{
		URL:            url,
		IsArchived:     firstRef != nil,
		FirstSnapshot:  firstRef,
		LatestSnapshot: latestRef,
		WaybackURL:     svc.config.ReplayBaseURL + "/*/" + url,
	}, nil
}

func statusOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
