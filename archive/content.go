package archive

import (
	"context"
	"fmt"
	"strings"
)

// RawSnapshotURL rewrites a replay URL to serve the original captured bytes:
// the "id_" modifier is inserted immediately after the timestamp path
// segment, so the archive skips its toolbar-wrapped replay page. URLs that
// do not look like replay URLs are returned unchanged.
//
//	https://web.archive.org/web/20230101120000/https://example.com
//	https://web.archive.org/web/20230101120000id_/https://example.com
func RawSnapshotURL(snapshotURL string) string {
	base, rest, ok := strings.Cut(snapshotURL, "/web/")
	if !ok {
		return snapshotURL
	}
	ts, original, ok := strings.Cut(rest, "/")
	if !ok {
		return snapshotURL
	}
	return base + "/web/" + ts + "id_/" + original
}

// SnapshotContent fetches the body of a snapshot replay URL.
//
// With Raw set, the URL is rewritten into id_ mode first. The body is
// rendered into the requested format (default: verbatim HTML), then
// truncated to MaxContentChars characters with the truncation flagged.
func (svc *Service) SnapshotContent(ctx context.Context, p ContentParams) (*ContentResult, error) {
	format := p.Format
	if format == "" {
		format = FormatHTML
	}
	switch format {
	case FormatHTML, FormatMarkdown, FormatText:
	default:
		return nil, fmt.Errorf("unsupported format %q (want html, markdown or text)", p.Format)
	}

	fetchURL := p.SnapshotURL
	if p.Raw {
		fetchURL = RawSnapshotURL(fetchURL)
	}

	ctx, cancel := context.WithTimeout(ctx, svc.config.ContentTimeout)
	defer cancel()

	res, err := svc.fetcher.Fetch(ctx, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	body := string(res.Body)
	title := extractTitle(body)
	content := svc.render.render(body, format, fetchURL)

	truncated := false
	if runes := []rune(content); len(runes) > svc.config.MaxContentChars {
		content = string(runes[:svc.config.MaxContentChars])
		truncated = true
	}

	return &ContentResult{
		SnapshotURL:   fetchURL,
		Title:         title,
		Format:        format,
		ContentLength: len([]rune(content)),
		Truncated:     truncated,
		Content:       content,
	}, nil
}
