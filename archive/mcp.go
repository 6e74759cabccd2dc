package archive

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/wayback/kit"
)

// RegisterMCP registers all wayback tools on an MCP server.
func (svc *Service) RegisterMCP(srv *mcp.Server) {
	svc.registerGetLatestSnapshot(srv)
	svc.registerGetSnapshotAtDate(srv)
	svc.registerSearchSnapshots(srv)
	svc.registerGetSnapshotContent(srv)
	svc.registerCheckURLAvailability(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// instrument wraps an endpoint with audit-trail recording. A nil audit
// logger makes this a no-op.
func (svc *Service) instrument(name string, endpoint kit.Endpoint) kit.Endpoint {
	if svc.audit == nil {
		return endpoint
	}
	return func(ctx context.Context, req any) (any, error) {
		start := time.Now()
		resp, err := endpoint(ctx, req)
		entry := svc.audit.NewEntry(name, req, err, time.Since(start))
		entry.Transport = kit.GetTransport(ctx)
		entry.SessionID = kit.GetSessionID(ctx)
		svc.audit.LogAsync(entry)
		return resp, err
	}
}

// --- get_latest_snapshot ---

func (svc *Service) registerGetLatestSnapshot(srv *mcp.Server) {
	type req struct {
		URL string `json:"url"`
	}

	tool := &mcp.Tool{
		Name: "get_latest_snapshot",
		Description: "Get the most recent archived snapshot of a URL from the Wayback Machine. " +
			"Returns the snapshot URL, timestamp, and HTTP status.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL to look up in the Wayback Machine (e.g. 'example.com' or 'https://example.com/page')",
			},
		}, []string{"url"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.LatestSnapshot(ctx, p.URL)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, svc.instrument(tool.Name, endpoint), decode)
}

// --- get_snapshot_at_date ---

func (svc *Service) registerGetSnapshotAtDate(srv *mcp.Server) {
	type req struct {
		URL       string `json:"url"`
		Timestamp string `json:"timestamp"`
	}

	tool := &mcp.Tool{
		Name: "get_snapshot_at_date",
		Description: "Get the closest archived snapshot of a URL to a specific date/time. " +
			"Returns the snapshot URL, timestamp, and HTTP status.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL to look up in the Wayback Machine",
			},
			"timestamp": map[string]any{
				"type": "string",
				"description": "The target date/time in YYYYMMDDhhmmss format (1-14 digits). " +
					"Examples: '20230101' for Jan 1 2023, '20230101120000' for noon on Jan 1 2023.",
			},
		}, []string{"url", "timestamp"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.SnapshotAtDate(ctx, p.URL, p.Timestamp)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, svc.instrument(tool.Name, endpoint), decode)
}

// --- search_snapshots ---

func (svc *Service) registerSearchSnapshots(srv *mcp.Server) {
	type req struct {
		URL        string `json:"url"`
		FromDate   string `json:"from_date"`
		ToDate     string `json:"to_date"`
		Limit      int    `json:"limit"`
		StatusCode string `json:"status_code"`
	}

	tool := &mcp.Tool{
		Name: "search_snapshots",
		Description: "Search the Wayback Machine CDX index for all archived snapshots of a URL. " +
			"Returns a list of snapshots with timestamps, status codes, and MIME types. " +
			"Supports date range filtering and result limits.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL to search for (supports wildcards with '*', e.g. 'example.com/*')",
			},
			"from_date": map[string]any{
				"type":        "string",
				"description": "Start date filter in YYYYMMDD format (optional)",
			},
			"to_date": map[string]any{
				"type":        "string",
				"description": "End date filter in YYYYMMDD format (optional)",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of results to return (default: 10, max: 100)",
				"default":     10,
			},
			"status_code": map[string]any{
				"type":        "string",
				"description": "Filter by HTTP status code (e.g. '200', '404'). Optional.",
			},
		}, []string{"url"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.SearchSnapshots(ctx, SearchParams{
			URL:        p.URL,
			FromDate:   p.FromDate,
			ToDate:     p.ToDate,
			Limit:      p.Limit,
			StatusCode: p.StatusCode,
		})
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, svc.instrument(tool.Name, endpoint), decode)
}

// --- get_snapshot_content ---

func (svc *Service) registerGetSnapshotContent(srv *mcp.Server) {
	type req struct {
		SnapshotURL string `json:"snapshot_url"`
		Raw         bool   `json:"raw"`
		Format      string `json:"format"`
	}

	tool := &mcp.Tool{
		Name: "get_snapshot_content",
		Description: "Fetch the content of a specific Wayback Machine snapshot. " +
			"Returns the page content as text. Use get_latest_snapshot or search_snapshots first to get a snapshot URL.",
		InputSchema: inputSchema(map[string]any{
			"snapshot_url": map[string]any{
				"type":        "string",
				"description": "The full Wayback Machine snapshot URL (e.g. 'https://web.archive.org/web/20230101120000/https://example.com')",
			},
			"raw": map[string]any{
				"type":        "boolean",
				"description": "If true, fetch the raw archived content without Wayback Machine toolbar (default: false)",
				"default":     false,
			},
			"format": map[string]any{
				"type":        "string",
				"description": "Render the body as 'html' (verbatim, default), 'markdown', or 'text'",
				"default":     "html",
			},
		}, []string{"snapshot_url"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.SnapshotContent(ctx, ContentParams{
			SnapshotURL: p.SnapshotURL,
			Raw:         p.Raw,
			Format:      p.Format,
		})
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, svc.instrument(tool.Name, endpoint), decode)
}

// --- check_url_availability ---

func (svc *Service) registerCheckURLAvailability(srv *mcp.Server) {
	type req struct {
		URL string `json:"url"`
	}

	tool := &mcp.Tool{
		Name: "check_url_availability",
		Description: "Check whether a URL has been archived in the Wayback Machine at all, " +
			"with its earliest and latest snapshot timestamps.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The URL to check availability for",
			},
		}, []string{"url"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.CheckAvailability(ctx, p.URL)
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, svc.instrument(tool.Name, endpoint), decode)
}
