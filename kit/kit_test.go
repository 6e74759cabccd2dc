package kit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type echoReq struct {
	Name string `json:"name"`
}

type echoResp struct {
	Greeting string `json:"greeting"`
}

func emptySchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func echoDecode(r *mcp.CallToolRequest) (*MCPDecodeResult, error) {
	var p echoReq
	if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
		return nil, err
	}
	return &MCPDecodeResult{Request: &p}, nil
}

func callTool(t *testing.T, register func(*mcp.Server), name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()

	srv := mcp.NewServer(&mcp.Implementation{Name: "kit-test", Version: "0.0.1"}, nil)
	register(srv)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := srv.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "kit-test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	return res
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] is %T, want *mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestRegisterMCPTool_Success(t *testing.T) {
	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*echoReq)
		return &echoResp{Greeting: "hello " + p.Name}, nil
	}
	register := func(srv *mcp.Server) {
		RegisterMCPTool(srv, &mcp.Tool{Name: "echo", Description: "echo", InputSchema: emptySchema()}, endpoint, echoDecode)
	}

	res := callTool(t, register, "echo", map[string]any{"name": "world"})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", textOf(t, res))
	}

	text := textOf(t, res)
	var got echoResp
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if got.Greeting != "hello world" {
		t.Errorf("greeting: got %q", got.Greeting)
	}
	// Responses are indented for readability in MCP clients.
	if !strings.Contains(text, "\n  ") {
		t.Errorf("expected indented JSON, got %q", text)
	}
}

func TestRegisterMCPTool_EndpointError(t *testing.T) {
	endpoint := func(ctx context.Context, r any) (any, error) {
		return nil, errors.New("upstream exploded")
	}
	register := func(srv *mcp.Server) {
		RegisterMCPTool(srv, &mcp.Tool{Name: "boom", Description: "boom", InputSchema: emptySchema()}, endpoint, echoDecode)
	}

	res := callTool(t, register, "boom", map[string]any{"name": "x"})
	if !res.IsError {
		t.Fatal("endpoint error must surface as an error-flagged result")
	}
	if !strings.Contains(textOf(t, res), "upstream exploded") {
		t.Errorf("error text: got %q", textOf(t, res))
	}
}

func TestRegisterMCPTool_DecodeError(t *testing.T) {
	endpoint := func(ctx context.Context, r any) (any, error) {
		t.Error("endpoint must not run when decode fails")
		return nil, nil
	}
	decode := func(r *mcp.CallToolRequest) (*MCPDecodeResult, error) {
		return nil, errors.New("bad shape")
	}
	register := func(srv *mcp.Server) {
		RegisterMCPTool(srv, &mcp.Tool{Name: "strict", Description: "strict", InputSchema: emptySchema()}, endpoint, decode)
	}

	res := callTool(t, register, "strict", map[string]any{"name": 1})
	if !res.IsError {
		t.Fatal("decode error must surface as an error-flagged result")
	}
	if !strings.Contains(textOf(t, res), "invalid arguments") {
		t.Errorf("error text: got %q", textOf(t, res))
	}
}

func TestRegisterMCPTool_EnrichCtx(t *testing.T) {
	endpoint := func(ctx context.Context, r any) (any, error) {
		return &echoResp{Greeting: GetTransport(ctx)}, nil
	}
	decode := func(r *mcp.CallToolRequest) (*MCPDecodeResult, error) {
		return &MCPDecodeResult{
			Request:   &echoReq{},
			EnrichCtx: func(ctx context.Context) context.Context { return WithTransport(ctx, "http") },
		}, nil
	}
	register := func(srv *mcp.Server) {
		RegisterMCPTool(srv, &mcp.Tool{Name: "ctx", Description: "ctx", InputSchema: emptySchema()}, endpoint, decode)
	}

	res := callTool(t, register, "ctx", nil)
	if res.IsError {
		t.Fatalf("unexpected error result: %s", textOf(t, res))
	}
	var got echoResp
	if err := json.Unmarshal([]byte(textOf(t, res)), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if got.Greeting != "http" {
		t.Errorf("transport from enriched ctx: got %q", got.Greeting)
	}
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	if got := GetTransport(ctx); got != "stdio" {
		t.Errorf("default transport: got %q", got)
	}
	ctx = WithTransport(ctx, "mcp_quic")
	ctx = WithRequestID(ctx, "req_1")
	ctx = WithSessionID(ctx, "sess_1")
	ctx = WithRemoteAddr(ctx, "10.0.0.1:1234")

	if got := GetTransport(ctx); got != "mcp_quic" {
		t.Errorf("transport: got %q", got)
	}
	if got := GetRequestID(ctx); got != "req_1" {
		t.Errorf("request id: got %q", got)
	}
	if got := GetSessionID(ctx); got != "sess_1" {
		t.Errorf("session id: got %q", got)
	}
	if got := GetRemoteAddr(ctx); got != "10.0.0.1:1234" {
		t.Errorf("remote addr: got %q", got)
	}
}
