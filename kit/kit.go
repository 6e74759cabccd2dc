// Package kit provides the endpoint abstraction and MCP transport plumbing
// shared by the wayback tool surface.
package kit

import "context"

// Endpoint is a transport-agnostic operation: it receives a decoded request
// and returns a response value or an error.
type Endpoint func(ctx context.Context, request any) (any, error)
