package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/wayback/kit"
)

func TestTagTransport(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = kit.GetTransport(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	tagTransport("http", inner).ServeHTTP(httptest.NewRecorder(), req)

	if seen != "http" {
		t.Errorf("transport: got %q, want %q", seen, "http")
	}
}
