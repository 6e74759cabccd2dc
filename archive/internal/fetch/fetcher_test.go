package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// allowAll bypasses the private-address guard so tests can hit httptest
// servers on loopback.
func allowAll(string) error { return nil }

func TestFetch_Body(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>archived page</html>"))
	}))
	defer srv.Close()

	f := New(Config{URLValidator: allowAll})
	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(res.Body) != "<html>archived page</html>" {
		t.Errorf("body: got %q", res.Body)
	}
	if gotUA != "wayback-machine-mcp/1.0" {
		t.Errorf("user-agent: got %q", gotUA)
	}
}

func TestFetch_FollowsRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		w.Write([]byte("landed"))
	}))
	defer srv.Close()

	f := New(Config{URLValidator: allowAll})
	res, err := f.Fetch(context.Background(), srv.URL+"/start")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(res.Body) != "landed" {
		t.Errorf("body: got %q", res.Body)
	}
	if !strings.HasSuffix(res.FinalURL, "/final") {
		t.Errorf("final URL: got %q", res.FinalURL)
	}
}

func TestFetch_RedirectLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/again", http.StatusFound)
	}))
	defer srv.Close()

	f := New(Config{URLValidator: allowAll})
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for redirect loop")
	}
}

func TestFetch_ValidatorBlocks(t *testing.T) {
	f := New(Config{}) // default validator rejects loopback
	if _, err := f.Fetch(context.Background(), "http://127.0.0.1:9/x"); err == nil {
		t.Fatal("expected loopback URL to be blocked")
	}
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{URLValidator: allowAll})
	res, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if res == nil || res.StatusCode != 404 {
		t.Errorf("status should be surfaced alongside the error")
	}
}

func TestFetch_MaxBytesCapsSilently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	f := New(Config{MaxBytes: 1024, URLValidator: allowAll})
	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("oversized body must be capped, not rejected: %v", err)
	}
	if len(res.Body) != 1024 {
		t.Errorf("body: got %d bytes, want 1024", len(res.Body))
	}
}
