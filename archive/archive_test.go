package archive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testService(t *testing.T, availURL, cdxURL string) *Service {
	t.Helper()
	return New(&Config{
		AvailabilityURL: availURL,
		CDXURL:          cdxURL,
		URLValidator:    func(string) error { return nil }, // httptest runs on loopback
	}, nil)
}

func TestLatestSnapshot_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("timestamp") != "" {
			t.Error("latest lookup must not send a timestamp param")
		}
		w.Write([]byte(`{"archived_snapshots":{"closest":{
			"available": true,
			"url": "http://web.archive.org/web/20230101120000/https://example.com/",
			"timestamp": "20230101120000",
			"status": "200"
		}}}`))
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	res, err := svc.LatestSnapshot(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !res.Available {
		t.Fatal("expected available")
	}
	if res.OriginalURL != "example.com" {
		t.Errorf("original_url: got %q", res.OriginalURL)
	}
	if res.SnapshotURL != "http://web.archive.org/web/20230101120000/https://example.com/" {
		t.Errorf("snapshot_url: got %q", res.SnapshotURL)
	}
	if res.FormattedTime != "2023-01-01 12:00:00 UTC" {
		t.Errorf("formatted_time: got %q", res.FormattedTime)
	}
	if res.Status != "200" {
		t.Errorf("status: got %q", res.Status)
	}
}

func TestLatestSnapshot_NotArchived(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"archived_snapshots":{"closest":{"available":false,"url":"","timestamp":"","status":""}}}`))
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	res, err := svc.LatestSnapshot(context.Background(), "never-archived.example")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if res.Available {
		t.Fatal("expected available:false")
	}
	if res.SnapshotURL != "" {
		t.Errorf("snapshot_url must be empty, got %q", res.SnapshotURL)
	}
	if res.Message == "" {
		t.Error("expected a message")
	}
	if res.URL != "never-archived.example" {
		t.Errorf("url: got %q", res.URL)
	}
}

func TestLatestSnapshot_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	if _, err := svc.LatestSnapshot(context.Background(), "example.com"); err == nil {
		t.Fatal("expected error for upstream 502")
	}
}

func TestSnapshotAtDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("timestamp"); got != "20200615" {
			t.Errorf("timestamp param: got %q", got)
		}
		w.Write([]byte(`{"archived_snapshots":{"closest":{
			"available": true,
			"url": "http://web.archive.org/web/20200614080000/https://example.com/",
			"timestamp": "20200614080000",
			"status": "200"
		}}}`))
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	res, err := svc.SnapshotAtDate(context.Background(), "example.com", "20200615")
	if err != nil {
		t.Fatalf("at date: %v", err)
	}
	if !res.Available {
		t.Fatal("expected available")
	}
	if res.RequestedTimestamp != "20200615" {
		t.Errorf("requested_timestamp: got %q", res.RequestedTimestamp)
	}
	if res.ActualTimestamp != "20200614080000" {
		t.Errorf("actual_timestamp: got %q", res.ActualTimestamp)
	}
	if res.ActualFormattedTime != "2020-06-14 08:00:00 UTC" {
		t.Errorf("actual_formatted_time: got %q", res.ActualFormattedTime)
	}
}

func TestSnapshotAtDate_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"archived_snapshots":{}}`))
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	res, err := svc.SnapshotAtDate(context.Background(), "example.com", "19960101")
	if err != nil {
		t.Fatalf("at date: %v", err)
	}
	if res.Available {
		t.Fatal("expected available:false")
	}
	if res.RequestedTimestamp != "19960101" {
		t.Errorf("requested_timestamp echoed: got %q", res.RequestedTimestamp)
	}
}

func TestSearchSnapshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			["timestamp","original","statuscode","mimetype","length"],
			["20230101120000","https://example.com/","200","text/html","5120"]
		]`))
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	res, err := svc.SearchSnapshots(context.Background(), SearchParams{URL: "example.com"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.TotalFound != 1 {
		t.Fatalf("total_found: got %d", res.TotalFound)
	}
	snap := res.Snapshots[0]
	if snap.SnapshotURL != "https://web.archive.org/web/20230101120000/https://example.com/" {
		t.Errorf("snapshot_url: got %q", snap.SnapshotURL)
	}
	if snap.StatusCode != "200" {
		t.Errorf("status_code: got %q", snap.StatusCode)
	}
	if snap.SizeBytes != "5120" {
		t.Errorf("size_bytes: got %q", snap.SizeBytes)
	}
	if snap.FormattedTime != "2023-01-01 12:00:00 UTC" {
		t.Errorf("formatted_time: got %q", snap.FormattedTime)
	}
}

func TestSearchSnapshots_HeaderOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[["timestamp","original","statuscode","mimetype","length"]]`))
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	res, err := svc.SearchSnapshots(context.Background(), SearchParams{URL: "example.com"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.TotalFound != 0 {
		t.Errorf("total_found: got %d, want 0", res.TotalFound)
	}
	if res.Snapshots == nil {
		t.Error("snapshots must be an empty list, not null")
	}
	if len(res.Snapshots) != 0 {
		t.Errorf("snapshots: got %d entries", len(res.Snapshots))
	}
}

func TestCheckAvailability_Archived(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fastLatest") == "true" {
			w.Write([]byte(`[["timestamp","statuscode"],["20240301000000","200"]]`))
			return
		}
		w.Write([]byte(`[["timestamp","statuscode"],["19990115000000","200"]]`))
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	res, err := svc.CheckAvailability(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !res.IsArchived {
		t.Fatal("expected is_archived")
	}
	if res.FirstSnapshot == nil || res.FirstSnapshot.Timestamp != "19990115000000" {
		t.Errorf("first_snapshot: got %+v", res.FirstSnapshot)
	}
	if res.LatestSnapshot == nil || res.LatestSnapshot.Timestamp != "20240301000000" {
		t.Errorf("latest_snapshot: got %+v", res.LatestSnapshot)
	}
	if res.WaybackURL != "https://web.archive.org/web/*/example.com" {
		t.Errorf("wayback_url: got %q", res.WaybackURL)
	}
}

func TestCheckAvailability_NotArchived(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	res, err := svc.CheckAvailability(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.IsArchived {
		t.Fatal("expected is_archived:false")
	}
	if res.FirstSnapshot != nil || res.LatestSnapshot != nil {
		t.Error("expected null snapshot refs")
	}
}

func TestCheckAvailability_EarliestLookupDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fastLatest") == "true" {
			w.Write([]byte(`[["timestamp","statuscode"],["20240301000000","200"]]`))
			return
		}
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	res, err := svc.CheckAvailability(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("check should not fail when the earliest lookup errors: %v", err)
	}
	if res.IsArchived {
		t.Fatal("is_archived must be false when the earliest read fails")
	}
	if res.FirstSnapshot != nil {
		t.Error("first_snapshot should degrade to null")
	}
	if res.LatestSnapshot == nil || res.LatestSnapshot.Timestamp != "20240301000000" {
		t.Errorf("latest read should still be reported: got %+v", res.LatestSnapshot)
	}
}

func TestCheckAvailability_LatestLookupDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fastLatest") == "true" {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[["timestamp","statuscode"],["19990115000000","200"]]`))
	}))
	defer srv.Close()

	svc := testService(t, srv.URL, srv.URL)
	res, err := svc.CheckAvailability(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("check should not fail when only the latest lookup errors: %v", err)
	}
	if !res.IsArchived {
		t.Fatal("expected is_archived from first lookup")
	}
	if res.LatestSnapshot != nil {
		t.Error("latest_snapshot should degrade to null")
	}
}
