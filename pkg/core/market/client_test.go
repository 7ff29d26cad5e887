package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetEOD(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/eod/GSIT.US" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_token") != "test-key" {
			t.Errorf("missing api token, got %q", r.URL.Query().Get("api_token"))
		}
		if r.URL.Query().Get("fmt") != "json" {
			t.Errorf("expected fmt=json, got %q", r.URL.Query().Get("fmt"))
		}
		if r.URL.Query().Get("from") != "2024-01-01" {
			t.Errorf("unexpected from %q", r.URL.Query().Get("from"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date":"2024-01-02","open":2.1,"high":2.3,"low":2.0,"close":2.2,"adjusted_close":2.2,"volume":150000},
			{"date":"2024-01-03","open":2.2,"high":2.4,"low":2.1,"close":2.35,"adjusted_close":2.35,"volume":98000}
		]`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	eod, err := client.GetEOD(context.Background(), "GSIT.US", WithDateRange(from, to))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eod) != 2 {
		t.Fatalf("expected 2 records, got %d", len(eod))
	}
	if eod[0].Date.Format("2006-01-02") != "2024-01-02" {
		t.Errorf("expected parsed date 2024-01-02, got %v", eod[0].Date)
	}
	if eod[1].Close != 2.35 {
		t.Errorf("expected close 2.35, got %.2f", eod[1].Close)
	}
}

func TestGetEODAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid API token", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL))
	_, err := client.GetEOD(context.Background(), "GSIT.US")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", apiErr.StatusCode)
	}
}

func TestFetchPriceHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"date":"2024-01-02","open":2.1,"high":2.3,"low":2.0,"close":2.2,"adjusted_close":2.2,"volume":150000}]`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	bars, err := client.FetchPriceHistory(context.Background(), "GSIT", "GSI Technology", "US",
		time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(bars))
	}
	if bars[0].Ticker != "GSIT" || bars[0].Volume != 150000 {
		t.Errorf("unexpected bar %+v", bars[0])
	}
}
