package stadium

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

const listing = `{
  "data": [
    {"id": 1, "attributes": {"event": [
      {"title": "Springboks v All Blacks", "description": "Test match", "externallink": "https://tickets.example.com/rugby",
       "daterange": [{"start": "2026-09-05T15:00:00.000Z", "end": "2026-09-05T17:00:00.000Z"}]},
      {"title": "Stadium Tour", "description": "", "externallink": null,
       "daterange": [{"start": "2026-09-10T08:00:00.000Z", "end": null}, {"start": "2026-09-11T08:00:00.000Z"}]}
    ]}},
    {"id": 2, "attributes": {"event": [
      {"title": "Concert", "description": "Live", "daterange": []}
    ]}}
  ],
  "meta": {"pagination": {"page": 1}}
}`

func TestClient_Events(t *testing.T) {
	var gotQuery url.Values
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listing))
	}))
	defer server.Close()

	c := NewClient(server.URL+"/api/events", "TestAgent/1.0", time.Second)
	since := time.Date(2025, time.September, 21, 14, 39, 46, 411000000, time.UTC)

	records, err := c.Events(context.Background(), since)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Events() returned %d records, want 3", len(records))
	}
	if records[0].Title != "Springboks v All Blacks" || records[2].Title != "Concert" {
		t.Errorf("records out of order: %q, %q", records[0].Title, records[2].Title)
	}
	if records[0].ExternalLink == nil || *records[0].ExternalLink != "https://tickets.example.com/rugby" {
		t.Errorf("ExternalLink = %v, want ticket link", records[0].ExternalLink)
	}
	if records[1].ExternalLink != nil {
		t.Errorf("null externallink should decode to nil, got %q", *records[1].ExternalLink)
	}
	if len(records[1].DateRanges) != 2 || records[1].DateRanges[0].End != nil {
		t.Errorf("DateRanges = %+v, want two ranges with a nil first end", records[1].DateRanges)
	}

	wantQuery := map[string]string{
		"filters[event][daterange][start][$gte]": "2025-09-21T14:39:46.411Z",
		"populate[0]":                            "event.image",
		"populate[1]":                            "event.daterange",
		"populate[2]":                            "thumbnail",
	}
	for key, want := range wantQuery {
		if got := gotQuery.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}
	if gotUA != "TestAgent/1.0" {
		t.Errorf("User-Agent = %q, want TestAgent/1.0", gotUA)
	}
}

func TestClient_EventsErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantStatus bool
	}{
		{name: "server error", statusCode: http.StatusInternalServerError, wantStatus: true},
		{name: "forbidden", statusCode: http.StatusForbidden, wantStatus: true},
		{name: "malformed json", statusCode: http.StatusOK, body: `{"data": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, "", time.Second).Events(context.Background(), time.Now())
			if err == nil {
				t.Fatal("Events() expected error, got nil")
			}
			if got := errors.Is(err, ErrStatus); got != tt.wantStatus {
				t.Errorf("errors.Is(err, ErrStatus) = %v, want %v (err: %v)", got, tt.wantStatus, err)
			}
		})
	}
}

func TestClient_EmptyListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	records, err := NewClient(server.URL, "", 0).Events(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Events() returned %d records, want 0", len(records))
	}
}

func TestClient_QueryURLKeepsExistingParams(t *testing.T) {
	c := NewClient("https://example.com/api/events?locale=en", "", 0)

	raw, err := c.QueryURL(time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("SAST", 2*3600)))
	if err != nil {
		t.Fatalf("QueryURL() error = %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}

	if got := u.Query().Get("locale"); got != "en" {
		t.Errorf("locale = %q, want en", got)
	}
	if got := u.Query().Get("filters[event][daterange][start][$gte]"); got != "2026-01-02T01:04:05.000Z" {
		t.Errorf("since filter = %q, want 2026-01-02T01:04:05.000Z", got)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "", 0)
	if c.baseURL != DefaultAPIURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultAPIURL)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}
}
