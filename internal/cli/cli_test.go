package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/capetown-events/internal/event"
)

const stadiumListing = `{"data": [{"attributes": {"event": [
  {"title": "Late Concert", "description": "Live", "externallink": "https://tickets.example.com/concert",
   "daterange": [{"start": "2026-11-20T17:00:00.000Z", "end": "2026-11-20T21:00:00.000Z"}]},
  {"title": "  ", "description": "", "daterange": [{"start": "2026-11-01T08:00:00.000Z"}]}
]}}]}`

// writeConfig writes a config file pointing both pipelines at server
func writeConfig(t *testing.T, serverURL string) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "config.yaml")

	content := fmt.Sprintf(`
timezone: UTC
calendar:
  api_url: %[1]s/api/events
  output: %[2]s/stadium.ics
scraper:
  output: %[2]s/events.json
  sites:
    - name: Local Race
      url: %[1]s/race
      patterns:
        - {shape: day_range, month: May}
    - name: Broken Site
      url: %[1]s/broken
`, serverURL, dir)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path, dir
}

func newServer(year int) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(stadiumListing))
	})
	mux.HandleFunc("/race", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><h1>Local Race</h1><p>Race weekend 9 - 10 May %d</p></body></html>`, year)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	return httptest.NewServer(mux)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestScrapeCommand(t *testing.T) {
	year := time.Now().Year()
	server := newServer(year)
	defer server.Close()

	cfgPath, dir := writeConfig(t, server.URL)
	metricsPath := filepath.Join(dir, "ct_events.prom")

	out, err := execute(t, "scrape", "--config", cfgPath, "--format", "json", "--metrics-file", metricsPath, "--log-level", "error")
	if err != nil {
		t.Fatalf("scrape error = %v", err)
	}

	var report event.RunReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, out)
	}
	if len(report.Events) != 1 {
		t.Fatalf("got %d events, want 1 (broken site skipped)", len(report.Events))
	}
	want := fmt.Sprintf("%d-05-09", year)
	if report.Events[0].StartDate != want {
		t.Errorf("StartDate = %q, want %q", report.Events[0].StartDate, want)
	}

	saved, err := os.ReadFile(filepath.Join(dir, "events.json"))
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !strings.Contains(string(saved), `"name": "Local Race"`) {
		t.Errorf("saved report missing site:\n%s", saved)
	}

	prom, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(prom), `ct_events_site_results_total{result="fetch_error",site="Broken Site"} 1`) {
		t.Errorf("metrics missing fetch error:\n%s", prom)
	}
}

func TestCalendarCommand(t *testing.T) {
	server := newServer(time.Now().Year())
	defer server.Close()

	cfgPath, dir := writeConfig(t, server.URL)

	out, err := execute(t, "calendar", "--config", cfgPath, "--since", "2026-01-01", "--log-level", "error")
	if err != nil {
		t.Fatalf("calendar error = %v", err)
	}
	if !strings.Contains(out, "Wrote 2 events to") {
		t.Errorf("unexpected summary:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stadium.ics"))
	if err != nil {
		t.Fatalf("calendar file not written: %v", err)
	}
	ics := string(data)

	untitled := strings.Index(ics, "SUMMARY:No title")
	concert := strings.Index(ics, "SUMMARY:Late Concert")
	if untitled < 0 || concert < 0 {
		t.Fatalf("calendar missing events:\n%s", ics)
	}
	if untitled > concert {
		t.Error("events should be sorted by start")
	}
	if !strings.Contains(ics, "DTEND:20261101T235959Z") {
		t.Errorf("missing end should default to end of day:\n%s", ics)
	}
	if !strings.Contains(ics, "URL:https://tickets.example.com/concert") {
		t.Error("external link should become the event URL")
	}
}

func TestCalendarCommand_WithFirstThursdays(t *testing.T) {
	server := newServer(time.Now().Year())
	defer server.Close()

	cfgPath, dir := writeConfig(t, server.URL)

	if _, err := execute(t, "calendar", "--config", cfgPath, "--first-thursdays", "--log-level", "error"); err != nil {
		t.Fatalf("calendar error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stadium.ics"))
	if err != nil {
		t.Fatalf("calendar file not written: %v", err)
	}
	if got := strings.Count(string(data), "BEGIN:VEVENT"); got != 14 {
		t.Errorf("VEVENT count = %d, want 14 (2 stadium + 12 generated)", got)
	}
}

func TestCalendarCommand_InvalidTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"attributes": {"event": [{"title": "Bad", "daterange": [{"start": "next Tuesday"}]}]}}]}`))
	}))
	defer server.Close()

	cfgPath, dir := writeConfig(t, server.URL)

	if _, err := execute(t, "calendar", "--config", cfgPath, "--log-level", "error"); err == nil {
		t.Fatal("calendar should fail on an invalid timestamp")
	}
	if _, err := os.Stat(filepath.Join(dir, "stadium.ics")); !os.IsNotExist(err) {
		t.Error("no calendar should be written after a normalization failure")
	}
}

func TestFirstThursdaysCommand(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "ft.ics")

	out, err := execute(t, "first-thursdays", "--year", "2025", "--year", "2026", "--output", output, "--log-level", "error")
	if err != nil {
		t.Fatalf("first-thursdays error = %v", err)
	}
	if !strings.Contains(out, "Wrote 24 events") {
		t.Errorf("unexpected summary:\n%s", out)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("calendar not written: %v", err)
	}
	// 2 October 2025 is the first Thursday; 16:00 SAST is 14:00 UTC
	if !strings.Contains(string(data), "DTSTART:20251002T140000Z") {
		t.Errorf("missing October 2025 first Thursday:\n%s", data)
	}
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad format", args: []string{"scrape", "--format", "xml"}},
		{name: "bad sort", args: []string{"scrape", "--sort", "random"}},
		{name: "bad log level", args: []string{"scrape", "--log-level", "loud"}},
		{name: "missing config", args: []string{"scrape", "--config", "/nonexistent/config.yaml"}},
		{name: "bad cron", args: []string{"schedule", "--cron", "whenever", "--log-level", "error"}},
		{name: "bad year", args: []string{"first-thursdays", "--year", "0", "--output", "/dev/null"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("%v: expected error, got nil", tt.args)
			}
		})
	}
}

func TestCalendarCommand_Filters(t *testing.T) {
	server := newServer(time.Now().Year())
	defer server.Close()

	cfgPath, _ := writeConfig(t, server.URL)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "match", args: []string{"--match", "concert"}, want: "Wrote 1 events"},
		{name: "until", args: []string{"--until", "2026-11-01"}, want: "Wrote 1 events"},
		{name: "until excludes all", args: []string{"--until", "2026-10-01"}, want: "Wrote 0 events"},
		{name: "from", args: []string{"--from", "2026-11-02"}, want: "Wrote 1 events"},
		{name: "from and until", args: []string{"--from", "2026-11-02", "--until", "2026-11-19"}, want: "Wrote 0 events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"calendar", "--config", cfgPath, "--log-level", "error"}, tt.args...)
			out, err := execute(t, args...)
			if err != nil {
				t.Fatalf("calendar error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestScrapeCommand_SiteSelection(t *testing.T) {
	server := newServer(time.Now().Year())
	defer server.Close()

	cfgPath, _ := writeConfig(t, server.URL)

	out, err := execute(t, "scrape", "--config", cfgPath, "--site", "local", "--log-level", "error")
	if err != nil {
		t.Fatalf("scrape error = %v", err)
	}
	if !strings.Contains(out, "Total: 1 events, 1 dated") {
		t.Errorf("unexpected summary:\n%s", out)
	}

	if _, err := execute(t, "scrape", "--config", cfgPath, "--site", "nowhere", "--log-level", "error"); err == nil {
		t.Error("scrape with no matching site should fail")
	}
}

func TestReportCommand(t *testing.T) {
	server := newServer(time.Now().Year())
	defer server.Close()

	cfgPath, dir := writeConfig(t, server.URL)

	if _, err := execute(t, "report", "--config", cfgPath, "--log-level", "error"); err == nil {
		t.Error("report before any scrape should fail")
	}

	if _, err := execute(t, "scrape", "--config", cfgPath, "--log-level", "error"); err != nil {
		t.Fatalf("scrape error = %v", err)
	}

	out, err := execute(t, "report", "--config", cfgPath, "--log-level", "error")
	if err != nil {
		t.Fatalf("report error = %v", err)
	}
	if !strings.Contains(out, "Local Race") || !strings.Contains(out, "Total: 1 events, 1 dated") {
		t.Errorf("unexpected report:\n%s", out)
	}

	out, err = execute(t, "report", "--config", cfgPath, "--input", filepath.Join(dir, "events.json"), "--format", "json")
	if err != nil {
		t.Fatalf("report --format json error = %v", err)
	}
	var report event.RunReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, out)
	}
	if len(report.Events) != 1 || report.Events[0].Name != "Local Race" {
		t.Errorf("report events = %+v, want Local Race", report.Events)
	}
}
