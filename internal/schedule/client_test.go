package schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"ridematcher/internal/config"
	"ridematcher/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("test", "", "")
}

func newTestClient(baseURL string) *Client {
	return NewClient(&config.ScheduleConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		TimeoutSeconds: 5,
		ResultTimezone: "Europe/Moscow",
		SearchLimit:    300,
	}, testLogger())
}

const searchPayload = `{
	"segments": [
		{
			"thread": {"uid": "7001_MSK", "number": "7001", "title": "Подольск - Москва"},
			"departure": "2026-03-10T08:00:00+03:00",
			"arrival": "2026-03-10T08:40:00+03:00",
			"from": {"code": "s100", "title": "Подольск"},
			"to": {"code": "s200", "title": "Москва"}
		},
		{
			"thread": {"uid": "7003_MSK", "number": "7003", "title": "Подольск - Москва"},
			"departure": "2026-03-10T08:20:00+03:00",
			"arrival": "2026-03-10T09:05:00+03:00",
			"from": {"code": "s100", "title": "Подольск"},
			"to": {"code": "s200", "title": "Москва"}
		}
	]
}`

func TestListRuns(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchPayload))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	runs, err := client.ListRuns(context.Background(), "s100", "s200", "2026-03-10")
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}

	if gotPath != "/search/" {
		t.Errorf("request path = %q, want /search/", gotPath)
	}
	wantQuery := map[string]string{
		"apikey":          "test-key",
		"from":            "s100",
		"to":              "s200",
		"date":            "2026-03-10",
		"result_timezone": "Europe/Moscow",
		"limit":           "300",
	}
	for key, want := range wantQuery {
		if got := gotQuery.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}

	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	first := runs[0]
	if first.ThreadID != "7001_MSK" {
		t.Errorf("ThreadID = %q, want 7001_MSK", first.ThreadID)
	}
	wantDeparture := time.Date(2026, 3, 10, 8, 0, 0, 0, time.FixedZone("", 3*60*60))
	if !first.Departure.Equal(wantDeparture) {
		t.Errorf("Departure = %v, want %v", first.Departure, wantDeparture)
	}
	if first.FromID != "s100" || first.ToID != "s200" {
		t.Errorf("stops = %s -> %s, want s100 -> s200", first.FromID, first.ToID)
	}
	if first.FromLabel != "Подольск" || first.ToLabel != "Москва" {
		t.Errorf("labels = %s -> %s", first.FromLabel, first.ToLabel)
	}
}

func TestListRunsSkipsIncompleteSegments(t *testing.T) {
	payload := `{
		"segments": [
			{"departure": "2026-03-10T08:00:00+03:00", "arrival": "2026-03-10T08:40:00+03:00"},
			{
				"thread": {"uid": "7005_MSK"},
				"arrival": "2026-03-10T09:05:00+03:00",
				"from": {"code": "s100"}, "to": {"code": "s200"}
			},
			{
				"thread": {"uid": "7007_MSK"},
				"departure": "not-a-timestamp",
				"arrival": "2026-03-10T09:30:00+03:00",
				"from": {"code": "s100"}, "to": {"code": "s200"}
			},
			{
				"thread": {"uid": "7009_MSK"},
				"departure": "2026-03-10T09:00:00+03:00",
				"arrival": "2026-03-10T09:40:00+03:00",
				"from": {"code": "s100"}, "to": {"code": "s200"}
			}
		]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	runs, err := newTestClient(server.URL).ListRuns(context.Background(), "s100", "s200", "2026-03-10")
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ThreadID != "7009_MSK" {
		t.Errorf("runs = %+v, want only the complete segment 7009_MSK", runs)
	}
}

func TestListRunsEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"segments": []}`))
	}))
	defer server.Close()

	runs, err := newTestClient(server.URL).ListRuns(context.Background(), "s100", "s200", "2026-03-10")
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("runs = %+v, want empty", runs)
	}
}

func TestListRunsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "apikey is invalid", http.StatusForbidden)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).ListRuns(context.Background(), "s100", "s200", "2026-03-10"); err == nil {
		t.Fatal("ListRuns() expected error for non-200 response")
	}
}

func TestListRunsBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).ListRuns(context.Background(), "s100", "s200", "2026-03-10"); err == nil {
		t.Fatal("ListRuns() expected decode error")
	}
}
