package apifootball

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pradiptarana/fixturesync/internal/platform/logging"
)

const fixturesByDateBody = `{
	"get": "fixtures",
	"errors": [],
	"results": 2,
	"response": [
		{
			"fixture": {"id": 1001, "date": "2024-08-17T15:00:00+00:00", "status": {"short": "FT"}},
			"league": {"id": 39, "season": 2024}
		},
		{
			"fixture": {"id": 1002, "date": "2024-08-17T17:30:00+00:00", "status": {"short": "NS"}},
			"league": {"id": 39, "season": 2024}
		}
	]
}`

func newTestClient(t *testing.T, handler http.Handler, maxRetries int) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Token:      "secret-token",
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		Logger:     logging.NewNop(),
	})
	return client, server
}

func TestListFixturesByDateParsesEnvelope(t *testing.T) {
	t.Parallel()

	var gotKey atomic.Value
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get("x-apisports-key"))
		if r.URL.Query().Get("date") != "2024-08-17" {
			t.Errorf("date param = %q", r.URL.Query().Get("date"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixturesByDateBody))
	}), 0)

	fixtures, outcome, err := client.ListFixturesByDate(context.Background(), time.Date(2024, 8, 17, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListFixturesByDate: %v", err)
	}

	if gotKey.Load() != "secret-token" {
		t.Fatalf("auth header = %v", gotKey.Load())
	}
	if !outcome.Success || outcome.HTTPStatus != 200 || outcome.ResultCount != 2 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Endpoint != "fixtures" {
		t.Fatalf("endpoint = %q, want fixtures", outcome.Endpoint)
	}
	if len(fixtures) != 2 {
		t.Fatalf("fixtures = %d, want 2", len(fixtures))
	}
	if fixtures[0].ExternalID != 1001 || fixtures[0].Status != "FINISHED" {
		t.Fatalf("unexpected first fixture: %+v", fixtures[0])
	}
	if fixtures[1].Status != "SCHEDULED" {
		t.Fatalf("second fixture status = %q, want SCHEDULED", fixtures[1].Status)
	}
	if len(fixtures[0].Payload) == 0 {
		t.Fatal("fixture payload should carry the raw provider item")
	}
	if fixtures[0].Date.IsZero() {
		t.Fatal("fixture date should be parsed")
	}
}

func TestDoJSONRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixturesByDateBody))
	}), 1)

	ids, outcome, err := client.ListFixtureIDs(context.Background(), 39, 2024)
	if err != nil {
		t.Fatalf("ListFixtureIDs: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
	if len(ids) != 2 || ids[0] != 1001 || ids[1] != 1002 {
		t.Fatalf("ids = %v", ids)
	}
	if !outcome.Success {
		t.Fatalf("outcome not successful: %+v", outcome)
	}
}

func TestDoJSONDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}), 3)

	_, outcome, err := client.ListFixtureIDs(context.Background(), 39, 2024)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on 4xx)", calls.Load())
	}
	if outcome.Success {
		t.Fatal("outcome should not be successful")
	}
	if outcome.HTTPStatus != http.StatusForbidden {
		t.Fatalf("HTTPStatus = %d, want 403", outcome.HTTPStatus)
	}
}

func TestDoJSONSurfacesProviderLevelErrors(t *testing.T) {
	t.Parallel()

	body := `{"get":"fixtures","errors":{"token":"Your key is not valid."},"results":0,"response":[]}`
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}), 0)

	_, outcome, err := client.ListFixtureIDs(context.Background(), 39, 2024)
	if err == nil {
		t.Fatal("expected provider-level error")
	}
	if outcome.Success {
		t.Fatal("outcome should not be successful when the provider reports errors")
	}
	if outcome.ErrorMessage == "" {
		t.Fatal("outcome should carry the provider error message")
	}
}

func TestMapFixtureStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"NS":   "SCHEDULED",
		"TBD":  "SCHEDULED",
		"1H":   "LIVE",
		"HT":   "LIVE",
		"FT":   "FINISHED",
		"AET":  "FINISHED",
		"PEN":  "FINISHED",
		"PST":  "POSTPONED",
		"CANC": "CANCELLED",
		"":     "SCHEDULED",
		"XYZ":  "XYZ",
	}
	for short, want := range cases {
		if got := mapFixtureStatus(short); got != want {
			t.Errorf("mapFixtureStatus(%q) = %q, want %q", short, got, want)
		}
	}
}

func TestSanitizeRedactsToken(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Token: "secret-token", Logger: logging.NewNop()})
	out := client.sanitize("dial failed for request with secret-token and apikey=secret-token")
	if out != "dial failed for request with REDACTED and apikey=REDACTED" {
		t.Fatalf("sanitize = %q", out)
	}
}
