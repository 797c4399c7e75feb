package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/pradiptarana/fixturesync/internal/infrastructure/repository/memory"
	"github.com/pradiptarana/fixturesync/internal/platform/logging"
	"github.com/pradiptarana/fixturesync/internal/scheduler"
	"github.com/pradiptarana/fixturesync/internal/usecase"
)

const testJobToken = "internal-test-token"

type staticProvider struct {
	fixtureIDs []int64
}

func (p *staticProvider) ListFixtureIDs(ctx context.Context, leagueID int64, season int) ([]int64, usecase.FetchOutcome, error) {
	return p.fixtureIDs, successFetchOutcome("fixtures", len(p.fixtureIDs)), nil
}

func (p *staticProvider) ListFixturesByDate(ctx context.Context, date time.Time) ([]usecase.ExternalFixture, usecase.FetchOutcome, error) {
	return nil, successFetchOutcome("fixtures", 0), nil
}

func (p *staticProvider) FetchFixture(ctx context.Context, externalID int64) (usecase.ExternalFixture, usecase.FetchOutcome, error) {
	return usecase.ExternalFixture{
		ExternalID: externalID,
		LeagueID:   39,
		Season:     2024,
		Date:       time.Date(2024, 8, 17, 15, 0, 0, 0, time.UTC),
		Status:     "FINISHED",
		Payload:    []byte(fmt.Sprintf(`{"fixture":{"id":%d}}`, externalID)),
	}, successFetchOutcome("fixtures", 1), nil
}

func (p *staticProvider) FetchStatistics(ctx context.Context, externalID int64) ([]byte, usecase.FetchOutcome, error) {
	return []byte(`[]`), successFetchOutcome("fixtures/statistics", 1), nil
}

func successFetchOutcome(endpoint string, results int) usecase.FetchOutcome {
	return usecase.FetchOutcome{
		Endpoint:    endpoint,
		Success:     true,
		HTTPStatus:  200,
		ResultCount: results,
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	quotaService := usecase.NewQuotaService(memory.NewQuotaRepository(), usecase.QuotaConfig{DailyLimit: 100}, logging.NewNop())
	cacheRepo := memory.NewFixtureCacheRepository()
	collectionService := usecase.NewCollectionService(
		memory.NewCollectionJobRepository(),
		cacheRepo,
		memory.NewLeagueConfigRepository(memory.SeedLeagueConfigs()),
		quotaService,
		&staticProvider{fixtureIDs: []int64{5001, 5002}},
		nil,
		usecase.CollectionConfig{},
		logging.NewNop(),
	)

	handler := NewHandler(quotaService, collectionService, cacheRepo, nil, nil, nil)
	return NewRouter(handler, nil, nil, testJobToken)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestGetQuotaUsageReturnsStats(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quota/usage", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	if got, _ := data["limit"].(float64); got != 100 {
		t.Fatalf("expected limit=100, got %v", data["limit"])
	}
	if got, _ := data["used"].(float64); got != 0 {
		t.Fatalf("expected used=0, got %v", data["used"])
	}
}

func TestGetQuotaHealthClassifiesFreshLedger(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quota/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	if got, _ := data["level"].(string); got != "HEALTHY" {
		t.Fatalf("expected level=HEALTHY, got %v", data["level"])
	}
}

func TestGetJobNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/jobs/missing-id", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", body)
	}
	if got, _ := errorObj["status"].(string); got != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", errorObj["status"])
	}
}

func TestInternalJobRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/collect-historical", strings.NewReader(`{"league_id":39,"season":2024}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}
}

func TestRunCollectHistoricalJobCompletes(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/collect-historical", strings.NewReader(`{"league_id":39,"season":2024}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	if got, _ := data["status"].(string); got != "COMPLETED" {
		t.Fatalf("expected status=COMPLETED, got %v", data["status"])
	}
	counters, ok := data["counters"].(map[string]any)
	if !ok {
		t.Fatalf("expected counters object, got %v", data)
	}
	if got, _ := counters["fixtures_collected"].(float64); got != 2 {
		t.Fatalf("expected fixtures_collected=2, got %v", counters["fixtures_collected"])
	}
}

func TestTriggerSchedulerTaskWithoutScheduler(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/scheduler/tasks/daily-incremental/trigger", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 without a scheduler, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTriggerSchedulerTaskUnknownTask(t *testing.T) {
	sched := scheduler.New(logging.NewNop())
	if err := sched.Register(scheduler.Task{
		Name:     "daily-incremental",
		Interval: time.Hour,
		Run:      func(context.Context) error { return nil },
	}); err != nil {
		t.Fatalf("register task: %v", err)
	}
	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("start scheduler: %v", err)
	}
	t.Cleanup(sched.Stop)

	handler := NewHandler(nil, nil, nil, sched, nil, nil)
	router := NewRouter(handler, nil, nil, testJobToken)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/scheduler/tasks/no-such-task/trigger", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown task, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/internal/scheduler/tasks/daily-incremental/trigger", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202 for known task, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRunCollectHistoricalJobValidatesPayload(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/collect-historical", strings.NewReader(`{"league_id":0,"season":2024}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
