package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/pradiptarana/fixturesync/internal/domain/quota"
	"github.com/pradiptarana/fixturesync/internal/infrastructure/repository/memory"
	"github.com/pradiptarana/fixturesync/internal/platform/logging"
)

func newQuotaServiceForTest(t *testing.T, dailyLimit int) (*QuotaService, *memory.QuotaRepository) {
	t.Helper()

	repo := memory.NewQuotaRepository()
	svc := NewQuotaService(repo, QuotaConfig{DailyLimit: dailyLimit}, logging.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func recordSuccess(t *testing.T, svc *QuotaService, endpoint string) quota.Ledger {
	t.Helper()

	ledger, err := svc.RecordRequest(context.Background(), RecordRequestInput{
		Endpoint:   endpoint,
		Success:    true,
		HTTPStatus: 200,
	})
	if err != nil {
		t.Fatalf("RecordRequest(%s): %v", endpoint, err)
	}
	return ledger
}

func TestQuotaServiceInvariantAcrossMixedOutcomes(t *testing.T) {
	t.Parallel()

	svc, repo := newQuotaServiceForTest(t, 5)
	ctx := context.Background()

	recordSuccess(t, svc, "fixtures")
	recordSuccess(t, svc, "fixtures/statistics")

	// Failed calls are logged but never consume budget.
	if _, err := svc.RecordRequest(ctx, RecordRequestInput{
		Endpoint:     "standings",
		Success:      false,
		HTTPStatus:   500,
		ErrorMessage: "upstream unavailable",
	}); err != nil {
		t.Fatalf("RecordRequest failed call: %v", err)
	}

	ledger := recordSuccess(t, svc, "standings")

	if ledger.RequestsUsed != 3 {
		t.Fatalf("RequestsUsed = %d, want 3", ledger.RequestsUsed)
	}
	if got := ledger.RequestsUsed + ledger.RequestsRemaining; got != ledger.DailyLimit {
		t.Fatalf("used+remaining = %d, want %d", got, ledger.DailyLimit)
	}
	if records := repo.Records(); len(records) != 4 {
		t.Fatalf("request log rows = %d, want 4", len(records))
	}

	stats, err := svc.UsageStats(ctx)
	if err != nil {
		t.Fatalf("UsageStats: %v", err)
	}
	if stats.Breakdown[quota.CategoryFixtures] != 1 || stats.Breakdown[quota.CategoryStatistics] != 1 || stats.Breakdown[quota.CategoryStandings] != 1 {
		t.Fatalf("unexpected breakdown: %+v", stats.Breakdown)
	}
}

func TestQuotaServiceCanMakeRequestIsPure(t *testing.T) {
	t.Parallel()

	svc, repo := newQuotaServiceForTest(t, 2)
	ctx := context.Background()

	ok, err := svc.CanMakeRequest(ctx, 3)
	if err != nil {
		t.Fatalf("CanMakeRequest: %v", err)
	}
	if ok {
		t.Fatal("CanMakeRequest(3) with limit 2 should be false")
	}

	ok, err = svc.CanMakeRequest(ctx, 2)
	if err != nil {
		t.Fatalf("CanMakeRequest: %v", err)
	}
	if !ok {
		t.Fatal("CanMakeRequest(2) with limit 2 should be true")
	}

	if records := repo.Records(); len(records) != 0 {
		t.Fatalf("pure check wrote %d log rows", len(records))
	}
	ledger, err := svc.TodayLedger(ctx)
	if err != nil {
		t.Fatalf("TodayLedger: %v", err)
	}
	if ledger.RequestsUsed != 0 {
		t.Fatalf("pure check consumed budget: used = %d", ledger.RequestsUsed)
	}
}

func TestQuotaServiceAdmitReservesLastUnit(t *testing.T) {
	t.Parallel()

	svc, _ := newQuotaServiceForTest(t, 1)
	ctx := context.Background()

	first, err := svc.Admit(ctx)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !first {
		t.Fatal("first Admit should pass with one unit left")
	}

	// The unit is reserved but not yet recorded; a concurrent caller must
	// not be admitted against it.
	second, err := svc.Admit(ctx)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if second {
		t.Fatal("second Admit split the last unit of quota")
	}

	ledger := recordSuccess(t, svc, "fixtures")
	if ledger.RequestsRemaining != 0 {
		t.Fatalf("RequestsRemaining = %d, want 0", ledger.RequestsRemaining)
	}

	third, err := svc.Admit(ctx)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if third {
		t.Fatal("Admit should fail once the budget is spent")
	}
}

func TestDelayForUsage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		usage float64
		want  time.Duration
	}{
		{usage: 95, want: 2 * time.Second},
		{usage: 90, want: time.Second},
		{usage: 85, want: time.Second},
		{usage: 80, want: 500 * time.Millisecond},
		{usage: 65, want: 500 * time.Millisecond},
		{usage: 60, want: 300 * time.Millisecond},
		{usage: 10, want: 300 * time.Millisecond},
		{usage: 0, want: 300 * time.Millisecond},
	}

	for _, tc := range cases {
		if got := delayForUsage(tc.usage); got != tc.want {
			t.Errorf("delayForUsage(%.0f) = %s, want %s", tc.usage, got, tc.want)
		}
	}
}

func TestOptimalBatchSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		target    int
		remaining int
		want      int
	}{
		{name: "reserve shrinks large target", target: 50, remaining: 15, want: 13},
		{name: "small target untouched", target: 5, remaining: 100, want: 5},
		{name: "nothing remaining", target: 10, remaining: 0, want: 0},
		{name: "single unit reserved entirely", target: 10, remaining: 1, want: 0},
		{name: "negative target", target: -3, remaining: 50, want: 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := optimalBatchSize(tc.target, tc.remaining); got != tc.want {
				t.Fatalf("optimalBatchSize(%d, %d) = %d, want %d", tc.target, tc.remaining, got, tc.want)
			}
		})
	}
}

func TestQuotaServiceShouldThrottle(t *testing.T) {
	t.Parallel()

	svc, _ := newQuotaServiceForTest(t, 10)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		recordSuccess(t, svc, "fixtures")
	}
	throttle, err := svc.ShouldThrottle(ctx)
	if err != nil {
		t.Fatalf("ShouldThrottle: %v", err)
	}
	if throttle {
		t.Fatal("80% usage should not throttle yet")
	}

	recordSuccess(t, svc, "fixtures")
	throttle, err = svc.ShouldThrottle(ctx)
	if err != nil {
		t.Fatalf("ShouldThrottle: %v", err)
	}
	if !throttle {
		t.Fatal("90% usage should throttle")
	}
}
