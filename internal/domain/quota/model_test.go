package quota

import (
	"testing"
	"time"
)

func TestLedger_ConsumeKeepsInvariant(t *testing.T) {
	t.Parallel()

	ledger := NewLedger("2026-08-31", 5)
	now := time.Now()
	for i := 0; i < 8; i++ {
		ledger.Consume(CategoryFixtures, now)
		if ledger.RequestsUsed+ledger.RequestsRemaining < ledger.DailyLimit {
			t.Fatalf("invariant broken at call %d: used=%d remaining=%d limit=%d",
				i, ledger.RequestsUsed, ledger.RequestsRemaining, ledger.DailyLimit)
		}
		if ledger.RequestsRemaining < 0 {
			t.Fatalf("remaining went negative: %d", ledger.RequestsRemaining)
		}
		if ledger.RequestsRemaining > 0 && ledger.RequestsUsed+ledger.RequestsRemaining != ledger.DailyLimit {
			t.Fatalf("used+remaining != limit while budget left: used=%d remaining=%d",
				ledger.RequestsUsed, ledger.RequestsRemaining)
		}
	}
	if ledger.FixturesRequests != 8 {
		t.Fatalf("expected 8 fixtures requests, got %d", ledger.FixturesRequests)
	}
}

func TestLedger_UsagePercentZeroLimit(t *testing.T) {
	t.Parallel()

	ledger := NewLedger("2026-08-31", 0)
	if got := ledger.UsagePercent(); got != 0 {
		t.Fatalf("zero limit must report 0 usage, got %v", got)
	}
}

func TestCategoryForEndpoint(t *testing.T) {
	t.Parallel()

	cases := map[string]Category{
		"fixtures":            CategoryFixtures,
		"fixtures/statistics": CategoryFixtures,
		"statistics":          CategoryStatistics,
		"standings":           CategoryStandings,
		"timezone":            CategoryOther,
		"":                    CategoryOther,
	}
	for endpoint, want := range cases {
		if got := CategoryForEndpoint(endpoint); got != want {
			t.Errorf("endpoint %q: got %s want %s", endpoint, got, want)
		}
	}
}

func TestClassifyHealth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		stats UsageStats
		want  HealthLevel
	}{
		{"critical below 100 remaining", UsageStats{Remaining: 99, Limit: 7500, UsagePercent: 98.68}, HealthCritical},
		{"warning above 90 percent", UsageStats{Remaining: 600, Limit: 7500, UsagePercent: 92}, HealthWarning},
		{"caution above 70 percent", UsageStats{Remaining: 2000, Limit: 7500, UsagePercent: 73.33}, HealthCaution},
		{"healthy otherwise", UsageStats{Remaining: 7000, Limit: 7500, UsagePercent: 6.67}, HealthHealthy},
		{"remaining floor beats percent bands", UsageStats{Used: 85, Remaining: 15, Limit: 100, UsagePercent: 85}, HealthCritical},
	}
	for _, tc := range cases {
		if got := ClassifyHealth(tc.stats).Level; got != tc.want {
			t.Errorf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}
