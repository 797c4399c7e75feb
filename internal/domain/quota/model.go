package quota

import (
	"strings"
	"time"
)

// LedgerDateLayout is the canonical date key format for daily ledgers.
const LedgerDateLayout = "2006-01-02"

// Category buckets request usage by the kind of endpoint that consumed it.
type Category string

const (
	CategoryFixtures   Category = "fixtures"
	CategoryStatistics Category = "statistics"
	CategoryStandings  Category = "standings"
	CategoryOther      Category = "other"
)

// CategoryForEndpoint maps an endpoint name onto a usage bucket by
// substring match. Anything unrecognized lands in the other bucket.
func CategoryForEndpoint(endpoint string) Category {
	name := strings.ToLower(strings.TrimSpace(endpoint))
	switch {
	case strings.Contains(name, "fixtures"):
		return CategoryFixtures
	case strings.Contains(name, "statistics"):
		return CategoryStatistics
	case strings.Contains(name, "standings"):
		return CategoryStandings
	default:
		return CategoryOther
	}
}

// Ledger is the authoritative per-day call budget record. One row exists per
// calendar date; past dates are never mutated.
type Ledger struct {
	Date               string
	DailyLimit         int
	RequestsUsed       int
	RequestsRemaining  int
	FixturesRequests   int
	StatisticsRequests int
	StandingsRequests  int
	OtherRequests      int
	LastUpdated        time.Time
}

// NewLedger builds a fresh ledger for the given date with nothing consumed.
func NewLedger(date string, dailyLimit int) Ledger {
	if dailyLimit < 0 {
		dailyLimit = 0
	}
	return Ledger{
		Date:              date,
		DailyLimit:        dailyLimit,
		RequestsUsed:      0,
		RequestsRemaining: dailyLimit,
		LastUpdated:       time.Now().UTC(),
	}
}

// Consume counts one successful request against the ledger, keeping
// used + remaining == limit with remaining floored at zero.
func (l *Ledger) Consume(category Category, at time.Time) {
	l.RequestsUsed++
	l.RequestsRemaining = l.DailyLimit - l.RequestsUsed
	if l.RequestsRemaining < 0 {
		l.RequestsRemaining = 0
	}
	switch category {
	case CategoryFixtures:
		l.FixturesRequests++
	case CategoryStatistics:
		l.StatisticsRequests++
	case CategoryStandings:
		l.StandingsRequests++
	default:
		l.OtherRequests++
	}
	l.LastUpdated = at.UTC()
}

// UsagePercent is the consumed share of the daily limit. A zero limit
// reports zero usage rather than dividing by zero.
func (l Ledger) UsagePercent() float64 {
	if l.DailyLimit == 0 {
		return 0
	}
	return float64(l.RequestsUsed) / float64(l.DailyLimit) * 100
}

// RequestRecord is one append-only audit row per attempted external call,
// written regardless of outcome.
type RequestRecord struct {
	Endpoint       string
	Params         map[string]string
	Success        bool
	ResultCount    int
	HTTPStatus     int
	ErrorMessage   string
	ResponseTimeMs int64
	APIVersion     string
	RequestedAt    time.Time
}

// Counted reports whether this record should consume ledger budget.
func (r RequestRecord) Counted() bool {
	return r.Success && r.HTTPStatus == 200
}

// UsageStats is the derived read model consumed by throttling decisions and
// the observability surface.
type UsageStats struct {
	Date         string           `json:"date"`
	Used         int              `json:"used"`
	Remaining    int              `json:"remaining"`
	Limit        int              `json:"limit"`
	UsagePercent float64          `json:"usage_percent"`
	Breakdown    map[Category]int `json:"breakdown"`
}

// HealthLevel classifies remaining quota into a single operator signal.
type HealthLevel string

const (
	HealthCritical HealthLevel = "CRITICAL"
	HealthWarning  HealthLevel = "WARNING"
	HealthCaution  HealthLevel = "CAUTION"
	HealthHealthy  HealthLevel = "HEALTHY"
)

// Health pairs a level with a fixed recommended action.
type Health struct {
	Level          HealthLevel `json:"level"`
	Recommendation string      `json:"recommendation"`
	Stats          UsageStats  `json:"stats"`
}

// ClassifyHealth derives the health level from usage stats alone.
func ClassifyHealth(stats UsageStats) Health {
	health := Health{Stats: stats}
	switch {
	case stats.Remaining < 100:
		health.Level = HealthCritical
		health.Recommendation = "stop non-essential collection; reserve remaining quota for live refreshes"
	case stats.UsagePercent > 90:
		health.Level = HealthWarning
		health.Recommendation = "pause bulk backfills until the next daily reset"
	case stats.UsagePercent > 70:
		health.Level = HealthCaution
		health.Recommendation = "prefer high-priority leagues and defer statistics backfill"
	default:
		health.Level = HealthHealthy
		health.Recommendation = "no action required"
	}
	return health
}
