package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/pradiptarana/fixturesync/internal/domain/quota"
	"github.com/pradiptarana/fixturesync/internal/platform/logging"
)

// QuotaConfig tunes the daily budget accounting.
type QuotaConfig struct {
	DailyLimit int
	Timezone   *time.Location
	APIVersion string
}

// QuotaService owns the daily ledger: admission control, throttling policy
// and health classification. All ledger mutations go through here.
type QuotaService struct {
	repo   quota.Repository
	cfg    QuotaConfig
	logger *logging.Logger
	now    func() time.Time

	// mu serializes admission against the in-flight count so that two
	// callers can never both be admitted against the last unit of budget.
	mu       sync.Mutex
	inflight int
}

func NewQuotaService(repo quota.Repository, cfg QuotaConfig, logger *logging.Logger) *QuotaService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	if cfg.DailyLimit < 0 {
		cfg.DailyLimit = 0
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = "v3"
	}

	return &QuotaService{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (s *QuotaService) todayKey() string {
	return s.now().In(s.cfg.Timezone).Format(quota.LedgerDateLayout)
}

// TodayLedger returns today's ledger, creating a zeroed row on first access.
// Day rollover is implicit: a new date simply yields a new ledger and the
// previous one stays behind as history.
func (s *QuotaService) TodayLedger(ctx context.Context) (quota.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QuotaService.TodayLedger")
	defer span.End()

	ledger, err := s.repo.GetOrCreateLedger(ctx, s.todayKey(), s.cfg.DailyLimit)
	if err != nil {
		return quota.Ledger{}, fmt.Errorf("get or create today ledger: %w", err)
	}
	return ledger, nil
}

// CanMakeRequest reports whether n more calls fit in today's budget. Pure
// read, no side effects.
func (s *QuotaService) CanMakeRequest(ctx context.Context, n int) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QuotaService.CanMakeRequest")
	defer span.End()

	if n <= 0 {
		return true, nil
	}
	ledger, err := s.TodayLedger(ctx)
	if err != nil {
		return false, err
	}
	return ledger.RequestsRemaining >= n, nil
}

// Admit is the check half of check-then-fetch used by collection loops. It
// accounts for calls already admitted but not yet recorded, so concurrent
// jobs cannot split the final unit of quota. Every true return must be
// paired with a RecordRequest call.
func (s *QuotaService) Admit(ctx context.Context) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QuotaService.Admit")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.repo.GetOrCreateLedger(ctx, s.todayKey(), s.cfg.DailyLimit)
	if err != nil {
		return false, fmt.Errorf("get or create today ledger: %w", err)
	}
	if ledger.RequestsRemaining-s.inflight < 1 {
		return false, nil
	}
	s.inflight++
	return true, nil
}

// RecordRequestInput mirrors one attempted external call.
type RecordRequestInput struct {
	Endpoint       string
	Params         map[string]string
	Success        bool
	ResultCount    int
	HTTPStatus     int
	ResponseTimeMs int64
	ErrorMessage   string
}

// RecordRequest appends the audit row and, for successful HTTP 200 calls,
// commits the ledger increment in the same transaction. A call is never
// logged as used without the increment landing, or vice versa.
func (s *QuotaService) RecordRequest(ctx context.Context, input RecordRequestInput) (quota.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QuotaService.RecordRequest")
	defer span.End()

	endpoint := strings.TrimSpace(input.Endpoint)
	if endpoint == "" {
		return quota.Ledger{}, fmt.Errorf("%w: endpoint is required", ErrInvalidInput)
	}

	record := quota.RequestRecord{
		Endpoint:       endpoint,
		Params:         input.Params,
		Success:        input.Success,
		ResultCount:    input.ResultCount,
		HTTPStatus:     input.HTTPStatus,
		ErrorMessage:   strings.TrimSpace(input.ErrorMessage),
		ResponseTimeMs: input.ResponseTimeMs,
		APIVersion:     s.cfg.APIVersion,
		RequestedAt:    s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.repo.RecordUsage(ctx, quota.UsageUpdate{
		Date:       s.todayKey(),
		DailyLimit: s.cfg.DailyLimit,
		Record:     record,
		Category:   quota.CategoryForEndpoint(endpoint),
	})
	if err != nil {
		return quota.Ledger{}, fmt.Errorf("record request endpoint=%s: %w", endpoint, err)
	}
	if s.inflight > 0 {
		s.inflight--
	}

	if record.Counted() {
		s.logger.DebugContext(ctx, "request counted",
			"endpoint", endpoint,
			"used", ledger.RequestsUsed,
			"remaining", ledger.RequestsRemaining,
		)
	}
	return ledger, nil
}

// UsageStats derives the read model for throttling and observability.
func (s *QuotaService) UsageStats(ctx context.Context) (quota.UsageStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QuotaService.UsageStats")
	defer span.End()

	ledger, err := s.TodayLedger(ctx)
	if err != nil {
		return quota.UsageStats{}, err
	}
	return quota.UsageStats{
		Date:         ledger.Date,
		Used:         ledger.RequestsUsed,
		Remaining:    ledger.RequestsRemaining,
		Limit:        ledger.DailyLimit,
		UsagePercent: ledger.UsagePercent(),
		Breakdown: map[quota.Category]int{
			quota.CategoryFixtures:   ledger.FixturesRequests,
			quota.CategoryStatistics: ledger.StatisticsRequests,
			quota.CategoryStandings:  ledger.StandingsRequests,
			quota.CategoryOther:      ledger.OtherRequests,
		},
	}, nil
}

// OptimalBatchSize caps a requested batch at 90% of remaining quota. The
// held-back 10% keeps bulk jobs from starving high-priority refreshes.
func (s *QuotaService) OptimalBatchSize(ctx context.Context, target int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QuotaService.OptimalBatchSize")
	defer span.End()

	ledger, err := s.TodayLedger(ctx)
	if err != nil {
		return 0, err
	}
	return optimalBatchSize(target, ledger.RequestsRemaining), nil
}

func optimalBatchSize(target, remaining int) int {
	if target < 0 {
		target = 0
	}
	usable := int(math.Floor(0.9 * float64(remaining)))
	if usable < 0 {
		usable = 0
	}
	if target < usable {
		return target
	}
	return usable
}

// ShouldThrottle reports whether usage has crossed the 80% mark.
func (s *QuotaService) ShouldThrottle(ctx context.Context) (bool, error) {
	stats, err := s.UsageStats(ctx)
	if err != nil {
		return false, err
	}
	return stats.UsagePercent > 80, nil
}

// RecommendedDelay is the advisory pause between external calls. Callers
// sleep this long; the service never sleeps on their behalf.
func (s *QuotaService) RecommendedDelay(ctx context.Context) (time.Duration, error) {
	stats, err := s.UsageStats(ctx)
	if err != nil {
		return 0, err
	}
	return delayForUsage(stats.UsagePercent), nil
}

func delayForUsage(usagePercent float64) time.Duration {
	switch {
	case usagePercent > 90:
		return 2 * time.Second
	case usagePercent > 80:
		return time.Second
	case usagePercent > 60:
		return 500 * time.Millisecond
	default:
		return 300 * time.Millisecond
	}
}

// CheckHealth classifies current usage into one actionable signal.
func (s *QuotaService) CheckHealth(ctx context.Context) (quota.Health, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QuotaService.CheckHealth")
	defer span.End()

	stats, err := s.UsageStats(ctx)
	if err != nil {
		return quota.Health{}, err
	}
	return quota.ClassifyHealth(stats), nil
}
