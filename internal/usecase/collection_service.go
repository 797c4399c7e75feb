package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pradiptarana/fixturesync/internal/domain/collection"
	"github.com/pradiptarana/fixturesync/internal/domain/fixturecache"
	"github.com/pradiptarana/fixturesync/internal/domain/leagueconfig"
	idgen "github.com/pradiptarana/fixturesync/internal/platform/id"
	"github.com/pradiptarana/fixturesync/internal/platform/logging"
)

// CollectionConfig tunes batch behavior.
type CollectionConfig struct {
	// MaxConsecutiveErrors aborts a batch once this many fixtures fail in a
	// row, on the assumption the upstream is systematically broken.
	MaxConsecutiveErrors int
	// MaxErrorDetails caps how many per-fixture error lines are aggregated
	// into a failed job's errorDetails.
	MaxErrorDetails int
}

// CollectionService drives bounded, resumable batches of fetch work under
// quota admission control. Fixture processing within one job is strictly
// sequential; the quota and cache stores are the only state shared with
// other jobs.
type CollectionService struct {
	jobs     collection.Repository
	cache    fixturecache.Repository
	leagues  leagueconfig.Repository
	quota    *QuotaService
	provider FixtureProvider
	ids      idgen.Generator
	cfg      CollectionConfig
	logger   *logging.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration)
}

func NewCollectionService(
	jobs collection.Repository,
	cache fixturecache.Repository,
	leagues leagueconfig.Repository,
	quotaSvc *QuotaService,
	provider FixtureProvider,
	ids idgen.Generator,
	cfg CollectionConfig,
	logger *logging.Logger,
) *CollectionService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}
	if cfg.MaxConsecutiveErrors <= 0 {
		cfg.MaxConsecutiveErrors = 5
	}
	if cfg.MaxErrorDetails <= 0 {
		cfg.MaxErrorDetails = 20
	}

	return &CollectionService{
		jobs:     jobs,
		cache:    cache,
		leagues:  leagues,
		quota:    quotaSvc,
		provider: provider,
		ids:      ids,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type HistoricalBatchInput struct {
	LeagueID    int64
	Season      int
	ForceUpdate bool
	CreatedBy   string
}

type DailyIncrementalInput struct {
	TargetDate time.Time
	CreatedBy  string
}

type StatisticsBackfillInput struct {
	Limit     int
	CreatedBy string
}

// CollectHistoricalBatch stages every fixture of one league season. A scope
// already present in the cache is skipped outright, consuming zero quota.
func (s *CollectionService) CollectHistoricalBatch(ctx context.Context, input HistoricalBatchInput) (collection.Job, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectionService.CollectHistoricalBatch")
	defer span.End()

	if input.LeagueID <= 0 {
		return collection.Job{}, fmt.Errorf("%w: league id must be greater than zero", ErrInvalidInput)
	}
	if input.Season <= 0 {
		return collection.Job{}, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}

	job, err := s.createJob(ctx, collection.JobTypeInitialHistorical, collection.Scope{
		LeagueID: input.LeagueID,
		Season:   input.Season,
	}, input.CreatedBy)
	if err != nil {
		return collection.Job{}, err
	}

	if !input.ForceUpdate {
		existing, err := s.cache.CountByLeagueSeason(ctx, input.LeagueID, input.Season)
		if err != nil {
			return s.failJob(ctx, job, fmt.Sprintf("count cached fixtures: %v", err))
		}
		if existing > 0 {
			resume, err := s.scopeNeedsResume(ctx, input.LeagueID, input.Season)
			if err != nil {
				return s.failJob(ctx, job, fmt.Sprintf("inspect previous jobs: %v", err))
			}
			if !resume {
				job.ExistingCount = existing
				return s.transition(ctx, job, collection.StatusSkipped)
			}
		}
	}

	job, err = s.startJob(ctx, job)
	if err != nil {
		return job, err
	}

	fixtureIDs, outcome, listErr := admitAndList(s, ctx, &job, func(ctx context.Context) ([]int64, FetchOutcome, error) {
		return s.provider.ListFixtureIDs(ctx, input.LeagueID, input.Season)
	})
	if listErr != nil {
		return s.finishListFailure(ctx, job, outcome, listErr)
	}

	job = s.runFixtureLoop(ctx, job, fixtureIDs, input.ForceUpdate)
	s.reportLeagueUsage(ctx, input.LeagueID, job.Counters.RequestsUsed)
	return job, nil
}

// CollectDailyIncremental refreshes one calendar date, counting first-seen
// fixtures separately from ones whose cached status or score changed.
func (s *CollectionService) CollectDailyIncremental(ctx context.Context, input DailyIncrementalInput) (collection.Job, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectionService.CollectDailyIncremental")
	defer span.End()

	if input.TargetDate.IsZero() {
		return collection.Job{}, fmt.Errorf("%w: target date is required", ErrInvalidInput)
	}
	day := input.TargetDate.UTC().Truncate(24 * time.Hour)
	dayEnd := day.Add(24*time.Hour - time.Nanosecond)

	job, err := s.createJob(ctx, collection.JobTypeDailyIncremental, collection.Scope{
		DateFrom: &day,
		DateTo:   &dayEnd,
	}, input.CreatedBy)
	if err != nil {
		return collection.Job{}, err
	}

	job, err = s.startJob(ctx, job)
	if err != nil {
		return job, err
	}

	summaries, outcome, listErr := admitAndList(s, ctx, &job, func(ctx context.Context) ([]ExternalFixture, FetchOutcome, error) {
		return s.provider.ListFixturesByDate(ctx, day)
	})
	if listErr != nil {
		return s.finishListFailure(ctx, job, outcome, listErr)
	}

	total := len(summaries)
	processed := 0
	consecutiveErrors := 0
	var errorLines []string

	for _, summary := range summaries {
		if cancelled, current := s.observeCancel(ctx, job.PublicID); cancelled {
			s.logger.InfoContext(ctx, "daily batch cancelled", "job_id", job.PublicID, "processed", processed)
			job.Status = current
			return job, nil
		}

		processed++
		existing, found, err := s.cache.GetByExternalID(ctx, summary.ExternalID)
		if err != nil {
			consecutiveErrors, errorLines = s.countError(&job, consecutiveErrors, errorLines, fmt.Sprintf("fixture %d: read cache: %v", summary.ExternalID, err))
			if consecutiveErrors > s.cfg.MaxConsecutiveErrors {
				return s.failJob(ctx, job, aggregateErrors(errorLines))
			}
			continue
		}
		if found && fixturecache.NormalizeStatus(summary.Status) == existing.Status && existing.HasBasicData {
			// Nothing changed upstream for this fixture; no quota spent.
			job.AdvanceProgress(processed, total)
			s.persistProgress(ctx, &job)
			continue
		}

		admitted, err := s.quota.Admit(ctx)
		if err != nil {
			return s.failJob(ctx, job, fmt.Sprintf("quota admission: %v", err))
		}
		if !admitted {
			return s.failQuotaExhausted(ctx, job)
		}

		detail, outcome, fetchErr := s.provider.FetchFixture(ctx, summary.ExternalID)
		job.Counters.RequestsUsed++
		if _, recErr := s.quota.RecordRequest(ctx, recordInputFromOutcome(outcome)); recErr != nil {
			return s.failJob(ctx, job, fmt.Sprintf("record request: %v", recErr))
		}
		s.throttle(ctx)

		if fetchErr != nil {
			consecutiveErrors, errorLines = s.countError(&job, consecutiveErrors, errorLines, fmt.Sprintf("fixture %d: %v", summary.ExternalID, fetchErr))
			if consecutiveErrors > s.cfg.MaxConsecutiveErrors {
				return s.failJob(ctx, job, aggregateErrors(errorLines))
			}
			continue
		}
		consecutiveErrors = 0

		_, changed, err := s.cache.Upsert(ctx, updateFromExternal(detail, s.now().UTC()))
		if err != nil {
			consecutiveErrors, errorLines = s.countError(&job, consecutiveErrors, errorLines, fmt.Sprintf("fixture %d: stage: %v", detail.ExternalID, err))
			if consecutiveErrors > s.cfg.MaxConsecutiveErrors {
				return s.failJob(ctx, job, aggregateErrors(errorLines))
			}
			continue
		}

		job.Counters.FixturesCollected++
		if !found {
			job.Counters.FixturesNew++
		} else if changed {
			job.Counters.FixturesUpdated++
		}
		job.AdvanceProgress(processed, total)
		s.persistProgress(ctx, &job)
	}

	return s.transition(ctx, job, collection.StatusCompleted)
}

// CollectMissingStatistics backfills statistics for finished fixtures that
// lack them, prioritized leagues first. The batch size is pre-shrunk by the
// quota reserve so the job cannot drain the budget.
func (s *CollectionService) CollectMissingStatistics(ctx context.Context, input StatisticsBackfillInput) (collection.Job, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectionService.CollectMissingStatistics")
	defer span.End()

	if input.Limit <= 0 {
		input.Limit = 50
	}

	job, err := s.createJob(ctx, collection.JobTypeManual, collection.Scope{}, input.CreatedBy)
	if err != nil {
		return collection.Job{}, err
	}

	batchSize, err := s.quota.OptimalBatchSize(ctx, input.Limit)
	if err != nil {
		return s.failJob(ctx, job, fmt.Sprintf("compute batch size: %v", err))
	}
	if batchSize == 0 {
		return s.failQuotaExhausted(ctx, job)
	}

	prioritized, err := s.prioritizedLeagueIDs(ctx)
	if err != nil {
		return s.failJob(ctx, job, fmt.Sprintf("list league configs: %v", err))
	}

	entries, err := s.cache.FindMissingStatistics(ctx, fixturecache.StatusFinished, prioritized, batchSize)
	if err != nil {
		return s.failJob(ctx, job, fmt.Sprintf("find missing statistics: %v", err))
	}
	if len(entries) == 0 {
		job.ExistingCount = 0
		return s.transition(ctx, job, collection.StatusSkipped)
	}

	job, err = s.startJob(ctx, job)
	if err != nil {
		return job, err
	}

	total := len(entries)
	consecutiveErrors := 0
	var errorLines []string

	for i, entry := range entries {
		if cancelled, current := s.observeCancel(ctx, job.PublicID); cancelled {
			s.logger.InfoContext(ctx, "statistics backfill cancelled", "job_id", job.PublicID, "processed", i)
			job.Status = current
			return job, nil
		}

		admitted, err := s.quota.Admit(ctx)
		if err != nil {
			return s.failJob(ctx, job, fmt.Sprintf("quota admission: %v", err))
		}
		if !admitted {
			return s.failQuotaExhausted(ctx, job)
		}

		payload, outcome, fetchErr := s.provider.FetchStatistics(ctx, entry.ExternalFixtureID)
		job.Counters.RequestsUsed++
		if _, recErr := s.quota.RecordRequest(ctx, recordInputFromOutcome(outcome)); recErr != nil {
			return s.failJob(ctx, job, fmt.Sprintf("record request: %v", recErr))
		}
		s.throttle(ctx)

		if fetchErr != nil {
			consecutiveErrors, errorLines = s.countError(&job, consecutiveErrors, errorLines, fmt.Sprintf("fixture %d: statistics: %v", entry.ExternalFixtureID, fetchErr))
			if consecutiveErrors > s.cfg.MaxConsecutiveErrors {
				return s.failJob(ctx, job, aggregateErrors(errorLines))
			}
			continue
		}
		consecutiveErrors = 0

		_, _, err = s.cache.Upsert(ctx, fixturecache.Update{
			ExternalFixtureID: entry.ExternalFixtureID,
			StatisticsPayload: payload,
			SyncedAt:          s.now().UTC(),
		})
		if err != nil {
			consecutiveErrors, errorLines = s.countError(&job, consecutiveErrors, errorLines, fmt.Sprintf("fixture %d: stage statistics: %v", entry.ExternalFixtureID, err))
			if consecutiveErrors > s.cfg.MaxConsecutiveErrors {
				return s.failJob(ctx, job, aggregateErrors(errorLines))
			}
			continue
		}

		job.Counters.FixturesWithStats++
		job.AdvanceProgress(i+1, total)
		s.persistProgress(ctx, &job)
	}

	return s.transition(ctx, job, collection.StatusCompleted)
}

// CancelJob flips a non-terminal job to CANCELLED. The run loop observes
// the flip between iterations and stops promptly, leaving partial progress
// intact for a later resume.
func (s *CollectionService) CancelJob(ctx context.Context, publicID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectionService.CancelJob")
	defer span.End()

	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}
	ok, err := s.jobs.RequestCancel(ctx, publicID)
	if err != nil {
		return fmt.Errorf("cancel job %s: %w", publicID, err)
	}
	if !ok {
		return fmt.Errorf("%w: job %s", ErrJobTerminal, publicID)
	}
	return nil
}

func (s *CollectionService) GetJob(ctx context.Context, publicID string) (collection.Job, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectionService.GetJob")
	defer span.End()

	job, found, err := s.jobs.GetByPublicID(ctx, strings.TrimSpace(publicID))
	if err != nil {
		return collection.Job{}, fmt.Errorf("get job %s: %w", publicID, err)
	}
	if !found {
		return collection.Job{}, fmt.Errorf("%w: job %s", ErrNotFound, publicID)
	}
	return job, nil
}

func (s *CollectionService) ListJobs(ctx context.Context, limit int) ([]collection.Job, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectionService.ListJobs")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	jobs, err := s.jobs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// runFixtureLoop is the shared sequential per-fixture loop for historical
// batches: admission check, fetch, record, throttle, stage, progress.
func (s *CollectionService) runFixtureLoop(ctx context.Context, job collection.Job, fixtureIDs []int64, forceUpdate bool) collection.Job {
	total := len(fixtureIDs)
	if total == 0 {
		job, _ = s.transition(ctx, job, collection.StatusCompleted)
		return job
	}

	consecutiveErrors := 0
	var errorLines []string

	for i, externalID := range fixtureIDs {
		if cancelled, current := s.observeCancel(ctx, job.PublicID); cancelled {
			s.logger.InfoContext(ctx, "historical batch cancelled", "job_id", job.PublicID, "processed", i)
			job.Status = current
			return job
		}

		if !forceUpdate {
			existing, found, err := s.cache.GetByExternalID(ctx, externalID)
			if err == nil && found && existing.HasBasicData {
				// Already staged by an earlier run; resume without re-fetching.
				job.Counters.FixturesCollected++
				job.AdvanceProgress(i+1, total)
				s.persistProgress(ctx, &job)
				continue
			}
		}

		admitted, err := s.quota.Admit(ctx)
		if err != nil {
			job, _ = s.failJob(ctx, job, fmt.Sprintf("quota admission: %v", err))
			return job
		}
		if !admitted {
			job, _ = s.failQuotaExhausted(ctx, job)
			return job
		}

		detail, outcome, fetchErr := s.provider.FetchFixture(ctx, externalID)
		job.Counters.RequestsUsed++
		if _, recErr := s.quota.RecordRequest(ctx, recordInputFromOutcome(outcome)); recErr != nil {
			job, _ = s.failJob(ctx, job, fmt.Sprintf("record request: %v", recErr))
			return job
		}
		s.throttle(ctx)

		if fetchErr != nil {
			consecutiveErrors, errorLines = s.countError(&job, consecutiveErrors, errorLines, fmt.Sprintf("fixture %d: %v", externalID, fetchErr))
			if consecutiveErrors > s.cfg.MaxConsecutiveErrors {
				job, _ = s.failJob(ctx, job, aggregateErrors(errorLines))
				return job
			}
			continue
		}
		consecutiveErrors = 0

		entry, _, err := s.cache.Upsert(ctx, updateFromExternal(detail, s.now().UTC()))
		if err != nil {
			consecutiveErrors, errorLines = s.countError(&job, consecutiveErrors, errorLines, fmt.Sprintf("fixture %d: stage: %v", externalID, err))
			if consecutiveErrors > s.cfg.MaxConsecutiveErrors {
				job, _ = s.failJob(ctx, job, aggregateErrors(errorLines))
				return job
			}
			continue
		}

		job.Counters.FixturesCollected++
		if entry.HasStatistics {
			job.Counters.FixturesWithStats++
		}
		job.AdvanceProgress(i+1, total)
		s.persistProgress(ctx, &job)
	}

	job, _ = s.transition(ctx, job, collection.StatusCompleted)
	return job
}

func (s *CollectionService) createJob(ctx context.Context, jobType collection.JobType, scope collection.Scope, createdBy string) (collection.Job, error) {
	publicID, err := s.ids.NewID()
	if err != nil {
		return collection.Job{}, fmt.Errorf("generate job id: %w", err)
	}
	if strings.TrimSpace(createdBy) == "" {
		createdBy = "system"
	}

	job := collection.Job{
		PublicID:    publicID,
		JobType:     jobType,
		Scope:       scope,
		Status:      collection.StatusPending,
		ScheduledAt: s.now().UTC(),
		CreatedBy:   strings.TrimSpace(createdBy),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return collection.Job{}, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (s *CollectionService) startJob(ctx context.Context, job collection.Job) (collection.Job, error) {
	startedAt := s.now().UTC()
	job.StartedAt = &startedAt
	return s.transition(ctx, job, collection.StatusRunning)
}

func (s *CollectionService) transition(ctx context.Context, job collection.Job, next collection.Status) (collection.Job, error) {
	if !job.Status.CanTransitionTo(next) {
		return job, fmt.Errorf("invalid job transition %s -> %s", job.Status, next)
	}
	job.Status = next
	if next.Terminal() {
		completedAt := s.now().UTC()
		job.CompletedAt = &completedAt
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return job, fmt.Errorf("persist job %s: %w", job.PublicID, err)
	}
	return job, nil
}

func (s *CollectionService) failJob(ctx context.Context, job collection.Job, details string) (collection.Job, error) {
	job.ErrorDetails = details
	failed, err := s.transition(ctx, job, collection.StatusFailed)
	if err != nil {
		return job, err
	}
	s.logger.WarnContext(ctx, "collection job failed",
		"job_id", failed.PublicID,
		"job_type", failed.JobType,
		"details", details,
	)
	return failed, nil
}

// failQuotaExhausted is the clean early stop: a scheduling outcome, not an
// operational error. The job fails with a distinguishing reason and picks
// up where it left off after day rollover.
func (s *CollectionService) failQuotaExhausted(ctx context.Context, job collection.Job) (collection.Job, error) {
	job.ErrorDetails = collection.FailureReasonQuotaExhausted
	failed, err := s.transition(ctx, job, collection.StatusFailed)
	if err != nil {
		return job, err
	}
	s.logger.InfoContext(ctx, "collection halted on quota exhaustion",
		"job_id", failed.PublicID,
		"requests_used", failed.Counters.RequestsUsed,
	)
	return failed, nil
}

func (s *CollectionService) observeCancel(ctx context.Context, publicID string) (bool, collection.Status) {
	status, found, err := s.jobs.GetStatus(ctx, publicID)
	if err != nil || !found {
		return false, collection.StatusRunning
	}
	return status == collection.StatusCancelled, status
}

func (s *CollectionService) persistProgress(ctx context.Context, job *collection.Job) {
	if err := s.jobs.Update(ctx, *job); err != nil {
		s.logger.WarnContext(ctx, "persist job progress failed", "job_id", job.PublicID, "error", err)
	}
}

func (s *CollectionService) countError(job *collection.Job, consecutive int, lines []string, line string) (int, []string) {
	job.Counters.ErrorsCount++
	if len(lines) < s.cfg.MaxErrorDetails {
		lines = append(lines, line)
	}
	return consecutive + 1, lines
}

func (s *CollectionService) throttle(ctx context.Context) {
	delay, err := s.quota.RecommendedDelay(ctx)
	if err != nil {
		delay = 300 * time.Millisecond
	}
	s.sleep(ctx, delay)
}

// scopeNeedsResume distinguishes a partially collected season from a
// finished one. Cached rows with a FAILED or CANCELLED last run mean the
// scope stopped partway, so a fresh job re-enumerates and fills the gaps.
func (s *CollectionService) scopeNeedsResume(ctx context.Context, leagueID int64, season int) (bool, error) {
	last, found, err := s.jobs.LatestTerminalByScope(ctx, leagueID, season)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	switch last.Status {
	case collection.StatusFailed, collection.StatusCancelled:
		return true, nil
	default:
		return false, nil
	}
}

func (s *CollectionService) prioritizedLeagueIDs(ctx context.Context) ([]int64, error) {
	configs, err := s.leagues.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(configs))
	for _, cfg := range configs {
		if cfg.CollectStatistics {
			ids = append(ids, cfg.LeagueID)
		}
	}
	return ids, nil
}

func (s *CollectionService) reportLeagueUsage(ctx context.Context, leagueID int64, used int) {
	if used == 0 {
		return
	}
	if err := s.leagues.AddRequestsUsed(ctx, leagueID, used); err != nil {
		s.logger.WarnContext(ctx, "report league usage failed", "league_id", leagueID, "error", err)
	}
}

// admitAndList wraps the single scope-enumeration call: admission check,
// fetch, unconditional record, throttle.
func admitAndList[T any](s *CollectionService, ctx context.Context, job *collection.Job, list func(ctx context.Context) (T, FetchOutcome, error)) (T, FetchOutcome, error) {
	var zero T

	admitted, err := s.quota.Admit(ctx)
	if err != nil {
		return zero, FetchOutcome{}, fmt.Errorf("quota admission: %w", err)
	}
	if !admitted {
		return zero, FetchOutcome{}, ErrQuotaExhausted
	}

	result, outcome, listErr := list(ctx)
	job.Counters.RequestsUsed++
	if _, recErr := s.quota.RecordRequest(ctx, recordInputFromOutcome(outcome)); recErr != nil {
		return zero, outcome, fmt.Errorf("record request: %w", recErr)
	}
	s.throttle(ctx)

	if listErr != nil {
		return zero, outcome, listErr
	}
	return result, outcome, nil
}

func (s *CollectionService) finishListFailure(ctx context.Context, job collection.Job, outcome FetchOutcome, listErr error) (collection.Job, error) {
	if errors.Is(listErr, ErrQuotaExhausted) {
		job.Counters.RequestsUsed = 0
		return s.failQuotaExhausted(ctx, job)
	}
	return s.failJob(ctx, job, fmt.Sprintf("enumerate scope endpoint=%s: %v", outcome.Endpoint, listErr))
}

func recordInputFromOutcome(outcome FetchOutcome) RecordRequestInput {
	return RecordRequestInput{
		Endpoint:       outcome.Endpoint,
		Params:         outcome.Params,
		Success:        outcome.Success,
		ResultCount:    outcome.ResultCount,
		HTTPStatus:     outcome.HTTPStatus,
		ResponseTimeMs: outcome.ResponseTimeMs,
		ErrorMessage:   outcome.ErrorMessage,
	}
}

func updateFromExternal(fixture ExternalFixture, syncedAt time.Time) fixturecache.Update {
	return fixturecache.Update{
		ExternalFixtureID: fixture.ExternalID,
		LeagueID:          fixture.LeagueID,
		Season:            fixture.Season,
		FixtureDate:       fixture.Date,
		Status:            fixture.Status,
		FixturePayload:    fixture.Payload,
		HasLineups:        fixture.HasLineups,
		HasEvents:         fixture.HasEvents,
		SyncedAt:          syncedAt,
	}
}

func aggregateErrors(lines []string) string {
	if len(lines) == 0 {
		return "batch aborted after repeated errors"
	}
	return "batch aborted after repeated errors: " + strings.Join(lines, "; ")
}
