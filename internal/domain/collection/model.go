package collection

import "time"

// JobType identifies what kind of batch a collection job runs.
type JobType string

const (
	JobTypeInitialHistorical JobType = "INITIAL_HISTORICAL"
	JobTypeDailyIncremental  JobType = "DAILY_INCREMENTAL"
	JobTypeManual            JobType = "MANUAL"
)

// Status is the closed set of job states. Transitions are one-directional
// and terminal states are immutable.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusSkipped   Status = "SKIPPED"
)

// Terminal reports whether a job in this status can never change again.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusSkipped:
		return true
	default:
		return false
	}
}

// CanTransitionTo enforces the one-directional state machine.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case StatusPending:
		switch next {
		case StatusRunning, StatusSkipped, StatusCancelled, StatusFailed:
			return true
		}
	case StatusRunning:
		switch next {
		case StatusCompleted, StatusFailed, StatusCancelled:
			return true
		}
	}
	return false
}

// FailureReasonQuotaExhausted marks the clean early stop when the daily
// budget runs out mid-batch. It is a scheduling outcome, not an operational
// error; the batch resumes after day rollover.
const FailureReasonQuotaExhausted = "quota exhausted"

// Scope bounds what a job collects.
type Scope struct {
	LeagueID int64
	Season   int
	DateFrom *time.Time
	DateTo   *time.Time
}

// Counters accumulates per-job progress totals.
type Counters struct {
	FixturesCollected int `json:"fixtures_collected"`
	FixturesWithStats int `json:"fixtures_with_stats"`
	FixturesNew       int `json:"fixtures_new"`
	FixturesUpdated   int `json:"fixtures_updated"`
	RequestsUsed      int `json:"requests_used"`
	ErrorsCount       int `json:"errors_count"`
}

// Job is one bounded, resumable batch of fetch work.
type Job struct {
	PublicID      string
	JobType       JobType
	Scope         Scope
	Status        Status
	Progress      float64
	Counters      Counters
	ErrorDetails  string
	ExistingCount int
	ScheduledAt   time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedBy     string
}

// AdvanceProgress raises the progress percentage, never lowering it.
func (j *Job) AdvanceProgress(processed, total int) {
	if total <= 0 {
		return
	}
	next := float64(processed) / float64(total) * 100
	if next > 100 {
		next = 100
	}
	if next > j.Progress {
		j.Progress = next
	}
}
