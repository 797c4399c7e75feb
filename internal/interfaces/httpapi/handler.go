package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pradiptarana/fixturesync/internal/domain/collection"
	"github.com/pradiptarana/fixturesync/internal/domain/fixturecache"
	"github.com/pradiptarana/fixturesync/internal/platform/cache"
	"github.com/pradiptarana/fixturesync/internal/scheduler"
	"github.com/pradiptarana/fixturesync/internal/usecase"
)

type Handler struct {
	quotaService      *usecase.QuotaService
	collectionService *usecase.CollectionService
	cacheRepo         fixturecache.Repository
	sched             *scheduler.Scheduler
	healthCache       *cache.Store
	logger            *slog.Logger
	validator         *validator.Validate
}

// NewHandler wires the API surface. healthCache may be nil, which disables
// the short-TTL read cache in front of the quota health endpoint.
func NewHandler(
	quotaService *usecase.QuotaService,
	collectionService *usecase.CollectionService,
	cacheRepo fixturecache.Repository,
	sched *scheduler.Scheduler,
	healthCache *cache.Store,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		quotaService:      quotaService,
		collectionService: collectionService,
		cacheRepo:         cacheRepo,
		sched:             sched,
		healthCache:       healthCache,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListSchedulerTasks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSchedulerTasks")
	defer span.End()

	if h.sched == nil {
		writeError(ctx, w, fmt.Errorf("%w: scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.sched.Snapshot())
}

// TriggerSchedulerTask funnels manual runs through the same overlap guard
// as interval ticks, so a manual trigger can never race a scheduled one.
func (h *Handler) TriggerSchedulerTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerSchedulerTask")
	defer span.End()

	if h.sched == nil {
		writeError(ctx, w, fmt.Errorf("%w: scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	taskName := r.PathValue("taskName")
	if err := h.sched.TriggerNow(ctx, taskName); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"task": taskName, "triggered": "true"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type jobDTO struct {
	ID            string              `json:"id"`
	JobType       string              `json:"jobType"`
	Status        string              `json:"status"`
	LeagueID      int64               `json:"leagueId,omitempty"`
	Season        int                 `json:"season,omitempty"`
	DateFrom      string              `json:"dateFrom,omitempty"`
	DateTo        string              `json:"dateTo,omitempty"`
	Progress      float64             `json:"progress"`
	Counters      collection.Counters `json:"counters"`
	ErrorDetails  string              `json:"errorDetails,omitempty"`
	ExistingCount int                 `json:"existingCount"`
	ScheduledAt   string              `json:"scheduledAt"`
	StartedAt     string              `json:"startedAt,omitempty"`
	CompletedAt   string              `json:"completedAt,omitempty"`
	CreatedBy     string              `json:"createdBy"`
}

func jobToDTO(ctx context.Context, v collection.Job) jobDTO {
	ctx, span := startSpan(ctx, "httpapi.jobToDTO")
	defer span.End()

	return jobDTO{
		ID:            v.PublicID,
		JobType:       string(v.JobType),
		Status:        string(v.Status),
		LeagueID:      v.Scope.LeagueID,
		Season:        v.Scope.Season,
		DateFrom:      formatOptionalTime(v.Scope.DateFrom),
		DateTo:        formatOptionalTime(v.Scope.DateTo),
		Progress:      v.Progress,
		Counters:      v.Counters,
		ErrorDetails:  v.ErrorDetails,
		ExistingCount: v.ExistingCount,
		ScheduledAt:   v.ScheduledAt.UTC().Format(time.RFC3339),
		StartedAt:     formatOptionalTime(v.StartedAt),
		CompletedAt:   formatOptionalTime(v.CompletedAt),
		CreatedBy:     v.CreatedBy,
	}
}

type pendingSyncFixtureDTO struct {
	ExternalFixtureID int64  `json:"externalFixtureId"`
	LeagueID          int64  `json:"leagueId"`
	Season            int    `json:"season"`
	FixtureDate       string `json:"fixtureDate"`
	Status            string `json:"status"`
	HasStatistics     bool   `json:"hasStatistics"`
	LastSynced        string `json:"lastSynced"`
}

func pendingSyncFixtureToDTO(ctx context.Context, v fixturecache.Entry) pendingSyncFixtureDTO {
	ctx, span := startSpan(ctx, "httpapi.pendingSyncFixtureToDTO")
	defer span.End()

	return pendingSyncFixtureDTO{
		ExternalFixtureID: v.ExternalFixtureID,
		LeagueID:          v.LeagueID,
		Season:            v.Season,
		FixtureDate:       v.FixtureDate.UTC().Format(time.RFC3339),
		Status:            v.Status,
		HasStatistics:     v.HasStatistics,
		LastSynced:        v.LastSynced.UTC().Format(time.RFC3339),
	}
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
