package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pradiptarana/fixturesync/internal/usecase"
)

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJobs")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	jobs, err := h.collectionService.ListJobs(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list jobs failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]jobDTO, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, jobToDTO(ctx, job))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetJob")
	defer span.End()

	jobID := strings.TrimSpace(r.PathValue("jobID"))
	job, err := h.collectionService.GetJob(ctx, jobID)
	if err != nil {
		h.logger.WarnContext(ctx, "get job failed", "job_id", jobID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jobToDTO(ctx, job))
}

func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelJob")
	defer span.End()

	jobID := strings.TrimSpace(r.PathValue("jobID"))
	if err := h.collectionService.CancelJob(ctx, jobID); err != nil {
		h.logger.WarnContext(ctx, "cancel job failed", "job_id", jobID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": jobID, "status": "cancellation requested"})
}

func (h *Handler) ListPendingSyncFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPendingSyncFixtures")
	defer span.End()

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	entries, err := h.cacheRepo.FindPendingSync(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list pending sync fixtures failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]pendingSyncFixtureDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, pendingSyncFixtureToDTO(ctx, entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RunCollectHistoricalJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCollectHistoricalJob")
	defer span.End()

	var req collectHistoricalRequest
	if err := decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	job, err := h.collectionService.CollectHistoricalBatch(ctx, usecase.HistoricalBatchInput{
		LeagueID:    req.LeagueID,
		Season:      req.Season,
		ForceUpdate: req.ForceUpdate,
		CreatedBy:   requestCreator(req.CreatedBy),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run historical collection failed", "league_id", req.LeagueID, "season", req.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jobToDTO(ctx, job))
}

func (h *Handler) RunCollectDailyJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCollectDailyJob")
	defer span.End()

	var req collectDailyRequest
	if err := decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	targetDate := time.Now().UTC()
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: date must be YYYY-MM-DD: %v", usecase.ErrInvalidInput, err))
			return
		}
		targetDate = parsed
	}

	job, err := h.collectionService.CollectDailyIncremental(ctx, usecase.DailyIncrementalInput{
		TargetDate: targetDate,
		CreatedBy:  requestCreator(req.CreatedBy),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run daily collection failed", "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jobToDTO(ctx, job))
}

func (h *Handler) RunCollectStatisticsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCollectStatisticsJob")
	defer span.End()

	var req collectStatisticsRequest
	if err := decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	job, err := h.collectionService.CollectMissingStatistics(ctx, usecase.StatisticsBackfillInput{
		Limit:     req.Limit,
		CreatedBy: requestCreator(req.CreatedBy),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run statistics backfill failed", "limit", req.Limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jobToDTO(ctx, job))
}

type collectHistoricalRequest struct {
	LeagueID    int64  `json:"league_id" validate:"required,gt=0"`
	Season      int    `json:"season" validate:"required,gte=2000,lte=2100"`
	ForceUpdate bool   `json:"force_update"`
	CreatedBy   string `json:"created_by" validate:"max=100"`
}

type collectDailyRequest struct {
	Date      string `json:"date"`
	CreatedBy string `json:"created_by" validate:"max=100"`
}

type collectStatisticsRequest struct {
	Limit     int    `json:"limit" validate:"gte=0,lte=500"`
	CreatedBy string `json:"created_by" validate:"max=100"`
}

func decodeJobRequest(r *http.Request, dest any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func requestCreator(createdBy string) string {
	createdBy = strings.TrimSpace(createdBy)
	if createdBy == "" {
		return "api"
	}
	return createdBy
}
