package httpapi

import (
	"net/http"

	"github.com/pradiptarana/fixturesync/internal/domain/quota"
)

const quotaHealthCacheKey = "quota-health"

func (h *Handler) GetQuotaUsage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetQuotaUsage")
	defer span.End()

	stats, err := h.quotaService.UsageStats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get quota usage failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

// GetQuotaHealth serves a short-lived cached classification: dashboards poll
// this endpoint and each miss costs a ledger read.
func (h *Handler) GetQuotaHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetQuotaHealth")
	defer span.End()

	if h.healthCache != nil {
		if cached, ok := h.healthCache.Get(ctx, quotaHealthCacheKey); ok {
			if health, ok := cached.(quota.Health); ok {
				writeSuccess(ctx, w, http.StatusOK, health)
				return
			}
		}
	}

	health, err := h.quotaService.CheckHealth(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "check quota health failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	if h.healthCache != nil {
		h.healthCache.Set(ctx, quotaHealthCacheKey, health)
	}
	writeSuccess(ctx, w, http.StatusOK, health)
}
