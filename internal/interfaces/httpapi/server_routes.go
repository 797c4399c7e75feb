package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerReadRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/quota/usage", handler.GetQuotaUsage)
	mux.HandleFunc("GET /v1/quota/health", handler.GetQuotaHealth)
	mux.HandleFunc("GET /v1/jobs", handler.ListJobs)
	mux.HandleFunc("GET /v1/jobs/{jobID}", handler.GetJob)
	mux.HandleFunc("GET /v1/cache/pending-sync", handler.ListPendingSyncFixtures)
	mux.HandleFunc("GET /v1/scheduler/tasks", handler.ListSchedulerTasks)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/collect-historical", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCollectHistoricalJob)))
	mux.Handle("POST /v1/internal/jobs/collect-daily", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCollectDailyJob)))
	mux.Handle("POST /v1/internal/jobs/collect-statistics", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCollectStatisticsJob)))
	mux.Handle("POST /v1/internal/jobs/{jobID}/cancel", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CancelJob)))
	mux.Handle("POST /v1/internal/scheduler/tasks/{taskName}/trigger", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.TriggerSchedulerTask)))
}
