package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/pradiptarana/fixturesync/external/apifootball"
	"github.com/pradiptarana/fixturesync/internal/config"
	"github.com/pradiptarana/fixturesync/internal/domain/collection"
	"github.com/pradiptarana/fixturesync/internal/domain/fixturecache"
	"github.com/pradiptarana/fixturesync/internal/domain/leagueconfig"
	"github.com/pradiptarana/fixturesync/internal/domain/quota"
	"github.com/pradiptarana/fixturesync/internal/infrastructure/repository/memory"
	"github.com/pradiptarana/fixturesync/internal/infrastructure/repository/postgres"
	"github.com/pradiptarana/fixturesync/internal/interfaces/httpapi"
	"github.com/pradiptarana/fixturesync/internal/platform/cache"
	idgen "github.com/pradiptarana/fixturesync/internal/platform/id"
	"github.com/pradiptarana/fixturesync/internal/platform/logging"
	"github.com/pradiptarana/fixturesync/internal/platform/resilience"
	"github.com/pradiptarana/fixturesync/internal/scheduler"
	"github.com/pradiptarana/fixturesync/internal/usecase"
)

// Application bundles the long-lived pieces main has to start and stop.
type Application struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler
	DB        *sqlx.DB
}

func NewApplication(cfg config.Config, logger *logging.Logger, httpLogger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if httpLogger == nil {
		httpLogger = slog.Default()
	}

	db, quotaRepo, cacheRepo, jobRepo, leagueRepo, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	quotaSvc := usecase.NewQuotaService(quotaRepo, usecase.QuotaConfig{
		DailyLimit: cfg.QuotaDailyLimit,
		Timezone:   cfg.QuotaTimezone,
	}, logger)

	provider := apifootball.NewClient(apifootball.ClientConfig{
		HTTPClient: &http.Client{Timeout: cfg.APIFootballTimeout},
		BaseURL:    cfg.APIFootballBaseURL,
		Token:      cfg.APIFootballToken,
		Timeout:    cfg.APIFootballTimeout,
		MaxRetries: cfg.APIFootballMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.APIFootballCircuitEnabled,
			FailureThreshold: cfg.APIFootballCircuitFailureCount,
			OpenTimeout:      cfg.APIFootballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpenMaxReq,
		},
	})

	collectionSvc := usecase.NewCollectionService(
		jobRepo,
		cacheRepo,
		leagueRepo,
		quotaSvc,
		provider,
		idgen.NewRandomGenerator(),
		usecase.CollectionConfig{MaxConsecutiveErrors: cfg.MaxConsecutiveErrors},
		logger,
	)

	sched, err := buildScheduler(cfg, collectionSvc, logger)
	if err != nil {
		return nil, err
	}

	var healthCache *cache.Store
	if cfg.CacheEnabled {
		healthCache = cache.NewStore(cfg.CacheTTL)
	}
	handler := httpapi.NewHandler(quotaSvc, collectionSvc, cacheRepo, sched, healthCache, httpLogger)
	router := httpapi.NewRouter(handler, httpLogger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &Application{
		Server:    server,
		Scheduler: sched,
		DB:        db,
	}, nil
}

// Start launches the background scheduler. The HTTP server is started by the
// caller so it owns the listener error path.
func (a *Application) Start(ctx context.Context) error {
	if a.Scheduler == nil {
		return nil
	}
	return a.Scheduler.Start(ctx)
}

func (a *Application) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (
	*sqlx.DB,
	quota.Repository,
	fixturecache.Repository,
	collection.Repository,
	leagueconfig.Repository,
	error,
) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("db url empty, using in-memory repositories")
		return nil,
			memory.NewQuotaRepository(),
			memory.NewFixtureCacheRepository(),
			memory.NewCollectionJobRepository(),
			memory.NewLeagueConfigRepository(memory.SeedLeagueConfigs()),
			nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("connect db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db,
		postgres.NewQuotaRepository(db),
		postgres.NewFixtureCacheRepository(db),
		postgres.NewCollectionJobRepository(db),
		postgres.NewLeagueConfigRepository(db),
		nil
}

func buildScheduler(cfg config.Config, collectionSvc *usecase.CollectionService, logger *logging.Logger) (*scheduler.Scheduler, error) {
	if !cfg.APIFootballEnabled {
		logger.Info("scheduler tasks disabled", "reason", "API_FOOTBALL_ENABLED=false")
		return nil, nil
	}

	sched := scheduler.New(logger)

	if err := sched.Register(scheduler.Task{
		Name:     "daily-incremental",
		Interval: cfg.JobDailyInterval,
		Run: func(ctx context.Context) error {
			_, err := collectionSvc.CollectDailyIncremental(ctx, usecase.DailyIncrementalInput{
				TargetDate: time.Now().UTC(),
				CreatedBy:  "scheduler",
			})
			return err
		},
	}); err != nil {
		return nil, fmt.Errorf("register daily-incremental task: %w", err)
	}

	if err := sched.Register(scheduler.Task{
		Name:     "statistics-backfill",
		Interval: cfg.JobStatsInterval,
		Run: func(ctx context.Context) error {
			_, err := collectionSvc.CollectMissingStatistics(ctx, usecase.StatisticsBackfillInput{
				Limit:     cfg.JobStatsLimit,
				CreatedBy: "scheduler",
			})
			return err
		},
	}); err != nil {
		return nil, fmt.Errorf("register statistics-backfill task: %w", err)
	}

	return sched, nil
}
