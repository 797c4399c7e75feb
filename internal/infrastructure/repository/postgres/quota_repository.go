package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/pradiptarana/fixturesync/internal/domain/quota"
	qb "github.com/pradiptarana/fixturesync/internal/platform/querybuilder"
)

type QuotaRepository struct {
	db *sqlx.DB
}

func NewQuotaRepository(db *sqlx.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

func (r *QuotaRepository) GetOrCreateLedger(ctx context.Context, date string, dailyLimit int) (quota.Ledger, error) {
	if err := r.ensureLedger(ctx, r.db, date, dailyLimit); err != nil {
		return quota.Ledger{}, err
	}
	return r.selectLedger(ctx, r.db, date)
}

// RecordUsage appends the audit row and applies the ledger increment in one
// transaction, so the request log and the counters can never drift apart.
func (r *QuotaRepository) RecordUsage(ctx context.Context, update quota.UsageUpdate) (quota.Ledger, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return quota.Ledger{}, fmt.Errorf("begin tx record usage: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := r.ensureLedger(ctx, tx, update.Date, update.DailyLimit); err != nil {
		return quota.Ledger{}, err
	}

	paramsJSON, err := marshalParams(update.Record.Params)
	if err != nil {
		return quota.Ledger{}, fmt.Errorf("marshal request params: %w", err)
	}
	logModel := requestLogInsertModel{
		Endpoint:       update.Record.Endpoint,
		Params:         paramsJSON,
		Success:        update.Record.Success,
		ResultCount:    update.Record.ResultCount,
		HTTPStatus:     update.Record.HTTPStatus,
		ErrorMessage:   nullableString(update.Record.ErrorMessage),
		ResponseTimeMs: update.Record.ResponseTimeMs,
		APIVersion:     update.Record.APIVersion,
		RequestedAt:    update.Record.RequestedAt.UTC(),
	}
	query, args, err := qb.InsertModel("request_log", logModel, "")
	if err != nil {
		return quota.Ledger{}, fmt.Errorf("build insert request log query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return quota.Ledger{}, fmt.Errorf("insert request log endpoint=%s: %w", update.Record.Endpoint, err)
	}

	if update.Record.Counted() {
		categoryColumn := categoryColumnFor(update.Category)
		query, args, err := qb.Update("quota_ledgers").
			SetExpr("requests_used", "requests_used + 1").
			SetExpr("requests_remaining", "GREATEST(daily_limit - requests_used - 1, 0)").
			SetExpr(categoryColumn, categoryColumn+" + 1").
			Set("last_updated", update.Record.RequestedAt.UTC()).
			Where(qb.Eq("date", update.Date)).
			ToSQL()
		if err != nil {
			return quota.Ledger{}, fmt.Errorf("build increment ledger query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return quota.Ledger{}, fmt.Errorf("increment ledger date=%s: %w", update.Date, err)
		}
	}

	ledger, err := r.selectLedger(ctx, tx, update.Date)
	if err != nil {
		return quota.Ledger{}, err
	}
	if err := tx.Commit(); err != nil {
		return quota.Ledger{}, fmt.Errorf("commit record usage tx: %w", err)
	}
	return ledger, nil
}

func (r *QuotaRepository) GetLedger(ctx context.Context, date string) (quota.Ledger, bool, error) {
	ledger, err := r.selectLedger(ctx, r.db, date)
	if err != nil {
		if isNotFound(err) {
			return quota.Ledger{}, false, nil
		}
		return quota.Ledger{}, false, err
	}
	return ledger, true, nil
}

type sqlxQuerier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

func (r *QuotaRepository) ensureLedger(ctx context.Context, q sqlxQuerier, date string, dailyLimit int) error {
	model := quotaLedgerInsertModel{
		Date:              date,
		DailyLimit:        dailyLimit,
		RequestsRemaining: dailyLimit,
		LastUpdated:       time.Now().UTC(),
	}
	query, args, err := qb.InsertModel("quota_ledgers", model, "ON CONFLICT (date) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build ensure ledger query: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("ensure ledger date=%s: %w", date, err)
	}
	return nil
}

func (r *QuotaRepository) selectLedger(ctx context.Context, q sqlxQuerier, date string) (quota.Ledger, error) {
	query, args, err := qb.Select("*").From("quota_ledgers").
		Where(qb.Eq("date", date)).
		ToSQL()
	if err != nil {
		return quota.Ledger{}, fmt.Errorf("build select ledger query: %w", err)
	}

	var row quotaLedgerTableModel
	if err := q.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return quota.Ledger{}, err
		}
		return quota.Ledger{}, fmt.Errorf("select ledger date=%s: %w", date, err)
	}
	return row.toDomain(), nil
}

func categoryColumnFor(category quota.Category) string {
	switch category {
	case quota.CategoryFixtures:
		return "fixtures_requests"
	case quota.CategoryStatistics:
		return "statistics_requests"
	case quota.CategoryStandings:
		return "standings_requests"
	default:
		return "other_requests"
	}
}

func marshalParams(params map[string]string) (string, error) {
	if len(params) == 0 {
		return "{}", nil
	}
	raw, err := jsoniter.Marshal(params)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type quotaLedgerInsertModel struct {
	Date              string    `db:"date"`
	DailyLimit        int       `db:"daily_limit"`
	RequestsUsed      int       `db:"requests_used"`
	RequestsRemaining int       `db:"requests_remaining"`
	LastUpdated       time.Time `db:"last_updated"`
}

type quotaLedgerTableModel struct {
	Date               string    `db:"date"`
	DailyLimit         int       `db:"daily_limit"`
	RequestsUsed       int       `db:"requests_used"`
	RequestsRemaining  int       `db:"requests_remaining"`
	FixturesRequests   int       `db:"fixtures_requests"`
	StatisticsRequests int       `db:"statistics_requests"`
	StandingsRequests  int       `db:"standings_requests"`
	OtherRequests      int       `db:"other_requests"`
	LastUpdated        time.Time `db:"last_updated"`
}

func (m quotaLedgerTableModel) toDomain() quota.Ledger {
	return quota.Ledger{
		Date:               m.Date,
		DailyLimit:         m.DailyLimit,
		RequestsUsed:       m.RequestsUsed,
		RequestsRemaining:  m.RequestsRemaining,
		FixturesRequests:   m.FixturesRequests,
		StatisticsRequests: m.StatisticsRequests,
		StandingsRequests:  m.StandingsRequests,
		OtherRequests:      m.OtherRequests,
		LastUpdated:        m.LastUpdated,
	}
}

type requestLogInsertModel struct {
	Endpoint       string    `db:"endpoint"`
	Params         string    `db:"params"`
	Success        bool      `db:"success"`
	ResultCount    int       `db:"result_count"`
	HTTPStatus     int       `db:"http_status"`
	ErrorMessage   *string   `db:"error_message"`
	ResponseTimeMs int64     `db:"response_time_ms"`
	APIVersion     string    `db:"api_version"`
	RequestedAt    time.Time `db:"requested_at"`
}
