package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pradiptarana/fixturesync/internal/domain/fixturecache"
	qb "github.com/pradiptarana/fixturesync/internal/platform/querybuilder"
)

type FixtureCacheRepository struct {
	db *sqlx.DB
}

func NewFixtureCacheRepository(db *sqlx.DB) *FixtureCacheRepository {
	return &FixtureCacheRepository{db: db}
}

func (r *FixtureCacheRepository) GetByExternalID(ctx context.Context, externalFixtureID int64) (fixturecache.Entry, bool, error) {
	query, args, err := qb.Select("*").From("fixture_cache").
		Where(qb.Eq("external_fixture_id", externalFixtureID)).
		ToSQL()
	if err != nil {
		return fixturecache.Entry{}, false, fmt.Errorf("build select cache entry query: %w", err)
	}

	var row fixtureCacheTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixturecache.Entry{}, false, nil
		}
		return fixturecache.Entry{}, false, fmt.Errorf("select cache entry fixture=%d: %w", externalFixtureID, err)
	}
	return row.toDomain(), true, nil
}

// Upsert merges an update into the staged entry under a row lock, so the
// change detection that drives NeedsUpdate stays correct under concurrent
// jobs touching the same fixture.
func (r *FixtureCacheRepository) Upsert(ctx context.Context, update fixturecache.Update) (fixturecache.Entry, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fixturecache.Entry{}, false, fmt.Errorf("begin tx upsert cache entry: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Select("*").From("fixture_cache").
		Where(qb.Eq("external_fixture_id", update.ExternalFixtureID)).
		ToSQL()
	if err != nil {
		return fixturecache.Entry{}, false, fmt.Errorf("build select cache entry query: %w", err)
	}
	query += " FOR UPDATE"

	var existing fixtureCacheTableModel
	found := true
	if err := tx.GetContext(ctx, &existing, query, args...); err != nil {
		if !isNotFound(err) {
			return fixturecache.Entry{}, false, fmt.Errorf("select cache entry fixture=%d: %w", update.ExternalFixtureID, err)
		}
		found = false
	}

	var merged fixturecache.Entry
	var changed bool
	if found {
		merged, changed = fixturecache.Merge(existing.toDomain(), update)
		if err := r.updateEntry(ctx, tx, merged); err != nil {
			return fixturecache.Entry{}, false, err
		}
	} else {
		merged = fixturecache.NewEntry(update)
		changed = true
		if err := r.insertEntry(ctx, tx, merged); err != nil {
			return fixturecache.Entry{}, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return fixturecache.Entry{}, false, fmt.Errorf("commit upsert cache entry tx: %w", err)
	}
	return merged, changed, nil
}

func (r *FixtureCacheRepository) insertEntry(ctx context.Context, tx *sqlx.Tx, entry fixturecache.Entry) error {
	query, args, err := qb.InsertModel("fixture_cache", tableModelFromEntry(entry), "")
	if err != nil {
		return fmt.Errorf("build insert cache entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert cache entry fixture=%d: %w", entry.ExternalFixtureID, err)
	}
	return nil
}

func (r *FixtureCacheRepository) updateEntry(ctx context.Context, tx *sqlx.Tx, entry fixturecache.Entry) error {
	query, args, err := qb.Update("fixture_cache").
		Set("local_match_id", entry.LocalMatchID).
		Set("league_id", entry.LeagueID).
		Set("season", entry.Season).
		Set("fixture_date", entry.FixtureDate.UTC()).
		Set("status", entry.Status).
		Set("has_basic_data", entry.HasBasicData).
		Set("has_statistics", entry.HasStatistics).
		Set("has_lineups", entry.HasLineups).
		Set("has_events", entry.HasEvents).
		Set("fixture_payload", nullableBytes(entry.FixturePayload)).
		Set("statistics_payload", nullableBytes(entry.StatisticsPayload)).
		Set("last_synced", entry.LastSynced.UTC()).
		Set("needs_update", entry.NeedsUpdate).
		Where(qb.Eq("external_fixture_id", entry.ExternalFixtureID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update cache entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update cache entry fixture=%d: %w", entry.ExternalFixtureID, err)
	}
	return nil
}

func (r *FixtureCacheRepository) FindPendingSync(ctx context.Context, limit int) ([]fixturecache.Entry, error) {
	query, args, err := qb.Select("*").From("fixture_cache").
		Where(
			qb.Eq("has_basic_data", true),
			qb.IsNull("local_match_id"),
		).
		OrderBy("external_fixture_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select pending sync query: %w", err)
	}

	var rows []fixtureCacheTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select pending sync entries: %w", err)
	}
	return toDomainEntries(rows), nil
}

// FindMissingStatistics returns finished fixtures lacking statistics,
// prioritized leagues first and newest fixtures within each group.
func (r *FixtureCacheRepository) FindMissingStatistics(ctx context.Context, status string, prioritizedLeagueIDs []int64, limit int) ([]fixturecache.Entry, error) {
	normalized := fixturecache.NormalizeStatus(status)

	out := make([]fixtureCacheTableModel, 0, limit)
	if len(prioritizedLeagueIDs) > 0 {
		leagueValues := make([]any, 0, len(prioritizedLeagueIDs))
		for _, id := range prioritizedLeagueIDs {
			leagueValues = append(leagueValues, id)
		}
		query, args, err := qb.Select("*").From("fixture_cache").
			Where(
				qb.Eq("status", normalized),
				qb.Eq("has_statistics", false),
				qb.In("league_id", leagueValues),
			).
			OrderBy("fixture_date DESC", "external_fixture_id").
			Limit(limit).
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select prioritized missing statistics query: %w", err)
		}
		if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
			return nil, fmt.Errorf("select prioritized missing statistics: %w", err)
		}
	}

	if remaining := limit - len(out); remaining > 0 {
		conditions := []qb.Condition{
			qb.Eq("status", normalized),
			qb.Eq("has_statistics", false),
		}
		if len(out) > 0 {
			seen := make([]any, 0, len(out))
			for _, row := range out {
				seen = append(seen, row.ExternalFixtureID)
			}
			conditions = append(conditions, qb.Expr("external_fixture_id NOT IN "+inPlaceholderList(len(seen)), seen...))
		}
		query, args, err := qb.Select("*").From("fixture_cache").
			Where(conditions...).
			OrderBy("fixture_date DESC", "external_fixture_id").
			Limit(remaining).
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select missing statistics query: %w", err)
		}
		var rest []fixtureCacheTableModel
		if err := r.db.SelectContext(ctx, &rest, query, args...); err != nil {
			return nil, fmt.Errorf("select missing statistics: %w", err)
		}
		out = append(out, rest...)
	}

	return toDomainEntries(out), nil
}

func (r *FixtureCacheRepository) CountByLeagueSeason(ctx context.Context, leagueID int64, season int) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("fixture_cache").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.Eq("has_basic_data", true),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count cached fixtures query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count cached fixtures league=%d season=%d: %w", leagueID, season, err)
	}
	return count, nil
}

func inPlaceholderList(n int) string {
	out := "(?"
	for i := 1; i < n; i++ {
		out += ", ?"
	}
	return out + ")"
}

func nullableBytes(value []byte) []byte {
	if len(value) == 0 {
		return nil
	}
	return value
}

func toDomainEntries(rows []fixtureCacheTableModel) []fixturecache.Entry {
	out := make([]fixturecache.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

type fixtureCacheTableModel struct {
	ExternalFixtureID int64          `db:"external_fixture_id"`
	LocalMatchID      sql.NullString `db:"local_match_id"`
	LeagueID          int64          `db:"league_id"`
	Season            int            `db:"season"`
	FixtureDate       time.Time      `db:"fixture_date"`
	Status            string         `db:"status"`
	HasBasicData      bool           `db:"has_basic_data"`
	HasStatistics     bool           `db:"has_statistics"`
	HasLineups        bool           `db:"has_lineups"`
	HasEvents         bool           `db:"has_events"`
	FixturePayload    []byte         `db:"fixture_payload"`
	StatisticsPayload []byte         `db:"statistics_payload"`
	LastSynced        time.Time      `db:"last_synced"`
	NeedsUpdate       bool           `db:"needs_update"`
}

func (m fixtureCacheTableModel) toDomain() fixturecache.Entry {
	entry := fixturecache.Entry{
		ExternalFixtureID: m.ExternalFixtureID,
		LeagueID:          m.LeagueID,
		Season:            m.Season,
		FixtureDate:       m.FixtureDate,
		Status:            m.Status,
		HasBasicData:      m.HasBasicData,
		HasStatistics:     m.HasStatistics,
		HasLineups:        m.HasLineups,
		HasEvents:         m.HasEvents,
		FixturePayload:    m.FixturePayload,
		StatisticsPayload: m.StatisticsPayload,
		LastSynced:        m.LastSynced,
		NeedsUpdate:       m.NeedsUpdate,
	}
	if m.LocalMatchID.Valid {
		value := m.LocalMatchID.String
		entry.LocalMatchID = &value
	}
	return entry
}

func tableModelFromEntry(entry fixturecache.Entry) fixtureCacheInsertModel {
	model := fixtureCacheInsertModel{
		ExternalFixtureID: entry.ExternalFixtureID,
		LeagueID:          entry.LeagueID,
		Season:            entry.Season,
		FixtureDate:       entry.FixtureDate.UTC(),
		Status:            entry.Status,
		HasBasicData:      entry.HasBasicData,
		HasStatistics:     entry.HasStatistics,
		HasLineups:        entry.HasLineups,
		HasEvents:         entry.HasEvents,
		FixturePayload:    nullableBytes(entry.FixturePayload),
		StatisticsPayload: nullableBytes(entry.StatisticsPayload),
		LastSynced:        entry.LastSynced.UTC(),
		NeedsUpdate:       entry.NeedsUpdate,
	}
	if entry.LocalMatchID != nil {
		model.LocalMatchID = entry.LocalMatchID
	}
	return model
}

type fixtureCacheInsertModel struct {
	ExternalFixtureID int64     `db:"external_fixture_id"`
	LocalMatchID      *string   `db:"local_match_id"`
	LeagueID          int64     `db:"league_id"`
	Season            int       `db:"season"`
	FixtureDate       time.Time `db:"fixture_date"`
	Status            string    `db:"status"`
	HasBasicData      bool      `db:"has_basic_data"`
	HasStatistics     bool      `db:"has_statistics"`
	HasLineups        bool      `db:"has_lineups"`
	HasEvents         bool      `db:"has_events"`
	FixturePayload    []byte    `db:"fixture_payload"`
	StatisticsPayload []byte    `db:"statistics_payload"`
	LastSynced        time.Time `db:"last_synced"`
	NeedsUpdate       bool      `db:"needs_update"`
}
