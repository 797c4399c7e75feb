package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/pradiptarana/fixturesync/internal/domain/leagueconfig"
	qb "github.com/pradiptarana/fixturesync/internal/platform/querybuilder"
)

type LeagueConfigRepository struct {
	db *sqlx.DB
}

func NewLeagueConfigRepository(db *sqlx.DB) *LeagueConfigRepository {
	return &LeagueConfigRepository{db: db}
}

func (r *LeagueConfigRepository) ListActive(ctx context.Context) ([]leagueconfig.Config, error) {
	query, args, err := qb.Select("*").From("league_collection_configs").
		Where(qb.Eq("active", true)).
		OrderBy("priority DESC", "league_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active league configs query: %w", err)
	}

	var rows []leagueConfigTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active league configs: %w", err)
	}

	out := make([]leagueconfig.Config, 0, len(rows))
	for _, row := range rows {
		config, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, config)
	}
	return out, nil
}

func (r *LeagueConfigRepository) GetByLeagueID(ctx context.Context, leagueID int64) (leagueconfig.Config, bool, error) {
	query, args, err := qb.Select("*").From("league_collection_configs").
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return leagueconfig.Config{}, false, fmt.Errorf("build select league config query: %w", err)
	}

	var row leagueConfigTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leagueconfig.Config{}, false, nil
		}
		return leagueconfig.Config{}, false, fmt.Errorf("select league config league=%d: %w", leagueID, err)
	}
	config, err := row.toDomain()
	if err != nil {
		return leagueconfig.Config{}, false, err
	}
	return config, true, nil
}

func (r *LeagueConfigRepository) AddRequestsUsed(ctx context.Context, leagueID int64, delta int) error {
	if delta == 0 {
		return nil
	}
	query, args, err := qb.Update("league_collection_configs").
		SetExpr("requests_used", "requests_used + ?", delta).
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add requests used query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add requests used league=%d: %w", leagueID, err)
	}
	return nil
}

type leagueConfigTableModel struct {
	LeagueID          int64  `db:"league_id"`
	Name              string `db:"name"`
	Priority          int    `db:"priority"`
	Active            bool   `db:"active"`
	CollectFixtures   bool   `db:"collect_fixtures"`
	CollectStatistics bool   `db:"collect_statistics"`
	CollectStandings  bool   `db:"collect_standings"`
	Seasons           []byte `db:"seasons"`
	RequestsUsed      int64  `db:"requests_used"`
}

func (m leagueConfigTableModel) toDomain() (leagueconfig.Config, error) {
	var seasons []int
	if len(m.Seasons) > 0 {
		if err := jsoniter.Unmarshal(m.Seasons, &seasons); err != nil {
			return leagueconfig.Config{}, fmt.Errorf("unmarshal seasons league=%d: %w", m.LeagueID, err)
		}
	}
	return leagueconfig.Config{
		LeagueID:          m.LeagueID,
		Name:              m.Name,
		Priority:          m.Priority,
		Active:            m.Active,
		CollectFixtures:   m.CollectFixtures,
		CollectStatistics: m.CollectStatistics,
		CollectStandings:  m.CollectStandings,
		Seasons:           seasons,
		RequestsUsed:      m.RequestsUsed,
	}, nil
}
