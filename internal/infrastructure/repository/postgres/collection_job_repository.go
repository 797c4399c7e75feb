package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/pradiptarana/fixturesync/internal/domain/collection"
	qb "github.com/pradiptarana/fixturesync/internal/platform/querybuilder"
)

var terminalStatuses = []any{
	string(collection.StatusCompleted),
	string(collection.StatusFailed),
	string(collection.StatusCancelled),
	string(collection.StatusSkipped),
}

type CollectionJobRepository struct {
	db *sqlx.DB
}

func NewCollectionJobRepository(db *sqlx.DB) *CollectionJobRepository {
	return &CollectionJobRepository{db: db}
}

func (r *CollectionJobRepository) Create(ctx context.Context, job collection.Job) error {
	model, err := insertModelFromJob(job)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("collection_jobs", model, "")
	if err != nil {
		return fmt.Errorf("build insert job query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert job %s: %w", job.PublicID, err)
	}
	return nil
}

// Update persists the whole job row. Terminal rows are immutable: the WHERE
// clause refuses to touch them, and the caller gets an error instead of a
// silent overwrite.
func (r *CollectionJobRepository) Update(ctx context.Context, job collection.Job) error {
	countersJSON, err := marshalCounters(job.Counters)
	if err != nil {
		return fmt.Errorf("marshal job counters: %w", err)
	}

	builder := qb.Update("collection_jobs").
		Set("status", string(job.Status)).
		Set("progress", job.Progress).
		Set("counters", countersJSON).
		Set("error_details", nullableString(job.ErrorDetails)).
		Set("existing_count", job.ExistingCount).
		Set("started_at", job.StartedAt).
		Set("completed_at", job.CompletedAt).
		Where(
			qb.Eq("public_id", job.PublicID),
			qb.Expr("(status = ? OR status NOT IN ('COMPLETED', 'FAILED', 'CANCELLED', 'SKIPPED'))", string(job.Status)),
		)

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build update job query: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", job.PublicID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job %s rows affected: %w", job.PublicID, err)
	}
	if affected == 0 {
		return fmt.Errorf("job %s not found or already terminal", job.PublicID)
	}
	return nil
}

func (r *CollectionJobRepository) GetByPublicID(ctx context.Context, publicID string) (collection.Job, bool, error) {
	query, args, err := qb.Select("*").From("collection_jobs").
		Where(qb.Eq("public_id", publicID)).
		ToSQL()
	if err != nil {
		return collection.Job{}, false, fmt.Errorf("build select job query: %w", err)
	}

	var row collectionJobTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return collection.Job{}, false, nil
		}
		return collection.Job{}, false, fmt.Errorf("select job %s: %w", publicID, err)
	}
	job, err := row.toDomain()
	if err != nil {
		return collection.Job{}, false, err
	}
	return job, true, nil
}

func (r *CollectionJobRepository) List(ctx context.Context, limit int) ([]collection.Job, error) {
	query, args, err := qb.Select("*").From("collection_jobs").
		OrderBy("id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list jobs query: %w", err)
	}

	var rows []collectionJobTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	out := make([]collection.Job, 0, len(rows))
	for _, row := range rows {
		job, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, nil
}

func (r *CollectionJobRepository) GetStatus(ctx context.Context, publicID string) (collection.Status, bool, error) {
	query, args, err := qb.Select("status").From("collection_jobs").
		Where(qb.Eq("public_id", publicID)).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build select job status query: %w", err)
	}

	var status string
	if err := r.db.GetContext(ctx, &status, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select job status %s: %w", publicID, err)
	}
	return collection.Status(status), true, nil
}

func (r *CollectionJobRepository) LatestTerminalByScope(ctx context.Context, leagueID int64, season int) (collection.Job, bool, error) {
	query, args, err := qb.Select("*").From("collection_jobs").
		Where(
			qb.Eq("job_type", string(collection.JobTypeInitialHistorical)),
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.In("status", terminalStatuses),
		).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return collection.Job{}, false, fmt.Errorf("build select latest terminal job query: %w", err)
	}

	var row collectionJobTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return collection.Job{}, false, nil
		}
		return collection.Job{}, false, fmt.Errorf("select latest terminal job league=%d season=%d: %w", leagueID, season, err)
	}
	job, err := row.toDomain()
	if err != nil {
		return collection.Job{}, false, err
	}
	return job, true, nil
}

func (r *CollectionJobRepository) RequestCancel(ctx context.Context, publicID string) (bool, error) {
	query, args, err := qb.Update("collection_jobs").
		Set("status", string(collection.StatusCancelled)).
		Where(
			qb.Eq("public_id", publicID),
			qb.Expr("status NOT IN ('COMPLETED', 'FAILED', 'CANCELLED', 'SKIPPED')"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build cancel job query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("cancel job %s: %w", publicID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel job %s rows affected: %w", publicID, err)
	}
	if affected > 0 {
		return true, nil
	}

	_, found, err := r.GetByPublicID(ctx, publicID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("job %s not found", publicID)
	}
	return false, nil
}

func marshalCounters(counters collection.Counters) (string, error) {
	raw, err := jsoniter.Marshal(counters)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type collectionJobInsertModel struct {
	PublicID      string     `db:"public_id"`
	JobType       string     `db:"job_type"`
	Status        string     `db:"status"`
	LeagueID      int64      `db:"league_id"`
	Season        int        `db:"season"`
	DateFrom      *time.Time `db:"date_from"`
	DateTo        *time.Time `db:"date_to"`
	Progress      float64    `db:"progress"`
	Counters      string     `db:"counters"`
	ErrorDetails  *string    `db:"error_details"`
	ExistingCount int        `db:"existing_count"`
	ScheduledAt   time.Time  `db:"scheduled_at"`
	StartedAt     *time.Time `db:"started_at"`
	CompletedAt   *time.Time `db:"completed_at"`
	CreatedBy     string     `db:"created_by"`
}

func insertModelFromJob(job collection.Job) (collectionJobInsertModel, error) {
	countersJSON, err := marshalCounters(job.Counters)
	if err != nil {
		return collectionJobInsertModel{}, fmt.Errorf("marshal job counters: %w", err)
	}
	return collectionJobInsertModel{
		PublicID:      job.PublicID,
		JobType:       string(job.JobType),
		Status:        string(job.Status),
		LeagueID:      job.Scope.LeagueID,
		Season:        job.Scope.Season,
		DateFrom:      job.Scope.DateFrom,
		DateTo:        job.Scope.DateTo,
		Progress:      job.Progress,
		Counters:      countersJSON,
		ErrorDetails:  nullableString(job.ErrorDetails),
		ExistingCount: job.ExistingCount,
		ScheduledAt:   job.ScheduledAt.UTC(),
		StartedAt:     job.StartedAt,
		CompletedAt:   job.CompletedAt,
		CreatedBy:     job.CreatedBy,
	}, nil
}

type collectionJobTableModel struct {
	ID            int64          `db:"id"`
	PublicID      string         `db:"public_id"`
	JobType       string         `db:"job_type"`
	Status        string         `db:"status"`
	LeagueID      int64          `db:"league_id"`
	Season        int            `db:"season"`
	DateFrom      sql.NullTime   `db:"date_from"`
	DateTo        sql.NullTime   `db:"date_to"`
	Progress      float64        `db:"progress"`
	Counters      []byte         `db:"counters"`
	ErrorDetails  sql.NullString `db:"error_details"`
	ExistingCount int            `db:"existing_count"`
	ScheduledAt   time.Time      `db:"scheduled_at"`
	StartedAt     sql.NullTime   `db:"started_at"`
	CompletedAt   sql.NullTime   `db:"completed_at"`
	CreatedBy     string         `db:"created_by"`
}

func (m collectionJobTableModel) toDomain() (collection.Job, error) {
	var counters collection.Counters
	if len(m.Counters) > 0 {
		if err := jsoniter.Unmarshal(m.Counters, &counters); err != nil {
			return collection.Job{}, fmt.Errorf("unmarshal counters job=%s: %w", m.PublicID, err)
		}
	}
	return collection.Job{
		PublicID: m.PublicID,
		JobType:  collection.JobType(m.JobType),
		Scope: collection.Scope{
			LeagueID: m.LeagueID,
			Season:   m.Season,
			DateFrom: nullTimeToPtr(m.DateFrom),
			DateTo:   nullTimeToPtr(m.DateTo),
		},
		Status:        collection.Status(m.Status),
		Progress:      m.Progress,
		Counters:      counters,
		ErrorDetails:  m.ErrorDetails.String,
		ExistingCount: m.ExistingCount,
		ScheduledAt:   m.ScheduledAt,
		StartedAt:     nullTimeToPtr(m.StartedAt),
		CompletedAt:   nullTimeToPtr(m.CompletedAt),
		CreatedBy:     m.CreatedBy,
	}, nil
}
