package collection

import "context"

// Repository persists collection job rows.
type Repository interface {
	Create(ctx context.Context, job Job) error
	Update(ctx context.Context, job Job) error
	GetByPublicID(ctx context.Context, publicID string) (Job, bool, error)
	List(ctx context.Context, limit int) ([]Job, error)

	// GetStatus is the cheap read the run loop polls between iterations to
	// observe external cancellation.
	GetStatus(ctx context.Context, publicID string) (Status, bool, error)

	// LatestTerminalByScope returns the most recent finished historical job
	// for a league season. It tells a new run whether the scope completed
	// before or stopped partway and should resume.
	LatestTerminalByScope(ctx context.Context, leagueID int64, season int) (Job, bool, error)

	// RequestCancel flips a non-terminal job to CANCELLED. Returns false
	// when the job is already terminal.
	RequestCancel(ctx context.Context, publicID string) (bool, error)
}
