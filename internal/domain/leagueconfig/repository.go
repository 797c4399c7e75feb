package leagueconfig

import "context"

type Repository interface {
	ListActive(ctx context.Context) ([]Config, error)
	GetByLeagueID(ctx context.Context, leagueID int64) (Config, bool, error)

	// AddRequestsUsed bumps the aggregate usage counter for reporting.
	AddRequestsUsed(ctx context.Context, leagueID int64, delta int) error
}
