package fixturecache

import "context"

// Repository is the deduplicating staging store for fetched fixture data.
type Repository interface {
	GetByExternalID(ctx context.Context, externalFixtureID int64) (Entry, bool, error)

	// Upsert merges the update into the stored entry (creating it on first
	// sight) and reports whether stored content changed.
	Upsert(ctx context.Context, update Update) (Entry, bool, error)

	// FindPendingSync lists entries with basic data that the promotion
	// collaborator has not yet linked to a local match record.
	FindPendingSync(ctx context.Context, limit int) ([]Entry, error)

	// FindMissingStatistics lists entries in the given status without
	// statistics, prioritized leagues first, then most recent fixture date.
	FindMissingStatistics(ctx context.Context, status string, prioritizedLeagueIDs []int64, limit int) ([]Entry, error)

	// CountByLeagueSeason reports how many fixtures of a scope are staged.
	CountByLeagueSeason(ctx context.Context, leagueID int64, season int) (int, error)
}
