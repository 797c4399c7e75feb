package usecase

import (
	"context"
	"time"
)

// ExternalFixture is one fixture as the upstream API describes it.
type ExternalFixture struct {
	ExternalID int64
	LeagueID   int64
	Season     int
	Date       time.Time
	Status     string
	HasLineups bool
	HasEvents  bool
	Payload    []byte
}

// FetchOutcome describes one attempted upstream call, successful or not.
// Every outcome is handed to the quota service verbatim so the request log
// stays complete.
type FetchOutcome struct {
	Endpoint       string
	Params         map[string]string
	Success        bool
	HTTPStatus     int
	ResultCount    int
	ResponseTimeMs int64
	ErrorMessage   string
}

// FixtureProvider abstracts the rate-limited third-party data API. Each
// method performs exactly one upstream call and always returns an outcome,
// even on error, so the caller can account for it.
type FixtureProvider interface {
	ListFixtureIDs(ctx context.Context, leagueID int64, season int) ([]int64, FetchOutcome, error)
	ListFixturesByDate(ctx context.Context, date time.Time) ([]ExternalFixture, FetchOutcome, error)
	FetchFixture(ctx context.Context, externalID int64) (ExternalFixture, FetchOutcome, error)
	FetchStatistics(ctx context.Context, externalID int64) ([]byte, FetchOutcome, error)
}
