package quota

import "context"

// UsageUpdate is the atomic unit recorded per attempted external call: the
// audit row always lands, and when the record is counted the ledger
// increment commits in the same transaction.
type UsageUpdate struct {
	Date       string
	DailyLimit int
	Record     RequestRecord
	Category   Category
}

// Repository persists daily ledgers and the append-only request log.
type Repository interface {
	// GetOrCreateLedger returns the ledger for the date, creating it with a
	// zeroed usage row when absent. Concurrent first access must yield
	// exactly one row (upsert-on-conflict semantics).
	GetOrCreateLedger(ctx context.Context, date string, dailyLimit int) (Ledger, error)

	// RecordUsage appends the request record and, when Record.Counted(),
	// increments the ledger atomically. Returns the post-update ledger.
	RecordUsage(ctx context.Context, update UsageUpdate) (Ledger, error)

	// GetLedger reads an existing ledger without creating one.
	GetLedger(ctx context.Context, date string) (Ledger, bool, error)
}
