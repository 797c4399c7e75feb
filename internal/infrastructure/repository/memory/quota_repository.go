package memory

import (
	"context"
	"sync"

	"github.com/pradiptarana/fixturesync/internal/domain/quota"
)

// QuotaRepository keeps ledgers and the request log in process memory. The
// mutex makes the log append and ledger increment one atomic unit, matching
// the transactional postgres implementation.
type QuotaRepository struct {
	mu      sync.Mutex
	ledgers map[string]quota.Ledger
	records []quota.RequestRecord
}

func NewQuotaRepository() *QuotaRepository {
	return &QuotaRepository{ledgers: make(map[string]quota.Ledger)}
}

func (r *QuotaRepository) GetOrCreateLedger(_ context.Context, date string, dailyLimit int) (quota.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(date, dailyLimit), nil
}

func (r *QuotaRepository) getOrCreateLocked(date string, dailyLimit int) quota.Ledger {
	if ledger, ok := r.ledgers[date]; ok {
		return ledger
	}
	ledger := quota.NewLedger(date, dailyLimit)
	r.ledgers[date] = ledger
	return ledger
}

func (r *QuotaRepository) RecordUsage(_ context.Context, update quota.UsageUpdate) (quota.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledger := r.getOrCreateLocked(update.Date, update.DailyLimit)
	r.records = append(r.records, update.Record)
	if update.Record.Counted() {
		ledger.Consume(update.Category, update.Record.RequestedAt)
		r.ledgers[update.Date] = ledger
	}
	return ledger, nil
}

func (r *QuotaRepository) GetLedger(_ context.Context, date string) (quota.Ledger, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, ok := r.ledgers[date]
	return ledger, ok, nil
}

// Records returns a copy of the request log, oldest first.
func (r *QuotaRepository) Records() []quota.RequestRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]quota.RequestRecord, len(r.records))
	copy(out, r.records)
	return out
}
