package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pradiptarana/fixturesync/internal/domain/fixturecache"
)

type FixtureCacheRepository struct {
	mu      sync.RWMutex
	entries map[int64]fixturecache.Entry
}

func NewFixtureCacheRepository() *FixtureCacheRepository {
	return &FixtureCacheRepository{entries: make(map[int64]fixturecache.Entry)}
}

func (r *FixtureCacheRepository) GetByExternalID(_ context.Context, externalFixtureID int64) (fixturecache.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[externalFixtureID]
	return entry, ok, nil
}

func (r *FixtureCacheRepository) Upsert(_ context.Context, update fixturecache.Update) (fixturecache.Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.entries[update.ExternalFixtureID]
	if !ok {
		entry := fixturecache.NewEntry(update)
		r.entries[update.ExternalFixtureID] = entry
		return entry, true, nil
	}

	merged, changed := fixturecache.Merge(existing, update)
	r.entries[update.ExternalFixtureID] = merged
	return merged, changed, nil
}

func (r *FixtureCacheRepository) FindPendingSync(_ context.Context, limit int) ([]fixturecache.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixturecache.Entry, 0, limit)
	for _, entry := range r.entries {
		if entry.HasBasicData && entry.LocalMatchID == nil {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalFixtureID < out[j].ExternalFixtureID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FixtureCacheRepository) FindMissingStatistics(_ context.Context, status string, prioritizedLeagueIDs []int64, limit int) ([]fixturecache.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prioritized := make(map[int64]bool, len(prioritizedLeagueIDs))
	for _, id := range prioritizedLeagueIDs {
		prioritized[id] = true
	}

	normalized := fixturecache.NormalizeStatus(status)
	out := make([]fixturecache.Entry, 0, limit)
	for _, entry := range r.entries {
		if entry.Status == normalized && !entry.HasStatistics {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := prioritized[out[i].LeagueID], prioritized[out[j].LeagueID]
		if pi != pj {
			return pi
		}
		if !out[i].FixtureDate.Equal(out[j].FixtureDate) {
			return out[i].FixtureDate.After(out[j].FixtureDate)
		}
		return out[i].ExternalFixtureID < out[j].ExternalFixtureID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FixtureCacheRepository) CountByLeagueSeason(_ context.Context, leagueID int64, season int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, entry := range r.entries {
		if entry.LeagueID == leagueID && entry.Season == season && entry.HasBasicData {
			count++
		}
	}
	return count, nil
}

// SetLocalMatchID emulates the downstream promotion collaborator: it links
// the cache row to a domain record and clears the dirty flag.
func (r *FixtureCacheRepository) SetLocalMatchID(_ context.Context, externalFixtureID int64, localMatchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[externalFixtureID]
	if !ok {
		return
	}
	entry.LocalMatchID = &localMatchID
	entry.NeedsUpdate = false
	r.entries[externalFixtureID] = entry
}
