package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pradiptarana/fixturesync/internal/domain/leagueconfig"
)

type LeagueConfigRepository struct {
	mu      sync.RWMutex
	configs map[int64]leagueconfig.Config
}

func NewLeagueConfigRepository(configs []leagueconfig.Config) *LeagueConfigRepository {
	byID := make(map[int64]leagueconfig.Config, len(configs))
	for _, cfg := range configs {
		byID[cfg.LeagueID] = cfg
	}
	return &LeagueConfigRepository{configs: byID}
}

func (r *LeagueConfigRepository) ListActive(_ context.Context) ([]leagueconfig.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leagueconfig.Config, 0, len(r.configs))
	for _, cfg := range r.configs {
		if cfg.Active {
			out = append(out, cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].LeagueID < out[j].LeagueID
	})
	return out, nil
}

func (r *LeagueConfigRepository) GetByLeagueID(_ context.Context, leagueID int64) (leagueconfig.Config, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[leagueID]
	return cfg, ok, nil
}

func (r *LeagueConfigRepository) AddRequestsUsed(_ context.Context, leagueID int64, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[leagueID]
	if !ok {
		return nil
	}
	cfg.RequestsUsed += int64(delta)
	r.configs[leagueID] = cfg
	return nil
}

// SeedLeagueConfigs returns a small default set for DB-less runs.
func SeedLeagueConfigs() []leagueconfig.Config {
	return []leagueconfig.Config{
		{LeagueID: 39, Name: "Premier League", Priority: 100, Active: true, CollectFixtures: true, CollectStatistics: true, CollectStandings: true, Seasons: []int{2023, 2024}},
		{LeagueID: 140, Name: "La Liga", Priority: 90, Active: true, CollectFixtures: true, CollectStatistics: true, CollectStandings: true, Seasons: []int{2023, 2024}},
		{LeagueID: 61, Name: "Ligue 1", Priority: 70, Active: true, CollectFixtures: true, CollectStatistics: false, CollectStandings: true, Seasons: []int{2024}},
		{LeagueID: 135, Name: "Serie A", Priority: 80, Active: false, CollectFixtures: true, CollectStatistics: true, CollectStandings: true, Seasons: []int{2024}},
	}
}
