package fixturecache

import (
	"bytes"
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

// Entry is one deduplicated staging row keyed by the provider's fixture id.
// LocalMatchID is set by the downstream promotion step, never here.
type Entry struct {
	ExternalFixtureID int64
	LocalMatchID      *string
	LeagueID          int64
	Season            int
	FixtureDate       time.Time
	Status            string
	HasBasicData      bool
	HasStatistics     bool
	HasLineups        bool
	HasEvents         bool
	FixturePayload    []byte
	StatisticsPayload []byte
	LastSynced        time.Time
	NeedsUpdate       bool
}

// Update carries one fetched slice of fixture data into the cache. Only the
// fields a payload actually supplies are merged.
type Update struct {
	ExternalFixtureID int64
	LeagueID          int64
	Season            int
	FixtureDate       time.Time
	Status            string
	FixturePayload    []byte
	StatisticsPayload []byte
	HasLineups        bool
	HasEvents         bool
	SyncedAt          time.Time
}

// Merge folds an update into an existing entry and reports whether stored
// content changed. Byte-identical payloads leave the entry untouched apart
// from LastSynced, so repeated fetches stay idempotent.
func Merge(existing Entry, update Update) (Entry, bool) {
	merged := existing
	merged.ExternalFixtureID = update.ExternalFixtureID
	changed := false

	if update.LeagueID != 0 && update.LeagueID != merged.LeagueID {
		merged.LeagueID = update.LeagueID
		changed = true
	}
	if update.Season != 0 && update.Season != merged.Season {
		merged.Season = update.Season
		changed = true
	}
	if !update.FixtureDate.IsZero() && !update.FixtureDate.Equal(merged.FixtureDate) {
		merged.FixtureDate = update.FixtureDate
		changed = true
	}
	if status := NormalizeStatus(update.Status); update.Status != "" && status != merged.Status {
		merged.Status = status
		changed = true
	}

	if len(update.FixturePayload) > 0 {
		if !merged.HasBasicData || !bytes.Equal(merged.FixturePayload, update.FixturePayload) {
			merged.FixturePayload = update.FixturePayload
			merged.HasBasicData = true
			changed = true
		}
	}
	if len(update.StatisticsPayload) > 0 {
		if !merged.HasStatistics || !bytes.Equal(merged.StatisticsPayload, update.StatisticsPayload) {
			merged.StatisticsPayload = update.StatisticsPayload
			merged.HasStatistics = true
			changed = true
		}
	}
	if update.HasLineups && !merged.HasLineups {
		merged.HasLineups = true
		changed = true
	}
	if update.HasEvents && !merged.HasEvents {
		merged.HasEvents = true
		changed = true
	}

	merged.LastSynced = update.SyncedAt.UTC()
	if changed {
		// Dirty until the promotion collaborator consumes the new state.
		merged.NeedsUpdate = true
	}
	return merged, changed
}

// NewEntry stages a first-seen fixture from an update.
func NewEntry(update Update) Entry {
	entry, _ := Merge(Entry{ExternalFixtureID: update.ExternalFixtureID, Status: StatusScheduled}, update)
	return entry
}
