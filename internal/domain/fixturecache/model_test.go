package fixturecache

import (
	"testing"
	"time"
)

func TestMerge_IdenticalPayloadIsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	update := Update{
		ExternalFixtureID: 1001,
		LeagueID:          39,
		Season:            2024,
		FixtureDate:       now.Add(-24 * time.Hour),
		Status:            "FINISHED",
		FixturePayload:    []byte(`{"id":1001,"score":"2-1"}`),
		SyncedAt:          now,
	}

	entry := NewEntry(update)
	if !entry.HasBasicData {
		t.Fatal("expected basic data flag after first upsert")
	}
	if !entry.NeedsUpdate {
		t.Fatal("expected needs_update after first upsert")
	}

	entry.NeedsUpdate = false // promotion collaborator consumed it

	merged, changed := Merge(entry, update)
	if changed {
		t.Fatal("identical payload must not report a change")
	}
	if merged.NeedsUpdate {
		t.Fatal("identical payload must not re-dirty the entry")
	}
}

func TestMerge_SupersetUpdatesOnlyNewFields(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	base := NewEntry(Update{
		ExternalFixtureID: 2002,
		LeagueID:          61,
		Season:            2024,
		Status:            "FINISHED",
		FixturePayload:    []byte(`{"id":2002}`),
		SyncedAt:          now,
	})
	base.NeedsUpdate = false

	merged, changed := Merge(base, Update{
		ExternalFixtureID: 2002,
		StatisticsPayload: []byte(`{"shots":12}`),
		SyncedAt:          now.Add(time.Minute),
	})
	if !changed {
		t.Fatal("statistics payload should register as a change")
	}
	if !merged.NeedsUpdate {
		t.Fatal("expected dirty flag after new statistics")
	}
	if !merged.HasStatistics {
		t.Fatal("expected statistics flag")
	}
	if string(merged.FixturePayload) != `{"id":2002}` {
		t.Fatalf("fixture payload must be untouched, got %s", merged.FixturePayload)
	}
	if merged.LeagueID != 61 || merged.Season != 2024 {
		t.Fatalf("scope fields must be untouched, got league=%d season=%d", merged.LeagueID, merged.Season)
	}
}

func TestMerge_StatusChangeDirtiesEntry(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	base := NewEntry(Update{
		ExternalFixtureID: 3003,
		Status:            "LIVE",
		FixturePayload:    []byte(`{"id":3003,"minute":80}`),
		SyncedAt:          now,
	})
	base.NeedsUpdate = false

	merged, changed := Merge(base, Update{
		ExternalFixtureID: 3003,
		Status:            "finished",
		FixturePayload:    []byte(`{"id":3003,"minute":90}`),
		SyncedAt:          now.Add(time.Minute),
	})
	if !changed || !merged.NeedsUpdate {
		t.Fatal("status/score change must dirty the entry")
	}
	if merged.Status != StatusFinished {
		t.Fatalf("expected normalized FINISHED status, got %s", merged.Status)
	}
}

func TestIsFinishedStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []string{"FINISHED", "ft", " AET "} {
		if !IsFinishedStatus(status) {
			t.Errorf("expected %q to be finished", status)
		}
	}
	if IsFinishedStatus("LIVE") {
		t.Error("LIVE must not be finished")
	}
}
