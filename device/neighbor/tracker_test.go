package neighbor

import (
	"testing"
	"time"
)

func TestTracker_TouchRecordsAndUpdates(t *testing.T) {
	tr := New(Config{})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.nowFn = func() time.Time { return base }

	tr.Touch("R2")
	snap := tr.Snapshot()
	if !snap["R2"].Equal(base) {
		t.Fatalf("LastSeen = %v, want %v", snap["R2"], base)
	}

	later := base.Add(time.Minute)
	tr.nowFn = func() time.Time { return later }
	tr.Touch("R2")

	snap = tr.Snapshot()
	if !snap["R2"].Equal(later) {
		t.Errorf("LastSeen after second touch = %v, want %v", snap["R2"], later)
	}
}

func TestTracker_NeverExpiresEntries(t *testing.T) {
	tr := New(Config{})
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.nowFn = func() time.Time { return base }
	tr.Touch("R3")

	// Advance the clock far past any plausible timeout. Nothing in Tracker
	// reacts to the passage of time on its own.
	tr.nowFn = func() time.Time { return base.Add(365 * 24 * time.Hour) }

	snap := tr.Snapshot()
	if _, ok := snap["R3"]; !ok {
		t.Error("R3 was removed from the tracker; Tracker must never expire entries")
	}
}

func TestTracker_SnapshotIsDefensiveCopy(t *testing.T) {
	tr := New(Config{})
	tr.Touch("R4")
	snap := tr.Snapshot()
	delete(snap, "R4")

	if _, ok := tr.Snapshot()["R4"]; !ok {
		t.Error("mutating Snapshot() result affected the tracker")
	}
}
