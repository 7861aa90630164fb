package table

import "testing"

func TestNew_SeedsSelf(t *testing.T) {
	tb := New("R1")
	d, ok := tb.Distance("R1")
	if !ok || d != 0 {
		t.Fatalf("Distance(R1) = (%d, %v), want (0, true)", d, ok)
	}
}

func TestApplyBroadcast_AdoptsUnknownEntry(t *testing.T) {
	tb := New("R1")
	tb.ApplyBroadcast(map[string]int{"R2": 0}, 1, 4002)

	d, ok := tb.Distance("R2")
	if !ok || d != 1 {
		t.Fatalf("Distance(R2) = (%d, %v), want (1, true)", d, ok)
	}
	port, ok := tb.RouteFor("R2")
	if !ok || port != 4002 {
		t.Fatalf("RouteFor(R2) = (%d, %v), want (4002, true)", port, ok)
	}
	if !tb.ConsumeDirty() {
		t.Error("ConsumeDirty() = false, want true after a change")
	}
	if tb.ConsumeDirty() {
		t.Error("ConsumeDirty() = true on second call, want false (already consumed)")
	}
}

func TestApplyBroadcast_FirstWriteWinsOnTie(t *testing.T) {
	tb := New("R1")
	tb.ApplyBroadcast(map[string]int{"R3": 1}, 1, 4002) // via R2, distance 2
	tb.ConsumeDirty()

	// A second, equal-cost path through a different endpoint must not replace it.
	tb.ApplyBroadcast(map[string]int{"R3": 1}, 1, 4004)

	port, _ := tb.RouteFor("R3")
	if port != 4002 {
		t.Errorf("RouteFor(R3) = %d, want 4002 (first path wins)", port)
	}
	if tb.ConsumeDirty() {
		t.Error("ConsumeDirty() = true, want false (tie should not mark dirty)")
	}
}

func TestApplyBroadcast_ShorterPathReplaces(t *testing.T) {
	tb := New("R1")
	tb.ApplyBroadcast(map[string]int{"R3": 2}, 1, 4002) // distance 3
	tb.ConsumeDirty()

	tb.ApplyBroadcast(map[string]int{"R3": 0}, 1, 4006) // distance 1, shorter

	d, _ := tb.Distance("R3")
	if d != 1 {
		t.Errorf("Distance(R3) = %d, want 1", d)
	}
	port, _ := tb.RouteFor("R3")
	if port != 4006 {
		t.Errorf("RouteFor(R3) = %d, want 4006", port)
	}
	if !tb.ConsumeDirty() {
		t.Error("ConsumeDirty() = false, want true after improvement")
	}
}

func TestApplyBroadcast_SelfAdvertisedEntryNeverChanges(t *testing.T) {
	tb := New("R1")
	tb.ApplyBroadcast(map[string]int{"R1": 0}, 1, 4002)

	d, _ := tb.Distance("R1")
	if d != 0 {
		t.Errorf("Distance(R1) = %d, want 0 (self distance never changes)", d)
	}
	if tb.ConsumeDirty() {
		t.Error("ConsumeDirty() = true, want false (self entry should not mark dirty)")
	}
}

func TestSnapshot_IsDefensiveCopy(t *testing.T) {
	tb := New("R1")
	snap := tb.Snapshot()
	snap["R2"] = 99

	if _, ok := tb.Distance("R2"); ok {
		t.Error("mutating Snapshot() result affected the table")
	}
}
