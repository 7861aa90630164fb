package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_FiresOnInterval(t *testing.T) {
	var fired atomic.Int32
	s := New(func() { fired.Add(1) }, Config{UpdateInterval: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go s.Start(ctx)
	defer cancel()

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if fired.Load() < 1 {
		t.Fatal("scheduler never fired within interval")
	}
}

func TestScheduler_TriggerNowFiresImmediatelyAndResetsTimer(t *testing.T) {
	var fired atomic.Int32
	s := New(func() { fired.Add(1) }, Config{UpdateInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go s.Start(ctx)
	defer cancel()

	time.Sleep(20 * time.Millisecond) // let resetTimerLocked run from Start
	s.TriggerNow()

	if fired.Load() != 1 {
		t.Fatalf("fired = %d, want 1 after TriggerNow", fired.Load())
	}

	s.mu.Lock()
	next := s.nextFire
	s.mu.Unlock()
	if time.Until(next) < 30*time.Minute {
		t.Error("TriggerNow did not push the next scheduled fire far into the future")
	}
}

func TestScheduler_ZeroIntervalNeverFiresOnItsOwn(t *testing.T) {
	var fired atomic.Int32
	s := New(func() { fired.Add(1) }, Config{UpdateInterval: 0})

	ctx, cancel := context.WithCancel(context.Background())
	go s.Start(ctx)
	defer cancel()

	time.Sleep(150 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("fired = %d, want 0 with zero interval", fired.Load())
	}
}

func TestScheduler_StopHaltsLoop(t *testing.T) {
	var fired atomic.Int32
	s := New(func() { fired.Add(1) }, Config{UpdateInterval: 30 * time.Millisecond})

	ctx := context.Background()
	go s.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	countAtStop := fired.Load()
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != countAtStop {
		t.Errorf("fired count changed after Stop(): %d -> %d", countAtStop, fired.Load())
	}
}
