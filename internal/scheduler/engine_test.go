package scheduler

import (
	"testing"
	"time"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule(DueEvent{ChoreID: "later", TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(DueEvent{ChoreID: "sooner", TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ChoreID != "sooner" || second.ChoreID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ChoreID, second.ChoreID)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	now := time.Now().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(DueEvent{
			ChoreID:   "sweep",
			TriggerAt: now,
		}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestScheduleValidatesTriggerTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(DueEvent{ChoreID: "bad"}); err != ErrInvalidTriggerTime {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
}

func TestNextCheckTimeRollsPastSlotToTomorrow(t *testing.T) {
	morning := time.Date(2026, time.February, 11, 6, 30, 0, 0, time.UTC)
	at := NextCheckTime(8, morning)
	if !at.Equal(time.Date(2026, time.February, 11, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected today's slot, got %v", at)
	}

	evening := time.Date(2026, time.February, 11, 20, 0, 0, 0, time.UTC)
	at = NextCheckTime(8, evening)
	if !at.Equal(time.Date(2026, time.February, 12, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected tomorrow's slot, got %v", at)
	}
}

func waitEvent(t *testing.T, ch <-chan DueEvent, timeout time.Duration) DueEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return DueEvent{}
	}
}
