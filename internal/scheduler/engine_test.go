package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(JobEvent{ID: "digest", Job: JobDailyDigest, TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule digest: %v", err)
	}
	if err := engine.Schedule(JobEvent{ID: "sweep", Job: JobReminderSweep, TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sweep: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ID != "sweep" || second.ID != "digest" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
	if first.Job != JobReminderSweep {
		t.Fatalf("job = %q", first.Job)
	}
}

func TestEngineKeepsScheduleOrderForEqualTriggers(t *testing.T) {
	engine := NewEngine(8)
	at := time.Now().UTC().Add(20 * time.Millisecond)
	for _, id := range []string{"a", "b", "c"} {
		if err := engine.Schedule(JobEvent{ID: id, Job: JobReminderSweep, TriggerAt: at}); err != nil {
			t.Fatalf("schedule %s: %v", id, err)
		}
	}
	if engine.Pending() != 3 {
		t.Fatalf("pending = %d, want 3", engine.Pending())
	}
	engine.Start()
	defer engine.Stop()

	for _, want := range []string{"a", "b", "c"} {
		if got := waitEvent(t, engine.C(), time.Second); got.ID != want {
			t.Fatalf("got %s, want %s", got.ID, want)
		}
	}
}

func TestEnginePastTriggerFiresImmediately(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	if err := engine.Schedule(JobEvent{ID: "late", Job: JobDailyDigest, TriggerAt: time.Now().Add(-time.Hour)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if got := waitEvent(t, engine.C(), 200*time.Millisecond); got.ID != "late" {
		t.Fatalf("got %s", got.ID)
	}
}

func TestEngineComparesAgainstConfiguredClock(t *testing.T) {
	ahead := func() time.Time { return time.Now().Add(time.Hour) }
	engine := NewEngine(1, WithClock(ahead))
	engine.Start()
	defer engine.Stop()

	// Half an hour from the wall clock is already past on the engine's clock.
	if err := engine.Schedule(JobEvent{ID: "due", Job: JobReminderSweep, TriggerAt: time.Now().Add(30 * time.Minute)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if got := waitEvent(t, engine.C(), 200*time.Millisecond); got.ID != "due" {
		t.Fatalf("got %s", got.ID)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	at := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(JobEvent{ID: "sweep", Job: JobReminderSweep, TriggerAt: at}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestScheduleValidatesEvent(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(JobEvent{ID: "bad", Job: JobReminderSweep}); !errors.Is(err, ErrInvalidTriggerTime) {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
	if err := engine.Schedule(JobEvent{ID: "bad", Job: "cleanup", TriggerAt: time.Now()}); !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("expected ErrInvalidJob, got %v", err)
	}
}

func TestStopClosesChannelAndRejectsSchedule(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()
	engine.Stop()

	select {
	case _, ok := <-engine.C():
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed after Stop")
	}
	if err := engine.Schedule(JobEvent{ID: "x", Job: JobReminderSweep, TriggerAt: time.Now()}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func waitEvent(t *testing.T, ch <-chan JobEvent, timeout time.Duration) JobEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return JobEvent{}
	}
}
