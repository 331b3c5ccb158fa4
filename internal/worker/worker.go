// Package worker drives the reminder sweep and the daily digest from the
// scheduler engine. Jobs run one at a time on the goroutine that calls Run.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sandeepkv93/studyd/internal/reminder"
	"github.com/sandeepkv93/studyd/internal/scheduler"
)

const (
	DefaultInterval   = 15 * time.Minute
	DefaultDigestHour = 7
)

var ErrInvalidConfig = errors.New("worker: invalid config")

// Runner is the work performed on each trigger. *reminder.Sweeper satisfies it.
type Runner interface {
	Sweep(ctx context.Context, now time.Time) (reminder.Result, error)
	SendDigests(ctx context.Context, now time.Time) (reminder.Result, error)
}

type Worker struct {
	runner        Runner
	engine        *scheduler.Engine
	interval      time.Duration
	digestHour    int
	digestEnabled bool
	loc           *time.Location
	now           func() time.Time
	logf          func(format string, args ...any)

	mu   sync.Mutex
	runs map[scheduler.Job]int
}

type Option func(*Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) { w.interval = d }
}

// WithDigest enables the daily digest at hour (0-23) local time.
func WithDigest(enabled bool, hour int) Option {
	return func(w *Worker) {
		w.digestEnabled = enabled
		w.digestHour = hour
	}
}

func WithLocation(loc *time.Location) Option {
	return func(w *Worker) {
		if loc != nil {
			w.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		if now != nil {
			w.now = now
		}
	}
}

func WithLogger(logf func(format string, args ...any)) Option {
	return func(w *Worker) {
		if logf != nil {
			w.logf = logf
		}
	}
}

func New(runner Runner, opts ...Option) (*Worker, error) {
	w := &Worker{
		runner:     runner,
		interval:   DefaultInterval,
		digestHour: DefaultDigestHour,
		loc:        time.Local,
		now:        time.Now,
		logf:       log.Printf,
		runs:       make(map[scheduler.Job]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	if runner == nil {
		return nil, fmt.Errorf("%w: runner is required", ErrInvalidConfig)
	}
	if w.interval <= 0 {
		return nil, fmt.Errorf("%w: sweep interval must be positive", ErrInvalidConfig)
	}
	if w.digestHour < 0 || w.digestHour > 23 {
		return nil, fmt.Errorf("%w: digest hour %d", ErrInvalidConfig, w.digestHour)
	}
	// One slot per recurring job, so a recurring trigger is never the one dropped.
	w.engine = scheduler.NewEngine(2, scheduler.WithClock(w.now))
	return w, nil
}

// NextDigestAt is the first hour:00 in loc strictly after now.
func NextDigestAt(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !at.After(local) {
		at = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return at
}

// Runs reports how many times job has completed, successfully or not.
func (w *Worker) Runs(job scheduler.Job) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs[job]
}

// Dropped is the number of triggers the engine discarded.
func (w *Worker) Dropped() uint64 {
	return w.engine.Dropped()
}

// RunOnce performs one sweep and, when enabled, one digest pass.
func (w *Worker) RunOnce(ctx context.Context) error {
	if err := w.run(ctx, scheduler.JobReminderSweep); err != nil {
		return err
	}
	if w.digestEnabled {
		return w.run(ctx, scheduler.JobDailyDigest)
	}
	return nil
}

// Run sweeps immediately and then every interval, and sends digests daily,
// until ctx is cancelled. A failed run is logged and the schedule continues.
// Run may be called once per Worker.
func (w *Worker) Run(ctx context.Context) error {
	w.engine.Start()
	defer w.engine.Stop()

	now := w.now()
	if err := w.schedule(scheduler.JobReminderSweep, now); err != nil {
		return err
	}
	if w.digestEnabled {
		if err := w.schedule(scheduler.JobDailyDigest, NextDigestAt(now, w.digestHour, w.loc)); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.logf("worker: stopping; dropped=%d", w.engine.Dropped())
			return nil
		case ev, ok := <-w.engine.C():
			if !ok {
				return nil
			}
			if err := w.run(ctx, ev.Job); err != nil {
				w.logf("worker: %s (%s): %v", ev.Job, ev.ID, err)
			}
			if ctx.Err() != nil {
				continue
			}
			if err := w.schedule(ev.Job, w.nextTrigger(ev)); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) nextTrigger(ev scheduler.JobEvent) time.Time {
	now := w.now()
	if ev.Job == scheduler.JobDailyDigest {
		return NextDigestAt(now, w.digestHour, w.loc)
	}
	next := ev.TriggerAt.Add(w.interval)
	if next.Before(now) {
		// A run overran its slot; skip the missed ones.
		return now
	}
	return next
}

func (w *Worker) schedule(job scheduler.Job, at time.Time) error {
	return w.engine.Schedule(scheduler.JobEvent{
		ID:        fmt.Sprintf("%s@%s", job, at.UTC().Format(time.RFC3339)),
		Job:       job,
		TriggerAt: at,
	})
}

func (w *Worker) run(ctx context.Context, job scheduler.Job) error {
	defer func() {
		w.mu.Lock()
		w.runs[job]++
		w.mu.Unlock()
	}()

	now := w.now()
	switch job {
	case scheduler.JobReminderSweep:
		_, err := w.runner.Sweep(ctx, now)
		return err
	case scheduler.JobDailyDigest:
		_, err := w.runner.SendDigests(ctx, now)
		return err
	default:
		return fmt.Errorf("%w: %q", scheduler.ErrInvalidJob, job)
	}
}
