package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/studyd/internal/reminder"
	"github.com/sandeepkv93/studyd/internal/scheduler"
)

type fakeRunner struct {
	mu         sync.Mutex
	sweeps     int
	digests    int
	active     int32
	maxActive  int32
	sweepDelay time.Duration
	sweepErr   error
}

func (f *fakeRunner) enter() func() {
	n := atomic.AddInt32(&f.active, 1)
	for {
		cur := atomic.LoadInt32(&f.maxActive)
		if n <= cur || atomic.CompareAndSwapInt32(&f.maxActive, cur, n) {
			break
		}
	}
	return func() { atomic.AddInt32(&f.active, -1) }
}

func (f *fakeRunner) Sweep(context.Context, time.Time) (reminder.Result, error) {
	defer f.enter()()
	time.Sleep(f.sweepDelay)
	f.mu.Lock()
	f.sweeps++
	f.mu.Unlock()
	return reminder.Result{Created: 1}, f.sweepErr
}

func (f *fakeRunner) SendDigests(context.Context, time.Time) (reminder.Result, error) {
	defer f.enter()()
	f.mu.Lock()
	f.digests++
	f.mu.Unlock()
	return reminder.Result{}, nil
}

func (f *fakeRunner) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sweeps, f.digests
}

func quiet(string, ...any) {}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&fakeRunner{}, WithInterval(0))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&fakeRunner{}, WithDigest(true, 24))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNextDigestAt(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	before := time.Date(2025, 11, 9, 6, 30, 0, 0, ny)
	require.Equal(t, time.Date(2025, 11, 9, 7, 0, 0, 0, ny), NextDigestAt(before, 7, ny))

	exactly := time.Date(2025, 11, 9, 7, 0, 0, 0, ny)
	require.Equal(t, time.Date(2025, 11, 10, 7, 0, 0, 0, ny), NextDigestAt(exactly, 7, ny))

	// 03:00 UTC on Nov 10 is 22:00 Nov 9 in New York.
	utc := time.Date(2025, 11, 10, 3, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 11, 10, 7, 0, 0, 0, ny), NextDigestAt(utc, 7, ny))
}

func TestRunOnce(t *testing.T) {
	r := &fakeRunner{}
	w, err := New(r, WithDigest(true, 7), WithLogger(quiet))
	require.NoError(t, err)

	require.NoError(t, w.RunOnce(context.Background()))
	sweeps, digests := r.counts()
	require.Equal(t, 1, sweeps)
	require.Equal(t, 1, digests)
	require.Equal(t, 1, w.Runs(scheduler.JobReminderSweep))

	noDigest, err := New(&fakeRunner{sweepErr: errors.New("boom")}, WithLogger(quiet))
	require.NoError(t, err)
	require.Error(t, noDigest.RunOnce(context.Background()))
}

func TestRunSweepsRepeatedlyAndSequentially(t *testing.T) {
	r := &fakeRunner{sweepDelay: 5 * time.Millisecond}
	w, err := New(r, WithInterval(10*time.Millisecond), WithLogger(quiet))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Run(ctx))

	sweeps, digests := r.counts()
	require.GreaterOrEqual(t, sweeps, 3)
	require.Equal(t, 0, digests)
	require.Equal(t, int32(1), atomic.LoadInt32(&r.maxActive))
	require.Zero(t, w.Dropped())
}

func TestRunKeepsGoingAfterFailure(t *testing.T) {
	r := &fakeRunner{sweepErr: errors.New("db locked")}
	var mu sync.Mutex
	var logs int
	w, err := New(r, WithInterval(10*time.Millisecond), WithLogger(func(string, ...any) {
		mu.Lock()
		logs++
		mu.Unlock()
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Run(ctx))

	sweeps, _ := r.counts()
	require.GreaterOrEqual(t, sweeps, 2)
	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, logs, 2)
}

func TestRunFiresDigestAtConfiguredHour(t *testing.T) {
	r := &fakeRunner{}
	// Pin the clock just before the digest hour so the first digest is due
	// in a few milliseconds of real time.
	loc := time.UTC
	start := time.Now()
	offset := time.Date(2025, 11, 9, 6, 59, 59, 980_000_000, loc).Sub(start)
	clock := func() time.Time { return time.Now().Add(offset) }

	w, err := New(r,
		WithInterval(time.Hour),
		WithDigest(true, 7),
		WithLocation(loc),
		WithClock(clock),
		WithLogger(quiet),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Run(ctx))

	sweeps, digests := r.counts()
	require.Equal(t, 1, sweeps)
	require.Equal(t, 1, digests)
}
