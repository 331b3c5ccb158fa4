// Package scheduler holds timed jobs in a min-heap and emits each one on a
// buffered channel when its trigger time passes. Emission never blocks: a
// job that finds the buffer full is dropped and counted.
package scheduler

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrInvalidJob         = errors.New("scheduler: invalid job")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

type Job string

const (
	JobReminderSweep Job = "reminder-sweep"
	JobDailyDigest   Job = "daily-digest"
)

func (j Job) IsValid() bool {
	switch j {
	case JobReminderSweep, JobDailyDigest:
		return true
	default:
		return false
	}
}

type JobEvent struct {
	ID        string
	Job       Job
	TriggerAt time.Time
}

type queueItem struct {
	event JobEvent
	seq   uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

// Less orders by trigger time, then by scheduling order.
func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i].event.TriggerAt, pq[j].event.TriggerAt
	if a.Equal(b) {
		return pq[i].seq < pq[j].seq
	}
	return a.Before(b)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	seq     uint64
	out     chan JobEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
	now     func() time.Time
}

type EngineOption func(*Engine)

// WithClock sets the time source trigger times are compared against.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(bufferSize int, opts ...EngineOption) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	e := &Engine{
		queue:  make(priorityQueue, 0),
		out:    make(chan JobEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// C is closed after Stop returns.
func (e *Engine) C() <-chan JobEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.stopped = true
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(ev JobEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}
	if !ev.Job.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidJob, ev.Job)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	e.seq++
	heap.Push(&e.queue, queueItem{event: ev, seq: e.seq})
	e.signalWakeup()
	return nil
}

// Pending is the number of jobs not yet emitted.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := next.TriggerAt.Sub(e.now())
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, ev := range e.popDue(e.now()) {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (JobEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return JobEvent{}, false
	}
	return e.queue[0].event, true
}

func (e *Engine) popDue(now time.Time) []JobEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]JobEvent, 0)
	for len(e.queue) > 0 {
		if e.queue[0].event.TriggerAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		out = append(out, item.event)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
