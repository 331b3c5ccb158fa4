// Package reminder turns task reminder offsets into in-app notifications.
//
// A sweep is idempotent: every notification carries a dedupe key derived from
// the task, the reminder kind and the local calendar day, and the store
// rejects a second insert for the same key. Running Sweep twice on the same
// day, or two sweeps at once, never creates duplicates.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sandeepkv93/studyd/internal/dates"
	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/storage"
)

const (
	ReminderTitle = "Task Reminder"
	tracerName    = "github.com/sandeepkv93/studyd/internal/reminder"
)

// TaskSource is the read side of the sweep. It is never written to.
type TaskSource interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	ListDigestUserIDs(ctx context.Context) ([]string, error)
	ListPendingTasks(ctx context.Context, userID string) ([]model.Task, error)
}

// NotificationStore is insert-only from the sweeper's point of view.
type NotificationStore interface {
	HasNotification(ctx context.Context, userID, dedupeKey string) (bool, error)
	InsertNotification(ctx context.Context, in model.Notification) error
}

type Sweeper struct {
	tasks       TaskSource
	store       NotificationStore
	newID       func() string
	logf        func(format string, args ...any)
	loc         *time.Location
	unitTimeout time.Duration
	tracer      trace.Tracer
}

type Option func(*Sweeper)

func WithLogger(logf func(format string, args ...any)) Option {
	return func(s *Sweeper) {
		if logf != nil {
			s.logf = logf
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Sweeper) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLocation sets the zone "today" is resolved in.
func WithLocation(loc *time.Location) Option {
	return func(s *Sweeper) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithUnitTimeout bounds the store calls made for one user.
func WithUnitTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		s.unitTimeout = d
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Sweeper) {
		if t != nil {
			s.tracer = t
		}
	}
}

func NewSweeper(tasks TaskSource, store NotificationStore, opts ...Option) *Sweeper {
	s := &Sweeper{
		tasks:  tasks,
		store:  store,
		newID:  uuid.NewString,
		logf:   log.Printf,
		loc:    time.Local,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result summarises one run. Skipped ids are users or tasks whose processing
// failed; the rest of the run still completed.
type Result struct {
	Created      int
	Suppressed   int
	SkippedUsers []string
	SkippedTasks []string
}

func (r *Result) merge(other Result) {
	r.Created += other.Created
	r.Suppressed += other.Suppressed
	r.SkippedUsers = append(r.SkippedUsers, other.SkippedUsers...)
	r.SkippedTasks = append(r.SkippedTasks, other.SkippedTasks...)
}

// ReminderKey identifies one reminder kind for one task on one local day.
func ReminderKey(taskID string, kind model.ReminderKind, day dates.Date) string {
	return fmt.Sprintf("reminder:%s:%s:%s", taskID, kind, day)
}

func ReminderMessage(title string, kind model.ReminderKind) string {
	if kind == model.ReminderDayBefore {
		return fmt.Sprintf("Reminder: \"%s\" is due tomorrow.", title)
	}
	return fmt.Sprintf("Reminder: \"%s\" is due today.", title)
}

// Sweep scans every user's incomplete tasks and inserts a notification for
// each reminder that fires today. It only fails when the user list itself
// cannot be read.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "reminder.Sweep")
	defer span.End()

	now = now.In(s.loc)
	classifier := dates.NewClassifier(now)

	users, err := s.tasks.ListUserIDs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list users")
		return Result{}, fmt.Errorf("list users: %w", err)
	}

	var total Result
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		total.merge(s.sweepUser(ctx, userID, now, classifier))
	}

	span.SetAttributes(
		attribute.Int("reminder.users", len(users)),
		attribute.Int("reminder.created", total.Created),
		attribute.Int("reminder.suppressed", total.Suppressed),
		attribute.Int("reminder.skipped_tasks", len(total.SkippedTasks)),
	)
	s.logf("reminder sweep: users=%d created=%d suppressed=%d skipped_users=%d skipped_tasks=%d",
		len(users), total.Created, total.Suppressed, len(total.SkippedUsers), len(total.SkippedTasks))
	return total, nil
}

func (s *Sweeper) unitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.unitTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.unitTimeout)
}

func (s *Sweeper) sweepUser(ctx context.Context, userID string, now time.Time, classifier dates.Classifier) Result {
	var res Result
	ctx, cancel := s.unitContext(ctx)
	defer cancel()

	tasks, err := s.tasks.ListPendingTasks(ctx, userID)
	if err != nil {
		s.logf("reminder sweep: skip user %s: %v", userID, err)
		res.SkippedUsers = append(res.SkippedUsers, userID)
		return res
	}

	today := classifier.Today()
	for _, task := range tasks {
		if task.Completed || len(task.Reminders) == 0 {
			continue
		}
		due, ok := task.Due()
		if !ok {
			s.logf("reminder sweep: task %s has unparseable due date %q", task.ID, task.DueDate)
			continue
		}
		daysUntil := classifier.DaysUntil(due)
		if daysUntil < 0 {
			continue
		}

		fired := make(map[model.ReminderKind]bool, 2)
		for _, rem := range task.Reminders {
			kind := rem.Kind()
			if fired[kind] || kind.LeadDays() != daysUntil {
				continue
			}
			fired[kind] = true

			created, err := s.emit(ctx, model.Notification{
				UserID:    userID,
				Type:      model.NotificationReminder,
				Title:     ReminderTitle,
				Message:   ReminderMessage(task.Title, kind),
				DedupeKey: ReminderKey(task.ID, kind, today),
				CreatedAt: now,
			})
			switch {
			case err != nil:
				s.logf("reminder sweep: skip task %s: %v", task.ID, err)
				res.SkippedTasks = append(res.SkippedTasks, task.ID)
			case created:
				res.Created++
			default:
				res.Suppressed++
			}
		}
	}
	return res
}

// emit inserts n unless its dedupe key already exists. It reports whether a
// row was written.
func (s *Sweeper) emit(ctx context.Context, n model.Notification) (bool, error) {
	exists, err := s.store.HasNotification(ctx, n.UserID, n.DedupeKey)
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", n.DedupeKey, err)
	}
	if exists {
		return false, nil
	}
	n.ID = s.newID()
	if err := s.store.InsertNotification(ctx, n); err != nil {
		// A concurrent run got there first.
		if errors.Is(err, storage.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("insert %s: %w", n.DedupeKey, err)
	}
	return true, nil
}
