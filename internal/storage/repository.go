package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/model"
)

var (
	ErrNotFound = errors.New("storage: not found")
	ErrConflict = errors.New("storage: conflict")
)

// DecodeError reports a stored row whose JSON column cannot be decoded. List
// reads skip such rows; single-row reads return it.
type DecodeError struct {
	Table string
	ID    string
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("storage: decode %s for %s %s: %v", e.Field, e.Table, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Repository is the planner store. Input records are written by imports
// and read by the aggregation, feed and sweep paths; notifications are
// insert-only apart from the read flag.
type Repository interface {
	CreateUser(ctx context.Context, in User) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	ListDigestUserIDs(ctx context.Context) ([]string, error)

	CreateCourse(ctx context.Context, in model.Course) error
	ListCoursesByUser(ctx context.Context, userID string) ([]model.Course, error)

	CreateAssignment(ctx context.Context, in model.Assignment) error
	ListAssignmentsByUser(ctx context.Context, userID string) ([]model.Assignment, error)

	CreateTask(ctx context.Context, in model.Task) error
	GetTask(ctx context.Context, id string) (model.Task, error)
	SetTaskCompleted(ctx context.Context, id string, completed bool) error
	DeleteTask(ctx context.Context, id string) error
	ListTasksByUser(ctx context.Context, userID string) ([]model.Task, error)
	ListPendingTasks(ctx context.Context, userID string) ([]model.Task, error)

	LoadSources(ctx context.Context, userID string) (agenda.Sources, error)
	Import(ctx context.Context, in Bundle) error

	InsertNotification(ctx context.Context, in model.Notification) error
	HasNotification(ctx context.Context, userID, dedupeKey string) (bool, error)
	ListNotificationsByUser(ctx context.Context, userID string, filter NotificationListFilter) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}
