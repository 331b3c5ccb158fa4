package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/studyd/internal/agenda"
	"github.com/sandeepkv93/studyd/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db   *sql.DB
	logf func(format string, args ...any)
}

var _ Repository = (*SQLiteRepository)(nil)

type Option func(*SQLiteRepository)

// WithLogger sets where skipped rows are reported.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(r *SQLiteRepository) {
		if logf != nil {
			r.logf = logf
		}
	}
}

func NewSQLiteRepository(db *sql.DB, opts ...Option) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	r := &SQLiteRepository{db: db, logf: log.Printf}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// OpenSQLite opens path, creating its directory if needed, and applies
// pending migrations.
func OpenSQLite(path string, opts ...Option) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, in User) error {
	return insertUser(ctx, r.db, in)
}

func insertUser(ctx context.Context, ex execer, in User) error {
	if in.ID == "" {
		return errors.New("storage: user id is required")
	}
	created := in.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO users (id, name, digest_enabled, created_at)
		VALUES (?, ?, ?, ?)`,
		in.ID, in.Name, boolInt(in.DigestEnabled), mustTime(created),
	)
	return mapWriteErr(err)
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (User, error) {
	var out User
	var digest int
	var created string
	err := r.db.QueryRowContext(ctx, `SELECT id, name, digest_enabled, created_at FROM users WHERE id = ?`, id).
		Scan(&out.ID, &out.Name, &digest, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return User{}, err
	}
	out.DigestEnabled = digest == 1
	out.CreatedAt = createdAt
	return out, nil
}

func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, `SELECT id FROM users ORDER BY id`)
}

func (r *SQLiteRepository) ListDigestUserIDs(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, `SELECT id FROM users WHERE digest_enabled = 1 ORDER BY id`)
}

func (r *SQLiteRepository) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCourse(ctx context.Context, in model.Course) error {
	return insertCourse(ctx, r.db, in)
}

func insertCourse(ctx context.Context, ex execer, in model.Course) error {
	if err := in.Validate(); err != nil {
		return err
	}
	schedule, err := encodeJSON(in.Schedule, "[]")
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO courses (id, user_id, code, name, color, schedule_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.Code, in.Name, in.Color, schedule,
	)
	return mapWriteErr(err)
}

func (r *SQLiteRepository) ListCoursesByUser(ctx context.Context, userID string) ([]model.Course, error) {
	out, _, err := r.listCourses(ctx, userID)
	return out, err
}

// listCourses skips rows whose schedule cannot be decoded and returns their
// ids alongside the readable courses.
func (r *SQLiteRepository) listCourses(ctx context.Context, userID string) ([]model.Course, []string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, code, name, color, schedule_json
		FROM courses WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	out := make([]model.Course, 0)
	var skipped []string
	for rows.Next() {
		var c model.Course
		var schedule string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Code, &c.Name, &c.Color, &schedule); err != nil {
			return nil, nil, err
		}
		if err := json.Unmarshal([]byte(schedule), &c.Schedule); err != nil {
			r.logf("storage: skip course %s: %v", c.ID, &DecodeError{Table: "courses", ID: c.ID, Field: "schedule", Err: err})
			skipped = append(skipped, c.ID)
			continue
		}
		out = append(out, c)
	}
	return out, skipped, rows.Err()
}

func (r *SQLiteRepository) CreateAssignment(ctx context.Context, in model.Assignment) error {
	return insertAssignment(ctx, r.db, in)
}

func insertAssignment(ctx context.Context, ex execer, in model.Assignment) error {
	if err := in.Validate(); err != nil {
		return err
	}
	var earned any
	if in.PointsEarned != nil {
		earned = *in.PointsEarned
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO assignments (id, user_id, course_id, title, due_date, points_possible, points_earned, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, nullString(in.CourseID), in.Title, in.DueDate, in.PointsPossible, earned, in.Details,
	)
	return mapWriteErr(err)
}

func (r *SQLiteRepository) ListAssignmentsByUser(ctx context.Context, userID string) ([]model.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, course_id, title, due_date, points_possible, points_earned, details
		FROM assignments WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Assignment, 0)
	for rows.Next() {
		var a model.Assignment
		var course sql.NullString
		var earned sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.UserID, &course, &a.Title, &a.DueDate, &a.PointsPossible, &earned, &a.Details); err != nil {
			return nil, err
		}
		a.CourseID = course.String
		if earned.Valid {
			v := earned.Float64
			a.PointsEarned = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const taskColumns = `id, user_id, title, due_date, completed, priority, estimated_minutes,
	recurrence_json, reminders_json, notes, attachments_json`

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) error {
	return insertTask(ctx, r.db, in)
}

func insertTask(ctx context.Context, ex execer, in model.Task) error {
	if err := in.Validate(); err != nil {
		return err
	}
	var recurrence any
	if in.Recurrence != nil {
		raw, err := json.Marshal(in.Recurrence)
		if err != nil {
			return fmt.Errorf("encode recurrence: %w", err)
		}
		recurrence = string(raw)
	}
	reminders, err := encodeJSON(in.Reminders, "[]")
	if err != nil {
		return err
	}
	attachments, err := encodeJSON(in.Attachments, "[]")
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.Title, in.DueDate, boolInt(in.Completed), string(in.Priority), in.EstimatedMinutes,
		recurrence, reminders, in.Notes, attachments,
	)
	return mapWriteErr(err)
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) SetTaskCompleted(ctx context.Context, id string, completed bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET completed = ? WHERE id = ?`, boolInt(completed), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasksByUser(ctx context.Context, userID string) ([]model.Task, error) {
	out, _, err := r.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY rowid`, userID)
	return out, err
}

// ListPendingTasks returns the user's incomplete tasks. Rows that cannot be
// decoded are logged and left out.
func (r *SQLiteRepository) ListPendingTasks(ctx context.Context, userID string) ([]model.Task, error) {
	out, _, err := r.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND completed = 0 ORDER BY rowid`, userID)
	return out, err
}

func (r *SQLiteRepository) listTasks(ctx context.Context, query string, args ...any) ([]model.Task, []string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	var skipped []string
	for rows.Next() {
		task, scanErr := scanTask(rows)
		var decodeErr *DecodeError
		switch {
		case errors.As(scanErr, &decodeErr):
			r.logf("storage: skip task %s: %v", decodeErr.ID, decodeErr)
			skipped = append(skipped, decodeErr.ID)
			continue
		case scanErr != nil:
			return nil, nil, scanErr
		}
		out = append(out, task)
	}
	return out, skipped, rows.Err()
}

// LoadSources reads everything the aggregation and feed paths need for one
// user. Task and course rows that cannot be decoded are listed in
// Unreadable instead of failing the load.
func (r *SQLiteRepository) LoadSources(ctx context.Context, userID string) (agenda.Sources, error) {
	assignments, err := r.ListAssignmentsByUser(ctx, userID)
	if err != nil {
		return agenda.Sources{}, fmt.Errorf("list assignments: %w", err)
	}
	tasks, badTasks, err := r.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return agenda.Sources{}, fmt.Errorf("list tasks: %w", err)
	}
	courses, badCourses, err := r.listCourses(ctx, userID)
	if err != nil {
		return agenda.Sources{}, fmt.Errorf("list courses: %w", err)
	}
	return agenda.Sources{
		Assignments: assignments,
		Tasks:       tasks,
		Courses:     courses,
		Unreadable:  append(badTasks, badCourses...),
	}, nil
}

func (r *SQLiteRepository) Import(ctx context.Context, in Bundle) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, u := range in.Users {
		if err = insertUser(ctx, tx, u); err != nil {
			return fmt.Errorf("import user %s: %w", u.ID, err)
		}
	}
	for _, c := range in.Courses {
		if err = insertCourse(ctx, tx, c); err != nil {
			return fmt.Errorf("import course %s: %w", c.ID, err)
		}
	}
	for _, a := range in.Assignments {
		if err = insertAssignment(ctx, tx, a); err != nil {
			return fmt.Errorf("import assignment %s: %w", a.ID, err)
		}
	}
	for _, t := range in.Tasks {
		if err = insertTask(ctx, tx, t); err != nil {
			return fmt.Errorf("import task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// InsertNotification returns ErrConflict when the user already has a
// notification with the same non-empty dedupe key.
func (r *SQLiteRepository) InsertNotification(ctx context.Context, in model.Notification) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, dedupe_key, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, string(in.Type), in.Title, in.Message, in.DedupeKey, boolInt(in.Read), mustTime(in.CreatedAt),
	)
	return mapWriteErr(err)
}

func (r *SQLiteRepository) HasNotification(ctx context.Context, userID, dedupeKey string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM notifications WHERE user_id = ? AND dedupe_key = ? LIMIT 1`, userID, dedupeKey).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SQLiteRepository) ListNotificationsByUser(ctx context.Context, userID string, filter NotificationListFilter) ([]model.Notification, error) {
	query := `SELECT id, user_id, type, title, message, dedupe_key, is_read, created_at FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if filter.UnreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		var typ string
		var read int
		var created string
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &n.DedupeKey, &read, &created); err != nil {
			return nil, err
		}
		createdAt, err := parseRequiredTime(created)
		if err != nil {
			return nil, err
		}
		n.Type = model.NotificationType(typ)
		n.Read = read == 1
		n.CreatedAt = createdAt
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ErrConflict, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
	}
	return err
}

func encodeJSON(v any, empty string) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	if string(raw) == "null" {
		return empty, nil
	}
	return string(raw), nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var completed int
	var priority string
	var recurrence sql.NullString
	var reminders, attachments string
	if err := s.Scan(&out.ID, &out.UserID, &out.Title, &out.DueDate, &completed, &priority, &out.EstimatedMinutes,
		&recurrence, &reminders, &out.Notes, &attachments); err != nil {
		return model.Task{}, err
	}
	out.Completed = completed == 1
	out.Priority = model.Priority(priority)
	if recurrence.Valid && recurrence.String != "" {
		var rule model.RecurrenceRule
		if err := json.Unmarshal([]byte(recurrence.String), &rule); err != nil {
			return model.Task{}, &DecodeError{Table: "tasks", ID: out.ID, Field: "recurrence", Err: err}
		}
		out.Recurrence = &rule
	}
	if err := json.Unmarshal([]byte(reminders), &out.Reminders); err != nil {
		return model.Task{}, &DecodeError{Table: "tasks", ID: out.ID, Field: "reminders", Err: err}
	}
	if err := json.Unmarshal([]byte(attachments), &out.Attachments); err != nil {
		return model.Task{}, &DecodeError{Table: "tasks", ID: out.ID, Field: "attachments", Err: err}
	}
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
