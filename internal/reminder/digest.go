package reminder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sandeepkv93/studyd/internal/dates"
	"github.com/sandeepkv93/studyd/internal/model"
)

const DigestTitle = "Daily Digest"

type DigestItem struct {
	TaskID string
	Title  string
	Due    dates.Date
	Bucket dates.Bucket
}

// Digest lists a user's incomplete tasks due today or tomorrow.
type Digest struct {
	Name  string
	Date  dates.Date
	Items []DigestItem
}

// BuildDigest keeps incomplete tasks due today or tomorrow, today first, then
// in source order.
func BuildDigest(name string, tasks []model.Task, c dates.Classifier) Digest {
	d := Digest{Name: name, Date: c.Today(), Items: make([]DigestItem, 0)}
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		due, ok := t.Due()
		if !ok || !(c.IsToday(due) || c.IsTomorrow(due)) {
			continue
		}
		d.Items = append(d.Items, DigestItem{TaskID: t.ID, Title: t.Title, Due: due, Bucket: c.Bucket(due)})
	}
	sort.SliceStable(d.Items, func(i, j int) bool {
		return d.Items[i].Due.Before(d.Items[j].Due)
	})
	return d
}

func (d Digest) Message() string {
	return fmt.Sprintf("Daily Digest: You have %d tasks due soon. Check your planner!", len(d.Items))
}

// Markdown renders the digest body.
func (d Digest) Markdown() string {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = "Student"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Digest for %s\n\n", d.Date)
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	if len(d.Items) == 0 {
		b.WriteString("Nothing is due today or tomorrow.\n")
		return b.String()
	}
	b.WriteString("Here are your tasks for today and tomorrow:\n\n")
	for _, it := range d.Items {
		fmt.Fprintf(&b, "- **%s** (Due: %s, %s)\n", escapeMarkdown(it.Title), it.Due, it.Bucket)
	}
	b.WriteString("\nGood luck!\n")
	return b.String()
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`)

func escapeMarkdown(v string) string {
	return markdownEscaper.Replace(v)
}

// DigestKey is the once-per-day dedupe key for a user's digest.
func DigestKey(day dates.Date) string {
	return "digest:" + day.String()
}

// SendDigests inserts one digest notification per digest-enabled user that
// has something due today or tomorrow.
func (s *Sweeper) SendDigests(ctx context.Context, now time.Time) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "reminder.SendDigests")
	defer span.End()

	now = now.In(s.loc)
	classifier := dates.NewClassifier(now)

	users, err := s.tasks.ListDigestUserIDs(ctx)
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("list digest users: %w", err)
	}

	var res Result
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		unitCtx, cancel := s.unitContext(ctx)
		tasks, err := s.tasks.ListPendingTasks(unitCtx, userID)
		if err != nil {
			cancel()
			s.logf("daily digest: skip user %s: %v", userID, err)
			res.SkippedUsers = append(res.SkippedUsers, userID)
			continue
		}
		digest := BuildDigest("", tasks, classifier)
		if len(digest.Items) == 0 {
			cancel()
			continue
		}
		created, err := s.emit(unitCtx, model.Notification{
			UserID:    userID,
			Type:      model.NotificationSystem,
			Title:     DigestTitle,
			Message:   digest.Message(),
			DedupeKey: DigestKey(classifier.Today()),
			CreatedAt: now,
		})
		cancel()
		switch {
		case err != nil:
			s.logf("daily digest: skip user %s: %v", userID, err)
			res.SkippedUsers = append(res.SkippedUsers, userID)
		case created:
			res.Created++
		default:
			res.Suppressed++
		}
	}

	span.SetAttributes(attribute.Int("digest.created", res.Created))
	s.logf("daily digest: users=%d created=%d suppressed=%d skipped=%d",
		len(users), res.Created, res.Suppressed, len(res.SkippedUsers))
	return res, nil
}
