package dates

import "time"

// NoDueDate is the DaysUntil value for absent or invalid dates. It is large
// enough to sort last and to fall outside any "due within N days" window.
const NoDueDate = 999

// Classifier answers urgency questions against one "today", resolved when the
// classifier is built so a whole aggregation pass sees the same day.
type Classifier struct {
	today Date
}

// NewClassifier resolves today from now in now's location.
func NewClassifier(now time.Time) Classifier {
	return Classifier{today: FromTime(now)}
}

// ClassifierFor is used when today is already known as a calendar date.
func ClassifierFor(today Date) Classifier {
	today.invalid = false
	return Classifier{today: today}
}

func (c Classifier) Today() Date { return c.today }

// IsOverdue is strictly d < today. Invalid dates are never overdue.
func (c Classifier) IsOverdue(d Date) bool {
	return d.Valid() && d.Before(c.today)
}

func (c Classifier) IsToday(d Date) bool {
	return d.Valid() && d.Compare(c.today) == 0
}

func (c Classifier) IsTomorrow(d Date) bool {
	return d.Valid() && d.Compare(c.today.AddDays(1)) == 0
}

// DaysUntil is signed: 0 for today, negative for past dates, NoDueDate for
// invalid input.
func (c Classifier) DaysUntil(d Date) int {
	if !d.Valid() {
		return NoDueDate
	}
	return d.DaysSince(c.today)
}

// DueWithin reports 0 <= DaysUntil(d) <= days.
func (c Classifier) DueWithin(d Date, days int) bool {
	n := c.DaysUntil(d)
	return n != NoDueDate && n >= 0 && n <= days
}

// Bucket names the urgency band used by list views.
type Bucket string

const (
	BucketOverdue  Bucket = "Overdue"
	BucketToday    Bucket = "Today"
	BucketTomorrow Bucket = "Tomorrow"
	BucketUpcoming Bucket = "Upcoming"
	BucketUndated  Bucket = "Undated"
)

func (c Classifier) Bucket(d Date) Bucket {
	switch {
	case !d.Valid():
		return BucketUndated
	case c.IsOverdue(d):
		return BucketOverdue
	case c.IsToday(d):
		return BucketToday
	case c.IsTomorrow(d):
		return BucketTomorrow
	default:
		return BucketUpcoming
	}
}
