package model

import (
	"errors"

	"github.com/sandeepkv93/studyd/internal/dates"
)

var ErrInvalidAssignment = errors.New("model: invalid assignment")

// Assignment is graded coursework. It counts as completed once a score is
// recorded.
type Assignment struct {
	ID             string   `json:"id" validate:"required"`
	UserID         string   `json:"userId" validate:"required"`
	CourseID       string   `json:"courseId,omitempty"`
	Title          string   `json:"title" validate:"required"`
	DueDate        string   `json:"dueDate"`
	PointsPossible float64  `json:"pointsPossible" validate:"gte=0"`
	PointsEarned   *float64 `json:"pointsEarned,omitempty" validate:"omitempty,gte=0"`
	Details        string   `json:"details,omitempty"`
}

func (a Assignment) Completed() bool {
	return a.PointsEarned != nil
}

func (a Assignment) Due() (dates.Date, bool) {
	return dates.Parse(a.DueDate)
}

func (a Assignment) Validate() error {
	return checkStruct(a, ErrInvalidAssignment, nil)
}
