package storage

import (
	"time"

	"github.com/sandeepkv93/studyd/internal/model"
)

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DigestEnabled bool      `json:"digestEnabled"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Bundle is an import file: records are inserted in field order inside one
// transaction.
type Bundle struct {
	Users       []User             `json:"users"`
	Courses     []model.Course     `json:"courses"`
	Assignments []model.Assignment `json:"assignments"`
	Tasks       []model.Task       `json:"tasks"`
}

type NotificationListFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
