package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidNotification     = errors.New("model: invalid notification")
	ErrInvalidNotificationType = errors.New("model: invalid notification type")
)

type NotificationType string

const (
	NotificationReminder NotificationType = "reminder"
	NotificationSystem   NotificationType = "system"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationReminder, NotificationSystem:
		return true
	default:
		return false
	}
}

// Notification is an in-app message. DedupeKey is unique per user when set.
type Notification struct {
	ID        string           `json:"id" validate:"required"`
	UserID    string           `json:"userId" validate:"required"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title" validate:"required"`
	Message   string           `json:"message" validate:"required"`
	DedupeKey string           `json:"dedupeKey,omitempty"`
	Read      bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt" validate:"required"`
}

func (n Notification) Validate() error {
	if err := checkStruct(n, ErrInvalidNotification, nil); err != nil {
		return err
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidNotificationType, n.Type)
	}
	return nil
}
