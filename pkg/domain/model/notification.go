package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

// NotificationID is a UUID-based identifier for Notification
type NotificationID string

// NewNotificationID generates a new UUID v4 NotificationID
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New().String())
}

// Notification is a message for one user. Delivered only moves from false to
// true, after the outbound channel accepted the message.
type Notification struct {
	ID          NotificationID
	RecipientID UserID
	Kind        types.NotificationKind
	Title       string
	Message     string
	Category    types.Category
	ClientID    ClientID // optional
	CreatedAt   time.Time
	Delivered   bool
	DeliveredAt *time.Time
}
