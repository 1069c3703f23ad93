package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

type NotificationRepository interface {
	// Create inserts a notification with Delivered=false. ID and CreatedAt
	// are assigned when empty.
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)

	Get(ctx context.Context, id model.NotificationID) (*model.Notification, error)

	// MarkDelivered sets Delivered and DeliveredAt only if the notification is
	// still undelivered. It reports whether this call changed the record.
	MarkDelivered(ctx context.Context, id model.NotificationID, at time.Time) (bool, error)

	// ListUndelivered returns up to limit undelivered notifications created at
	// or after since, oldest first.
	ListUndelivered(ctx context.Context, since time.Time, limit int) ([]*model.Notification, error)

	ListByRecipient(ctx context.Context, recipientID model.UserID) ([]*model.Notification, error)
}
