package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

type notificationRepository struct {
	mu            sync.RWMutex
	notifications map[model.NotificationID]*model.Notification
	order         []model.NotificationID
}

func newNotificationRepository() *notificationRepository {
	return &notificationRepository{
		notifications: make(map[model.NotificationID]*model.Notification),
	}
}

func copyNotification(n *model.Notification) *model.Notification {
	c := *n
	if n.DeliveredAt != nil {
		at := *n.DeliveredAt
		c.DeliveredAt = &at
	}
	return &c
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyNotification(n)
	if created.ID == "" {
		created.ID = model.NewNotificationID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.Delivered = false
	created.DeliveredAt = nil

	if _, exists := r.notifications[created.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrDuplicate, "notification already exists", goerr.V("id", created.ID))
	}

	r.notifications[created.ID] = created
	r.order = append(r.order, created.ID)
	return copyNotification(created), nil
}

func (r *notificationRepository) Get(ctx context.Context, id model.NotificationID) (*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notifications[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	return copyNotification(n), nil
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, id model.NotificationID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, exists := r.notifications[id]
	if !exists {
		return false, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	if n.Delivered {
		return false, nil
	}

	deliveredAt := at.UTC()
	n.Delivered = true
	n.DeliveredAt = &deliveredAt
	return true, nil
}

func (r *notificationRepository) ListUndelivered(ctx context.Context, since time.Time, limit int) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Notification, 0)
	for _, id := range r.order {
		n := r.notifications[id]
		if n.Delivered || n.CreatedAt.Before(since) {
			continue
		}
		result = append(result, copyNotification(n))
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID model.UserID) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Notification, 0)
	for _, id := range r.order {
		if n := r.notifications[id]; n.RecipientID == recipientID {
			result = append(result, copyNotification(n))
		}
	}
	return result, nil
}
