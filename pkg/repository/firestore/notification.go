package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type notificationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *notificationRepository) notificationsCollection() string {
	return CollectionName(r.collectionPrefix, CollectionNotifications)
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	created := *n
	if created.ID == "" {
		created.ID = model.NewNotificationID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.Delivered = false
	created.DeliveredAt = nil

	_, err := r.client.Collection(r.notificationsCollection()).Doc(string(created.ID)).Create(ctx, &created)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrDuplicate, "notification already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create notification", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *notificationRepository) Get(ctx context.Context, id model.NotificationID) (*model.Notification, error) {
	doc, err := r.client.Collection(r.notificationsCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
	}

	var n model.Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("id", id))
	}
	return &n, nil
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, id model.NotificationID, at time.Time) (bool, error) {
	ref := r.client.Collection(r.notificationsCollection()).Doc(string(id))

	var changed bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		changed = false

		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
		}

		delivered, err := doc.DataAt("Delivered")
		if err != nil {
			return goerr.Wrap(err, "failed to read delivered flag", goerr.V("id", id))
		}
		if b, ok := delivered.(bool); ok && b {
			return nil
		}

		changed = true
		return tx.Update(ref, []firestore.Update{
			{Path: "Delivered", Value: true},
			{Path: "DeliveredAt", Value: at.UTC()},
		})
	})
	if err != nil {
		return false, goerr.Wrap(err, "failed to mark notification delivered", goerr.V("id", id))
	}

	return changed, nil
}

func (r *notificationRepository) ListUndelivered(ctx context.Context, since time.Time, limit int) ([]*model.Notification, error) {
	// Requires composite index: Delivered ASC, CreatedAt ASC
	q := r.client.Collection(r.notificationsCollection()).
		Where("Delivered", "==", false).
		Where("CreatedAt", ">=", since).
		OrderBy("CreatedAt", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	return r.collect(q.Documents(ctx))
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID model.UserID) ([]*model.Notification, error) {
	return r.collect(r.client.Collection(r.notificationsCollection()).
		Where("RecipientID", "==", string(recipientID)).
		Documents(ctx))
}

func (r *notificationRepository) collect(iter *firestore.DocumentIterator) ([]*model.Notification, error) {
	defer iter.Stop()

	result := make([]*model.Notification, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate notifications")
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("doc_id", doc.Ref.ID))
		}
		result = append(result, &n)
	}
	return result, nil
}
