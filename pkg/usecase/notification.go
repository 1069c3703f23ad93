package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"github.com/secmon-lab/duesoon/pkg/utils/async"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

// DeliveryTrigger starts delivery of a newly created notification. It must
// not block on the outbound channel.
type DeliveryTrigger interface {
	Trigger(ctx context.Context, id model.NotificationID)
}

// NoopDeliveryTrigger leaves delivery to an external caller, for example a
// database hook calling the delivery endpoint.
type NoopDeliveryTrigger struct{}

func (NoopDeliveryTrigger) Trigger(ctx context.Context, id model.NotificationID) {}

type asyncDeliveryTrigger struct {
	delivery *DeliveryUseCase
}

// NewAsyncDeliveryTrigger delivers each notification in a background goroutine
func NewAsyncDeliveryTrigger(delivery *DeliveryUseCase) DeliveryTrigger {
	return &asyncDeliveryTrigger{delivery: delivery}
}

func (t *asyncDeliveryTrigger) Trigger(ctx context.Context, id model.NotificationID) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		_, err := t.delivery.Deliver(ctx, id)
		return err
	})
}

// NotifyInput describes one notification
type NotifyInput struct {
	RecipientID model.UserID
	Kind        types.NotificationKind
	Title       string
	Message     string
	Category    types.Category
	ClientID    model.ClientID
}

type NotificationUseCase struct {
	repo    interfaces.Repository
	trigger DeliveryTrigger
}

func NewNotificationUseCase(repo interfaces.Repository, trigger DeliveryTrigger) *NotificationUseCase {
	if trigger == nil {
		trigger = NoopDeliveryTrigger{}
	}
	return &NotificationUseCase{
		repo:    repo,
		trigger: trigger,
	}
}

// Notify stores an undelivered notification and fires the delivery trigger
func (uc *NotificationUseCase) Notify(ctx context.Context, input NotifyInput) (model.NotificationID, error) {
	if input.RecipientID == "" {
		return "", goerr.Wrap(ErrMissingRecipient, "notification recipient is required")
	}
	if input.Kind == "" {
		input.Kind = types.NotificationKindInfo
	}
	if !input.Kind.IsValid() {
		return "", goerr.Wrap(ErrInvalidKind, "invalid notification kind", goerr.V("kind", input.Kind))
	}

	created, err := uc.repo.Notification().Create(ctx, &model.Notification{
		RecipientID: input.RecipientID,
		Kind:        input.Kind,
		Title:       input.Title,
		Message:     input.Message,
		Category:    input.Category,
		ClientID:    input.ClientID,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create notification",
			goerr.V(RecipientIDKey, input.RecipientID),
			goerr.V("category", input.Category))
	}

	logging.From(ctx).Debug("notification created",
		"id", created.ID,
		"recipient_id", created.RecipientID,
		"category", created.Category)

	uc.trigger.Trigger(ctx, created.ID)
	return created.ID, nil
}

// NotifyUsers sends the same notification to every distinct recipient. Empty
// IDs are dropped. Failures do not stop the remaining recipients and are
// returned joined.
func (uc *NotificationUseCase) NotifyUsers(ctx context.Context, recipients []model.UserID, input NotifyInput) ([]model.NotificationID, error) {
	var (
		ids  []model.NotificationID
		errs []error
	)

	for _, recipient := range model.UniqueUserIDs(recipients) {
		in := input
		in.RecipientID = recipient

		id, err := uc.Notify(ctx, in)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids = append(ids, id)
	}

	return ids, errors.Join(errs...)
}
