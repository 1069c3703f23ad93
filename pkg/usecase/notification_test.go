package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"github.com/secmon-lab/duesoon/pkg/repository/memory"
	"github.com/secmon-lab/duesoon/pkg/usecase"
)

func TestNotify(t *testing.T) {
	ctx := context.Background()

	t.Run("stores undelivered notification and fires trigger", func(t *testing.T) {
		repo := memory.New()
		trigger := &recordingTrigger{}
		uc := usecase.NewNotificationUseCase(repo, trigger)

		id, err := uc.Notify(ctx, usecase.NotifyInput{
			RecipientID: "seller-1",
			Title:       "Comissão",
			Message:     "Comissão aprovada",
			Category:    types.CategoryCommission,
			ClientID:    "client-1",
		})
		gt.NoError(t, err).Required()

		stored, err := repo.Notification().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Kind).Equal(types.NotificationKindInfo)
		gt.Value(t, stored.ClientID).Equal(model.ClientID("client-1"))
		gt.Bool(t, stored.Delivered).False()

		gt.Value(t, trigger.IDs()).Equal([]model.NotificationID{id})
	})

	t.Run("missing recipient", func(t *testing.T) {
		trigger := &recordingTrigger{}
		uc := usecase.NewNotificationUseCase(memory.New(), trigger)

		_, err := uc.Notify(ctx, usecase.NotifyInput{Message: "x"})
		gt.Error(t, err).Is(usecase.ErrMissingRecipient)
		gt.Array(t, trigger.IDs()).Length(0)
	})

	t.Run("invalid kind", func(t *testing.T) {
		uc := usecase.NewNotificationUseCase(memory.New(), nil)

		_, err := uc.Notify(ctx, usecase.NotifyInput{RecipientID: "u1", Kind: types.NotificationKind("error")})
		gt.Error(t, err).Is(usecase.ErrInvalidKind)
	})

	t.Run("store failure does not fire trigger", func(t *testing.T) {
		trigger := &recordingTrigger{}
		repo := &faultyRepository{Repository: memory.New(), failNotificationFor: "u1"}
		uc := usecase.NewNotificationUseCase(repo, trigger)

		_, err := uc.Notify(ctx, usecase.NotifyInput{RecipientID: "u1", Message: "x"})
		gt.Error(t, err).Is(errInjected)
		gt.Array(t, trigger.IDs()).Length(0)
	})
}

func TestNotifyUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("deduplicates recipients", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewNotificationUseCase(repo, nil)

		ids, err := uc.NotifyUsers(ctx, []model.UserID{"a", "", "b", "a"}, usecase.NotifyInput{
			Kind:    types.NotificationKindWarning,
			Message: "hello",
		})
		gt.NoError(t, err).Required()
		gt.Array(t, ids).Length(2)

		for _, r := range []model.UserID{"a", "b"} {
			list, err := repo.Notification().ListByRecipient(ctx, r)
			gt.NoError(t, err).Required()
			gt.Array(t, list).Length(1)
		}
	})

	t.Run("continues after a failure", func(t *testing.T) {
		repo := &faultyRepository{Repository: memory.New(), failNotificationFor: "a"}
		uc := usecase.NewNotificationUseCase(repo, nil)

		ids, err := uc.NotifyUsers(ctx, []model.UserID{"a", "b"}, usecase.NotifyInput{Message: "hello"})
		gt.Error(t, err).Is(errInjected)
		gt.Array(t, ids).Length(1)
	})
}
