package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		user := &model.User{
			ID:     "u1",
			Name:   "Carlos",
			Email:  "carlos@example.com",
			Phone:  "+55 11 99999-0000",
			Role:   types.UserRoleSeller,
			Status: types.UserStatusActive,
		}
		gt.NoError(t, repo.User().Put(ctx, user)).Required()

		got, err := repo.User().Get(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(user)
	})

	t.Run("Get unknown user returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.User().Get(context.Background(), model.UserID(uniqueID("missing")))
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("ListActiveAdmins filters by role and status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		users := []*model.User{
			{ID: "admin-b", Name: "Bruno", Role: types.UserRoleAdmin, Status: types.UserStatusActive},
			{ID: "admin-a", Name: "Ana", Role: types.UserRoleAdmin, Status: types.UserStatusActive},
			{ID: "admin-off", Name: "Otávio", Role: types.UserRoleAdmin, Status: types.UserStatusInactive},
			{ID: "seller", Name: "Sofia", Role: types.UserRoleSeller, Status: types.UserStatusActive},
		}
		for _, u := range users {
			gt.NoError(t, repo.User().Put(ctx, u)).Required()
		}

		admins, err := repo.User().ListActiveAdmins(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, admins).Length(2).Required()
		gt.Value(t, admins[0].ID).Equal(model.UserID("admin-a"))
		gt.Value(t, admins[1].ID).Equal(model.UserID("admin-b"))
	})
}

func runClientRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		client := &model.Client{
			ID:          "client-1",
			ContactName: "Fazenda Boa Vista",
			Phone:       "(11) 3333-4444",
			WhatsApp:    "+55 11 98888-7777",
		}
		gt.NoError(t, repo.Client().Put(ctx, client)).Required()

		got, err := repo.Client().Get(ctx, "client-1")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(client)
		gt.Value(t, got.ContactPhone()).Equal("5511988887777")
	})

	t.Run("Get unknown client returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Client().Get(context.Background(), model.ClientID(uniqueID("missing")))
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}

func TestMemoryUserRepository(t *testing.T) {
	runUserRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreUserRepository(t *testing.T) {
	runUserRepositoryTest(t, newFirestoreRepository)
}

func TestMemoryClientRepository(t *testing.T) {
	runClientRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreClientRepository(t *testing.T) {
	runClientRepositoryTest(t, newFirestoreRepository)
}
