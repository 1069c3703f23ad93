package interfaces

import (
	"context"

	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

type UserRepository interface {
	Get(ctx context.Context, id model.UserID) (*model.User, error)

	// ListActiveAdmins returns users with role admin, status active and a
	// non-empty ID. Results are never cached.
	ListActiveAdmins(ctx context.Context) ([]*model.User, error)

	Put(ctx context.Context, user *model.User) error
}
