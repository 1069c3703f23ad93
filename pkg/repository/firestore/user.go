package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *userRepository) usersCollection() string {
	return CollectionName(r.collectionPrefix, CollectionUsers)
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}

	doc, err := r.client.Collection(r.usersCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var u model.User
	if err := doc.DataTo(&u); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V("id", id))
	}
	return &u, nil
}

func (r *userRepository) ListActiveAdmins(ctx context.Context) ([]*model.User, error) {
	iter := r.client.Collection(r.usersCollection()).
		Where("Role", "==", types.UserRoleAdmin.String()).
		Where("Status", "==", types.UserStatusActive.String()).
		Documents(ctx)
	defer iter.Stop()

	admins := make([]*model.User, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var u model.User
		if err := doc.DataTo(&u); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", doc.Ref.ID))
		}
		if u.ID == "" {
			continue
		}
		admins = append(admins, &u)
	}
	return admins, nil
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		return goerr.New("user ID is required")
	}
	if _, err := r.client.Collection(r.usersCollection()).Doc(string(user.ID)).Set(ctx, user); err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V("id", user.ID))
	}
	return nil
}
