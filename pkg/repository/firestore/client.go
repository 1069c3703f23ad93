package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type clientRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *clientRepository) clientsCollection() string {
	return CollectionName(r.collectionPrefix, CollectionClients)
}

func (r *clientRepository) Get(ctx context.Context, id model.ClientID) (*model.Client, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrNotFound, "client not found", goerr.V("id", id))
	}

	doc, err := r.client.Collection(r.clientsCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "client not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get client", goerr.V("id", id))
	}

	var c model.Client
	if err := doc.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode client", goerr.V("id", id))
	}
	return &c, nil
}

func (r *clientRepository) Put(ctx context.Context, c *model.Client) error {
	if c.ID == "" {
		return goerr.New("client ID is required")
	}
	if _, err := r.client.Collection(r.clientsCollection()).Doc(string(c.ID)).Set(ctx, c); err != nil {
		return goerr.Wrap(err, "failed to put client", goerr.V("id", c.ID))
	}
	return nil
}
