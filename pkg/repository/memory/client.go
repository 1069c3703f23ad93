package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

type clientRepository struct {
	mu      sync.RWMutex
	clients map[model.ClientID]*model.Client
}

func newClientRepository() *clientRepository {
	return &clientRepository{
		clients: make(map[model.ClientID]*model.Client),
	}
}

func (r *clientRepository) Get(ctx context.Context, id model.ClientID) (*model.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.clients[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "client not found", goerr.V("id", id))
	}
	copied := *c
	return &copied, nil
}

func (r *clientRepository) Put(ctx context.Context, client *model.Client) error {
	if client.ID == "" {
		return goerr.New("client ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *client
	r.clients[client.ID] = &copied
	return nil
}
