package memory

import (
	"context"
	"sync"
	"time"

	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

type ledgerRepository struct {
	mu      sync.Mutex
	entries map[string]*model.LedgerEntry
}

func newLedgerRepository() *ledgerRepository {
	return &ledgerRepository{
		entries: make(map[string]*model.LedgerEntry),
	}
}

func (r *ledgerRepository) Claim(ctx context.Context, key model.LedgerKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key.String()
	if _, exists := r.entries[k]; exists {
		return false, nil
	}
	r.entries[k] = &model.LedgerEntry{Key: k, CreatedAt: time.Now().UTC()}
	return true, nil
}

func (r *ledgerRepository) Release(ctx context.Context, key model.LedgerKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, key.String())
	return nil
}
