package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ledgerRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *ledgerRepository) ledgerCollection() string {
	return CollectionName(r.collectionPrefix, CollectionLedger)
}

// Claim relies on DocumentRef.Create failing with AlreadyExists, which makes
// the check-and-insert atomic across processes.
func (r *ledgerRepository) Claim(ctx context.Context, key model.LedgerKey) (bool, error) {
	entry := &model.LedgerEntry{Key: key.String(), CreatedAt: time.Now().UTC()}

	_, err := r.client.Collection(r.ledgerCollection()).Doc(entry.Key).Create(ctx, entry)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to claim ledger key", goerr.V("key", entry.Key))
	}
	return true, nil
}

func (r *ledgerRepository) Release(ctx context.Context, key model.LedgerKey) error {
	if _, err := r.client.Collection(r.ledgerCollection()).Doc(key.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to release ledger key", goerr.V("key", key.String()))
	}
	return nil
}
