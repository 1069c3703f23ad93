package repository_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

func runLedgerRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Claim succeeds once per key", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		key := model.NewLedgerKey(model.WorkItemID(uniqueID("demo")), "u1", model.LedgerActionPrepare, baseTime, time.UTC)

		ok, err := repo.Ledger().Claim(ctx, key)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()

		ok, err = repo.Ledger().Claim(ctx, key)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("keys differ by day and action", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		item := model.WorkItemID(uniqueID("demo"))
		keys := []model.LedgerKey{
			model.NewLedgerKey(item, "u1", model.LedgerActionPrepare, baseTime, time.UTC),
			model.NewLedgerKey(item, "u1", model.LedgerActionPrepare, baseTime.Add(24*time.Hour), time.UTC),
			model.NewLedgerKey(item, "u1", model.LedgerActionEscalate, baseTime, time.UTC),
			model.NewLedgerKey(item, "u2", model.LedgerActionPrepare, baseTime, time.UTC),
		}
		for _, key := range keys {
			ok, err := repo.Ledger().Claim(ctx, key)
			gt.NoError(t, err).Required()
			gt.Bool(t, ok).True()
		}
	})

	t.Run("Release allows claiming again", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		key := model.NewLedgerKey(model.WorkItemID(uniqueID("svc")), "admin-1", model.LedgerActionEscalate, baseTime, time.UTC)

		ok, err := repo.Ledger().Claim(ctx, key)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()

		gt.NoError(t, repo.Ledger().Release(ctx, key)).Required()

		ok, err = repo.Ledger().Claim(ctx, key)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
	})

	t.Run("Release of unknown key is not an error", func(t *testing.T) {
		repo := newRepo(t)

		key := model.NewLedgerKey(model.WorkItemID(uniqueID("svc")), "u1", model.LedgerActionPrepare, baseTime, time.UTC)
		gt.NoError(t, repo.Ledger().Release(context.Background(), key))
	})

	t.Run("concurrent claims have a single winner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		key := model.NewLedgerKey(model.WorkItemID(uniqueID("demo")), "u1", model.LedgerActionPrepare, baseTime, time.UTC)

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.Ledger().Claim(ctx, key)
				if err == nil && ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		gt.Number(t, wins.Load()).Equal(1)
	})
}

func TestMemoryLedgerRepository(t *testing.T) {
	runLedgerRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreLedgerRepository(t *testing.T) {
	runLedgerRepositoryTest(t, newFirestoreRepository)
}
