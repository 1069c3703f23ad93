package interfaces

import (
	"context"

	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

// LedgerRepository records which due-soon side effects already happened
type LedgerRepository interface {
	// Claim atomically records key. It returns false when key was already
	// claimed, in which case the caller must skip the side effect.
	Claim(ctx context.Context, key model.LedgerKey) (bool, error)

	// Release removes a claim so that a failed side effect can be retried
	Release(ctx context.Context, key model.LedgerKey) error
}
