package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

type WorkItemRepository interface {
	// ListScheduled returns scheduled items of kind with ScheduledAt in
	// [from, to], both inclusive, ordered by ScheduledAt.
	ListScheduled(ctx context.Context, kind types.WorkItemKind, from, to time.Time) ([]*model.WorkItem, error)

	// Put creates or replaces a work item. Work items are owned by the CRM;
	// Put exists for seeding and tests.
	Put(ctx context.Context, item *model.WorkItem) error
}
