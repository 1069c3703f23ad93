package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

type workItemRepository struct {
	mu    sync.RWMutex
	items map[model.WorkItemID]*model.WorkItem
}

func newWorkItemRepository() *workItemRepository {
	return &workItemRepository{
		items: make(map[model.WorkItemID]*model.WorkItem),
	}
}

func copyWorkItem(w *model.WorkItem) *model.WorkItem {
	c := *w
	if w.OwnerIDs != nil {
		c.OwnerIDs = make([]model.UserID, len(w.OwnerIDs))
		copy(c.OwnerIDs, w.OwnerIDs)
	}
	if w.DemoTypes != nil {
		c.DemoTypes = make([]string, len(w.DemoTypes))
		copy(c.DemoTypes, w.DemoTypes)
	}
	return &c
}

func (r *workItemRepository) Put(ctx context.Context, item *model.WorkItem) error {
	if item.ID == "" {
		return goerr.New("work item ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = copyWorkItem(item)
	return nil
}

func (r *workItemRepository) ListScheduled(ctx context.Context, kind types.WorkItemKind, from, to time.Time) ([]*model.WorkItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*model.WorkItem, 0)
	for _, item := range r.items {
		if item.Kind != kind || !item.IsDueWithin(from, to) {
			continue
		}
		items = append(items, copyWorkItem(item))
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].ScheduledAt.Equal(items[j].ScheduledAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].ScheduledAt.Before(items[j].ScheduledAt)
	})

	return items, nil
}
