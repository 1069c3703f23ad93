package interfaces

import (
	"context"

	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

type TaskRepository interface {
	// Create inserts a task. ID and CreatedAt are assigned when empty.
	Create(ctx context.Context, task *model.Task) (*model.Task, error)

	// FindActive returns the active task for the combination, or ErrNotFound
	FindActive(ctx context.Context, responsibleID model.UserID, linkedItemID model.WorkItemID, taskType types.TaskType) (*model.Task, error)

	ListByLinkedItem(ctx context.Context, linkedItemID model.WorkItemID) ([]*model.Task, error)
}
