package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

type taskRepository struct {
	mu    sync.RWMutex
	tasks map[model.TaskID]*model.Task
	order []model.TaskID
}

func newTaskRepository() *taskRepository {
	return &taskRepository{
		tasks: make(map[model.TaskID]*model.Task),
	}
}

func copyTask(t *model.Task) *model.Task {
	c := *t
	if t.AssignedUsers != nil {
		c.AssignedUsers = make([]model.UserID, len(t.AssignedUsers))
		copy(c.AssignedUsers, t.AssignedUsers)
	}
	return &c
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyTask(task)
	if created.ID == "" {
		created.ID = model.NewTaskID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.Status == "" {
		created.Status = types.TaskStatusPending
	}

	if _, exists := r.tasks[created.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrDuplicate, "task already exists", goerr.V("id", created.ID))
	}

	r.tasks[created.ID] = created
	r.order = append(r.order, created.ID)
	return copyTask(created), nil
}

func (r *taskRepository) FindActive(ctx context.Context, responsibleID model.UserID, linkedItemID model.WorkItemID, taskType types.TaskType) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		t := r.tasks[id]
		if t.ResponsibleID == responsibleID && t.LinkedItemID == linkedItemID && t.Type == taskType && t.IsActive() {
			return copyTask(t), nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "active task not found",
		goerr.V("responsible_id", responsibleID),
		goerr.V("linked_item_id", linkedItemID),
		goerr.V("type", taskType))
}

func (r *taskRepository) ListByLinkedItem(ctx context.Context, linkedItemID model.WorkItemID) ([]*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*model.Task, 0)
	for _, id := range r.order {
		if t := r.tasks[id]; t.LinkedItemID == linkedItemID {
			tasks = append(tasks, copyTask(t))
		}
	}
	return tasks, nil
}
