package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

// TaskInput describes a task to create. AssignedUsers, when nil, defaults to
// the responsible party alone.
type TaskInput struct {
	ResponsibleID model.UserID
	Type          types.TaskType
	ClientID      model.ClientID
	LinkedItemID  model.WorkItemID
	DueAt         time.Time
	Priority      types.Priority
	Note          string
	AssignedUsers []model.UserID
}

// TaskResult reports the task and whether this call inserted it. Created is
// false when an equivalent active task already existed.
type TaskResult struct {
	Task    *model.Task
	Created bool
}

type TaskUseCase struct {
	repo interfaces.Repository
}

func NewTaskUseCase(repo interfaces.Repository) *TaskUseCase {
	return &TaskUseCase{
		repo: repo,
	}
}

// CreateTask inserts a pending task unless an active task with the same
// responsible party, linked item and type exists.
func (uc *TaskUseCase) CreateTask(ctx context.Context, input TaskInput) (*TaskResult, error) {
	if input.ResponsibleID == "" {
		return nil, goerr.Wrap(ErrMissingRecipient, "task responsible is required",
			goerr.V(WorkItemIDKey, input.LinkedItemID))
	}
	if !input.Type.IsValid() {
		return nil, goerr.Wrap(ErrInvalidTaskType, "invalid task type", goerr.V(TaskTypeKey, input.Type))
	}
	if input.Priority == "" {
		input.Priority = types.PriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, goerr.Wrap(ErrInvalidPriority, "invalid task priority", goerr.V("priority", input.Priority))
	}

	if input.LinkedItemID != "" {
		existing, err := uc.repo.Task().FindActive(ctx, input.ResponsibleID, input.LinkedItemID, input.Type)
		switch {
		case err == nil:
			return &TaskResult{Task: existing}, nil
		case !errors.Is(err, interfaces.ErrNotFound):
			return nil, goerr.Wrap(err, "failed to look up active task",
				goerr.V(UserIDKey, input.ResponsibleID),
				goerr.V(WorkItemIDKey, input.LinkedItemID))
		}
	}

	assigned := input.AssignedUsers
	if assigned == nil {
		assigned = []model.UserID{input.ResponsibleID}
	}

	task := &model.Task{
		ResponsibleID: input.ResponsibleID,
		Type:          input.Type,
		ClientID:      input.ClientID,
		LinkedItemID:  input.LinkedItemID,
		DueAt:         input.DueAt,
		Priority:      input.Priority,
		Note:          input.Note,
		AssignedUsers: assigned,
		Status:        types.TaskStatusPending,
	}

	created, err := uc.repo.Task().Create(ctx, task)
	if err != nil {
		if errors.Is(err, interfaces.ErrDuplicate) {
			logging.From(ctx).Info("task already exists",
				"responsible_id", input.ResponsibleID,
				"linked_item_id", input.LinkedItemID,
				"type", input.Type)
			return &TaskResult{}, nil
		}
		return nil, goerr.Wrap(err, "failed to create task",
			goerr.V(UserIDKey, input.ResponsibleID),
			goerr.V(WorkItemIDKey, input.LinkedItemID),
			goerr.V(TaskTypeKey, input.Type))
	}

	return &TaskResult{Task: created, Created: true}, nil
}
