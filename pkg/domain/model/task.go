package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

// TaskID is a UUID-based identifier for Task
type TaskID string

// NewTaskID generates a new UUID v4 TaskID
func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

// Task is a follow-up action assigned to one responsible user
type Task struct {
	ID            TaskID
	ResponsibleID UserID
	Type          types.TaskType
	ClientID      ClientID
	LinkedItemID  WorkItemID
	DueAt         time.Time
	Priority      types.Priority
	Note          string
	AssignedUsers []UserID // nil unless assignees were given explicitly
	Status        types.TaskStatus
	CreatedAt     time.Time
}

// IsActive reports whether the task is still open
func (t *Task) IsActive() bool {
	return t.Status.IsActive()
}
