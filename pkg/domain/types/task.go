package types

import "fmt"

// TaskType is the kind of follow-up task created for a work item
type TaskType string

const (
	TaskTypeDemoPrepare     TaskType = "demo_prepare"
	TaskTypeServicePrecheck TaskType = "service_precheck"
	TaskTypeFollowup        TaskType = "followup"
)

// AllTaskTypes returns all valid task types
func AllTaskTypes() []TaskType {
	return []TaskType{
		TaskTypeDemoPrepare,
		TaskTypeServicePrecheck,
		TaskTypeFollowup,
	}
}

// IsValid checks if the task type is valid
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeDemoPrepare, TaskTypeServicePrecheck, TaskTypeFollowup:
		return true
	default:
		return false
	}
}

func (t TaskType) String() string {
	return string(t)
}

// ParseTaskType parses a string into a TaskType
func ParseTaskType(s string) (TaskType, error) {
	taskType := TaskType(s)
	if !taskType.IsValid() {
		return "", fmt.Errorf("invalid task type: %s", s)
	}
	return taskType, nil
}

// TaskStatus represents the status of a task. Tasks are created pending;
// the other states are set by the CRM.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// ActiveTaskStatuses returns the statuses that count as open work
func ActiveTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusPending, TaskStatusInProgress}
}

// IsValid checks if the task status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether a task in this status still counts as open work
func (s TaskStatus) IsActive() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress:
		return true
	default:
		return false
	}
}

func (s TaskStatus) String() string {
	return string(s)
}

// ActiveTaskStatusStrings returns ActiveTaskStatuses as plain strings for
// store queries
func ActiveTaskStatusStrings() []string {
	statuses := ActiveTaskStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (p Priority) String() string {
	return string(p)
}

// ParsePriority parses a string into a Priority
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}
