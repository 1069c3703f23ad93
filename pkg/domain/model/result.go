package model

import "github.com/secmon-lab/duesoon/pkg/domain/types"

// EscalationResult counts what one escalation pass did. Skipped counts side
// effects suppressed because they already happened today.
type EscalationResult struct {
	ItemsOwned             int `json:"items_owned"`
	ItemsUnowned           int `json:"items_unowned"`
	NotificationsAttempted int `json:"notifications_attempted"`
	NotificationsCreated   int `json:"notifications_created"`
	NotificationsSkipped   int `json:"notifications_skipped"`
	NotificationsFailed    int `json:"notifications_failed"`
	TasksAttempted         int `json:"tasks_attempted"`
	TasksCreated           int `json:"tasks_created"`
	TasksSkipped           int `json:"tasks_skipped"`
	TasksFailed            int `json:"tasks_failed"`
}

// Add accumulates other into r
func (r *EscalationResult) Add(other *EscalationResult) {
	r.ItemsOwned += other.ItemsOwned
	r.ItemsUnowned += other.ItemsUnowned
	r.NotificationsAttempted += other.NotificationsAttempted
	r.NotificationsCreated += other.NotificationsCreated
	r.NotificationsSkipped += other.NotificationsSkipped
	r.NotificationsFailed += other.NotificationsFailed
	r.TasksAttempted += other.TasksAttempted
	r.TasksCreated += other.TasksCreated
	r.TasksSkipped += other.TasksSkipped
	r.TasksFailed += other.TasksFailed
}

// JobReport summarizes one due-soon cycle for one work item kind
type JobReport struct {
	Kind         types.WorkItemKind `json:"kind"`
	ItemsChecked int                `json:"items_checked"`
	EscalationResult
}

// DeliveryResult is the outcome of one delivery attempt
type DeliveryResult struct {
	NotificationID   NotificationID `json:"notification_id"`
	Sent             bool           `json:"sent"`
	AlreadyDelivered bool           `json:"already_delivered"`
	Error            string         `json:"error,omitempty"` // soft failure reason when Sent is false
}
