package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")

	// Configuration errors
	ErrChannelNotConfigured = errors.New("outbound channel is not configured")
	ErrUnknownWorkItemKind  = errors.New("unknown work item kind")

	// Input errors
	ErrMissingNotificationID = errors.New("notification ID is required")
	ErrMissingRecipient      = errors.New("recipient is required")
	ErrInvalidTaskType       = errors.New("invalid task type")
	ErrInvalidPriority       = errors.New("invalid priority")
	ErrInvalidKind           = errors.New("invalid notification kind")
)

// Context keys for error values
const (
	NotificationIDKey = "notification_id"
	UserIDKey         = "user_id"
	ClientIDKey       = "client_id"
	WorkItemIDKey     = "work_item_id"
	WorkItemKindKey   = "work_item_kind"
	TaskTypeKey       = "task_type"
	RecipientIDKey    = "recipient_id"
)
