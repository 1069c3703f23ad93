package types

import "fmt"

// WorkItemKind identifies the kind of scheduled field work
type WorkItemKind string

const (
	WorkItemKindDemonstration WorkItemKind = "demonstration"
	WorkItemKindServiceOrder  WorkItemKind = "service_order"
)

// AllWorkItemKinds returns all valid work item kinds
func AllWorkItemKinds() []WorkItemKind {
	return []WorkItemKind{
		WorkItemKindDemonstration,
		WorkItemKindServiceOrder,
	}
}

// IsValid checks if the work item kind is valid
func (k WorkItemKind) IsValid() bool {
	switch k {
	case WorkItemKindDemonstration, WorkItemKindServiceOrder:
		return true
	default:
		return false
	}
}

func (k WorkItemKind) String() string {
	return string(k)
}

// ParseWorkItemKind parses a string into a WorkItemKind
func ParseWorkItemKind(s string) (WorkItemKind, error) {
	kind := WorkItemKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid work item kind: %s", s)
	}
	return kind, nil
}

// WorkItemStatus is the lifecycle state of a work item. Only scheduled items
// are considered by the due-soon scan.
type WorkItemStatus string

const (
	WorkItemStatusScheduled WorkItemStatus = "scheduled"
	WorkItemStatusCompleted WorkItemStatus = "completed"
	WorkItemStatusCancelled WorkItemStatus = "cancelled"
)

// IsValid checks if the work item status is valid
func (s WorkItemStatus) IsValid() bool {
	switch s {
	case WorkItemStatusScheduled, WorkItemStatusCompleted, WorkItemStatusCancelled:
		return true
	default:
		return false
	}
}

func (s WorkItemStatus) String() string {
	return string(s)
}

// ParseWorkItemStatus parses a string into a WorkItemStatus
func ParseWorkItemStatus(s string) (WorkItemStatus, error) {
	status := WorkItemStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid work item status: %s", s)
	}
	return status, nil
}
