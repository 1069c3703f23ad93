package model

import (
	"strings"
	"time"

	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

// WorkItemID identifies a demonstration or service order
type WorkItemID string

// ClientID identifies a CRM client
type ClientID string

// WorkItem is a scheduled unit of field work: a demonstration or a service order.
// The job only reads work items.
type WorkItem struct {
	ID          WorkItemID
	Kind        types.WorkItemKind
	ClientID    ClientID
	ClientName  string // contact name of the client, empty when not joined
	ScheduledAt time.Time
	Status      types.WorkItemStatus
	OwnerIDs    []UserID
	DemoTypes   []string // demonstrations only
	ServiceType string   // service orders only
	CreatedAt   time.Time
}

// Owners returns the distinct non-empty owner IDs in their original order
func (w *WorkItem) Owners() []UserID {
	return UniqueUserIDs(w.OwnerIDs)
}

// IsOwned reports whether at least one owner is assigned
func (w *WorkItem) IsOwned() bool {
	return len(w.Owners()) > 0
}

// IsDueWithin reports whether the item is scheduled and its time falls in
// [from, to], both bounds inclusive.
func (w *WorkItem) IsDueWithin(from, to time.Time) bool {
	if w.Status != types.WorkItemStatusScheduled {
		return false
	}
	return !w.ScheduledAt.Before(from) && !w.ScheduledAt.After(to)
}

// Category returns the notification category of the item
func (w *WorkItem) Category() types.Category {
	if w.Kind == types.WorkItemKindServiceOrder {
		return types.ServiceCategory(w.ServiceType)
	}
	return types.CategoryDemonstration
}

// Subject is a short human readable description of what is scheduled
func (w *WorkItem) Subject() string {
	switch w.Kind {
	case types.WorkItemKindServiceOrder:
		return w.ServiceType
	default:
		if len(w.DemoTypes) == 0 {
			return "demonstração"
		}
		return strings.Join(w.DemoTypes, ", ")
	}
}

// DisplayClientName returns the client name, or a generic placeholder
func (w *WorkItem) DisplayClientName() string {
	if w.ClientName == "" {
		return "Cliente"
	}
	return w.ClientName
}

// Partition splits due work items by whether anyone owns them
type Partition struct {
	Owned   []*WorkItem
	Unowned []*WorkItem
}

// Total returns the number of work items in both partitions
func (p *Partition) Total() int {
	return len(p.Owned) + len(p.Unowned)
}
