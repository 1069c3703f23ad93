package model

import (
	"strings"
	"time"
)

// Ledger actions for notifications. Task ledger entries use the task type.
const (
	LedgerActionPrepare  = "prepare"
	LedgerActionEscalate = "escalate"
)

// LedgerKey identifies one side effect of the due-soon job: one action for
// one recipient about one work item on one calendar day.
type LedgerKey struct {
	WorkItemID  WorkItemID
	RecipientID UserID
	Action      string
	Day         string // YYYY-MM-DD in the job's time zone
}

// NewLedgerKey builds a key bucketed by the calendar day of at in loc
func NewLedgerKey(itemID WorkItemID, recipientID UserID, action string, at time.Time, loc *time.Location) LedgerKey {
	if loc == nil {
		loc = time.UTC
	}
	return LedgerKey{
		WorkItemID:  itemID,
		RecipientID: recipientID,
		Action:      action,
		Day:         at.In(loc).Format(time.DateOnly),
	}
}

// String returns the key in a form usable as a document ID or primary key
func (k LedgerKey) String() string {
	return strings.Join([]string{string(k.WorkItemID), string(k.RecipientID), k.Action, k.Day}, ":")
}

// LedgerEntry records that a LedgerKey has been claimed
type LedgerEntry struct {
	Key       string
	CreatedAt time.Time
}
