package memory

import (
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-process repository for development and tests
type Memory struct {
	workItem     *workItemRepository
	task         *taskRepository
	notification *notificationRepository
	user         *userRepository
	client       *clientRepository
	ledger       *ledgerRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		workItem:     newWorkItemRepository(),
		task:         newTaskRepository(),
		notification: newNotificationRepository(),
		user:         newUserRepository(),
		client:       newClientRepository(),
		ledger:       newLedgerRepository(),
	}
}

func (m *Memory) WorkItem() interfaces.WorkItemRepository {
	return m.workItem
}

func (m *Memory) Task() interfaces.TaskRepository {
	return m.task
}

func (m *Memory) Notification() interfaces.NotificationRepository {
	return m.notification
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Client() interfaces.ClientRepository {
	return m.client
}

func (m *Memory) Ledger() interfaces.LedgerRepository {
	return m.ledger
}

func (m *Memory) Close() error {
	return nil
}
