package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	WorkItem() WorkItemRepository
	Task() TaskRepository
	Notification() NotificationRepository
	User() UserRepository
	Client() ClientRepository
	Ledger() LedgerRepository

	Close() error
}
