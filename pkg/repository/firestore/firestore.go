package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = interfaces.ErrNotFound

// Collection names without prefix. Exported for index migration.
const (
	CollectionDemonstrations = "demonstrations"
	CollectionServices       = "services"
	CollectionTasks          = "tasks"
	CollectionNotifications  = "notifications"
	CollectionUsers          = "users"
	CollectionClients        = "clients"
	CollectionLedger         = "due_soon_ledger"
)

type Firestore struct {
	client       *firestore.Client
	workItem     *workItemRepository
	task         *taskRepository
	notification *notificationRepository
	user         *userRepository
	clientRepo   *clientRepository
	ledger       *ledgerRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, e.g. for isolated test runs
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.workItem.collectionPrefix = prefix
		f.task.collectionPrefix = prefix
		f.notification.collectionPrefix = prefix
		f.user.collectionPrefix = prefix
		f.clientRepo.collectionPrefix = prefix
		f.ledger.collectionPrefix = prefix
	}
}

// New connects to Firestore. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		workItem:     &workItemRepository{client: client},
		task:         &taskRepository{client: client},
		notification: &notificationRepository{client: client},
		user:         &userRepository{client: client},
		clientRepo:   &clientRepository{client: client},
		ledger:       &ledgerRepository{client: client},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// CollectionName returns name with the optional prefix applied
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

func (f *Firestore) WorkItem() interfaces.WorkItemRepository {
	return f.workItem
}

func (f *Firestore) Task() interfaces.TaskRepository {
	return f.task
}

func (f *Firestore) Notification() interfaces.NotificationRepository {
	return f.notification
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Client() interfaces.ClientRepository {
	return f.clientRepo
}

func (f *Firestore) Ledger() interfaces.LedgerRepository {
	return f.ledger
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
