package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = interfaces.ErrNotFound

// SQLSTATE codes handled explicitly
const (
	codeUniqueViolation   = "23505"
	codeUndefinedFunction = "42883"
)

//go:embed schema.sql
var schemaSQL string

// psql builds statements with $n placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres is a repository over the CRM's PostgreSQL database. Work items,
// users and clients are read from CRM tables; tasks and notifications are
// written through the create_task/create_notification procedures when the
// database provides them.
type Postgres struct {
	db           *sql.DB
	workItem     *workItemRepository
	task         *taskRepository
	notification *notificationRepository
	user         *userRepository
	client       *clientRepository
	ledger       *ledgerRepository
}

var _ interfaces.Repository = &Postgres{}

// Open connects with lib/pq and verifies the connection
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open postgres connection")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping postgres")
	}
	return New(db), nil
}

// New wraps an existing database handle
func New(db *sql.DB) *Postgres {
	return &Postgres{
		db:           db,
		workItem:     &workItemRepository{db: db},
		task:         &taskRepository{db: db},
		notification: &notificationRepository{db: db},
		user:         &userRepository{db: db},
		client:       &clientRepository{db: db},
		ledger:       &ledgerRepository{db: db},
	}
}

// Migrate creates the tables owned by this service. CRM tables are not touched.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSQL); err != nil {
		return goerr.Wrap(err, "failed to apply postgres schema")
	}
	return nil
}

func (p *Postgres) WorkItem() interfaces.WorkItemRepository {
	return p.workItem
}

func (p *Postgres) Task() interfaces.TaskRepository {
	return p.task
}

func (p *Postgres) Notification() interfaces.NotificationRepository {
	return p.notification
}

func (p *Postgres) User() interfaces.UserRepository {
	return p.user
}

func (p *Postgres) Client() interfaces.ClientRepository {
	return p.client
}

func (p *Postgres) Ledger() interfaces.LedgerRepository {
	return p.ledger
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}

func nullIfEmpty[T ~string](s T) any {
	if s == "" {
		return nil
	}
	return string(s)
}
