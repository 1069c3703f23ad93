package postgres

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

type ledgerRepository struct {
	db *sql.DB
}

func (r *ledgerRepository) Claim(ctx context.Context, key model.LedgerKey) (bool, error) {
	query, args, err := psql.
		Insert("due_soon_ledger").
		Columns("key", "work_item_id", "recipient_id", "action", "day", "created_at").
		Values(key.String(), string(key.WorkItemID), string(key.RecipientID), key.Action, key.Day, time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()
	if err != nil {
		return false, goerr.Wrap(err, "failed to build ledger insert")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, goerr.Wrap(err, "failed to claim ledger key", goerr.V("key", key.String()))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, goerr.Wrap(err, "failed to read affected rows", goerr.V("key", key.String()))
	}
	return affected == 1, nil
}

func (r *ledgerRepository) Release(ctx context.Context, key model.LedgerKey) error {
	query, args, err := psql.
		Delete("due_soon_ledger").
		Where(sq.Eq{"key": key.String()}).
		ToSql()
	if err != nil {
		return goerr.Wrap(err, "failed to build ledger delete")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return goerr.Wrap(err, "failed to release ledger key", goerr.V("key", key.String()))
	}
	return nil
}
