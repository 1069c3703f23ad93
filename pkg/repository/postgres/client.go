package postgres

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
)

type clientRepository struct {
	db *sql.DB
}

func (r *clientRepository) Get(ctx context.Context, id model.ClientID) (*model.Client, error) {
	query, args, err := psql.
		Select("id::text", "COALESCE(contact_name, '')", "COALESCE(phone, '')", "COALESCE(whatsapp, '')").
		From("clients").
		Where(sq.Eq{"id": string(id)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build client query")
	}

	var c model.Client
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.ContactName, &c.Phone, &c.WhatsApp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "client not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get client", goerr.V("id", id))
	}
	return &c, nil
}

func (r *clientRepository) Put(ctx context.Context, c *model.Client) error {
	query, args, err := psql.
		Insert("clients").
		Columns("id", "contact_name", "phone", "whatsapp").
		Values(string(c.ID), c.ContactName, nullIfEmpty(c.Phone), nullIfEmpty(c.WhatsApp)).
		Suffix("ON CONFLICT (id) DO UPDATE SET contact_name = EXCLUDED.contact_name, phone = EXCLUDED.phone, whatsapp = EXCLUDED.whatsapp").
		ToSql()
	if err != nil {
		return goerr.Wrap(err, "failed to build client upsert")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return goerr.Wrap(err, "failed to put client", goerr.V("id", c.ID))
	}
	return nil
}
