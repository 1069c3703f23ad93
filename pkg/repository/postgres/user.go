package postgres

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

type userRepository struct {
	db *sql.DB
}

var userColumns = []string{
	"auth_user_id::text",
	"COALESCE(name, '')",
	"COALESCE(email, '')",
	"COALESCE(phone, '')",
	"COALESCE(role, '')",
	"COALESCE(status, '')",
}

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u      model.User
		role   string
		status string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &role, &status); err != nil {
		return nil, err
	}
	u.Role = types.UserRole(role)
	u.Status = types.UserStatus(status)
	return &u, nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"auth_user_id": string(id)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build user query")
	}

	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}
	return u, nil
}

func (r *userRepository) ListActiveAdmins(ctx context.Context) ([]*model.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{
			"role":   types.UserRoleAdmin.String(),
			"status": types.UserStatusActive.String(),
		}).
		Where(sq.NotEq{"auth_user_id": nil}).
		OrderBy("auth_user_id ASC").
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build admin query")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query active admins")
	}
	defer rows.Close()

	admins := make([]*model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan admin")
		}
		admins = append(admins, u)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate admins")
	}
	return admins, nil
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	query, args, err := psql.
		Insert("users").
		Columns("auth_user_id", "name", "email", "phone", "role", "status").
		Values(string(user.ID), user.Name, user.Email, nullIfEmpty(user.Phone), user.Role.String(), user.Status.String()).
		Suffix("ON CONFLICT (auth_user_id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone, role = EXCLUDED.role, status = EXCLUDED.status").
		ToSql()
	if err != nil {
		return goerr.Wrap(err, "failed to build user upsert")
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V("id", user.ID))
	}
	return nil
}
