package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

type notificationRepository struct {
	db *sql.DB

	// set once create_notification turned out to be missing
	rpcMissing atomic.Bool
}

var notificationColumns = []string{
	"id::text",
	"user_auth_id::text",
	"kind",
	"COALESCE(title, '')",
	"COALESCE(message, '')",
	"COALESCE(category, '')",
	"COALESCE(client_id::text, '')",
	"created_at",
	"COALESCE(whatsapp_sent, false)",
	"whatsapp_sent_at",
}

func scanNotification(row interface{ Scan(...any) error }) (*model.Notification, error) {
	var (
		n           model.Notification
		kind        string
		category    string
		deliveredAt sql.NullTime
	)
	if err := row.Scan(&n.ID, &n.RecipientID, &kind, &n.Title, &n.Message, &category,
		&n.ClientID, &n.CreatedAt, &n.Delivered, &deliveredAt); err != nil {
		return nil, err
	}
	n.Kind = types.NotificationKind(kind)
	n.Category = types.Category(category)
	if deliveredAt.Valid {
		at := deliveredAt.Time
		n.DeliveredAt = &at
	}
	return &n, nil
}

// Create calls create_notification when the notification has no client,
// because the procedure has no client parameter. Otherwise, or when the
// procedure is missing, the row is inserted directly.
func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	created := *n
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.Delivered = false
	created.DeliveredAt = nil

	if created.ID == "" && created.ClientID == "" && !r.rpcMissing.Load() {
		id, err := r.createByProcedure(ctx, &created)
		switch {
		case err == nil:
			created.ID = id
			return &created, nil
		case hasCode(err, codeUndefinedFunction):
			r.rpcMissing.Store(true)
			logging.From(ctx).Warn("create_notification procedure not found, falling back to direct insert")
		case hasCode(err, codeUniqueViolation):
			return nil, goerr.Wrap(interfaces.ErrDuplicate, "notification already exists", goerr.V("recipient_id", created.RecipientID))
		default:
			return nil, goerr.Wrap(err, "failed to call create_notification", goerr.V("recipient_id", created.RecipientID))
		}
	}

	if created.ID == "" {
		created.ID = model.NewNotificationID()
	}

	query, args, err := psql.
		Insert("notifications").
		Columns("id", "user_auth_id", "kind", "title", "message", "category", "client_id", "created_at", "whatsapp_sent").
		Values(string(created.ID), string(created.RecipientID), created.Kind.String(), created.Title, created.Message,
			nullIfEmpty(created.Category), nullIfEmpty(created.ClientID), created.CreatedAt, false).
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build notification insert")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if hasCode(err, codeUniqueViolation) {
			return nil, goerr.Wrap(interfaces.ErrDuplicate, "notification already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to insert notification", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *notificationRepository) createByProcedure(ctx context.Context, n *model.Notification) (model.NotificationID, error) {
	query, args, err := psql.
		Select().
		Column(sq.Expr("create_notification(?, ?, ?, ?, ?)::text",
			string(n.RecipientID), n.Kind.String(), n.Title, n.Message, nullIfEmpty(n.Category))).
		ToSql()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build create_notification call")
	}

	var id sql.NullString
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return "", err
	}
	return model.NotificationID(id.String), nil
}

func (r *notificationRepository) Get(ctx context.Context, id model.NotificationID) (*model.Notification, error) {
	query, args, err := psql.
		Select(notificationColumns...).
		From("notifications").
		Where(sq.Eq{"id": string(id)}).
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build notification query")
	}

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
	}
	return n, nil
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, id model.NotificationID, at time.Time) (bool, error) {
	query, args, err := psql.
		Update("notifications").
		Set("whatsapp_sent", true).
		Set("whatsapp_sent_at", at.UTC()).
		Where(sq.Eq{"id": string(id)}).
		Where("COALESCE(whatsapp_sent, false) = false").
		ToSql()
	if err != nil {
		return false, goerr.Wrap(err, "failed to build notification update")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, goerr.Wrap(err, "failed to mark notification delivered", goerr.V("id", id))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, goerr.Wrap(err, "failed to read affected rows", goerr.V("id", id))
	}
	if affected > 0 {
		return true, nil
	}

	// Nothing changed: either already delivered or missing
	if _, err := r.Get(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *notificationRepository) ListUndelivered(ctx context.Context, since time.Time, limit int) ([]*model.Notification, error) {
	builder := psql.
		Select(notificationColumns...).
		From("notifications").
		Where("COALESCE(whatsapp_sent, false) = false").
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	return r.list(ctx, builder)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID model.UserID) ([]*model.Notification, error) {
	return r.list(ctx, psql.
		Select(notificationColumns...).
		From("notifications").
		Where(sq.Eq{"user_auth_id": string(recipientID)}).
		OrderBy("created_at ASC"))
}

func (r *notificationRepository) list(ctx context.Context, builder sq.SelectBuilder) ([]*model.Notification, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build notification list query")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query notifications")
	}
	defer rows.Close()

	result := make([]*model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan notification")
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate notifications")
	}
	return result, nil
}
