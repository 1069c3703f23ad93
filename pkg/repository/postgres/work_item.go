package postgres

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

type workItemRepository struct {
	db *sql.DB
}

func workItemTable(kind types.WorkItemKind) (string, error) {
	switch kind {
	case types.WorkItemKindDemonstration:
		return "demonstrations", nil
	case types.WorkItemKindServiceOrder:
		return "services", nil
	default:
		return "", goerr.New("unknown work item kind", goerr.V("kind", kind))
	}
}

func (r *workItemRepository) ListScheduled(ctx context.Context, kind types.WorkItemKind, from, to time.Time) ([]*model.WorkItem, error) {
	table, err := workItemTable(kind)
	if err != nil {
		return nil, err
	}

	detail := "w.demo_types"
	if kind == types.WorkItemKindServiceOrder {
		detail = "ARRAY[w.service_type]"
	}

	query, args, err := psql.
		Select(
			"w.id::text",
			"COALESCE(w.client_id::text, '')",
			"COALESCE(c.contact_name, '')",
			"w.date",
			"w.status",
			"w.assigned_users::text[]",
			detail,
		).
		From(table + " w").
		LeftJoin("clients c ON c.id = w.client_id").
		Where(sq.Eq{"w.status": types.WorkItemStatusScheduled.String()}).
		Where(sq.GtOrEq{"w.date": from}).
		Where(sq.LtOrEq{"w.date": to}).
		OrderBy("w.date ASC").
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build work item query", goerr.V("kind", kind))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query work items", goerr.V("kind", kind))
	}
	defer rows.Close()

	items := make([]*model.WorkItem, 0)
	for rows.Next() {
		var (
			item    model.WorkItem
			status  string
			owners  pq.StringArray
			details pq.StringArray
		)
		if err := rows.Scan(&item.ID, &item.ClientID, &item.ClientName, &item.ScheduledAt, &status, &owners, &details); err != nil {
			return nil, goerr.Wrap(err, "failed to scan work item", goerr.V("kind", kind))
		}

		item.Kind = kind
		item.Status = types.WorkItemStatus(status)
		item.OwnerIDs = make([]model.UserID, 0, len(owners))
		for _, o := range owners {
			item.OwnerIDs = append(item.OwnerIDs, model.UserID(o))
		}
		if kind == types.WorkItemKindServiceOrder {
			if len(details) > 0 {
				item.ServiceType = details[0]
			}
		} else {
			item.DemoTypes = []string(details)
		}

		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate work items", goerr.V("kind", kind))
	}

	return items, nil
}

func (r *workItemRepository) Put(ctx context.Context, item *model.WorkItem) error {
	table, err := workItemTable(item.Kind)
	if err != nil {
		return err
	}

	owners := make(pq.StringArray, 0, len(item.OwnerIDs))
	for _, o := range item.OwnerIDs {
		owners = append(owners, string(o))
	}

	builder := psql.Insert(table)
	if item.Kind == types.WorkItemKindServiceOrder {
		builder = builder.
			Columns("id", "client_id", "date", "status", "assigned_users", "service_type").
			Values(string(item.ID), nullIfEmpty(item.ClientID), item.ScheduledAt, item.Status.String(), owners, item.ServiceType).
			Suffix("ON CONFLICT (id) DO UPDATE SET client_id = EXCLUDED.client_id, date = EXCLUDED.date, status = EXCLUDED.status, assigned_users = EXCLUDED.assigned_users, service_type = EXCLUDED.service_type")
	} else {
		builder = builder.
			Columns("id", "client_id", "date", "status", "assigned_users", "demo_types").
			Values(string(item.ID), nullIfEmpty(item.ClientID), item.ScheduledAt, item.Status.String(), owners, pq.StringArray(item.DemoTypes)).
			Suffix("ON CONFLICT (id) DO UPDATE SET client_id = EXCLUDED.client_id, date = EXCLUDED.date, status = EXCLUDED.status, assigned_users = EXCLUDED.assigned_users, demo_types = EXCLUDED.demo_types")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return goerr.Wrap(err, "failed to build work item upsert", goerr.V("id", item.ID))
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return goerr.Wrap(err, "failed to put work item", goerr.V("id", item.ID))
	}
	return nil
}
