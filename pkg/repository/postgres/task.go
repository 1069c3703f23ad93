package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

type taskRepository struct {
	db *sql.DB

	// set once create_task turned out to be missing
	rpcMissing atomic.Bool
}

var taskColumns = []string{
	"id::text",
	"responsible_auth_id::text",
	"type",
	"COALESCE(client_id::text, '')",
	"COALESCE(related_entity_id::text, '')",
	"due_at",
	"priority",
	"COALESCE(notes, '')",
	"assigned_users::text[]",
	"status",
	"created_at",
}

func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	var (
		t        model.Task
		taskType string
		priority string
		status   string
		assigned pq.StringArray
	)
	if err := row.Scan(&t.ID, &t.ResponsibleID, &taskType, &t.ClientID, &t.LinkedItemID,
		&t.DueAt, &priority, &t.Note, &assigned, &status, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Type = types.TaskType(taskType)
	t.Priority = types.Priority(priority)
	t.Status = types.TaskStatus(status)
	if assigned != nil {
		t.AssignedUsers = make([]model.UserID, len(assigned))
		for i, a := range assigned {
			t.AssignedUsers[i] = model.UserID(a)
		}
	}
	return &t, nil
}

func userIDArray(ids []model.UserID) any {
	if ids == nil {
		return nil
	}
	arr := make(pq.StringArray, len(ids))
	for i, id := range ids {
		arr[i] = string(id)
	}
	return arr
}

// Create calls create_task and falls back to a direct insert when the
// procedure does not exist. Unique violations map to ErrDuplicate.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	created := *task
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.Status == "" {
		created.Status = types.TaskStatusPending
	}

	if created.ID == "" && !r.rpcMissing.Load() {
		id, err := r.createByProcedure(ctx, &created)
		switch {
		case err == nil:
			created.ID = id
			return &created, nil
		case hasCode(err, codeUndefinedFunction):
			r.rpcMissing.Store(true)
			logging.From(ctx).Warn("create_task procedure not found, falling back to direct insert")
		case hasCode(err, codeUniqueViolation):
			return nil, goerr.Wrap(interfaces.ErrDuplicate, "task already exists", goerr.V("linked_item_id", created.LinkedItemID))
		default:
			return nil, goerr.Wrap(err, "failed to call create_task", goerr.V("linked_item_id", created.LinkedItemID))
		}
	}

	if created.ID == "" {
		created.ID = model.NewTaskID()
	}

	query, args, err := psql.
		Insert("tasks").
		Columns("id", "responsible_auth_id", "type", "client_id", "related_entity_id", "due_at", "priority", "notes", "assigned_users", "status", "created_at").
		Values(string(created.ID), string(created.ResponsibleID), created.Type.String(), nullIfEmpty(created.ClientID),
			nullIfEmpty(created.LinkedItemID), created.DueAt, created.Priority.String(), nullIfEmpty(created.Note),
			userIDArray(created.AssignedUsers), created.Status.String(), created.CreatedAt).
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build task insert")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if hasCode(err, codeUniqueViolation) {
			return nil, goerr.Wrap(interfaces.ErrDuplicate, "task already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to insert task", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *taskRepository) createByProcedure(ctx context.Context, t *model.Task) (model.TaskID, error) {
	query, args, err := psql.
		Select().
		Column(sq.Expr("create_task(?, ?, ?, ?, ?, ?, ?, ?)::text",
			string(t.ResponsibleID), t.Type.String(), nullIfEmpty(t.ClientID), nullIfEmpty(t.LinkedItemID),
			t.DueAt, t.Priority.String(), nullIfEmpty(t.Note), userIDArray(t.AssignedUsers))).
		ToSql()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build create_task call")
	}

	var id sql.NullString
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return "", err
	}
	return model.TaskID(id.String), nil
}

func (r *taskRepository) FindActive(ctx context.Context, responsibleID model.UserID, linkedItemID model.WorkItemID, taskType types.TaskType) (*model.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{
			"responsible_auth_id": string(responsibleID),
			"related_entity_id":   string(linkedItemID),
			"type":                taskType.String(),
			"status":              types.ActiveTaskStatusStrings(),
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build active task query")
	}

	t, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "active task not found",
				goerr.V("responsible_id", responsibleID),
				goerr.V("linked_item_id", linkedItemID),
				goerr.V("type", taskType))
		}
		return nil, goerr.Wrap(err, "failed to query active task", goerr.V("linked_item_id", linkedItemID))
	}
	return t, nil
}

func (r *taskRepository) ListByLinkedItem(ctx context.Context, linkedItemID model.WorkItemID) ([]*model.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"related_entity_id": string(linkedItemID)}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build task list query")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query tasks", goerr.V("linked_item_id", linkedItemID))
	}
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan task", goerr.V("linked_item_id", linkedItemID))
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate tasks", goerr.V("linked_item_id", linkedItemID))
	}
	return tasks, nil
}
