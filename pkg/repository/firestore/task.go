package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type taskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *taskRepository) tasksCollection() string {
	return CollectionName(r.collectionPrefix, CollectionTasks)
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	created := *task
	if created.ID == "" {
		created.ID = model.NewTaskID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.Status == "" {
		created.Status = types.TaskStatusPending
	}

	_, err := r.client.Collection(r.tasksCollection()).Doc(string(created.ID)).Create(ctx, &created)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(interfaces.ErrDuplicate, "task already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create task", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *taskRepository) FindActive(ctx context.Context, responsibleID model.UserID, linkedItemID model.WorkItemID, taskType types.TaskType) (*model.Task, error) {
	iter := r.client.Collection(r.tasksCollection()).
		Where("ResponsibleID", "==", string(responsibleID)).
		Where("LinkedItemID", "==", string(linkedItemID)).
		Where("Type", "==", taskType.String()).
		Where("Status", "in", types.ActiveTaskStatusStrings()).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "active task not found",
			goerr.V("responsible_id", responsibleID),
			goerr.V("linked_item_id", linkedItemID),
			goerr.V("type", taskType))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query active task", goerr.V("linked_item_id", linkedItemID))
	}

	var t model.Task
	if err := doc.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode task", goerr.V("doc_id", doc.Ref.ID))
	}
	return &t, nil
}

func (r *taskRepository) ListByLinkedItem(ctx context.Context, linkedItemID model.WorkItemID) ([]*model.Task, error) {
	iter := r.client.Collection(r.tasksCollection()).
		Where("LinkedItemID", "==", string(linkedItemID)).
		Documents(ctx)
	defer iter.Stop()

	tasks := make([]*model.Task, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tasks", goerr.V("linked_item_id", linkedItemID))
		}

		var t model.Task
		if err := doc.DataTo(&t); err != nil {
			return nil, goerr.Wrap(err, "failed to decode task", goerr.V("doc_id", doc.Ref.ID))
		}
		tasks = append(tasks, &t)
	}
	return tasks, nil
}
