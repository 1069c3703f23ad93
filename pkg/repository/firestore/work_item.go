package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type workItemRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func (r *workItemRepository) collection(kind types.WorkItemKind) (string, error) {
	switch kind {
	case types.WorkItemKindDemonstration:
		return CollectionName(r.collectionPrefix, CollectionDemonstrations), nil
	case types.WorkItemKindServiceOrder:
		return CollectionName(r.collectionPrefix, CollectionServices), nil
	default:
		return "", goerr.New("unknown work item kind", goerr.V("kind", kind))
	}
}

func (r *workItemRepository) Put(ctx context.Context, item *model.WorkItem) error {
	if item.ID == "" {
		return goerr.New("work item ID is required")
	}
	col, err := r.collection(item.Kind)
	if err != nil {
		return err
	}

	if _, err := r.client.Collection(col).Doc(string(item.ID)).Set(ctx, item); err != nil {
		return goerr.Wrap(err, "failed to put work item", goerr.V("id", item.ID), goerr.V("kind", item.Kind))
	}
	return nil
}

func (r *workItemRepository) ListScheduled(ctx context.Context, kind types.WorkItemKind, from, to time.Time) ([]*model.WorkItem, error) {
	col, err := r.collection(kind)
	if err != nil {
		return nil, err
	}

	// Requires composite index: Status ASC, ScheduledAt ASC
	iter := r.client.Collection(col).
		Where("Status", "==", types.WorkItemStatusScheduled.String()).
		Where("ScheduledAt", ">=", from).
		Where("ScheduledAt", "<=", to).
		OrderBy("ScheduledAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	items := make([]*model.WorkItem, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate work items", goerr.V("kind", kind))
		}

		var item model.WorkItem
		if err := doc.DataTo(&item); err != nil {
			return nil, goerr.Wrap(err, "failed to decode work item", goerr.V("doc_id", doc.Ref.ID))
		}
		if item.ID == "" {
			item.ID = model.WorkItemID(doc.Ref.ID)
		}
		items = append(items, &item)
	}

	return items, nil
}
