package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

func runTaskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	newTask := func(linked string) *model.Task {
		return &model.Task{
			ResponsibleID: "u1",
			Type:          types.TaskTypeDemoPrepare,
			ClientID:      "client-1",
			LinkedItemID:  model.WorkItemID(linked),
			DueAt:         baseTime.Add(24 * time.Hour),
			Priority:      types.PriorityMedium,
			Note:          "Preparar demonstração de plantio",
			AssignedUsers: []model.UserID{"u1"},
		}
	}

	t.Run("Create assigns ID, status and timestamp", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Task().Create(ctx, newTask(uniqueID("demo")))
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).NotEqual(model.TaskID(""))
		gt.Value(t, created.Status).Equal(types.TaskStatusPending)
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Value(t, created.AssignedUsers).Equal([]model.UserID{"u1"})
	})

	t.Run("Create with existing ID returns ErrDuplicate", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task := newTask(uniqueID("demo"))
		task.ID = model.TaskID(uniqueID("task"))

		_, err := repo.Task().Create(ctx, task)
		gt.NoError(t, err).Required()

		_, err = repo.Task().Create(ctx, task)
		gt.Error(t, err).Is(interfaces.ErrDuplicate)
	})

	t.Run("FindActive matches responsible, item and type", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		linked := uniqueID("demo")
		created, err := repo.Task().Create(ctx, newTask(linked))
		gt.NoError(t, err).Required()

		found, err := repo.Task().FindActive(ctx, "u1", model.WorkItemID(linked), types.TaskTypeDemoPrepare)
		gt.NoError(t, err).Required()
		gt.Value(t, found.ID).Equal(created.ID)

		_, err = repo.Task().FindActive(ctx, "u2", model.WorkItemID(linked), types.TaskTypeDemoPrepare)
		gt.Error(t, err).Is(interfaces.ErrNotFound)

		_, err = repo.Task().FindActive(ctx, "u1", model.WorkItemID(linked), types.TaskTypeFollowup)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("FindActive ignores completed tasks", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		linked := uniqueID("demo")
		task := newTask(linked)
		task.Status = types.TaskStatusCompleted
		_, err := repo.Task().Create(ctx, task)
		gt.NoError(t, err).Required()

		_, err = repo.Task().FindActive(ctx, "u1", model.WorkItemID(linked), types.TaskTypeDemoPrepare)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("FindActive returns in_progress tasks", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		linked := uniqueID("demo")
		task := newTask(linked)
		task.Status = types.TaskStatusInProgress
		created, err := repo.Task().Create(ctx, task)
		gt.NoError(t, err).Required()

		found, err := repo.Task().FindActive(ctx, "u1", model.WorkItemID(linked), types.TaskTypeDemoPrepare)
		gt.NoError(t, err).Required()
		gt.Value(t, found.ID).Equal(created.ID)
		gt.Value(t, found.Status).Equal(types.TaskStatusInProgress)
	})

	t.Run("ListByLinkedItem returns tasks of the item", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		linked := uniqueID("svc")
		for _, responsible := range []model.UserID{"u1", "u2"} {
			task := newTask(linked)
			task.ResponsibleID = responsible
			_, err := repo.Task().Create(ctx, task)
			gt.NoError(t, err).Required()
		}
		_, err := repo.Task().Create(ctx, newTask(uniqueID("other")))
		gt.NoError(t, err).Required()

		tasks, err := repo.Task().ListByLinkedItem(ctx, model.WorkItemID(linked))
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(2)
	})
}

func TestMemoryTaskRepository(t *testing.T) {
	runTaskRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreTaskRepository(t *testing.T) {
	runTaskRepositoryTest(t, newFirestoreRepository)
}
