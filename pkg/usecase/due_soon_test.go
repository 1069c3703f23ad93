package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"github.com/secmon-lab/duesoon/pkg/repository/memory"
	"github.com/secmon-lab/duesoon/pkg/usecase"
)

func putAdmins(t *testing.T, repo interfaces.Repository, ids ...model.UserID) {
	t.Helper()
	for _, id := range ids {
		gt.NoError(t, repo.User().Put(context.Background(), &model.User{
			ID:     id,
			Name:   "Admin " + string(id),
			Role:   types.UserRoleAdmin,
			Status: types.UserStatusActive,
		})).Required()
	}
}

func putItem(t *testing.T, repo interfaces.Repository, item *model.WorkItem) {
	t.Helper()
	if item.Status == "" {
		item.Status = types.WorkItemStatusScheduled
	}
	gt.NoError(t, repo.WorkItem().Put(context.Background(), item)).Required()
}

func newUseCases(t *testing.T, repo interfaces.Repository, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()
	uc, err := usecase.New(repo, append([]usecase.Option{usecase.WithDeliveryTrigger(usecase.NoopDeliveryTrigger{})}, opts...)...)
	gt.NoError(t, err).Required()
	return uc
}

func listNotifications(t *testing.T, repo interfaces.Repository, recipients ...model.UserID) []*model.Notification {
	t.Helper()
	var all []*model.Notification
	for _, r := range recipients {
		list, err := repo.Notification().ListByRecipient(context.Background(), r)
		gt.NoError(t, err).Required()
		all = append(all, list...)
	}
	return all
}

func listTasks(t *testing.T, repo interfaces.Repository, item model.WorkItemID) []*model.Task {
	t.Helper()
	tasks, err := repo.Task().ListByLinkedItem(context.Background(), item)
	gt.NoError(t, err).Required()
	return tasks
}

func TestDueSoon_OwnedDemonstration(t *testing.T) {
	repo := memory.New()
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-1",
		Kind:        types.WorkItemKindDemonstration,
		ClientID:    "client-1",
		ClientName:  "Fazenda Boa Vista",
		ScheduledAt: testNow.Add(24 * time.Hour),
		OwnerIDs:    []model.UserID{"userA", "userB"},
		DemoTypes:   []string{"plantio"},
	})

	uc := newUseCases(t, repo)
	report, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
	gt.NoError(t, err).Required()

	gt.Value(t, report.ItemsChecked).Equal(1)
	gt.Value(t, report.ItemsOwned).Equal(1)
	gt.Value(t, report.NotificationsCreated).Equal(2)
	gt.Value(t, report.TasksCreated).Equal(2)

	notifications := listNotifications(t, repo, "userA", "userB")
	gt.Array(t, notifications).Length(2).Required()
	for _, n := range notifications {
		gt.Value(t, n.Kind).Equal(types.NotificationKindInfo)
		gt.Value(t, n.Category).Equal(types.CategoryDemonstration)
		gt.Value(t, n.Title).Equal("Preparação de Demonstração")
		gt.String(t, n.Message).Contains("plantio")
		gt.String(t, n.Message).Contains("Fazenda Boa Vista")
		gt.String(t, n.Message).Contains("11/03/2026 12:00")
		gt.Value(t, n.ClientID).Equal(model.ClientID(""))
		gt.Bool(t, n.Delivered).False()
	}

	tasks := listTasks(t, repo, "demo-1")
	gt.Array(t, tasks).Length(2).Required()
	for _, task := range tasks {
		gt.Value(t, task.Type).Equal(types.TaskTypeDemoPrepare)
		gt.Value(t, task.Priority).Equal(types.PriorityMedium)
		gt.Value(t, task.Status).Equal(types.TaskStatusPending)
		gt.Value(t, task.ClientID).Equal(model.ClientID("client-1"))
		gt.Bool(t, task.DueAt.Equal(testNow)).True()
		gt.Value(t, task.AssignedUsers).Equal([]model.UserID{task.ResponsibleID})
	}
}

func TestDueSoon_UnownedServiceOrder(t *testing.T) {
	repo := memory.New()
	putAdmins(t, repo, "admin-1", "admin-2")
	gt.NoError(t, repo.User().Put(context.Background(), &model.User{
		ID: "admin-off", Role: types.UserRoleAdmin, Status: types.UserStatusInactive,
	})).Required()
	putItem(t, repo, &model.WorkItem{
		ID:          "svc-1",
		Kind:        types.WorkItemKindServiceOrder,
		ClientID:    "client-1",
		ScheduledAt: testNow.Add(10 * time.Hour),
		OwnerIDs:    []model.UserID{},
		ServiceType: "spraying",
	})

	uc := newUseCases(t, repo)
	report, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindServiceOrder, testNow)
	gt.NoError(t, err).Required()

	gt.Value(t, report.ItemsUnowned).Equal(1)
	gt.Value(t, report.NotificationsCreated).Equal(2)
	gt.Value(t, report.TasksCreated).Equal(2)

	notifications := listNotifications(t, repo, "admin-1", "admin-2", "admin-off")
	gt.Array(t, notifications).Length(2).Required()
	for _, n := range notifications {
		gt.Value(t, n.Kind).Equal(types.NotificationKindWarning)
		gt.Value(t, n.Category).Equal(types.CategoryServiceSpraying)
		gt.Value(t, n.Title).Equal("Serviço Sem Técnico Atribuído")
		gt.String(t, n.Message).Contains("Cliente")
	}

	tasks := listTasks(t, repo, "svc-1")
	gt.Array(t, tasks).Length(2).Required()
	for _, task := range tasks {
		gt.Value(t, task.Type).Equal(types.TaskTypeFollowup)
		gt.Value(t, task.Priority).Equal(types.PriorityHigh)
		gt.Bool(t, task.DueAt.Equal(testNow)).True()
	}
}

func TestDueSoon_OutsideWindow(t *testing.T) {
	repo := memory.New()
	putAdmins(t, repo, "admin-1")
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-late",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(100 * time.Hour),
		OwnerIDs:    []model.UserID{"userA"},
	})
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-past",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(-time.Minute),
	})

	uc := newUseCases(t, repo)
	report, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
	gt.NoError(t, err).Required()

	gt.Value(t, report.ItemsChecked).Equal(0)
	gt.Value(t, report.NotificationsCreated).Equal(0)
	gt.Value(t, report.TasksCreated).Equal(0)
	gt.Array(t, listNotifications(t, repo, "userA", "admin-1")).Length(0)
}

func TestDueSoon_WindowBoundsAreInclusive(t *testing.T) {
	repo := memory.New()
	putItem(t, repo, &model.WorkItem{
		ID:          "svc-now",
		Kind:        types.WorkItemKindServiceOrder,
		ScheduledAt: testNow,
		OwnerIDs:    []model.UserID{"tech-1"},
		ServiceType: "revision",
	})
	putItem(t, repo, &model.WorkItem{
		ID:          "svc-edge",
		Kind:        types.WorkItemKindServiceOrder,
		ScheduledAt: testNow.Add(48 * time.Hour),
		OwnerIDs:    []model.UserID{"tech-1"},
		ServiceType: "maintenance",
	})

	uc := newUseCases(t, repo)
	profile, ok := uc.DueSoon.Profiles().Get(types.WorkItemKindServiceOrder)
	gt.Bool(t, ok).True()

	partition, err := uc.DueSoon.Scan(context.Background(), profile, testNow)
	gt.NoError(t, err).Required()
	gt.Array(t, partition.Owned).Length(2)
	gt.Array(t, partition.Unowned).Length(0)
}

func TestDueSoon_DuplicateOwnersCollapse(t *testing.T) {
	repo := memory.New()
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-dup",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(time.Hour),
		OwnerIDs:    []model.UserID{"userA", "userA", "", "userB"},
	})

	uc := newUseCases(t, repo)
	report, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
	gt.NoError(t, err).Required()

	gt.Value(t, report.NotificationsAttempted).Equal(2)
	gt.Value(t, report.NotificationsCreated).Equal(2)
	gt.Array(t, listNotifications(t, repo, "userA")).Length(1)
}

func TestDueSoon_OwnersListOfEmptyIDsIsUnowned(t *testing.T) {
	repo := memory.New()
	putAdmins(t, repo, "admin-1")
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-blank",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(time.Hour),
		OwnerIDs:    []model.UserID{""},
	})

	uc := newUseCases(t, repo)
	report, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
	gt.NoError(t, err).Required()

	gt.Value(t, report.ItemsUnowned).Equal(1)
	gt.Array(t, listNotifications(t, repo, "admin-1")).Length(1)
}

func TestDueSoon_RerunSameDayIsDeduplicated(t *testing.T) {
	repo := memory.New()
	putAdmins(t, repo, "admin-1")
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-owned",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(30 * time.Hour),
		OwnerIDs:    []model.UserID{"userA"},
	})
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-unowned",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(40 * time.Hour),
	})

	uc := newUseCases(t, repo)
	ctx := context.Background()

	first, err := uc.DueSoon.Run(ctx, types.WorkItemKindDemonstration, testNow)
	gt.NoError(t, err).Required()
	gt.Value(t, first.NotificationsCreated).Equal(2)
	gt.Value(t, first.TasksCreated).Equal(2)

	second, err := uc.DueSoon.Run(ctx, types.WorkItemKindDemonstration, testNow.Add(3*time.Hour))
	gt.NoError(t, err).Required()
	gt.Value(t, second.NotificationsCreated).Equal(0)
	gt.Value(t, second.NotificationsSkipped).Equal(2)
	gt.Value(t, second.TasksCreated).Equal(0)
	gt.Value(t, second.TasksSkipped).Equal(2)

	gt.Array(t, listNotifications(t, repo, "userA", "admin-1")).Length(2)
	gt.Array(t, listTasks(t, repo, "demo-owned")).Length(1)

	// next day: reminders repeat, but the pending task is not duplicated
	third, err := uc.DueSoon.Run(ctx, types.WorkItemKindDemonstration, testNow.Add(24*time.Hour))
	gt.NoError(t, err).Required()
	gt.Value(t, third.NotificationsCreated).Equal(2)
	gt.Value(t, third.TasksCreated).Equal(0)
	gt.Value(t, third.TasksSkipped).Equal(2)
	gt.Array(t, listTasks(t, repo, "demo-owned")).Length(1)
}

func TestDueSoon_InProgressTaskIsNotDuplicated(t *testing.T) {
	repo := memory.New()
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-1",
		Kind:        types.WorkItemKindDemonstration,
		ClientID:    "client-1",
		ScheduledAt: testNow.Add(60 * time.Hour),
		OwnerIDs:    []model.UserID{"userA"},
	})
	_, err := repo.Task().Create(context.Background(), &model.Task{
		ResponsibleID: "userA",
		Type:          types.TaskTypeDemoPrepare,
		ClientID:      "client-1",
		LinkedItemID:  "demo-1",
		DueAt:         testNow.Add(36 * time.Hour),
		Priority:      types.PriorityMedium,
		Status:        types.TaskStatusInProgress,
	})
	gt.NoError(t, err).Required()

	uc := newUseCases(t, repo)
	report, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
	gt.NoError(t, err).Required()

	gt.Value(t, report.NotificationsCreated).Equal(1)
	gt.Value(t, report.TasksCreated).Equal(0)
	gt.Value(t, report.TasksSkipped).Equal(1)

	tasks := listTasks(t, repo, "demo-1")
	gt.Array(t, tasks).Length(1).Required()
	gt.Value(t, tasks[0].Status).Equal(types.TaskStatusInProgress)
}

func TestDueSoon_RecipientFailureIsIsolated(t *testing.T) {
	base := memory.New()
	repo := &faultyRepository{Repository: base, failNotificationFor: "userB", failTaskFor: "userC"}

	putItem(t, base, &model.WorkItem{
		ID:          "demo-1",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(time.Hour),
		OwnerIDs:    []model.UserID{"userA", "userB", "userC"},
	})
	putItem(t, base, &model.WorkItem{
		ID:          "demo-2",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(2 * time.Hour),
		OwnerIDs:    []model.UserID{"userB", "userD"},
	})

	uc := newUseCases(t, repo, usecase.WithConcurrency(2))
	report, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
	gt.NoError(t, err).Required()

	gt.Value(t, report.NotificationsAttempted).Equal(5)
	gt.Value(t, report.NotificationsFailed).Equal(2)
	gt.Value(t, report.NotificationsCreated).Equal(3)
	gt.Value(t, report.TasksAttempted).Equal(5)
	gt.Value(t, report.TasksFailed).Equal(1)
	gt.Value(t, report.TasksCreated).Equal(4)

	gt.Array(t, listNotifications(t, base, "userA")).Length(1)
	gt.Array(t, listNotifications(t, base, "userC")).Length(1)
	gt.Array(t, listNotifications(t, base, "userD")).Length(1)

	// failed side effects released their claims and are retried
	repo.failNotificationFor = ""
	repo.failTaskFor = ""
	retry, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow.Add(time.Minute))
	gt.NoError(t, err).Required()
	gt.Value(t, retry.NotificationsCreated).Equal(2)
	gt.Value(t, retry.TasksCreated).Equal(1)
}

func TestDueSoon_QueryFailureAbortsBeforeWrites(t *testing.T) {
	t.Run("work item query", func(t *testing.T) {
		base := memory.New()
		repo := &faultyRepository{Repository: base, failListScheduled: true}
		putItem(t, base, &model.WorkItem{
			ID:          "demo-1",
			Kind:        types.WorkItemKindDemonstration,
			ScheduledAt: testNow.Add(time.Hour),
			OwnerIDs:    []model.UserID{"userA"},
		})

		uc := newUseCases(t, repo)
		_, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
		gt.Error(t, err).Is(errInjected)
		gt.Array(t, listNotifications(t, base, "userA")).Length(0)
	})

	t.Run("administrator query", func(t *testing.T) {
		base := memory.New()
		repo := &faultyRepository{Repository: base, failListAdmins: true}
		putItem(t, base, &model.WorkItem{
			ID:          "demo-owned",
			Kind:        types.WorkItemKindDemonstration,
			ScheduledAt: testNow.Add(time.Hour),
			OwnerIDs:    []model.UserID{"userA"},
		})
		putItem(t, base, &model.WorkItem{
			ID:          "demo-unowned",
			Kind:        types.WorkItemKindDemonstration,
			ScheduledAt: testNow.Add(time.Hour),
		})

		uc := newUseCases(t, repo)
		_, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
		gt.Error(t, err).Is(errInjected)
		gt.Array(t, listNotifications(t, base, "userA")).Length(0)
		gt.Array(t, listTasks(t, base, "demo-owned")).Length(0)
	})

	t.Run("administrators are not queried without unowned items", func(t *testing.T) {
		base := memory.New()
		repo := &faultyRepository{Repository: base, failListAdmins: true}
		putItem(t, base, &model.WorkItem{
			ID:          "demo-owned",
			Kind:        types.WorkItemKindDemonstration,
			ScheduledAt: testNow.Add(time.Hour),
			OwnerIDs:    []model.UserID{"userA"},
		})

		uc := newUseCases(t, repo)
		report, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
		gt.NoError(t, err).Required()
		gt.Value(t, report.NotificationsCreated).Equal(1)
	})
}

func TestDueSoon_NoAdministrators(t *testing.T) {
	repo := memory.New()
	putItem(t, repo, &model.WorkItem{
		ID:          "svc-1",
		Kind:        types.WorkItemKindServiceOrder,
		ScheduledAt: testNow.Add(time.Hour),
		ServiceType: "maintenance",
	})

	uc := newUseCases(t, repo)
	report, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindServiceOrder, testNow)
	gt.NoError(t, err).Required()
	gt.Value(t, report.ItemsUnowned).Equal(1)
	gt.Value(t, report.NotificationsAttempted).Equal(0)
}

func TestDueSoon_UnknownKind(t *testing.T) {
	uc := newUseCases(t, memory.New())
	_, err := uc.DueSoon.Run(context.Background(), types.WorkItemKind("visit"), testNow)
	gt.Error(t, err).Is(usecase.ErrUnknownWorkItemKind)
}

func TestDueSoon_CustomProfile(t *testing.T) {
	repo := memory.New()
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-1",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(100 * time.Hour),
		OwnerIDs:    []model.UserID{"userA"},
	})

	profile, err := model.NewWorkItemProfile(types.WorkItemKindDemonstration, 120*time.Hour,
		types.TaskTypeDemoPrepare, model.DefaultProfileTexts(types.WorkItemKindDemonstration), time.UTC)
	gt.NoError(t, err).Required()

	uc := newUseCases(t, repo, usecase.WithProfiles(model.NewProfileRegistry(profile)))
	report, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
	gt.NoError(t, err).Required()
	gt.Value(t, report.NotificationsCreated).Equal(1)

	_, err = uc.DueSoon.Run(context.Background(), types.WorkItemKindServiceOrder, testNow)
	gt.Error(t, err).Is(usecase.ErrUnknownWorkItemKind)
}

func TestDueSoon_RunAll(t *testing.T) {
	repo := memory.New()
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-1",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(time.Hour),
		OwnerIDs:    []model.UserID{"userA"},
	})
	putItem(t, repo, &model.WorkItem{
		ID:          "svc-1",
		Kind:        types.WorkItemKindServiceOrder,
		ScheduledAt: testNow.Add(time.Hour),
		OwnerIDs:    []model.UserID{"tech-1"},
		ServiceType: "maintenance",
	})

	uc := newUseCases(t, repo)
	reports, err := uc.DueSoon.RunAll(context.Background(), testNow)
	gt.NoError(t, err).Required()
	gt.Array(t, reports).Length(2).Required()
	gt.Value(t, reports[0].Kind).Equal(types.WorkItemKindDemonstration)
	gt.Value(t, reports[1].Kind).Equal(types.WorkItemKindServiceOrder)
}

func TestDueSoon_NotificationsFireTrigger(t *testing.T) {
	repo := memory.New()
	putItem(t, repo, &model.WorkItem{
		ID:          "demo-1",
		Kind:        types.WorkItemKindDemonstration,
		ScheduledAt: testNow.Add(time.Hour),
		OwnerIDs:    []model.UserID{"userA", "userB"},
	})

	trigger := &recordingTrigger{}
	uc := newUseCases(t, repo, usecase.WithDeliveryTrigger(trigger))
	_, err := uc.DueSoon.Run(context.Background(), types.WorkItemKindDemonstration, testNow)
	gt.NoError(t, err).Required()

	gt.Array(t, trigger.IDs()).Length(2)
}
