package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"github.com/secmon-lab/duesoon/pkg/service/metrics"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// DueSoonUseCase finds work items approaching their scheduled time and makes
// sure somebody is told and has a task for each of them.
type DueSoonUseCase struct {
	repo         interfaces.Repository
	tasks        *TaskUseCase
	notification *NotificationUseCase
	profiles     *model.ProfileRegistry
	metrics      *metrics.Metrics
	concurrency  int
	timeout      time.Duration
}

// Profiles returns the registry the job runs with
func (uc *DueSoonUseCase) Profiles() *model.ProfileRegistry {
	return uc.profiles
}

// Scan reads the scheduled items of the profile's kind inside
// [now, now+lookahead] and splits them by ownership. It never writes.
func (uc *DueSoonUseCase) Scan(ctx context.Context, profile *model.WorkItemProfile, now time.Time) (*model.Partition, error) {
	from, to := profile.Window(now)

	items, err := uc.repo.WorkItem().ListScheduled(ctx, profile.Kind, from, to)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list scheduled work items",
			goerr.V(WorkItemKindKey, profile.Kind),
			goerr.V("from", from),
			goerr.V("to", to))
	}

	partition := &model.Partition{
		Owned:   []*model.WorkItem{},
		Unowned: []*model.WorkItem{},
	}
	for _, item := range items {
		// the store may return items that changed after the query started
		if !item.IsDueWithin(from, to) {
			continue
		}
		if item.IsOwned() {
			partition.Owned = append(partition.Owned, item)
		} else {
			partition.Unowned = append(partition.Unowned, item)
		}
	}

	return partition, nil
}

// fanOutSpec describes the side effects for every recipient of one item
type fanOutSpec struct {
	item         *model.WorkItem
	content      *model.MessageContent
	ledgerAction string
	kind         types.NotificationKind
	taskType     types.TaskType
	priority     types.Priority
}

// Escalate creates notifications and tasks for the partition. Owners of owned
// items get a preparation reminder; active administrators get an escalation
// for every unowned item. Per-recipient failures are logged and counted.
func (uc *DueSoonUseCase) Escalate(ctx context.Context, partition *model.Partition, profile *model.WorkItemProfile, admins []*model.User, now time.Time) *model.EscalationResult {
	result := &model.EscalationResult{
		ItemsOwned:   len(partition.Owned),
		ItemsUnowned: len(partition.Unowned),
	}
	logger := logging.From(ctx)

	for _, item := range partition.Owned {
		recipients := item.Owners()
		content, err := profile.PrepareContent(item)
		if err != nil {
			logger.Error("failed to render preparation message", "work_item_id", item.ID, "error", err)
			countRenderFailure(result, len(recipients))
			continue
		}

		result.Add(uc.fanOut(ctx, profile, now, recipients, fanOutSpec{
			item:         item,
			content:      content,
			ledgerAction: model.LedgerActionPrepare,
			kind:         types.NotificationKindInfo,
			taskType:     profile.OwnedTaskType,
			priority:     types.PriorityMedium,
		}))
	}

	if len(partition.Unowned) == 0 {
		return result
	}

	adminIDs := make([]model.UserID, 0, len(admins))
	for _, a := range admins {
		adminIDs = append(adminIDs, a.ID)
	}
	adminIDs = model.UniqueUserIDs(adminIDs)
	if len(adminIDs) == 0 {
		logger.Warn("unowned work items found but no active administrator exists",
			"kind", profile.Kind,
			"items", len(partition.Unowned))
	}

	for _, item := range partition.Unowned {
		content, err := profile.EscalateContent(item)
		if err != nil {
			logger.Error("failed to render escalation message", "work_item_id", item.ID, "error", err)
			countRenderFailure(result, len(adminIDs))
			continue
		}

		result.Add(uc.fanOut(ctx, profile, now, adminIDs, fanOutSpec{
			item:         item,
			content:      content,
			ledgerAction: model.LedgerActionEscalate,
			kind:         types.NotificationKindWarning,
			taskType:     types.TaskTypeFollowup,
			priority:     types.PriorityHigh,
		}))
	}

	return result
}

func countRenderFailure(result *model.EscalationResult, recipients int) {
	result.NotificationsAttempted += recipients
	result.NotificationsFailed += recipients
	result.TasksAttempted += recipients
	result.TasksFailed += recipients
}

func (uc *DueSoonUseCase) fanOut(ctx context.Context, profile *model.WorkItemProfile, now time.Time, recipients []model.UserID, f fanOutSpec) *model.EscalationResult {
	var (
		mu     sync.Mutex
		result model.EscalationResult
		g      errgroup.Group
	)
	g.SetLimit(uc.concurrency)

	for _, recipient := range recipients {
		g.Go(func() error {
			r := uc.dispatch(ctx, profile, now, recipient, f)
			mu.Lock()
			result.Add(r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return &result
}

// dispatch creates the notification and the task for one recipient. Each
// side effect is guarded by a ledger claim that is released when the write
// fails, so the next cycle can retry it.
func (uc *DueSoonUseCase) dispatch(ctx context.Context, profile *model.WorkItemProfile, now time.Time, recipient model.UserID, f fanOutSpec) *model.EscalationResult {
	logger := logging.From(ctx).With(
		"work_item_id", f.item.ID,
		"recipient_id", recipient,
		"action", f.ledgerAction,
	)
	var result model.EscalationResult

	result.NotificationsAttempted++
	notifyKey := model.NewLedgerKey(f.item.ID, recipient, f.ledgerAction, now, profile.Location)
	switch claimed, err := uc.repo.Ledger().Claim(ctx, notifyKey); {
	case err != nil:
		logger.Error("failed to claim notification ledger key", "error", err)
		result.NotificationsFailed++
	case !claimed:
		result.NotificationsSkipped++
	default:
		_, err := uc.notification.Notify(ctx, NotifyInput{
			RecipientID: recipient,
			Kind:        f.kind,
			Title:       f.content.Title,
			Message:     f.content.Message,
			Category:    f.item.Category(),
		})
		if err != nil {
			logger.Error("failed to create notification", "error", err)
			uc.release(ctx, notifyKey)
			result.NotificationsFailed++
		} else {
			result.NotificationsCreated++
		}
	}

	result.TasksAttempted++
	taskKey := model.NewLedgerKey(f.item.ID, recipient, f.taskType.String(), now, profile.Location)
	switch claimed, err := uc.repo.Ledger().Claim(ctx, taskKey); {
	case err != nil:
		logger.Error("failed to claim task ledger key", "error", err)
		result.TasksFailed++
	case !claimed:
		result.TasksSkipped++
	default:
		res, err := uc.tasks.CreateTask(ctx, TaskInput{
			ResponsibleID: recipient,
			Type:          f.taskType,
			ClientID:      f.item.ClientID,
			LinkedItemID:  f.item.ID,
			DueAt:         now,
			Priority:      f.priority,
			Note:          f.content.Note,
		})
		switch {
		case err != nil:
			logger.Error("failed to create task", "error", err)
			uc.release(ctx, taskKey)
			result.TasksFailed++
		case !res.Created:
			result.TasksSkipped++
		default:
			result.TasksCreated++
		}
	}

	return &result
}

func (uc *DueSoonUseCase) release(ctx context.Context, key model.LedgerKey) {
	if err := uc.repo.Ledger().Release(ctx, key); err != nil {
		logging.From(ctx).Error("failed to release ledger key", "key", key.String(), "error", err)
	}
}

// Run executes one due-soon cycle for kind. Administrators are resolved
// before any write, only when unowned items exist; a query failure aborts the
// cycle without side effects.
func (uc *DueSoonUseCase) Run(ctx context.Context, kind types.WorkItemKind, now time.Time) (*model.JobReport, error) {
	profile, ok := uc.profiles.Get(kind)
	if !ok {
		return nil, goerr.Wrap(ErrUnknownWorkItemKind, "no profile for work item kind", goerr.V(WorkItemKindKey, kind))
	}

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	started := time.Now()
	report, err := uc.run(ctx, profile, now)
	uc.metrics.RecordCycle(kind, report, time.Since(started), err)

	return report, err
}

func (uc *DueSoonUseCase) run(ctx context.Context, profile *model.WorkItemProfile, now time.Time) (*model.JobReport, error) {
	logger := logging.From(ctx).With("kind", profile.Kind)

	partition, err := uc.Scan(ctx, profile, now)
	if err != nil {
		return nil, err
	}

	var admins []*model.User
	if len(partition.Unowned) > 0 {
		admins, err = uc.repo.User().ListActiveAdmins(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list active administrators", goerr.V(WorkItemKindKey, profile.Kind))
		}
	}

	result := uc.Escalate(ctx, partition, profile, admins, now)
	report := &model.JobReport{
		Kind:             profile.Kind,
		ItemsChecked:     partition.Total(),
		EscalationResult: *result,
	}

	logger.Info("due-soon cycle finished",
		"items", report.ItemsChecked,
		"owned", report.ItemsOwned,
		"unowned", report.ItemsUnowned,
		"notifications_created", report.NotificationsCreated,
		"notifications_skipped", report.NotificationsSkipped,
		"notifications_failed", report.NotificationsFailed,
		"tasks_created", report.TasksCreated,
		"tasks_skipped", report.TasksSkipped,
		"tasks_failed", report.TasksFailed,
	)

	return report, nil
}

// RunAll runs every registered kind. A failing kind does not stop the others;
// errors are returned joined.
func (uc *DueSoonUseCase) RunAll(ctx context.Context, now time.Time) ([]*model.JobReport, error) {
	var (
		reports []*model.JobReport
		errs    []error
	)
	for _, kind := range uc.profiles.Kinds() {
		report, err := uc.Run(ctx, kind, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}
