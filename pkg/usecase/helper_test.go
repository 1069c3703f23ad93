package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// recordingChannel stores sent messages and fails with err when set
type recordingChannel struct {
	mu   sync.Mutex
	msgs []*model.OutboundMessage
	err  error
}

func (c *recordingChannel) Send(ctx context.Context, msg *model.OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *recordingChannel) Messages() []*model.OutboundMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*model.OutboundMessage{}, c.msgs...)
}

type recordingTrigger struct {
	mu  sync.Mutex
	ids []model.NotificationID
}

func (t *recordingTrigger) Trigger(ctx context.Context, id model.NotificationID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids = append(t.ids, id)
}

func (t *recordingTrigger) IDs() []model.NotificationID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.NotificationID{}, t.ids...)
}

var errInjected = errors.New("injected failure")

// faultyRepository wraps a repository and injects failures
type faultyRepository struct {
	interfaces.Repository

	failListScheduled   bool
	failListAdmins      bool
	failNotificationFor model.UserID
	failTaskFor         model.UserID
	failMarkDelivered   bool
	failClientGet       bool
}

func (r *faultyRepository) WorkItem() interfaces.WorkItemRepository {
	return &faultyWorkItems{WorkItemRepository: r.Repository.WorkItem(), r: r}
}

func (r *faultyRepository) User() interfaces.UserRepository {
	return &faultyUsers{UserRepository: r.Repository.User(), r: r}
}

func (r *faultyRepository) Notification() interfaces.NotificationRepository {
	return &faultyNotifications{NotificationRepository: r.Repository.Notification(), r: r}
}

func (r *faultyRepository) Task() interfaces.TaskRepository {
	return &faultyTasks{TaskRepository: r.Repository.Task(), r: r}
}

func (r *faultyRepository) Client() interfaces.ClientRepository {
	return &faultyClients{ClientRepository: r.Repository.Client(), r: r}
}

type faultyWorkItems struct {
	interfaces.WorkItemRepository
	r *faultyRepository
}

func (w *faultyWorkItems) ListScheduled(ctx context.Context, kind types.WorkItemKind, from, to time.Time) ([]*model.WorkItem, error) {
	if w.r.failListScheduled {
		return nil, errInjected
	}
	return w.WorkItemRepository.ListScheduled(ctx, kind, from, to)
}

type faultyUsers struct {
	interfaces.UserRepository
	r *faultyRepository
}

func (u *faultyUsers) ListActiveAdmins(ctx context.Context) ([]*model.User, error) {
	if u.r.failListAdmins {
		return nil, errInjected
	}
	return u.UserRepository.ListActiveAdmins(ctx)
}

type faultyNotifications struct {
	interfaces.NotificationRepository
	r *faultyRepository
}

func (n *faultyNotifications) Create(ctx context.Context, notification *model.Notification) (*model.Notification, error) {
	if n.r.failNotificationFor != "" && notification.RecipientID == n.r.failNotificationFor {
		return nil, errInjected
	}
	return n.NotificationRepository.Create(ctx, notification)
}

func (n *faultyNotifications) MarkDelivered(ctx context.Context, id model.NotificationID, at time.Time) (bool, error) {
	if n.r.failMarkDelivered {
		return false, errInjected
	}
	return n.NotificationRepository.MarkDelivered(ctx, id, at)
}

type faultyTasks struct {
	interfaces.TaskRepository
	r *faultyRepository
}

func (t *faultyTasks) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	if t.r.failTaskFor != "" && task.ResponsibleID == t.r.failTaskFor {
		return nil, errInjected
	}
	return t.TaskRepository.Create(ctx, task)
}

type faultyClients struct {
	interfaces.ClientRepository
	r *faultyRepository
}

func (c *faultyClients) Get(ctx context.Context, id model.ClientID) (*model.Client, error) {
	if c.r.failClientGet {
		return nil, errInjected
	}
	return c.ClientRepository.Get(ctx, id)
}
