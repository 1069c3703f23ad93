package usecase

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/service/metrics"
)

const (
	// DefaultConcurrency bounds concurrent recipients within one work item
	DefaultConcurrency = 4

	// DefaultJobTimeout bounds the wall time of one due-soon cycle
	DefaultJobTimeout = 2 * time.Minute
)

type UseCases struct {
	repo     interfaces.Repository
	channel  interfaces.OutboundChannel
	mirror   interfaces.OutboundChannel
	labels   *model.LabelTable
	profiles *model.ProfileRegistry
	metrics  *metrics.Metrics
	trigger  DeliveryTrigger
	location *time.Location
	now      func() time.Time

	concurrency int
	jobTimeout  time.Duration

	Task         *TaskUseCase
	Notification *NotificationUseCase
	Delivery     *DeliveryUseCase
	DueSoon      *DueSoonUseCase
}

type Option func(*UseCases)

// WithOutboundChannel sets the channel notifications are delivered to
func WithOutboundChannel(ch interfaces.OutboundChannel) Option {
	return func(uc *UseCases) {
		uc.channel = ch
	}
}

// WithMirrorChannel sets a best-effort channel that receives a copy of every
// delivered message
func WithMirrorChannel(ch interfaces.OutboundChannel) Option {
	return func(uc *UseCases) {
		uc.mirror = ch
	}
}

func WithLabelTable(labels *model.LabelTable) Option {
	return func(uc *UseCases) {
		uc.labels = labels
	}
}

func WithProfiles(profiles *model.ProfileRegistry) Option {
	return func(uc *UseCases) {
		uc.profiles = profiles
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(uc *UseCases) {
		uc.metrics = m
	}
}

// WithDeliveryTrigger replaces the trigger fired after a notification is
// created. The default delivers in the background when a channel is set.
func WithDeliveryTrigger(trigger DeliveryTrigger) Option {
	return func(uc *UseCases) {
		uc.trigger = trigger
	}
}

// WithLocation sets the time zone used for message times and ledger days
func WithLocation(loc *time.Location) Option {
	return func(uc *UseCases) {
		uc.location = loc
	}
}

func WithConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.concurrency = n
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.jobTimeout = d
	}
}

// WithClock replaces time.Now for delivery timestamps
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) (*UseCases, error) {
	uc := &UseCases{
		repo:        repo,
		location:    time.UTC,
		now:         time.Now,
		concurrency: DefaultConcurrency,
		jobTimeout:  DefaultJobTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.labels == nil {
		uc.labels = model.DefaultLabelTable()
	}
	if uc.profiles == nil {
		profiles, err := model.DefaultProfileRegistry(uc.location)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build default profiles")
		}
		uc.profiles = profiles
	}
	if uc.concurrency < 1 {
		uc.concurrency = 1
	}

	uc.Delivery = NewDeliveryUseCase(repo, uc.channel, uc.labels,
		withDeliveryMirror(uc.mirror),
		withDeliveryMetrics(uc.metrics),
		withDeliveryClock(uc.now),
	)

	if uc.trigger == nil {
		if uc.channel != nil {
			uc.trigger = NewAsyncDeliveryTrigger(uc.Delivery)
		} else {
			uc.trigger = NoopDeliveryTrigger{}
		}
	}

	uc.Task = NewTaskUseCase(repo)
	uc.Notification = NewNotificationUseCase(repo, uc.trigger)
	uc.DueSoon = &DueSoonUseCase{
		repo:         repo,
		tasks:        uc.Task,
		notification: uc.Notification,
		profiles:     uc.profiles,
		metrics:      uc.metrics,
		concurrency:  uc.concurrency,
		timeout:      uc.jobTimeout,
	}

	return uc, nil
}
