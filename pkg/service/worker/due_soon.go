package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/utils/errutil"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

// DueSoonRunner runs one due-soon cycle for every registered work item kind
type DueSoonRunner interface {
	RunAll(ctx context.Context, now time.Time) ([]*model.JobReport, error)
}

// DueSoonWorker runs the due-soon job on start and then on a fixed interval.
//
// It assumes a single server instance. Overlapping runs from other triggers
// (HTTP, CLI) are harmless because side effects are claimed in the ledger.
type DueSoonWorker struct {
	runner   DueSoonRunner
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewDueSoonWorker creates a worker running runner every interval
func NewDueSoonWorker(runner DueSoonRunner, interval time.Duration) *DueSoonWorker {
	return &DueSoonWorker{
		runner:   runner,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the loop in a background goroutine. The first cycle runs
// immediately without blocking the caller.
func (w *DueSoonWorker) Start(ctx context.Context) error {
	logging.From(ctx).Info("due-soon worker starting", "interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for the running cycle to finish
func (w *DueSoonWorker) Stop() {
	logging.Default().Info("due-soon worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("due-soon worker stopped")
}

func (w *DueSoonWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.cycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.cycle(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("due-soon worker context cancelled")
			return
		}
	}
}

// cycle never stops the loop; failures are retried next interval
func (w *DueSoonWorker) cycle(ctx context.Context) {
	started := w.now()

	reports, err := w.runner.RunAll(ctx, started)
	if err != nil {
		errutil.Handle(ctx, err, "due-soon cycle failed (will retry next interval)")
	}

	var notifications, tasks int
	for _, r := range reports {
		notifications += r.NotificationsCreated
		tasks += r.TasksCreated
	}
	logging.From(ctx).Info("due-soon worker cycle completed",
		"kinds", len(reports),
		"notifications_created", notifications,
		"tasks_created", tasks,
		"duration", time.Since(started).String())
}
