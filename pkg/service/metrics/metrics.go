package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

const namespace = "duesoon"

// Outcome label values
const (
	OutcomeCreated          = "created"
	OutcomeSkipped          = "skipped"
	OutcomeFailed           = "failed"
	OutcomeSent             = "sent"
	OutcomeAlreadyDelivered = "already_delivered"
)

// Metrics holds the Prometheus collectors of the service on a private
// registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	itemsScanned  *prometheus.CounterVec
	notifications *prometheus.CounterVec
	tasks         *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	deliveries    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

// New creates a collector set with Go runtime and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		itemsScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_scanned_total",
			Help:      "Work items found inside the due-soon window",
		}, []string{"kind", "ownership"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications handled by the due-soon job",
		}, []string{"kind", "outcome"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Tasks handled by the due-soon job",
		}, []string{"kind", "outcome"}),
		cycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of due-soon cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "status"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Outbound delivery attempts",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "route", "status_code"}),
	}

	reg.MustRegister(
		m.itemsScanned,
		m.notifications,
		m.tasks,
		m.cycleDuration,
		m.deliveries,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordCycle records the counters of one job run. report may be nil when the
// run failed before scanning.
func (m *Metrics) RecordCycle(kind types.WorkItemKind, report *model.JobReport, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	m.cycleDuration.WithLabelValues(kind.String(), status).Observe(duration.Seconds())

	if report == nil {
		return
	}

	k := kind.String()
	m.itemsScanned.WithLabelValues(k, "owned").Add(float64(report.ItemsOwned))
	m.itemsScanned.WithLabelValues(k, "unowned").Add(float64(report.ItemsUnowned))

	m.notifications.WithLabelValues(k, OutcomeCreated).Add(float64(report.NotificationsCreated))
	m.notifications.WithLabelValues(k, OutcomeSkipped).Add(float64(report.NotificationsSkipped))
	m.notifications.WithLabelValues(k, OutcomeFailed).Add(float64(report.NotificationsFailed))

	m.tasks.WithLabelValues(k, OutcomeCreated).Add(float64(report.TasksCreated))
	m.tasks.WithLabelValues(k, OutcomeSkipped).Add(float64(report.TasksSkipped))
	m.tasks.WithLabelValues(k, OutcomeFailed).Add(float64(report.TasksFailed))
}

// RecordDelivery counts one delivery outcome. Hard errors are passed as a
// nil result.
func (m *Metrics) RecordDelivery(result *model.DeliveryResult) {
	if m == nil {
		return
	}

	outcome := OutcomeFailed
	switch {
	case result == nil:
	case result.AlreadyDelivered:
		outcome = OutcomeAlreadyDelivered
	case result.Sent:
		outcome = OutcomeSent
	}
	m.deliveries.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest counts one served request
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
}
