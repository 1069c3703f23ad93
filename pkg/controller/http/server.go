package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"github.com/secmon-lab/duesoon/pkg/service/metrics"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
)

// DueSoonUseCase runs one due-soon cycle for a work item kind
type DueSoonUseCase interface {
	Run(ctx context.Context, kind types.WorkItemKind, now time.Time) (*model.JobReport, error)
}

// DeliveryUseCase forwards a stored notification to the outbound channel
type DeliveryUseCase interface {
	Deliver(ctx context.Context, id model.NotificationID) (*model.DeliveryResult, error)
}

type Server struct {
	router   *chi.Mux
	dueSoon  DueSoonUseCase
	delivery DeliveryUseCase
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Options func(*Server)

// WithMetrics exposes /metrics and counts served requests
func WithMetrics(m *metrics.Metrics) Options {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithClock replaces time.Now as the reference time of triggered cycles
func WithClock(now func() time.Time) Options {
	return func(s *Server) {
		s.now = now
	}
}

func New(dueSoon DueSoonUseCase, delivery DeliveryUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		dueSoon:  dueSoon,
		delivery: delivery,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger(s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", healthHandler)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/functions", func(r chi.Router) {
		r.Post("/check-demonstrations", s.checkHandler(types.WorkItemKindDemonstration, "demonstrationsChecked"))
		r.Post("/check-services", s.checkHandler(types.WorkItemKindServiceOrder, "servicesChecked"))
		r.Post("/send-whatsapp-notification", s.sendNotificationHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(ctx).Error("failed to write response", "error", err)
	}
}
