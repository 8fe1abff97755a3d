package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"nivasa/internal/auth"
	"nivasa/internal/log"
	"nivasa/internal/metrics"
	"nivasa/internal/middleware/ratelimit"
	"nivasa/internal/middleware/security"
	"nivasa/internal/middleware/trace"
	"nivasa/internal/services"
)

// Options tunes the server. Zero values select defaults.
type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(context.Context) error
}

type Server struct {
	http.Server
	svc         *services.TrackerService
	signer      *auth.Signer
	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	ready       func(context.Context) error
	logger      *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc *services.TrackerService, signer *auth.Signer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:         svc,
		signer:      signer,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:    security.NewDetector(logger),
		ready:       opts.Ready,
		logger:      logger,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	tracer := trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	limit := s.rateLimiter.Middleware(s.detector.ExtractClientIP, ratelimit.Mutating, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	})

	var h http.Handler = mux
	h = limit(h)
	h = s.detector.Middleware(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = tracer.Handler(h)
	h = log.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", withMetrics(handleHealth))
	mux.HandleFunc("GET /readyz", withMetrics(s.handleReady))
	mux.Handle("GET /metrics", metrics.Handler())

	api := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, withMetrics(s.requireUser(h)))
	}

	api("GET /api/project", s.handleGetProject)
	api("POST /api/project", s.handleCreateProject)
	api("PUT /api/project", s.handleUpdateProject)
	api("PATCH /api/project", s.handleUpdateProject)

	api("GET /api/expenses", s.handleListExpenses)
	api("GET /api/expenses/categories", s.handleExpenseCategories)
	api("GET /api/expenses/export", s.handleExportCSV)
	api("POST /api/expenses/export/sheets", s.handleExportSheets)
	api("POST /api/expenses", s.handleCreateExpense)
	api("GET /api/expenses/{id}", s.handleGetExpense)
	api("PUT /api/expenses/{id}", s.handleUpdateExpense)
	api("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	api("GET /api/notes", s.handleListNotes)
	api("GET /api/notes/tags", s.handleNoteTags)
	api("POST /api/notes", s.handleCreateNote)
	api("GET /api/notes/{id}", s.handleGetNote)
	api("PUT /api/notes/{id}", s.handleUpdateNote)
	api("DELETE /api/notes/{id}", s.handleDeleteNote)
	api("POST /api/notes/{id}/tags", s.handleAddNoteTag)
	api("DELETE /api/notes/{id}/tags/{tag}", s.handleRemoveNoteTag)

	api("GET /api/milestones", s.handleListMilestones)
	api("POST /api/milestones", s.handleCreateMilestone)
	api("GET /api/milestones/{id}", s.handleGetMilestone)
	api("PUT /api/milestones/{id}", s.handleUpdateMilestone)
	api("DELETE /api/milestones/{id}", s.handleDeleteMilestone)
	api("POST /api/milestones/{id}/advance", s.handleAdvanceMilestone)
	api("POST /api/milestones/{id}/transition", s.handleTransitionMilestone)

	api("GET /api/dashboard/stats", s.handleDashboardStats)
	api("GET /api/dashboard/history", s.handleDashboardHistory)
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// currentUser returns the id placed in the context by requireUser.
func currentUser(r *http.Request) uuid.UUID {
	id, _ := auth.UserFromContext(r.Context())
	return id
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
			return
		}
	}
	OK(w, map[string]string{"status": "ready"})
}
