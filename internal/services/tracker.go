package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nivasa/internal/amqp"
	"nivasa/internal/cache"
	"nivasa/internal/core"
	"nivasa/internal/dashboard"
	"nivasa/internal/log"
	"nivasa/internal/sheets"
	"nivasa/internal/store"
)

// EventPublisher announces committed mutations. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishEntityChanged(ctx context.Context, msg *amqp.EntityChangedMessage) error
}

// TrackerService orchestrates every tracker operation: it reads from the
// Entity Store, runs the pure aggregation, filter, state machine and
// export code over the result and writes mutations back.
type TrackerService struct {
	store     store.Store
	publisher EventPublisher
	stats     cache.Cache[uuid.UUID, dashboard.Stats]
	exporter  sheets.ExpenseExporter
	now       func() time.Time
	logger    *log.Logger
	events    *log.StructuredLogger
}

type Option func(*TrackerService)

// WithPublisher enables entity.changed events.
func WithPublisher(p EventPublisher) Option {
	return func(s *TrackerService) { s.publisher = p }
}

// WithStatsCache caches dashboard stats per user.
func WithStatsCache(c cache.Cache[uuid.UUID, dashboard.Stats]) Option {
	return func(s *TrackerService) { s.stats = c }
}

// WithExporter configures the spreadsheet sink for ExportExpensesToSheet.
func WithExporter(e sheets.ExpenseExporter) Option {
	return func(s *TrackerService) { s.exporter = e }
}

// WithClock sets the source of "today" for transitions and exports.
func WithClock(now func() time.Time) Option {
	return func(s *TrackerService) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *TrackerService) { s.logger = l }
}

func NewTrackerService(st store.Store, opts ...Option) *TrackerService {
	s := &TrackerService{
		store:  st,
		now:    time.Now,
		logger: log.Discard(),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentTracker)
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// Store exposes the underlying Entity Store for health checks.
func (s *TrackerService) Store() store.Store {
	return s.store
}

func (s *TrackerService) today() core.Date {
	return core.DateOf(s.now())
}

// changed runs after every committed mutation. Event publishing is best
// effort: the write already succeeded.
func (s *TrackerService) changed(ctx context.Context, userID uuid.UUID, entity string, id uuid.UUID, action string) {
	if s.stats != nil {
		s.stats.Delete(userID)
	}
	s.events.LogMutation(ctx, action, userID.String(), entity, id.String())

	if s.publisher == nil {
		return
	}
	msg := amqp.NewEntityChangedMessage(userID, entity, id, action, s.now())
	if err := s.publisher.PublishEntityChanged(ctx, msg); err != nil {
		s.events.LogError(ctx, "Failed to publish entity change", err, action,
			log.NewFields().WithEntity(userID.String(), entity, id.String()))
	}
}

// Close closes the store and, when it is one, the publisher.
func (s *TrackerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close tracker service: %v", errs)
	}
	return nil
}
