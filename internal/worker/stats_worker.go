package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nivasa/internal/amqp"
	"nivasa/internal/dashboard"
	"nivasa/internal/log"
	"nivasa/internal/metrics"
	"nivasa/internal/services"
)

// SnapshotRecorder recomputes and persists a user's dashboard stats.
// *services.TrackerService satisfies it.
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, userID uuid.UUID) (dashboard.Stats, error)
}

// StatsWorker turns entity.changed events into persisted dashboard
// snapshots. Events for the same user that arrive within the debounce
// window after a snapshot are skipped; the snapshot already reflects them.
type StatsWorker struct {
	recorder SnapshotRecorder
	debounce time.Duration
	now      func() time.Time
	logger   *log.Logger

	last map[uuid.UUID]time.Time
}

func NewStatsWorker(recorder SnapshotRecorder, debounce time.Duration, logger *log.Logger) *StatsWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &StatsWorker{
		recorder: recorder,
		debounce: debounce,
		now:      time.Now,
		logger:   logger.WithComponent(log.ComponentWorker),
		last:     make(map[uuid.UUID]time.Time),
	}
}

// HandleEntityChanged processes one message. The AMQP consumer calls it
// sequentially, so the debounce map needs no lock. A returned error
// requeues the message.
func (w *StatsWorker) HandleEntityChanged(ctx context.Context, msg *amqp.EntityChangedMessage) error {
	logger := w.logger.WithUser(msg.UserID.String())

	if at, ok := w.last[msg.UserID]; ok && !msg.Timestamp.After(at) && w.now().Sub(at) < w.debounce {
		logger.DebugContext(ctx, "Snapshot already covers event",
			log.FieldEntity, msg.Entity,
			log.FieldEntityID, msg.EntityID)
		metrics.IncEventConsumed("dropped")
		return nil
	}

	started := w.now()
	st, err := w.recorder.RecordSnapshot(ctx, msg.UserID)
	if errors.Is(err, services.ErrHistoryUnavailable) {
		logger.WarnContext(ctx, "Store keeps no history, dropping event", log.FieldEntity, msg.Entity)
		metrics.IncEventConsumed("dropped")
		return nil
	}
	if err != nil {
		metrics.IncEventConsumed("failed")
		return fmt.Errorf("record snapshot: %w", err)
	}
	w.last[msg.UserID] = started

	metrics.IncEventConsumed("ok")
	logger.InfoContext(ctx, "Dashboard snapshot recorded",
		log.FieldEntity, msg.Entity,
		"action", msg.Action,
		"budget_used_percent", st.BudgetUsedPercent,
		"progress_percent", st.ProgressPercent)
	return nil
}
