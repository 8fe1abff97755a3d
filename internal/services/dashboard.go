package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nivasa/internal/core"
	"nivasa/internal/dashboard"
	"nivasa/internal/log"
	"nivasa/internal/metrics"
	"nivasa/internal/store"
)

// ErrHistoryUnavailable is returned when the store keeps no snapshots.
var ErrHistoryUnavailable = errors.New("dashboard history is not available for this backend")

// DashboardStats returns the user's dashboard figures, served from the
// per-user cache when fresh.
func (s *TrackerService) DashboardStats(ctx context.Context, userID uuid.UUID) (dashboard.Stats, error) {
	if s.stats != nil {
		if st, ok := s.stats.Get(userID); ok {
			metrics.IncDashboardCache(true)
			return st, nil
		}
		metrics.IncDashboardCache(false)
	}

	st, err := s.ComputeStats(ctx, userID)
	if err != nil {
		return dashboard.Stats{}, err
	}
	if s.stats != nil {
		s.stats.Set(userID, st)
	}
	return st, nil
}

// ComputeStats always recomputes from the store, bypassing the cache.
func (s *TrackerService) ComputeStats(ctx context.Context, userID uuid.UUID) (dashboard.Stats, error) {
	c, err := s.collections(ctx, userID)
	if err != nil {
		return dashboard.Stats{}, err
	}
	st := dashboard.Compute(c.Expenses, c.Notes, c.Milestones, c.Project)
	s.logger.DebugContext(ctx, "Dashboard stats computed",
		log.FieldOperation, log.OpStats,
		log.FieldUserID, userID,
		"expenses", st.ExpenseCount,
		"milestones", st.TotalMilestones)
	return st, nil
}

// RecordSnapshot computes fresh stats and persists them when the store
// keeps history.
func (s *TrackerService) RecordSnapshot(ctx context.Context, userID uuid.UUID) (dashboard.Stats, error) {
	st, err := s.ComputeStats(ctx, userID)
	if err != nil {
		return dashboard.Stats{}, err
	}
	ss, ok := s.store.(store.SnapshotStore)
	if !ok {
		return st, ErrHistoryUnavailable
	}
	if err := ss.SaveSnapshot(ctx, userID, st, s.now()); err != nil {
		return st, fmt.Errorf("save snapshot: %w", err)
	}
	return st, nil
}

// DashboardHistory lists persisted snapshots newest first.
func (s *TrackerService) DashboardHistory(ctx context.Context, userID uuid.UUID, limit int) ([]store.StatsSnapshot, error) {
	ss, ok := s.store.(store.SnapshotStore)
	if !ok {
		return nil, ErrHistoryUnavailable
	}
	return ss.ListSnapshots(ctx, userID, limit)
}

// collections reads all four collections. Stores that implement
// store.Snapshotter give one consistent view; otherwise the collections
// are fetched concurrently and may straddle a concurrent write.
func (s *TrackerService) collections(ctx context.Context, userID uuid.UUID) (store.Collections, error) {
	if snap, ok := s.store.(store.Snapshotter); ok {
		c, err := snap.Snapshot(ctx, userID)
		if err != nil {
			return c, fmt.Errorf("snapshot: %w", err)
		}
		return c, nil
	}

	var c store.Collections
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.store.GetProject(gctx, userID)
		switch {
		case err == nil:
			c.Project = &p
		case errors.Is(err, core.ErrNotFound):
		default:
			return fmt.Errorf("get project: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		c.Expenses, err = s.store.ListExpenses(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		c.Notes, err = s.store.ListNotes(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		c.Milestones, err = s.store.ListMilestones(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return store.Collections{}, fmt.Errorf("load collections: %w", err)
	}
	return c, nil
}
