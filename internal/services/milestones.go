package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nivasa/internal/amqp"
	"nivasa/internal/core"
	"nivasa/internal/filter"
	"nivasa/internal/log"
	"nivasa/internal/metrics"
	"nivasa/internal/milestone"
)

const entityMilestone = "milestone"

func (s *TrackerService) ListMilestones(ctx context.Context, userID uuid.UUID, q filter.MilestoneQuery) ([]core.Milestone, error) {
	all, err := s.store.ListMilestones(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return filter.Milestones(all, q), nil
}

func (s *TrackerService) GetMilestone(ctx context.Context, userID, id uuid.UUID) (core.Milestone, error) {
	return s.store.GetMilestone(ctx, userID, id)
}

// CreateMilestone always starts the milestone as pending.
func (s *TrackerService) CreateMilestone(ctx context.Context, userID uuid.UUID, m core.Milestone) (core.Milestone, error) {
	m.ID = uuid.Nil
	m.UserID = userID
	m.Status = core.MilestonePending
	m.CompletedDate = nil
	if err := m.Validate(); err != nil {
		return core.Milestone{}, err
	}
	created, err := s.store.CreateMilestone(ctx, m)
	if err != nil {
		return core.Milestone{}, fmt.Errorf("create milestone: %w", err)
	}
	s.changed(ctx, userID, entityMilestone, created.ID, amqp.ActionCreated)
	return created, nil
}

// UpdateMilestone applies the editable fields. A status in the patch must
// be the single legal next step and goes through the state machine.
func (s *TrackerService) UpdateMilestone(ctx context.Context, userID, id uuid.UUID, patch core.MilestonePatch) (core.Milestone, error) {
	current, err := s.store.GetMilestone(ctx, userID, id)
	if err != nil {
		return core.Milestone{}, err
	}
	next := patch.Apply(current)

	var fx milestone.Effects
	if patch.Status != nil && *patch.Status != current.Status {
		next, fx, err = milestone.Transition(next, *patch.Status, s.today())
		if err != nil {
			return core.Milestone{}, err
		}
	}
	if err := next.Validate(); err != nil {
		return core.Milestone{}, err
	}
	updated, err := s.store.UpdateMilestone(ctx, next)
	if err != nil {
		return core.Milestone{}, fmt.Errorf("update milestone: %w", err)
	}
	action := amqp.ActionUpdated
	if fx.From != fx.To {
		action = amqp.ActionTransition
		s.recordTransition(ctx, updated, fx)
	}
	s.changed(ctx, userID, entityMilestone, id, action)
	return updated, nil
}

func (s *TrackerService) DeleteMilestone(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.DeleteMilestone(ctx, userID, id); err != nil {
		return err
	}
	s.changed(ctx, userID, entityMilestone, id, amqp.ActionDeleted)
	return nil
}

// AdvanceMilestone moves the milestone one step forward.
func (s *TrackerService) AdvanceMilestone(ctx context.Context, userID, id uuid.UUID) (core.Milestone, error) {
	return s.moveMilestone(ctx, userID, id, func(m core.Milestone) (core.Milestone, milestone.Effects, error) {
		return milestone.Advance(m, s.today())
	})
}

// TransitionMilestone handles an explicit {milestoneId, targetStatus}
// request.
func (s *TrackerService) TransitionMilestone(ctx context.Context, userID, id uuid.UUID, target core.MilestoneStatus) (core.Milestone, error) {
	if !target.Valid() {
		return core.Milestone{}, core.NewValidationError("targetStatus", "unknown milestone status "+string(target))
	}
	return s.moveMilestone(ctx, userID, id, func(m core.Milestone) (core.Milestone, milestone.Effects, error) {
		return milestone.Transition(m, target, s.today())
	})
}

func (s *TrackerService) moveMilestone(ctx context.Context, userID, id uuid.UUID, step func(core.Milestone) (core.Milestone, milestone.Effects, error)) (core.Milestone, error) {
	current, err := s.store.GetMilestone(ctx, userID, id)
	if err != nil {
		return core.Milestone{}, err
	}
	next, fx, err := step(current)
	if err != nil {
		return core.Milestone{}, err
	}
	updated, err := s.store.UpdateMilestone(ctx, next)
	if err != nil {
		return core.Milestone{}, fmt.Errorf("update milestone: %w", err)
	}
	s.recordTransition(ctx, updated, fx)
	s.changed(ctx, userID, entityMilestone, id, amqp.ActionTransition)
	return updated, nil
}

func (s *TrackerService) recordTransition(ctx context.Context, m core.Milestone, fx milestone.Effects) {
	metrics.IncMilestoneTransition(string(fx.From), string(fx.To))
	s.logger.InfoContext(ctx, "Milestone status changed",
		log.FieldOperation, log.OpTransition,
		log.FieldEntityID, m.ID,
		log.FieldFromStatus, fx.From,
		log.FieldToStatus, fx.To,
		"completed_date", m.CompletedDate)
}
