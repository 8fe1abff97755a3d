package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nivasa/internal/amqp"
	"nivasa/internal/core"
)

const entityProject = "project"

func (s *TrackerService) GetProject(ctx context.Context, userID uuid.UUID) (core.Project, error) {
	return s.store.GetProject(ctx, userID)
}

// CreateProject is the one-time project setup for a user.
func (s *TrackerService) CreateProject(ctx context.Context, userID uuid.UUID, p core.Project) (core.Project, error) {
	p.ID = uuid.Nil
	p.UserID = userID
	if p.Status == "" {
		p.Status = core.ProjectPlanning
	}
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	created, err := s.store.CreateProject(ctx, p)
	if err != nil {
		return core.Project{}, fmt.Errorf("create project: %w", err)
	}
	s.changed(ctx, userID, entityProject, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *TrackerService) UpdateProject(ctx context.Context, userID uuid.UUID, patch core.ProjectPatch) (core.Project, error) {
	current, err := s.store.GetProject(ctx, userID)
	if err != nil {
		return core.Project{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return core.Project{}, err
	}
	updated, err := s.store.UpdateProject(ctx, next)
	if err != nil {
		return core.Project{}, fmt.Errorf("update project: %w", err)
	}
	s.changed(ctx, userID, entityProject, updated.ID, amqp.ActionUpdated)
	return updated, nil
}
