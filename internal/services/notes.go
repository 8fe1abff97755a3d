package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nivasa/internal/amqp"
	"nivasa/internal/core"
	"nivasa/internal/filter"
)

const entityNote = "note"

func (s *TrackerService) ListNotes(ctx context.Context, userID uuid.UUID, q filter.NoteQuery) ([]core.Note, error) {
	all, err := s.store.ListNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return filter.Notes(all, q), nil
}

func (s *TrackerService) GetNote(ctx context.Context, userID, id uuid.UUID) (core.Note, error) {
	return s.store.GetNote(ctx, userID, id)
}

func (s *TrackerService) CreateNote(ctx context.Context, userID uuid.UUID, n core.Note) (core.Note, error) {
	n.ID = uuid.Nil
	n.UserID = userID
	if n.Type == "" {
		n.Type = core.NoteText
	}
	n.Tags = core.NormalizeTags(n.Tags)
	if err := n.Validate(); err != nil {
		return core.Note{}, err
	}
	created, err := s.store.CreateNote(ctx, n)
	if err != nil {
		return core.Note{}, fmt.Errorf("create note: %w", err)
	}
	s.changed(ctx, userID, entityNote, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *TrackerService) UpdateNote(ctx context.Context, userID, id uuid.UUID, patch core.NotePatch) (core.Note, error) {
	current, err := s.store.GetNote(ctx, userID, id)
	if err != nil {
		return core.Note{}, err
	}
	return s.saveNote(ctx, patch.Apply(current))
}

func (s *TrackerService) DeleteNote(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.DeleteNote(ctx, userID, id); err != nil {
		return err
	}
	s.changed(ctx, userID, entityNote, id, amqp.ActionDeleted)
	return nil
}

// AddNoteTag adds tag to the note; adding a present tag is a no-op.
func (s *TrackerService) AddNoteTag(ctx context.Context, userID, id uuid.UUID, tag string) (core.Note, error) {
	n, err := s.store.GetNote(ctx, userID, id)
	if err != nil {
		return core.Note{}, err
	}
	if !n.AddTag(tag) {
		if n.HasTag(tag) {
			return n, nil
		}
		return core.Note{}, core.NewValidationError("tag", "is required")
	}
	return s.saveNote(ctx, n)
}

// RemoveNoteTag removes tag; removing an absent tag is a no-op.
func (s *TrackerService) RemoveNoteTag(ctx context.Context, userID, id uuid.UUID, tag string) (core.Note, error) {
	n, err := s.store.GetNote(ctx, userID, id)
	if err != nil {
		return core.Note{}, err
	}
	if !n.RemoveTag(tag) {
		return n, nil
	}
	return s.saveNote(ctx, n)
}

// NoteTags lists the tags in use, for the tag filter.
func (s *TrackerService) NoteTags(ctx context.Context, userID uuid.UUID) ([]string, error) {
	all, err := s.store.ListNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return filter.NoteTags(all), nil
}

func (s *TrackerService) saveNote(ctx context.Context, n core.Note) (core.Note, error) {
	if err := n.Validate(); err != nil {
		return core.Note{}, err
	}
	updated, err := s.store.UpdateNote(ctx, n)
	if err != nil {
		return core.Note{}, fmt.Errorf("update note: %w", err)
	}
	s.changed(ctx, n.UserID, entityNote, n.ID, amqp.ActionUpdated)
	return updated, nil
}
