// Package memory is an in-process Entity Store used for development and
// tests. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nivasa/internal/core"
	"nivasa/internal/dashboard"
	"nivasa/internal/store"
)

type row[T any] struct {
	seq int64
	v   T
}

type Store struct {
	mu  sync.Mutex
	now func() time.Time
	seq int64

	projects   map[uuid.UUID]core.Project
	expenses   map[uuid.UUID]row[core.Expense]
	notes      map[uuid.UUID]row[core.Note]
	milestones map[uuid.UUID]row[core.Milestone]
	snapshots  []store.StatsSnapshot
}

type Option func(*Store)

// WithClock replaces time.Now for CreatedAt/UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		projects:   map[uuid.UUID]core.Project{},
		expenses:   map[uuid.UUID]row[core.Expense]{},
		notes:      map[uuid.UUID]row[core.Note]{},
		milestones: map[uuid.UUID]row[core.Milestone]{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Close() error { return nil }

func (s *Store) stamp() (time.Time, int64) {
	s.seq++
	return s.now().UTC(), s.seq
}

// Project

func (s *Store) GetProject(_ context.Context, userID uuid.UUID) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[userID]
	if !ok {
		return core.Project{}, core.NewNotFoundError("project", "")
	}
	return copyProject(p), nil
}

func (s *Store) CreateProject(_ context.Context, p core.Project) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.UserID]; ok {
		return core.Project{}, core.ErrProjectExists
	}
	now, _ := s.stamp()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	s.projects[p.UserID] = copyProject(p)
	return copyProject(p), nil
}

func (s *Store) UpdateProject(_ context.Context, p core.Project) (core.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.projects[p.UserID]
	if !ok {
		return core.Project{}, core.NewNotFoundError("project", "")
	}
	now, _ := s.stamp()
	p.ID, p.CreatedAt, p.UpdatedAt = old.ID, old.CreatedAt, now
	s.projects[p.UserID] = copyProject(p)
	return copyProject(p), nil
}

// Expenses

func (s *Store) ListExpenses(_ context.Context, userID uuid.UUID) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listExpenses(userID), nil
}

func (s *Store) listExpenses(userID uuid.UUID) []core.Expense {
	rows := owned(s.expenses, func(e core.Expense) bool { return e.UserID == userID })
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].v.Date.Equal(rows[j].v.Date) {
			return rows[j].v.Date.Before(rows[i].v.Date)
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]core.Expense, 0, len(rows))
	for _, r := range rows {
		out = append(out, copyExpense(r.v))
	}
	return out
}

func (s *Store) GetExpense(_ context.Context, userID, id uuid.UUID) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.expenses[id]
	if !ok || r.v.UserID != userID {
		return core.Expense{}, core.NewNotFoundError("expense", id.String())
	}
	return copyExpense(r.v), nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now, seq := s.stamp()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = now
	s.expenses[e.ID] = row[core.Expense]{seq: seq, v: copyExpense(e)}
	return copyExpense(e), nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.expenses[e.ID]
	if !ok || r.v.UserID != e.UserID {
		return core.Expense{}, core.NewNotFoundError("expense", e.ID.String())
	}
	e.CreatedAt = r.v.CreatedAt
	s.expenses[e.ID] = row[core.Expense]{seq: r.seq, v: copyExpense(e)}
	return copyExpense(e), nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.expenses[id]
	if !ok || r.v.UserID != userID {
		return core.NewNotFoundError("expense", id.String())
	}
	delete(s.expenses, id)
	return nil
}

// Notes

func (s *Store) ListNotes(_ context.Context, userID uuid.UUID) ([]core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listNotes(userID), nil
}

func (s *Store) listNotes(userID uuid.UUID) []core.Note {
	rows := owned(s.notes, func(n core.Note) bool { return n.UserID == userID })
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].v.CreatedAt.Equal(rows[j].v.CreatedAt) {
			return rows[i].v.CreatedAt.After(rows[j].v.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]core.Note, 0, len(rows))
	for _, r := range rows {
		out = append(out, copyNote(r.v))
	}
	return out
}

func (s *Store) GetNote(_ context.Context, userID, id uuid.UUID) (core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.notes[id]
	if !ok || r.v.UserID != userID {
		return core.Note{}, core.NewNotFoundError("note", id.String())
	}
	return copyNote(r.v), nil
}

func (s *Store) CreateNote(_ context.Context, n core.Note) (core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now, seq := s.stamp()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt, n.UpdatedAt = now, now
	s.notes[n.ID] = row[core.Note]{seq: seq, v: copyNote(n)}
	return copyNote(n), nil
}

func (s *Store) UpdateNote(_ context.Context, n core.Note) (core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.notes[n.ID]
	if !ok || r.v.UserID != n.UserID {
		return core.Note{}, core.NewNotFoundError("note", n.ID.String())
	}
	now, _ := s.stamp()
	n.CreatedAt, n.UpdatedAt = r.v.CreatedAt, now
	s.notes[n.ID] = row[core.Note]{seq: r.seq, v: copyNote(n)}
	return copyNote(n), nil
}

func (s *Store) DeleteNote(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.notes[id]
	if !ok || r.v.UserID != userID {
		return core.NewNotFoundError("note", id.String())
	}
	delete(s.notes, id)
	return nil
}

// Milestones

func (s *Store) ListMilestones(_ context.Context, userID uuid.UUID) ([]core.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listMilestones(userID), nil
}

func (s *Store) listMilestones(userID uuid.UUID) []core.Milestone {
	rows := owned(s.milestones, func(m core.Milestone) bool { return m.UserID == userID })
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].v.Order != rows[j].v.Order {
			return rows[i].v.Order < rows[j].v.Order
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]core.Milestone, 0, len(rows))
	for _, r := range rows {
		out = append(out, copyMilestone(r.v))
	}
	return out
}

func (s *Store) GetMilestone(_ context.Context, userID, id uuid.UUID) (core.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.milestones[id]
	if !ok || r.v.UserID != userID {
		return core.Milestone{}, core.NewNotFoundError("milestone", id.String())
	}
	return copyMilestone(r.v), nil
}

func (s *Store) CreateMilestone(_ context.Context, m core.Milestone) (core.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now, seq := s.stamp()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt, m.UpdatedAt = now, now
	s.milestones[m.ID] = row[core.Milestone]{seq: seq, v: copyMilestone(m)}
	return copyMilestone(m), nil
}

func (s *Store) UpdateMilestone(_ context.Context, m core.Milestone) (core.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.milestones[m.ID]
	if !ok || r.v.UserID != m.UserID {
		return core.Milestone{}, core.NewNotFoundError("milestone", m.ID.String())
	}
	now, _ := s.stamp()
	m.CreatedAt, m.UpdatedAt = r.v.CreatedAt, now
	s.milestones[m.ID] = row[core.Milestone]{seq: r.seq, v: copyMilestone(m)}
	return copyMilestone(m), nil
}

func (s *Store) DeleteMilestone(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.milestones[id]
	if !ok || r.v.UserID != userID {
		return core.NewNotFoundError("milestone", id.String())
	}
	delete(s.milestones, id)
	return nil
}

// Snapshot reads every collection under a single lock.
func (s *Store) Snapshot(_ context.Context, userID uuid.UUID) (store.Collections, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c store.Collections
	if p, ok := s.projects[userID]; ok {
		cp := copyProject(p)
		c.Project = &cp
	}
	c.Expenses = s.listExpenses(userID)
	c.Notes = s.listNotes(userID)
	c.Milestones = s.listMilestones(userID)
	return c, nil
}

func (s *Store) SaveSnapshot(_ context.Context, userID uuid.UUID, st dashboard.Stats, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, store.StatsSnapshot{
		ID:         int64(len(s.snapshots) + 1),
		UserID:     userID,
		Stats:      st,
		ComputedAt: at.UTC(),
	})
	return nil
}

func (s *Store) ListSnapshots(_ context.Context, userID uuid.UUID, limit int) ([]store.StatsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []store.StatsSnapshot{}
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if s.snapshots[i].UserID == userID {
			out = append(out, s.snapshots[i])
		}
	}
	return out, nil
}

func owned[T any](m map[uuid.UUID]row[T], keep func(T) bool) []row[T] {
	out := make([]row[T], 0, len(m))
	for _, r := range m {
		if keep(r.v) {
			out = append(out, r)
		}
	}
	// map iteration is random; seq restores insertion order before the caller sorts
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func copyProject(p core.Project) core.Project {
	if p.Description != nil {
		d := *p.Description
		p.Description = &d
	}
	p.TargetCompletionDate = copyDate(p.TargetCompletionDate)
	p.ActualCompletionDate = copyDate(p.ActualCompletionDate)
	return p
}

func copyExpense(e core.Expense) core.Expense {
	e.ProjectID = copyID(e.ProjectID)
	return e
}

func copyNote(n core.Note) core.Note {
	n.ProjectID = copyID(n.ProjectID)
	n.Tags = append([]string{}, n.Tags...)
	return n
}

func copyMilestone(m core.Milestone) core.Milestone {
	m.ProjectID = copyID(m.ProjectID)
	m.ExpectedDate = copyDate(m.ExpectedDate)
	m.CompletedDate = copyDate(m.CompletedDate)
	return m
}

func copyDate(d *core.Date) *core.Date {
	if d == nil {
		return nil
	}
	return core.DatePtr(*d)
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

var (
	_ store.Store         = (*Store)(nil)
	_ store.Snapshotter   = (*Store)(nil)
	_ store.SnapshotStore = (*Store)(nil)
)
