// Package store defines the Entity Store ports used by the tracker
// service. Every method is scoped to a user; ids owned by someone else are
// reported as core.ErrNotFound.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nivasa/internal/core"
	"nivasa/internal/dashboard"
)

type ProjectStore interface {
	// GetProject returns core.ErrNotFound when the user has no project.
	GetProject(ctx context.Context, userID uuid.UUID) (core.Project, error)
	// CreateProject returns core.ErrProjectExists on a second create.
	CreateProject(ctx context.Context, p core.Project) (core.Project, error)
	UpdateProject(ctx context.Context, p core.Project) (core.Project, error)
}

// ExpenseStore lists expenses newest date first.
type ExpenseStore interface {
	ListExpenses(ctx context.Context, userID uuid.UUID) ([]core.Expense, error)
	GetExpense(ctx context.Context, userID, id uuid.UUID) (core.Expense, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, userID, id uuid.UUID) error
}

// NoteStore lists notes newest first.
type NoteStore interface {
	ListNotes(ctx context.Context, userID uuid.UUID) ([]core.Note, error)
	GetNote(ctx context.Context, userID, id uuid.UUID) (core.Note, error)
	CreateNote(ctx context.Context, n core.Note) (core.Note, error)
	UpdateNote(ctx context.Context, n core.Note) (core.Note, error)
	DeleteNote(ctx context.Context, userID, id uuid.UUID) error
}

// MilestoneStore lists milestones by Order ascending, ties in insertion order.
type MilestoneStore interface {
	ListMilestones(ctx context.Context, userID uuid.UUID) ([]core.Milestone, error)
	GetMilestone(ctx context.Context, userID, id uuid.UUID) (core.Milestone, error)
	CreateMilestone(ctx context.Context, m core.Milestone) (core.Milestone, error)
	UpdateMilestone(ctx context.Context, m core.Milestone) (core.Milestone, error)
	DeleteMilestone(ctx context.Context, userID, id uuid.UUID) error
}

// Store is the full Entity Store.
type Store interface {
	ProjectStore
	ExpenseStore
	NoteStore
	MilestoneStore
	Close() error
}

// Collections is every entity a user owns, read at one point in time.
// Project is nil when the user has not set one up.
type Collections struct {
	Project    *core.Project
	Expenses   []core.Expense
	Notes      []core.Note
	Milestones []core.Milestone
}

// Snapshotter is implemented by stores that can read all collections from
// one consistent view.
type Snapshotter interface {
	Snapshot(ctx context.Context, userID uuid.UUID) (Collections, error)
}

// StatsSnapshot is a persisted dashboard computation.
type StatsSnapshot struct {
	ID         int64           `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	Stats      dashboard.Stats `json:"stats"`
	ComputedAt time.Time       `json:"computedAt"`
}

// SnapshotStore keeps a history of dashboard computations.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, userID uuid.UUID, st dashboard.Stats, at time.Time) error
	// ListSnapshots returns the newest snapshots first, at most limit.
	ListSnapshots(ctx context.Context, userID uuid.UUID, limit int) ([]StatsSnapshot, error)
}
