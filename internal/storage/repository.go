package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"nivasa/internal/core"
	"nivasa/internal/dashboard"
	"nivasa/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

type Option func(*SQLiteRepository)

// WithClock replaces time.Now for CreatedAt/UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) { r.now = now }
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps snapshot
	// transactions from racing writers on a second connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}
	for _, o := range opts {
		o(repo)
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) stamp() time.Time {
	return r.now().UTC()
}

func (r *SQLiteRepository) GetProject(ctx context.Context, userID uuid.UUID) (core.Project, error) {
	p, err := r.queries.GetProject(ctx, userID)
	if err != nil {
		return p, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return p, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	exists, err := q.ProjectExists(ctx, p.UserID)
	if err != nil {
		return p, fmt.Errorf("check project: %w", err)
	}
	if exists {
		return p, core.ErrProjectExists
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.stamp()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := q.InsertProject(ctx, p); err != nil {
		return p, fmt.Errorf("insert project: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return p, fmt.Errorf("commit: %w", err)
	}
	slog.InfoContext(ctx, "Project created", "id", p.ID, "user_id", p.UserID)
	return p, nil
}

func (r *SQLiteRepository) UpdateProject(ctx context.Context, p core.Project) (core.Project, error) {
	p.UpdatedAt = r.stamp()
	n, err := r.queries.UpdateProject(ctx, p)
	if err != nil {
		return p, fmt.Errorf("update project: %w", err)
	}
	if n == 0 {
		return p, core.NewNotFoundError("project", "")
	}
	return r.GetProject(ctx, p.UserID)
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID uuid.UUID) ([]core.Expense, error) {
	out, err := r.queries.ListExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id uuid.UUID) (core.Expense, error) {
	e, err := r.queries.GetExpense(ctx, userID, id)
	if err != nil {
		return e, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = r.stamp()
	if err := r.queries.InsertExpense(ctx, e); err != nil {
		return e, fmt.Errorf("insert expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"amount", e.Amount.String(),
		"category", e.Category,
		"date", e.Date.String())
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	n, err := r.queries.UpdateExpense(ctx, e)
	if err != nil {
		return e, fmt.Errorf("update expense: %w", err)
	}
	if n == 0 {
		return e, core.NewNotFoundError("expense", e.ID.String())
	}
	return r.GetExpense(ctx, e.UserID, e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id uuid.UUID) error {
	return r.delete(ctx, "expenses", "expense", userID, id)
}

func (r *SQLiteRepository) ListNotes(ctx context.Context, userID uuid.UUID) ([]core.Note, error) {
	out, err := r.queries.ListNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetNote(ctx context.Context, userID, id uuid.UUID) (core.Note, error) {
	n, err := r.queries.GetNote(ctx, userID, id)
	if err != nil {
		return n, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CreateNote(ctx context.Context, n core.Note) (core.Note, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	now := r.stamp()
	n.CreatedAt, n.UpdatedAt = now, now
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if err := r.queries.InsertNote(ctx, n); err != nil {
		return n, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) UpdateNote(ctx context.Context, n core.Note) (core.Note, error) {
	n.UpdatedAt = r.stamp()
	c, err := r.queries.UpdateNote(ctx, n)
	if err != nil {
		return n, fmt.Errorf("update note: %w", err)
	}
	if c == 0 {
		return n, core.NewNotFoundError("note", n.ID.String())
	}
	return r.GetNote(ctx, n.UserID, n.ID)
}

func (r *SQLiteRepository) DeleteNote(ctx context.Context, userID, id uuid.UUID) error {
	return r.delete(ctx, "notes", "note", userID, id)
}

func (r *SQLiteRepository) ListMilestones(ctx context.Context, userID uuid.UUID) ([]core.Milestone, error) {
	out, err := r.queries.ListMilestones(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetMilestone(ctx context.Context, userID, id uuid.UUID) (core.Milestone, error) {
	m, err := r.queries.GetMilestone(ctx, userID, id)
	if err != nil {
		return m, fmt.Errorf("get milestone: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) CreateMilestone(ctx context.Context, m core.Milestone) (core.Milestone, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := r.stamp()
	m.CreatedAt, m.UpdatedAt = now, now
	if err := r.queries.InsertMilestone(ctx, m); err != nil {
		return m, fmt.Errorf("insert milestone: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) UpdateMilestone(ctx context.Context, m core.Milestone) (core.Milestone, error) {
	m.UpdatedAt = r.stamp()
	n, err := r.queries.UpdateMilestone(ctx, m)
	if err != nil {
		return m, fmt.Errorf("update milestone: %w", err)
	}
	if n == 0 {
		return m, core.NewNotFoundError("milestone", m.ID.String())
	}
	return r.GetMilestone(ctx, m.UserID, m.ID)
}

func (r *SQLiteRepository) DeleteMilestone(ctx context.Context, userID, id uuid.UUID) error {
	return r.delete(ctx, "milestones", "milestone", userID, id)
}

func (r *SQLiteRepository) delete(ctx context.Context, table, entity string, userID, id uuid.UUID) error {
	n, err := r.queries.Delete(ctx, table, userID, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	if n == 0 {
		return core.NewNotFoundError(entity, id.String())
	}
	return nil
}

// Snapshot reads every collection inside one transaction.
func (r *SQLiteRepository) Snapshot(ctx context.Context, userID uuid.UUID) (store.Collections, error) {
	var c store.Collections
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return c, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	p, err := q.GetProject(ctx, userID)
	switch {
	case err == nil:
		c.Project = &p
	case errors.Is(err, core.ErrNotFound):
	default:
		return c, fmt.Errorf("snapshot project: %w", err)
	}
	if c.Expenses, err = q.ListExpenses(ctx, userID); err != nil {
		return c, fmt.Errorf("snapshot expenses: %w", err)
	}
	if c.Notes, err = q.ListNotes(ctx, userID); err != nil {
		return c, fmt.Errorf("snapshot notes: %w", err)
	}
	if c.Milestones, err = q.ListMilestones(ctx, userID); err != nil {
		return c, fmt.Errorf("snapshot milestones: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, userID uuid.UUID, st dashboard.Stats, at time.Time) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := r.queries.InsertSnapshot(ctx, userID, b, formatTS(at)); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	slog.DebugContext(ctx, "Stats snapshot saved", "user_id", userID)
	return nil
}

func (r *SQLiteRepository) ListSnapshots(ctx context.Context, userID uuid.UUID, limit int) ([]store.StatsSnapshot, error) {
	rows, err := r.queries.ListSnapshots(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out := make([]store.StatsSnapshot, 0, len(rows))
	for _, row := range rows {
		s := store.StatsSnapshot{ID: row.ID, UserID: row.UserID}
		if err := json.Unmarshal([]byte(row.Stats), &s.Stats); err != nil {
			return nil, fmt.Errorf("decode snapshot %d: %w", row.ID, err)
		}
		if s.ComputedAt, err = parseTS(row.ComputedAt); err != nil {
			return nil, fmt.Errorf("parse snapshot %d time: %w", row.ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

var (
	_ store.Store         = (*SQLiteRepository)(nil)
	_ store.Snapshotter   = (*SQLiteRepository)(nil)
	_ store.SnapshotStore = (*SQLiteRepository)(nil)
)
