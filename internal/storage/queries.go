package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nivasa/internal/core"
)

type scanner interface {
	Scan(dest ...any) error
}

// Projects

const projectColumns = `id, user_id, name, location, description, budget, start_date,
	target_completion_date, actual_completion_date, status, created_at, updated_at`

func scanProject(s scanner) (core.Project, error) {
	var (
		p                  core.Project
		desc               sql.NullString
		target, actual     core.Date
		status             string
		createdAt, updated string
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.Location, &desc, &p.Budget, &p.StartDate,
		&target, &actual, &status, &createdAt, &updated); err != nil {
		return p, err
	}
	if desc.Valid {
		p.Description = &desc.String
	}
	p.TargetCompletionDate = optionalDate(target)
	p.ActualCompletionDate = optionalDate(actual)
	p.Status = core.ProjectStatus(status)
	return p, scanTimes(createdAt, updated, &p.CreatedAt, &p.UpdatedAt)
}

func (q *Queries) GetProject(ctx context.Context, userID uuid.UUID) (core.Project, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE user_id = ?`, userID)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return p, core.NewNotFoundError("project", "")
	}
	return p, err
}

func (q *Queries) ProjectExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE user_id = ?`, userID).Scan(&n)
	return n > 0, err
}

func (q *Queries) InsertProject(ctx context.Context, p core.Project) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, p.Location, p.Description, p.Budget, p.StartDate,
		p.TargetCompletionDate, p.ActualCompletionDate, string(p.Status),
		formatTS(p.CreatedAt), formatTS(p.UpdatedAt))
	return err
}

func (q *Queries) UpdateProject(ctx context.Context, p core.Project) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE projects SET name = ?, location = ?, description = ?,
		budget = ?, start_date = ?, target_completion_date = ?, actual_completion_date = ?,
		status = ?, updated_at = ? WHERE user_id = ?`,
		p.Name, p.Location, p.Description, p.Budget, p.StartDate,
		p.TargetCompletionDate, p.ActualCompletionDate, string(p.Status),
		formatTS(p.UpdatedAt), p.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Expenses

const expenseColumns = `id, user_id, project_id, amount, category, vendor, description, date, created_at`

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e         core.Expense
		projectID uuid.NullUUID
		createdAt string
	)
	if err := s.Scan(&e.ID, &e.UserID, &projectID, &e.Amount, &e.Category, &e.Vendor,
		&e.Description, &e.Date, &createdAt); err != nil {
		return e, err
	}
	e.ProjectID = optionalID(projectID)
	t, err := parseTS(createdAt)
	if err != nil {
		return e, fmt.Errorf("parse created_at: %w", err)
	}
	e.CreatedAt = t
	return e, nil
}

func (q *Queries) ListExpenses(ctx context.Context, userID uuid.UUID) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = ? ORDER BY date DESC, rowid ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *Queries) GetExpense(ctx context.Context, userID, id uuid.UUID) (core.Expense, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return e, core.NewNotFoundError("expense", id.String())
	}
	return e, err
}

func (q *Queries) InsertExpense(ctx context.Context, e core.Expense) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.ProjectID, e.Amount, e.Category, e.Vendor, e.Description, e.Date,
		formatTS(e.CreatedAt))
	return err
}

func (q *Queries) UpdateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE expenses SET project_id = ?, amount = ?, category = ?,
		vendor = ?, description = ?, date = ? WHERE id = ? AND user_id = ?`,
		e.ProjectID, e.Amount, e.Category, e.Vendor, e.Description, e.Date, e.ID, e.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Notes

const noteColumns = `id, user_id, project_id, title, content, tags, type, completed, created_at, updated_at`

func scanNote(s scanner) (core.Note, error) {
	var (
		n                  core.Note
		projectID          uuid.NullUUID
		tags, typ          string
		createdAt, updated string
	)
	if err := s.Scan(&n.ID, &n.UserID, &projectID, &n.Title, &n.Content, &tags, &typ,
		&n.Completed, &createdAt, &updated); err != nil {
		return n, err
	}
	n.ProjectID = optionalID(projectID)
	n.Type = core.NoteType(typ)
	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
		return n, fmt.Errorf("decode tags: %w", err)
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return n, scanTimes(createdAt, updated, &n.CreatedAt, &n.UpdatedAt)
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

func (q *Queries) ListNotes(ctx context.Context, userID uuid.UUID) ([]core.Note, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes
		WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []core.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (q *Queries) GetNote(ctx context.Context, userID, id uuid.UUID) (core.Note, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return n, core.NewNotFoundError("note", id.String())
	}
	return n, err
}

func (q *Queries) InsertNote(ctx context.Context, n core.Note) error {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.ProjectID, n.Title, n.Content, tags, string(n.Type), n.Completed,
		formatTS(n.CreatedAt), formatTS(n.UpdatedAt))
	return err
}

func (q *Queries) UpdateNote(ctx context.Context, n core.Note) (int64, error) {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return 0, err
	}
	res, err := q.db.ExecContext(ctx, `UPDATE notes SET project_id = ?, title = ?, content = ?, tags = ?,
		type = ?, completed = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		n.ProjectID, n.Title, n.Content, tags, string(n.Type), n.Completed,
		formatTS(n.UpdatedAt), n.ID, n.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Milestones

const milestoneColumns = `id, user_id, project_id, title, description, status, expected_date,
	completed_date, sort_order, created_at, updated_at`

func scanMilestone(s scanner) (core.Milestone, error) {
	var (
		m                  core.Milestone
		projectID          uuid.NullUUID
		status             string
		expected, done     core.Date
		createdAt, updated string
	)
	if err := s.Scan(&m.ID, &m.UserID, &projectID, &m.Title, &m.Description, &status,
		&expected, &done, &m.Order, &createdAt, &updated); err != nil {
		return m, err
	}
	m.ProjectID = optionalID(projectID)
	m.Status = core.MilestoneStatus(status)
	m.ExpectedDate = optionalDate(expected)
	m.CompletedDate = optionalDate(done)
	return m, scanTimes(createdAt, updated, &m.CreatedAt, &m.UpdatedAt)
}

func (q *Queries) ListMilestones(ctx context.Context, userID uuid.UUID) ([]core.Milestone, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+milestoneColumns+` FROM milestones
		WHERE user_id = ? ORDER BY sort_order ASC, rowid ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []core.Milestone{}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (q *Queries) GetMilestone(ctx context.Context, userID, id uuid.UUID) (core.Milestone, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+milestoneColumns+` FROM milestones WHERE id = ? AND user_id = ?`, id, userID)
	m, err := scanMilestone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return m, core.NewNotFoundError("milestone", id.String())
	}
	return m, err
}

func (q *Queries) InsertMilestone(ctx context.Context, m core.Milestone) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO milestones (`+milestoneColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.ProjectID, m.Title, m.Description, string(m.Status),
		m.ExpectedDate, m.CompletedDate, m.Order, formatTS(m.CreatedAt), formatTS(m.UpdatedAt))
	return err
}

func (q *Queries) UpdateMilestone(ctx context.Context, m core.Milestone) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE milestones SET project_id = ?, title = ?, description = ?,
		status = ?, expected_date = ?, completed_date = ?, sort_order = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		m.ProjectID, m.Title, m.Description, string(m.Status), m.ExpectedDate, m.CompletedDate,
		m.Order, formatTS(m.UpdatedAt), m.ID, m.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes one row of table owned by userID.
func (q *Queries) Delete(ctx context.Context, table string, userID, id uuid.UUID) (int64, error) {
	switch table {
	case "expenses", "notes", "milestones":
	default:
		return 0, fmt.Errorf("delete: unknown table %q", table)
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats snapshots

func (q *Queries) InsertSnapshot(ctx context.Context, userID uuid.UUID, stats []byte, computedAt string) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO stats_snapshots (user_id, stats, computed_at) VALUES (?, ?, ?)`,
		userID, string(stats), computedAt)
	return err
}

type snapshotRow struct {
	ID         int64
	UserID     uuid.UUID
	Stats      string
	ComputedAt string
}

func (q *Queries) ListSnapshots(ctx context.Context, userID uuid.UUID, limit int) ([]snapshotRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := q.db.QueryContext(ctx, `SELECT id, user_id, stats, computed_at FROM stats_snapshots
		WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []snapshotRow
	for rows.Next() {
		var r snapshotRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Stats, &r.ComputedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func optionalDate(d core.Date) *core.Date {
	if d.IsZero() {
		return nil
	}
	return core.DatePtr(d)
}

func optionalID(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}

func scanTimes(created, updated string, createdAt, updatedAt *time.Time) error {
	c, err := parseTS(created)
	if err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	u, err := parseTS(updated)
	if err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	*createdAt, *updatedAt = c, u
	return nil
}
