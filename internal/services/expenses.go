package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nivasa/internal/amqp"
	"nivasa/internal/core"
	"nivasa/internal/dashboard"
	"nivasa/internal/export"
	"nivasa/internal/filter"
	"nivasa/internal/log"
	"nivasa/internal/metrics"
	"nivasa/internal/sheets"
)

const entityExpense = "expense"

// ExpenseList is a filtered expense listing with its summary figures.
type ExpenseList struct {
	Items   []core.Expense `json:"items"`
	Count   int            `json:"count"`
	Total   core.Money     `json:"total"`
	Average core.Money     `json:"average"`
}

func (s *TrackerService) ListExpenses(ctx context.Context, userID uuid.UUID, q filter.ExpenseQuery) (ExpenseList, error) {
	all, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return ExpenseList{}, fmt.Errorf("list expenses: %w", err)
	}
	items := filter.Expenses(all, q)
	st := dashboard.Compute(items, nil, nil, nil)
	return ExpenseList{
		Items:   items,
		Count:   len(items),
		Total:   st.TotalExpenses,
		Average: st.AverageExpense,
	}, nil
}

func (s *TrackerService) GetExpense(ctx context.Context, userID, id uuid.UUID) (core.Expense, error) {
	return s.store.GetExpense(ctx, userID, id)
}

func (s *TrackerService) CreateExpense(ctx context.Context, userID uuid.UUID, e core.Expense) (core.Expense, error) {
	e.ID = uuid.Nil
	e.UserID = userID
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if e.ProjectID == nil {
		if p, err := s.store.GetProject(ctx, userID); err == nil {
			id := p.ID
			e.ProjectID = &id
		}
	}
	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.changed(ctx, userID, entityExpense, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *TrackerService) UpdateExpense(ctx context.Context, userID, id uuid.UUID, patch core.ExpensePatch) (core.Expense, error) {
	current, err := s.store.GetExpense(ctx, userID, id)
	if err != nil {
		return core.Expense{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated, err := s.store.UpdateExpense(ctx, next)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.changed(ctx, userID, entityExpense, id, amqp.ActionUpdated)
	return updated, nil
}

func (s *TrackerService) DeleteExpense(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	s.changed(ctx, userID, entityExpense, id, amqp.ActionDeleted)
	return nil
}

// ExpenseCategories lists the categories in use, for the category filter.
func (s *TrackerService) ExpenseCategories(ctx context.Context, userID uuid.UUID) ([]string, error) {
	all, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return filter.ExpenseCategories(all), nil
}

// ExportExpensesCSV renders the filtered expenses as a CSV download.
// An inactive query produces the unfiltered dashboard export.
func (s *TrackerService) ExportExpensesCSV(ctx context.Context, userID uuid.UUID, q filter.ExpenseQuery) (export.Payload, error) {
	list, err := s.ListExpenses(ctx, userID, q)
	if err != nil {
		return export.Payload{}, err
	}
	payload, err := export.CSV(list.Items, s.today(), q.Active())
	if err != nil {
		return export.Payload{}, err
	}
	metrics.IncExport("csv")
	s.logger.InfoContext(ctx, "Expenses exported",
		log.FieldOperation, log.OpExport,
		log.FieldUserID, userID,
		log.FieldSink, "csv",
		log.FieldRows, list.Count)
	return payload, nil
}

// ExportExpensesToSheet appends the filtered expenses to the configured
// spreadsheet.
func (s *TrackerService) ExportExpensesToSheet(ctx context.Context, userID uuid.UUID, q filter.ExpenseQuery) (sheets.AppendResult, error) {
	if s.exporter == nil {
		return sheets.AppendResult{}, ErrSheetsDisabled
	}
	list, err := s.ListExpenses(ctx, userID, q)
	if err != nil {
		return sheets.AppendResult{}, err
	}
	if list.Count == 0 {
		return sheets.AppendResult{}, &core.EmptyExportError{Filtered: q.Active()}
	}
	res, err := s.exporter.AppendExpenses(ctx, list.Items)
	if err != nil {
		return sheets.AppendResult{}, fmt.Errorf("export to sheet: %w", err)
	}
	metrics.IncExport("sheets")
	s.logger.InfoContext(ctx, "Expenses exported",
		log.FieldOperation, log.OpExport,
		log.FieldUserID, userID,
		log.FieldSink, "sheets",
		log.FieldRows, res.Rows)
	return res, nil
}
