package sheets

import (
	"context"

	"nivasa/internal/core"
)

// AppendResult describes where an export landed.
type AppendResult struct {
	Range string `json:"range"`
	Rows  int    `json:"rows"`
}

// Ports for outbound adapters.
type (
	// ExpenseExporter appends expense rows to a spreadsheet-like sink.
	// Empty input is rejected with core.ErrEmptyExport.
	ExpenseExporter interface {
		AppendExpenses(ctx context.Context, expenses []core.Expense) (AppendResult, error)
	}
)
