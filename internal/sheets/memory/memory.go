package memory

import (
	"context"
	"fmt"
	"sync"

	"nivasa/internal/core"
	"nivasa/internal/export"
	"nivasa/internal/sheets"
)

// Sink keeps exported rows in memory. It backs the sheets export when no
// spreadsheet is configured and stands in for Google Sheets in tests.
type Sink struct {
	mu   sync.Mutex
	rows [][]string
}

func New() *Sink {
	return &Sink{}
}

// AppendExpenses writes the header on first use, then one row per expense.
func (s *Sink) AppendExpenses(_ context.Context, expenses []core.Expense) (sheets.AppendResult, error) {
	if len(expenses) == 0 {
		return sheets.AppendResult{}, &core.EmptyExportError{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rows) == 0 {
		s.rows = append(s.rows, append([]string(nil), export.Header...))
	}
	start := len(s.rows) + 1
	s.rows = append(s.rows, export.Records(expenses)...)
	return sheets.AppendResult{
		Range: fmt.Sprintf("mem!A%d:E%d", start, len(s.rows)),
		Rows:  len(expenses),
	}, nil
}

// Rows returns a copy of everything written so far, header included.
func (s *Sink) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

var _ sheets.ExpenseExporter = (*Sink)(nil)
