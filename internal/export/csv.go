// Package export renders expense lists as delimited text.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"nivasa/internal/core"
)

const (
	ContentType    = "text/csv; charset=utf-8"
	filenamePrefix = "nivasa-expenses"
)

// Header is the fixed column order of every export.
var Header = []string{"Date", "Description", "Category", "Vendor", "Amount"}

// Payload is a rendered export ready to be served or written to disk.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Records converts expenses into rows in Header order, without the header.
func Records(expenses []core.Expense) [][]string {
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []string{
			e.Date.String(),
			e.Description,
			e.Category,
			e.Vendor,
			e.Amount.String(),
		})
	}
	return rows
}

// WriteCSV writes the header and one row per expense. Fields containing the
// delimiter, a quote or a line break are quoted with embedded quotes doubled.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(Records(expenses)); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// CSV renders expenses into a Payload. filtered selects the filename used
// for a filtered subset. An empty list is rejected with *core.EmptyExportError.
func CSV(expenses []core.Expense, today core.Date, filtered bool) (Payload, error) {
	if len(expenses) == 0 {
		return Payload{}, &core.EmptyExportError{Filtered: filtered}
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, expenses); err != nil {
		return Payload{}, err
	}
	return Payload{
		Filename:    Filename(today, filtered),
		ContentType: ContentType,
		Data:        buf.Bytes(),
	}, nil
}

// Filename returns the suggested download name for an export made on today.
func Filename(today core.Date, filtered bool) string {
	if filtered {
		return fmt.Sprintf("%s-filtered-%s.csv", filenamePrefix, today)
	}
	return fmt.Sprintf("%s-%s.csv", filenamePrefix, today)
}
