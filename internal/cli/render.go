package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nivasa/internal/core"
	"nivasa/internal/dashboard"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorAccent = lipgloss.Color("#3AA99F")
	colorRed    = lipgloss.Color("#D14D41")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	dimStyle    = lipgloss.NewStyle().Foreground(colorBorder)
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

// Table is a plain column layout. The first column is left aligned and
// the rest right aligned unless LeftAlign covers them.
type Table struct {
	Headers   []string
	Rows      [][]string
	LeftAlign int
}

// RenderTitle renders title in a rounded box.
func RenderTitle(title string) string {
	return titleStyle.Render(title)
}

// RenderTable lays out t with a rule under the header.
func RenderTable(t Table) string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	left := max(t.LeftAlign, 1)
	line := func(cells []string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i < left {
				parts[i] = fmt.Sprintf("%-*s", w, cell)
			} else {
				parts[i] = fmt.Sprintf("%*s", w, cell)
			}
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(line(t.Headers)))
	b.WriteString("\n")
	total := 2 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	b.WriteString(dimStyle.Render(strings.Repeat("─", total)))
	b.WriteString("\n")
	for _, row := range t.Rows {
		b.WriteString(line(row))
		b.WriteString("\n")
	}
	return b.String()
}

// WriteStats prints the dashboard summary followed by the per-category
// breakdown.
func WriteStats(w io.Writer, st dashboard.Stats) error {
	budget := st.BudgetRemaining.String()
	if st.OverBudget {
		budget = warnStyle.Render(budget + " (over budget)")
	}
	summary := Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total expenses", st.TotalExpenses.String()},
			{"Total budget", st.TotalBudget.String()},
			{"Remaining", budget},
			{"Budget used", fmt.Sprintf("%d%%", st.BudgetUsedPercent)},
			{"Expenses", fmt.Sprint(st.ExpenseCount)},
			{"Average expense", st.AverageExpense.String()},
			{"Active notes", fmt.Sprint(st.ActiveNotes)},
			{"Milestones", fmt.Sprintf("%d/%d done, %d in progress", st.CompletedMilestones, st.TotalMilestones, st.InProgressMilestones)},
			{"Progress", fmt.Sprintf("%d%%", st.ProgressPercent)},
		},
	}
	if _, err := fmt.Fprintf(w, "%s\n\n%s", RenderTitle("Project dashboard"), RenderTable(summary)); err != nil {
		return err
	}
	if len(st.ByCategory) == 0 {
		return nil
	}
	cats := Table{Headers: []string{"Category", "Count", "Amount"}}
	for _, c := range st.ByCategory {
		cats.Rows = append(cats.Rows, []string{c.Category, fmt.Sprint(c.Count), c.Amount.String()})
	}
	_, err := fmt.Fprintf(w, "\n%s", RenderTable(cats))
	return err
}

// WriteMilestones prints milestones in their stored order.
func WriteMilestones(w io.Writer, ms []core.Milestone) error {
	t := Table{Headers: []string{"ID", "Title", "Status", "Expected", "Completed"}, LeftAlign: 5}
	for _, m := range ms {
		t.Rows = append(t.Rows, []string{m.ID.String(), m.Title, string(m.Status), optDate(m.ExpectedDate), optDate(m.CompletedDate)})
	}
	_, err := io.WriteString(w, RenderTable(t))
	return err
}

func optDate(d *core.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
