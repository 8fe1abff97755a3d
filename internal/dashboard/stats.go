// Package dashboard computes the summary figures shown on the project
// dashboard from the four entity collections.
package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"

	"nivasa/internal/core"
)

// Stats is the aggregation output. Money fields marshal as fixed
// two-decimal strings, percentages as integers.
type Stats struct {
	TotalExpenses       core.Money `json:"totalExpenses"`
	TotalBudget         core.Money `json:"totalBudget"`
	BudgetRemaining     core.Money `json:"budgetRemaining"`
	BudgetUsedPercent   int        `json:"budgetUsedPercent"`
	ActiveNotes         int        `json:"activeNotes"`
	CompletedMilestones int        `json:"completedMilestones"`
	ProgressPercent     int        `json:"progressPercent"`

	TotalMilestones      int             `json:"totalMilestones"`
	InProgressMilestones int             `json:"inProgressMilestones"`
	PendingMilestones    int             `json:"pendingMilestones"`
	ExpenseCount         int             `json:"expenseCount"`
	AverageExpense       core.Money      `json:"averageExpense"`
	OverBudget           bool            `json:"overBudget"`
	ByCategory           []CategoryTotal `json:"byCategory"`
}

// CategoryTotal is the amount spent in one expense category.
type CategoryTotal struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
	Count    int        `json:"count"`
}

var hundred = decimal.NewFromInt(100)

// Compute derives Stats from the collections. project may be nil, in which
// case the budget is zero and BudgetUsedPercent is 0.
func Compute(expenses []core.Expense, notes []core.Note, milestones []core.Milestone, project *core.Project) Stats {
	var st Stats

	total := core.Zero
	byCat := map[string]*CategoryTotal{}
	for _, e := range expenses {
		total = total.Add(e.Amount)
		ct, ok := byCat[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			byCat[e.Category] = ct
		}
		ct.Amount = ct.Amount.Add(e.Amount)
		ct.Count++
	}
	st.TotalExpenses = total
	st.ExpenseCount = len(expenses)
	st.AverageExpense = average(total, len(expenses))
	st.ByCategory = sortedCategories(byCat)

	if project != nil {
		st.TotalBudget = project.Budget
	}
	st.BudgetRemaining = st.TotalBudget.Sub(total)
	st.OverBudget = st.BudgetRemaining.IsNegative()
	st.BudgetUsedPercent = Percent(total.Decimal(), st.TotalBudget.Decimal())

	st.ActiveNotes = len(notes)

	for _, m := range milestones {
		switch m.Status {
		case core.MilestoneCompleted:
			st.CompletedMilestones++
		case core.MilestoneInProgress:
			st.InProgressMilestones++
		case core.MilestonePending:
			st.PendingMilestones++
		}
	}
	st.TotalMilestones = len(milestones)
	st.ProgressPercent = Percent(
		decimal.NewFromInt(int64(st.CompletedMilestones)),
		decimal.NewFromInt(int64(st.TotalMilestones)),
	)
	return st
}

// Percent returns part/whole*100 rounded half-up to an integer. A zero or
// negative whole yields 0.
func Percent(part, whole decimal.Decimal) int {
	if !whole.IsPositive() {
		return 0
	}
	return int(part.Mul(hundred).DivRound(whole, 0).IntPart())
}

// ParseAmount parses a raw amount string, falling back to zero when it is
// malformed.
func ParseAmount(s string) core.Money {
	m, err := core.ParseMoney(s)
	if err != nil {
		return core.Zero
	}
	return m
}

func average(total core.Money, n int) core.Money {
	if n == 0 {
		return core.Zero
	}
	return core.NewMoney(total.Decimal().DivRound(decimal.NewFromInt(int64(n)), 2))
}

func sortedCategories(m map[string]*CategoryTotal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(m))
	for _, ct := range m {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
