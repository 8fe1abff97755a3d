package dashboard

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"nivasa/internal/core"
)

func expense(amount, category string) core.Expense {
	return core.Expense{Amount: core.MustMoney(amount), Category: category, Vendor: "v", Description: "d", Date: core.NewDate(2024, 10, 15)}
}

func project(budget string) *core.Project {
	return &core.Project{Name: "House", Budget: core.MustMoney(budget), Status: core.ProjectInProgress}
}

func TestComputeHalfBudget(t *testing.T) {
	st := Compute([]core.Expense{expense("2500.00", "Labor"), expense("2500.00", "Labor")}, nil, nil, project("10000.00"))
	if st.BudgetUsedPercent != 50 {
		t.Fatalf("BudgetUsedPercent = %d, want 50", st.BudgetUsedPercent)
	}
	if st.BudgetRemaining.String() != "5000.00" {
		t.Fatalf("BudgetRemaining = %s, want 5000.00", st.BudgetRemaining)
	}
	if st.TotalExpenses.String() != "5000.00" || st.TotalBudget.String() != "10000.00" {
		t.Fatalf("totals = %s / %s", st.TotalExpenses, st.TotalBudget)
	}
	if st.OverBudget {
		t.Fatal("should not be over budget")
	}
}

func TestComputeNoProject(t *testing.T) {
	st := Compute([]core.Expense{expense("12.34", "Materials")}, nil, nil, nil)
	if st.TotalBudget.String() != "0.00" || st.BudgetUsedPercent != 0 {
		t.Fatalf("no project: budget=%s used=%d", st.TotalBudget, st.BudgetUsedPercent)
	}
	if st.BudgetRemaining.String() != "-12.34" || !st.OverBudget {
		t.Fatalf("remaining = %s overBudget=%v", st.BudgetRemaining, st.OverBudget)
	}
}

func TestComputeZeroBudget(t *testing.T) {
	st := Compute([]core.Expense{expense("100", "Labor")}, nil, nil, project("0"))
	if st.BudgetUsedPercent != 0 {
		t.Fatalf("zero budget must give 0%%, got %d", st.BudgetUsedPercent)
	}
}

func TestComputeOverspend(t *testing.T) {
	st := Compute([]core.Expense{expense("150", "Labor")}, nil, nil, project("100"))
	if st.BudgetUsedPercent != 150 {
		t.Fatalf("BudgetUsedPercent = %d, want 150", st.BudgetUsedPercent)
	}
	if st.BudgetRemaining.String() != "-50.00" {
		t.Fatalf("BudgetRemaining = %s", st.BudgetRemaining)
	}
}

func TestComputeEmpty(t *testing.T) {
	st := Compute(nil, nil, nil, nil)
	if st.ProgressPercent != 0 || st.ActiveNotes != 0 || st.TotalExpenses.String() != "0.00" {
		t.Fatalf("empty stats = %+v", st)
	}
	if st.AverageExpense.String() != "0.00" || len(st.ByCategory) != 0 {
		t.Fatalf("empty average/categories = %s %v", st.AverageExpense, st.ByCategory)
	}
}

func TestPercentRoundsHalfUp(t *testing.T) {
	cases := []struct {
		part, whole string
		want        int
	}{
		{"1", "3", 33},
		{"2", "3", 67},
		{"1", "8", 13},  // 12.5
		{"5", "200", 3}, // 2.5
		{"1", "200", 1}, // 0.5
		{"0", "7", 0},
		{"7", "7", 100},
		{"1", "0", 0},
	}
	for _, tc := range cases {
		got := Percent(decimal.RequireFromString(tc.part), decimal.RequireFromString(tc.whole))
		if got != tc.want {
			t.Fatalf("Percent(%s, %s) = %d, want %d", tc.part, tc.whole, got, tc.want)
		}
	}
}

func TestProgress(t *testing.T) {
	ms := []core.Milestone{
		{Status: core.MilestoneCompleted},
		{Status: core.MilestoneInProgress},
		{Status: core.MilestonePending},
	}
	st := Compute(nil, []core.Note{{}, {}}, ms, nil)
	if st.ProgressPercent != 33 || st.CompletedMilestones != 1 {
		t.Fatalf("progress = %d completed = %d", st.ProgressPercent, st.CompletedMilestones)
	}
	if st.InProgressMilestones != 1 || st.PendingMilestones != 1 || st.TotalMilestones != 3 {
		t.Fatalf("status counts = %+v", st)
	}
	if st.ActiveNotes != 2 {
		t.Fatalf("ActiveNotes = %d", st.ActiveNotes)
	}
}

func TestProgressMonotonic(t *testing.T) {
	ms := make([]core.Milestone, 7)
	for i := range ms {
		ms[i].Status = core.MilestonePending
	}
	prev := Compute(nil, nil, ms, nil).ProgressPercent
	if prev != 0 {
		t.Fatalf("all pending progress = %d", prev)
	}
	for i := range ms {
		ms[i].Status = core.MilestoneCompleted
		cur := Compute(nil, nil, ms, nil).ProgressPercent
		if cur < prev {
			t.Fatalf("progress decreased from %d to %d", prev, cur)
		}
		prev = cur
	}
	if prev != 100 {
		t.Fatalf("all completed progress = %d", prev)
	}
}

func TestTotalsExactOverManySmallAmounts(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	var expenses []core.Expense
	var cents int64
	for i := 0; i < 5000; i++ {
		c := r.Int63n(1_000_000) + 1
		cents += c
		expenses = append(expenses, expense(fmt.Sprintf("%d.%02d", c/100, c%100), "Materials"))
	}
	st := Compute(expenses, nil, nil, nil)
	want := core.MoneyFromCents(cents)
	if !st.TotalExpenses.Equal(want) {
		t.Fatalf("total = %s, want %s", st.TotalExpenses, want)
	}
	if st.ExpenseCount != len(expenses) {
		t.Fatalf("ExpenseCount = %d", st.ExpenseCount)
	}
}

func TestByCategory(t *testing.T) {
	st := Compute([]core.Expense{
		expense("10", "Labor"),
		expense("30", "Materials"),
		expense("20", "Labor"),
		expense("30", "Electrical"),
	}, nil, nil, nil)
	want := []CategoryTotal{
		{Category: "Electrical", Amount: core.MustMoney("30"), Count: 1},
		{Category: "Labor", Amount: core.MustMoney("30"), Count: 2},
		{Category: "Materials", Amount: core.MustMoney("30"), Count: 1},
	}
	if len(st.ByCategory) != len(want) {
		t.Fatalf("ByCategory = %+v", st.ByCategory)
	}
	for i := range want {
		got := st.ByCategory[i]
		if got.Category != want[i].Category || !got.Amount.Equal(want[i].Amount) || got.Count != want[i].Count {
			t.Fatalf("ByCategory[%d] = %+v, want %+v", i, got, want[i])
		}
	}
	if st.AverageExpense.String() != "22.50" {
		t.Fatalf("AverageExpense = %s", st.AverageExpense)
	}
}

func TestParseAmountFallback(t *testing.T) {
	if ParseAmount("abc").String() != "0.00" {
		t.Fatal("malformed amount should fall back to zero")
	}
	if ParseAmount("99,9").String() != "99.90" {
		t.Fatal("comma decimal should parse")
	}
}
