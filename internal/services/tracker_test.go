package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"nivasa/internal/amqp"
	"nivasa/internal/cache"
	"nivasa/internal/core"
	"nivasa/internal/dashboard"
	"nivasa/internal/filter"
	sheetsmem "nivasa/internal/sheets/memory"
	"nivasa/internal/store"
	"nivasa/internal/store/memory"
)

var fixedNow = time.Date(2024, 10, 20, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.EntityChangedMessage
	err  error
}

func (p *recordingPublisher) PublishEntityChanged(_ context.Context, msg *amqp.EntityChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

func (p *recordingPublisher) last() *amqp.EntityChangedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.msgs) == 0 {
		return nil
	}
	return p.msgs[len(p.msgs)-1]
}

type fixture struct {
	svc   *TrackerService
	pub   *recordingPublisher
	sink  *sheetsmem.Sink
	stats *cache.LRUCache[uuid.UUID, dashboard.Stats]
	user  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		pub:   &recordingPublisher{},
		sink:  sheetsmem.New(),
		stats: cache.NewLRUCache[uuid.UUID, dashboard.Stats](8, time.Hour),
		user:  uuid.New(),
	}
	f.svc = NewTrackerService(memory.New(),
		WithPublisher(f.pub),
		WithStatsCache(f.stats),
		WithExporter(f.sink),
		WithClock(func() time.Time { return fixedNow }))
	return f
}

func (f *fixture) project(t *testing.T, budget string) core.Project {
	t.Helper()
	p, err := f.svc.CreateProject(context.Background(), f.user, core.Project{
		Name:      "House",
		Location:  "Pune",
		Budget:    core.MustMoney(budget),
		StartDate: core.NewDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p
}

func (f *fixture) expense(t *testing.T, amount, category, desc string, day int) core.Expense {
	t.Helper()
	e, err := f.svc.CreateExpense(context.Background(), f.user, core.Expense{
		Amount:      core.MustMoney(amount),
		Category:    category,
		Vendor:      "ABC",
		Description: desc,
		Date:        core.NewDate(2024, 10, day),
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	return e
}

func TestDashboardEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.project(t, "10000.00")
	f.expense(t, "2500.00", "Materials", "Cement", 1)
	f.expense(t, "2500.00", "Labor", "Crew", 2)

	st, err := f.svc.DashboardStats(ctx, f.user)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if st.BudgetUsedPercent != 50 || st.BudgetRemaining.String() != "5000.00" || st.TotalExpenses.String() != "5000.00" {
		t.Fatalf("stats = %+v", st)
	}
	if _, ok := f.stats.Get(f.user); !ok {
		t.Fatal("stats should be cached")
	}

	f.expense(t, "1000.00", "Labor", "Overtime", 3)
	if _, ok := f.stats.Get(f.user); ok {
		t.Fatal("mutation must invalidate the cached stats")
	}
	st, _ = f.svc.DashboardStats(ctx, f.user)
	if st.BudgetUsedPercent != 60 || st.ExpenseCount != 3 {
		t.Fatalf("stats after insert = %+v", st)
	}
}

func TestProjectSetup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.GetProject(ctx, f.user); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	p := f.project(t, "500")
	if p.Status != core.ProjectPlanning || p.UserID != f.user {
		t.Fatalf("project = %+v", p)
	}
	if _, err := f.svc.CreateProject(ctx, f.user, p); !errors.Is(err, core.ErrProjectExists) {
		t.Fatalf("second create: %v", err)
	}

	status := core.ProjectInProgress
	neg := core.MustMoney("-1")
	if _, err := f.svc.UpdateProject(ctx, f.user, core.ProjectPatch{Budget: &neg}); err == nil {
		t.Fatal("negative budget accepted")
	}
	upd, err := f.svc.UpdateProject(ctx, f.user, core.ProjectPatch{Status: &status})
	if err != nil || upd.Status != status || upd.Name != "House" {
		t.Fatalf("UpdateProject = %+v, %v", upd, err)
	}
	if m := f.pub.last(); m == nil || m.Entity != "project" || m.Action != amqp.ActionUpdated {
		t.Fatalf("last event = %+v", m)
	}
}

func TestExpenses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.project(t, "1000")
	cement := f.expense(t, "120.00", "Materials", "Cement bags", 15)
	f.expense(t, "80.25", "Labor", "Crew day", 16)
	f.expense(t, "10.00", "Materials", "Sand", 14)

	if cement.ProjectID == nil || *cement.ProjectID != p.ID {
		t.Fatalf("expense not linked to project: %+v", cement.ProjectID)
	}

	list, err := f.svc.ListExpenses(ctx, f.user, filter.ExpenseQuery{Category: "Materials"})
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if list.Count != 2 || list.Total.String() != "130.00" || list.Average.String() != "65.00" {
		t.Fatalf("list = %+v", list)
	}
	if list.Items[0].Description != "Cement bags" {
		t.Fatalf("order = %+v", list.Items)
	}

	cats, _ := f.svc.ExpenseCategories(ctx, f.user)
	if strings.Join(cats, ",") != "Labor,Materials" {
		t.Fatalf("categories = %v", cats)
	}

	vendor := "XYZ"
	upd, err := f.svc.UpdateExpense(ctx, f.user, cement.ID, core.ExpensePatch{Vendor: &vendor})
	if err != nil || upd.Vendor != "XYZ" || upd.Amount.String() != "120.00" {
		t.Fatalf("UpdateExpense = %+v, %v", upd, err)
	}
	zero := core.MustMoney("0")
	var ve *core.ValidationError
	if _, err := f.svc.UpdateExpense(ctx, f.user, cement.ID, core.ExpensePatch{Amount: &zero}); !errors.As(err, &ve) || ve.Field != "amount" {
		t.Fatalf("zero amount: %v", err)
	}

	if err := f.svc.DeleteExpense(ctx, f.user, cement.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if m := f.pub.last(); m.Action != amqp.ActionDeleted || m.EntityID != cement.ID {
		t.Fatalf("last event = %+v", m)
	}
	if _, err := f.svc.GetExpense(ctx, f.user, cement.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleted expense still readable: %v", err)
	}
	if err := f.svc.DeleteExpense(ctx, uuid.New(), cement.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete: %v", err)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	f.expense(t, "5", "Labor", "Tea", 1)
	if len(f.pub.msgs) != 1 {
		t.Fatalf("publish attempts = %d", len(f.pub.msgs))
	}
}

func TestExports(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.ExportExpensesCSV(ctx, f.user, filter.ExpenseQuery{}); !errors.Is(err, core.ErrEmptyExport) {
		t.Fatalf("empty export: %v", err)
	}
	f.expense(t, "120", "Materials", `Tile, "premium"`, 15)
	f.expense(t, "30", "Labor", "Crew", 14)

	payload, err := f.svc.ExportExpensesCSV(ctx, f.user, filter.ExpenseQuery{})
	if err != nil {
		t.Fatalf("ExportExpensesCSV: %v", err)
	}
	if payload.Filename != "nivasa-expenses-2024-10-20.csv" {
		t.Fatalf("filename = %s", payload.Filename)
	}
	if !strings.Contains(string(payload.Data), `2024-10-15,"Tile, ""premium""",Materials,ABC,120.00`) {
		t.Fatalf("csv = %s", payload.Data)
	}

	filtered, err := f.svc.ExportExpensesCSV(ctx, f.user, filter.ExpenseQuery{Search: "crew"})
	if err != nil || filtered.Filename != "nivasa-expenses-filtered-2024-10-20.csv" {
		t.Fatalf("filtered export = %s, %v", filtered.Filename, err)
	}
	var empty *core.EmptyExportError
	if _, err := f.svc.ExportExpensesCSV(ctx, f.user, filter.ExpenseQuery{Search: "nothing"}); !errors.As(err, &empty) || !empty.Filtered {
		t.Fatalf("filtered empty export: %v", err)
	}

	res, err := f.svc.ExportExpensesToSheet(ctx, f.user, filter.ExpenseQuery{Category: "Labor"})
	if err != nil || res.Rows != 1 {
		t.Fatalf("ExportExpensesToSheet = %+v, %v", res, err)
	}
	if rows := f.sink.Rows(); len(rows) != 2 || rows[1][1] != "Crew" {
		t.Fatalf("sink rows = %v", rows)
	}

	noSink := NewTrackerService(memory.New())
	if _, err := noSink.ExportExpensesToSheet(ctx, f.user, filter.ExpenseQuery{}); !errors.Is(err, ErrSheetsDisabled) {
		t.Fatalf("expected ErrSheetsDisabled, got %v", err)
	}
}

func TestNotes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	n, err := f.svc.CreateNote(ctx, f.user, core.Note{Title: "Wiring", Content: "Check earth", Tags: []string{"elec", " elec ", ""}})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if n.Type != core.NoteText || len(n.Tags) != 1 {
		t.Fatalf("note = %+v", n)
	}
	if _, err := f.svc.CreateNote(ctx, f.user, core.Note{Title: "Tiles", Type: core.NoteChecklist}); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	n, err = f.svc.AddNoteTag(ctx, f.user, n.ID, "urgent")
	if err != nil || strings.Join(n.Tags, ",") != "elec,urgent" {
		t.Fatalf("AddNoteTag = %v, %v", n.Tags, err)
	}
	if again, err := f.svc.AddNoteTag(ctx, f.user, n.ID, "urgent"); err != nil || len(again.Tags) != 2 {
		t.Fatalf("duplicate tag: %v, %v", again.Tags, err)
	}
	if _, err := f.svc.AddNoteTag(ctx, f.user, n.ID, "  "); err == nil {
		t.Fatal("blank tag accepted")
	}

	byTag, _ := f.svc.ListNotes(ctx, f.user, filter.NoteQuery{Tag: "urgent"})
	if len(byTag) != 1 || byTag[0].ID != n.ID {
		t.Fatalf("tag filter = %+v", byTag)
	}
	none, _ := f.svc.ListNotes(ctx, f.user, filter.NoteQuery{Tag: "absent"})
	if len(none) != 0 {
		t.Fatalf("absent tag matched %+v", none)
	}
	tags, _ := f.svc.NoteTags(ctx, f.user)
	if strings.Join(tags, ",") != "elec,urgent" {
		t.Fatalf("tags = %v", tags)
	}

	n, err = f.svc.RemoveNoteTag(ctx, f.user, n.ID, "elec")
	if err != nil || strings.Join(n.Tags, ",") != "urgent" {
		t.Fatalf("RemoveNoteTag = %v, %v", n.Tags, err)
	}
	done := true
	n, err = f.svc.UpdateNote(ctx, f.user, n.ID, core.NotePatch{Completed: &done})
	if err != nil || !n.Completed {
		t.Fatalf("UpdateNote = %+v, %v", n, err)
	}
	if err := f.svc.DeleteNote(ctx, f.user, n.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	st, _ := f.svc.DashboardStats(ctx, f.user)
	if st.ActiveNotes != 1 {
		t.Fatalf("ActiveNotes = %d", st.ActiveNotes)
	}
}

func TestMilestoneGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	done := core.DatePtr(core.NewDate(2020, 1, 1))
	m, err := f.svc.CreateMilestone(ctx, f.user, core.Milestone{Title: "Slab", Status: core.MilestoneCompleted, CompletedDate: done, Order: 1})
	if err != nil {
		t.Fatalf("CreateMilestone: %v", err)
	}
	if m.Status != core.MilestonePending || m.CompletedDate != nil {
		t.Fatalf("create must force pending: %+v", m)
	}

	completed := core.MilestoneCompleted
	var ite *core.InvalidTransitionError
	if _, err := f.svc.UpdateMilestone(ctx, f.user, m.ID, core.MilestonePatch{Status: &completed}); !errors.As(err, &ite) {
		t.Fatalf("skip to completed: %v", err)
	}

	title := "Ground slab"
	inProgress := core.MilestoneInProgress
	m, err = f.svc.UpdateMilestone(ctx, f.user, m.ID, core.MilestonePatch{Title: &title, Status: &inProgress})
	if err != nil || m.Status != core.MilestoneInProgress || m.Title != title {
		t.Fatalf("UpdateMilestone = %+v, %v", m, err)
	}
	if ev := f.pub.last(); ev.Action != amqp.ActionTransition {
		t.Fatalf("event action = %s", ev.Action)
	}

	same := core.MilestoneInProgress
	if _, err := f.svc.UpdateMilestone(ctx, f.user, m.ID, core.MilestonePatch{Status: &same}); err != nil {
		t.Fatalf("unchanged status should be accepted: %v", err)
	}

	m, err = f.svc.AdvanceMilestone(ctx, f.user, m.ID)
	if err != nil || m.Status != core.MilestoneCompleted || m.CompletedDate == nil || m.CompletedDate.String() != "2024-10-20" {
		t.Fatalf("AdvanceMilestone = %+v, %v", m, err)
	}
	if _, err := f.svc.AdvanceMilestone(ctx, f.user, m.ID); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("advance completed: %v", err)
	}
	pending := core.MilestonePending
	if _, err := f.svc.UpdateMilestone(ctx, f.user, m.ID, core.MilestonePatch{Status: &pending}); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("regression accepted: %v", err)
	}
}

func TestTransitionMilestone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m, _ := f.svc.CreateMilestone(ctx, f.user, core.Milestone{Title: "Roof"})

	if _, err := f.svc.TransitionMilestone(ctx, f.user, m.ID, "bogus"); err == nil {
		t.Fatal("unknown status accepted")
	}
	if _, err := f.svc.TransitionMilestone(ctx, f.user, m.ID, core.MilestoneCompleted); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("pending -> completed: %v", err)
	}
	m, err := f.svc.TransitionMilestone(ctx, f.user, m.ID, core.MilestoneInProgress)
	if err != nil || m.Status != core.MilestoneInProgress || m.CompletedDate != nil {
		t.Fatalf("TransitionMilestone = %+v, %v", m, err)
	}
	if _, err := f.svc.TransitionMilestone(ctx, uuid.New(), m.ID, core.MilestoneCompleted); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign transition: %v", err)
	}

	list, _ := f.svc.ListMilestones(ctx, f.user, filter.MilestoneQuery{Status: string(core.MilestoneInProgress)})
	if len(list) != 1 {
		t.Fatalf("status filter = %+v", list)
	}
	st, _ := f.svc.DashboardStats(ctx, f.user)
	if st.InProgressMilestones != 1 || st.ProgressPercent != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

// plainStore hides the memory store's Snapshotter so the concurrent fetch
// path is exercised.
type plainStore struct{ store.Store }

func TestStatsWithoutSnapshotter(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	user := uuid.New()
	svc := NewTrackerService(plainStore{mem})

	st, err := svc.DashboardStats(ctx, user)
	if err != nil || st.TotalBudget.String() != "0.00" {
		t.Fatalf("empty stats = %+v, %v", st, err)
	}
	svc.CreateProject(ctx, user, core.Project{Name: "H", Location: "L", Budget: core.MustMoney("200"), StartDate: core.NewDate(2024, 1, 1)})
	svc.CreateExpense(ctx, user, core.Expense{Amount: core.MustMoney("50"), Category: "c", Vendor: "v", Description: "d", Date: core.NewDate(2024, 2, 1)})
	st, err = svc.DashboardStats(ctx, user)
	if err != nil || st.BudgetUsedPercent != 25 {
		t.Fatalf("stats = %+v, %v", st, err)
	}

	if _, err := svc.DashboardHistory(ctx, user, 5); !errors.Is(err, ErrHistoryUnavailable) {
		t.Fatalf("history on plain store: %v", err)
	}
}

func TestRecordSnapshotAndHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.project(t, "100")
	f.expense(t, "40", "Labor", "Crew", 1)

	if _, err := f.svc.RecordSnapshot(ctx, f.user); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}
	hist, err := f.svc.DashboardHistory(ctx, f.user, 10)
	if err != nil || len(hist) != 1 || hist[0].Stats.BudgetUsedPercent != 40 || !hist[0].ComputedAt.Equal(fixedNow) {
		t.Fatalf("history = %+v, %v", hist, err)
	}
}
