package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"nivasa/internal/core"
	"nivasa/internal/dashboard"
)

type tick struct{ t time.Time }

func (c *tick) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newStore() *Store {
	c := &tick{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(WithClock(c.now))
}

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	user := uuid.New()

	if _, err := s.GetProject(ctx, user); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	p, err := s.CreateProject(ctx, core.Project{UserID: user, Name: "House", Budget: core.MustMoney("100")})
	if err != nil || p.ID == uuid.Nil {
		t.Fatalf("create: %+v %v", p, err)
	}
	if _, err := s.CreateProject(ctx, core.Project{UserID: user, Name: "Again"}); !errors.Is(err, core.ErrProjectExists) {
		t.Fatalf("second create should fail, got %v", err)
	}
	p.Name = "Villa"
	upd, err := s.UpdateProject(ctx, p)
	if err != nil || upd.Name != "Villa" || !upd.CreatedAt.Equal(p.CreatedAt) || !upd.UpdatedAt.After(p.UpdatedAt) {
		t.Fatalf("update: %+v %v", upd, err)
	}
}

func TestExpenseOrderingAndIsolation(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	alice, bob := uuid.New(), uuid.New()

	mk := func(user uuid.UUID, desc string, day int) core.Expense {
		e, err := s.CreateExpense(ctx, core.Expense{UserID: user, Description: desc, Amount: core.MustMoney("1"), Date: core.NewDate(2024, 5, day)})
		if err != nil {
			t.Fatal(err)
		}
		return e
	}
	mk(alice, "old", 1)
	mk(alice, "new-a", 9)
	mk(alice, "new-b", 9)
	bobs := mk(bob, "bob", 5)

	list, _ := s.ListExpenses(ctx, alice)
	got := []string{}
	for _, e := range list {
		got = append(got, e.Description)
	}
	want := []string{"new-a", "new-b", "old"}
	if len(got) != len(want) {
		t.Fatalf("list = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("list = %v, want %v", got, want)
		}
	}

	if _, err := s.GetExpense(ctx, alice, bobs.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user read should be not found, got %v", err)
	}
	if err := s.DeleteExpense(ctx, alice, bobs.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user delete should be not found, got %v", err)
	}
	bobs.UserID = alice
	if _, err := s.UpdateExpense(ctx, bobs); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user update should be not found, got %v", err)
	}
}

func TestNotesNewestFirstAndCopied(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	user := uuid.New()
	tags := []string{"a"}
	first, _ := s.CreateNote(ctx, core.Note{UserID: user, Title: "first", Tags: tags})
	s.CreateNote(ctx, core.Note{UserID: user, Title: "second"})
	tags[0] = "mutated"

	list, _ := s.ListNotes(ctx, user)
	if len(list) != 2 || list[0].Title != "second" || list[1].Title != "first" {
		t.Fatalf("notes = %+v", list)
	}
	if list[1].Tags[0] != "a" {
		t.Fatal("store kept a reference to the caller's tags")
	}
	list[1].Tags[0] = "x"
	again, _ := s.GetNote(ctx, user, first.ID)
	if again.Tags[0] != "a" {
		t.Fatal("returned note aliases stored tags")
	}
}

func TestMilestonesOrderThenInsertion(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	user := uuid.New()
	for _, m := range []core.Milestone{
		{Title: "c", Order: 2},
		{Title: "a", Order: 1},
		{Title: "b", Order: 1},
		{Title: "z", Order: 0},
	} {
		m.UserID = user
		m.Status = core.MilestonePending
		if _, err := s.CreateMilestone(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	list, _ := s.ListMilestones(ctx, user)
	got := ""
	for _, m := range list {
		got += m.Title
	}
	if got != "zabc" {
		t.Fatalf("milestone order = %q", got)
	}
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	user := uuid.New()
	c, err := s.Snapshot(ctx, user)
	if err != nil || c.Project != nil || len(c.Expenses) != 0 {
		t.Fatalf("empty snapshot = %+v %v", c, err)
	}
	s.CreateProject(ctx, core.Project{UserID: user, Name: "House"})
	s.CreateExpense(ctx, core.Expense{UserID: user, Amount: core.MustMoney("5"), Date: core.NewDate(2024, 1, 1)})
	c, _ = s.Snapshot(ctx, user)
	if c.Project == nil || len(c.Expenses) != 1 {
		t.Fatalf("snapshot = %+v", c)
	}
}

func TestStatsSnapshots(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	user, other := uuid.New(), uuid.New()
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s.SaveSnapshot(ctx, user, dashboard.Stats{ActiveNotes: i}, at.Add(time.Duration(i)*time.Hour))
	}
	s.SaveSnapshot(ctx, other, dashboard.Stats{}, at)

	got, _ := s.ListSnapshots(ctx, user, 2)
	if len(got) != 2 || got[0].Stats.ActiveNotes != 2 || got[1].Stats.ActiveNotes != 1 {
		t.Fatalf("snapshots = %+v", got)
	}
}
