package filter

import "nivasa/internal/core"

// ExpenseQuery is the finance page filter.
type ExpenseQuery struct {
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
}

// Active reports whether any predicate of q is set.
func (q ExpenseQuery) Active() bool {
	return len(q.predicates()) > 0
}

func (q ExpenseQuery) predicates() []Predicate[core.Expense] {
	var ps []Predicate[core.Expense]
	if p := Contains(q.Search, func(e core.Expense) []string { return []string{e.Description, e.Vendor} }); p != nil {
		ps = append(ps, p)
	}
	if p := Equals(q.Category, func(e core.Expense) string { return e.Category }); p != nil {
		ps = append(ps, p)
	}
	return ps
}

func Expenses(items []core.Expense, q ExpenseQuery) []core.Expense {
	return Apply(items, q.predicates()...)
}

// NoteQuery is the notes page filter. Tag matches by set membership.
type NoteQuery struct {
	Search string `json:"search,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Type   string `json:"type,omitempty"`
}

func Notes(items []core.Note, q NoteQuery) []core.Note {
	var tag Predicate[core.Note]
	if !inactive(q.Tag) {
		tag = func(n core.Note) bool { return n.HasTag(q.Tag) }
	}
	return Apply(items,
		Contains(q.Search, func(n core.Note) []string { return []string{n.Title, n.Content} }),
		tag,
		Equals(q.Type, func(n core.Note) string { return string(n.Type) }),
	)
}

type MilestoneQuery struct {
	Search string `json:"search,omitempty"`
	Status string `json:"status,omitempty"`
}

func Milestones(items []core.Milestone, q MilestoneQuery) []core.Milestone {
	return Apply(items,
		Contains(q.Search, func(m core.Milestone) []string { return []string{m.Title, m.Description} }),
		Equals(q.Status, func(m core.Milestone) string { return string(m.Status) }),
	)
}

// ExpenseCategories lists the distinct categories present, in first
// occurrence order.
func ExpenseCategories(items []core.Expense) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, e := range items {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	return out
}

// NoteTags lists the distinct tags across notes, in first occurrence order.
func NoteTags(items []core.Note) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, n := range items {
		for _, t := range n.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
