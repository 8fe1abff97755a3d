package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	ProjectStatus   string
	NoteType        string
	MilestoneStatus string
)

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on_hold"
)

const (
	NoteText      NoteType = "text"
	NoteChecklist NoteType = "checklist"
	NoteLink      NoteType = "link"
)

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in-progress"
	MilestoneCompleted  MilestoneStatus = "completed"
)

// DefaultCategories is the conventional expense category set offered by the
// expense form. Category is free text and is not restricted to these.
var DefaultCategories = []string{"Foundation", "Plumbing", "Electrical", "Materials", "Labor"}

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

func (s ProjectStatus) Label() string {
	switch s {
	case ProjectPlanning:
		return "Planning"
	case ProjectInProgress:
		return "In progress"
	case ProjectCompleted:
		return "Completed"
	case ProjectOnHold:
		return "On hold"
	}
	return string(s)
}

func (t NoteType) Valid() bool {
	switch t {
	case NoteText, NoteChecklist, NoteLink:
		return true
	}
	return false
}

func (t NoteType) Label() string {
	switch t {
	case NoteText:
		return "Text"
	case NoteChecklist:
		return "Checklist"
	case NoteLink:
		return "Link"
	}
	return string(t)
}

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted:
		return true
	}
	return false
}

func (s MilestoneStatus) Label() string {
	switch s {
	case MilestonePending:
		return "Pending"
	case MilestoneInProgress:
		return "In progress"
	case MilestoneCompleted:
		return "Completed"
	}
	return string(s)
}

type (
	Project struct {
		ID                   uuid.UUID     `json:"id"`
		UserID               uuid.UUID     `json:"userId"`
		Name                 string        `json:"name"`
		Location             string        `json:"location"`
		Description          *string       `json:"description"`
		Budget               Money         `json:"budget"`
		StartDate            Date          `json:"startDate"`
		TargetCompletionDate *Date         `json:"targetCompletionDate"`
		ActualCompletionDate *Date         `json:"actualCompletionDate"`
		Status               ProjectStatus `json:"status"`
		CreatedAt            time.Time     `json:"createdAt"`
		UpdatedAt            time.Time     `json:"updatedAt"`
	}

	Expense struct {
		ID          uuid.UUID  `json:"id"`
		UserID      uuid.UUID  `json:"userId"`
		ProjectID   *uuid.UUID `json:"projectId"`
		Amount      Money      `json:"amount"`
		Category    string     `json:"category"`
		Vendor      string     `json:"vendor"`
		Description string     `json:"description"`
		Date        Date       `json:"date"`
		CreatedAt   time.Time  `json:"createdAt"`
	}

	Note struct {
		ID        uuid.UUID  `json:"id"`
		UserID    uuid.UUID  `json:"userId"`
		ProjectID *uuid.UUID `json:"projectId"`
		Title     string     `json:"title"`
		Content   string     `json:"content"`
		Tags      []string   `json:"tags"`
		Type      NoteType   `json:"type"`
		Completed bool       `json:"completed"`
		CreatedAt time.Time  `json:"createdAt"`
		UpdatedAt time.Time  `json:"updatedAt"`
	}

	Milestone struct {
		ID            uuid.UUID       `json:"id"`
		UserID        uuid.UUID       `json:"userId"`
		ProjectID     *uuid.UUID      `json:"projectId"`
		Title         string          `json:"title"`
		Description   string          `json:"description"`
		Status        MilestoneStatus `json:"status"`
		ExpectedDate  *Date           `json:"expectedDate"`
		CompletedDate *Date           `json:"completedDate"`
		Order         int             `json:"order"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
	}
)

func (p Project) Validate() error {
	if err := requireText("name", p.Name, maxTitleLen); err != nil {
		return err
	}
	if err := requireText("location", p.Location, maxTitleLen); err != nil {
		return err
	}
	if p.Description != nil && len(*p.Description) > maxDescriptionLen {
		return NewValidationError("description", "too long (max 500 characters)")
	}
	if p.Budget.IsNegative() {
		return NewValidationError("budget", "must not be negative")
	}
	if err := p.StartDate.Validate(); err != nil {
		return NewValidationError("startDate", err.Error())
	}
	if p.TargetCompletionDate != nil && p.TargetCompletionDate.Before(p.StartDate) {
		return NewValidationError("targetCompletionDate", "must not be before start date")
	}
	if !p.Status.Valid() {
		return NewValidationError("status", "unknown project status "+string(p.Status))
	}
	return nil
}

func (e Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return NewValidationError("amount", ErrInvalidAmount.Error())
	}
	if err := requireText("category", e.Category, maxTitleLen); err != nil {
		return err
	}
	if err := requireText("vendor", e.Vendor, maxTitleLen); err != nil {
		return err
	}
	if err := requireText("description", e.Description, maxDescriptionLen); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return NewValidationError("date", err.Error())
	}
	return nil
}

func (n Note) Validate() error {
	if err := requireText("title", n.Title, maxTitleLen); err != nil {
		return err
	}
	if !n.Type.Valid() {
		return NewValidationError("type", "unknown note type "+string(n.Type))
	}
	return nil
}

func (m Milestone) Validate() error {
	if err := requireText("title", m.Title, maxTitleLen); err != nil {
		return err
	}
	if len(m.Description) > maxDescriptionLen {
		return NewValidationError("description", "too long (max 500 characters)")
	}
	if !m.Status.Valid() {
		return NewValidationError("status", "unknown milestone status "+string(m.Status))
	}
	if m.CompletedDate != nil && m.Status != MilestoneCompleted {
		return NewValidationError("completedDate", "only completed milestones carry a completion date")
	}
	return nil
}

// HasTag reports whether tag is present on the note.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends tag unless it is blank or already present.
// It reports whether the tag set changed.
func (n *Note) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || n.HasTag(tag) {
		return false
	}
	n.Tags = append(n.Tags[:len(n.Tags):len(n.Tags)], tag)
	return true
}

// RemoveTag drops tag, keeping the order of the rest.
func (n *Note) RemoveTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	out := n.Tags[:0:0]
	removed := false
	for _, t := range n.Tags {
		if t == tag {
			removed = true
			continue
		}
		out = append(out, t)
	}
	n.Tags = out
	return removed
}

// NormalizeTags trims, drops blanks and removes duplicates while
// preserving first-occurrence order.
func NormalizeTags(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func requireText(field, value string, limit int) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "is required")
	}
	if len(value) > limit {
		return NewValidationError(field, "too long")
	}
	return nil
}
