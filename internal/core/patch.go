package core

// Partial updates. A nil field leaves the stored value untouched.

type ProjectPatch struct {
	Name                 *string        `json:"name"`
	Location             *string        `json:"location"`
	Description          *string        `json:"description"`
	Budget               *Money         `json:"budget"`
	StartDate            *Date          `json:"startDate"`
	TargetCompletionDate *Date          `json:"targetCompletionDate"`
	ActualCompletionDate *Date          `json:"actualCompletionDate"`
	Status               *ProjectStatus `json:"status"`
}

func (p ProjectPatch) Apply(dst Project) Project {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Location != nil {
		dst.Location = *p.Location
	}
	if p.Description != nil {
		d := *p.Description
		dst.Description = &d
	}
	if p.Budget != nil {
		dst.Budget = *p.Budget
	}
	if p.StartDate != nil {
		dst.StartDate = *p.StartDate
	}
	if p.TargetCompletionDate != nil {
		dst.TargetCompletionDate = DatePtr(*p.TargetCompletionDate)
	}
	if p.ActualCompletionDate != nil {
		dst.ActualCompletionDate = DatePtr(*p.ActualCompletionDate)
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	return dst
}

type ExpensePatch struct {
	Amount      *Money  `json:"amount"`
	Category    *string `json:"category"`
	Vendor      *string `json:"vendor"`
	Description *string `json:"description"`
	Date        *Date   `json:"date"`
}

func (p ExpensePatch) Apply(dst Expense) Expense {
	if p.Amount != nil {
		dst.Amount = *p.Amount
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Vendor != nil {
		dst.Vendor = *p.Vendor
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Date != nil {
		dst.Date = *p.Date
	}
	return dst
}

type NotePatch struct {
	Title     *string   `json:"title"`
	Content   *string   `json:"content"`
	Tags      *[]string `json:"tags"`
	Type      *NoteType `json:"type"`
	Completed *bool     `json:"completed"`
}

func (p NotePatch) Apply(dst Note) Note {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Content != nil {
		dst.Content = *p.Content
	}
	if p.Tags != nil {
		dst.Tags = NormalizeTags(*p.Tags)
	}
	if p.Type != nil {
		dst.Type = *p.Type
	}
	if p.Completed != nil {
		dst.Completed = *p.Completed
	}
	return dst
}

// MilestonePatch carries the editable milestone fields. Status is accepted
// on the wire but is routed through the state machine by the service.
type MilestonePatch struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Status       *MilestoneStatus `json:"status"`
	ExpectedDate *Date            `json:"expectedDate"`
	Order        *int             `json:"order"`
}

// Apply copies every field except Status.
func (p MilestonePatch) Apply(dst Milestone) Milestone {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.ExpectedDate != nil {
		dst.ExpectedDate = DatePtr(*p.ExpectedDate)
	}
	if p.Order != nil {
		dst.Order = *p.Order
	}
	return dst
}
