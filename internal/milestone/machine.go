// Package milestone implements the milestone status lifecycle
// pending -> in-progress -> completed.
package milestone

import "nivasa/internal/core"

// Effects describes what a transition changed besides the status.
type Effects struct {
	From          core.MilestoneStatus
	To            core.MilestoneStatus
	CompletedDate bool // CompletedDate was stamped
}

// Next returns the status that follows s. The second result is false for
// a terminal or unknown status.
func Next(s core.MilestoneStatus) (core.MilestoneStatus, bool) {
	switch s {
	case core.MilestonePending:
		return core.MilestoneInProgress, true
	case core.MilestoneInProgress:
		return core.MilestoneCompleted, true
	case core.MilestoneCompleted:
		return "", false
	}
	return "", false
}

// CanAdvance reports whether m has a next status.
func CanAdvance(m core.Milestone) bool {
	_, ok := Next(m.Status)
	return ok
}

// Action is the verb offered for moving a milestone in status s forward.
func Action(s core.MilestoneStatus) string {
	switch s {
	case core.MilestonePending:
		return "Start"
	case core.MilestoneInProgress:
		return "Complete"
	case core.MilestoneCompleted:
		return ""
	}
	return ""
}

// Advance moves m one step forward and returns the updated copy. Entering
// completed stamps CompletedDate with today. The input is not modified.
func Advance(m core.Milestone, today core.Date) (core.Milestone, Effects, error) {
	next, ok := Next(m.Status)
	if !ok {
		return m, Effects{}, &core.InvalidTransitionError{From: m.Status}
	}
	return apply(m, next, today), effects(m.Status, next), nil
}

// Transition moves m to target, which must be exactly the next status.
func Transition(m core.Milestone, target core.MilestoneStatus, today core.Date) (core.Milestone, Effects, error) {
	next, ok := Next(m.Status)
	if !ok || target != next {
		return m, Effects{}, &core.InvalidTransitionError{From: m.Status, To: target}
	}
	return apply(m, next, today), effects(m.Status, next), nil
}

func apply(m core.Milestone, next core.MilestoneStatus, today core.Date) core.Milestone {
	out := m
	out.Status = next
	if next == core.MilestoneCompleted {
		out.CompletedDate = core.DatePtr(today)
	}
	return out
}

func effects(from, to core.MilestoneStatus) Effects {
	return Effects{From: from, To: to, CompletedDate: to == core.MilestoneCompleted}
}
