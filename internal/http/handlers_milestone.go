package http

import (
	"net/http"

	"nivasa/internal/core"
)

// milestoneRequest has no status: new milestones always start pending.
type milestoneRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ExpectedDate *core.Date `json:"expectedDate"`
	Order        int        `json:"order"`
}

type transitionRequest struct {
	TargetStatus core.MilestoneStatus `json:"targetStatus"`
}

func (s *Server) handleListMilestones(w http.ResponseWriter, r *http.Request) {
	ms, err := s.svc.ListMilestones(r.Context(), currentUser(r), parseMilestoneQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, ms)
}

func (s *Server) handleGetMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.svc.GetMilestone(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, m)
}

func (s *Server) handleCreateMilestone(w http.ResponseWriter, r *http.Request) {
	var req milestoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.svc.CreateMilestone(r.Context(), currentUser(r), core.Milestone{
		Title:        sanitizeInput(req.Title),
		Description:  req.Description,
		ExpectedDate: req.ExpectedDate,
		Order:        req.Order,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	Created(w, m)
}

func (s *Server) handleUpdateMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch core.MilestonePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.svc.UpdateMilestone(r.Context(), currentUser(r), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, m)
}

func (s *Server) handleDeleteMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteMilestone(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	NoContent(w)
}

func (s *Server) handleAdvanceMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.svc.AdvanceMilestone(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, m)
}

func (s *Server) handleTransitionMilestone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.svc.TransitionMilestone(r.Context(), currentUser(r), id, req.TargetStatus)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, m)
}
