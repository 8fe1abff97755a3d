package http

import (
	"net/http"

	"nivasa/internal/core"
)

type projectRequest struct {
	Name                 string             `json:"name"`
	Location             string             `json:"location"`
	Description          *string            `json:"description"`
	Budget               core.Money         `json:"budget"`
	StartDate            core.Date          `json:"startDate"`
	TargetCompletionDate *core.Date         `json:"targetCompletionDate"`
	ActualCompletionDate *core.Date         `json:"actualCompletionDate"`
	Status               core.ProjectStatus `json:"status"`
}

func (p projectRequest) project() core.Project {
	return core.Project{
		Name:                 sanitizeInput(p.Name),
		Location:             sanitizeInput(p.Location),
		Description:          p.Description,
		Budget:               p.Budget,
		StartDate:            p.StartDate,
		TargetCompletionDate: p.TargetCompletionDate,
		ActualCompletionDate: p.ActualCompletionDate,
		Status:               p.Status,
	}
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.GetProject(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, p)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.svc.CreateProject(r.Context(), currentUser(r), req.project())
	if err != nil {
		writeError(w, r, err)
		return
	}
	Created(w, p)
}

// handleUpdateProject serves both PUT and PATCH as a partial update.
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch core.ProjectPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.svc.UpdateProject(r.Context(), currentUser(r), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, p)
}
