package http

import (
	"net/http"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.DashboardStats(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, st)
}

func (s *Server) handleDashboardHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultHistoryLimit, maxHistoryLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hist, err := s.svc.DashboardHistory(r.Context(), currentUser(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, hist)
}
