package http

import (
	"net/http"

	"nivasa/internal/core"
)

type expenseRequest struct {
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Vendor      string     `json:"vendor"`
	Description string     `json:"description"`
	Date        core.Date  `json:"date"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Defaults   []string `json:"defaults"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListExpenses(r.Context(), currentUser(r), parseExpenseQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, list)
}

func (s *Server) handleExpenseCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.ExpenseCategories(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, categoriesResponse{Categories: cats, Defaults: core.DefaultCategories})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.GetExpense(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, e)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.CreateExpense(r.Context(), currentUser(r), core.Expense{
		Amount:      req.Amount,
		Category:    sanitizeInput(req.Category),
		Vendor:      sanitizeInput(req.Vendor),
		Description: sanitizeInput(req.Description),
		Date:        req.Date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	Created(w, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch core.ExpensePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.UpdateExpense(r.Context(), currentUser(r), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteExpense(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	NoContent(w)
}

// handleExportCSV serves the filtered expenses as a download. Without
// filters the full history is exported.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	payload, err := s.svc.ExportExpensesCSV(r.Context(), currentUser(r), parseExpenseQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().
		Attachment(payload.Filename).
		Bytes(payload.ContentType, payload.Data).
		Write(w)
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.ExportExpensesToSheet(r.Context(), currentUser(r), parseExpenseQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, res)
}
