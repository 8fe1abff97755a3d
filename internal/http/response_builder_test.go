package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"nivasa/internal/core"
	"nivasa/internal/services"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		JSON(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header missing")
	}
	if w.Body.String() != `{"n":1}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestResponseBuilder_Attachment(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Attachment("nivasa-expenses-2024-10-20.csv").Bytes("text/csv", []byte("a,b\n")).Write(w)

	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="nivasa-expenses-2024-10-20.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if w.Header().Get("Content-Length") != "4" {
		t.Errorf("Content-Length = %q", w.Header().Get("Content-Length"))
	}
}

func TestResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(math.Inf(1)).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Status code = %d, want 500", w.Code)
	}
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("NoContent wrote %d %q", w.Code, w.Body.String())
	}
}

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		want  int
		field string
	}{
		{"validation", core.NewValidationError("amount", "must be positive"), http.StatusBadRequest, "amount"},
		{"bad request", badRequest("limit", "bad"), http.StatusBadRequest, "limit"},
		{"not found", core.NewNotFoundError("expense", "x"), http.StatusNotFound, ""},
		{"wrapped not found", fmt.Errorf("get: %w", core.ErrNotFound), http.StatusNotFound, ""},
		{"transition", &core.InvalidTransitionError{From: core.MilestoneCompleted}, http.StatusConflict, ""},
		{"project exists", fmt.Errorf("create project: %w", core.ErrProjectExists), http.StatusConflict, ""},
		{"empty export", &core.EmptyExportError{Filtered: true}, http.StatusUnprocessableEntity, ""},
		{"sheets disabled", services.ErrSheetsDisabled, http.StatusServiceUnavailable, ""},
		{"history unavailable", services.ErrHistoryUnavailable, http.StatusNotImplemented, ""},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, httptest.NewRequest(http.MethodGet, "/api/x", nil), tt.err)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			body := decode[ErrorBody](t, w)
			if body.Field != tt.field {
				t.Errorf("field = %q, want %q", body.Field, tt.field)
			}
			if tt.want == http.StatusInternalServerError && body.Error != "internal server error" {
				t.Errorf("internal error leaked: %q", body.Error)
			}
		})
	}
}
