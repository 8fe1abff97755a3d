// Package http exposes the tracker as a JSON API.
//
// This file implements utilities for parsing and validating request data:
// JSON bodies, path identifiers and query filters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"nivasa/internal/core"
	"nivasa/internal/filter"
)

const (
	maxBodyBytes        = 1 << 20
	defaultHistoryLimit = 30
	maxHistoryLimit     = 365
)

// errBadRequest marks malformed input that did not reach domain validation.
type errBadRequest struct {
	field string
	msg   string
}

func (e *errBadRequest) Error() string { return e.msg }

func badRequest(field, format string, args ...any) error {
	return &errBadRequest{field: field, msg: fmt.Sprintf(format, args...)}
}

// decodeJSON reads a single JSON object into dst. Unknown fields and
// trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("", "request body is empty")
		case errors.As(err, &maxErr):
			return badRequest("", "request body exceeds %d bytes", maxErr.Limit)
		case errors.As(err, &syntaxErr):
			return badRequest("", "malformed JSON at offset %d", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			return badRequest(typeErr.Field, "%s must be a %s", typeErr.Field, typeErr.Type)
		case errors.Is(err, core.ErrInvalidAmount):
			return badRequest("amount", "invalid amount")
		case errors.Is(err, core.ErrInvalidDate):
			return badRequest("", "invalid date: use YYYY-MM-DD")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return badRequest(field, "unknown field %q", field)
		default:
			return badRequest("", "invalid request body: %v", err)
		}
	}
	if dec.More() {
		return badRequest("", "request body must contain a single JSON object")
	}
	return nil
}

// pathID parses the {name} path wildcard as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequest(name, "invalid %s %q", name, raw)
	}
	return id, nil
}

func queryValue(r *http.Request, key string) string {
	return sanitizeInput(r.URL.Query().Get(key))
}

func parseExpenseQuery(r *http.Request) filter.ExpenseQuery {
	return filter.ExpenseQuery{
		Search:   queryValue(r, "search"),
		Category: queryValue(r, "category"),
	}
}

func parseNoteQuery(r *http.Request) filter.NoteQuery {
	return filter.NoteQuery{
		Search: queryValue(r, "search"),
		Tag:    queryValue(r, "tag"),
		Type:   queryValue(r, "type"),
	}
}

func parseMilestoneQuery(r *http.Request) filter.MilestoneQuery {
	return filter.MilestoneQuery{
		Search: queryValue(r, "search"),
		Status: queryValue(r, "status"),
	}
}

// parseLimit reads ?limit=, defaulting when absent and clamping to max.
func parseLimit(r *http.Request, def, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, badRequest("limit", "limit must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
