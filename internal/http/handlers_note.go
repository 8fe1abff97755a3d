package http

import (
	"net/http"

	"nivasa/internal/core"
)

type noteRequest struct {
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Tags      []string      `json:"tags"`
	Type      core.NoteType `json:"type"`
	Completed bool          `json:"completed"`
}

type tagRequest struct {
	Tag string `json:"tag"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.svc.ListNotes(r.Context(), currentUser(r), parseNoteQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, notes)
}

func (s *Server) handleNoteTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.svc.NoteTags(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, tagsResponse{Tags: tags})
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.svc.GetNote(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, n)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.svc.CreateNote(r.Context(), currentUser(r), core.Note{
		Title:     sanitizeInput(req.Title),
		Content:   req.Content,
		Tags:      req.Tags,
		Type:      req.Type,
		Completed: req.Completed,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	Created(w, n)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch core.NotePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.svc.UpdateNote(r.Context(), currentUser(r), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, n)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.DeleteNote(r.Context(), currentUser(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	NoContent(w)
}

func (s *Server) handleAddNoteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req tagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.svc.AddNoteTag(r.Context(), currentUser(r), id, sanitizeInput(req.Tag))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, n)
}

func (s *Server) handleRemoveNoteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.svc.RemoveNoteTag(r.Context(), currentUser(r), id, r.PathValue("tag"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(w, n)
}
