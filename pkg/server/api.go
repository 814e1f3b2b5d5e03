package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/toastd/pkg/render"
	"github.com/vango-dev/toastd/pkg/toast"
)

// CreateResponse is the body of a successful POST /api/toasts.
type CreateResponse struct {
	ID    string         `json:"id"`
	Toast toast.Snapshot `json:"toast"`
}

// ListResponse is the body of GET /api/toasts.
type ListResponse struct {
	Toasts []toast.Snapshot `json:"toasts"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.Page(w, render.PageData{
		Title:  s.config.PageTitle,
		Toasts: s.host.List(),
	})
	if err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"toasts":  s.host.Len(),
		"clients": s.hub.len(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{Toasts: s.host.List()})
}

// handleCreate accepts {type, message, title, duration, actionLabel,
// actionID}. duration is in milliseconds; absent selects the per-type
// default and zero or less disables auto-dismiss.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: %v", ErrInvalidBody, err))
		return
	}
	if payload == nil {
		writeError(w, ErrInvalidBody)
		return
	}

	id, err := s.host.ShowPayload(payload)
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := s.host.Get(id)
	if err != nil {
		// Already gone; only possible with a zero exit delay and duration.
		snap = toast.Snapshot{ID: id, State: toast.StateClosed}
	}

	w.Header().Set("Location", "/api/toasts/"+id)
	writeJSON(w, http.StatusCreated, CreateResponse{ID: id, Toast: snap})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.host.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.apply(w, s.host.Dismiss(chi.URLParam(r, "id")))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	s.apply(w, s.host.Action(chi.URLParam(r, "id")))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	s.apply(w, s.host.Remove(chi.URLParam(r, "id")))
}

func (s *Server) apply(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
