package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/mapsdir/internal/core"
	"github.com/JonMunkholm/mapsdir/internal/logging"
	"github.com/go-chi/chi/v5"
)

// maxQueryBody caps the body of PUT /query.
const maxQueryBody = 64 * 1024

// SessionResponse is returned when a session is opened.
type SessionResponse struct {
	ID   string    `json:"id"`
	View core.View `json:"view"`
}

// LoadResultResponse reports one category's load outcome.
type LoadResultResponse struct {
	Category string          `json:"category"`
	Status   core.LoadStatus `json:"status"`
	Records  int             `json:"records"`
	Error    string          `json:"error,omitempty"`
	Code     string          `json:"code,omitempty"`
}

type queryRequest struct {
	Query *string `json:"query"`
}

// handleHealth reports liveness plus a few counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":     "ok",
		"categories": core.Count(),
		"sessions":   s.service.SessionCount(),
	})
}

// handleListCategories returns every category with its load status.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.ListCategories())
}

// handleStatus returns the cache state of every category.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Statuses())
}

// handlePreload loads every category and reports each outcome.
func (s *Server) handlePreload(w http.ResponseWriter, r *http.Request) {
	results := s.service.Preload(r.Context())

	out := make([]LoadResultResponse, len(results))
	for i, res := range results {
		out[i] = toLoadResponse(res.Category, res.Records, res.Err)
	}
	writeJSON(w, r, http.StatusOK, out)
}

// abandoned reports whether the request context ended before the handler
// could answer. An expired deadline is answered by the Timeout middleware;
// a cancelled request gets a 504 here.
func (s *Server) abandoned(w http.ResponseWriter, r *http.Request) bool {
	err := r.Context().Err()
	if err == nil {
		return false
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		s.respondError(w, r, err, http.StatusGatewayTimeout)
	}
	return true
}

// handleRefresh refetches one category.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryID")

	records, err := s.service.Refresh(r.Context(), id)
	if errors.Is(err, core.ErrUnknownCategory) {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	if s.abandoned(w, r) {
		return
	}

	logging.FromContext(r.Context()).Info("category refreshed",
		"category", id,
		"records", len(records),
		"failed", err != nil,
	)
	writeJSON(w, r, http.StatusOK, toLoadResponse(id, records, err))
}

// handleOpenSession creates a session and loads its default category.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	sess := s.service.OpenSession()

	// A load failure is reported in the view.
	_ = sess.Start(r.Context())
	if s.abandoned(w, r) {
		return
	}

	logging.FromContext(r.Context()).Info("session opened",
		"session_id", sess.ID,
		"category", sess.Selection().Category,
	)
	writeJSON(w, r, http.StatusCreated, SessionResponse{ID: sess.ID, View: sess.CurrentView()})
}

// handleCloseSession discards a session.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := s.service.CloseSession(sess.ID); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleView returns the session's current view.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, sessionFrom(r.Context()).CurrentView())
}

// handleSessionCategories lists categories for the session's category picker.
func (s *Server) handleSessionCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, sessionFrom(r.Context()).ListCategories())
}

// handleSelect switches the session's category and waits for its load.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	id := chi.URLParam(r, "categoryID")

	err := sess.Select(r.Context(), id)
	if errors.Is(err, core.ErrUnknownCategory) {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	if s.abandoned(w, r) {
		return
	}

	writeJSON(w, r, http.StatusOK, sess.CurrentView())
}

// handleSetQuery replaces the search text. Body: {"query": "..."}.
func (s *Server) handleSetQuery(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req queryRequest
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), http.StatusBadRequest)
		return
	}
	if req.Query == nil {
		s.respondError(w, r, fmt.Errorf("%w: missing query", errBadRequest), http.StatusBadRequest)
		return
	}

	sess.SetQuery(*req.Query)
	writeJSON(w, r, http.StatusOK, sess.CurrentView())
}

// handleToggleShowAll flips the show-all flag.
func (s *Server) handleToggleShowAll(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.ToggleShowAll()
	writeJSON(w, r, http.StatusOK, sess.CurrentView())
}

func toLoadResponse(category string, records []core.Record, err error) LoadResultResponse {
	resp := LoadResultResponse{
		Category: category,
		Status:   core.StatusLoaded,
		Records:  len(records),
	}
	if err != nil {
		resp.Status = core.StatusFailed
		resp.Error = err.Error()
		resp.Code = core.MapError(err).Code
	}
	return resp
}
