package api

import (
	"net/http"
	"strings"

	"github.com/vytor/sentenceflash/internal/errors"
)

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int) {
	writeJSON(w, r, status, s.Training.Snapshot())
}

func (s *Server) handleTrainingState(w http.ResponseWriter, r *http.Request) {
	s.writeSession(w, r, http.StatusOK)
}

// handleOpen starts a load and answers 202 with the LOADING session. Clients
// poll GET /training for the outcome.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req spreadsheetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	id := strings.TrimSpace(req.SpreadsheetID)
	if id == "" {
		handleError(w, r, errors.NewValidationError("spreadsheetId", "is required"))
		return
	}

	s.Training.Open(r.Context(), id)
	s.writeSession(w, r, http.StatusAccepted)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.Training.Advance()
	s.writeSession(w, r, http.StatusOK)
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	s.Training.Retreat()
	s.writeSession(w, r, http.StatusOK)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.Training.ToggleVisibility()
	s.writeSession(w, r, http.StatusOK)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.Training.Clear()
	s.writeSession(w, r, http.StatusOK)
}
