package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/sentenceflash/internal/errors"
	"github.com/vytor/sentenceflash/internal/logger"
)

type spreadsheetRequest struct {
	SpreadsheetID string `json:"spreadsheetId"`
}

func (s *Server) handleListSpreadsheets(w http.ResponseWriter, r *http.Request) {
	refs := s.Spreadsheets.List(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]any{"spreadsheets": refs})
}

func (s *Server) handleRegisterSpreadsheet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

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

	ref, err := s.Training.Register(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("registered spreadsheet %s", ref.ID)
	writeJSON(w, r, http.StatusCreated, ref)
}

func (s *Server) handleDeleteSpreadsheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Spreadsheets.Delete(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
