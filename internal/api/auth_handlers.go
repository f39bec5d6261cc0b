package api

import (
	"fmt"
	"net/http"

	"github.com/vytor/sentenceflash/internal/errors"
	"github.com/vytor/sentenceflash/internal/logger"
)

func (s *Server) handleAuthState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"state": s.Gate.State()})
}

// handleSignIn sends the browser to the identity provider.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	url, _ := s.Gate.SignInURL()
	if url == "" {
		writeJSON(w, r, http.StatusOK, map[string]any{"state": s.Gate.State()})
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.Gate.SignOut(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]any{"state": s.Gate.State()})
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		log.Warn("identity provider returned error: %s", errParam)
		s.Gate.Require()
		handleError(w, r, errors.NewNotAuthorizedError(fmt.Errorf("identity provider: %s", errParam)))
		return
	}
	if err := s.Gate.RequestSignIn(r.Context(), q.Get("state"), q.Get("code")); err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"state": s.Gate.State()})
}
