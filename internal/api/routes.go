package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/spreadsheets", func(r chi.Router) {
		r.Get("/", s.handleListSpreadsheets)
		r.Post("/", s.handleRegisterSpreadsheet)
		r.Delete("/{id}", s.handleDeleteSpreadsheet)
	})

	r.Route("/training", func(r chi.Router) {
		r.Get("/", s.handleTrainingState)
		r.Post("/open", s.handleOpen)
		r.Post("/next", s.handleAdvance)
		r.Post("/prev", s.handleRetreat)
		r.Post("/toggle", s.handleToggle)
		r.Post("/clear", s.handleClear)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/", s.handleAuthState)
		r.Get("/signin", s.handleSignIn)
		r.Get("/callback", s.handleAuthCallback)
		r.Post("/signout", s.handleSignOut)
	})

	return r
}
