package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Post("/sessions", s.handleRecordSession)
		r.Post("/quizzes", s.handleRecordQuiz)

		r.Post("/flashcards", s.handleCreateFlashcard)
		r.Get("/flashcards/next", s.handleNextFlashcard)
		r.Post("/flashcards/{id}/review", s.handleReviewFlashcard)

		r.Get("/analytics", s.handleGetAnalytics)
		r.Post("/analytics/recompute", s.handleRecomputeAnalytics)
		r.Get("/analytics/insights", s.handleGetInsights)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNotFound(r.URL.Path))
	})
	return r
}
