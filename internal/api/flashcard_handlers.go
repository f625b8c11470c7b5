package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studypals/studypals/internal/errors"
	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/services"
)

type reviewRequest struct {
	Quality             *int    `json:"quality"`
	ResponseTimeSeconds float64 `json:"responseTimeSeconds"`
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)

	var req services.CreateFlashcardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.FlashcardService.CreateFlashcard(r.Context(), userID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleNextFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("fetching next flashcard")

	card, err := s.FlashcardService.NextFlashcard(r.Context(), userIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	if card == nil {
		log.Debug("no flashcards due for review")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleReviewFlashcard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")

	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Quality == nil {
		handleError(w, r, errors.NewValidationError("quality", "is required"))
		return
	}

	log := logger.FromContext(r.Context()).WithFields(map[string]any{
		"flashcard_id": cardID,
		"quality":      *req.Quality,
		"time_seconds": req.ResponseTimeSeconds,
	})
	log.Debug("reviewing flashcard")

	card, err := s.FlashcardService.ReviewFlashcard(r.Context(), userIDParam(r), cardID, *req.Quality, req.ResponseTimeSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("flashcard reviewed successfully")
	respondJSON(w, r, http.StatusOK, card)
}
