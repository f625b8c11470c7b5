package api

import (
	"net/http"

	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/models"
)

func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	log := logger.FromContext(r.Context()).WithField("user_id", userID)

	var session models.StudySession
	if err := decodeJSON(w, r, &session); err != nil {
		handleError(w, r, err)
		return
	}

	saved, err := s.SessionService.RecordSession(r.Context(), userID, session)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("session recorded: session_id=%s", saved.ID)
	respondJSON(w, r, http.StatusCreated, saved)
}

func (s *Server) handleRecordQuiz(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	log := logger.FromContext(r.Context()).WithField("user_id", userID)

	var quiz models.QuizSession
	if err := decodeJSON(w, r, &quiz); err != nil {
		handleError(w, r, err)
		return
	}

	saved, err := s.SessionService.RecordQuiz(r.Context(), userID, quiz)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("quiz recorded: quiz_id=%s", saved.ID)
	respondJSON(w, r, http.StatusCreated, saved)
}
