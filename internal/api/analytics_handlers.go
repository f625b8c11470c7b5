package api

import (
	"net/http"

	"github.com/studypals/studypals/internal/logger"
)

func (s *Server) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.AnalyticsService.GetAnalytics(r.Context(), userIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, snapshot)
}

// handleRecomputeAnalytics rebuilds the snapshot inline, or in the background
// when called with ?async=true.
func (s *Server) handleRecomputeAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	log := logger.FromContext(r.Context()).WithField("user_id", userID)

	if r.URL.Query().Get("async") == "true" && s.RecomputeQueue != nil {
		if err := s.RecomputeQueue.EnqueueRecompute(userID); err != nil {
			log.Warn("failed to queue recompute: %v", err)
			respondJSON(w, r, http.StatusServiceUnavailable, errorBody{Error: errorDetail{
				Code:    "QUEUE_UNAVAILABLE",
				Message: err.Error(),
			}})
			return
		}
		respondJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}

	snapshot, err := s.AnalyticsService.Recompute(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("analytics recomputed on request")
	respondJSON(w, r, http.StatusOK, snapshot)
}

func (s *Server) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.AnalyticsService.GetInsights(r.Context(), userIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, insights)
}
