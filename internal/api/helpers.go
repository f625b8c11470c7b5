package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/studypals/studypals/internal/errors"
	"github.com/studypals/studypals/internal/logger"
)

const maxBodyBytes = 1 << 20

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to marshal JSON response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.FromContext(r.Context()).Warn("failed to write JSON response: %v", err)
	}
}

// decodeJSON reads one JSON document from the request body into dst.
// Record types validate themselves while decoding, so their errors pass
// through unchanged; anything else is reported as a bad request.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return errors.NewBadRequestError("request body too large or unreadable")
	}
	if len(data) == 0 {
		return errors.NewBadRequestError("request body is empty")
	}
	if err := json.Unmarshal(data, dst); err != nil {
		if app := errors.AsAppError(err); app.Status != http.StatusInternalServerError {
			return err
		}
		return errors.NewBadRequestError("malformed JSON: " + err.Error())
	}
	return nil
}

func userIDParam(r *http.Request) string {
	return chi.URLParam(r, "userID")
}
