package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"livetsstemme/internal/store"
	"livetsstemme/internal/story/audio"
	"livetsstemme/internal/story/nest"

	"github.com/sirupsen/logrus"
)

type errorBody struct {
	Error any `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Debug("Failed to write response")
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, audio.ErrNoRecording):
		return http.StatusNotFound
	case errors.Is(err, nest.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, nest.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, nest.ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError maps service errors to a status. Internal errors are logged
// and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		msg = "internal server error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return &nest.ValidationError{Message: "empty request body"}
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &nest.ValidationError{Message: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	return nil
}
