package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjcero/ClearGDPR/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleError translates model errors into HTTP status codes. Anything
// unrecognized is an internal error; the original message never leaks.
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "subject not found")
	case errors.Is(err, model.ErrPageOutOfRange):
		writeError(w, http.StatusBadRequest, "page number is out of range")
	case errors.Is(err, model.ErrConflict):
		writeError(w, http.StatusConflict, "subject is being initialized concurrently, retry the request")
	case errors.Is(err, model.ErrIntegrityViolation):
		writeError(w, http.StatusForbidden, "operation touched an unexpected number of records")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
