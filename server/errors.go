package server

import (
	"encoding/json"
	"net/http"

	"casino/domain/entities"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForKind maps an error kind to its HTTP status
func statusForKind(kind entities.ErrorKind) int {
	switch kind {
	case entities.ErrorKindValidation, entities.ErrorKindInsufficientBalance:
		return http.StatusBadRequest
	case entities.ErrorKindStateConflict:
		return http.StatusConflict
	case entities.ErrorKindNotFound:
		return http.StatusNotFound
	case entities.ErrorKindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError turns a service error into a JSON error response
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := entities.KindOf(err)
	status := statusForKind(kind)

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Request failed")
		message = "internal error"
	}
	if kind == entities.ErrorKindTransient {
		w.Header().Set("Retry-After", "1")
	}

	writeErrorResponse(w, status, string(kind), message)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}
