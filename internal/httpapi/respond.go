package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SebastianPineiro10/servidor-ecommerce-backend2/internal/domain"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type successResponse struct {
	Status  string `json:"status"`
	Payload any    `json:"payload"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Status: "error", Message: message})
}

// errorStatus maps an error kind to its canonical status code. Handlers
// whose route contract demands 400 where the kind would map to 404 or 409
// demote the status after calling this.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with its canonical status. demote pairs
// rewrite specific statuses to satisfy per-route contracts, e.g.
// respondServiceError(w, err, 404, 400) turns not-found into a bad request.
func respondServiceError(w http.ResponseWriter, err error, demote ...int) {
	status := errorStatus(err)
	for i := 0; i+1 < len(demote); i += 2 {
		if status == demote[i] {
			status = demote[i+1]
		}
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("internal error", "err", err)
		message = "internal server error"
	}
	respondError(w, status, message)
}
