package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/petalworks/bloomcast/backend/internal/contracts"
	"github.com/petalworks/bloomcast/backend/internal/forecast"
	"github.com/petalworks/bloomcast/backend/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondDomainError maps the error taxonomy onto HTTP status codes.
// Unclassified errors are internal: their text stays out of the
// response body and goes to the log instead.
func respondDomainError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, contracts.ErrInvalidRange),
		errors.Is(err, contracts.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contracts.ErrUnknownProduct):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, contracts.ErrInsufficientData):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.WithError(err).Error("Request failed with internal error")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// rangeFromQuery reads the start_date/end_date query parameters. Both
// are required, YYYY-MM-DD.
func rangeFromQuery(r *http.Request) (contracts.DateRange, error) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	if start == "" || end == "" {
		return contracts.DateRange{}, fmt.Errorf("%w: start_date and end_date query parameters are required",
			contracts.ErrInvalidRange)
	}
	return forecast.ParseRange(start, end)
}
