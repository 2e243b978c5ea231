package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/vinayskanse/blocky/internal/domain"
	"github.com/vinayskanse/blocky/internal/validation"
)

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, &domain.APIError{
		Code:    status,
		Message: message,
	})
}

// handleError converts domain errors to HTTP errors.
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid input")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes JSON from request body.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// generateID generates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// respondValidationErrors writes a JSON response for validation errors.
func respondValidationErrors(w http.ResponseWriter, errs validation.ValidationErrors) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"errors": errs,
	})
}

// validateDomains collects validation errors for a domain list.
func validateDomains(domains []string, errs *validation.ValidationErrors) {
	for i, d := range domains {
		if err := validation.ValidateDomain(d); err != nil {
			errs.Add(fmt.Sprintf("domains[%d]", i), d, err.Error())
		}
	}
}

// validateScheduleFields collects validation errors for schedule edits.
func validateScheduleFields(days []string, start, end string, errs *validation.ValidationErrors) {
	for i, d := range days {
		if err := validation.ValidateDay(d); err != nil {
			errs.Add(fmt.Sprintf("days[%d]", i), d, err.Error())
		}
	}
	if err := validation.ValidateClock(start); err != nil {
		errs.Add("start_time", start, err.Error())
	}
	if err := validation.ValidateClock(end); err != nil {
		errs.Add("end_time", end, err.Error())
	}
}
