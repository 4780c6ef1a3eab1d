// Package respond holds the JSON and error plumbing shared by the HTTP handlers.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/coinquest/internal/errs"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Status maps the error taxonomy onto HTTP status codes.
func Status(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// Error writes err with the status from Status. Internal errors are logged
// and hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		JSON(w, status, errorResponse{Error: "internal error"})

		return
	}

	resp := errorResponse{Error: err.Error()}

	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}

	JSON(w, status, resp)
}

// Decode reads a JSON body into v, reporting malformed input as a validation error.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.Invalid("body", err.Error())
	}

	return nil
}

func ID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errs.Invalid("id", "must be a UUID")
	}

	return id, nil
}

// Int parses an optional integer query parameter.
func Int(r *http.Request, name string) (*int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, errs.Invalid(name, "must be an integer")
	}

	return &n, nil
}

// Date parses an optional YYYY-MM-DD or RFC 3339 query parameter. A bare
// date used as an upper bound covers the whole day.
func Date(r *http.Request, name string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}

	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return nil, errs.Invalid(name, "must be YYYY-MM-DD or RFC 3339")
	}

	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return &t, nil
}

// UUIDs parses a repeatable query parameter, also accepting comma-separated values.
func UUIDs(r *http.Request, name string) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	for _, raw := range r.URL.Query()[name] {
		for part := range splitComma(raw) {
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, errs.Invalid(name, "must be a list of UUIDs")
			}

			ids = append(ids, id)
		}
	}

	return ids, nil
}

// MonthYear reads month and year query parameters, defaulting to the current
// month in loc.
func MonthYear(r *http.Request, loc *time.Location) (int, int, error) {
	now := time.Now().In(loc)
	month, year := int(now.Month()), now.Year()

	m, err := Int(r, "month")
	if err != nil {
		return 0, 0, err
	}

	if m != nil {
		month = *m
	}

	y, err := Int(r, "year")
	if err != nil {
		return 0, 0, err
	}

	if y != nil {
		year = *y
	}

	return month, year, nil
}
