package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"karkhana/internal/core"
	"karkhana/internal/storage"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondStorageError maps domain and storage failures onto status codes:
// validation errors are 422, missing entities 404, everything else 500.
func respondStorageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case isValidationError(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidType,
		core.ErrInvalidDate,
		core.ErrInvalidStatus,
		core.ErrEmptyName,
		core.ErrEmptyDescription,
		core.ErrNegativeDimension,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// monthQuery reads ?month=YYYY-MM, defaulting to the current month.
func monthQuery(w http.ResponseWriter, r *http.Request) (core.Month, bool) {
	v := r.URL.Query().Get("month")
	if v == "" {
		return core.MonthOf(time.Now()), true
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month, want YYYY-MM")
		return core.Month{}, false
	}
	return m, true
}

// periodQuery reads ?from=YYYY-MM-DD&to=YYYY-MM-DD, defaulting to the
// current calendar month.
func periodQuery(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	now := time.Now()
	month := core.MonthOf(now)
	from = month.First()
	to = from.AddDate(0, 1, -1)

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
			return from, to, false
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
			return from, to, false
		}
		to = t
	}
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "to date before from date")
		return from, to, false
	}
	return from, to, true
}

// parseAmount converts a decimal rupee string to Money.
func parseAmount(s string) (core.Money, error) {
	paise, err := core.ParseDecimalToPaise(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Paise: paise}, nil
}

// parseRate allows zero, unlike parseAmount; line items and purchases may
// carry a zero rate while being drafted.
func parseRate(s string) (core.Money, error) {
	if s == "" {
		return core.Money{}, nil
	}
	paise, err := core.ParseOptionalDecimalToPaise(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Paise: paise}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, core.ErrInvalidDate
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, core.ErrInvalidDate
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
