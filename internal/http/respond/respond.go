// Package respond writes JSON bodies and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

type errorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorResponse{Error: msg})
}

// Err maps err to a status code. Unknown errors are logged and hidden behind a generic 500.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, bill.ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bill.ErrNotFound):
		Error(w, http.StatusNotFound, bill.ErrNotFound.Error())
	case errors.Is(err, bill.ErrAlreadyPaid):
		Error(w, http.StatusConflict, bill.ErrAlreadyPaid.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
