package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tiammomo/mamoji/internal/errs"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Err maps service errors onto status codes: broken validation rules are
// 400 with the rule text, conflicts are 409. Anything unrecognized is a
// 500 that never leaks internals; not-found cases are the handler's to map
// against its own sentinel.
func Err(w http.ResponseWriter, err error) {
	if errs.IsValidation(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if errors.Is(err, errs.ErrConflict) {
		http.Error(w, "already exists", http.StatusConflict)
		return
	}

	slog.Error("request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
