package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielokoye-py/Notestack/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the uniform error envelope. Detail carries the internal error
// string and is only populated in development.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeTaxonomyError maps the error taxonomy to HTTP statuses. includeDetail
// should be the development-mode flag.
func writeTaxonomyError(w http.ResponseWriter, err error, msg string, includeDetail bool) {
	status := http.StatusInternalServerError

	var (
		cfgErr     *core.ConfigurationError
		extractErr *core.ExtractionError
		embedErr   *core.EmbeddingError
		genErr     *core.GenerationError
	)
	switch {
	case errors.Is(err, core.ErrValidation), errors.As(err, &cfgErr):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &extractErr):
		// Bad upload, not a server fault.
		status = http.StatusBadRequest
	case errors.As(err, &embedErr), errors.As(err, &genErr):
		status = http.StatusInternalServerError
	}

	body := errorBody{Error: msg}
	if includeDetail {
		body.Detail = err.Error()
	}
	writeJSON(w, status, body)
}
