package api

import (
	"encoding/json"
	"net/http"

	"github.com/rxtech-lab/argo-threshold/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string           `json:"error"`
	Code  errors.ErrorCode `json:"code"`
}

// StatusForError maps a coded error to an HTTP status.
func StatusForError(err error) int {
	switch {
	case errors.HasCode(err, errors.ErrCodeEmptySeries),
		errors.IsInputValidationError(err),
		errors.IsUnsupportedIndicatorError(err),
		errors.IsMissingColumnError(err):
		return http.StatusBadRequest
	case errors.HasCode(err, errors.ErrCodeDataNotFound):
		return http.StatusNotFound
	case errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed),
		errors.HasCode(err, errors.ErrCodeDataSourceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code errors.ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func writeCodedError(w http.ResponseWriter, err error) {
	writeError(w, StatusForError(err), errors.GetCode(err), err.Error())
}
