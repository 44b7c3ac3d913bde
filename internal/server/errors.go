package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/photosheet/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code      errors.Code    `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeValidation, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidImage, errors.ErrCodeSheetTooSmall:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError writes err as a JSON error body. Internal errors are logged by
// the caller and reported without their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{
		Code:      errors.GetCode(err),
		Message:   errors.UserMessage(err),
		Details:   errors.GetDetails(err),
		RequestID: requestIDFrom(r.Context()),
	}
	if body.Code == "" {
		body.Code = errors.ErrCodeInternal
		body.Message = http.StatusText(status)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func notFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}
