package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/contentitem/pkg/contentitem"
)

const codeRequestTooLarge = "request_too_large"

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind contentitem.Kind) int {
	switch kind {
	case contentitem.KindNotFound, contentitem.KindNoContent:
		return http.StatusNotFound
	case contentitem.KindInvalidRequest:
		return http.StatusBadRequest
	case contentitem.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	}})
}

// writeServiceError translates a gateway or item service error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, r, http.StatusRequestEntityTooLarge, codeRequestTooLarge, "request body too large")
		return
	}

	kind := contentitem.KindOf(err)
	message := "an internal server error occurred"
	var e *contentitem.Error
	if errors.As(err, &e) {
		message = e.Message
	}
	writeError(w, r, StatusFor(kind), string(kind), message)
}
