// Package httperr defines the service-wide error taxonomy and the Echo
// error handler that maps it onto structured JSON responses.
package httperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Kind classifies an error for HTTP status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Details string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports a missing or malformed request field.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an unknown resource id.
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: resource + " not found",
		Details: id,
	}
}

// Conflict reports a state conflict, such as a slot that is already taken.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected store or infrastructure failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

type body struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler returns an echo.HTTPErrorHandler that renders the taxonomy as
// {"error": ..., "details": ...}. Unclassified errors become 500s with the
// cause logged but not leaked to the caller.
func Handler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		resp := body{Error: "internal error"}

		var appErr *Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Status()
			resp.Error = appErr.Message
			resp.Details = appErr.Details
			if appErr.Kind == KindInternal {
				logger.Error().Err(err).Str("path", c.Path()).Msg("internal error")
				resp.Details = ""
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			resp.Error = fmt.Sprintf("%v", httpErr.Message)
		default:
			logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}
