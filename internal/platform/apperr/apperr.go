// Package apperr defines the stable error taxonomy shared by every domain
// service. Services return *Error values; the HTTP layer maps kinds to
// status codes in one place (HTTPErrorHandler) so handlers never invent
// ad-hoc statuses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Kind is a stable, machine-readable error category.
type Kind string

const (
	KindInvalidCredentials      Kind = "invalid_credentials"
	KindInactiveAccount         Kind = "inactive_account"
	KindInvalidToken            Kind = "invalid_token"
	KindForbidden               Kind = "forbidden"
	KindNotFound                Kind = "not_found"
	KindInvalidDateRange        Kind = "invalid_date_range"
	KindInvalidTimeFormat       Kind = "invalid_time_format"
	KindMedicationConflict      Kind = "medication_conflict"
	KindDuplicateResource       Kind = "duplicate_resource"
	KindDependentResourceExists Kind = "dependent_resource_exists"
	KindConflict                Kind = "conflict"
	KindValidation              Kind = "validation"
	KindInternal                Kind = "internal"
)

// Error is a domain error with a stable kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New creates an error with the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func InvalidCredentials(msg string) *Error { return &Error{Kind: KindInvalidCredentials, Message: msg} }
func InactiveAccount(msg string) *Error    { return &Error{Kind: KindInactiveAccount, Message: msg} }
func InvalidToken(msg string) *Error       { return &Error{Kind: KindInvalidToken, Message: msg} }
func Forbidden(msg string) *Error          { return &Error{Kind: KindForbidden, Message: msg} }

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func InvalidDateRange(format string, args ...interface{}) *Error {
	return New(KindInvalidDateRange, format, args...)
}

func InvalidTimeFormat(format string, args ...interface{}) *Error {
	return New(KindInvalidTimeFormat, format, args...)
}

func MedicationConflict(format string, args ...interface{}) *Error {
	return New(KindMedicationConflict, format, args...)
}

func Duplicate(format string, args ...interface{}) *Error {
	return New(KindDuplicateResource, format, args...)
}

func DependentExists(format string, args ...interface{}) *Error {
	return New(KindDependentResourceExists, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

// KindOf extracts the kind from an error chain. Unrecognized errors report
// KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

var statusByKind = map[Kind]int{
	KindInvalidCredentials:      http.StatusUnauthorized,
	KindInactiveAccount:         http.StatusForbidden,
	KindInvalidToken:            http.StatusUnauthorized,
	KindForbidden:               http.StatusForbidden,
	KindNotFound:                http.StatusNotFound,
	KindInvalidDateRange:        http.StatusBadRequest,
	KindInvalidTimeFormat:       http.StatusBadRequest,
	KindMedicationConflict:      http.StatusConflict,
	KindDuplicateResource:       http.StatusConflict,
	KindDependentResourceExists: http.StatusConflict,
	KindConflict:                http.StatusConflict,
	KindValidation:              http.StatusBadRequest,
	KindInternal:                http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code for an error kind.
func HTTPStatus(kind Kind) int {
	if s, ok := statusByKind[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// HTTPErrorHandler returns an echo error handler that renders *Error values
// with their mapped status and a structured body, passes echo.HTTPError
// through (binding, routing), and hides everything else behind a generic
// internal error.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *Error
		if errors.As(err, &appErr) {
			_ = c.JSON(HTTPStatus(appErr.Kind), errorEnvelope{Error: errorBody{Kind: appErr.Kind, Message: appErr.Message}})
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			msg := fmt.Sprintf("%v", httpErr.Message)
			kind := KindValidation
			switch httpErr.Code {
			case http.StatusNotFound:
				kind = KindNotFound
			case http.StatusUnauthorized:
				kind = KindInvalidToken
			case http.StatusForbidden:
				kind = KindForbidden
			case http.StatusInternalServerError:
				kind = KindInternal
			}
			_ = c.JSON(httpErr.Code, errorEnvelope{Error: errorBody{Kind: kind, Message: msg}})
			return
		}

		logger.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, errorEnvelope{Error: errorBody{Kind: KindInternal, Message: "internal server error"}})
	}
}
