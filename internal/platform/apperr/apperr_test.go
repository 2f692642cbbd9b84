package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(NotFound("missing")); got != KindNotFound {
		t.Errorf("expected not_found, got %s", got)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("expected internal for plain error, got %s", got)
	}
	wrapped := fmt.Errorf("context: %w", Forbidden("no"))
	if !IsKind(wrapped, KindForbidden) {
		t.Error("expected wrapped error to keep its kind")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
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
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("%s: expected %d, got %d", kind, want, got)
		}
	}
	if got := HTTPStatus(Kind("bogus")); got != http.StatusInternalServerError {
		t.Errorf("unknown kind: expected 500, got %d", got)
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	return env
}

func TestHTTPErrorHandler_AppError(t *testing.T) {
	e := echo.New()
	handler := HTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler(Duplicate("already there"), c)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error.Kind != KindDuplicateResource {
		t.Errorf("expected duplicate_resource, got %s", env.Error.Kind)
	}
	if env.Error.Message != "already there" {
		t.Errorf("unexpected message %q", env.Error.Message)
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	e := echo.New()
	handler := HTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler(echo.NewHTTPError(http.StatusNotFound, "no route"), c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error.Kind != KindNotFound {
		t.Errorf("expected not_found, got %s", env.Error.Kind)
	}
}

func TestHTTPErrorHandler_UnknownErrorHidden(t *testing.T) {
	e := echo.New()
	handler := HTTPErrorHandler(zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler(errors.New("pq: connection refused"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error.Message != "internal server error" {
		t.Errorf("internal details leaked: %q", env.Error.Message)
	}
}
