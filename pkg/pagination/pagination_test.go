package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Skip != 0 {
		t.Errorf("expected skip 0, got %d", p.Skip)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := paramsFor(t, "limit=5000")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_NegativeSkip(t *testing.T) {
	p := paramsFor(t, "skip=-5&limit=10")
	if p.Skip != 0 {
		t.Errorf("expected skip 0, got %d", p.Skip)
	}
	if p.Limit != 10 {
		t.Errorf("expected limit 10, got %d", p.Limit)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse([]int{1, 2}, 10, Params{Skip: 0, Limit: 2})
	if !r.HasMore {
		t.Error("expected has_more true")
	}
	r = NewResponse([]int{1, 2}, 10, Params{Skip: 8, Limit: 2})
	if r.HasMore {
		t.Error("expected has_more false at the last page")
	}
}

func TestSlice(t *testing.T) {
	start, end := Params{Skip: 2, Limit: 3}.Slice(10)
	if start != 2 || end != 5 {
		t.Errorf("expected [2,5), got [%d,%d)", start, end)
	}
	start, end = Params{Skip: 8, Limit: 5}.Slice(10)
	if start != 8 || end != 10 {
		t.Errorf("expected [8,10), got [%d,%d)", start, end)
	}
	start, end = Params{Skip: 20, Limit: 5}.Slice(10)
	if start != 10 || end != 10 {
		t.Errorf("expected empty window, got [%d,%d)", start, end)
	}
}
