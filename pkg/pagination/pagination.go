// Package pagination extracts skip/limit query parameters and wraps list
// responses in a paging envelope.
package pagination

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Params holds pagination parameters extracted from a request. Skip is never
// negative and Limit is clamped to MaxLimit.
type Params struct {
	Skip  int
	Limit int
}

// FromContext extracts skip/limit from the echo context, applying the
// defaults and caps.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	if skip < 0 {
		skip = 0
	}

	return Params{Skip: skip, Limit: limit}
}

// Response wraps a paginated API response.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Skip    int         `json:"skip"`
	Limit   int         `json:"limit"`
	HasMore bool        `json:"has_more"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	return &Response{
		Data:    data,
		Total:   total,
		Skip:    p.Skip,
		Limit:   p.Limit,
		HasMore: p.Skip+p.Limit < total,
	}
}

// SQL returns the LIMIT and OFFSET clause for SQL queries.
func (p Params) SQL() string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", p.Limit, p.Skip)
}

// Slice applies the window to an in-memory slice length, returning the
// [start, end) bounds.
func (p Params) Slice(n int) (int, int) {
	start := p.Skip
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
