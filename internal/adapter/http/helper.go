package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ---- helpers ----

// bindAndValidate decodes the JSON body into req and validates it. On failure
// the 400 response has already been written and ok is false.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	return true, nil
}

// idParam reads a positive numeric path parameter.
func idParam(c echo.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

func badParam(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid path parameter",
		Details: []FieldError{{Field: name, Message: "must be a positive integer"}},
	})
}
