// Package handler contains the HTTP handlers. Shared helpers live here:
// the error envelope every failure response uses and extraction of the
// authenticated user from the request context.
package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Machine-readable error kinds carried in the "error" field of every
// failure response.
const (
	kindValidation   = "validation_error"
	kindNotFound     = "not_found"
	kindUnauthorized = "unauthorized"
	kindConflict     = "conflict"
	kindRateLimited  = "rate_limited"
	kindInternal     = "internal"
)

// fail writes the error envelope: a machine-readable kind plus a short
// human message. Internal details never reach the client; callers log
// them server-side before calling fail.
func fail(c echo.Context, status int, kind, msg string) error {
	return c.JSON(status, echo.Map{"error": kind, "message": msg})
}

// getUserID extracts the user_id placed in context by the JWT middleware
// and converts it to uint64. JWT numeric claims decode as float64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseID parses a path identifier. Malformed identifiers are treated the
// same as absent records, so callers respond not_found on !ok rather than
// leaking which identifiers are well-formed.
func parseID(raw string) (uint64, bool) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
