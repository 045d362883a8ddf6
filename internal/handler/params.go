package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	defaultLimit = 10
	minLimit     = 1
	maxLimit     = 100
	defaultPage  = 1
)

// intQuery parses an optional integer query parameter, returning def when
// absent. ok is false when the value is present but not an integer.
func intQuery(c echo.Context, name string, def int) (val int, ok bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// intParam parses an integer path parameter.
func intParam(c echo.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, false
	}
	return n, true
}

// bearerToken extracts the caller's bearer token from the Authorization
// header, or "" when absent.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}
