package middleware

import "github.com/labstack/echo/v4"

// CallerID returns the credential id stored by JWTAuth, or "" when the
// request is unauthenticated.
func CallerID(c echo.Context) string {
	if s, ok := c.Get(ContextCallerID).(string); ok {
		return s
	}
	return ""
}
