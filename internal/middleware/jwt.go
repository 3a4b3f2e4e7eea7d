package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crewpay/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ContextCallerID = "user_id"
	ContextUsername = "username"
	ContextClaims   = "claims"
)

// JWTAuth validates a Bearer access token and stores the credential id,
// username and full claims in the echo context.  The profile claims in the
// token are informational; handlers never scope by them.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ContextCallerID, claims.Subject)
			c.Set(ContextUsername, claims.Username)
			c.Set(ContextClaims, claims)
			return next(c)
		}
	}
}
