// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/crewpay/internal/handler"
	"github.com/iliyamo/crewpay/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth         *handler.AuthHandler
	Profiles     *handler.ProfileHandler
	Flights      *handler.FlightHandler
	Calculations *handler.CalculationHandler
	Settings     *handler.SettingsHandler
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token and registration endpoints under
// /v1/auth.  limiter wraps the whole group and may be a pass-through.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/token", a.Token)
	g.POST("/token/refresh", a.Refresh)
	g.POST("/token/verify", a.Verify)
	g.POST("/register", a.Register)
	g.POST("/logout", a.Logout)
}

// RegisterProtected registers the profile-scoped resources under /v1.
// Every route requires a valid access token.
func RegisterProtected(e *echo.Echo, h Handlers, jwtSecret string) {
	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	v1.GET("/auth/profile", h.Auth.Profile)

	resource(v1, "/profiles", h.Profiles.List, h.Profiles.Create, h.Profiles.Get, h.Profiles.Update, h.Profiles.Delete)
	resource(v1, "/flights", h.Flights.List, h.Flights.Create, h.Flights.Get, h.Flights.Update, h.Flights.Delete)
	resource(v1, "/monthly-calculations", h.Calculations.List, h.Calculations.Create, h.Calculations.Get, h.Calculations.Update, h.Calculations.Delete)
	resource(v1, "/user-settings", h.Settings.List, h.Settings.Create, h.Settings.Get, h.Settings.Update, h.Settings.Delete)
}

func resource(g *echo.Group, path string, list, create, get, update, del echo.HandlerFunc) {
	g.GET(path, list)
	g.POST(path, create)
	g.GET(path+"/:id", get)
	g.PUT(path+"/:id", update)
	g.PATCH(path+"/:id", update)
	g.DELETE(path+"/:id", del)
}

// Register wires every route.
func Register(e *echo.Echo, h Handlers, jwtSecret string, limiter echo.MiddlewareFunc) {
	RegisterRoutes(e)
	RegisterAuth(e, h.Auth, limiter)
	RegisterProtected(e, h, jwtSecret)
}
