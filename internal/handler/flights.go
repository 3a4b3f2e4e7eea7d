package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/crewpay/internal/middleware"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/service"
)

// FlightService is the scoped flight gateway.
type FlightService interface {
	List(ctx context.Context, callerID string, f model.FlightFilter) ([]model.Flight, error)
	Get(ctx context.Context, callerID, id string) (*model.Flight, error)
	Create(ctx context.Context, callerID string, in service.FlightInput) (*model.Flight, error)
	Update(ctx context.Context, callerID, id string, in service.FlightInput) (*model.Flight, error)
	Replace(ctx context.Context, callerID, id string, in service.FlightInput) (*model.Flight, error)
	Delete(ctx context.Context, callerID, id string) error
}

// FlightHandler serves /v1/flights.
type FlightHandler struct {
	Svc FlightService
	Log *zap.Logger
}

func NewFlightHandler(svc FlightService, log *zap.Logger) *FlightHandler {
	return &FlightHandler{Svc: svc, Log: nopIfNil(log)}
}

// List accepts ?month= and ?year= filters.
func (h *FlightHandler) List(c echo.Context) error {
	var f model.FlightFilter
	if err := echo.QueryParamsBinder(c).
		Int("month", &f.Month).
		Int("year", &f.Year).
		BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "month and year must be integers"})
	}
	if f.Month < 0 || f.Month > 12 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "month must be between 1 and 12"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Svc.List(ctx, middleware.CallerID(c), f)
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return list(c, items)
}

func (h *FlightHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	f, err := h.Svc.Get(ctx, middleware.CallerID(c), c.Param("id"))
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FlightHandler) Create(c echo.Context) error {
	var in service.FlightInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	f, err := h.Svc.Create(ctx, middleware.CallerID(c), in)
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// Update serves both PUT (full) and PATCH (partial).
func (h *FlightHandler) Update(c echo.Context) error {
	var in service.FlightInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	update := h.Svc.Update
	if c.Request().Method == http.MethodPut {
		update = h.Svc.Replace
	}
	f, err := update(ctx, middleware.CallerID(c), c.Param("id"), in)
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FlightHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Svc.Delete(ctx, middleware.CallerID(c), c.Param("id")); err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
