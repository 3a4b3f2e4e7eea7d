package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/crewpay/internal/middleware"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/repository"
	"github.com/iliyamo/crewpay/internal/service"
)

// CalculationService is the scoped monthly calculation gateway.
type CalculationService interface {
	List(ctx context.Context, callerID string, year int) ([]model.MonthlyCalculation, error)
	Get(ctx context.Context, callerID, id string) (*model.MonthlyCalculation, error)
	Create(ctx context.Context, callerID string, in service.CalculationInput) (*model.MonthlyCalculation, error)
	Update(ctx context.Context, callerID, id string, in service.CalculationInput) (*model.MonthlyCalculation, error)
	Replace(ctx context.Context, callerID, id string, in service.CalculationInput) (*model.MonthlyCalculation, error)
	Delete(ctx context.Context, callerID, id string) error
}

// CalculationHandler serves /v1/monthly-calculations.
type CalculationHandler struct {
	Svc CalculationService
	Log *zap.Logger
}

func NewCalculationHandler(svc CalculationService, log *zap.Logger) *CalculationHandler {
	return &CalculationHandler{Svc: svc, Log: nopIfNil(log)}
}

const periodTaken = "A monthly calculation already exists for this month and year"

func (h *CalculationHandler) fail(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": periodTaken})
	}
	return errorJSON(c, h.Log, err)
}

// List accepts a ?year= filter.
func (h *CalculationHandler) List(c echo.Context) error {
	var year int
	if err := echo.QueryParamsBinder(c).Int("year", &year).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "year must be an integer"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Svc.List(ctx, middleware.CallerID(c), year)
	if err != nil {
		return h.fail(c, err)
	}
	return list(c, items)
}

func (h *CalculationHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	m, err := h.Svc.Get(ctx, middleware.CallerID(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CalculationHandler) Create(c echo.Context) error {
	var in service.CalculationInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	m, err := h.Svc.Create(ctx, middleware.CallerID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// Update serves both PUT (full) and PATCH (partial).
func (h *CalculationHandler) Update(c echo.Context) error {
	var in service.CalculationInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	update := h.Svc.Update
	if c.Request().Method == http.MethodPut {
		update = h.Svc.Replace
	}
	m, err := update(ctx, middleware.CallerID(c), c.Param("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CalculationHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Svc.Delete(ctx, middleware.CallerID(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
