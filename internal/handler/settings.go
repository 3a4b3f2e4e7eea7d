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

// SettingsService is the scoped settings gateway.
type SettingsService interface {
	List(ctx context.Context, callerID string) ([]model.UserSettings, error)
	Get(ctx context.Context, callerID, id string) (*model.UserSettings, error)
	Create(ctx context.Context, callerID string, in service.SettingsInput) (*model.UserSettings, error)
	Update(ctx context.Context, callerID, id string, in service.SettingsInput) (*model.UserSettings, error)
	Delete(ctx context.Context, callerID, id string) error
}

// SettingsHandler serves /v1/user-settings.  PUT and PATCH both replace
// the whole document.
type SettingsHandler struct {
	Svc SettingsService
	Log *zap.Logger
}

func NewSettingsHandler(svc SettingsService, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{Svc: svc, Log: nopIfNil(log)}
}

func (h *SettingsHandler) fail(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Settings already exist"})
	}
	return errorJSON(c, h.Log, err)
}

func (h *SettingsHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Svc.List(ctx, middleware.CallerID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return list(c, items)
}

func (h *SettingsHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	us, err := h.Svc.Get(ctx, middleware.CallerID(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, us)
}

func (h *SettingsHandler) Create(c echo.Context) error {
	var in service.SettingsInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	us, err := h.Svc.Create(ctx, middleware.CallerID(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, us)
}

func (h *SettingsHandler) Update(c echo.Context) error {
	var in service.SettingsInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	us, err := h.Svc.Update(ctx, middleware.CallerID(c), c.Param("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, us)
}

func (h *SettingsHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Svc.Delete(ctx, middleware.CallerID(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
