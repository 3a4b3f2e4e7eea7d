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

// ProfileService is the scoped profile gateway.
type ProfileService interface {
	List(ctx context.Context, callerID string) ([]model.Profile, error)
	Get(ctx context.Context, callerID, id string) (*model.Profile, error)
	Create(ctx context.Context, callerID string, in service.ProfileInput) (*model.Profile, error)
	Update(ctx context.Context, callerID, id string, in service.ProfileInput) (*model.Profile, error)
	Replace(ctx context.Context, callerID, id string, in service.ProfileInput) (*model.Profile, error)
	Delete(ctx context.Context, callerID, id string) error
}

// ProfileHandler serves /v1/profiles.
type ProfileHandler struct {
	Svc ProfileService
	Log *zap.Logger
}

func NewProfileHandler(svc ProfileService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Log: nopIfNil(log)}
}

func (h *ProfileHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Svc.List(ctx, middleware.CallerID(c))
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return list(c, items)
}

func (h *ProfileHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.Svc.Get(ctx, middleware.CallerID(c), c.Param("id"))
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Create(c echo.Context) error {
	var in service.ProfileInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	p, err := h.Svc.Create(ctx, middleware.CallerID(c), in)
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Update serves both PUT (full) and PATCH (partial).
func (h *ProfileHandler) Update(c echo.Context) error {
	var in service.ProfileInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	update := h.Svc.Update
	if c.Request().Method == http.MethodPut {
		update = h.Svc.Replace
	}
	p, err := update(ctx, middleware.CallerID(c), c.Param("id"), in)
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Svc.Delete(ctx, middleware.CallerID(c), c.Param("id")); err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
