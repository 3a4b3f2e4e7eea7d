package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/crewpay/internal/middleware"
	"github.com/iliyamo/crewpay/internal/model"
	"github.com/iliyamo/crewpay/internal/service"
	"github.com/iliyamo/crewpay/internal/utils"
)

// TokenService is the part of service.Issuer the auth endpoints use.
type TokenService interface {
	Login(ctx context.Context, username, password string) (*service.TokenPair, error)
	Refresh(ctx context.Context, raw string) (*service.TokenPair, error)
	Verify(raw string) (*utils.AccessClaims, error)
	RevokeRefresh(ctx context.Context, raw string) error
	RevokeAll(ctx context.Context, credentialID string) error
}

// Registrar creates a credential together with its profile.
type Registrar interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.Credential, *model.Profile, error)
}

// SelfService loads the caller's credential and bound profile.
type SelfService interface {
	Me(ctx context.Context, callerID string) (*model.Credential, *model.Profile, error)
}

// AuthHandler serves /v1/auth.
type AuthHandler struct {
	Tokens    TokenService
	Registrar Registrar
	Self      SelfService
	Log       *zap.Logger
}

func NewAuthHandler(tokens TokenService, reg Registrar, self SelfService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Tokens: tokens, Registrar: reg, Self: self, Log: nopIfNil(log)}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// refreshReq accepts the token as "refresh" or "refresh_token".
type refreshReq struct {
	Refresh      string `json:"refresh"`
	RefreshToken string `json:"refresh_token"`
}

func (r refreshReq) raw() string {
	if s := strings.TrimSpace(r.Refresh); s != "" {
		return s
	}
	return strings.TrimSpace(r.RefreshToken)
}

type verifyReq struct {
	Token string `json:"token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    model.PublicUser `json:"user"`
	Access  tokenPart        `json:"access"`
	Refresh tokenPart        `json:"refresh"`
}

func pairResp(p *service.TokenPair) authResp {
	return authResp{
		User:    p.User,
		Access:  tokenPart{Token: p.Access.Token, Expires: p.Access.Exp},
		Refresh: tokenPart{Token: p.Refresh.Raw, Expires: p.Refresh.Exp},
	}
}

// Token: POST /v1/auth/token.
func (h *AuthHandler) Token(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	pair, err := h.Tokens.Login(ctx, req.Username, req.Password)
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, pairResp(pair))
}

// Refresh: POST /v1/auth/token/refresh.  The presented token is rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.raw() == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh token required"})
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	pair, err := h.Tokens.Refresh(ctx, req.raw())
	if errors.Is(err, service.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, pairResp(pair))
}

// Verify: POST /v1/auth/token/verify.  200 with an empty object when the
// access token is valid.
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	if _, err := h.Tokens.Verify(strings.TrimSpace(req.Token)); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	return c.JSON(http.StatusOK, echo.Map{})
}

// Register: POST /v1/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := c.Bind(&in); err != nil {
		return invalidBody(c)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cred, _, err := h.Registrar.Register(ctx, in)
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    cred.Public(),
	})
}

// Logout: POST /v1/auth/logout.  A refresh token in the body revokes that
// session.  Without one, a valid bearer token revokes every session of its
// credential.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := req.raw()

	ctx, cancel := requestContext(c)
	defer cancel()

	if raw != "" {
		if err := h.Tokens.RevokeRefresh(ctx, raw); err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
			}
			return errorJSON(c, h.Log, err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh token"})
	}
	claims, err := h.Tokens.Verify(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Tokens.RevokeAll(ctx, claims.Subject); err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Profile: GET /v1/auth/profile.  Returns the caller and its bound profile.
func (h *AuthHandler) Profile(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	cred, p, err := h.Self.Me(ctx, middleware.CallerID(c))
	if errors.Is(err, service.ErrProfileNotBound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Profile not found"})
	}
	if err != nil {
		return errorJSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": cred.Public(), "profile": p})
}
