package http

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/service"
	"github.com/campthai/campthai-backend/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, limiter echo.MiddlewareFunc) {
	handler := &AuthHandler{auth: auth}

	group := e.Group("/api/auth", limiter)
	group.POST("/register", handler.register)
	group.POST("/login", handler.login)
	group.POST("/google", handler.loginWithGoogle)
	group.POST("/logout", handler.logout, RequireAuth(auth))

	e.GET("/api/users/me", handler.me, RequireAuth(auth), limiter)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("a valid email is required"))
	}

	result, err := h.auth.Register(c.Request().Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyUsed) {
			return c.JSON(http.StatusConflict, util.Error("email already registered"))
		}
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	return c.JSON(http.StatusCreated, buildAuthResponse(result))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.Login(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error("invalid email or password"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to login"))
	}

	return c.JSON(http.StatusOK, buildAuthResponse(result))
}

func (h *AuthHandler) loginWithGoogle(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.IDToken) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("id_token is required"))
	}

	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrGoogleTokenInvalid) {
			return c.JSON(http.StatusUnauthorized, util.Error("google token verification failed"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to login with google"))
	}

	return c.JSON(http.StatusOK, buildAuthResponse(result))
}

func (h *AuthHandler) logout(c echo.Context) error {
	token, ok := CurrentToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	if err := h.auth.Logout(c.Request().Context(), token); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to logout"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"user": buildAuthUser(user)})
}

func buildAuthResponse(result *service.AuthResult) util.Envelope {
	return util.Envelope{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       buildAuthUser(result.User),
	}
}

func buildAuthUser(user *domain.User) util.Envelope {
	resp := util.Envelope{
		"id":         user.ID,
		"email":      user.Email,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	}
	if user.Username != nil {
		resp["username"] = *user.Username
	}
	if user.FullName != nil {
		resp["full_name"] = *user.FullName
	}
	if user.ImageURL != nil {
		resp["user_image_url"] = *user.ImageURL
	}
	if len(user.Roles) > 0 {
		resp["roles"] = user.Roles
	}
	return resp
}
