package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/auth"
	"storefront-service/internal/entity"
)

type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an account --> POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	req := entity.RegisterRequest{}
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login --> POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	req := entity.LoginRequest{}
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// Logout ends the caller's session --> POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), auth.SessionID(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetUser returns the caller --> GET /api/auth/user
func (h *AuthHandler) GetUser(c echo.Context) error {
	user, err := h.authService.GetUser(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
