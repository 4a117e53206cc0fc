package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/remote"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthProxy signs users in against the remote store
type AuthProxy interface {
	Login(ctx context.Context, req remote.LoginRequest) (*remote.LoginResponse, error)
	Register(ctx context.Context, req remote.RegisterRequest) error
}

// AuthHandler forwards sign-in and registration to the remote store
type AuthHandler struct {
	proxy AuthProxy
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(proxy AuthProxy) *AuthHandler {
	return &AuthHandler{proxy: proxy}
}

// LoginRequest represents the sign-in request body
type LoginRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful sign-in
type LoginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user,omitempty" swaggertype:"object"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// Login handles POST /api/v1/auth/login
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	req.Email = strings.TrimSpace(req.Email)
	var errs []ValidationError
	if req.Email == "" {
		errs = append(errs, ValidationError{Field: "email", Message: "Email is required"})
	}
	if req.Password == "" {
		errs = append(errs, ValidationError{Field: "password", Message: "Password is required"})
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	resp, err := h.proxy.Login(c.Request().Context(), remote.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrInvalidInput) {
			return NewUnauthorizedError(c, "Invalid email or password")
		}
		log.Error().Err(err).Msg("Remote login failed")
		return NewUnavailableError(c, "Sign-in is temporarily unavailable")
	}
	return c.JSON(http.StatusOK, LoginResponse{Token: resp.Token, User: resp.User})
}

// Register handles POST /api/v1/auth/register
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} ProblemDetails
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	var errs []ValidationError
	if req.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "Name is required"})
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		errs = append(errs, ValidationError{Field: "email", Message: "A valid email is required"})
	}
	if req.Password == "" {
		errs = append(errs, ValidationError{Field: "password", Message: "Password is required"})
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	err := h.proxy.Register(c.Request().Context(), remote.RegisterRequest{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		var statusErr *remote.StatusError
		if errors.As(err, &statusErr) && errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, statusErr.Message, nil)
		}
		log.Error().Err(err).Msg("Remote registration failed")
		return NewUnavailableError(c, "Registration is temporarily unavailable")
	}
	return c.JSON(http.StatusCreated, MessageResponse{Message: "Account created"})
}
