package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AuthHandler exposes the signup, login, and refresh endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Signup handles POST /auth/v1/signup. A successful signup responds like a
// login: the account is created and a token pair is issued immediately.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	_, pair, err := h.auth.Signup(c.UserContext(), service.SignupParams{
		Username: req.Username,
		Password: req.Password,
		LastName: req.LastName,
		PhoneNo:  req.PhoneNo,
		EmailID:  req.EmailID,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			return apperrors.NewConflict("user already exists", nil)
		}
		return apperrors.MapError(err)
	}

	return c.Status(http.StatusOK).JSON(dto.TokenResponse{
		AccessToken: pair.AccessToken,
		Token:       pair.RefreshToken,
	})
}

// Login handles POST /auth/v1/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	pair, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized("invalid username or password")
		}
		return apperrors.MapError(err)
	}

	return c.JSON(dto.TokenResponse{
		AccessToken: pair.AccessToken,
		Token:       pair.RefreshToken,
	})
}

// Refresh handles POST /auth/v1/refreshToken. Missing and expired refresh
// tokens both yield 403; the refresh token string is never rotated here.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" {
		return apperrors.NewValidationError("token required", nil)
	}

	pair, err := h.auth.Refresh(c.UserContext(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshNotFound):
			return apperrors.NewForbidden("refresh token is not found or is invalid")
		case errors.Is(err, service.ErrRefreshTokenExpired):
			return apperrors.NewForbidden("refresh token is expired, please log in again")
		default:
			return apperrors.MapError(err)
		}
	}

	return c.JSON(dto.TokenResponse{
		AccessToken: pair.AccessToken,
		Token:       pair.RefreshToken,
	})
}
