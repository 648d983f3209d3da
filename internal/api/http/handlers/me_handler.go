package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// MeHandler returns the authenticated caller's identity.
type MeHandler struct{}

// NewMeHandler constructs the handler.
func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// Me handles GET /auth/v1/me.
func (h *MeHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	roles := principal.Roles
	if roles == nil {
		roles = []string{}
	}
	return c.JSON(dto.PrincipalResponse{
		UserID:   principal.UserID,
		Username: principal.Username,
		Roles:    roles,
	})
}
