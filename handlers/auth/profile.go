package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edupoint/thesis-portal-api/model"
	"github.com/edupoint/thesis-portal-api/utils/middleware"
	"github.com/edupoint/thesis-portal-api/utils/response"
)

// GetProfile handles GET /api/profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if err := h.loadRoleProfile(&user); err != nil {
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, newUserResponse(&user))
}
