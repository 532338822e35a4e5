package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edupoint/thesis-portal-api/model"
	authutil "github.com/edupoint/thesis-portal-api/utils/auth"
	"github.com/edupoint/thesis-portal-api/utils/response"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// invalidCredentials is the single message for both unknown-email and
// wrong-password failures, so the response does not reveal whether an email
// is registered.
const invalidCredentials = "Invalid email or password"

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	ip := c.IP()

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Record failed attempt even if user not found
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Error(c, fiber.StatusUnauthorized, invalidCredentials, response.CodeAuthenticationRequired)
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Error(c, fiber.StatusUnauthorized, invalidCredentials, response.CodeAuthenticationRequired)
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	if err := h.loadRoleProfile(&user); err != nil {
		return response.InternalServerError(c, "Failed to load profile")
	}

	token, err := h.jwtManager.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate session token")
	}

	return response.Success(c, AuthResponse{
		User:      newUserResponse(&user),
		Token:     token,
		ExpiresIn: int(h.jwtManager.Expiry().Seconds()),
	})
}

// loadRoleProfile attaches the profile matching the user's role.
func (h *AuthHandler) loadRoleProfile(user *model.User) error {
	switch user.Role {
	case model.RoleStudent:
		var profile model.StudentProfile
		if err := h.db.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
			user.StudentProfile = &profile
		}
	case model.RoleSupervisor:
		var profile model.SupervisorProfile
		if err := h.db.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
			user.SupervisorProfile = &profile
		}
	case model.RoleAdmin:
		var profile model.AdminProfile
		if err := h.db.Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
			user.AdminProfile = &profile
		}
	}
	return nil
}
