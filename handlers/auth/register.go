package auth

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/edupoint/thesis-portal-api/model"
	authutil "github.com/edupoint/thesis-portal-api/utils/auth"
	"github.com/edupoint/thesis-portal-api/utils/middleware"
	"github.com/edupoint/thesis-portal-api/utils/response"
	"github.com/edupoint/thesis-portal-api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// StudentProfilePayload is the registration payload for STUDENT accounts
type StudentProfilePayload struct {
	StudentNumber  string `json:"student_number" validate:"required,min=2,max=50"`
	Department     string `json:"department" validate:"omitempty,max=100"`
	Program        string `json:"program" validate:"omitempty,max=100"`
	EnrollmentYear int    `json:"enrollment_year" validate:"omitempty,gte=1990,lte=2100"`
}

// SupervisorProfilePayload is the registration payload for SUPERVISOR accounts
type SupervisorProfilePayload struct {
	Department     string `json:"department" validate:"omitempty,max=100"`
	Specialization string `json:"specialization" validate:"omitempty,max=100"`
	Position       string `json:"position" validate:"omitempty,max=100"`
}

// AdminProfilePayload is the registration payload for ADMIN accounts
type AdminProfilePayload struct {
	Position    string   `json:"position" validate:"omitempty,max=100"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,max=50"`
}

// RegisterRequest carries the account fields plus exactly one role payload,
// selected by Role. The other two payloads must be absent.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Role      string `json:"role" validate:"required,oneof=STUDENT SUPERVISOR ADMIN"`

	Student    *StudentProfilePayload    `json:"student,omitempty"`
	Supervisor *SupervisorProfilePayload `json:"supervisor,omitempty"`
	Admin      *AdminProfilePayload      `json:"admin,omitempty"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID                uint                     `json:"id"`
	Email             string                   `json:"email"`
	FirstName         string                   `json:"first_name"`
	LastName          string                   `json:"last_name"`
	Role              string                   `json:"role"`
	CreatedAt         time.Time                `json:"created_at"`
	StudentProfile    *model.StudentProfile    `json:"student_profile,omitempty"`
	SupervisorProfile *model.SupervisorProfile `json:"supervisor_profile,omitempty"`
	AdminProfile      *model.AdminProfile      `json:"admin_profile,omitempty"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // in seconds
}

func newUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:                user.ID,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Role:              user.Role,
		CreatedAt:         user.CreatedAt,
		StudentProfile:    user.StudentProfile,
		SupervisorProfile: user.SupervisorProfile,
		AdminProfile:      user.AdminProfile,
	}
}

// checkRolePayload enforces the one-payload-per-role shape of RegisterRequest.
func checkRolePayload(req *RegisterRequest) error {
	present := 0
	if req.Student != nil {
		present++
	}
	if req.Supervisor != nil {
		present++
	}
	if req.Admin != nil {
		present++
	}
	if present > 1 {
		return errors.New("only the profile matching the role may be set")
	}

	switch req.Role {
	case model.RoleStudent:
		if req.Student == nil {
			return errors.New("student profile is required for STUDENT registration")
		}
	case model.RoleSupervisor:
		if req.Supervisor == nil {
			return errors.New("supervisor profile is required for SUPERVISOR registration")
		}
	case model.RoleAdmin:
		if req.Admin == nil {
			return errors.New("admin profile is required for ADMIN registration")
		}
	}
	return nil
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := checkRolePayload(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	req.FirstName = validation.SanitizeString(req.FirstName)
	req.LastName = validation.SanitizeString(req.LastName)

	// Check if the email is already registered
	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Error(c, fiber.StatusConflict, "User with this email already exists", response.CodeDuplicateEmail)
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
	}

	// User and role profile are one atomic write.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return createProfile(tx, &user, &req)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Error(c, fiber.StatusConflict, "User with this email already exists", response.CodeDuplicateEmail)
		}
		log.Printf("Failed to create user: %v", err)
		return response.InternalServerError(c, "Failed to create user")
	}

	token, err := h.jwtManager.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate session token")
	}

	return response.Created(c, AuthResponse{
		User:      newUserResponse(&user),
		Token:     token,
		ExpiresIn: int(h.jwtManager.Expiry().Seconds()),
	})
}

func createProfile(tx *gorm.DB, user *model.User, req *RegisterRequest) error {
	switch req.Role {
	case model.RoleStudent:
		profile := &model.StudentProfile{
			UserID:         user.ID,
			StudentNumber:  validation.SanitizeString(req.Student.StudentNumber),
			Department:     validation.SanitizeString(req.Student.Department),
			Program:        validation.SanitizeString(req.Student.Program),
			EnrollmentYear: req.Student.EnrollmentYear,
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.StudentProfile = profile
	case model.RoleSupervisor:
		profile := &model.SupervisorProfile{
			UserID:         user.ID,
			Department:     validation.SanitizeString(req.Supervisor.Department),
			Specialization: validation.SanitizeString(req.Supervisor.Specialization),
			Position:       validation.SanitizeString(req.Supervisor.Position),
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.SupervisorProfile = profile
	case model.RoleAdmin:
		profile := &model.AdminProfile{
			UserID:   user.ID,
			Position: validation.SanitizeString(req.Admin.Position),
		}
		if len(req.Admin.Permissions) > 0 {
			perms, err := permissionsJSON(req.Admin.Permissions)
			if err != nil {
				return err
			}
			profile.Permissions = perms
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.AdminProfile = profile
	}
	return nil
}
