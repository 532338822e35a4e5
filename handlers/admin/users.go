package admin

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/edupoint/thesis-portal-api/model"
	authutil "github.com/edupoint/thesis-portal-api/utils/auth"
	"github.com/edupoint/thesis-portal-api/utils/response"
	"github.com/edupoint/thesis-portal-api/utils/validation"
)

// AdminHandler handles admin user-management requests
type AdminHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateUserRequest is the admin user-creation payload. No password field:
// the server generates a temporary password and returns it once.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Role      string `json:"role" validate:"required,oneof=STUDENT SUPERVISOR ADMIN"`

	StudentNumber  string `json:"student_number" validate:"omitempty,max=50"`
	Department     string `json:"department" validate:"omitempty,max=100"`
	Program        string `json:"program" validate:"omitempty,max=100"`
	EnrollmentYear int    `json:"enrollment_year" validate:"omitempty,gte=1990,lte=2100"`
	Specialization string `json:"specialization" validate:"omitempty,max=100"`
	Position       string `json:"position" validate:"omitempty,max=100"`
}

// CreateUser handles POST /api/admin/users
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.Role == model.RoleStudent && req.StudentNumber == "" {
		return response.BadRequest(c, "student_number is required for STUDENT accounts")
	}

	var existing model.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Error(c, fiber.StatusConflict, "User with this email already exists", response.CodeDuplicateEmail)
	}

	tempPassword := authutil.GenerateTempPassword()
	passwordHash, err := authutil.HashPassword(tempPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    validation.SanitizeString(req.FirstName),
		LastName:     validation.SanitizeString(req.LastName),
		Role:         req.Role,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		switch req.Role {
		case model.RoleStudent:
			return tx.Create(&model.StudentProfile{
				UserID:         user.ID,
				StudentNumber:  validation.SanitizeString(req.StudentNumber),
				Department:     validation.SanitizeString(req.Department),
				Program:        validation.SanitizeString(req.Program),
				EnrollmentYear: req.EnrollmentYear,
			}).Error
		case model.RoleSupervisor:
			return tx.Create(&model.SupervisorProfile{
				UserID:         user.ID,
				Department:     validation.SanitizeString(req.Department),
				Specialization: validation.SanitizeString(req.Specialization),
				Position:       validation.SanitizeString(req.Position),
			}).Error
		case model.RoleAdmin:
			return tx.Create(&model.AdminProfile{
				UserID:   user.ID,
				Position: validation.SanitizeString(req.Position),
			}).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Error(c, fiber.StatusConflict, "User with this email already exists", response.CodeDuplicateEmail)
		}
		log.Printf("Failed to create user: %v", err)
		return response.InternalServerError(c, "Failed to create user")
	}

	return response.Created(c, fiber.Map{
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
		},
		"temporary_password": tempPassword,
	})
}

// ListStudents handles GET /api/admin/students
func (h *AdminHandler) ListStudents(c *fiber.Ctx) error {
	return h.listByRole(c, model.RoleStudent, "StudentProfile")
}

// ListSupervisors handles GET /api/admin/supervisors
func (h *AdminHandler) ListSupervisors(c *fiber.Ctx) error {
	return h.listByRole(c, model.RoleSupervisor, "SupervisorProfile")
}

func (h *AdminHandler) listByRole(c *fiber.Ctx, role string, profileAssoc string) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	query := h.db.Model(&model.User{}).Where("role = ?", role)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var users []model.User
	if err := query.Preload(profileAssoc).
		Order("last_name, first_name").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return response.Paginated(c, users, pagination)
}

// DeleteUser handles DELETE /api/admin/users/:id. Memberships, submissions,
// and the role profile go with the user in one transaction.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supervisor_id = ?", user.ID).Delete(&model.SupervisorCourse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", user.ID).Delete(&model.AssignmentSubmission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.StudentProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.SupervisorProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.AdminProfile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		log.Printf("Failed to delete user %d: %v", user.ID, err)
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}
