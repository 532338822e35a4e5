package assignment

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/edupoint/thesis-portal-api/model"
	"github.com/edupoint/thesis-portal-api/services/storage"
	"github.com/edupoint/thesis-portal-api/utils/middleware"
	"github.com/edupoint/thesis-portal-api/utils/response"
	"github.com/edupoint/thesis-portal-api/utils/validation"
)

// AssignmentHandler handles assignment and submission requests
type AssignmentHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	storage   *storage.SubmissionStorage
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(db *gorm.DB, store *storage.SubmissionStorage) *AssignmentHandler {
	return &AssignmentHandler{
		db:        db,
		validator: validation.NewValidator(),
		storage:   store,
	}
}

// CreateAssignmentRequest represents the request body for creating an assignment
type CreateAssignmentRequest struct {
	CourseID     uint   `json:"course_id" validate:"required,min=1"`
	Title        string `json:"title" validate:"required,min=3,max=255"`
	Instructions string `json:"instructions" validate:"omitempty,max=10000"`
}

// supervisorAssignedToCourse reports whether the supervisor is linked to the
// course.
func (h *AssignmentHandler) supervisorAssignedToCourse(supervisorID, courseID uint) (bool, error) {
	var count int64
	err := h.db.Model(&model.SupervisorCourse{}).
		Where("supervisor_id = ? AND course_id = ?", supervisorID, courseID).
		Count(&count).Error
	return count > 0, err
}

// CreateAssignment handles POST /api/assignments (supervisor only). The
// supervisor must be assigned to the target course.
func (h *AssignmentHandler) CreateAssignment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	assigned, err := h.supervisorAssignedToCourse(userID, req.CourseID)
	if err != nil {
		return response.InternalServerError(c, "Failed to verify course assignment")
	}
	if !assigned {
		return response.Forbidden(c, "You are not assigned to this course")
	}

	assignment := model.Assignment{
		CourseID:     req.CourseID,
		Title:        validation.SanitizeString(req.Title),
		Instructions: req.Instructions,
	}
	if err := h.db.Create(&assignment).Error; err != nil {
		log.Printf("Failed to create assignment for course %d: %v", req.CourseID, err)
		return response.InternalServerError(c, "Failed to create assignment")
	}

	return response.Created(c, assignment)
}

// AssignmentWithSubmission pairs an assignment with the calling student's own
// submission state.
type AssignmentWithSubmission struct {
	model.Assignment
	Submission *model.AssignmentSubmission `json:"submission,omitempty"`
}

// ListCourseAssignments handles GET /api/courses/:id/assignments (student
// only). The student must be enrolled; each assignment carries the student's
// own submission when one exists.
func (h *AssignmentHandler) ListCourseAssignments(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	var enrolled int64
	if err := h.db.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&enrolled).Error; err != nil {
		return response.InternalServerError(c, "Failed to verify enrollment")
	}
	if enrolled == 0 {
		return response.Error(c, fiber.StatusForbidden, "You are not enrolled in this course", response.CodeNotEnrolled)
	}

	var assignments []model.Assignment
	if err := h.db.Where("course_id = ?", courseID).
		Order("created_at").
		Find(&assignments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch assignments")
	}

	var submissions []model.AssignmentSubmission
	if len(assignments) > 0 {
		ids := make([]uint, 0, len(assignments))
		for _, a := range assignments {
			ids = append(ids, a.ID)
		}
		if err := h.db.Where("assignment_id IN ? AND student_id = ?", ids, userID).
			Find(&submissions).Error; err != nil {
			return response.InternalServerError(c, "Failed to fetch submissions")
		}
	}

	byAssignment := make(map[uint]*model.AssignmentSubmission, len(submissions))
	for i := range submissions {
		byAssignment[submissions[i].AssignmentID] = &submissions[i]
	}

	result := make([]AssignmentWithSubmission, 0, len(assignments))
	for _, a := range assignments {
		result = append(result, AssignmentWithSubmission{
			Assignment: a,
			Submission: byAssignment[a.ID],
		})
	}

	return response.Success(c, result)
}
