package course

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/edupoint/thesis-portal-api/model"
	"github.com/edupoint/thesis-portal-api/utils/middleware"
	"github.com/edupoint/thesis-portal-api/utils/response"
)

// EnrollmentRequest identifies the (student, course) pair to link or unlink
type EnrollmentRequest struct {
	StudentID uint `json:"student_id" validate:"required,min=1"`
	CourseID  uint `json:"course_id" validate:"required,min=1"`
}

// EnrollStudent handles POST /api/courses/enroll (supervisor or admin)
func (h *CourseHandler) EnrollStudent(c *fiber.Ctx) error {
	var req EnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var student model.User
	if err := h.db.First(&student, req.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}
	if student.Role != model.RoleStudent {
		return response.BadRequest(c, "User is not a student")
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// The composite unique index settles a concurrent duplicate enroll.
	enrollment := model.Enrollment{
		UserID:   req.StudentID,
		CourseID: req.CourseID,
	}
	if err := h.db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Error(c, fiber.StatusConflict, "Student is already enrolled in this course", response.CodeAlreadyEnrolled)
		}
		log.Printf("Failed to enroll student %d in course %d: %v", req.StudentID, req.CourseID, err)
		return response.InternalServerError(c, "Failed to enroll student")
	}

	return response.Created(c, enrollment)
}

// UnenrollStudent handles DELETE /api/courses/enroll (supervisor or admin)
func (h *CourseHandler) UnenrollStudent(c *fiber.Ctx) error {
	var req EnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result := h.db.Where("user_id = ? AND course_id = ?", req.StudentID, req.CourseID).
		Delete(&model.Enrollment{})
	if result.Error != nil {
		log.Printf("Failed to unenroll student %d from course %d: %v", req.StudentID, req.CourseID, result.Error)
		return response.InternalServerError(c, "Failed to unenroll student")
	}
	if result.RowsAffected == 0 {
		return response.Error(c, fiber.StatusNotFound, "Student is not enrolled in this course", response.CodeNotEnrolled)
	}

	return response.SuccessWithMessage(c, "Student unenrolled successfully", nil)
}

// ListEnrolledCourses handles GET /api/courses/enrolled (student). Returns
// the caller's own courses.
func (h *CourseHandler) ListEnrolledCourses(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var enrollments []model.Enrollment
	if err := h.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch enrollments")
	}

	courses := make([]model.Course, 0, len(enrollments))
	for _, e := range enrollments {
		courses = append(courses, e.Course)
	}

	return response.Success(c, courses)
}

// AssignSupervisor handles POST /api/courses/:id/supervisors (admin only)
func (h *CourseHandler) AssignSupervisor(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req struct {
		SupervisorID uint `json:"supervisor_id" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var supervisor model.User
	if err := h.db.First(&supervisor, req.SupervisorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Supervisor not found")
		}
		return response.InternalServerError(c, "Failed to fetch supervisor")
	}
	if supervisor.Role != model.RoleSupervisor {
		return response.BadRequest(c, "User is not a supervisor")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	link := model.SupervisorCourse{
		SupervisorID: req.SupervisorID,
		CourseID:     uint(courseID),
	}
	if err := h.db.Create(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Error(c, fiber.StatusConflict, "Supervisor is already assigned to this course", response.CodeAlreadyAssigned)
		}
		log.Printf("Failed to assign supervisor %d to course %d: %v", req.SupervisorID, courseID, err)
		return response.InternalServerError(c, "Failed to assign supervisor")
	}

	return response.Created(c, link)
}

// RemoveSupervisor handles DELETE /api/courses/:id/supervisors/:supervisorId (admin only)
func (h *CourseHandler) RemoveSupervisor(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}
	supervisorID, err := strconv.ParseUint(c.Params("supervisorId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid supervisor ID")
	}

	result := h.db.Where("supervisor_id = ? AND course_id = ?", supervisorID, courseID).
		Delete(&model.SupervisorCourse{})
	if result.Error != nil {
		log.Printf("Failed to remove supervisor %d from course %d: %v", supervisorID, courseID, result.Error)
		return response.InternalServerError(c, "Failed to remove supervisor")
	}
	if result.RowsAffected == 0 {
		return response.Error(c, fiber.StatusNotFound, "Supervisor is not assigned to this course", response.CodeNotAssigned)
	}

	return response.SuccessWithMessage(c, "Supervisor removed successfully", nil)
}
