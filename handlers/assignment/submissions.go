package assignment

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edupoint/thesis-portal-api/model"
	"github.com/edupoint/thesis-portal-api/utils/middleware"
	"github.com/edupoint/thesis-portal-api/utils/pdfvalidation"
	"github.com/edupoint/thesis-portal-api/utils/response"
)

// MaxSubmissionSize is the upload cap for a submission file.
const MaxSubmissionSize = 10 * 1024 * 1024

var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// AllowedSubmissionExt reports whether the lowercased extension of name is
// accepted, and the content type it maps to.
func AllowedSubmissionExt(name string) (string, string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	contentType, ok := allowedExtensions[ext]
	return ext, contentType, ok
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// SubmitAssignment handles POST /api/assignments/:id/submit (student only).
// A resubmission replaces the existing row and file; the old file is removed
// only after the new row is committed.
func (h *AssignmentHandler) SubmitAssignment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	assignmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	var assignment model.Assignment
	if err := h.db.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to fetch assignment")
	}

	var enrolled int64
	if err := h.db.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, assignment.CourseID).
		Count(&enrolled).Error; err != nil {
		return response.InternalServerError(c, "Failed to verify enrollment")
	}
	if enrolled == 0 {
		return response.Error(c, fiber.StatusForbidden, "You are not enrolled in the assignment's course", response.CodeNotEnrolled)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A file upload is required")
	}

	ext, contentType, ok := AllowedSubmissionExt(file.Filename)
	if !ok {
		return response.Error(c, fiber.StatusBadRequest,
			"Unsupported file type, allowed: .pdf, .doc, .docx", response.CodeUnsupportedFileType)
	}
	if file.Size > MaxSubmissionSize {
		return response.Error(c, fiber.StatusBadRequest,
			"File exceeds the 10MB limit", response.CodeFileTooLarge)
	}

	content, err := readUpload(file)
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	if len(content) > MaxSubmissionSize {
		return response.Error(c, fiber.StatusBadRequest,
			"File exceeds the 10MB limit", response.CodeFileTooLarge)
	}

	if ext == ".pdf" {
		result, err := pdfvalidation.ValidatePDFBytes(content)
		if err != nil {
			return response.InternalServerError(c, "Failed to validate PDF")
		}
		if !result.Valid {
			return response.Error(c, fiber.StatusBadRequest,
				"File is not a valid PDF document", response.CodeUnsupportedFileType)
		}
	}

	// Fetch the prior row first so the replaced file can be cleaned up after
	// the new one is committed.
	var previous model.AssignmentSubmission
	hasPrevious := h.db.Where("assignment_id = ? AND student_id = ?", assignmentID, userID).
		First(&previous).Error == nil

	key := uuid.New().String() + ext
	publicPath, err := h.storage.Save(c.Context(), key, content, contentType)
	if err != nil {
		log.Printf("Failed to store submission file for assignment %d: %v", assignmentID, err)
		return response.InternalServerError(c, "Failed to store submission file")
	}

	now := time.Now()
	submission := model.AssignmentSubmission{
		AssignmentID: uint(assignmentID),
		StudentID:    userID,
		Status:       model.SubmissionStatusSubmitted,
		FilePath:     publicPath,
		FileName:     file.Filename,
		SubmittedAt:  now,
	}

	// Upsert on the (assignment, student) unique index: a concurrent double
	// submit collapses to one row. Resubmission clears any prior grade.
	err = h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       model.SubmissionStatusSubmitted,
			"grade":        nil,
			"feedback":     "",
			"file_path":    publicPath,
			"file_name":    file.Filename,
			"submitted_at": now,
			"updated_at":   now,
		}),
	}).Create(&submission).Error
	if err != nil {
		// The row did not land; the freshly written file is an orphan.
		if removeErr := h.storage.Remove(c.Context(), key); removeErr != nil {
			log.Printf("Failed to remove orphan upload %s: %v", key, removeErr)
		}
		log.Printf("Failed to record submission for assignment %d: %v", assignmentID, err)
		return response.InternalServerError(c, "Failed to record submission")
	}

	if hasPrevious && previous.FilePath != publicPath {
		oldKey := filepath.Base(previous.FilePath)
		if removeErr := h.storage.Remove(c.Context(), oldKey); removeErr != nil {
			log.Printf("Failed to remove replaced upload %s: %v", oldKey, removeErr)
		}
	}

	var saved model.AssignmentSubmission
	if err := h.db.Where("assignment_id = ? AND student_id = ?", assignmentID, userID).
		First(&saved).Error; err != nil {
		return response.InternalServerError(c, "Failed to load submission")
	}

	return response.Created(c, saved)
}

// GradeSubmissionRequest carries the grade and optional feedback. The grade
// pointer distinguishes a missing grade from a zero grade.
type GradeSubmissionRequest struct {
	Grade    *int   `json:"grade" validate:"required"`
	Feedback string `json:"feedback" validate:"omitempty,max=10000"`
}

// GradeSubmission handles POST /api/assignments/submissions/:id/grade
// (supervisor only). The supervisor must be assigned to the submission's
// course. Regrading an already graded submission is allowed.
func (h *AssignmentHandler) GradeSubmission(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	submissionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid submission ID")
	}

	var req GradeSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if *req.Grade < model.MinGrade || *req.Grade > model.MaxGrade {
		return response.Error(c, fiber.StatusBadRequest,
			"Grade must be between 0 and 100", response.CodeInvalidGrade)
	}

	var submission model.AssignmentSubmission
	if err := h.db.Preload("Assignment").First(&submission, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Submission not found")
		}
		return response.InternalServerError(c, "Failed to fetch submission")
	}

	assigned, err := h.supervisorAssignedToCourse(userID, submission.Assignment.CourseID)
	if err != nil {
		return response.InternalServerError(c, "Failed to verify course assignment")
	}
	if !assigned {
		return response.Forbidden(c, "You are not assigned to this submission's course")
	}

	submission.Status = model.SubmissionStatusGraded
	submission.Grade = req.Grade
	submission.Feedback = req.Feedback
	if err := h.db.Model(&submission).Updates(map[string]interface{}{
		"status":   model.SubmissionStatusGraded,
		"grade":    *req.Grade,
		"feedback": req.Feedback,
	}).Error; err != nil {
		log.Printf("Failed to grade submission %d: %v", submission.ID, err)
		return response.InternalServerError(c, "Failed to grade submission")
	}

	return response.SuccessWithMessage(c, "Submission graded successfully", submission)
}
