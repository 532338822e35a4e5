package course

import (
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/edupoint/thesis-portal-api/model"
	"github.com/edupoint/thesis-portal-api/utils/response"
)

// searchResultLimit bounds the result set of a student search.
const searchResultLimit = 25

// validSearchQuery requires at least 2 characters, counted as runes so a
// multibyte name prefix like "éa" passes and "é" alone does not.
func validSearchQuery(q string) bool {
	return utf8.RuneCountInString(q) >= 2
}

// SearchStudents handles GET /api/students/search?q= for any authenticated
// caller. Queries shorter than 2 characters are rejected to bound the scan.
func (h *CourseHandler) SearchStudents(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if !validSearchQuery(q) {
		return response.BadRequest(c, "Search query must be at least 2 characters")
	}

	pattern := "%" + q + "%"

	var students []model.User
	err := h.db.Model(&model.User{}).
		Joins("LEFT JOIN student_profiles ON student_profiles.user_id = users.id").
		Where("users.role = ?", model.RoleStudent).
		Where("users.first_name ILIKE ? OR users.last_name ILIKE ? OR student_profiles.student_number ILIKE ?",
			pattern, pattern, pattern).
		Preload("StudentProfile").
		Order("users.last_name, users.first_name").
		Limit(searchResultLimit).
		Find(&students).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to search students")
	}

	return response.Success(c, students)
}
