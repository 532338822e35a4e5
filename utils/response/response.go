package response

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the API.
const (
	CodeAuthenticationRequired   = "AUTHENTICATION_REQUIRED"
	CodeInvalidToken             = "INVALID_TOKEN"
	CodeInsufficientPermissions  = "INSUFFICIENT_PERMISSIONS"
	CodeDuplicateEmail           = "DUPLICATE_EMAIL"
	CodeDuplicateCourseCode      = "DUPLICATE_COURSE_CODE"
	CodeAlreadyEnrolled          = "ALREADY_ENROLLED"
	CodeNotEnrolled              = "NOT_ENROLLED"
	CodeAlreadyAssigned          = "ALREADY_ASSIGNED"
	CodeNotAssigned              = "NOT_ASSIGNED"
	CodeUnsupportedFileType      = "UNSUPPORTED_FILE_TYPE"
	CodeFileTooLarge             = "FILE_TOO_LARGE"
	CodeInvalidGrade             = "INVALID_GRADE"
	CodeBadRequest               = "BAD_REQUEST"
	CodeNotFound                 = "NOT_FOUND"
	CodeConflict                 = "CONFLICT"
	CodeValidationError          = "VALIDATION_ERROR"
	CodeTooManyRequests          = "TOO_MANY_REQUESTS"
	CodeInternalError            = "INTERNAL_ERROR"
)

// Response represents a standardized API response
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Success    bool           `json:"success"`
	Data       interface{}    `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage returns a successful response with a message
func SuccessWithMessage(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created returns a 201 Created response
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: "Resource created successfully",
		Data:    data,
	})
}

// Error returns an error response with the given status and code
func Error(c *fiber.Ctx, statusCode int, message string, code string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// ErrorWithDetails returns an error response with details
func ErrorWithDetails(c *fiber.Ctx, statusCode int, message string, code string, details string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message, CodeBadRequest)
}

// Unauthorized returns a 401 Unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Unauthorized access"
	}
	return Error(c, fiber.StatusUnauthorized, message, CodeAuthenticationRequired)
}

// InvalidToken returns a 403 Forbidden response for invalid or expired tokens
func InvalidToken(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Invalid or expired token"
	}
	return Error(c, fiber.StatusForbidden, message, CodeInvalidToken)
}

// Forbidden returns a 403 Forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Access forbidden"
	}
	return Error(c, fiber.StatusForbidden, message, CodeInsufficientPermissions)
}

func insufficientPermissionsMessage(role string, required []string) string {
	return fmt.Sprintf("Insufficient permissions: role %s is not allowed, requires one of %s",
		role, strings.Join(required, ", "))
}

// InsufficientPermissions returns a 403 response naming the caller's role and
// the roles the endpoint accepts.
func InsufficientPermissions(c *fiber.Ctx, role string, required []string) error {
	return Error(c, fiber.StatusForbidden, insufficientPermissionsMessage(role, required), CodeInsufficientPermissions)
}

// NotFound returns a 404 Not Found response
func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return Error(c, fiber.StatusNotFound, message, CodeNotFound)
}

// Conflict returns a 409 Conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message, CodeConflict)
}

// TooManyRequests returns a 429 Too Many Requests response
func TooManyRequests(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Too many requests"
	}
	return Error(c, fiber.StatusTooManyRequests, message, CodeTooManyRequests)
}

// ValidationError returns a 422 Unprocessable Entity response for validation errors
func ValidationError(c *fiber.Ctx, err error) error {
	return ErrorWithDetails(c, fiber.StatusUnprocessableEntity,
		"Validation failed", CodeValidationError, err.Error())
}

// InternalServerError returns a 500 Internal Server Error response. Store
// errors are logged by the caller; the message here stays generic.
func InternalServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return Error(c, fiber.StatusInternalServerError, message, CodeInternalError)
}

// Paginated returns a paginated response
func Paginated(c *fiber.Ctx, data interface{}, pagination PaginationMeta) error {
	return c.Status(fiber.StatusOK).JSON(PaginatedResponse{
		Success:    true,
		Data:       data,
		Pagination: pagination,
	})
}

// CalculatePagination calculates pagination metadata
func CalculatePagination(page, limit int, total int64) PaginationMeta {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return PaginationMeta{
		CurrentPage: page,
		PerPage:     limit,
		Total:       total,
		TotalPages:  totalPages,
	}
}
