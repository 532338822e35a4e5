package model

import (
	"time"

	"gorm.io/gorm"
)

// Submission lifecycle: PENDING -> SUBMITTED -> GRADED. Resubmission moves a
// submission back to SUBMITTED and refreshes the timestamp; regrading is
// allowed.
const (
	SubmissionStatusPending   = "PENDING"
	SubmissionStatusSubmitted = "SUBMITTED"
	SubmissionStatusGraded    = "GRADED"
)

// Grade bounds, inclusive.
const (
	MinGrade = 0
	MaxGrade = 100
)

// Assignment belongs to exactly one course.
type Assignment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID     uint           `gorm:"not null;index" json:"course_id"`
	Title        string         `gorm:"not null" json:"title"`
	Instructions string         `gorm:"type:text" json:"instructions"`

	// Relationships
	Course      Course                 `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Submissions []AssignmentSubmission `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// AssignmentSubmission is the at-most-one submission row per
// (assignment, student) pair. Resubmission updates the row in place.
type AssignmentSubmission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	AssignmentID uint      `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"assignment_id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"student_id"`
	Status       string    `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Grade        *int      `json:"grade,omitempty"`
	Feedback     string    `gorm:"type:text" json:"feedback,omitempty"`
	FilePath     string    `gorm:"not null" json:"file_path"`
	FileName     string    `gorm:"not null" json:"file_name"`
	SubmittedAt  time.Time `json:"submitted_at"`

	// Relationships
	Assignment Assignment `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"assignment,omitempty"`
	Student    User       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for AssignmentSubmission
func (AssignmentSubmission) TableName() string {
	return "assignment_submissions"
}
