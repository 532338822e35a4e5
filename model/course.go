package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a taught course (e.g., "CS101").
type Course struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Code      string         `gorm:"uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"not null" json:"name"`
	Category  string         `gorm:"type:varchar(100)" json:"category"`

	// Relationships
	Enrollments []Enrollment       `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Supervisors []SupervisorCourse `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Assignments []Assignment       `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
}

// Enrollment links a student to a course. The composite unique index is the
// authority on membership: concurrent enrolls for the same pair are settled
// by the constraint, not by application locking.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollments_user_course" json:"course_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// SupervisorCourse links a supervisor to a course they oversee. Same
// uniqueness contract as Enrollment.
type SupervisorCourse struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SupervisorID uint      `gorm:"not null;uniqueIndex:idx_supervisor_courses_pair" json:"supervisor_id"`
	CourseID     uint      `gorm:"not null;uniqueIndex:idx_supervisor_courses_pair" json:"course_id"`
	AssignedAt   time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	// Relationships
	Supervisor User   `gorm:"foreignKey:SupervisorID;constraint:OnDelete:CASCADE" json:"-"`
	Course     Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
