package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User roles. Role is fixed at creation time; there is no role-change flow.
const (
	RoleStudent    = "STUDENT"
	RoleSupervisor = "SUPERVISOR"
	RoleAdmin      = "ADMIN"
)

// ValidRole reports whether the given role tag is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleSupervisor || role == RoleAdmin
}

// User represents an account in the portal. Exactly one of the role profiles
// is populated, matching Role; user and profile are created in the same
// transaction.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	FirstName    string         `gorm:"not null" json:"first_name"`
	LastName     string         `gorm:"not null" json:"last_name"`
	Role         string         `gorm:"type:varchar(20);not null;index" json:"role"`

	// Relationships
	StudentProfile    *StudentProfile        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"student_profile,omitempty"`
	SupervisorProfile *SupervisorProfile     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"supervisor_profile,omitempty"`
	AdminProfile      *AdminProfile          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"admin_profile,omitempty"`
	Enrollments       []Enrollment           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	SupervisorCourses []SupervisorCourse     `gorm:"foreignKey:SupervisorID;constraint:OnDelete:CASCADE" json:"-"`
	Submissions       []AssignmentSubmission `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// StudentProfile holds the student-specific attributes of a STUDENT user.
type StudentProfile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	StudentNumber  string    `gorm:"type:varchar(50);not null;index" json:"student_number"`
	Department     string    `gorm:"type:varchar(100)" json:"department"`
	Program        string    `gorm:"type:varchar(100)" json:"program"`
	EnrollmentYear int       `json:"enrollment_year"`
}

// SupervisorProfile holds the supervisor-specific attributes of a SUPERVISOR user.
type SupervisorProfile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Department     string    `gorm:"type:varchar(100)" json:"department"`
	Specialization string    `gorm:"type:varchar(100)" json:"specialization"`
	Position       string    `gorm:"type:varchar(100)" json:"position"`
}

// AdminProfile holds the admin-specific attributes of an ADMIN user.
// Permissions is a free-form JSON list of permission tags.
type AdminProfile struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	UserID      uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Position    string         `gorm:"type:varchar(100)" json:"position"`
	Permissions datatypes.JSON `gorm:"type:jsonb" json:"permissions,omitempty"`
}
