package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/edupoint/thesis-portal-api/model"
	"github.com/edupoint/thesis-portal-api/utils/auth"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}

// SeedAdminUser creates the bootstrap admin account from ADMIN_EMAIL /
// ADMIN_PASSWORD. Skipped when an admin already exists or the variables are
// unset.
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// User and profile go in together, same as the registration flow.
	return s.db.Transaction(func(tx *gorm.DB) error {
		admin := &model.User{
			Email:        adminEmail,
			PasswordHash: passwordHash,
			FirstName:    "System",
			LastName:     "Administrator",
			Role:         model.RoleAdmin,
		}

		if err := tx.Create(admin).Error; err != nil {
			return err
		}

		profile := &model.AdminProfile{
			UserID:   admin.ID,
			Position: "System Administrator",
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		log.Printf("Created admin user: %s\n", admin.Email)
		return nil
	})
}
