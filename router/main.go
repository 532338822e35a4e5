package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/edupoint/thesis-portal-api/database"
	"github.com/edupoint/thesis-portal-api/handlers"
	admin_handlers "github.com/edupoint/thesis-portal-api/handlers/admin"
	assignment_handlers "github.com/edupoint/thesis-portal-api/handlers/assignment"
	auth_handlers "github.com/edupoint/thesis-portal-api/handlers/auth"
	course_handlers "github.com/edupoint/thesis-portal-api/handlers/course"
	"github.com/edupoint/thesis-portal-api/model"
	"github.com/edupoint/thesis-portal-api/services/storage"
	"github.com/edupoint/thesis-portal-api/utils"
	"github.com/edupoint/thesis-portal-api/utils/auth"
	"github.com/edupoint/thesis-portal-api/utils/cache"
	"github.com/edupoint/thesis-portal-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store database.Storage, uploads *storage.SubmissionStorage) {
	// Get JWT secret from environment
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "thesis-portal-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret: jwtSecret,
		Expiry: 24 * time.Hour, // Access token expires in 24 hours
		Issuer: jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db := store.GetDB()

	// Initialize Redis cache for brute force protection
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil && err == nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	adminHandler := admin_handlers.NewAdminHandler(db)
	courseHandler := course_handlers.NewCourseHandler(db)
	assignmentHandler := assignment_handlers.NewAssignmentHandler(db, uploads)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API group
	api := app.Group("/api")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)

	// Admin user management (admin only)
	adminGroup := api.Group("/admin", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin))
	adminGroup.Post("/users", adminHandler.CreateUser)           // Admin only: Create user with temporary password
	adminGroup.Get("/students", adminHandler.ListStudents)       // Admin only: List students
	adminGroup.Get("/supervisors", adminHandler.ListSupervisors) // Admin only: List supervisors
	adminGroup.Delete("/users/:id", adminHandler.DeleteUser)     // Admin only: Delete user and memberships

	// Courses routes (all protected)
	courses := api.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.ListCourses) // Any role: List courses

	// Registered before the :id routes so "enrolled" and "enroll" are not
	// swallowed by the :id parameter.
	courses.Get("/enrolled", authMiddleware.RequireRole(model.RoleStudent), courseHandler.ListEnrolledCourses)
	courses.Post("/enroll", authMiddleware.RequireRole(model.RoleSupervisor, model.RoleAdmin), courseHandler.EnrollStudent)
	courses.Delete("/enroll", authMiddleware.RequireRole(model.RoleSupervisor, model.RoleAdmin), courseHandler.UnenrollStudent)

	courses.Post("/", authMiddleware.RequireRole(model.RoleAdmin), courseHandler.CreateCourse)      // Admin only: Create course
	courses.Delete("/:id", authMiddleware.RequireRole(model.RoleAdmin), courseHandler.DeleteCourse) // Admin only: Delete course
	courses.Post("/:id/supervisors", authMiddleware.RequireRole(model.RoleAdmin), courseHandler.AssignSupervisor)
	courses.Delete("/:id/supervisors/:supervisorId", authMiddleware.RequireRole(model.RoleAdmin), courseHandler.RemoveSupervisor)
	courses.Get("/:id/assignments", authMiddleware.RequireRole(model.RoleStudent), assignmentHandler.ListCourseAssignments)
	courses.Get("/:id", courseHandler.GetCourse) // Any role: Get course by ID

	// Student search (any authenticated role)
	api.Get("/students/search", authMiddleware.Required(), courseHandler.SearchStudents)

	// Assignments routes (all protected)
	assignments := api.Group("/assignments", authMiddleware.Required())
	assignments.Post("/", authMiddleware.RequireRole(model.RoleSupervisor), assignmentHandler.CreateAssignment)
	assignments.Post("/:id/submit", authMiddleware.RequireRole(model.RoleStudent), assignmentHandler.SubmitAssignment)
	assignments.Post("/submissions/:id/grade", authMiddleware.RequireRole(model.RoleSupervisor), assignmentHandler.GradeSubmission)
}
