package app

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/edupoint/thesis-portal-api/api"
	"github.com/edupoint/thesis-portal-api/config"
	"github.com/edupoint/thesis-portal-api/database"
	"github.com/edupoint/thesis-portal-api/router"
	"github.com/edupoint/thesis-portal-api/services/cron"
	"github.com/edupoint/thesis-portal-api/services/storage"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Seed the bootstrap admin account (no-op when one exists)
	if err := database.NewSeeder(store.GetDB()).SeedAll(); err != nil {
		print("Warning: failed to seed admin account\n")
		print("Error: ", err.Error(), "\n")
	}

	// Submission file storage, with an optional object storage mirror
	var spaces *storage.SpacesClient
	if getEnv.SPACES_BUCKET != "" {
		spaces, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
		})
		if err != nil {
			print("Warning: failed to configure object storage mirror\n")
			print("Error: ", err.Error(), "\n")
			spaces = nil
		}
	}

	uploads, err := storage.NewSubmissionStorage(getEnv.UPLOAD_DIR, spaces)
	if err != nil {
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		var db *gorm.DB = store.GetDB()
		cronManager = cron.NewCronManager(db, uploads)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Serve submission files from the uploads directory
	app.Static("/uploads", uploads.Dir())

	// Setup Routes
	router.SetupRoutes(app, store, uploads)

	// Get the PORT & Start the Server
	return server.Run()

}
