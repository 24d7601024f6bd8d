package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/pyfast/backend/src/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var migrationPath = "file://" + filepath.Join(utils.FindProjectRoot(), "migrations")

// SetupTestDB connects to the database named by TEST_DB_URL and brings the
// schema up to date. Tests needing a real database are skipped when the
// variable is not set.
func SetupTestDB(t *testing.T) *gorm.DB {
	_ = godotenv.Load(filepath.Join(utils.FindProjectRoot(), ".env"))

	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL is not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	migration, err := migrate.New(migrationPath, dsn)
	if err != nil {
		t.Fatalf("failed to create migrate: %v", err)
	}

	if err := migration.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("failed to run migration up: %v", err)
	}

	return db
}

// CleanupTestDB removes test rows but keeps the schema for the next run.
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	if err := db.Exec("DELETE FROM challenges").Error; err != nil {
		t.Logf("Warning: Failed to clean up challenges: %v", err)
	}
	if err := db.Exec("DELETE FROM challenge_quotas").Error; err != nil {
		t.Logf("Warning: Failed to clean up challenge quotas: %v", err)
	}
}
