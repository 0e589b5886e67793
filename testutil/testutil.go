package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// RunWithTestEnvironment is a TestMain body: it refuses to run unless GO_ENV=test
func RunWithTestEnvironment(m *testing.M) {
	env := os.Getenv("GO_ENV")
	if env != "test" {
		fmt.Fprintf(os.Stderr, "\nSAFETY CHECK FAILED: tests must run with GO_ENV=test (current: %q)\n"+
			"Run: GO_ENV=test go test ./...\n\n", env)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// NewTestDB opens a migrated in-memory sqlite database and installs it as the global DB
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Each connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	config.SetDB(db)

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// TestConfig returns a configuration suitable for tests
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseURL:        ":memory:",
		DBDriver:           config.DriverSQLite,
		Port:               "8080",
		GoEnv:              "test",
		JWTSecret:          "test-secret-key-that-is-long-enough",
		JWTIssuer:          "repair-shop-api",
		StaffTokenTTL:      24 * time.Hour,
		ClientTokenTTL:     30 * 24 * time.Hour,
		TransitionPolicy:   "open",
		LogLevel:           "error",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		AWSRegion:          "us-east-1",
		PublicURL:          "http://localhost:3000",
		DefaultLanguage:    "en",
	}
}
