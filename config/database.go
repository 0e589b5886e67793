package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ConnectDatabase opens the database selected by cfg.DBDriver and installs it as the global DB
func ConnectDatabase(cfg *Config) error {
	dialector, err := Dialector(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	gormConfig := &gorm.Config{}
	if cfg.IsProduction() {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite serializes writers; a single connection avoids "database is locked"
	if cfg.DBDriver == DriverSQLite {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	DB = db
	zap.L().Info("database connection established", zap.String("driver", cfg.DBDriver))
	return nil
}

// Dialector returns the gorm dialector for a driver name
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case DriverPostgres, "":
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the database instance, used by tests and the CLI
func SetDB(db *gorm.DB) {
	DB = db
}

// Migrate creates or updates every table and seeds the status lookup
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return SeedStatuses(db)
}

// SeedStatuses upserts the fixed order status rows
func SeedStatuses(db *gorm.DB) error {
	statuses := models.DefaultOrderStatuses()
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
	}).Create(&statuses).Error
	if err != nil {
		return fmt.Errorf("failed to seed order statuses: %w", err)
	}
	return nil
}

// SeedAdmin creates the bootstrap admin account if no user with that email exists.
// It reports whether a new account was created.
func SeedAdmin(db *gorm.DB, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required to seed an admin")
	}

	var existing models.User
	err := db.Unscoped().Where("email = ?", strings.ToLower(email)).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.User{
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Name:         "Administrator",
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}
