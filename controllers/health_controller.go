package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/utils"
)

// HealthCheck handles GET /api/v1/health
func HealthCheck(c *gin.Context) {
	utils.RespondOK(c, gin.H{
		"status":  "ok",
		"message": "Repair Shop API is running",
	})
}

// DatabaseStatus handles GET /api/v1/database/status - checks database connectivity
func DatabaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		utils.RespondError(c, utils.NewUnavailableError("DATABASE_ERROR", "Failed to get database instance"))
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		utils.RespondError(c, utils.NewUnavailableError("DATABASE_CONNECTION_ERROR", "Database connection failed"))
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to query tables", err))
		return
	}

	utils.RespondOK(c, gin.H{
		"status":          "connected",
		"driver":          db.Dialector.Name(),
		"tables":          tables,
		"openConnections": sqlDB.Stats().OpenConnections,
	})
}
