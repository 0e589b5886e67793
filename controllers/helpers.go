package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/services"
	"github.com/kendall-kelly/repair-shop-api/utils"
)

// parseID reads a positive integer path parameter
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, utils.NewFieldError(param, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// parseQueryID reads an optional positive integer query parameter; zero means absent
func parseQueryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, utils.NewFieldError(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds the request body and writes the validation envelope on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.RespondError(c, utils.BindingError(err))
		return false
	}
	return true
}

// pageData builds the data block of a paginated list response
func pageData(key string, rows interface{}, page utils.Pagination, total int64) gin.H {
	meta := page.Meta(total)
	return gin.H{
		key:           rows,
		"totalCount":  meta.TotalCount,
		"totalPages":  meta.TotalPages,
		"currentPage": meta.CurrentPage,
		"limit":       meta.Limit,
	}
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// isUniqueViolation detects duplicate key errors (works with PostgreSQL, MySQL and SQLite)
func isUniqueViolation(err error) bool {
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "unique")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func currentConfig() *config.Config {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{TransitionPolicy: "open"}
}

func newTokenService() *services.TokenService {
	cfg := currentConfig()
	return services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.StaffTokenTTL, cfg.ClientTokenTTL)
}

func newOrderService() *services.OrderService {
	return services.NewOrderService(config.GetDB(), currentConfig().Policy())
}

func newRequestService() *services.RequestService {
	return services.NewRequestService(config.GetDB(), newOrderService())
}
