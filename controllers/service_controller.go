package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateServiceRequest represents the request body for a new price-list service
type CreateServiceRequest struct {
	Name         string           `json:"name" binding:"required"`
	Description  string           `json:"description"`
	Price        *decimal.Decimal `json:"price" binding:"required"`
	DurationDays *int             `json:"duration_days" binding:"omitempty,gte=1"`
}

// UpdateServiceRequest represents the request body for updating a service; nil fields are unchanged
type UpdateServiceRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	DurationDays *int             `json:"duration_days" binding:"omitempty,gte=1"`
}

func validatePrice(price *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return utils.NewFieldError("price", "must be greater than or equal to 0")
	}
	return nil
}

func loadService(c *gin.Context, id uint) (*models.Service, bool) {
	var service models.Service
	if err := config.GetDB().WithContext(c.Request.Context()).First(&service, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NewNotFoundError("Service"))
			return nil, false
		}
		utils.RespondError(c, utils.NewInternalError("Failed to load service", err))
		return nil, false
	}
	return &service, true
}

// ListServices handles GET /api/v1/services - paginated, optional name search
func ListServices(c *gin.Context) {
	page := utils.ParsePagination(c)
	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.Service{})
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to count services", err))
		return
	}

	var services []models.Service
	if err := query.Order("name ASC").Order("id ASC").Limit(page.Limit).Offset(page.Offset()).Find(&services).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to load services", err))
		return
	}

	utils.RespondOK(c, pageData("services", services, page, total))
}

// GetService handles GET /api/v1/services/:id
func GetService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	service, ok := loadService(c, id)
	if !ok {
		return
	}
	utils.RespondOK(c, service)
}

// CreateService handles POST /api/v1/services
func CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validatePrice(req.Price); err != nil {
		utils.RespondError(c, err)
		return
	}

	service := models.Service{
		Name:         req.Name,
		Description:  req.Description,
		Price:        *req.Price,
		DurationDays: 1,
	}
	if req.DurationDays != nil {
		service.DurationDays = *req.DurationDays
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to create service", err))
		return
	}
	utils.RespondCreated(c, service)
}

// UpdateService handles PUT /api/v1/services/:id.
// Price changes never touch prices already attached to orders.
func UpdateService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validatePrice(req.Price); err != nil {
		utils.RespondError(c, err)
		return
	}

	service, ok := loadService(c, id)
	if !ok {
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DurationDays != nil {
		updates["duration_days"] = *req.DurationDays
	}
	if len(updates) > 0 {
		if err := config.GetDB().WithContext(c.Request.Context()).Model(service).Updates(updates).Error; err != nil {
			utils.RespondError(c, utils.NewInternalError("Failed to update service", err))
			return
		}
	}

	service, ok = loadService(c, id)
	if !ok {
		return
	}
	utils.RespondOK(c, service)
}

// DeleteService handles DELETE /api/v1/services/:id. Services attached to orders cannot be deleted.
func DeleteService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	service, ok := loadService(c, id)
	if !ok {
		return
	}

	err := config.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&models.OrderService{}).Where("service_id = ?", id).Count(&used).Error; err != nil {
			return utils.NewInternalError("Failed to check service usage", err)
		}
		if used > 0 {
			return utils.NewConflictError("SERVICE_IN_USE", "Service is used in orders and cannot be deleted")
		}
		if err := tx.Delete(service).Error; err != nil {
			return utils.NewInternalError("Failed to delete service", err)
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	zap.L().Info("service deleted", zap.Uint("service_id", id))
	utils.RespondOK(c, gin.H{"message": "Service deleted"})
}
