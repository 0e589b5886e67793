package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreatePartRequest represents the request body for a new spare part
type CreatePartRequest struct {
	Name             string           `json:"name" binding:"required"`
	CompatibleModels string           `json:"compatible_models"`
	Price            *decimal.Decimal `json:"price" binding:"required"`
	Quantity         int              `json:"quantity" binding:"gte=0"`
}

// UpdatePartRequest represents the request body for updating a spare part; nil fields are unchanged
type UpdatePartRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1"`
	CompatibleModels *string          `json:"compatible_models"`
	Price            *decimal.Decimal `json:"price"`
	Quantity         *int             `json:"quantity" binding:"omitempty,gte=0"`
}

func loadPart(c *gin.Context, id uint) (*models.SparePart, bool) {
	var part models.SparePart
	if err := config.GetDB().WithContext(c.Request.Context()).First(&part, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NewNotFoundError("Spare part"))
			return nil, false
		}
		utils.RespondError(c, utils.NewInternalError("Failed to load spare part", err))
		return nil, false
	}
	return &part, true
}

// ListParts handles GET /api/v1/parts - paginated, optional name search
func ListParts(c *gin.Context) {
	page := utils.ParsePagination(c)
	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.SparePart{})
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to count spare parts", err))
		return
	}

	var parts []models.SparePart
	if err := query.Order("name ASC").Order("id ASC").Limit(page.Limit).Offset(page.Offset()).Find(&parts).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to load spare parts", err))
		return
	}

	utils.RespondOK(c, pageData("parts", parts, page, total))
}

// CreatePart handles POST /api/v1/parts
func CreatePart(c *gin.Context) {
	var req CreatePartRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validatePrice(req.Price); err != nil {
		utils.RespondError(c, err)
		return
	}

	part := models.SparePart{
		Name:             req.Name,
		CompatibleModels: req.CompatibleModels,
		Price:            *req.Price,
		Quantity:         req.Quantity,
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&part).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to create spare part", err))
		return
	}
	utils.RespondCreated(c, part)
}

// UpdatePart handles PUT /api/v1/parts/:id
func UpdatePart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdatePartRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validatePrice(req.Price); err != nil {
		utils.RespondError(c, err)
		return
	}

	part, ok := loadPart(c, id)
	if !ok {
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.CompatibleModels != nil {
		updates["compatible_models"] = *req.CompatibleModels
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if len(updates) > 0 {
		if err := config.GetDB().WithContext(c.Request.Context()).Model(part).Updates(updates).Error; err != nil {
			utils.RespondError(c, utils.NewInternalError("Failed to update spare part", err))
			return
		}
	}

	part, ok = loadPart(c, id)
	if !ok {
		return
	}
	utils.RespondOK(c, part)
}
