package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/services"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"gorm.io/gorm"
)

// UpdateDeviceRequest represents the request body for updating a device; nil fields are unchanged
type UpdateDeviceRequest struct {
	TypeID       *uint   `json:"type_id" binding:"omitempty,gt=0"`
	BrandID      *uint   `json:"brand_id" binding:"omitempty,gt=0"`
	Model        *string `json:"model" binding:"omitempty,min=1"`
	SerialNumber *string `json:"serial_number"`
}

// CreateDeviceTypeRequest represents the request body for a new device type
type CreateDeviceTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateBrandRequest represents the request body for a new brand
type CreateBrandRequest struct {
	Name string `json:"name" binding:"required"`
}

func loadDevice(c *gin.Context, id uint) (*models.Device, bool) {
	var device models.Device
	err := config.GetDB().WithContext(c.Request.Context()).
		Preload("Type").Preload("Brand").
		First(&device, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NewNotFoundError("Device"))
			return nil, false
		}
		utils.RespondError(c, utils.NewInternalError("Failed to load device", err))
		return nil, false
	}
	return &device, true
}

// ListDevices handles GET /api/v1/devices - filters type, brand and a model search
func ListDevices(c *gin.Context) {
	typeID, ok := parseQueryID(c, "type")
	if !ok {
		return
	}
	brandID, ok := parseQueryID(c, "brand")
	if !ok {
		return
	}
	page := utils.ParsePagination(c)

	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.Device{})
	if typeID != 0 {
		query = query.Where("type_id = ?", typeID)
	}
	if brandID != 0 {
		query = query.Where("brand_id = ?", brandID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(model) LIKE ?", likePattern(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to count devices", err))
		return
	}

	var devices []models.Device
	err := query.Preload("Type").Preload("Brand").
		Order("model ASC").Order("id ASC").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&devices).Error
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to load devices", err))
		return
	}

	utils.RespondOK(c, pageData("devices", devices, page, total))
}

// GetDevice handles GET /api/v1/devices/:id
func GetDevice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	device, ok := loadDevice(c, id)
	if !ok {
		return
	}
	utils.RespondOK(c, device)
}

// CreateDevice handles POST /api/v1/devices
func CreateDevice(c *gin.Context) {
	var req services.NewDeviceInput
	if !bindJSON(c, &req) {
		return
	}

	device, err := services.CreateDevice(config.GetDB().WithContext(c.Request.Context()), req, "")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	created, ok := loadDevice(c, device.ID)
	if !ok {
		return
	}
	utils.RespondCreated(c, created)
}

// UpdateDevice handles PUT /api/v1/devices/:id
func UpdateDevice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateDeviceRequest
	if !bindJSON(c, &req) {
		return
	}

	device, ok := loadDevice(c, id)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	typeID, brandID := device.TypeID, device.BrandID
	if req.TypeID != nil {
		typeID = *req.TypeID
	}
	if req.BrandID != nil {
		brandID = *req.BrandID
	}
	if err := services.ValidateDeviceRefs(db, typeID, brandID, ""); err != nil {
		utils.RespondError(c, err)
		return
	}

	updates := map[string]interface{}{"type_id": typeID, "brand_id": brandID}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.SerialNumber != nil {
		updates["serial_number"] = *req.SerialNumber
	}
	if err := db.Model(&models.Device{ID: device.ID}).Updates(updates).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to update device", err))
		return
	}

	device, ok = loadDevice(c, id)
	if !ok {
		return
	}
	utils.RespondOK(c, device)
}

// ListDeviceTypes handles GET /api/v1/devices/types
func ListDeviceTypes(c *gin.Context) {
	var types []models.DeviceType
	if err := config.GetDB().WithContext(c.Request.Context()).Order("name ASC").Find(&types).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to load device types", err))
		return
	}
	utils.RespondOK(c, types)
}

// CreateDeviceType handles POST /api/v1/devices/types
func CreateDeviceType(c *gin.Context) {
	var req CreateDeviceTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	deviceType := models.DeviceType{Name: req.Name, Description: req.Description}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&deviceType).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to create device type", err))
		return
	}
	utils.RespondCreated(c, deviceType)
}

// ListBrands handles GET /api/v1/devices/brands
func ListBrands(c *gin.Context) {
	var brands []models.Brand
	if err := config.GetDB().WithContext(c.Request.Context()).Order("name ASC").Find(&brands).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to load brands", err))
		return
	}
	utils.RespondOK(c, brands)
}

// CreateBrand handles POST /api/v1/devices/brands
func CreateBrand(c *gin.Context) {
	var req CreateBrandRequest
	if !bindJSON(c, &req) {
		return
	}

	brand := models.Brand{Name: req.Name}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&brand).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to create brand", err))
		return
	}
	utils.RespondCreated(c, brand)
}
