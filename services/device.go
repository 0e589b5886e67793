package services

import (
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"gorm.io/gorm"
)

// NewDeviceInput describes a catalog device registered on the fly
type NewDeviceInput struct {
	TypeID       uint   `json:"type_id" binding:"required"`
	BrandID      uint   `json:"brand_id" binding:"required"`
	Model        string `json:"model" binding:"required"`
	SerialNumber string `json:"serial_number"`
}

// ValidateDeviceRefs checks that the device type and brand exist.
// Field names are prefixed with prefix, e.g. "new_device.".
func ValidateDeviceRefs(db *gorm.DB, typeID, brandID uint, prefix string) error {
	var fields []utils.FieldError

	var count int64
	if err := db.Model(&models.DeviceType{}).Where("id = ?", typeID).Count(&count).Error; err != nil {
		return utils.NewInternalError("Failed to look up device type", err)
	}
	if count == 0 {
		fields = append(fields, utils.FieldError{Field: prefix + "type_id", Message: "device type does not exist"})
	}

	if err := db.Model(&models.Brand{}).Where("id = ?", brandID).Count(&count).Error; err != nil {
		return utils.NewInternalError("Failed to look up brand", err)
	}
	if count == 0 {
		fields = append(fields, utils.FieldError{Field: prefix + "brand_id", Message: "brand does not exist"})
	}

	if len(fields) > 0 {
		return utils.NewValidationError("Invalid request data", fields...)
	}
	return nil
}

// CreateDevice validates the references and inserts the device using db
func CreateDevice(db *gorm.DB, in NewDeviceInput, prefix string) (*models.Device, error) {
	if err := ValidateDeviceRefs(db, in.TypeID, in.BrandID, prefix); err != nil {
		return nil, err
	}
	device := &models.Device{
		TypeID:       in.TypeID,
		BrandID:      in.BrandID,
		Model:        in.Model,
		SerialNumber: in.SerialNumber,
	}
	if err := db.Create(device).Error; err != nil {
		return nil, utils.NewInternalError("Failed to create device", err)
	}
	return device, nil
}
