package models

import "github.com/shopspring/decimal"

// DeviceType is reference data such as "Smartphone" or "Laptop"
type DeviceType struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName specifies the table name for the DeviceType model
func (DeviceType) TableName() string {
	return "device_types"
}

// Brand is reference data for device manufacturers
type Brand struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

// TableName specifies the table name for the Brand model
func (Brand) TableName() string {
	return "brands"
}

// Device is a concrete device brought in for repair
type Device struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TypeID       uint        `gorm:"not null;index" json:"type_id"`
	Type         *DeviceType `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	BrandID      uint        `gorm:"not null;index" json:"brand_id"`
	Brand        *Brand      `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Model        string      `gorm:"not null" json:"model"`
	SerialNumber string      `json:"serial_number"`
}

// TableName specifies the table name for the Device model
func (Device) TableName() string {
	return "devices"
}

// Service is a billable repair service from the price list
type Service struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationDays int             `gorm:"not null;default:1" json:"duration_days"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// SparePart is a stocked part that can be consumed by orders
type SparePart struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"not null" json:"name"`
	CompatibleModels string          `gorm:"type:text" json:"compatible_models"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity         int             `gorm:"not null;default:0" json:"quantity"` // units in stock
}

// TableName specifies the table name for the SparePart model
func (SparePart) TableName() string {
	return "spare_parts"
}
