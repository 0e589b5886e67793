package models

import "time"

// RequestStatus is the triage state of a repair request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Valid reports whether s is a known request status
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// RepairRequest is a customer submission awaiting staff triage.
// Device fields are free text and not linked to the catalog.
type RepairRequest struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	ClientID           uint          `gorm:"not null;index" json:"client_id"`
	Client             *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	DeviceType         string        `gorm:"not null" json:"device_type"`
	DeviceBrand        string        `gorm:"not null" json:"device_brand"`
	DeviceModel        string        `gorm:"not null" json:"device_model"`
	ProblemDescription string        `gorm:"type:text;not null" json:"problem_description"`
	ContactPhone       string        `gorm:"not null" json:"contact_phone"`
	ContactEmail       string        `json:"contact_email"`
	Status             RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	OrderID            *uint         `gorm:"index" json:"order_id"` // order created from this request
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the RepairRequest model
func (RepairRequest) TableName() string {
	return "repair_requests"
}
