package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderComment is a message in an order conversation between the shop and the client.
// Exactly one of StaffID or ClientID is set.
type OrderComment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	StaffID   *uint          `gorm:"index" json:"staff_id,omitempty"`
	Staff     *User          `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	ClientID  *uint          `gorm:"index" json:"client_id,omitempty"`
	Client    *Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderComment model
func (OrderComment) TableName() string {
	return "order_comments"
}

// SenderName returns the display name of whoever wrote the comment
func (c *OrderComment) SenderName() string {
	switch {
	case c.Staff != nil:
		return c.Staff.Name
	case c.Client != nil:
		return c.Client.Name
	}
	return ""
}
