package models

import "time"

// Client represents a customer of the repair shop.
// Clients either self-register or are created by staff; staff-created
// clients have no password until they activate their account.
type Client struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	Phone             string    `gorm:"uniqueIndex;not null" json:"phone"`
	Email             *string   `gorm:"uniqueIndex" json:"email"`
	PasswordHash      string    `json:"-"`
	Address           string    `gorm:"type:text" json:"address"`
	IsVerified        bool      `gorm:"not null;default:false" json:"is_verified"`
	VerificationToken *string   `gorm:"uniqueIndex" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Client model
func (Client) TableName() string {
	return "clients"
}

// HasPassword reports whether the client can log in with a password
func (c *Client) HasPassword() bool {
	return c.PasswordHash != ""
}
