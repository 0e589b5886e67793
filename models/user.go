package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is a staff role. The set is closed: admin, manager and master.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMaster  Role = "master"
)

// Valid reports whether r is one of the known staff roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMaster:
		return true
	}
	return false
}

// ParseRole converts a raw string into a Role
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// User represents a staff member of the repair shop
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role         Role           `gorm:"type:varchar(20);not null;default:'master'" json:"role"`
	Name         string         `gorm:"not null" json:"name"`
	Phone        string         `json:"phone"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// HasRole reports whether the user holds one of the given roles
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
