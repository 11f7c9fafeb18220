package models

import "time"

// Well-known role names.
const (
	RoleUser   = "User"
	RoleDriver = "Driver"
	RoleAdmin  = "Admin"
)

// Role is a named capability tag from the shared catalog.
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null;size:64" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
