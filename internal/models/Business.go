package models

import "time"

// Business belongs to a business-owner user.
type Business struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"uniqueIndex;not null" json:"user_id" validate:"required"`
	BusinessName string `gorm:"not null" json:"business_name" validate:"required"`
	TinNumber    string `gorm:"not null" json:"tin_number" validate:"required"`
	BusinessType string `gorm:"not null" json:"business_type" validate:"required,oneof=retailer wholesaler"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
