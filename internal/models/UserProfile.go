package models

import (
	"time"

	"gorm.io/datatypes"
)

// KYCStatus is the Know-Your-Customer state of a profile.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCApproved KYCStatus = "approved"
	KYCRejected KYCStatus = "rejected"
)

// UserProfile carries the personal and KYC data of exactly one user.
type UserProfile struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"uniqueIndex;not null" json:"user_id" validate:"required"`
	AddressID     uint            `gorm:"not null;index" json:"address_id" validate:"required"`
	DateOfBirth   *datatypes.Date `gorm:"not null" json:"date_of_birth" validate:"required"`
	Nationality   string          `gorm:"not null" json:"nationality" validate:"required"`
	Occupation    string          `gorm:"not null" json:"occupation" validate:"required"`
	SourceOfFunds string          `gorm:"not null" json:"source_of_funds" validate:"required"`
	Gender        string          `gorm:"not null" json:"gender" validate:"required,oneof=male female"`
	KYCStatus     KYCStatus       `gorm:"not null;default:pending" json:"kyc_status" validate:"required,oneof=pending approved rejected"`
	VerifiedAt    *time.Time      `json:"verified_at"`
	VerifiedByID  *uint           `json:"verified_by_id"`
	FaydaID       *string         `json:"fayda_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"-" validate:"-"`
	Address *Address `gorm:"foreignKey:AddressID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"address,omitempty" validate:"-"`
}
