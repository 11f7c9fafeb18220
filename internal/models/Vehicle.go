package models

import "time"

// Vehicle is the single vehicle registered by a driver at signup.
type Vehicle struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	DriverID    uint   `gorm:"uniqueIndex;not null" json:"driver_id" validate:"required"` // link to the driver user
	PlateNumber string `gorm:"uniqueIndex;not null" json:"plate_number" validate:"required"`
	VehicleType string `gorm:"not null" json:"vehicle_type" validate:"required"`
	Brand       string `gorm:"not null" json:"brand" validate:"required"`
	Model       string `gorm:"not null" json:"model" validate:"required"`
	Year        int    `gorm:"not null" json:"year" validate:"required,vehicle_year"`
	Color       string `gorm:"not null" json:"color" validate:"required"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Driver *User `gorm:"foreignKey:DriverID" json:"-" validate:"-"`
}
