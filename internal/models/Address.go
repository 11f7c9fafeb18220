package models

import (
	"encoding/binary"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"gorm.io/gorm"
)

// SRID of the stored location point (WGS 84).
const SRID = 4326

// Address is a physical location referenced by profiles and delivery orders.
type Address struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	City        string   `gorm:"not null" json:"city" validate:"required"`
	SubCity     string   `gorm:"not null" json:"sub_city" validate:"required"`
	Woreda      string   `gorm:"not null" json:"woreda" validate:"required"`
	Latitude    *float64 `gorm:"not null" json:"latitude" validate:"required,min=-90,max=90"`
	Longitude   *float64 `gorm:"not null" json:"longitude" validate:"required,min=-180,max=180"`
	HouseNumber *string  `json:"house_number"`

	// Location is the lat/long pair as an EWKB point, kept for spatial lookups.
	Location []byte `gorm:"type:bytea" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeSave keeps Location in step with Latitude/Longitude.
func (a *Address) BeforeSave(_ *gorm.DB) error {
	return a.setLocation()
}

func (a *Address) setLocation() error {
	if a.Latitude == nil || a.Longitude == nil {
		a.Location = nil
		return nil
	}
	p, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{*a.Longitude, *a.Latitude})
	if err != nil {
		return err
	}
	b, err := ewkb.Marshal(p.SetSRID(SRID), binary.LittleEndian)
	if err != nil {
		return err
	}
	a.Location = b
	return nil
}

// LocationGeoJSON renders the stored point as a GeoJSON string.
func (a *Address) LocationGeoJSON() (string, error) {
	if len(a.Location) == 0 {
		return "", nil
	}
	g, err := ewkb.Unmarshal(a.Location)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
