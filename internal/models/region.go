// internal/models/region.go
package models

import "time"

// Region is a bounding-box neighborhood cell. Buying groups and the
// businesses that join them always share one region.
type Region struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"size:20;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	MinLat    float64   `json:"min_lat" gorm:"not null"`
	MaxLat    float64   `json:"max_lat" gorm:"not null"`
	MinLng    float64   `json:"min_lng" gorm:"not null"`
	MaxLng    float64   `json:"max_lng" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Region) Contains(lat, lng float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat && lng >= r.MinLng && lng <= r.MaxLng
}

func (r *Region) CenterLat() float64 { return (r.MinLat + r.MaxLat) / 2 }
func (r *Region) CenterLng() float64 { return (r.MinLng + r.MaxLng) / 2 }
