// internal/models/business.go
package models

type Business struct {
	BaseModel
	Name         string      `json:"name" gorm:"size:255"`
	Email        string      `json:"email" gorm:"size:255;index"`
	BusinessType string      `json:"business_type" gorm:"size:100;not null"`
	AccountType  AccountType `json:"account_type" gorm:"type:varchar(30);default:'business';index"`
	Address      string      `json:"address" gorm:"size:255"`
	Neighborhood string      `json:"neighborhood" gorm:"size:100;not null"`
	Zip          string      `json:"zip" gorm:"size:20"`
	Latitude     *float64    `json:"latitude"`
	Longitude    *float64    `json:"longitude"`
	RegionID     *uint       `json:"region_id" gorm:"index"`

	// Relationships
	Region      *Region           `json:"region,omitempty" gorm:"foreignKey:RegionID"`
	Commitments []GroupCommitment `json:"commitments,omitempty" gorm:"foreignKey:BusinessID"`
}

// HasLocation reports whether the business has been geocoded.
func (b *Business) HasLocation() bool {
	return b.Latitude != nil && b.Longitude != nil
}
