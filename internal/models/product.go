// internal/models/product.go
package models

import (
	"github.com/lib/pq"
)

// Product is catalog reference data for a sustainable supply item. Pricing
// here is per unit; retail is what a business pays alone, bulk is the
// group price. Both are immutable once a group references the product.
type Product struct {
	BaseModel
	Name                    string         `json:"name" gorm:"size:255;not null"`
	Category                string         `json:"category" gorm:"size:50;not null;index"`
	Material                string         `json:"material" gorm:"size:100;not null"`
	Certifications          pq.StringArray `json:"certifications" gorm:"type:text[]"`
	RetailUnitPrice         float64        `json:"retail_unit_price" gorm:"type:decimal(10,4);not null"`
	BulkUnitPrice           float64        `json:"bulk_unit_price" gorm:"type:decimal(10,4);not null"`
	MinBulkUnits            int            `json:"min_bulk_units" gorm:"not null"`
	CO2PerUnitKg            float64        `json:"co2_per_unit_kg" gorm:"type:decimal(10,6);not null"`
	PlasticAvoidedPerUnitKg float64        `json:"plastic_avoided_per_unit_kg" gorm:"type:decimal(10,6);not null"`
}
