// internal/models/listing.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SupplierListing is supplier-owned inventory of a product at bulk
// pricing. AvailableUnits is the supplier inventory ceiling: no group on
// this listing may ever commit past it.
type SupplierListing struct {
	BaseModel
	SupplierBusinessID uuid.UUID      `json:"supplier_business_id" gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID      `json:"product_id" gorm:"type:uuid;not null;index"`
	Name               string         `json:"name" gorm:"size:255;not null"`
	AvailableUnits     int            `json:"available_units" gorm:"not null"`
	UnitPrice          float64        `json:"unit_price" gorm:"type:decimal(10,4);not null"`
	MinOrderUnits      int            `json:"min_order_units" gorm:"not null;default:1"`
	Images             pq.StringArray `json:"images" gorm:"type:text[]"`
	Status             ListingStatus  `json:"status" gorm:"type:varchar(30);default:'active';index"`

	// Relationships
	Supplier Business `json:"supplier,omitempty" gorm:"foreignKey:SupplierBusinessID"`
	Product  Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
