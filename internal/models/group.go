// internal/models/group.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// BuyingGroup pools one listing purchase across businesses in a region.
//
// Only the terminal confirmed flag (plus ConfirmedAt) is ever written to
// Status; everything else about the lifecycle, including the near_target
// and capacity_reached labels, is recomputed from the commitment ledger so
// the stored row can never drift from the ledger.
type BuyingGroup struct {
	BaseModel
	ProductID             uuid.UUID   `json:"product_id" gorm:"type:uuid;not null;index"`
	CreatedByBusinessID   uuid.UUID   `json:"created_by_business_id" gorm:"type:uuid;not null;index"`
	SupplierBusinessID    uuid.UUID   `json:"supplier_business_id" gorm:"type:uuid;not null;index"`
	SupplierListingID     uuid.UUID   `json:"supplier_listing_id" gorm:"type:uuid;not null;index"`
	RegionID              uint        `json:"region_id" gorm:"not null;index"`
	TargetUnits           int         `json:"target_units" gorm:"not null"`
	MinBusinessesRequired int         `json:"min_businesses_required" gorm:"not null;default:5"`
	Deadline              *time.Time  `json:"deadline"`
	Status                GroupStatus `json:"status" gorm:"type:varchar(30);default:'active';index"`
	ConfirmedAt           *time.Time  `json:"confirmed_at"`

	// Relationships
	Product         Product           `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	SupplierListing SupplierListing   `json:"supplier_listing,omitempty" gorm:"foreignKey:SupplierListingID"`
	Commitments     []GroupCommitment `json:"commitments,omitempty" gorm:"foreignKey:GroupID"`
}

func (g *BuyingGroup) IsConfirmed() bool {
	return g.Status == GroupStatusConfirmed
}
