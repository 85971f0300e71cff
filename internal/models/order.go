// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// SupplierConfirmedOrder is written exactly once, at the moment a group
// confirms. TotalUnits and BusinessCount are frozen copies of the ledger
// aggregates at confirmation time and are never recomputed afterward.
type SupplierConfirmedOrder struct {
	BaseModel
	SupplierBusinessID uuid.UUID   `json:"supplier_business_id" gorm:"type:uuid;not null;index"`
	SupplierListingID  *uuid.UUID  `json:"supplier_listing_id" gorm:"type:uuid;index"`
	GroupID            uuid.UUID   `json:"group_id" gorm:"type:uuid;not null;uniqueIndex:uq_supplier_confirmed_orders_group_id"`
	TotalUnits         int         `json:"total_units" gorm:"not null"`
	BusinessCount      int         `json:"business_count" gorm:"not null"`
	Status             OrderStatus `json:"status" gorm:"type:varchar(30);default:'confirmed';index"`
	ScheduledStartAt   *time.Time  `json:"scheduled_start_at"`
	EstimatedEndAt     *time.Time  `json:"estimated_end_at"`
	RouteTotalMiles    *float64    `json:"route_total_miles"`
	RouteTotalMinutes  *float64    `json:"route_total_minutes"`
	RoutePoints        RoutePoints `json:"route_points" gorm:"type:jsonb"`

	// Relationships
	Group           BuyingGroup      `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	SupplierListing *SupplierListing `json:"supplier_listing,omitempty" gorm:"foreignKey:SupplierListingID"`
}

// CommitmentPayment tracks one participant's share of a confirmed order.
type CommitmentPayment struct {
	BaseModel
	GroupID               uuid.UUID     `json:"group_id" gorm:"type:uuid;not null;index"`
	CommitmentID          uuid.UUID     `json:"commitment_id" gorm:"type:uuid;not null;uniqueIndex"`
	BusinessID            uuid.UUID     `json:"business_id" gorm:"type:uuid;not null;index"`
	AmountUSD             float64       `json:"amount_usd" gorm:"type:decimal(10,2);not null"`
	Currency              string        `json:"currency" gorm:"size:10;default:'usd'"`
	StripePaymentIntentID string        `json:"stripe_payment_intent_id" gorm:"size:255;index"`
	Status                PaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ProcessedAt           *time.Time    `json:"processed_at"`
}
