// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// RoutePoints is an ordered delivery polyline stored as JSON.
// Each point is [lng, lat], matching the GeoJSON axis order the map expects.
type RoutePoints [][2]float64

func (p RoutePoints) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *RoutePoints) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Enums
type AccountType string

const (
	AccountTypeBusiness AccountType = "business"
	AccountTypeSupplier AccountType = "supplier"
	AccountTypeAdmin    AccountType = "admin"
)

type GroupStatus string

// Only active and confirmed are ever persisted. near_target and
// capacity_reached are advisory sub-states of "open for joining" derived
// from the ledger for UI labeling and join gating.
const (
	GroupStatusActive          GroupStatus = "active"
	GroupStatusNearTarget      GroupStatus = "near_target"
	GroupStatusCapacityReached GroupStatus = "capacity_reached"
	GroupStatusConfirmed       GroupStatus = "confirmed"
)

type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSoldOut   ListingStatus = "sold_out"
	ListingStatusSuspended ListingStatus = "suspended"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusScheduled OrderStatus = "scheduled"
	OrderStatusCompleted OrderStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)
