// internal/models/commitment.go
package models

import (
	"github.com/google/uuid"
)

// GroupCommitment is one ledger row: a business's pledged units within a
// group. The composite unique index enforces at most one commitment per
// (group, business) pair even under concurrent joins; re-joining is
// rejected, never merged.
type GroupCommitment struct {
	BaseModel
	GroupID    uuid.UUID `json:"group_id" gorm:"type:uuid;not null;uniqueIndex:uq_group_commitments_group_business"`
	BusinessID uuid.UUID `json:"business_id" gorm:"type:uuid;not null;uniqueIndex:uq_group_commitments_group_business"`
	Units      int       `json:"units" gorm:"not null"`

	// Relationships
	Group    BuyingGroup `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Business Business    `json:"business,omitempty" gorm:"foreignKey:BusinessID"`
}
