// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Join/approve validation failures are recoverable and surfaced to the
// caller as-is; they are never retried automatically.
var (
	ErrInvalidUnits     = errors.New("units must be at least 1")
	ErrGroupClosed      = errors.New("group is closed to new commitments")
	ErrAlreadyJoined    = errors.New("business already holds a commitment in this group")
	ErrNotEligible      = errors.New("group is not eligible for supplier approval")
	ErrNotAuthorized    = errors.New("not authorized to approve this group")
	ErrGroupNotFound    = errors.New("group not found")
	ErrBusinessNotFound = errors.New("business not found")
	ErrListingNotFound  = errors.New("listing not found")
	ErrOrderNotFound    = errors.New("confirmed order not found")
)

// CapacityExceededError reports how many units are actually left so the
// caller can offer the maximum allowed value as a retry suggestion.
type CapacityExceededError struct {
	Requested int
	Remaining int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("requested units exceed remaining group capacity (%d units left)", e.Remaining)
}

// DataInconsistencyError means the frozen confirmed-order totals disagree
// with the commitment ledger. This is never user-recoverable: it is logged
// and the operation aborted rather than silently trusting either side.
type DataInconsistencyError struct {
	GroupID   uuid.UUID
	Frozen    int
	LedgerSum int
}

func (e *DataInconsistencyError) Error() string {
	return fmt.Sprintf("group %s ledger sum %d disagrees with frozen order total %d",
		e.GroupID, e.LedgerSum, e.Frozen)
}
