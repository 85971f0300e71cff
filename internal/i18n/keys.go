// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAccessDenied     = "auth.access_denied"

	// Businesses
	KeyBusinessRegistered = "business.registered"
	KeyBusinessUpdated    = "business.updated"
	KeyBusinessNotFound   = "business.not_found"
	KeyBusinessNoRegion   = "business.no_region"

	// Buying groups
	KeyGroupCreated          = "group.created"
	KeyGroupNotFound         = "group.not_found"
	KeyGroupJoined           = "group.joined"
	KeyGroupClosed           = "group.closed"
	KeyGroupAlreadyJoined    = "group.already_joined"
	KeyGroupCapacityExceeded = "group.capacity_exceeded"
	KeyGroupInvalidUnits     = "group.invalid_units"
	KeyGroupConfirmed        = "group.confirmed"
	KeyGroupNotEligible      = "group.not_eligible"
	KeyGroupApproveForbidden = "group.approve_forbidden"

	// Listings
	KeyListingCreated    = "listing.created"
	KeyListingUpdated    = "listing.updated"
	KeyListingNotFound   = "listing.not_found"
	KeyListingOutOfStock = "listing.out_of_stock"

	// Orders
	KeyOrderNotFound  = "order.not_found"
	KeyOrderScheduled = "order.scheduled"
	KeyOrderCompleted = "order.completed"

	// Payments
	KeyPaymentSuccess       = "payment.success"
	KeyPaymentFailed        = "payment.failed"
	KeyPaymentPending       = "payment.pending"
	KeyPaymentShareNotFound = "payment.share_not_found"

	// Regions
	KeyRegionNotFound = "region.not_found"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
