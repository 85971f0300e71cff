// internal/services/group_service_test.go
package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greensupply/greensupply-backend/internal/models"
)

func TestCreateGroupDefaults(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)

	detail, err := svc.CreateGroup(creator.ID, &CreateGroupRequest{SupplierListingID: listing.ID})
	require.NoError(t, err)

	// Target defaults to the product's bulk minimum, floor to config.
	assert.Equal(t, product.MinBulkUnits, detail.TargetUnits)
	assert.Equal(t, 5, detail.MinBusinessesRequired)
	assert.Equal(t, models.GroupStatusActive, detail.Status)
	assert.Equal(t, region.ID, detail.RegionID)

	require.NotNil(t, detail.Deadline)
	expected := time.Now().UTC().Add(72 * time.Hour)
	assert.WithinDuration(t, expected, *detail.Deadline, time.Minute)
}

func TestCreateGroupRejectsTargetAboveInventory(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 50)

	_, err := svc.CreateGroup(creator.ID, &CreateGroupRequest{
		SupplierListingID: listing.ID,
		TargetUnits:       51,
	})
	assert.Error(t, err)
}

func TestCreateGroupRejectsSupplierCreator(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)

	_, err := svc.CreateGroup(supplier.ID, &CreateGroupRequest{SupplierListingID: listing.ID})
	assert.Error(t, err)
}

func TestJoinGroupRecordsCommitment(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	detail, err := svc.JoinGroup(group.ID, creator.ID, 30)
	require.NoError(t, err)

	assert.Equal(t, 30, detail.CurrentUnits)
	assert.Equal(t, 1, detail.BusinessCount)
	assert.Equal(t, 70, detail.RemainingUnits)
	assert.Equal(t, 30, detail.ProgressPct)
	assert.Equal(t, models.GroupStatusActive, detail.Status)
	require.Len(t, detail.Commitments, 1)
	assert.Equal(t, creator.ID, detail.Commitments[0].BusinessID)
}

func TestJoinGroupInvalidUnits(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	for _, units := range []int{0, -1, -100} {
		_, err := svc.JoinGroup(group.ID, creator.ID, units)
		assert.ErrorIs(t, err, ErrInvalidUnits)
	}
}

func TestJoinGroupRejectsDuplicateBusiness(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	_, err := svc.JoinGroup(group.ID, creator.ID, 10)
	require.NoError(t, err)

	// Strict rejection, even for a modest topping-up request, and the
	// duplicate check outranks the capacity check.
	_, err = svc.JoinGroup(group.ID, creator.ID, 10)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = svc.JoinGroup(group.ID, creator.ID, 10_000)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	detail, err := svc.GetGroupDetail(group.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, detail.CurrentUnits)
	assert.Equal(t, 1, detail.BusinessCount)
}

func TestJoinGroupCapacityExceededReportsRemaining(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	joiner := seedBusiness(t, db, region.ID, "cafe-two")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	_, err := svc.JoinGroup(group.ID, creator.ID, 70)
	require.NoError(t, err)

	_, err = svc.JoinGroup(group.ID, joiner.ID, 31)
	var capacityErr *CapacityExceededError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 31, capacityErr.Requested)
	assert.Equal(t, 30, capacityErr.Remaining)

	// The failed join left no ledger row behind.
	detail, err := svc.GetGroupDetail(group.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, detail.CurrentUnits)
	assert.Equal(t, 1, detail.BusinessCount)

	// Retrying with exactly the remaining capacity succeeds.
	detail, err = svc.JoinGroup(group.ID, joiner.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 100, detail.CurrentUnits)
	assert.Equal(t, 0, detail.RemainingUnits)
}

func TestJoinGroupCapacityLimitedByListingInventory(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 60)
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	// Supplier only has 60 on the shelf; the 100-unit target is not the
	// binding ceiling.
	_, err := svc.JoinGroup(group.ID, creator.ID, 61)
	var capacityErr *CapacityExceededError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 60, capacityErr.Remaining)
}

func TestJoinGroupAutoConfirmsOnLastUnit(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)

	creator := seedBusiness(t, db, region.ID, "cafe-one")
	group := seedGroup(t, db, listing, creator, region.ID, 100, 3)

	_, err := svc.JoinGroup(group.ID, creator.ID, 40)
	require.NoError(t, err)
	_, err = svc.JoinGroup(group.ID, seedBusiness(t, db, region.ID, "cafe-two").ID, 40)
	require.NoError(t, err)

	// Third business fills the last unit with the floor met: the same
	// transaction confirms the group.
	detail, err := svc.JoinGroup(group.ID, seedBusiness(t, db, region.ID, "cafe-three").ID, 20)
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusConfirmed, detail.Status)
	require.NotNil(t, detail.ConfirmedAt)

	// The confirmed order freezes the ledger totals.
	require.NotNil(t, detail.ConfirmedOrder)
	assert.Equal(t, 100, detail.ConfirmedOrder.TotalUnits)
	assert.Equal(t, 3, detail.ConfirmedOrder.BusinessCount)
	assert.NotNil(t, detail.ConfirmedOrder.ScheduledStartAt)

	// Supplier inventory was decremented.
	var reloaded models.SupplierListing
	require.NoError(t, db.First(&reloaded, "id = ?", listing.ID).Error)
	assert.Equal(t, 400, reloaded.AvailableUnits)
	assert.Equal(t, models.ListingStatusActive, reloaded.Status)

	// One pending share payment per participant.
	var payments []models.CommitmentPayment
	require.NoError(t, db.Where("group_id = ?", group.ID).Order("amount_usd DESC").Find(&payments).Error)
	require.Len(t, payments, 3)
	assert.InDelta(t, 10.0, payments[0].AmountUSD, 1e-9) // 40 * 0.25
	assert.InDelta(t, 5.0, payments[2].AmountUSD, 1e-9)  // 20 * 0.25
	for _, p := range payments {
		assert.Equal(t, models.PaymentStatusPending, p.Status)
	}

	// Confirmed groups are closed to further joins.
	_, err = svc.JoinGroup(group.ID, seedBusiness(t, db, region.ID, "cafe-four").ID, 1)
	assert.ErrorIs(t, err, ErrGroupClosed)
}

func TestJoinGroupConfirmationFlipsSoldOutListing(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 100)

	creator := seedBusiness(t, db, region.ID, "cafe-one")
	group := seedGroup(t, db, listing, creator, region.ID, 100, 2)

	_, err := svc.JoinGroup(group.ID, creator.ID, 50)
	require.NoError(t, err)
	detail, err := svc.JoinGroup(group.ID, seedBusiness(t, db, region.ID, "cafe-two").ID, 50)
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusConfirmed, detail.Status)

	var reloaded models.SupplierListing
	require.NoError(t, db.First(&reloaded, "id = ?", listing.ID).Error)
	assert.Equal(t, 0, reloaded.AvailableUnits)
	assert.Equal(t, models.ListingStatusSoldOut, reloaded.Status)
}

func TestConcurrentJoinsNeverOvercommit(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)

	creator := seedBusiness(t, db, region.ID, "cafe-0")
	group := seedGroup(t, db, listing, creator, region.ID, 100, 10)

	businesses := []*models.Business{creator}
	for i := 1; i < 8; i++ {
		businesses = append(businesses, seedBusiness(t, db, region.ID, fmt.Sprintf("cafe-%d", i)))
	}

	// 8 businesses racing for 100 units at 30 apiece: only 3 can fit.
	var wg sync.WaitGroup
	errs := make([]error, len(businesses))
	for i, b := range businesses {
		wg.Add(1)
		go func(i int, businessID uuid.UUID) {
			defer wg.Done()
			_, err := svc.JoinGroup(group.ID, businessID, 30)
			errs[i] = err
		}(i, b.ID)
	}
	wg.Wait()

	successes := 0
	capacityRejections := 0
	for _, err := range errs {
		var capacityErr *CapacityExceededError
		switch {
		case err == nil:
			successes++
		case errors.As(err, &capacityErr):
			capacityRejections++
			assert.LessOrEqual(t, capacityErr.Remaining, 10)
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	assert.Equal(t, 3, successes)
	assert.Equal(t, 5, capacityRejections)

	// The ledger never exceeds the capacity regardless of interleaving.
	var total int
	require.NoError(t, db.Model(&models.GroupCommitment{}).
		Where("group_id = ?", group.ID).
		Select("COALESCE(SUM(units), 0)").
		Scan(&total).Error)
	assert.Equal(t, 90, total)

	detail, err := svc.GetGroupDetail(group.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, detail.CurrentUnits)
	assert.Equal(t, 3, detail.BusinessCount)
	assert.Equal(t, models.GroupStatusActive, detail.Status)
}

func TestGroupAtCapacityBelowFloorWaitsForApproval(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)

	creator := seedBusiness(t, db, region.ID, "cafe-one")
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	_, err := svc.JoinGroup(group.ID, creator.ID, 60)
	require.NoError(t, err)
	detail, err := svc.JoinGroup(group.ID, seedBusiness(t, db, region.ID, "cafe-two").ID, 40)
	require.NoError(t, err)

	// Full but only 2 of 5 businesses: no auto-confirmation.
	assert.Equal(t, models.GroupStatusCapacityReached, detail.Status)
	assert.Nil(t, detail.ConfirmedAt)
	assert.Nil(t, detail.ConfirmedOrder)

	// Stored status is still active; capacity_reached is derived.
	var stored models.BuyingGroup
	require.NoError(t, db.First(&stored, "id = ?", group.ID).Error)
	assert.Equal(t, models.GroupStatusActive, stored.Status)

	// And no further units fit.
	_, err = svc.JoinGroup(group.ID, seedBusiness(t, db, region.ID, "cafe-three").ID, 1)
	var capacityErr *CapacityExceededError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 0, capacityErr.Remaining)
}

func TestApproveGroup(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)

	creator := seedBusiness(t, db, region.ID, "cafe-one")
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	_, err := svc.JoinGroup(group.ID, creator.ID, 100)
	require.NoError(t, err)

	// Only the listing's supplier may approve.
	stranger := seedSupplier(t, db, region.ID)
	_, err = svc.ApproveGroup(group.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	detail, err := svc.ApproveGroup(group.ID, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GroupStatusConfirmed, detail.Status)
	require.NotNil(t, detail.ConfirmedOrder)
	assert.Equal(t, 100, detail.ConfirmedOrder.TotalUnits)
	assert.Equal(t, 1, detail.ConfirmedOrder.BusinessCount)

	// A second approval finds a confirmed group and refuses.
	_, err = svc.ApproveGroup(group.ID, supplier.ID)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestApproveGroupRequiresFullCapacity(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)

	creator := seedBusiness(t, db, region.ID, "cafe-one")
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	_, err := svc.JoinGroup(group.ID, creator.ID, 99)
	require.NoError(t, err)

	_, err = svc.ApproveGroup(group.ID, supplier.ID)
	assert.ErrorIs(t, err, ErrNotEligible)

	// An empty group is never approvable either.
	empty := seedGroup(t, db, listing, creator, region.ID, 50, 5)
	_, err = svc.ApproveGroup(empty.ID, supplier.ID)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestGetGroupDetailDetectsLedgerDrift(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)

	creator := seedBusiness(t, db, region.ID, "cafe-one")
	group := seedGroup(t, db, listing, creator, region.ID, 100, 1)

	detail, err := svc.JoinGroup(group.ID, creator.ID, 100)
	require.NoError(t, err)
	require.Equal(t, models.GroupStatusConfirmed, detail.Status)

	// Tamper with the frozen totals behind the service's back.
	require.NoError(t, db.Model(&models.SupplierConfirmedOrder{}).
		Where("group_id = ?", group.ID).
		Update("total_units", 999).Error)

	_, err = svc.GetGroupDetail(group.ID)
	var driftErr *DataInconsistencyError
	require.ErrorAs(t, err, &driftErr)
	assert.Equal(t, 999, driftErr.Frozen)
	assert.Equal(t, 100, driftErr.LedgerSum)
}

func TestJoinGroupRejectsOutOfRegionBusiness(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	other := &models.Region{Code: "portland-metro", Name: "Portland Metro", MinLat: 45.40, MaxLat: 45.65, MinLng: -122.85, MaxLng: -122.45}
	require.NoError(t, db.Create(other).Error)

	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)

	creator := seedBusiness(t, db, region.ID, "cafe-one")
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	outsider := seedBusiness(t, db, other.ID, "pdx-cafe")
	_, err := svc.JoinGroup(group.ID, outsider.ID, 10)
	assert.Error(t, err)
}

func TestListGroupsFiltersByRegion(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	other := &models.Region{Code: "portland-metro", Name: "Portland Metro", MinLat: 45.40, MaxLat: 45.65, MinLng: -122.85, MaxLng: -122.45}
	require.NoError(t, db.Create(other).Error)

	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)
	creator := seedBusiness(t, db, region.ID, "cafe-one")

	seedGroup(t, db, listing, creator, region.ID, 100, 5)
	seedGroup(t, db, listing, creator, other.ID, 100, 5)

	views, err := svc.ListGroups(GroupListParams{RegionID: &region.ID})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, region.ID, views[0].RegionID)

	views, err = svc.ListGroups(GroupListParams{})
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestGetGroupImpactProjectsCityScale(t *testing.T) {
	svc, db := newTestGroupService(t)
	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 500)
	creator := seedBusiness(t, db, region.ID, "cafe-one")
	group := seedGroup(t, db, listing, creator, region.ID, 100, 5)

	_, err := svc.JoinGroup(group.ID, creator.ID, 50)
	require.NoError(t, err)

	impact, err := svc.GetGroupImpact(group.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, impact.CurrentUnits)
	assert.InDelta(t, 1.5, impact.EstimatedCO2SavedKg, 1e-9)
	require.Contains(t, impact.CityScaleProjection, "yearly_co2_saved_kg")

	// 1 business scaled to 5000, 12 months: 1.5 * 5000 * 12.
	assert.InDelta(t, 90000.0, impact.CityScaleProjection["yearly_co2_saved_kg"].(float64), 1e-6)
}
