// internal/services/dashboard_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greensupply/greensupply-backend/internal/models"
)

func seedCommitment(t *testing.T, db *gorm.DB, group *models.BuyingGroup, businessID uuid.UUID, units int) *models.GroupCommitment {
	t.Helper()

	commitment := &models.GroupCommitment{
		GroupID:    group.ID,
		BusinessID: businessID,
		Units:      units,
	}
	if err := db.Create(commitment).Error; err != nil {
		t.Fatalf("failed to seed commitment: %v", err)
	}
	return commitment
}

func TestGetBusinessDashboardTotals(t *testing.T) {
	db := newTestDB(t)
	svc := NewDashboardService(db, newTestConfig())

	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	business := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 1000)

	open := seedGroup(t, db, listing, business, region.ID, 200, 5)
	seedCommitment(t, db, open, business.ID, 50)

	confirmed := seedGroup(t, db, listing, business, region.ID, 100, 1)
	commitment := seedCommitment(t, db, confirmed, business.ID, 100)
	confirmedAt := commitment.CreatedAt.Add(10 * time.Hour)
	require.NoError(t, db.Model(confirmed).Updates(map[string]interface{}{
		"status":       models.GroupStatusConfirmed,
		"confirmed_at": confirmedAt,
	}).Error)

	dashboard, err := svc.GetBusinessDashboard(business.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, dashboard.GroupsJoined)
	assert.Equal(t, 1, dashboard.GroupsConfirmed)
	assert.Equal(t, 150, dashboard.TotalUnitsCommitted)
	// 150 units at 0.15 savings, 0.03 CO2, 0.02 plastic per unit.
	assert.InDelta(t, 22.50, dashboard.TotalSavingsUSD, 1e-9)
	assert.InDelta(t, 4.5, dashboard.TotalCO2SavedKg, 1e-9)
	assert.InDelta(t, 3.0, dashboard.TotalPlasticAvoidedKg, 1e-9)
	assert.Equal(t, 1, dashboard.DeliveryTripsReduced)

	require.NotNil(t, dashboard.MedianHoursToConfirmation)
	assert.InDelta(t, 10.0, *dashboard.MedianHoursToConfirmation, 0.1)
}

func TestGetBusinessDashboardMedianAcrossGroups(t *testing.T) {
	db := newTestDB(t)
	svc := NewDashboardService(db, newTestConfig())

	region := seedRegion(t, db)
	supplier := seedSupplier(t, db, region.ID)
	business := seedBusiness(t, db, region.ID, "cafe-one")
	product := seedProduct(t, db)
	listing := seedListing(t, db, supplier.ID, product.ID, 1000)

	for _, hours := range []time.Duration{4, 20, 48} {
		group := seedGroup(t, db, listing, business, region.ID, 100, 1)
		commitment := seedCommitment(t, db, group, business.ID, 10)
		confirmedAt := commitment.CreatedAt.Add(hours * time.Hour)
		require.NoError(t, db.Model(group).Updates(map[string]interface{}{
			"status":       models.GroupStatusConfirmed,
			"confirmed_at": confirmedAt,
		}).Error)
	}

	dashboard, err := svc.GetBusinessDashboard(business.ID)
	require.NoError(t, err)
	require.NotNil(t, dashboard.MedianHoursToConfirmation)
	assert.InDelta(t, 20.0, *dashboard.MedianHoursToConfirmation, 0.1)
}

func TestGetBusinessDashboardEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewDashboardService(db, newTestConfig())

	region := seedRegion(t, db)
	business := seedBusiness(t, db, region.ID, "cafe-one")

	dashboard, err := svc.GetBusinessDashboard(business.ID)
	require.NoError(t, err)

	assert.Zero(t, dashboard.GroupsJoined)
	assert.Zero(t, dashboard.TotalUnitsCommitted)
	assert.Nil(t, dashboard.MedianHoursToConfirmation)
}

func TestMedianOf(t *testing.T) {
	assert.Equal(t, 5.0, medianOf([]float64{9, 5, 1}))
	assert.Equal(t, 3.0, medianOf([]float64{4, 2, 1, 5}))
	assert.Equal(t, 7.0, medianOf([]float64{7}))
}
