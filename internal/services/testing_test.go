// internal/services/testing_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/greensupply/greensupply-backend/internal/cache"
	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	// One connection: every pooled connection to ":memory:" gets its own
	// database, and a single writer serializes concurrent transactions.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Region{},
		&models.Business{},
		&models.Product{},
		&models.SupplierListing{},
		&models.BuyingGroup{},
		&models.GroupCommitment{},
		&models.SupplierConfirmedOrder{},
		&models.CommitmentPayment{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Groups: config.GroupsConfig{
			NearTargetPct:             75,
			DefaultMinBusinesses:      5,
			DefaultDeadlineHours:      72,
			BaselineDeliveryMiles:     4.0,
			ConsolidatedDeliveryMiles: 4.0,
			CityProjectionBusinesses:  5000,
		},
		Delivery: config.DeliveryConfig{
			AvgSpeedMPH:       22.0,
			StopBufferMinutes: 4.0,
			StartHourLocal:    8,
			Timezone:          "America/Los_Angeles",
		},
	}
}

func newTestGroupService(t *testing.T) (*GroupService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	routeService := NewRouteService(cfg)
	groupCache := cache.New(cfg.Redis)

	// No notification service in tests: confirmation emails are a
	// post-commit side effect, not part of the transaction under test.
	return NewGroupService(db, cfg, routeService, nil, groupCache), db
}

func seedRegion(t *testing.T, db *gorm.DB) *models.Region {
	t.Helper()

	region := &models.Region{
		Code:   "seattle-metro",
		Name:   "Seattle Metro",
		MinLat: 47.40, MaxLat: 47.78,
		MinLng: -122.46, MaxLng: -122.10,
	}
	if err := db.Create(region).Error; err != nil {
		t.Fatalf("failed to seed region: %v", err)
	}
	return region
}

func seedBusiness(t *testing.T, db *gorm.DB, regionID uint, name string) *models.Business {
	t.Helper()

	lat, lng := 47.61, -122.33
	business := &models.Business{
		Name:         name,
		Email:        name + "@example.com",
		BusinessType: "cafe",
		AccountType:  models.AccountTypeBusiness,
		Neighborhood: "Capitol Hill",
		Zip:          "98102",
		Latitude:     &lat,
		Longitude:    &lng,
		RegionID:     &regionID,
	}
	if err := db.Create(business).Error; err != nil {
		t.Fatalf("failed to seed business: %v", err)
	}
	return business
}

func seedSupplier(t *testing.T, db *gorm.DB, regionID uint) *models.Business {
	t.Helper()

	lat, lng := 47.58, -122.32
	supplier := &models.Business{
		Name:         "EcoPack Supply Co",
		Email:        "sales@ecopack.example.com",
		BusinessType: "distributor",
		AccountType:  models.AccountTypeSupplier,
		Neighborhood: "SoDo",
		Zip:          "98134",
		Latitude:     &lat,
		Longitude:    &lng,
		RegionID:     &regionID,
	}
	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("failed to seed supplier: %v", err)
	}
	return supplier
}

func seedProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:                    "Compostable Takeout Containers",
		Category:                "packaging",
		Material:                "bagasse",
		RetailUnitPrice:         0.40,
		BulkUnitPrice:           0.25,
		MinBulkUnits:            100,
		CO2PerUnitKg:            0.03,
		PlasticAvoidedPerUnitKg: 0.02,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

func seedListing(t *testing.T, db *gorm.DB, supplierID, productID uuid.UUID, availableUnits int) *models.SupplierListing {
	t.Helper()

	listing := &models.SupplierListing{
		SupplierBusinessID: supplierID,
		ProductID:          productID,
		Name:               "Takeout Containers, bulk",
		AvailableUnits:     availableUnits,
		UnitPrice:          0.25,
		MinOrderUnits:      1,
		Status:             models.ListingStatusActive,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("failed to seed listing: %v", err)
	}
	return listing
}

func seedGroup(t *testing.T, db *gorm.DB, listing *models.SupplierListing, creator *models.Business, regionID uint, targetUnits, minBusinesses int) *models.BuyingGroup {
	t.Helper()

	group := &models.BuyingGroup{
		ProductID:             listing.ProductID,
		CreatedByBusinessID:   creator.ID,
		SupplierBusinessID:    listing.SupplierBusinessID,
		SupplierListingID:     listing.ID,
		RegionID:              regionID,
		TargetUnits:           targetUnits,
		MinBusinessesRequired: minBusinesses,
		Status:                models.GroupStatusActive,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to seed group: %v", err)
	}
	return group
}
