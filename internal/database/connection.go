// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
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
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Business indexes
		"CREATE INDEX IF NOT EXISTS idx_businesses_region_account ON businesses(region_id, account_type)",
		"CREATE INDEX IF NOT EXISTS idx_businesses_email ON businesses(email)",

		// Listing indexes
		"CREATE INDEX IF NOT EXISTS idx_supplier_listings_supplier_status ON supplier_listings(supplier_business_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_supplier_listings_product ON supplier_listings(product_id)",

		// Group indexes
		"CREATE INDEX IF NOT EXISTS idx_buying_groups_region_status ON buying_groups(region_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_buying_groups_listing ON buying_groups(supplier_listing_id)",
		"CREATE INDEX IF NOT EXISTS idx_buying_groups_created_at ON buying_groups(created_at DESC)",

		// Commitment indexes
		"CREATE INDEX IF NOT EXISTS idx_group_commitments_group ON group_commitments(group_id)",
		"CREATE INDEX IF NOT EXISTS idx_group_commitments_business ON group_commitments(business_id)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_supplier_confirmed_orders_supplier ON supplier_confirmed_orders(supplier_business_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_commitment_payments_group_status ON commitment_payments(group_id, status)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_business_action ON audit_logs(business_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	regions := []models.Region{
		{Code: "seattle-metro", Name: "Seattle Metro", MinLat: 47.40, MaxLat: 47.78, MinLng: -122.46, MaxLng: -122.10},
		{Code: "portland-metro", Name: "Portland Metro", MinLat: 45.40, MaxLat: 45.65, MinLng: -122.85, MaxLng: -122.45},
		{Code: "sf-bay", Name: "San Francisco Bay", MinLat: 37.20, MaxLat: 37.95, MinLng: -122.60, MaxLng: -121.80},
		{Code: "la-metro", Name: "Los Angeles Metro", MinLat: 33.70, MaxLat: 34.35, MinLng: -118.70, MaxLng: -117.90},
	}
	for _, region := range regions {
		var count int64
		db.Model(&models.Region{}).Where("code = ?", region.Code).Count(&count)
		if count == 0 {
			if err := db.Create(&region).Error; err != nil {
				return fmt.Errorf("failed to seed region %s: %w", region.Code, err)
			}
		}
	}

	products := []models.Product{
		{
			Name:                    "Compostable Takeout Containers (500ct)",
			Category:                "packaging",
			Material:                "bagasse",
			Certifications:          []string{"BPI", "ASTM D6400"},
			RetailUnitPrice:         0.42,
			BulkUnitPrice:           0.27,
			MinBulkUnits:            2000,
			CO2PerUnitKg:            0.031,
			PlasticAvoidedPerUnitKg: 0.018,
		},
		{
			Name:                    "Recycled Paper Napkins (case)",
			Category:                "paper",
			Material:                "recycled paper",
			Certifications:          []string{"FSC Recycled"},
			RetailUnitPrice:         0.019,
			BulkUnitPrice:           0.012,
			MinBulkUnits:            10000,
			CO2PerUnitKg:            0.004,
			PlasticAvoidedPerUnitKg: 0,
		},
		{
			Name:                    "PLA Cold Cups 16oz",
			Category:                "packaging",
			Material:                "PLA",
			Certifications:          []string{"BPI"},
			RetailUnitPrice:         0.14,
			BulkUnitPrice:           0.09,
			MinBulkUnits:            5000,
			CO2PerUnitKg:            0.012,
			PlasticAvoidedPerUnitKg: 0.011,
		},
	}
	for _, product := range products {
		var count int64
		db.Model(&models.Product{}).Where("name = ?", product.Name).Count(&count)
		if count == 0 {
			if err := db.Create(&product).Error; err != nil {
				return fmt.Errorf("failed to seed product %s: %w", product.Name, err)
			}
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
