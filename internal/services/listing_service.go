// internal/services/listing_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/models"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

type ListingService struct {
	db             *gorm.DB
	config         *config.Config
	storageService *StorageService
}

type CreateListingRequest struct {
	ProductID      uuid.UUID `json:"product_id" validate:"required"`
	Name           string    `json:"name" validate:"required,min=2,max=255"`
	AvailableUnits int       `json:"available_units" validate:"required,min=1"`
	UnitPrice      float64   `json:"unit_price" validate:"required,gt=0"`
	MinOrderUnits  int       `json:"min_order_units" validate:"omitempty,min=1"`
}

type UpdateListingRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	AvailableUnits *int     `json:"available_units,omitempty" validate:"omitempty,min=0"`
	UnitPrice      *float64 `json:"unit_price,omitempty" validate:"omitempty,gt=0"`
	MinOrderUnits  *int     `json:"min_order_units,omitempty" validate:"omitempty,min=1"`
	Status         *string  `json:"status,omitempty" validate:"omitempty,oneof=active sold_out suspended"`
}

type ListingListParams struct {
	SupplierBusinessID *uuid.UUID
	Category           string
	ActiveOnly         bool
	Page               int
	PageSize           int
}

func NewListingService(db *gorm.DB, cfg *config.Config, storageService *StorageService) *ListingService {
	return &ListingService{
		db:             db,
		config:         cfg,
		storageService: storageService,
	}
}

func (s *ListingService) ListListings(params ListingListParams) ([]models.SupplierListing, int64, error) {
	query := s.db.Model(&models.SupplierListing{}).
		Preload("Product").Preload("Supplier")

	if params.SupplierBusinessID != nil {
		query = query.Where("supplier_business_id = ?", *params.SupplierBusinessID)
	}
	if params.ActiveOnly {
		query = query.Where("status = ?", models.ListingStatusActive)
	}
	if params.Category != "" {
		query = query.Joins("JOIN products ON products.id = supplier_listings.product_id").
			Where("products.category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	var listings []models.SupplierListing
	offset := utils.PaginationOffset(params.Page, params.PageSize)
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(utils.PaginationLimit(params.PageSize)).
		Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	return listings, total, nil
}

func (s *ListingService) GetListing(listingID uuid.UUID) (*models.SupplierListing, error) {
	var listing models.SupplierListing
	if err := s.db.Preload("Product").Preload("Supplier").
		First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &listing, nil
}

func (s *ListingService) CreateListing(supplierBusinessID uuid.UUID, req *CreateListingRequest) (*models.SupplierListing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var supplier models.Business
	if err := s.db.First(&supplier, "id = ?", supplierBusinessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if supplier.AccountType != models.AccountTypeSupplier {
		return nil, errors.New("only supplier accounts can create listings")
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	minOrderUnits := req.MinOrderUnits
	if minOrderUnits == 0 {
		minOrderUnits = 1
	}

	listing := &models.SupplierListing{
		SupplierBusinessID: supplierBusinessID,
		ProductID:          product.ID,
		Name:               req.Name,
		AvailableUnits:     req.AvailableUnits,
		UnitPrice:          req.UnitPrice,
		MinOrderUnits:      minOrderUnits,
		Status:             models.ListingStatusActive,
	}

	if err := s.db.Create(listing).Error; err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	return s.GetListing(listing.ID)
}

func (s *ListingService) UpdateListing(supplierBusinessID, listingID uuid.UUID, req *UpdateListingRequest) (*models.SupplierListing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var listing models.SupplierListing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if listing.SupplierBusinessID != supplierBusinessID {
		return nil, ErrNotAuthorized
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.AvailableUnits != nil {
		updates["available_units"] = *req.AvailableUnits
		// Restocking a sold-out listing reopens it.
		if listing.Status == models.ListingStatusSoldOut && *req.AvailableUnits > 0 {
			updates["status"] = models.ListingStatusActive
		}
	}
	if req.UnitPrice != nil {
		updates["unit_price"] = *req.UnitPrice
	}
	if req.MinOrderUnits != nil {
		updates["min_order_units"] = *req.MinOrderUnits
	}
	if req.Status != nil {
		updates["status"] = models.ListingStatus(*req.Status)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&listing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update listing: %w", err)
		}
	}

	return s.GetListing(listing.ID)
}

// AddListingImage uploads an image and appends its URL to the listing.
func (s *ListingService) AddListingImage(supplierBusinessID, listingID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.SupplierListing, error) {
	var listing models.SupplierListing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if listing.SupplierBusinessID != supplierBusinessID {
		return nil, ErrNotAuthorized
	}

	if err := s.storageService.ValidateImage(file); err != nil {
		return nil, err
	}

	result, err := s.storageService.UploadFile(file, header, s.storageService.GetDefaultUploadOptions("listings"))
	if err != nil {
		return nil, fmt.Errorf("failed to upload listing image: %w", err)
	}

	images := append(listing.Images, result.URL)
	if err := s.db.Model(&listing).Update("images", images).Error; err != nil {
		return nil, fmt.Errorf("failed to save listing image: %w", err)
	}

	return s.GetListing(listing.ID)
}

// ListProducts returns the sustainable product catalog, optionally by
// category.
func (s *ListingService) ListProducts(category string) ([]models.Product, error) {
	query := s.db.Model(&models.Product{}).Order("name ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}
