// internal/services/business_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/models"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

type BusinessService struct {
	db            *gorm.DB
	config        *config.Config
	regionService *RegionService
}

type RegisterBusinessRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=255"`
	Email        string   `json:"email" validate:"required,email"`
	BusinessType string   `json:"business_type" validate:"required"`
	AccountType  string   `json:"account_type" validate:"omitempty,oneof=business supplier"`
	Address      string   `json:"address" validate:"omitempty,max=255"`
	Neighborhood string   `json:"neighborhood" validate:"required"`
	Zip          string   `json:"zip" validate:"omitempty,us_zip"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
}

type UpdateBusinessRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Address      *string  `json:"address,omitempty" validate:"omitempty,max=255"`
	Neighborhood *string  `json:"neighborhood,omitempty"`
	Zip          *string  `json:"zip,omitempty" validate:"omitempty,us_zip"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
}

func NewBusinessService(db *gorm.DB, cfg *config.Config, regionService *RegionService) *BusinessService {
	return &BusinessService{
		db:            db,
		config:        cfg,
		regionService: regionService,
	}
}

// RegisterBusiness creates a business profile and assigns it to a service
// region from its location. A business outside every region is still
// registered; it just cannot create or join groups until it has one.
func (s *BusinessService) RegisterBusiness(req *RegisterBusinessRequest) (*models.Business, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing int64
	if err := s.db.Model(&models.Business{}).
		Where("email = ?", req.Email).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing > 0 {
		return nil, errors.New("a business with this email already exists")
	}

	accountType := models.AccountTypeBusiness
	if req.AccountType != "" {
		accountType = models.AccountType(req.AccountType)
	}

	business := &models.Business{
		Name:         req.Name,
		Email:        req.Email,
		BusinessType: req.BusinessType,
		AccountType:  accountType,
		Address:      req.Address,
		Neighborhood: req.Neighborhood,
		Zip:          req.Zip,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}

	if region, err := s.regionService.ResolveRegion(req.Latitude, req.Longitude, req.Zip); err == nil {
		business.RegionID = &region.ID
	}

	if err := s.db.Create(business).Error; err != nil {
		return nil, fmt.Errorf("failed to register business: %w", err)
	}

	return business, nil
}

func (s *BusinessService) GetBusiness(businessID uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := s.db.Preload("Region").
		First(&business, "id = ?", businessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &business, nil
}

// UpdateBusiness applies profile changes and re-resolves the region when
// the location moved.
func (s *BusinessService) UpdateBusiness(businessID uuid.UUID, req *UpdateBusinessRequest) (*models.Business, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	business, err := s.GetBusiness(businessID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Neighborhood != nil {
		updates["neighborhood"] = *req.Neighborhood
	}

	locationChanged := false
	if req.Zip != nil {
		updates["zip"] = *req.Zip
		business.Zip = *req.Zip
		locationChanged = true
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
		business.Latitude = req.Latitude
		locationChanged = true
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
		business.Longitude = req.Longitude
		locationChanged = true
	}

	if locationChanged {
		if region, err := s.regionService.ResolveRegion(business.Latitude, business.Longitude, business.Zip); err == nil {
			updates["region_id"] = region.ID
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(business).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update business: %w", err)
		}
	}

	return s.GetBusiness(businessID)
}
