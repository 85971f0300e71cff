// internal/services/region_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/greensupply/greensupply-backend/internal/models"
)

// RegionService resolves a business location to a service region.
// Coordinates win over zip codes: the bounding-box lookup is exact, the
// zip-prefix table is a fallback for businesses that are not geocoded.
type RegionService struct {
	db *gorm.DB
}

var ErrRegionNotFound = errors.New("no service region covers this location")

// zipPrefixRegions maps 3-digit zip prefixes to region codes for
// businesses without coordinates.
var zipPrefixRegions = map[string]string{
	"981": "seattle-metro",
	"980": "seattle-metro",
	"941": "sf-bay",
	"940": "sf-bay",
	"945": "sf-bay",
	"900": "la-metro",
	"902": "la-metro",
	"972": "portland-metro",
	"970": "portland-metro",
}

func NewRegionService(db *gorm.DB) *RegionService {
	return &RegionService{db: db}
}

func (s *RegionService) ListRegions() ([]models.Region, error) {
	var regions []models.Region
	if err := s.db.Order("name ASC").Find(&regions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch regions: %w", err)
	}
	return regions, nil
}

func (s *RegionService) GetRegionByCode(code string) (*models.Region, error) {
	var region models.Region
	if err := s.db.First(&region, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &region, nil
}

// ResolveRegion finds the region for a location. Exactly one of the
// coordinate pair or the zip needs to be usable.
func (s *RegionService) ResolveRegion(lat, lng *float64, zip string) (*models.Region, error) {
	if lat != nil && lng != nil {
		var region models.Region
		err := s.db.
			Where("min_lat <= ? AND max_lat >= ? AND min_lng <= ? AND max_lng >= ?",
				*lat, *lat, *lng, *lng).
			First(&region).Error
		if err == nil {
			return &region, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	if trimmed := strings.TrimSpace(zip); len(trimmed) >= 3 {
		if code, ok := zipPrefixRegions[trimmed[:3]]; ok {
			return s.GetRegionByCode(code)
		}
	}

	return nil, ErrRegionNotFound
}
