// internal/services/dashboard_service.go
package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/models"
)

// DashboardService aggregates a business's cumulative impact across all
// of its commitments. Everything is recomputed from the ledger on demand.
type DashboardService struct {
	db     *gorm.DB
	config *config.Config
}

type BusinessDashboard struct {
	GroupsJoined              int      `json:"groups_joined"`
	GroupsConfirmed           int      `json:"groups_confirmed"`
	TotalUnitsCommitted       int      `json:"total_units_committed"`
	TotalSavingsUSD           float64  `json:"total_savings_usd"`
	TotalCO2SavedKg           float64  `json:"total_co2_saved_kg"`
	TotalPlasticAvoidedKg     float64  `json:"total_plastic_avoided_kg"`
	DeliveryTripsReduced      int      `json:"delivery_trips_reduced"`
	MedianHoursToConfirmation *float64 `json:"median_hours_to_confirmation"`
}

func NewDashboardService(db *gorm.DB, cfg *config.Config) *DashboardService {
	return &DashboardService{db: db, config: cfg}
}

func (s *DashboardService) GetBusinessDashboard(businessID uuid.UUID) (*BusinessDashboard, error) {
	var commitments []models.GroupCommitment
	if err := s.db.Preload("Group").Preload("Group.Product").
		Where("business_id = ?", businessID).
		Find(&commitments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch commitments: %w", err)
	}

	dashboard := &BusinessDashboard{GroupsJoined: len(commitments)}

	var hoursToConfirmation []float64
	for _, c := range commitments {
		group := c.Group
		product := group.Product

		dashboard.TotalUnitsCommitted += c.Units

		savingsPerUnit := product.RetailUnitPrice - product.BulkUnitPrice
		if savingsPerUnit < 0 {
			savingsPerUnit = 0
		}
		dashboard.TotalSavingsUSD += float64(c.Units) * savingsPerUnit
		dashboard.TotalCO2SavedKg += float64(c.Units) * product.CO2PerUnitKg
		dashboard.TotalPlasticAvoidedKg += float64(c.Units) * product.PlasticAvoidedPerUnitKg

		if group.IsConfirmed() {
			dashboard.GroupsConfirmed++
			// One consolidated run replaces this business's own trip.
			dashboard.DeliveryTripsReduced++

			if group.ConfirmedAt != nil {
				hours := group.ConfirmedAt.Sub(c.CreatedAt).Hours()
				if hours >= 0 {
					hoursToConfirmation = append(hoursToConfirmation, hours)
				}
			}
		}
	}

	dashboard.TotalSavingsUSD = round2(dashboard.TotalSavingsUSD)
	dashboard.TotalCO2SavedKg = round4(dashboard.TotalCO2SavedKg)
	dashboard.TotalPlasticAvoidedKg = round4(dashboard.TotalPlasticAvoidedKg)

	if len(hoursToConfirmation) > 0 {
		median := round2(medianOf(hoursToConfirmation))
		dashboard.MedianHoursToConfirmation = &median
	}

	return dashboard, nil
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
