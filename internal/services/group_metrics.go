// internal/services/group_metrics.go
package services

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/models"
)

// GroupAggregates is the read-only view-model derived from the commitment
// ledger. It is a pure function of its inputs: recomputing it on an
// unchanged ledger always yields the same values, and nothing here writes
// back to storage.
type GroupAggregates struct {
	CurrentUnits   int     `json:"current_units"`
	BusinessCount  int     `json:"business_count"`
	RemainingUnits int     `json:"remaining_units"`
	ProgressPct    int     `json:"progress_pct"`
	SavingsPerUnit float64 `json:"savings_per_unit"`

	EstimatedSavingsUSD       float64 `json:"estimated_savings_usd"`
	EstimatedSavingsPct       float64 `json:"estimated_savings_pct"`
	EstimatedCO2SavedKg       float64 `json:"estimated_co2_saved_kg"`
	EstimatedPlasticAvoidedKg float64 `json:"estimated_plastic_avoided_kg"`
	DeliveryTripsReduced      int     `json:"delivery_trips_reduced"`
	DeliveryMilesSaved        float64 `json:"delivery_miles_saved"`
}

// ledgerRollup is the raw SUM/COUNT pair read from the commitment ledger.
type ledgerRollup struct {
	CurrentUnits  int
	BusinessCount int
}

// effectiveCapacity is the hard ceiling for a group: its target, never
// past what the supplier still has on the shelf.
func effectiveCapacity(targetUnits, availableUnits int) int {
	if availableUnits < targetUnits {
		return availableUnits
	}
	return targetUnits
}

// BuildGroupAggregates derives the group view-model from the product
// pricing, the ledger rollup, and the capacity ceiling.
func BuildGroupAggregates(product *models.Product, rollup ledgerRollup, targetUnits, capacity int, cfg config.GroupsConfig) GroupAggregates {
	current := rollup.CurrentUnits
	businesses := rollup.BusinessCount

	remaining := capacity - current
	if remaining < 0 {
		remaining = 0
	}

	target := targetUnits
	if target < 1 {
		target = 1
	}
	progress := int(math.Round(100 * float64(current) / float64(target)))
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		// Display clamp only. The capacity invariant keeps the internal
		// tracking at or below 100; going past it is a data error.
		progress = 100
	}

	savingsPerUnit := product.RetailUnitPrice - product.BulkUnitPrice
	if savingsPerUnit < 0 {
		logrus.WithFields(logrus.Fields{
			"product_id":        product.ID,
			"retail_unit_price": product.RetailUnitPrice,
			"bulk_unit_price":   product.BulkUnitPrice,
		}).Warn("bulk price above retail, clamping savings to zero")
		savingsPerUnit = 0
	}

	retailCost := float64(current) * product.RetailUnitPrice
	savings := float64(current) * savingsPerUnit

	savingsPct := 0.0
	if retailCost > 0 {
		savingsPct = round2(100 * savings / retailCost)
	}

	baselineDeliveries := businesses
	consolidatedDeliveries := 0
	if businesses > 0 {
		consolidatedDeliveries = 1
	}
	milesSaved := cfg.BaselineDeliveryMiles*float64(baselineDeliveries) - cfg.ConsolidatedDeliveryMiles
	if milesSaved < 0 {
		milesSaved = 0
	}

	return GroupAggregates{
		CurrentUnits:              current,
		BusinessCount:             businesses,
		RemainingUnits:            remaining,
		ProgressPct:               progress,
		SavingsPerUnit:            round2(savingsPerUnit),
		EstimatedSavingsUSD:       round2(savings),
		EstimatedSavingsPct:       savingsPct,
		EstimatedCO2SavedKg:       round4(float64(current) * product.CO2PerUnitKg),
		EstimatedPlasticAvoidedKg: round4(float64(current) * product.PlasticAvoidedPerUnitKg),
		DeliveryTripsReduced:      maxInt(0, baselineDeliveries-consolidatedDeliveries),
		DeliveryMilesSaved:        round2(milesSaved),
	}
}

// DeriveGroupStatus computes the lifecycle label from the stored terminal
// flag and the live aggregates. near_target and capacity_reached are never
// stored; confirmed is, and wins over everything else.
func DeriveGroupStatus(stored models.GroupStatus, agg GroupAggregates, minBusinessesRequired, nearTargetPct int) models.GroupStatus {
	if stored == models.GroupStatusConfirmed {
		return models.GroupStatusConfirmed
	}

	if agg.RemainingUnits == 0 && agg.CurrentUnits > 0 {
		if agg.BusinessCount < minBusinessesRequired {
			// Capacity is full but the participant floor is unmet; the
			// group waits for supplier approval instead of auto-confirming.
			return models.GroupStatusCapacityReached
		}
		// Auto-confirmation happens inside the join transaction, so this
		// branch is only observable mid-transition.
		return models.GroupStatusConfirmed
	}

	if agg.ProgressPct >= nearTargetPct {
		return models.GroupStatusNearTarget
	}

	return models.GroupStatusActive
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
