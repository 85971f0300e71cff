// internal/services/group_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greensupply/greensupply-backend/internal/cache"
	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/models"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

// GroupService owns the buying-group lifecycle. JoinGroup and ApproveGroup
// are the only two entry points that mutate the commitment ledger or the
// terminal confirmed flag; every read path recomputes aggregates from the
// ledger instead of trusting stored counters.
type GroupService struct {
	db                  *gorm.DB
	config              *config.Config
	routeService        *RouteService
	notificationService *NotificationService
	cache               *cache.Cache
}

type CreateGroupRequest struct {
	SupplierListingID     uuid.UUID  `json:"supplier_listing_id" validate:"required"`
	TargetUnits           int        `json:"target_units" validate:"omitempty,min=1"`
	MinBusinessesRequired int        `json:"min_businesses_required" validate:"omitempty,min=1"`
	Deadline              *time.Time `json:"deadline,omitempty"`
}

type JoinGroupRequest struct {
	Units int `json:"units" validate:"required,min=1"`
}

type ProductView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Material        string    `json:"material"`
	Certifications  []string  `json:"certifications"`
	RetailUnitPrice float64   `json:"retail_unit_price"`
	BulkUnitPrice   float64   `json:"bulk_unit_price"`
	MinBulkUnits    int       `json:"min_bulk_units"`
}

// GroupView is the aggregated read model served to the UI. Status here is
// the derived lifecycle label, not the stored column.
type GroupView struct {
	ID                     uuid.UUID          `json:"id"`
	Status                 models.GroupStatus `json:"status"`
	RegionID               uint               `json:"region_id"`
	CreatedByBusinessID    uuid.UUID          `json:"created_by_business_id"`
	SupplierBusinessID     uuid.UUID          `json:"supplier_business_id"`
	SupplierListingID      uuid.UUID          `json:"supplier_listing_id"`
	SupplierAvailableUnits int                `json:"supplier_available_units"`
	TargetUnits            int                `json:"target_units"`
	MinBusinessesRequired  int                `json:"min_businesses_required"`
	Deadline               *time.Time         `json:"deadline"`
	ConfirmedAt            *time.Time         `json:"confirmed_at"`
	CreatedAt              time.Time          `json:"created_at"`
	Product                ProductView        `json:"product"`

	GroupAggregates
}

type CommitmentView struct {
	ID           uuid.UUID `json:"id"`
	BusinessID   uuid.UUID `json:"business_id"`
	BusinessName string    `json:"business_name"`
	Units        int       `json:"units"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type GroupDetail struct {
	GroupView
	Commitments    []CommitmentView               `json:"commitments"`
	ConfirmedOrder *models.SupplierConfirmedOrder `json:"confirmed_order,omitempty"`
}

type GroupImpact struct {
	GroupID                   uuid.UUID              `json:"group_id"`
	CurrentUnits              int                    `json:"current_units"`
	EstimatedSavingsUSD       float64                `json:"estimated_savings_usd"`
	EstimatedCO2SavedKg       float64                `json:"estimated_co2_saved_kg"`
	EstimatedPlasticAvoidedKg float64                `json:"estimated_plastic_avoided_kg"`
	DeliveryMilesSaved        float64                `json:"delivery_miles_saved"`
	DeliveryTripsReduced      int                    `json:"delivery_trips_reduced"`
	CityScaleProjection       map[string]interface{} `json:"city_scale_projection"`
}

func NewGroupService(db *gorm.DB, cfg *config.Config, routeService *RouteService, notificationService *NotificationService, groupCache *cache.Cache) *GroupService {
	return &GroupService{
		db:                  db,
		config:              cfg,
		routeService:        routeService,
		notificationService: notificationService,
		cache:               groupCache,
	}
}

// lockForUpdate takes a row lock on Postgres so concurrent joins against
// the same group serialize at the authoritative store. The sqlite test
// dialect has no FOR UPDATE; there a transaction is already a single
// writer.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (s *GroupService) CreateGroup(creatorID uuid.UUID, req *CreateGroupRequest) (*GroupDetail, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var creator models.Business
	if err := s.db.First(&creator, "id = ?", creatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if creator.AccountType != models.AccountTypeBusiness {
		return nil, errors.New("only business accounts can create buying groups")
	}
	if creator.RegionID == nil {
		return nil, errors.New("business must be assigned to a region before creating a group")
	}

	var listing models.SupplierListing
	if err := s.db.Preload("Product").Preload("Supplier").
		First(&listing, "id = ?", req.SupplierListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if listing.Status != models.ListingStatusActive {
		return nil, errors.New("supplier listing is not active")
	}
	if listing.AvailableUnits <= 0 {
		return nil, errors.New("supplier listing is out of stock")
	}
	if listing.Supplier.AccountType != models.AccountTypeSupplier {
		return nil, errors.New("listing owner is not a supplier account")
	}
	if listing.Supplier.RegionID != nil && *listing.Supplier.RegionID != *creator.RegionID {
		return nil, errors.New("supplier must be in the same region as the buying group")
	}

	targetUnits := req.TargetUnits
	if targetUnits == 0 {
		targetUnits = listing.Product.MinBulkUnits
	}
	if targetUnits > listing.AvailableUnits {
		return nil, errors.New("target units exceed supplier available units")
	}

	minBusinesses := req.MinBusinessesRequired
	if minBusinesses == 0 {
		minBusinesses = s.config.Groups.DefaultMinBusinesses
	}

	deadline := req.Deadline
	if deadline == nil {
		d := time.Now().UTC().Add(time.Duration(s.config.Groups.DefaultDeadlineHours) * time.Hour)
		deadline = &d
	}

	group := &models.BuyingGroup{
		ProductID:             listing.ProductID,
		CreatedByBusinessID:   creatorID,
		SupplierBusinessID:    listing.SupplierBusinessID,
		SupplierListingID:     listing.ID,
		RegionID:              *creator.RegionID,
		TargetUnits:           targetUnits,
		MinBusinessesRequired: minBusinesses,
		Deadline:              deadline,
		Status:                models.GroupStatusActive,
	}

	if err := s.db.Create(group).Error; err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.invalidateListCaches(group.RegionID)

	return s.GetGroupDetail(group.ID)
}

// JoinGroup validates and applies one commitment atomically. Validation
// order is fixed: units, group open, single commitment per business,
// capacity. Concurrent joins against the same group serialize on the
// locked group row, so two requests can never jointly overcommit.
func (s *GroupService) JoinGroup(groupID, businessID uuid.UUID, units int) (*GroupDetail, error) {
	if units < 1 {
		return nil, ErrInvalidUnits
	}

	var regionID uint
	confirmed := false
	capacityReached := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var group models.BuyingGroup
		if err := lockForUpdate(tx).First(&group, "id = ?", groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		regionID = group.RegionID

		if group.IsConfirmed() {
			return ErrGroupClosed
		}

		var business models.Business
		if err := tx.First(&business, "id = ?", businessID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBusinessNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if business.AccountType != models.AccountTypeBusiness {
			return errors.New("only business accounts can join groups")
		}
		if business.RegionID == nil {
			return errors.New("business must be assigned to a region before joining groups")
		}
		if *business.RegionID != group.RegionID {
			return errors.New("businesses can only join groups in their own region")
		}

		var existing int64
		if err := tx.Model(&models.GroupCommitment{}).
			Where("group_id = ? AND business_id = ?", group.ID, businessID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing commitment: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyJoined
		}

		var listing models.SupplierListing
		if err := lockForUpdate(tx).First(&listing, "id = ?", group.SupplierListingID).Error; err != nil {
			return fmt.Errorf("failed to load supplier listing: %w", err)
		}

		rollups, err := s.fetchRollups(tx, []uuid.UUID{group.ID})
		if err != nil {
			return err
		}
		rollup := rollups[group.ID]

		capacity := effectiveCapacity(group.TargetUnits, listing.AvailableUnits)
		if rollup.CurrentUnits+units > capacity {
			remaining := capacity - rollup.CurrentUnits
			if remaining < 0 {
				remaining = 0
			}
			return &CapacityExceededError{Requested: units, Remaining: remaining}
		}

		commitment := &models.GroupCommitment{
			GroupID:    group.ID,
			BusinessID: businessID,
			Units:      units,
		}
		if err := tx.Create(commitment).Error; err != nil {
			return fmt.Errorf("failed to record commitment: %w", err)
		}

		rollup.CurrentUnits += units
		rollup.BusinessCount++

		// Deterministic auto-confirmation in the same transaction: the
		// commitment that fills the last unit also flips the group when
		// the participant floor is already met.
		if capacity-rollup.CurrentUnits == 0 {
			if rollup.BusinessCount >= group.MinBusinessesRequired {
				if err := s.confirmGroupLocked(tx, &group, &listing, rollup); err != nil {
					return err
				}
				confirmed = true
			} else {
				// Full but short of the floor: the supplier decides.
				capacityReached = true
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.invalidateListCaches(regionID)
	if confirmed {
		go s.notifyGroupConfirmed(groupID)
	}
	if capacityReached {
		go s.notifyCapacityReached(groupID)
	}

	return s.GetGroupDetail(groupID)
}

// ApproveGroup is the supplier override for capacity_reached groups: all
// target units are pledged but the participant floor is unmet, so
// confirmation needs an explicit supplier decision.
func (s *GroupService) ApproveGroup(groupID, supplierBusinessID uuid.UUID) (*GroupDetail, error) {
	var regionID uint

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var group models.BuyingGroup
		if err := lockForUpdate(tx).First(&group, "id = ?", groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		regionID = group.RegionID

		if group.SupplierBusinessID != supplierBusinessID {
			return ErrNotAuthorized
		}
		if group.IsConfirmed() {
			return ErrNotEligible
		}

		var listing models.SupplierListing
		if err := lockForUpdate(tx).First(&listing, "id = ?", group.SupplierListingID).Error; err != nil {
			return fmt.Errorf("failed to load supplier listing: %w", err)
		}

		rollups, err := s.fetchRollups(tx, []uuid.UUID{group.ID})
		if err != nil {
			return err
		}
		rollup := rollups[group.ID]

		capacity := effectiveCapacity(group.TargetUnits, listing.AvailableUnits)
		if rollup.CurrentUnits == 0 || rollup.CurrentUnits < capacity {
			return ErrNotEligible
		}

		return s.confirmGroupLocked(tx, &group, &listing, rollup)
	})

	if err != nil {
		return nil, err
	}

	s.invalidateListCaches(regionID)
	go s.notifyGroupConfirmed(groupID)

	return s.GetGroupDetail(groupID)
}

// confirmGroupLocked freezes the group inside the caller's transaction:
// terminal status flip, listing inventory decrement, the one-and-only
// ConfirmedOrder row, and pending share payments for every participant.
// Caller must hold the row locks on group and listing.
func (s *GroupService) confirmGroupLocked(tx *gorm.DB, group *models.BuyingGroup, listing *models.SupplierListing, rollup ledgerRollup) error {
	if listing.AvailableUnits < rollup.CurrentUnits {
		return fmt.Errorf("supplier inventory is insufficient for confirmation: %d units available, %d committed",
			listing.AvailableUnits, rollup.CurrentUnits)
	}

	now := time.Now().UTC()
	if err := tx.Model(group).Updates(map[string]interface{}{
		"status":       models.GroupStatusConfirmed,
		"confirmed_at": now,
	}).Error; err != nil {
		return fmt.Errorf("failed to confirm group: %w", err)
	}
	group.Status = models.GroupStatusConfirmed
	group.ConfirmedAt = &now

	remaining := listing.AvailableUnits - rollup.CurrentUnits
	listingUpdates := map[string]interface{}{"available_units": remaining}
	if remaining == 0 {
		listingUpdates["status"] = models.ListingStatusSoldOut
	}
	if err := tx.Model(listing).Updates(listingUpdates).Error; err != nil {
		return fmt.Errorf("failed to update listing inventory: %w", err)
	}

	var orderCount int64
	if err := tx.Model(&models.SupplierConfirmedOrder{}).
		Where("group_id = ?", group.ID).
		Count(&orderCount).Error; err != nil {
		return fmt.Errorf("failed to check for existing order: %w", err)
	}
	if orderCount > 0 {
		// The unique index makes a second order impossible; reaching this
		// means a confirmed group was re-confirmed somehow.
		return &DataInconsistencyError{GroupID: group.ID, Frozen: rollup.CurrentUnits, LedgerSum: rollup.CurrentUnits}
	}

	order := &models.SupplierConfirmedOrder{
		SupplierBusinessID: group.SupplierBusinessID,
		SupplierListingID:  &listing.ID,
		GroupID:            group.ID,
		TotalUnits:         rollup.CurrentUnits,
		BusinessCount:      rollup.BusinessCount,
		Status:             models.OrderStatusConfirmed,
	}

	start := s.routeService.NextBusinessDayStart(now)
	order.ScheduledStartAt = &start

	var supplier models.Business
	if err := tx.First(&supplier, "id = ?", group.SupplierBusinessID).Error; err != nil {
		return fmt.Errorf("failed to load supplier: %w", err)
	}

	stops, err := s.participantStops(tx, group.ID)
	if err != nil {
		return err
	}

	if supplier.HasLocation() && len(stops) > 0 {
		plan := s.routeService.PlanDeliveryRoute(*supplier.Latitude, *supplier.Longitude, stops)
		order.RoutePoints = plan.Points
		order.RouteTotalMiles = &plan.TotalMiles
		order.RouteTotalMinutes = &plan.TotalMinutes
		end := start.Add(time.Duration(plan.TotalMinutes * float64(time.Minute)))
		order.EstimatedEndAt = &end
	}

	if err := tx.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create confirmed order: %w", err)
	}

	var product models.Product
	if err := tx.First(&product, "id = ?", group.ProductID).Error; err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}

	var commitments []models.GroupCommitment
	if err := tx.Where("group_id = ?", group.ID).Find(&commitments).Error; err != nil {
		return fmt.Errorf("failed to load commitments: %w", err)
	}
	for _, commitment := range commitments {
		payment := &models.CommitmentPayment{
			GroupID:      group.ID,
			CommitmentID: commitment.ID,
			BusinessID:   commitment.BusinessID,
			AmountUSD:    round2(float64(commitment.Units) * product.BulkUnitPrice),
			Currency:     "usd",
			Status:       models.PaymentStatusPending,
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create share payment: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"group_id":       group.ID,
		"total_units":    rollup.CurrentUnits,
		"business_count": rollup.BusinessCount,
	}).Info("Buying group confirmed")

	return nil
}

// participantStops returns (lat, lng) for every geocoded participant.
func (s *GroupService) participantStops(tx *gorm.DB, groupID uuid.UUID) ([][2]float64, error) {
	var businesses []models.Business
	if err := tx.
		Joins("JOIN group_commitments ON group_commitments.business_id = businesses.id").
		Where("group_commitments.group_id = ?", groupID).
		Where("businesses.latitude IS NOT NULL AND businesses.longitude IS NOT NULL").
		Order("group_commitments.created_at ASC").
		Find(&businesses).Error; err != nil {
		return nil, fmt.Errorf("failed to load participant locations: %w", err)
	}

	stops := make([][2]float64, 0, len(businesses))
	for _, b := range businesses {
		stops = append(stops, [2]float64{*b.Latitude, *b.Longitude})
	}
	return stops, nil
}

type GroupListParams struct {
	RegionID     *uint
	StatusFilter string // "", "in_progress" or "confirmed"
}

func (s *GroupService) ListGroups(params GroupListParams) ([]GroupView, error) {
	cacheKey := s.listCacheKey(params)
	var cached []GroupView
	if s.cache.GetJSON(context.Background(), cacheKey, &cached) {
		return cached, nil
	}

	query := s.db.Model(&models.BuyingGroup{}).
		Preload("Product").Preload("SupplierListing").
		Order("created_at DESC")

	if params.RegionID != nil {
		query = query.Where("region_id = ?", *params.RegionID)
	}
	switch params.StatusFilter {
	case "confirmed":
		query = query.Where("status = ?", models.GroupStatusConfirmed)
	case "in_progress":
		query = query.Where("status = ?", models.GroupStatusActive)
	}

	var groups []models.BuyingGroup
	if err := query.Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch groups: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	rollups, err := s.fetchRollups(s.db, ids)
	if err != nil {
		return nil, err
	}

	views := make([]GroupView, 0, len(groups))
	for i := range groups {
		views = append(views, s.buildView(&groups[i], rollups[groups[i].ID]))
	}

	s.cache.SetJSON(context.Background(), cacheKey, views)
	return views, nil
}

func (s *GroupService) GetGroupDetail(groupID uuid.UUID) (*GroupDetail, error) {
	var group models.BuyingGroup
	if err := s.db.Preload("Product").Preload("SupplierListing").
		First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	rollups, err := s.fetchRollups(s.db, []uuid.UUID{group.ID})
	if err != nil {
		return nil, err
	}
	rollup := rollups[group.ID]

	detail := &GroupDetail{GroupView: s.buildView(&group, rollup)}

	var commitments []models.GroupCommitment
	if err := s.db.Preload("Business").
		Where("group_id = ?", group.ID).
		Order("created_at ASC").
		Find(&commitments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch commitments: %w", err)
	}
	detail.Commitments = make([]CommitmentView, 0, len(commitments))
	for _, c := range commitments {
		detail.Commitments = append(detail.Commitments, CommitmentView{
			ID:           c.ID,
			BusinessID:   c.BusinessID,
			BusinessName: c.Business.Name,
			Units:        c.Units,
			Latitude:     c.Business.Latitude,
			Longitude:    c.Business.Longitude,
			CreatedAt:    c.CreatedAt,
		})
	}

	if group.IsConfirmed() {
		var order models.SupplierConfirmedOrder
		err := s.db.First(&order, "group_id = ?", group.ID).Error
		switch {
		case err == nil:
			// Frozen totals must agree with the ledger. If they do not,
			// abort instead of trusting either side.
			if order.TotalUnits != rollup.CurrentUnits {
				inconsistency := &DataInconsistencyError{
					GroupID:   group.ID,
					Frozen:    order.TotalUnits,
					LedgerSum: rollup.CurrentUnits,
				}
				logrus.WithError(inconsistency).Error("confirmed order totals disagree with commitment ledger")
				return nil, inconsistency
			}
			detail.ConfirmedOrder = &order
		case errors.Is(err, gorm.ErrRecordNotFound):
			logrus.WithField("group_id", group.ID).Warn("confirmed group has no confirmed order row")
		default:
			return nil, fmt.Errorf("failed to fetch confirmed order: %w", err)
		}
	}

	return detail, nil
}

func (s *GroupService) GetGroupImpact(groupID uuid.UUID) (*GroupImpact, error) {
	detail, err := s.GetGroupDetail(groupID)
	if err != nil {
		return nil, err
	}

	cityBusinesses := s.config.Groups.CityProjectionBusinesses
	businessCount := maxInt(1, detail.BusinessCount)
	scale := float64(cityBusinesses) / float64(businessCount)

	return &GroupImpact{
		GroupID:                   detail.ID,
		CurrentUnits:              detail.CurrentUnits,
		EstimatedSavingsUSD:       detail.EstimatedSavingsUSD,
		EstimatedCO2SavedKg:       detail.EstimatedCO2SavedKg,
		EstimatedPlasticAvoidedKg: detail.EstimatedPlasticAvoidedKg,
		DeliveryMilesSaved:        detail.DeliveryMilesSaved,
		DeliveryTripsReduced:      detail.DeliveryTripsReduced,
		CityScaleProjection: map[string]interface{}{
			"businesses":                  cityBusinesses,
			"yearly_co2_saved_kg":         round2(detail.EstimatedCO2SavedKg * scale * 12),
			"yearly_plastic_avoided_kg":   round2(detail.EstimatedPlasticAvoidedKg * scale * 12),
			"yearly_delivery_miles_saved": round2(detail.DeliveryMilesSaved * scale * 12),
		},
	}, nil
}

// ListingFor resolves the supplier listing a group buys against.
func (s *GroupService) ListingFor(groupID uuid.UUID) (*models.SupplierListing, error) {
	var group models.BuyingGroup
	if err := s.db.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var listing models.SupplierListing
	if err := s.db.Preload("Product").First(&listing, "id = ?", group.SupplierListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &listing, nil
}

// fetchRollups reads SUM(units) and COUNT(DISTINCT business) per group in
// one query. Groups with no commitments are absent from the map; the zero
// value is the correct rollup for them.
func (s *GroupService) fetchRollups(tx *gorm.DB, groupIDs []uuid.UUID) (map[uuid.UUID]ledgerRollup, error) {
	rollups := make(map[uuid.UUID]ledgerRollup, len(groupIDs))
	if len(groupIDs) == 0 {
		return rollups, nil
	}

	var rows []struct {
		GroupID       uuid.UUID
		CurrentUnits  int
		BusinessCount int
	}
	if err := tx.Model(&models.GroupCommitment{}).
		Select("group_id, COALESCE(SUM(units), 0) AS current_units, COUNT(DISTINCT business_id) AS business_count").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate commitments: %w", err)
	}

	for _, row := range rows {
		rollups[row.GroupID] = ledgerRollup{
			CurrentUnits:  row.CurrentUnits,
			BusinessCount: row.BusinessCount,
		}
	}
	return rollups, nil
}

func (s *GroupService) buildView(group *models.BuyingGroup, rollup ledgerRollup) GroupView {
	capacity := effectiveCapacity(group.TargetUnits, group.SupplierListing.AvailableUnits)
	if group.IsConfirmed() {
		// Inventory was decremented at confirmation; the frozen ledger is
		// the capacity that was actually bought.
		capacity = rollup.CurrentUnits
	}

	agg := BuildGroupAggregates(&group.Product, rollup, group.TargetUnits, capacity, s.config.Groups)
	status := DeriveGroupStatus(group.Status, agg, group.MinBusinessesRequired, s.config.Groups.NearTargetPct)

	return GroupView{
		ID:                     group.ID,
		Status:                 status,
		RegionID:               group.RegionID,
		CreatedByBusinessID:    group.CreatedByBusinessID,
		SupplierBusinessID:     group.SupplierBusinessID,
		SupplierListingID:      group.SupplierListingID,
		SupplierAvailableUnits: group.SupplierListing.AvailableUnits,
		TargetUnits:            group.TargetUnits,
		MinBusinessesRequired:  group.MinBusinessesRequired,
		Deadline:               group.Deadline,
		ConfirmedAt:            group.ConfirmedAt,
		CreatedAt:              group.CreatedAt,
		Product: ProductView{
			ID:              group.Product.ID,
			Name:            group.Product.Name,
			Category:        group.Product.Category,
			Material:        group.Product.Material,
			Certifications:  group.Product.Certifications,
			RetailUnitPrice: group.Product.RetailUnitPrice,
			BulkUnitPrice:   group.Product.BulkUnitPrice,
			MinBulkUnits:    group.Product.MinBulkUnits,
		},
		GroupAggregates: agg,
	}
}

func (s *GroupService) listCacheKey(params GroupListParams) string {
	region := "all"
	if params.RegionID != nil {
		region = fmt.Sprintf("%d", *params.RegionID)
	}
	filter := params.StatusFilter
	if filter == "" {
		filter = "any"
	}
	return fmt.Sprintf("groups:list:%s:%s", region, filter)
}

func (s *GroupService) invalidateListCaches(regionID uint) {
	keys := make([]string, 0, 6)
	for _, region := range []string{"all", fmt.Sprintf("%d", regionID)} {
		for _, filter := range []string{"any", "in_progress", "confirmed"} {
			keys = append(keys, fmt.Sprintf("groups:list:%s:%s", region, filter))
		}
	}
	s.cache.Invalidate(context.Background(), keys...)
}

func (s *GroupService) notifyGroupConfirmed(groupID uuid.UUID) {
	if s.notificationService == nil {
		return
	}

	detail, err := s.GetGroupDetail(groupID)
	if err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Error("failed to load group for confirmation email")
		return
	}

	if err := s.notificationService.SendGroupConfirmedEmails(detail); err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Error("failed to send confirmation emails")
	}
}

func (s *GroupService) notifyCapacityReached(groupID uuid.UUID) {
	if s.notificationService == nil {
		return
	}

	if err := s.sendApprovalRequest(groupID); err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Error("failed to send approval request email")
	}
}

// sendApprovalRequest asks the group's supplier to decide on a group that
// pledged every unit without reaching the participant floor.
func (s *GroupService) sendApprovalRequest(groupID uuid.UUID) error {
	detail, err := s.GetGroupDetail(groupID)
	if err != nil {
		return err
	}
	return s.notificationService.SendGroupApprovalRequestEmail(detail)
}
