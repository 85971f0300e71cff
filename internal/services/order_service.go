// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/greensupply/greensupply-backend/internal/models"
)

// OrderService serves confirmed-order views for both sides of a group buy
// and projects the live delivery position.
type OrderService struct {
	db           *gorm.DB
	routeService *RouteService
}

type OrderParticipant struct {
	BusinessID   uuid.UUID `json:"business_id"`
	BusinessName string    `json:"business_name"`
	Units        int       `json:"units"`
}

type BusinessOrderView struct {
	Order        models.SupplierConfirmedOrder `json:"order"`
	ProductName  string                        `json:"product_name"`
	YourUnits    int                           `json:"your_units"`
	Participants []OrderParticipant            `json:"participants"`
}

func NewOrderService(db *gorm.DB, routeService *RouteService) *OrderService {
	return &OrderService{db: db, routeService: routeService}
}

// ListSupplierOrders returns every confirmed order against a supplier's
// listings, newest first.
func (s *OrderService) ListSupplierOrders(supplierBusinessID uuid.UUID) ([]models.SupplierConfirmedOrder, error) {
	s.reconcileCompletedOrders()

	var orders []models.SupplierConfirmedOrder
	if err := s.db.Preload("Group").Preload("Group.Product").Preload("SupplierListing").
		Where("supplier_business_id = ?", supplierBusinessID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch supplier orders: %w", err)
	}
	return orders, nil
}

// ListBusinessOrders returns the confirmed orders for every group the
// business participates in, with the full participant roster and the
// business's own share of units.
func (s *OrderService) ListBusinessOrders(businessID uuid.UUID) ([]BusinessOrderView, error) {
	s.reconcileCompletedOrders()

	var orders []models.SupplierConfirmedOrder
	if err := s.db.Preload("Group").Preload("Group.Product").
		Joins("JOIN group_commitments ON group_commitments.group_id = supplier_confirmed_orders.group_id").
		Where("group_commitments.business_id = ?", businessID).
		Order("supplier_confirmed_orders.created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch business orders: %w", err)
	}

	views := make([]BusinessOrderView, 0, len(orders))
	for i := range orders {
		order := orders[i]

		var commitments []models.GroupCommitment
		if err := s.db.Preload("Business").
			Where("group_id = ?", order.GroupID).
			Order("created_at ASC").
			Find(&commitments).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch order participants: %w", err)
		}

		view := BusinessOrderView{
			Order:       order,
			ProductName: order.Group.Product.Name,
		}
		for _, c := range commitments {
			view.Participants = append(view.Participants, OrderParticipant{
				BusinessID:   c.BusinessID,
				BusinessName: c.Business.Name,
				Units:        c.Units,
			})
			if c.BusinessID == businessID {
				view.YourUnits = c.Units
			}
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *OrderService) GetOrderForGroup(groupID uuid.UUID) (*models.SupplierConfirmedOrder, error) {
	var order models.SupplierConfirmedOrder
	if err := s.db.Preload("Group").Preload("Group.Product").
		First(&order, "group_id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// GetRoutePosition projects the delivery position for a group's order at
// the current time. The UI polls this while the run is scheduled.
func (s *OrderService) GetRoutePosition(groupID uuid.UUID, now time.Time) (*RoutePosition, error) {
	order, err := s.GetOrderForGroup(groupID)
	if err != nil {
		return nil, err
	}

	position := s.routeService.ProjectPosition(order, now)
	return &position, nil
}

// reconcileCompletedOrders flips scheduled/confirmed orders to completed
// once their estimated window has passed. Best-effort on read paths; a
// failed sweep only delays the label.
func (s *OrderService) reconcileCompletedOrders() {
	err := s.db.Model(&models.SupplierConfirmedOrder{}).
		Where("status <> ?", models.OrderStatusCompleted).
		Where("estimated_end_at IS NOT NULL AND estimated_end_at < ?", time.Now().UTC()).
		Update("status", models.OrderStatusCompleted).Error
	if err != nil {
		logrus.WithError(err).Warn("failed to reconcile completed orders")
	}
}
