// internal/handlers/order.go
package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greensupply/greensupply-backend/internal/services"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// GET /supplier/orders
func (h *OrderHandler) GetSupplierOrders(c *gin.Context) {
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListSupplierOrders(businessID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"orders": orders})
}

// GET /businesses/me/orders
func (h *OrderHandler) GetBusinessOrders(c *gin.Context) {
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListBusinessOrders(businessID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"orders": orders})
}

// GET /groups/:id/order
func (h *OrderHandler) GetGroupOrder(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid group ID", nil)
		return
	}

	order, err := h.orderService.GetOrderForGroup(groupID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.NotFoundResponse(c, "order")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, order)
}

// GET /groups/:id/route
func (h *OrderHandler) GetRoutePosition(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid group ID", nil)
		return
	}

	position, err := h.orderService.GetRoutePosition(groupID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.NotFoundResponse(c, "order")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, position)
}
