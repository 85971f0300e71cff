// internal/handlers/dashboard.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/greensupply/greensupply-backend/internal/services"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GET /businesses/me/dashboard
func (h *DashboardHandler) GetBusinessDashboard(c *gin.Context) {
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetBusinessDashboard(businessID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, dashboard)
}
