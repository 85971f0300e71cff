// internal/handlers/region.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/greensupply/greensupply-backend/internal/services"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

type RegionHandler struct {
	regionService *services.RegionService
}

func NewRegionHandler(regionService *services.RegionService) *RegionHandler {
	return &RegionHandler{regionService: regionService}
}

// GET /regions
func (h *RegionHandler) GetRegions(c *gin.Context) {
	regions, err := h.regionService.ListRegions()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"regions": regions})
}

// GET /regions/resolve
func (h *RegionHandler) ResolveRegion(c *gin.Context) {
	var lat, lng *float64
	if latStr := c.Query("lat"); latStr != "" {
		if v, err := strconv.ParseFloat(latStr, 64); err == nil {
			lat = &v
		}
	}
	if lngStr := c.Query("lng"); lngStr != "" {
		if v, err := strconv.ParseFloat(lngStr, 64); err == nil {
			lng = &v
		}
	}
	zip := c.Query("zip")

	if lat == nil && lng == nil && zip == "" {
		utils.BadRequestResponse(c, "Provide lat/lng or zip", nil)
		return
	}

	region, err := h.regionService.ResolveRegion(lat, lng, zip)
	if err != nil {
		if errors.Is(err, services.ErrRegionNotFound) {
			utils.NotFoundResponse(c, "region")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, region)
}
