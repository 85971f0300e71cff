// internal/handlers/listing.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greensupply/greensupply-backend/internal/i18n"
	"github.com/greensupply/greensupply-backend/internal/services"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

type ListingHandler struct {
	listingService *services.ListingService
}

func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// GET /listings
func (h *ListingHandler) GetListings(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	listParams := services.ListingListParams{
		Category:   params.Category,
		ActiveOnly: c.Query("active") == "true",
		Page:       params.Page,
		PageSize:   params.Limit,
	}

	if supplierIDStr := c.Query("supplier_id"); supplierIDStr != "" {
		if supplierID, err := uuid.Parse(supplierIDStr); err == nil {
			listParams.SupplierBusinessID = &supplierID
		}
	}

	listings, total, err := h.listingService.ListListings(listParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(listings, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	listing, err := h.listingService.GetListing(listingID)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			utils.NotFoundResponse(c, "listing")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /supplier/listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	var req services.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	listing, err := h.listingService.CreateListing(businessID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyListingCreated),
		"listing": listing,
	})
}

// PUT /supplier/listings/:id
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	var req services.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	listing, err := h.listingService.UpdateListing(businessID, listingID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			utils.NotFoundResponse(c, "listing")
		case errors.Is(err, services.ErrNotAuthorized):
			utils.ForbiddenResponse(c, "")
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyListingUpdated),
		"listing": listing,
	})
}

// POST /supplier/listings/:id/images
func (h *ListingHandler) UploadListingImage(c *gin.Context) {
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid listing ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Image file is required", nil)
		return
	}
	defer file.Close()

	listing, err := h.listingService.AddListingImage(businessID, listingID, file, header)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			utils.NotFoundResponse(c, "listing")
		case errors.Is(err, services.ErrNotAuthorized):
			utils.ForbiddenResponse(c, "")
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, listing)
}

// GET /products
func (h *ListingHandler) GetProducts(c *gin.Context) {
	products, err := h.listingService.ListProducts(c.Query("category"))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}
