// internal/handlers/business.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/i18n"
	"github.com/greensupply/greensupply-backend/internal/services"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

type BusinessHandler struct {
	businessService *services.BusinessService
	config          *config.Config
}

func NewBusinessHandler(businessService *services.BusinessService, cfg *config.Config) *BusinessHandler {
	return &BusinessHandler{
		businessService: businessService,
		config:          cfg,
	}
}

// POST /businesses/register
func (h *BusinessHandler) Register(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RegisterBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	business, err := h.businessService.RegisterBusiness(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	token, err := utils.GenerateJWT(business.ID, business.Name, string(business.AccountType), h.config.JWT.AccessTokenTTL)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyBusinessRegistered),
		"business": business,
		"token":    token,
	})
}

// GET /businesses/me
func (h *BusinessHandler) GetProfile(c *gin.Context) {
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	business, err := h.businessService.GetBusiness(businessID)
	if err != nil {
		if errors.Is(err, services.ErrBusinessNotFound) {
			utils.NotFoundResponse(c, "business")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, business)
}

// PUT /businesses/me
func (h *BusinessHandler) UpdateProfile(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	var req services.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	business, err := h.businessService.UpdateBusiness(businessID, &req)
	if err != nil {
		if errors.Is(err, services.ErrBusinessNotFound) {
			utils.NotFoundResponse(c, "business")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyBusinessUpdated),
		"business": business,
	})
}
