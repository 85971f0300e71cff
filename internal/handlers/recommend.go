// internal/handlers/recommend.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greensupply/greensupply-backend/internal/i18n"
	"github.com/greensupply/greensupply-backend/internal/services"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

type RecommendHandler struct {
	recommendationService *services.RecommendationService
}

func NewRecommendHandler(recommendationService *services.RecommendationService) *RecommendHandler {
	return &RecommendHandler{recommendationService: recommendationService}
}

type RecommendRequest struct {
	GroupID     string `json:"group_id" validate:"required"`
	Constraints string `json:"constraints"`
}

// POST /recommend
func (h *RecommendHandler) RecommendGroupPackaging(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid group ID", nil)
		return
	}

	recommendation, err := h.recommendationService.BuildGroupRecommendation(groupID, req.Constraints)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			utils.NotFoundResponse(c, "group")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, recommendation)
}
