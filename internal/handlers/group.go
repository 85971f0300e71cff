// internal/handlers/group.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greensupply/greensupply-backend/internal/i18n"
	"github.com/greensupply/greensupply-backend/internal/services"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// GET /groups
func (h *GroupHandler) GetGroups(c *gin.Context) {
	params := services.GroupListParams{
		StatusFilter: c.Query("status"),
	}

	if regionIDStr := c.Query("region_id"); regionIDStr != "" {
		if regionID, err := strconv.ParseUint(regionIDStr, 10, 32); err == nil {
			id := uint(regionID)
			params.RegionID = &id
		}
	}

	groups, err := h.groupService.ListGroups(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"groups": groups})
}

// GET /groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid group ID", nil)
		return
	}

	detail, err := h.groupService.GetGroupDetail(groupID)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}

	utils.SuccessResponse(c, detail)
}

// POST /groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	var req services.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	detail, err := h.groupService.CreateGroup(businessID, &req)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyGroupCreated),
		"group":   detail,
	})
}

// POST /groups/:id/join
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid group ID", nil)
		return
	}

	var req services.JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	detail, err := h.groupService.JoinGroup(groupID, businessID, req.Units)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyGroupJoined),
		"group":   detail,
	})
}

// POST /groups/:id/approve
func (h *GroupHandler) ApproveGroup(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}

	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid group ID", nil)
		return
	}

	detail, err := h.groupService.ApproveGroup(groupID, businessID)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyGroupConfirmed),
		"group":   detail,
	})
}

// GET /groups/:id/impact
func (h *GroupHandler) GetGroupImpact(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid group ID", nil)
		return
	}

	impact, err := h.groupService.GetGroupImpact(groupID)
	if err != nil {
		h.respondGroupError(c, err)
		return
	}

	utils.SuccessResponse(c, impact)
}

// respondGroupError maps service errors to HTTP semantics. Validation
// failures are 4xx; ledger inconsistencies are 500 and intentionally
// opaque to the caller.
func (h *GroupHandler) respondGroupError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var capacityErr *services.CapacityExceededError
	var inconsistencyErr *services.DataInconsistencyError

	switch {
	case errors.Is(err, services.ErrInvalidUnits):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyGroupInvalidUnits), nil)
	case errors.Is(err, services.ErrGroupClosed):
		utils.ConflictResponse(c, "GROUP_CLOSED", i18n.T(lang, i18n.KeyGroupClosed))
	case errors.Is(err, services.ErrAlreadyJoined):
		utils.ConflictResponse(c, "ALREADY_JOINED", i18n.T(lang, i18n.KeyGroupAlreadyJoined))
	case errors.As(err, &capacityErr):
		utils.UnprocessableResponse(c, "CAPACITY_EXCEEDED",
			i18n.T(lang, i18n.KeyGroupCapacityExceeded, capacityErr.Remaining),
			gin.H{"requested": capacityErr.Requested, "remaining": capacityErr.Remaining})
	case errors.Is(err, services.ErrNotAuthorized):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyGroupApproveForbidden))
	case errors.Is(err, services.ErrNotEligible):
		utils.ConflictResponse(c, "NOT_ELIGIBLE", i18n.T(lang, i18n.KeyGroupNotEligible))
	case errors.Is(err, services.ErrGroupNotFound):
		utils.NotFoundResponse(c, "group")
	case errors.Is(err, services.ErrBusinessNotFound):
		utils.NotFoundResponse(c, "business")
	case errors.Is(err, services.ErrListingNotFound):
		utils.NotFoundResponse(c, "listing")
	case errors.As(err, &inconsistencyErr):
		utils.InternalErrorResponse(c, "")
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}

// requireBusinessID pulls the authenticated business out of the request
// context.
func requireBusinessID(c *gin.Context) (uuid.UUID, bool) {
	businessIDStr, exists := utils.GetBusinessIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	businessID, err := uuid.Parse(businessIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid business ID", nil)
		return uuid.Nil, false
	}

	return businessID, true
}
