package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/application/entitlement"
	"github.com/tierworks/sellertiers/internal/application/entitlement/usecases"
	"github.com/tierworks/sellertiers/internal/shared/logger"
	"github.com/tierworks/sellertiers/internal/shared/utils"
)

type EntitlementHandler struct {
	authorizeUC   authorizeUseCase
	recordUsageUC recordUsageUseCase
	logger        logger.Interface
}

func NewEntitlementHandler(authorizeUC authorizeUseCase, recordUsageUC recordUsageUseCase, logger logger.Interface) *EntitlementHandler {
	return &EntitlementHandler{
		authorizeUC:   authorizeUC,
		recordUsageUC: recordUsageUC,
		logger:        logger,
	}
}

type AuthorizeRequest struct {
	Action    string `json:"action" binding:"required"`
	ListingID string `json:"listing_id"`
}

type RecordUsageRequest struct {
	Metric    string `json:"metric" binding:"required"`
	ListingID string `json:"listing_id"`
	Delta     int64  `json:"delta" binding:"required,min=-1000,max=1000"`
}

// Authorize handles POST /entitlements/authorize for the calling seller.
func (h *EntitlementHandler) Authorize(c *gin.Context) {
	sellerID, err := sellerIDFromContext(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.authorize(c, sellerID)
}

// AuthorizeSeller handles POST /internal/sellers/:seller_id/entitlements/authorize.
func (h *EntitlementHandler) AuthorizeSeller(c *gin.Context) {
	sellerID := c.Param("seller_id")
	if sellerID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "seller_id is required")
		return
	}
	h.authorize(c, sellerID)
}

func (h *EntitlementHandler) authorize(c *gin.Context, sellerID string) {
	var req AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindingError(err))
		return
	}

	result, err := h.authorizeUC.Execute(c.Request.Context(), usecases.AuthorizeCommand{
		SellerID:  sellerID,
		Action:    entitlement.Action(req.Action),
		ListingID: req.ListingID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toAuthorizeResponse(result))
}

// RecordUsage handles POST /internal/sellers/:seller_id/usage.
func (h *EntitlementHandler) RecordUsage(c *gin.Context) {
	sellerID := c.Param("seller_id")
	if sellerID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "seller_id is required")
		return
	}

	var req RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindingError(err))
		return
	}

	err := h.recordUsageUC.Execute(c.Request.Context(), usecases.RecordUsageCommand{
		SellerID:  sellerID,
		Metric:    entitlement.UsageMetric(req.Metric),
		ListingID: req.ListingID,
		Delta:     req.Delta,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "usage recorded", nil)
}
