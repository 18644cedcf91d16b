package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/application/common"
	"github.com/tierworks/sellertiers/internal/shared/logger"
	"github.com/tierworks/sellertiers/internal/shared/utils"
)

type SubscriptionHandler struct {
	subscriptions subscriptionStore
	logger        logger.Interface
}

func NewSubscriptionHandler(subscriptions subscriptionStore, logger logger.Interface) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// GetSubscription handles GET /subscription. It reports the stored row and
// never downgrades; expiry is enforced on the entitlement path.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	sellerID, err := sellerIDFromContext(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	sub, err := h.subscriptions.Current(c.Request.Context(), sellerID)
	if err != nil {
		utils.ErrorResponseWithError(c, common.ToAppError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", toSubscriptionResponse(sub))
}

// ProvisionSeller handles POST /internal/sellers/:seller_id/provision.
func (h *SubscriptionHandler) ProvisionSeller(c *gin.Context) {
	sellerID := c.Param("seller_id")
	if sellerID == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "seller_id is required")
		return
	}

	sub, err := h.subscriptions.Provision(c.Request.Context(), sellerID)
	if err != nil {
		h.logger.Errorw("failed to provision seller", "seller_id", sellerID, "error", err)
		utils.ErrorResponseWithError(c, common.ToAppError(err))
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "seller provisioned", toSubscriptionResponse(sub))
}
