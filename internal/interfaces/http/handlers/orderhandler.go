package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/application/order/usecases"
	"github.com/tierworks/sellertiers/internal/shared/logger"
	"github.com/tierworks/sellertiers/internal/shared/utils"
)

type OrderHandler struct {
	createOrderUC createOrderUseCase
	logger        logger.Interface
}

func NewOrderHandler(createOrderUC createOrderUseCase, logger logger.Interface) *OrderHandler {
	return &OrderHandler{
		createOrderUC: createOrderUC,
		logger:        logger,
	}
}

// CreateOrderRequest carries only the package name. The amount is always
// taken from the catalog, so any amount in the body is never bound.
type CreateOrderRequest struct {
	PackageName string `json:"package_name" binding:"required"`
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	sellerID, err := sellerIDFromContext(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid create order request", "seller_id", sellerID, "error", err)
		utils.ErrorResponseWithError(c, bindingError(err))
		return
	}

	result, err := h.createOrderUC.Execute(c.Request.Context(), usecases.CreateOrderCommand{
		SellerID:    sellerID,
		PackageName: req.PackageName,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := &OrderResponse{
		OrderRef:      result.OrderRef,
		Amount:        result.Amount,
		Currency:      result.Currency,
		AlreadyActive: result.AlreadyActive,
		Subscription:  toSubscriptionResponse(result.Subscription),
	}
	if result.AlreadyActive {
		utils.SuccessResponse(c, http.StatusOK, "package activated", resp)
		return
	}
	utils.CreatedResponse(c, resp, "order created")
}
