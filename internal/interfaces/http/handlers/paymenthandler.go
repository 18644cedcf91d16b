package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/application/payment/usecases"
	"github.com/tierworks/sellertiers/internal/shared/logger"
	"github.com/tierworks/sellertiers/internal/shared/utils"
)

type PaymentHandler struct {
	verifyPaymentUC verifyPaymentUseCase
	logger          logger.Interface
}

func NewPaymentHandler(verifyPaymentUC verifyPaymentUseCase, logger logger.Interface) *PaymentHandler {
	return &PaymentHandler{
		verifyPaymentUC: verifyPaymentUC,
		logger:          logger,
	}
}

type VerifyPaymentRequest struct {
	OrderRef    string `json:"order_ref" binding:"required"`
	PaymentRef  string `json:"payment_ref" binding:"required"`
	Signature   string `json:"signature" binding:"required"`
	PackageName string `json:"package_name" binding:"required"`
}

// VerifyPayment handles POST /payments/verify.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	sellerID, err := sellerIDFromContext(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid verify payment request", "seller_id", sellerID, "error", err)
		utils.ErrorResponseWithError(c, bindingError(err))
		return
	}

	result, err := h.verifyPaymentUC.Execute(c.Request.Context(), usecases.VerifyPaymentCommand{
		SellerID:    sellerID,
		OrderRef:    req.OrderRef,
		PaymentRef:  req.PaymentRef,
		Signature:   req.Signature,
		PackageName: req.PackageName,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	message := "payment verified"
	if result.AlreadyVerified {
		message = "payment already verified"
	}
	utils.SuccessResponse(c, http.StatusOK, message, &VerifyPaymentResponse{
		Subscription:    toSubscriptionResponse(result.Subscription),
		AlreadyVerified: result.AlreadyVerified,
	})
}
