package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/application/ledger/usecases"
	"github.com/tierworks/sellertiers/internal/shared/constants"
	"github.com/tierworks/sellertiers/internal/shared/logger"
	"github.com/tierworks/sellertiers/internal/shared/utils"
)

type TransactionHandler struct {
	listTransactionsUC  listTransactionsUseCase
	refundTransactionUC refundTransactionUseCase
	logger              logger.Interface
}

func NewTransactionHandler(
	listTransactionsUC listTransactionsUseCase,
	refundTransactionUC refundTransactionUseCase,
	logger logger.Interface,
) *TransactionHandler {
	return &TransactionHandler{
		listTransactionsUC:  listTransactionsUC,
		refundTransactionUC: refundTransactionUC,
		logger:              logger,
	}
}

// ListTransactions handles GET /transactions.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	sellerID, err := sellerIDFromContext(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	p := utils.ParsePagination(c)
	result, err := h.listTransactionsUC.Execute(c.Request.Context(), usecases.ListTransactionsQuery{
		SellerID: sellerID,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, toTransactionResponses(result.Transactions), result.Total, p)
}

type RefundTransactionRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// RefundTransaction handles POST /admin/transactions/:id/refund.
func (h *TransactionHandler) RefundTransaction(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "transaction id is required")
		return
	}

	var req RefundTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindingError(err))
		return
	}

	result, err := h.refundTransactionUC.Execute(c.Request.Context(), usecases.RefundTransactionCommand{
		TransactionID: id,
		Reason:        req.Reason,
		RefundedBy:    c.GetString(constants.ContextKeyUserID),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "refund recorded", &RefundResponse{
		Original: toTransactionResponse(result.Original),
		Refund:   toTransactionResponse(result.Refund),
	})
}
