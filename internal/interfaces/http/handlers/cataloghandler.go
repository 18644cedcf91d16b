package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/shared/utils"
)

type CatalogHandler struct {
	getPriceTableUC getPriceTableUseCase
}

func NewCatalogHandler(getPriceTableUC getPriceTableUseCase) *CatalogHandler {
	return &CatalogHandler{getPriceTableUC: getPriceTableUC}
}

// ListPackages handles GET /packages.
func (h *CatalogHandler) ListPackages(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", toPriceTableResponse(h.getPriceTableUC.Execute()))
}
