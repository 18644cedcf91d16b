package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/shared/constants"
	"github.com/tierworks/sellertiers/internal/shared/errors"
	"github.com/tierworks/sellertiers/internal/shared/utils"
)

// sellerIDFromContext returns the authenticated seller set by the auth
// middleware.
func sellerIDFromContext(c *gin.Context) (string, error) {
	sellerID := c.GetString(constants.ContextKeyUserID)
	if sellerID == "" {
		return "", errors.NewUnauthorizedError("not authenticated")
	}
	return sellerID, nil
}

func bindingError(err error) error {
	return utils.BindingError(err)
}
