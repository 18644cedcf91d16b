package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/infrastructure/auth"
	"github.com/tierworks/sellertiers/internal/shared/constants"
	"github.com/tierworks/sellertiers/internal/shared/logger"
	"github.com/tierworks/sellertiers/internal/shared/utils"
)

type tokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwtService    tokenVerifier
	internalToken string
	logger        logger.Interface
}

func NewAuthMiddleware(jwtService tokenVerifier, internalToken string, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:    jwtService,
		internalToken: internalToken,
		logger:        logger,
	}
}

// RequireAuth accepts a bearer access token and puts the seller identity on
// the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, claims.SellerID)
		c.Set(constants.ContextKeySessionID, claims.SessionID)
		c.Set(constants.ContextKeyUserRole, claims.Role)

		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(constants.ContextKeyUserRole) != role {
			m.logger.Warnw("role check failed",
				"user_id", c.GetString(constants.ContextKeyUserID),
				"required_role", role,
				"path", c.Request.URL.Path,
			)
			utils.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireInternalToken guards the service-to-service routes.
func (m *AuthMiddleware) RequireInternalToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(constants.HeaderInternalToken)
		if token == "" || m.internalToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(m.internalToken)) != 1 {
			m.logger.Warnw("invalid internal token", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid internal token")
			c.Abort()
			return
		}
		c.Next()
	}
}
