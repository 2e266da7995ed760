package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/handlers"
)

// AdminTokenValidator verifies admin bearer tokens
type AdminTokenValidator interface {
	ValidateAdminJWTToken(tokenString string) (*handlers.AdminJWTClaims, error)
}

// AdminAuthMiddleware admin authentication middleware
type AdminAuthMiddleware struct {
	validator AdminTokenValidator
	logger    *logrus.Logger
}

// NewAdminAuthMiddleware creates the admin authentication middleware
func NewAdminAuthMiddleware(validator AdminTokenValidator, logger *logrus.Logger) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// RequireAdminAuth requires a valid admin bearer token
func (a *AdminAuthMiddleware) RequireAdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			a.reject(c, http.StatusUnauthorized, "Authentication required", "MISSING_AUTH_HEADER", nil)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			a.reject(c, http.StatusUnauthorized, "Invalid authorization format, need Bearer token", "INVALID_AUTH_FORMAT", nil)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			a.reject(c, http.StatusUnauthorized, "Empty token", "EMPTY_TOKEN", nil)
			return
		}

		claims, err := a.validator.ValidateAdminJWTToken(tokenString)
		if err != nil {
			a.reject(c, http.StatusUnauthorized, "Invalid or expired token", "INVALID_TOKEN", logrus.Fields{"error": err.Error()})
			return
		}

		if claims.Role != handlers.AdminRole {
			a.reject(c, http.StatusForbidden, "Insufficient permissions", "INSUFFICIENT_PERMISSIONS", logrus.Fields{"role": claims.Role})
			return
		}

		c.Set("admin_username", claims.Username)
		c.Set("admin_role", claims.Role)

		c.Next()
	}
}

func (a *AdminAuthMiddleware) reject(c *gin.Context, status int, message, code string, extra logrus.Fields) {
	fields := logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
		"code":   code,
	}
	for k, v := range extra {
		fields[k] = v
	}
	a.logger.WithFields(fields).Warn("Admin auth failed")

	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   message,
		"code":    code,
	})
}
