package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/handlers"
)

// RequestIDHeader correlation header, echoed on every response
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// RequestID accepts the caller's X-Request-ID or generates a UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.New().String()
		}
		c.Set(handlers.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
