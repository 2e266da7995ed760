package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingHandler liveness probe kept from the serverless deployment
// GET /ping, GET /.netlify/functions/ping
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Functions are working.",
	})
}

// HealthCheckHandler
// GET /health
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "nft-giveaway",
		"api":     "healthy",
	})
}

// MethodNotAllowedHandler
func MethodNotAllowedHandler(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"ok":    false,
		"error": "Method Not Allowed",
	})
}

// NotFoundHandler
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"ok":    false,
		"error": "Not Found",
	})
}
