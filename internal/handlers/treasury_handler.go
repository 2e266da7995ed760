package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
)

// TreasuryInspector produces treasury snapshots
type TreasuryInspector interface {
	Snapshot(ctx context.Context) (*models.TreasurySnapshot, error)
}

// TreasuryHandler operator view of the treasury
type TreasuryHandler struct {
	inspector TreasuryInspector
	logger    *logrus.Logger
}

// NewTreasuryHandler creates the treasury handler
func NewTreasuryHandler(inspector TreasuryInspector, logger *logrus.Logger) *TreasuryHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TreasuryHandler{inspector: inspector, logger: logger}
}

// GetTreasury
// GET /api/admin/treasury
func (h *TreasuryHandler) GetTreasury(c *gin.Context) {
	snapshot, err := h.inspector.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"admin": c.GetString("admin_username"),
		}).WithError(err).Warn("Treasury snapshot failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"treasury": snapshot,
	})
}
