package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/services"
)

// RequestIDKey gin context key holding the request id
const RequestIDKey = "request_id"

// maxDisburseBody request bodies above this size are refused
const maxDisburseBody = 4 << 10

// Disburser runs one disbursement
type Disburser interface {
	Disburse(ctx context.Context, rawRecipient string) *models.DisbursementResult
}

// DisburseRequest request body
type DisburseRequest struct {
	To string `json:"to"`
}

// DisburseResponse result plus the ok flag the claim page checks
type DisburseResponse struct {
	OK bool `json:"ok"`
	*models.DisbursementResult
}

// DisburseHandler HTTP entry point for disbursements
type DisburseHandler struct {
	service Disburser
	logger  *logrus.Logger
}

// NewDisburseHandler creates the disburse handler
func NewDisburseHandler(service Disburser, logger *logrus.Logger) *DisburseHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DisburseHandler{service: service, logger: logger}
}

// Disburse sends the configured token to the address in the body
// POST /api/disburse, POST /.netlify/functions/transfer1155
func (h *DisburseHandler) Disburse(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDisburseBody)

	var req DisburseRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"ok":    false,
				"error": "Request body too large.",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "Invalid JSON body.",
		})
		return
	}
	if req.To == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "Missing 'to' address in body.",
		})
		return
	}

	requestID := c.GetString(RequestIDKey)
	ctx := services.WithRequestID(c.Request.Context(), requestID)

	result := h.service.Disburse(ctx, req.To)

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     result.Status,
		"client_ip":  c.ClientIP(),
	}).Debug("Disburse request handled")

	c.JSON(HTTPStatusFor(result.Status), DisburseResponse{
		OK:                 !result.Status.IsFailure(),
		DisbursementResult: result,
	})
}

// HTTPStatusFor maps a terminal status to the response code
func HTTPStatusFor(status models.DisbursementStatus) int {
	switch status {
	case models.DisbursementStatusSent,
		models.DisbursementStatusAlready,
		models.DisbursementStatusNoneAvailable:
		return http.StatusOK
	case models.DisbursementStatusInvalidInput,
		models.DisbursementStatusWrongNetwork,
		models.DisbursementStatusSignerMismatch,
		models.DisbursementStatusWouldRevert:
		return http.StatusBadRequest
	case models.DisbursementStatusSubmissionFailed:
		return http.StatusBadGateway
	case models.DisbursementStatusChainUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
