package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/metrics"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
)

// Publisher the NATS surface used here; *clients.NATSClient satisfies it
type Publisher interface {
	Publish(subject string, payload any) error
}

// DisbursementEvents publishes one event per disbursement result on
// <prefix>.<network>.Disbursement.<Status>. Publishing is best effort.
type DisbursementEvents struct {
	publisher Publisher
	prefix    string
	logger    *logrus.Logger
}

// NewDisbursementEvents creates the event publisher
func NewDisbursementEvents(publisher Publisher, prefix string, logger *logrus.Logger) *DisbursementEvents {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if prefix == "" {
		prefix = "giveaway"
	}
	return &DisbursementEvents{publisher: publisher, prefix: prefix, logger: logger}
}

// PublishDisbursement implements services.DisbursementPublisher
func (e *DisbursementEvents) PublishDisbursement(ctx context.Context, requestID string, result *models.DisbursementResult) {
	event := NewDisbursementEvent(requestID, result)
	subject := DisbursementSubject(e.prefix, result)

	if err := e.publisher.Publish(subject, event); err != nil {
		metrics.NATSPublishFailed.WithLabelValues(string(result.Status)).Inc()
		e.logger.WithFields(logrus.Fields{
			"subject":    subject,
			"request_id": requestID,
		}).WithError(err).Warn("Failed to publish disbursement event")
		return
	}
	e.logger.WithFields(logrus.Fields{
		"subject":  subject,
		"event_id": event.ID,
	}).Debug("Disbursement event published")
}

// NewDisbursementEvent builds the wire event for result
func NewDisbursementEvent(requestID string, result *models.DisbursementResult) *models.DisbursementEvent {
	event := &models.DisbursementEvent{
		ID:          uuid.New().String(),
		RequestID:   requestID,
		Status:      result.Status,
		Stage:       result.Stage,
		Recipient:   result.Recipient,
		Contract:    result.Contract,
		TokenID:     result.TokenID,
		Amount:      result.Amount,
		TxHash:      result.TxHash,
		Confirmed:   result.Confirmed,
		Diagnostics: result.Diagnostics,
		CreatedAt:   time.Now().UTC(),
	}
	if result.Network != nil {
		event.ChainID = result.Network.ChainID
	}
	return event
}

// DisbursementSubject e.g. giveaway.matic.Disbursement.NoneAvailable
func DisbursementSubject(prefix string, result *models.DisbursementResult) string {
	network := "unknown"
	if result.Network != nil && result.Network.Name != "" {
		network = result.Network.Name
	}
	return strings.Join([]string{prefix, network, "Disbursement", pascalCase(string(result.Status))}, ".")
}

func pascalCase(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}
