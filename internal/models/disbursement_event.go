package models

import (
	"time"
)

// DisbursementEvent published on NATS after each run. Notification only,
// nothing consumes it as a record of past disbursements.
type DisbursementEvent struct {
	ID          string             `json:"id"` // UUID
	RequestID   string             `json:"request_id"`
	Status      DisbursementStatus `json:"status"`
	Stage       DisbursementStage  `json:"stage"`
	Recipient   string             `json:"recipient,omitempty"`
	ChainID     uint64             `json:"chain_id"`
	Contract    string             `json:"contract"`
	TokenID     string             `json:"token_id"`
	Amount      string             `json:"amount"`
	TxHash      string             `json:"tx_hash,omitempty"`
	Confirmed   bool               `json:"confirmed"`
	Diagnostics map[string]any     `json:"diagnostics,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}
