package models

import "errors"

var (
	// ErrInvalidAddress recipient or configured address failed format/checksum validation
	ErrInvalidAddress = errors.New("invalid address")

	// ErrChainUnavailable transport-level failure talking to the RPC node
	ErrChainUnavailable = errors.New("chain unavailable")

	// ErrSubmissionRejected the node refused a signed transaction
	ErrSubmissionRejected = errors.New("submission rejected")

	// ErrInvalidConfig configuration failed validation at startup
	ErrInvalidConfig = errors.New("invalid config")
)
