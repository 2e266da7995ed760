package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DisbursementStatus terminal status of one disbursement run
type DisbursementStatus string

const (
	DisbursementStatusSent             DisbursementStatus = "sent"              // transaction accepted by the node
	DisbursementStatusAlready          DisbursementStatus = "already"           // recipient already holds the token
	DisbursementStatusNoneAvailable    DisbursementStatus = "none_available"    // treasury cannot cover the amount
	DisbursementStatusInvalidInput     DisbursementStatus = "invalid_input"     // malformed recipient
	DisbursementStatusWrongNetwork     DisbursementStatus = "wrong_network"     // RPC is on another chain
	DisbursementStatusSignerMismatch   DisbursementStatus = "signer_mismatch"   // key does not control the treasury
	DisbursementStatusWouldRevert      DisbursementStatus = "would_revert"      // dry-run failed
	DisbursementStatusSubmissionFailed DisbursementStatus = "submission_failed" // node rejected the transaction
	DisbursementStatusChainUnavailable DisbursementStatus = "chain_unavailable" // transport failure on a read
)

// IsFailure reports whether the status is an error outcome. Already and
// NoneAvailable are expected terminal states, not failures.
func (s DisbursementStatus) IsFailure() bool {
	switch s {
	case DisbursementStatusSent, DisbursementStatusAlready, DisbursementStatusNoneAvailable:
		return false
	default:
		return true
	}
}

// DisbursementStage orchestration stage, used in diagnostics and metrics
type DisbursementStage string

const (
	StageValidating          DisbursementStage = "validating"
	StageCheckingNetwork     DisbursementStage = "checking_network"
	StageCheckingSigner      DisbursementStage = "checking_signer"
	StageCheckingEligibility DisbursementStage = "checking_eligibility"
	StageSimulating          DisbursementStage = "simulating"
	StagePricing             DisbursementStage = "pricing"
	StageSubmitting          DisbursementStage = "submitting"
	StageAwaitingInclusion   DisbursementStage = "awaiting_inclusion"
	StageDone                DisbursementStage = "done"
)

// Eligibility outcome of the balance checks
type Eligibility int

const (
	EligibilityProceed Eligibility = iota
	EligibilityAlreadySatisfied
	EligibilityInsufficientSupply
)

func (e Eligibility) String() string {
	switch e {
	case EligibilityProceed:
		return "proceed"
	case EligibilityAlreadySatisfied:
		return "already_satisfied"
	case EligibilityInsufficientSupply:
		return "insufficient_supply"
	default:
		return "unknown"
	}
}

// EligibilityPolicy decides what recipient balance counts as already served
type EligibilityPolicy string

const (
	EligibilityPolicyAnyHolding EligibilityPolicy = "any_holding" // balance >= 1
	EligibilityPolicyFullAmount EligibilityPolicy = "full_amount" // balance >= amount per recipient
)

// NetworkIdentity chain the RPC endpoint is connected to
type NetworkIdentity struct {
	ChainID uint64 `json:"chainId"`
	Name    string `json:"name"`
}

// FeeModel transaction pricing model
type FeeModel string

const (
	FeeModelEIP1559 FeeModel = "eip1559"
	FeeModelLegacy  FeeModel = "legacy"
)

// FeeQuote price terms for one transaction. TipCap/FeeCap are set for
// EIP-1559, GasPrice for legacy. Values are wei.
type FeeQuote struct {
	Model    FeeModel `json:"model"`
	TipCap   *big.Int `json:"maxPriorityFeePerGas,omitempty"`
	FeeCap   *big.Int `json:"maxFeePerGas,omitempty"`
	GasPrice *big.Int `json:"gasPrice,omitempty"`
}

// FeeFloors configured minimums, wei
type FeeFloors struct {
	Model    FeeModel
	TipCap   *big.Int
	FeeCap   *big.Int
	GasPrice *big.Int
}

// SimulationOutcome predicted result of a transfer
type SimulationOutcome struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// TransactionHandle returned once the node accepts a transaction
type TransactionHandle struct {
	Hash  common.Hash `json:"hash"`
	Nonce uint64      `json:"nonce"`
}

// DisbursementResult the only artifact returned to the gateway
type DisbursementResult struct {
	Status      DisbursementStatus `json:"status"`
	Stage       DisbursementStage  `json:"stage"`
	TxHash      string             `json:"txHash,omitempty"`
	Recipient   string             `json:"recipient,omitempty"`
	Contract    string             `json:"contract,omitempty"`
	TokenID     string             `json:"tokenId,omitempty"`
	Amount      string             `json:"amount,omitempty"`
	Confirmed   bool               `json:"confirmed"`
	Network     *NetworkIdentity   `json:"network,omitempty"`
	Fees        *FeeQuote          `json:"usedFees,omitempty"`
	Diagnostics map[string]any     `json:"diagnostics,omitempty"`
}

// NewDisbursementResult creates a result with an empty diagnostics map
func NewDisbursementResult(status DisbursementStatus, stage DisbursementStage) *DisbursementResult {
	return &DisbursementResult{
		Status:      status,
		Stage:       stage,
		Diagnostics: make(map[string]any),
	}
}
