package services

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
)

// ChainClient is the only gateway to the ledger. Implementations hold no
// business logic. Transport failures are wrapped with models.ErrChainUnavailable.
//
// Concurrent SubmitTransfer calls for the same signer must be serialized or
// nonce-coordinated by the implementation; DisbursementService does not lock.
type ChainClient interface {
	// NetworkIdentity chain id and name of the connected endpoint
	NetworkIdentity(ctx context.Context) (*models.NetworkIdentity, error)

	// BalanceOf current holding of tokenID by holder
	BalanceOf(ctx context.Context, holder common.Address, tokenID *big.Int) (*big.Int, error)

	// SignerAddress address controlled by the configured credential
	SignerAddress(ctx context.Context) (common.Address, error)

	// SuggestedFees best-effort fee suggestion. A nil quote without error means
	// the node offered nothing.
	SuggestedFees(ctx context.Context) (*models.FeeQuote, error)

	// SimulateTransfer runs the transfer against current state without
	// committing. A revert is reported as OK=false with the reason, not as an error.
	SimulateTransfer(ctx context.Context, from, to common.Address, tokenID, amount *big.Int) (*models.SimulationOutcome, error)

	// SubmitTransfer signs and broadcasts the transfer, returning once the node accepts it
	SubmitTransfer(ctx context.Context, from, to common.Address, tokenID, amount *big.Int, fee models.FeeQuote) (*models.TransactionHandle, error)

	// AwaitInclusion waits up to deadline for the transaction to be included
	// with the given number of confirmations. Timeout is reported as false.
	AwaitInclusion(ctx context.Context, handle models.TransactionHandle, confirmations uint64, deadline time.Duration) bool
}
