package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
)

var one = big.NewInt(1)

// EligibilityReport decision plus the balances that were read for it.
// TreasuryBalance is nil when the recipient check short-circuited.
type EligibilityReport struct {
	Decision         models.Eligibility
	RecipientBalance *big.Int
	TreasuryBalance  *big.Int
}

// EvaluateEligibility decides from on-chain balances whether to disburse.
// The recipient is read first so already-served requests never touch
// treasury state; the recipient's balance is the only record of past
// disbursements.
func EvaluateEligibility(
	ctx context.Context,
	client ChainClient,
	recipient, treasury common.Address,
	tokenID, amount *big.Int,
	policy models.EligibilityPolicy,
) (*EligibilityReport, error) {
	recipientBalance, err := client.BalanceOf(ctx, recipient, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipient balance: %w", err)
	}

	threshold := one
	if policy == models.EligibilityPolicyFullAmount {
		threshold = amount
	}
	if recipientBalance.Cmp(threshold) >= 0 {
		return &EligibilityReport{
			Decision:         models.EligibilityAlreadySatisfied,
			RecipientBalance: recipientBalance,
		}, nil
	}

	treasuryBalance, err := client.BalanceOf(ctx, treasury, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to read treasury balance: %w", err)
	}

	report := &EligibilityReport{
		Decision:         models.EligibilityProceed,
		RecipientBalance: recipientBalance,
		TreasuryBalance:  treasuryBalance,
	}
	if treasuryBalance.Cmp(amount) < 0 {
		report.Decision = models.EligibilityInsufficientSupply
	}
	return report, nil
}
