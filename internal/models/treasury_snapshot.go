package models

import "time"

// TreasurySnapshot point-in-time view of the treasury used by the admin API
// and the balance gauges. Token and wei values are decimal strings.
type TreasurySnapshot struct {
	Network                *NetworkIdentity `json:"network"`
	Signer                 string           `json:"signer"`
	Treasury               string           `json:"treasury"`
	SignerMatchesTreasury  bool             `json:"signerMatchesTreasury"`
	NativeSymbol           string           `json:"nativeSymbol"`
	NativeBalanceWei       string           `json:"nativeBalanceWei"`
	NativeBalance          float64          `json:"nativeBalance"`
	Contract               string           `json:"contract"`
	TokenID                string           `json:"tokenId"`
	TokenBalance           string           `json:"tokenBalance"`
	AmountPerRecipient     string           `json:"amountPerRecipient"`
	RemainingDisbursements string           `json:"remainingDisbursements"`
	SuggestedFees          *FeeQuote        `json:"suggestedFees,omitempty"`
	EffectiveFees          FeeQuote         `json:"effectiveFees"`
	CheckedAt              time.Time        `json:"checkedAt"`
}
