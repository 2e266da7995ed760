package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/utils"
)

// maxUint256 upper bound for token ids and amounts
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// DispenserConfig validated, immutable disbursement configuration. Built once
// at startup and passed to the services that need it.
type DispenserConfig struct {
	RPCEndpoint        string
	PrivateKey         *ecdsa.PrivateKey
	ContractAddress    common.Address
	TreasuryAddress    common.Address
	TokenID            *big.Int
	AmountPerRecipient *big.Int
	ExpectedChainID    uint64
	FeeFloors          models.FeeFloors
	GasLimit           uint64 // 0 = estimate per transaction
	InclusionDeadline  time.Duration
	EligibilityPolicy  models.EligibilityPolicy
	MonitorInterval    time.Duration // 0 disables treasury monitoring
}

// Validate checks presence, positivity and address formats and returns the
// typed configuration. All problems are reported together.
func (p DispenserParams) Validate() (*DispenserConfig, error) {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	out := &DispenserConfig{
		ExpectedChainID:   p.ExpectedChainID,
		EligibilityPolicy: models.EligibilityPolicy(p.EligibilityPolicy),
	}

	if p.RPCEndpoint == "" {
		fail("rpcEndpoint is required")
	} else if u, err := url.Parse(p.RPCEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
		fail("rpcEndpoint %q is not a valid URL", p.RPCEndpoint)
	} else {
		out.RPCEndpoint = p.RPCEndpoint
	}

	if p.PrivateKey == "" {
		fail("privateKey is required")
	} else if key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(p.PrivateKey, "0x"), "0X")); err != nil {
		fail("privateKey is not a valid secp256k1 key: %v", err)
	} else {
		out.PrivateKey = key
	}

	out.ContractAddress = parseConfigAddress("contractAddress", p.ContractAddress, fail)
	out.TreasuryAddress = parseConfigAddress("treasuryAddress", p.TreasuryAddress, fail)

	tokenID, ok := parseUint256(p.TokenID)
	if !ok {
		fail("tokenId %q is not an unsigned 256-bit integer", p.TokenID)
	}
	out.TokenID = tokenID

	amount, ok := parseUint256(p.AmountPerRecipient)
	if !ok || amount.Sign() == 0 {
		fail("amountPerRecipient %q must be a positive 256-bit integer", p.AmountPerRecipient)
	}
	out.AmountPerRecipient = amount

	if p.ExpectedChainID == 0 {
		fail("expectedChainId must be positive")
	}

	floors, err := p.FeeFloors.toFloors(models.FeeModel(p.FeeModel))
	if err != nil {
		errs = append(errs, err)
	}
	out.FeeFloors = floors

	if p.GasLimit != nil {
		out.GasLimit = *p.GasLimit
	}

	if p.InclusionDeadline <= 0 {
		fail("inclusionDeadline must be positive seconds, got %d", p.InclusionDeadline)
	}
	out.InclusionDeadline = time.Duration(p.InclusionDeadline) * time.Second

	switch out.EligibilityPolicy {
	case models.EligibilityPolicyAnyHolding, models.EligibilityPolicyFullAmount:
	default:
		fail("eligibilityPolicy %q must be %s or %s", p.EligibilityPolicy,
			models.EligibilityPolicyAnyHolding, models.EligibilityPolicyFullAmount)
	}

	if p.MonitorInterval > 0 {
		out.MonitorInterval = time.Duration(p.MonitorInterval) * time.Second
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidConfig, errors.Join(errs...))
	}
	return out, nil
}

// SignerAddress address controlled by the configured key
func (c *DispenserConfig) SignerAddress() common.Address {
	return crypto.PubkeyToAddress(c.PrivateKey.PublicKey)
}

func (f FeeFloorsConfig) toFloors(model models.FeeModel) (models.FeeFloors, error) {
	floors := models.FeeFloors{Model: model}
	var errs []error

	switch model {
	case models.FeeModelEIP1559:
		var err error
		if floors.TipCap, err = GweiToWei(f.PriorityFeeGwei); err != nil {
			errs = append(errs, fmt.Errorf("feeFloors.priorityFeeGwei: %w", err))
		}
		if floors.FeeCap, err = GweiToWei(f.MaxFeeGwei); err != nil {
			errs = append(errs, fmt.Errorf("feeFloors.maxFeeGwei: %w", err))
		}
		if floors.TipCap != nil && floors.FeeCap != nil && floors.FeeCap.Cmp(floors.TipCap) < 0 {
			errs = append(errs, fmt.Errorf("feeFloors.maxFeeGwei must not be below priorityFeeGwei"))
		}
	case models.FeeModelLegacy:
		var err error
		if floors.GasPrice, err = GweiToWei(f.GasPriceGwei); err != nil {
			errs = append(errs, fmt.Errorf("feeFloors.gasPriceGwei: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("feeModel %q must be %s or %s", model, models.FeeModelEIP1559, models.FeeModelLegacy))
	}

	return floors, errors.Join(errs...)
}

// GweiToWei parses a positive decimal gwei amount ("40", "1.5") into wei
func GweiToWei(gwei string) (*big.Int, error) {
	f, ok := new(big.Float).SetPrec(256).SetString(strings.TrimSpace(gwei))
	if !ok {
		return nil, fmt.Errorf("%q is not a number", gwei)
	}
	wei, _ := new(big.Float).Mul(f, new(big.Float).SetInt64(params.GWei)).Int(nil)
	if wei.Sign() <= 0 {
		return nil, fmt.Errorf("%q must be positive", gwei)
	}
	return wei, nil
}

func parseConfigAddress(field, raw string, fail func(string, ...any)) common.Address {
	if raw == "" {
		fail("%s is required", field)
		return common.Address{}
	}
	addr, err := utils.NormalizeEVMAddress(raw)
	if err != nil {
		fail("%s: %v", field, err)
		return common.Address{}
	}
	if utils.IsZeroAddress(addr) {
		fail("%s must not be the zero address", field)
	}
	return addr
}

func parseUint256(raw string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok || v.Sign() < 0 || v.Cmp(maxUint256) > 0 {
		return nil, false
	}
	return v, true
}
