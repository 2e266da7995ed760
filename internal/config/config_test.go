package config

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
)

const (
	testKey      = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSigner   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testContract = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

func validParams() DispenserParams {
	cfg, _ := ParseConfig([]byte(`
dispenser:
  rpcEndpoint: https://polygon-rpc.com
  privateKey: "` + testKey + `"
  contractAddress: "` + testContract + `"
  treasuryAddress: "` + testSigner + `"
  tokenId: "7"
`))
	return cfg.Dispenser
}

func TestParseConfigAppliesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("server:\n  host: 0.0.0.0\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	d := cfg.Dispenser
	if d.AmountPerRecipient != "1" || d.ExpectedChainID != 137 || d.FeeModel != "eip1559" {
		t.Fatalf("unexpected dispenser defaults: %+v", d)
	}
	if d.GasLimit == nil || *d.GasLimit != 200000 {
		t.Fatalf("expected default gas limit 200000, got %v", d.GasLimit)
	}
	if d.InclusionDeadline != 12 || d.EligibilityPolicy != "any_holding" {
		t.Fatalf("unexpected defaults: deadline=%d policy=%s", d.InclusionDeadline, d.EligibilityPolicy)
	}
}

func TestParseConfigKeepsExplicitZeroGasLimit(t *testing.T) {
	cfg, err := ParseConfig([]byte("dispenser:\n  gasLimit: 0\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg.Dispenser.GasLimit == nil || *cfg.Dispenser.GasLimit != 0 {
		t.Fatalf("expected explicit zero gas limit, got %v", cfg.Dispenser.GasLimit)
	}
}

func TestValidateBuildsTypedConfig(t *testing.T) {
	dc, err := validParams().Validate()
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if dc.SignerAddress().Hex() != testSigner {
		t.Fatalf("expected signer %s, got %s", testSigner, dc.SignerAddress().Hex())
	}
	if dc.TreasuryAddress.Hex() != testSigner || dc.ContractAddress.Hex() != testContract {
		t.Fatalf("unexpected addresses: %s %s", dc.TreasuryAddress.Hex(), dc.ContractAddress.Hex())
	}
	if dc.TokenID.Cmp(big.NewInt(7)) != 0 || dc.AmountPerRecipient.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("unexpected token/amount: %s %s", dc.TokenID, dc.AmountPerRecipient)
	}
	if dc.FeeFloors.Model != models.FeeModelEIP1559 {
		t.Fatalf("expected eip1559 floors, got %s", dc.FeeFloors.Model)
	}
	if dc.FeeFloors.TipCap.String() != "40000000000" || dc.FeeFloors.FeeCap.String() != "80000000000" {
		t.Fatalf("unexpected floors: tip=%s cap=%s", dc.FeeFloors.TipCap, dc.FeeFloors.FeeCap)
	}
	if dc.InclusionDeadline != 12*time.Second || dc.GasLimit != 200000 {
		t.Fatalf("unexpected deadline/gas limit: %v %d", dc.InclusionDeadline, dc.GasLimit)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	p := validParams()
	p.RPCEndpoint = ""
	p.PrivateKey = "zz"
	p.TreasuryAddress = "not-an-address"
	p.AmountPerRecipient = "0"
	p.EligibilityPolicy = "sometimes"

	_, err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, models.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	for _, want := range []string{"rpcEndpoint", "privateKey", "treasuryAddress", "amountPerRecipient", "eligibilityPolicy"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %s, got %v", want, err)
		}
	}
}

func TestValidateRejectsOversizedTokenID(t *testing.T) {
	p := validParams()
	p.TokenID = new(big.Int).Lsh(big.NewInt(1), 256).String()
	if _, err := p.Validate(); err == nil {
		t.Fatal("expected error for token id wider than 256 bits")
	}
	p.TokenID = "-1"
	if _, err := p.Validate(); err == nil {
		t.Fatal("expected error for negative token id")
	}
}

func TestValidateFeeFloors(t *testing.T) {
	p := validParams()
	p.FeeFloors.PriorityFeeGwei = "0"
	if _, err := p.Validate(); err == nil {
		t.Fatal("expected error for zero tip floor")
	}

	p = validParams()
	p.FeeFloors.MaxFeeGwei = "10"
	if _, err := p.Validate(); err == nil {
		t.Fatal("expected error for cap floor below tip floor")
	}

	p = validParams()
	p.FeeModel = "legacy"
	p.FeeFloors.GasPriceGwei = "1.5"
	dc, err := p.Validate()
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if dc.FeeFloors.GasPrice.String() != "1500000000" {
		t.Fatalf("expected 1.5 gwei in wei, got %s", dc.FeeFloors.GasPrice)
	}
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("dispenser:\n  tokenId: \"1\"\n  rpcEndpoint: http://file\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("RPC_URL", "https://env-rpc")
	t.Setenv("ADMIN_ADDRESS", testSigner)
	t.Setenv("AMOUNT_PER_USER", "3")
	t.Setenv("EXPECTED_CHAIN_ID", "80002")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	d := cfg.Dispenser
	if d.RPCEndpoint != "https://env-rpc" || d.TreasuryAddress != testSigner || d.AmountPerRecipient != "3" {
		t.Fatalf("env overrides not applied: %+v", d)
	}
	if d.TokenID != "1" {
		t.Fatalf("expected token id from file, got %s", d.TokenID)
	}
	if d.ExpectedChainID != 80002 {
		t.Fatalf("expected chain id 80002, got %d", d.ExpectedChainID)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestGweiToWei(t *testing.T) {
	wei, err := GweiToWei("40")
	if err != nil || wei.String() != "40000000000" {
		t.Fatalf("unexpected conversion: %v %v", wei, err)
	}
	if _, err := GweiToWei("abc"); err == nil {
		t.Fatal("expected error for non-number")
	}
	if _, err := GweiToWei("-1"); err == nil {
		t.Fatal("expected error for negative")
	}
}
