package utils

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
)

func TestNormalizeEVMAddressAcceptsCanonicalForms(t *testing.T) {
	const checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

	inputs := []string{
		checksummed,
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"0X5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED",
		"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"  " + checksummed + "\n",
	}
	for _, input := range inputs {
		got, err := NormalizeEVMAddress(input)
		if err != nil {
			t.Fatalf("NormalizeEVMAddress(%q) failed: %v", input, err)
		}
		if got.Hex() != checksummed {
			t.Fatalf("NormalizeEVMAddress(%q) = %s, expected %s", input, got.Hex(), checksummed)
		}
	}
}

func TestNormalizeEVMAddressRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not-an-address",
		"0x",
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1bea",     // too short
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed00", // too long
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaeg",   // non-hex
		"0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",   // bad checksum
		"T9yD14Nj9j7xAB4dbGeiX9h8unkKHxuWwb",           // tron
	}
	for _, input := range inputs {
		_, err := NormalizeEVMAddress(input)
		if err == nil {
			t.Fatalf("expected error for %q", input)
		}
		if !errors.Is(err, models.ErrInvalidAddress) {
			t.Fatalf("expected ErrInvalidAddress for %q, got %v", input, err)
		}
	}
}

func TestIsEvmAddress(t *testing.T) {
	if !IsEvmAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed") {
		t.Fatal("expected prefixed address to be accepted")
	}
	if IsEvmAddress("0x1234") {
		t.Fatal("expected short address to be rejected")
	}
}

func TestMaxBig(t *testing.T) {
	one, two := big.NewInt(1), big.NewInt(2)
	if MaxBig(one, two) != two || MaxBig(two, one) != two {
		t.Fatal("expected the larger value")
	}
	if MaxBig(nil, one) != one || MaxBig(one, nil) != one {
		t.Fatal("expected nil to lose")
	}
}

func TestChainRegistry(t *testing.T) {
	if EVMChainName(137) != "matic" {
		t.Fatalf("expected matic, got %s", EVMChainName(137))
	}
	if EVMChainName(999999) != "unknown" {
		t.Fatalf("expected unknown, got %s", EVMChainName(999999))
	}
	if url := GlobalChainRegistry.TxURL(137, "0xabc"); url != "https://polygonscan.com/tx/0xabc" {
		t.Fatalf("unexpected explorer url %s", url)
	}
	if url := GlobalChainRegistry.TxURL(999999, "0xabc"); url != "" {
		t.Fatalf("expected empty url, got %s", url)
	}
}

func TestNormalizeEVMAddressBoundsErrorText(t *testing.T) {
	raw := strings.Repeat("g", 5000)
	_, err := NormalizeEVMAddress(raw)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 3*MaxEchoedInput {
		t.Fatalf("expected bounded error text, got %d bytes", len(err.Error()))
	}
	if got := TruncateInput("0xabc"); got != "0xabc" {
		t.Fatalf("expected short input unchanged, got %q", got)
	}
}
