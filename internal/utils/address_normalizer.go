package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
)

var hexAddressPattern = regexp.MustCompile("^[0-9a-fA-F]{40}$")

// IsEvmAddress checks whether address is a 20-byte hex address, with or without 0x prefix
func IsEvmAddress(address string) bool {
	return hexAddressPattern.MatchString(stripHexPrefix(strings.TrimSpace(address)))
}

// NormalizeEVMAddress validates a recipient string and returns the typed address.
// All-lowercase and all-uppercase input is accepted as is; mixed-case input
// must carry a valid EIP-55 checksum.
func NormalizeEVMAddress(raw string) (common.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return common.Address{}, fmt.Errorf("%w: empty address", models.ErrInvalidAddress)
	}

	body := stripHexPrefix(trimmed)
	if !hexAddressPattern.MatchString(body) {
		return common.Address{}, fmt.Errorf("%w: %q is not a 20-byte hex address", models.ErrInvalidAddress, TruncateInput(raw))
	}

	address := common.HexToAddress(body)
	if isMixedCase(body) && address.Hex()[2:] != body {
		return common.Address{}, fmt.Errorf("%w: bad checksum for %q", models.ErrInvalidAddress, TruncateInput(raw))
	}

	return address, nil
}

// IsZeroAddress reports whether a is 0x000...0
func IsZeroAddress(a common.Address) bool {
	return a == (common.Address{})
}

// MaxEchoedInput longest caller-supplied string echoed into errors, logs and responses
const MaxEchoedInput = 64

// TruncateInput caps caller-supplied text before it is echoed back
func TruncateInput(raw string) string {
	if len(raw) <= MaxEchoedInput {
		return raw
	}
	return raw[:MaxEchoedInput] + "..."
}

func stripHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
