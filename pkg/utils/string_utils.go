package utils

import (
	"regexp"
	"strings"
)

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Useful for fields that are optional and should be NULL in DB if not provided.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var (
	walletAddressRegex = regexp.MustCompile(`^0x[0-9a-f]{40}$`)
	txHashRegex        = regexp.MustCompile(`^0x[0-9a-f]{64}$`)
)

// NormalizeWalletAddress lowercases and trims a payout address so that the
// global uniqueness constraint compares canonical forms.
func NormalizeWalletAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// IsValidWalletAddress reports whether addr is a normalized 20-byte hex address.
func IsValidWalletAddress(addr string) bool {
	return walletAddressRegex.MatchString(addr)
}

// IsValidTransactionHash reports whether h is a normalized 32-byte hex transaction hash.
func IsValidTransactionHash(h string) bool {
	return txHashRegex.MatchString(h)
}

// NormalizeTransactionHash lowercases and trims an on-chain transaction hash.
func NormalizeTransactionHash(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
