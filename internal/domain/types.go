package domain

import (
	"strings"
	"time"
)

// Platform identifies which front-end a user or mint arrived through
type Platform string

const (
	PlatformTelegram  Platform = "telegram"
	PlatformFarcaster Platform = "farcaster"
)

// IsValidPlatform checks if a platform tag is one we know about
func IsValidPlatform(p Platform) bool {
	return p == PlatformTelegram || p == PlatformFarcaster
}

// DenialReason tags why a mint was refused
type DenialReason string

const (
	// DenialReasonLifetimeCap means the user has reached the lifetime mint limit
	DenialReasonLifetimeCap DenialReason = "lifetime_cap_reached"
	// DenialReasonCooldown means the user minted too recently
	DenialReasonCooldown DenialReason = "cooldown"
)

// Decision is the outcome of an eligibility evaluation.
// A denial is an expected control-flow result, not an error.
type Decision struct {
	Allowed          bool         `json:"allowed"`
	Reason           DenialReason `json:"reason,omitempty"`
	RemainingSeconds int64        `json:"remaining_seconds,omitempty"`
}

// Allow returns an allow decision
func Allow() Decision {
	return Decision{Allowed: true}
}

// DenyLifetimeCap returns a lifetime-cap denial
func DenyLifetimeCap() Decision {
	return Decision{Allowed: false, Reason: DenialReasonLifetimeCap}
}

// DenyCooldown returns a cooldown denial with the remaining wait,
// ceiling-rounded so "0 seconds remaining" never displays early
func DenyCooldown(remaining time.Duration) Decision {
	secs := int64((remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return Decision{Allowed: false, Reason: DenialReasonCooldown, RemainingSeconds: secs}
}

// NormalizeWallet normalizes a wallet address for storage and lookups.
// EVM addresses are case-insensitive hex; we store them lowercased so
// GetUserByWallet matches regardless of checksum casing.
func NormalizeWallet(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
