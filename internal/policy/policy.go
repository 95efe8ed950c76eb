// Package policy holds the mint eligibility decision logic: the lifetime cap
// and the cooldown between mints. It is pure - it performs no reads or writes
// and takes the current time as a parameter.
package policy

import (
	"time"

	"github.com/winsznx/cookathon/internal/domain"
	"github.com/winsznx/cookathon/internal/store/schema"
)

// Config holds the two configured limits
type Config struct {
	// MaxMintsPerUser is the lifetime cap on recorded mints
	MaxMintsPerUser int
	// Cooldown is the minimum wait between two mints by the same user
	Cooldown time.Duration
}

// Policy evaluates whether a user may mint right now
type Policy struct {
	config Config
}

// New creates a policy with the given limits, falling back to the defaults
// for unset values
func New(cfg Config) *Policy {
	if cfg.MaxMintsPerUser <= 0 {
		cfg.MaxMintsPerUser = domain.DEFAULT_MAX_MINTS_PER_USER
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = domain.DEFAULT_MINT_COOLDOWN
	}
	return &Policy{config: cfg}
}

// Evaluate decides whether the user may mint at the given instant.
// A user with no row yet is always allowed; the caller creates the row
// separately. The cap check precedes the cooldown check, so a user at the
// cap is denied regardless of how long ago they last minted.
func (p *Policy) Evaluate(user *schema.User, now time.Time) domain.Decision {
	if user == nil {
		return domain.Allow()
	}

	if user.MintedCount >= p.config.MaxMintsPerUser {
		return domain.DenyLifetimeCap()
	}

	if user.LastMintAt != nil {
		elapsed := now.Sub(*user.LastMintAt)
		if elapsed < p.config.Cooldown {
			return domain.DenyCooldown(p.config.Cooldown - elapsed)
		}
	}

	return domain.Allow()
}
