package domain

import "time"

const (
	// Eligibility defaults
	DEFAULT_MAX_MINTS_PER_USER = 10
	DEFAULT_MINT_COOLDOWN      = time.Minute

	// Session defaults
	DEFAULT_SESSION_TTL    = time.Hour
	DEFAULT_SWEEP_INTERVAL = time.Hour
)
