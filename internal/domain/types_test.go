package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDenyCooldownRoundsUp(t *testing.T) {
	d := DenyCooldown(1500 * time.Millisecond)
	assert.False(t, d.Allowed)
	assert.Equal(t, DenialReasonCooldown, d.Reason)
	assert.Equal(t, int64(2), d.RemainingSeconds)

	d = DenyCooldown(60 * time.Second)
	assert.Equal(t, int64(60), d.RemainingSeconds)
}

func TestDenyCooldownNeverReportsZero(t *testing.T) {
	d := DenyCooldown(10 * time.Millisecond)
	assert.Equal(t, int64(1), d.RemainingSeconds)

	d = DenyCooldown(0)
	assert.Equal(t, int64(1), d.RemainingSeconds)
}

func TestNormalizeWallet(t *testing.T) {
	assert.Equal(t, "0xabcdef", NormalizeWallet("  0xABCdef "))
	assert.Equal(t, "", NormalizeWallet("   "))
}

func TestIsValidPlatform(t *testing.T) {
	assert.True(t, IsValidPlatform(PlatformTelegram))
	assert.True(t, IsValidPlatform(PlatformFarcaster))
	assert.False(t, IsValidPlatform(Platform("discord")))
}
