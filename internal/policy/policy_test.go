package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/winsznx/cookathon/internal/domain"
	"github.com/winsznx/cookathon/internal/store/schema"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newPolicy() *Policy {
	return New(Config{MaxMintsPerUser: 3, Cooldown: time.Minute})
}

func TestEvaluateUnknownUserAllowed(t *testing.T) {
	d := newPolicy().Evaluate(nil, baseTime)
	assert.True(t, d.Allowed)
}

func TestEvaluateFreshUserAllowed(t *testing.T) {
	user := &schema.User{MintedCount: 0}
	d := newPolicy().Evaluate(user, baseTime)
	assert.True(t, d.Allowed)
}

func TestEvaluateLifetimeCap(t *testing.T) {
	user := &schema.User{MintedCount: 3}
	d := newPolicy().Evaluate(user, baseTime)
	assert.False(t, d.Allowed)
	assert.Equal(t, domain.DenialReasonLifetimeCap, d.Reason)
	assert.Zero(t, d.RemainingSeconds)
}

func TestEvaluateCapPrecedesCooldown(t *testing.T) {
	// At the cap and inside the cooldown window: the cap reason wins.
	last := baseTime.Add(-10 * time.Second)
	user := &schema.User{MintedCount: 3, LastMintAt: &last}
	d := newPolicy().Evaluate(user, baseTime)
	assert.Equal(t, domain.DenialReasonLifetimeCap, d.Reason)
}

func TestEvaluateCooldown(t *testing.T) {
	last := baseTime.Add(-20 * time.Second)
	user := &schema.User{MintedCount: 1, LastMintAt: &last}
	d := newPolicy().Evaluate(user, baseTime)
	assert.False(t, d.Allowed)
	assert.Equal(t, domain.DenialReasonCooldown, d.Reason)
	assert.Equal(t, int64(40), d.RemainingSeconds)
}

func TestEvaluateCooldownElapsed(t *testing.T) {
	last := baseTime.Add(-time.Minute)
	user := &schema.User{MintedCount: 1, LastMintAt: &last}
	d := newPolicy().Evaluate(user, baseTime)
	assert.True(t, d.Allowed)
}

func TestEvaluateNeverMintedSkipsCooldown(t *testing.T) {
	user := &schema.User{MintedCount: 0, LastMintAt: nil}
	d := newPolicy().Evaluate(user, baseTime)
	assert.True(t, d.Allowed)
}

func TestNewAppliesDefaults(t *testing.T) {
	p := New(Config{})
	assert.Equal(t, domain.DEFAULT_MAX_MINTS_PER_USER, p.config.MaxMintsPerUser)
	assert.Equal(t, domain.DEFAULT_MINT_COOLDOWN, p.config.Cooldown)
}
