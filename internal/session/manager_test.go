package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winsznx/cookathon/internal/domain"
	"github.com/winsznx/cookathon/internal/store"
	"github.com/winsznx/cookathon/internal/testutil"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, defaultTTL time.Duration) (*Manager, *testutil.FakeClock) {
	t.Helper()
	db := testutil.NewTestDB(t)
	clock := testutil.NewFakeClock(testStart)
	return NewManager(store.NewSQLiteStore(db, clock), clock, defaultTTL), clock
}

func TestCreateAndResolve(t *testing.T) {
	m, clock := newTestManager(t, time.Hour)
	ctx := context.Background()

	created, err := m.Create(ctx, 111, 0, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(111), created.TelegramID)
	assert.WithinDuration(t, clock.Now().Add(time.Hour), created.ExpiresAt, time.Second)

	resolved, err := m.Resolve(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, created.ID, resolved.ID)
}

func TestCreateUsesUniqueTokens(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	a, err := m.Create(ctx, 1, 0, nil)
	require.NoError(t, err)
	b, err := m.Create(ctx, 1, 0, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestResolveExpiresWithSimulatedTime(t *testing.T) {
	m, clock := newTestManager(t, time.Hour)
	ctx := context.Background()

	created, err := m.Create(ctx, 111, time.Second, nil)
	require.NoError(t, err)

	resolved, err := m.Resolve(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, resolved)

	// Two simulated seconds later the same token reads as gone, with no
	// sweep having run.
	clock.Advance(2 * time.Second)
	resolved, err = m.Resolve(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestResolveExactExpiryInstant(t *testing.T) {
	m, clock := newTestManager(t, time.Hour)
	ctx := context.Background()

	created, err := m.Create(ctx, 111, time.Second, nil)
	require.NoError(t, err)

	// expires_at itself is already not-live.
	clock.Advance(time.Second)
	resolved, err := m.Resolve(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestResolveUnknownToken(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	resolved, err := m.Resolve(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestAttachWallet(t *testing.T) {
	m, clock := newTestManager(t, time.Hour)
	ctx := context.Background()

	created, err := m.Create(ctx, 111, time.Minute, nil)
	require.NoError(t, err)

	require.NoError(t, m.AttachWallet(ctx, created.ID, "0xABC"))

	resolved, err := m.Resolve(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.NotNil(t, resolved.WalletAddress)
	assert.Equal(t, "0xabc", *resolved.WalletAddress)

	// Once expired the token refuses wallet attachment.
	clock.Advance(2 * time.Minute)
	err = m.AttachWallet(ctx, created.ID, "0xDEF")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestAttachWalletUnknownToken(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	err := m.AttachWallet(context.Background(), "no-such-token", "0xabc")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestSweepReapsOnlyExpired(t *testing.T) {
	m, clock := newTestManager(t, time.Hour)
	ctx := context.Background()

	expired, err := m.Create(ctx, 1, time.Second, nil)
	require.NoError(t, err)
	live, err := m.Create(ctx, 2, time.Hour, nil)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	reaped, err := m.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reaped)

	gone, err := m.Resolve(ctx, expired.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := m.Resolve(ctx, live.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
