// Package session manages the short-lived bridging tokens that connect a
// browser minting flow back to the telegram user who started it.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/winsznx/cookathon/internal/adapter"
	"github.com/winsznx/cookathon/internal/domain"
	"github.com/winsznx/cookathon/internal/store"
	"github.com/winsznx/cookathon/internal/store/schema"
)

// Manager mints, resolves and reaps sessions. Expiry is always re-checked on
// the request path against the injected clock; the periodic sweep only
// reclaims storage.
type Manager struct {
	store      store.Store
	clock      adapter.Clock
	defaultTTL time.Duration
}

// NewManager creates a session manager. defaultTTL is used when a caller
// passes a non-positive TTL.
func NewManager(st store.Store, clock adapter.Clock, defaultTTL time.Duration) *Manager {
	if defaultTTL <= 0 {
		defaultTTL = domain.DEFAULT_SESSION_TTL
	}
	return &Manager{store: st, clock: clock, defaultTTL: defaultTTL}
}

// Create mints a new session token for the telegram user. payload is
// free-form front-end state carried with the session; nil is fine. Token
// collisions are absorbed by the store's upsert, replacing the stale row's
// owner and expiry rather than failing.
func (m *Manager) Create(ctx context.Context, telegramID int64, ttl time.Duration, payload []byte) (*schema.Session, error) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	session, err := m.store.CreateSession(ctx, store.CreateSessionInput{
		Token:      uuid.NewString(),
		TelegramID: telegramID,
		Payload:    datatypes.JSON(payload),
		ExpiresAt:  m.clock.Now().Add(ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Resolve returns the session only while it is live; an expired row behaves
// as not-found even though it may still physically exist until the next sweep.
func (m *Manager) Resolve(ctx context.Context, token string) (*schema.Session, error) {
	session, err := m.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil || !m.clock.Now().Before(session.ExpiresAt) {
		return nil, nil
	}
	return session, nil
}

// AttachWallet records the connected wallet on a live session. Attaching to
// a missing or expired token fails with ErrSessionExpired.
func (m *Manager) AttachWallet(ctx context.Context, token string, wallet string) error {
	session, err := m.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrSessionExpired
	}

	found, err := m.store.UpdateSessionWallet(ctx, token, wallet)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrSessionExpired
	}
	return nil
}

// Sweep deletes every row past expiry, returning the reaped count.
// Overlapping sweeps are harmless.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	return m.store.DeleteExpiredSessions(ctx, m.clock.Now())
}
