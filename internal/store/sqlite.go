package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/winsznx/cookathon/internal/adapter"
	"github.com/winsznx/cookathon/internal/domain"
	"github.com/winsznx/cookathon/internal/store/schema"
)

type sqliteStore struct {
	db    *gorm.DB
	clock adapter.Clock
}

// NewSQLiteStore creates a new SQLite-backed store instance
func NewSQLiteStore(db *gorm.DB, clock adapter.Clock) Store {
	return &sqliteStore{db: db, clock: clock}
}

// Open opens the embedded store file with WAL journaling and a busy timeout,
// so concurrent writers inside the process serialize at the engine level.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// constraintErr maps engine-level uniqueness failures to the domain sentinel
// so callers can distinguish them from transient storage errors
func constraintErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
	}
	return err
}

// UpsertUserByTelegramID creates a user for the chat-platform ID if none
// exists, otherwise refreshes display_name and updated_at
func (s *sqliteStore) UpsertUserByTelegramID(ctx context.Context, telegramID int64, displayName string) (*schema.User, error) {
	return s.upsertUser(ctx, "telegram_id = ?", telegramID, displayName, func(now time.Time) schema.User {
		return schema.User{
			TelegramID:  &telegramID,
			DisplayName: displayName,
			Platform:    domain.PlatformTelegram,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	})
}

// UpsertUserByFarcasterFID creates a user for the social-graph ID if none
// exists, otherwise refreshes display_name and updated_at
func (s *sqliteStore) UpsertUserByFarcasterFID(ctx context.Context, fid int64, displayName string) (*schema.User, error) {
	return s.upsertUser(ctx, "farcaster_fid = ?", fid, displayName, func(now time.Time) schema.User {
		return schema.User{
			FarcasterFID: &fid,
			DisplayName:  displayName,
			Platform:     domain.PlatformFarcaster,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	})
}

func (s *sqliteStore) upsertUser(ctx context.Context, cond string, platformID int64, displayName string, build func(now time.Time) schema.User) (*schema.User, error) {
	now := s.clock.Now().UTC()
	var user schema.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(cond, platformID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = build(now)
			if err := tx.Create(&user).Error; err != nil {
				return constraintErr(err)
			}
			return nil
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"display_name": displayName,
			"updated_at":   now,
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		user.DisplayName = displayName
		user.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, nil
}

// GetUserByTelegramID retrieves a user by chat-platform ID
func (s *sqliteStore) GetUserByTelegramID(ctx context.Context, telegramID int64) (*schema.User, error) {
	return s.getUser(ctx, "telegram_id = ?", telegramID)
}

// GetUserByFarcasterFID retrieves a user by social-graph ID
func (s *sqliteStore) GetUserByFarcasterFID(ctx context.Context, fid int64) (*schema.User, error) {
	return s.getUser(ctx, "farcaster_fid = ?", fid)
}

// GetUserByID retrieves a user by internal surrogate key
func (s *sqliteStore) GetUserByID(ctx context.Context, id int64) (*schema.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *sqliteStore) getUser(ctx context.Context, cond string, arg interface{}) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where(cond, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByWallet retrieves the user holding the wallet address. Two internal
// users may share a wallet (one per namespace, no automatic merge); the most
// recently updated row wins, with id as a deterministic tie-break.
func (s *sqliteStore) GetUserByWallet(ctx context.Context, wallet string) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).
		Where("wallet_address = ?", domain.NormalizeWallet(wallet)).
		Order("updated_at DESC, id DESC").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by wallet: %w", err)
	}
	return &user, nil
}

// AttachWallet overwrites the stored wallet address unconditionally
// (last-connected-wallet-wins)
func (s *sqliteStore) AttachWallet(ctx context.Context, userID int64, wallet string) error {
	now := s.clock.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&schema.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"wallet_address": domain.NormalizeWallet(wallet),
			"updated_at":     now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to attach wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// RecordMint inserts one minted-asset row and, in the same transaction,
// increments the owner's minted_count and stamps last_mint_at. Both writes
// commit together or neither does.
func (s *sqliteStore) RecordMint(ctx context.Context, input RecordMintInput) (*schema.MintedAsset, error) {
	now := s.clock.Now().UTC()
	platform := input.Platform
	if platform == "" {
		platform = domain.PlatformTelegram
	}

	asset := schema.MintedAsset{
		TokenID:            input.TokenID,
		OwnerUserID:        input.OwnerUserID,
		OwnerWalletAddress: domain.NormalizeWallet(input.WalletAddress),
		MetadataURI:        input.MetadataURI,
		TransactionRef:     input.TransactionRef,
		BlockHeight:        input.BlockHeight,
		Platform:           platform,
		MintedAt:           now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&asset).Error; err != nil {
			return constraintErr(err)
		}

		res := tx.Model(&schema.User{}).
			Where("id = ?", input.OwnerUserID).
			Updates(map[string]interface{}{
				"minted_count": gorm.Expr("minted_count + 1"),
				"last_mint_at": now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record mint: %w", err)
	}
	return &asset, nil
}

// ListMintedAssets returns all of the user's assets, most recent mint first
func (s *sqliteStore) ListMintedAssets(ctx context.Context, userID int64) ([]*schema.MintedAsset, error) {
	var assets []*schema.MintedAsset
	err := s.db.WithContext(ctx).
		Where("owner_user_id = ?", userID).
		Order("minted_at DESC, id DESC").
		Find(&assets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list minted assets: %w", err)
	}
	return assets, nil
}

// CountMintedAssets counts the user's minted-asset rows. The result is
// expected to always agree with users.minted_count.
func (s *sqliteStore) CountMintedAssets(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.MintedAsset{}).
		Where("owner_user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count minted assets: %w", err)
	}
	return count, nil
}

// CreateSession inserts a session row. On the vanishingly unlikely token
// collision the existing row's owner and expiry are replaced rather than
// failing the call.
func (s *sqliteStore) CreateSession(ctx context.Context, input CreateSessionInput) (*schema.Session, error) {
	now := s.clock.Now().UTC()
	session := schema.Session{
		ID:         input.Token,
		TelegramID: input.TelegramID,
		Payload:    input.Payload,
		ExpiresAt:  input.ExpiresAt.UTC(),
		CreatedAt:  now,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"telegram_id": input.TelegramID,
			"payload":     input.Payload,
			"expires_at":  input.ExpiresAt.UTC(),
			"created_at":  now,
		}),
	}).Create(&session).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

// GetSession retrieves the raw session row regardless of expiry
func (s *sqliteStore) GetSession(ctx context.Context, token string) (*schema.Session, error) {
	var session schema.Session
	err := s.db.WithContext(ctx).Where("id = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// UpdateSessionWallet sets the session's wallet field
func (s *sqliteStore) UpdateSessionWallet(ctx context.Context, token string, wallet string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&schema.Session{}).
		Where("id = ?", token).
		Update("wallet_address", domain.NormalizeWallet(wallet))
	if res.Error != nil {
		return false, fmt.Errorf("failed to update session wallet: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteExpiredSessions removes all rows past expiry. Deleting
// already-deleted rows is idempotent, so overlapping sweeps are harmless.
func (s *sqliteStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&schema.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
