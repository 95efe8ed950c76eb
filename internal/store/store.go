package store

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/winsznx/cookathon/internal/domain"
	"github.com/winsznx/cookathon/internal/store/schema"
)

// RecordMintInput holds the fields of one confirmed mint callback
type RecordMintInput struct {
	OwnerUserID    int64
	TokenID        int64
	WalletAddress  string
	MetadataURI    string
	TransactionRef string
	BlockHeight    *int64
	Platform       domain.Platform
}

// CreateSessionInput holds the fields for minting a new session row
type CreateSessionInput struct {
	Token      string
	TelegramID int64
	Payload    datatypes.JSON
	ExpiresAt  time.Time
}

// Store defines the interface for database operations.
// Lookup misses return (nil, nil), never an error.
type Store interface {
	// UpsertUserByTelegramID creates a user for the chat-platform ID if none
	// exists, otherwise refreshes display_name; idempotent
	UpsertUserByTelegramID(ctx context.Context, telegramID int64, displayName string) (*schema.User, error)
	// UpsertUserByFarcasterFID is the symmetric operation for the social namespace
	UpsertUserByFarcasterFID(ctx context.Context, fid int64, displayName string) (*schema.User, error)
	// GetUserByTelegramID retrieves a user by chat-platform ID
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*schema.User, error)
	// GetUserByFarcasterFID retrieves a user by social-graph ID
	GetUserByFarcasterFID(ctx context.Context, fid int64) (*schema.User, error)
	// GetUserByID retrieves a user by internal surrogate key
	GetUserByID(ctx context.Context, id int64) (*schema.User, error)
	// GetUserByWallet retrieves the most recently updated user holding the wallet
	GetUserByWallet(ctx context.Context, wallet string) (*schema.User, error)
	// AttachWallet overwrites the user's stored wallet address unconditionally
	AttachWallet(ctx context.Context, userID int64, wallet string) error

	// RecordMint inserts one minted-asset row and bumps the owner's mint
	// counter as a single transaction
	RecordMint(ctx context.Context, input RecordMintInput) (*schema.MintedAsset, error)
	// ListMintedAssets returns the user's assets, most recent mint first
	ListMintedAssets(ctx context.Context, userID int64) ([]*schema.MintedAsset, error)
	// CountMintedAssets counts the user's minted-asset rows directly
	CountMintedAssets(ctx context.Context, userID int64) (int64, error)

	// CreateSession inserts a session row, replacing owner and expiry on token collision
	CreateSession(ctx context.Context, input CreateSessionInput) (*schema.Session, error)
	// GetSession retrieves the raw session row regardless of expiry;
	// expiry policy belongs to the session manager
	GetSession(ctx context.Context, token string) (*schema.Session, error)
	// UpdateSessionWallet sets the session's wallet field; false when the row is missing
	UpdateSessionWallet(ctx context.Context, token string, wallet string) (bool, error)
	// DeleteExpiredSessions removes all rows with expires_at <= now, returning the count
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
