package schema

import (
	"time"

	"github.com/winsznx/cookathon/internal/domain"
)

// User represents the users table - one physical person reachable through
// either platform namespace. At least one platform ID is always present;
// rows are never deleted.
type User struct {
	// ID is the internal surrogate key, assigned on creation, never reused
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TelegramID is the chat-platform numeric ID (nil when the user arrived via Farcaster)
	TelegramID *int64 `gorm:"column:telegram_id;uniqueIndex:idx_users_telegram_unique"`
	// FarcasterFID is the social-graph numeric ID (nil when the user arrived via Telegram)
	FarcasterFID *int64 `gorm:"column:farcaster_fid;uniqueIndex:idx_users_farcaster_unique"`
	// DisplayName is the last-seen username, last-write-wins
	DisplayName string `gorm:"column:display_name;type:text"`
	// WalletAddress is the most recently connected wallet (nil until first connect)
	WalletAddress *string `gorm:"column:wallet_address;type:text;index:idx_users_wallet"`
	// Platform tags the namespace the user first arrived through
	Platform domain.Platform `gorm:"column:platform;not null;type:text;default:telegram"`
	// MintedCount is the lifetime number of recorded mints, monotonically non-decreasing
	MintedCount int `gorm:"column:minted_count;not null;default:0"`
	// LastMintAt is the time of the most recent recorded mint
	LastMintAt *time.Time `gorm:"column:last_mint_at"`
	// CreatedAt is when the row was first created
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	// UpdatedAt is bumped on every write to the row
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
