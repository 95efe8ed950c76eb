package schema

import (
	"time"

	"github.com/winsznx/cookathon/internal/domain"
)

// MintedAsset represents the minted_assets table - one successfully recorded
// mint event. Rows are append-only: created exactly once per confirmed mint
// callback, never updated or deleted.
type MintedAsset struct {
	// ID is the internal surrogate key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TokenID is the identifier assigned by the minting contract
	TokenID int64 `gorm:"column:token_id;not null;index:idx_minted_assets_token_id"`
	// OwnerUserID references the owning User row
	OwnerUserID int64 `gorm:"column:owner_user_id;not null;index:idx_minted_assets_owner"`
	// OwnerWalletAddress is the wallet used at mint time, intentionally not
	// re-derived from the User row since the user may reconnect a different wallet
	OwnerWalletAddress string `gorm:"column:owner_wallet_address;not null;type:text"`
	// MetadataURI is an opaque locator for off-store metadata
	MetadataURI string `gorm:"column:metadata_uri;not null;type:text"`
	// TransactionRef is the opaque transaction identifier from the chain
	TransactionRef string `gorm:"column:transaction_ref;not null;type:text"`
	// BlockHeight is the block the mint landed in, when reported
	BlockHeight *int64 `gorm:"column:block_height"`
	// Platform tags which front-end produced this mint
	Platform domain.Platform `gorm:"column:platform;not null;type:text;default:telegram"`
	// MintedAt is when the mint was recorded
	MintedAt time.Time `gorm:"column:minted_at;not null;index:idx_minted_assets_minted_at"`
}

// TableName specifies the table name for the MintedAsset model
func (MintedAsset) TableName() string {
	return "minted_assets"
}
