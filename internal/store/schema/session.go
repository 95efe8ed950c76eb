package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Session represents the sessions table - a short-lived capability token
// binding a browser minting flow back to one telegram user. Rows past expiry
// are inert (readers re-check expires_at) and are reaped by the sweeper.
type Session struct {
	// ID is the opaque random session token
	ID string `gorm:"column:id;primaryKey;type:text"`
	// TelegramID is the chat-platform user the session belongs to
	TelegramID int64 `gorm:"column:telegram_id;not null;index:idx_sessions_telegram_id"`
	// WalletAddress is filled in once the browser flow reports a connection
	WalletAddress *string `gorm:"column:wallet_address;type:text"`
	// Payload carries free-form data attached by the front end
	Payload datatypes.JSON `gorm:"column:payload"`
	// ExpiresAt is the hard validity bound; reads past it behave as not-found
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index:idx_sessions_expires"`
	// CreatedAt is when the session was minted
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for the Session model
func (Session) TableName() string {
	return "sessions"
}
