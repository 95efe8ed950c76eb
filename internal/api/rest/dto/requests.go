package dto

import "encoding/json"

// CreateSessionRequest starts a mint session for a Telegram chat. Payload is
// opaque front-end state echoed back on session reads.
type CreateSessionRequest struct {
	TelegramID  int64           `json:"telegram_id" binding:"required"`
	DisplayName string          `json:"display_name"`
	TTLSeconds  int64           `json:"ttl_seconds"`
	Payload     json.RawMessage `json:"payload"`
}

// ConnectWalletRequest attaches a wallet address to an existing session.
type ConnectWalletRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

// ConfirmMintRequest records a completed on-chain mint. The caller identifies
// the owner either through a session ID (Telegram flow) or a Farcaster FID
// (frame flow); with neither, the wallet address is used for lookup only.
type ConfirmMintRequest struct {
	SessionID      string `json:"session_id"`
	FarcasterFID   *int64 `json:"farcaster_fid"`
	DisplayName    string `json:"display_name"`
	TokenID        *int64 `json:"token_id" binding:"required"`
	WalletAddress  string `json:"wallet_address" binding:"required"`
	TransactionRef string `json:"transaction_ref" binding:"required"`
	MetadataURI    string `json:"metadata_uri"`
	BlockHeight    *int64 `json:"block_height"`
	Platform       string `json:"platform"`
}

// FarcasterWebhookRequest is the envelope posted by the Farcaster hub for
// frame lifecycle events.
type FarcasterWebhookRequest struct {
	Event string         `json:"event" binding:"required"`
	Data  map[string]any `json:"data"`
}
