package dto

import (
	"encoding/json"
	"time"

	"github.com/winsznx/cookathon/internal/domain"
	"github.com/winsznx/cookathon/internal/store/schema"
)

// SessionResponse is the public view of a mint session.
type SessionResponse struct {
	SessionID     string          `json:"session_id"`
	TelegramID    int64           `json:"telegram_id"`
	WalletAddress *string         `json:"wallet_address"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	ExpiresAt     time.Time       `json:"expires_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MapSessionToDTO converts a stored session to its response form.
func MapSessionToDTO(s *schema.Session) SessionResponse {
	return SessionResponse{
		SessionID:     s.ID,
		TelegramID:    s.TelegramID,
		WalletAddress: s.WalletAddress,
		Payload:       json.RawMessage(s.Payload),
		ExpiresAt:     s.ExpiresAt,
		CreatedAt:     s.CreatedAt,
	}
}

// EligibilityResponse reports a mint decision.
type EligibilityResponse struct {
	Allowed          bool   `json:"allowed"`
	Reason           string `json:"reason,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
}

// MapDecisionToDTO converts a policy decision to its response form.
func MapDecisionToDTO(d domain.Decision) EligibilityResponse {
	return EligibilityResponse{
		Allowed:          d.Allowed,
		Reason:           string(d.Reason),
		RemainingSeconds: d.RemainingSeconds,
	}
}

// AssetResponse is the public view of a minted asset.
type AssetResponse struct {
	TokenID            int64     `json:"token_id"`
	OwnerWalletAddress string    `json:"owner_wallet_address"`
	MetadataURI        string    `json:"metadata_uri,omitempty"`
	TransactionRef     string    `json:"transaction_ref"`
	BlockHeight        *int64    `json:"block_height,omitempty"`
	Platform           string    `json:"platform"`
	MintedAt           time.Time `json:"minted_at"`
}

// MapAssetToDTO converts a stored minted asset to its response form.
func MapAssetToDTO(a *schema.MintedAsset) AssetResponse {
	return AssetResponse{
		TokenID:            a.TokenID,
		OwnerWalletAddress: a.OwnerWalletAddress,
		MetadataURI:        a.MetadataURI,
		TransactionRef:     a.TransactionRef,
		BlockHeight:        a.BlockHeight,
		Platform:           string(a.Platform),
		MintedAt:           a.MintedAt,
	}
}

// MapAssetsToDTO converts a slice of minted assets. It always returns a
// non-nil slice so JSON renders an empty array instead of null.
func MapAssetsToDTO(assets []*schema.MintedAsset) []AssetResponse {
	out := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, MapAssetToDTO(a))
	}
	return out
}

// UserStatsResponse aggregates a user's mint history. Unknown users get the
// zero-valued shape rather than an error.
type UserStatsResponse struct {
	Found         bool            `json:"found"`
	DisplayName   string          `json:"display_name,omitempty"`
	Platform      string          `json:"platform,omitempty"`
	WalletAddress *string         `json:"wallet_address,omitempty"`
	MintedCount   int             `json:"minted_count"`
	LastMintAt    *time.Time      `json:"last_mint_at,omitempty"`
	Assets        []AssetResponse `json:"assets"`
}

// MapUserStatsToDTO converts a user and their assets to the stats response.
func MapUserStatsToDTO(u *schema.User, assets []*schema.MintedAsset) UserStatsResponse {
	if u == nil {
		return UserStatsResponse{Assets: []AssetResponse{}}
	}
	return UserStatsResponse{
		Found:         true,
		DisplayName:   u.DisplayName,
		Platform:      string(u.Platform),
		WalletAddress: u.WalletAddress,
		MintedCount:   u.MintedCount,
		LastMintAt:    u.LastMintAt,
		Assets:        MapAssetsToDTO(assets),
	}
}

// MintRecordedResponse acknowledges a recorded mint.
type MintRecordedResponse struct {
	TokenID        int64  `json:"token_id"`
	TransactionRef string `json:"transaction_ref"`
	MintedCount    int    `json:"minted_count"`
}
