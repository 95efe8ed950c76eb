package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/winsznx/cookathon/internal/adapter"
	"github.com/winsznx/cookathon/internal/api/rest/dto"
	"github.com/winsznx/cookathon/internal/domain"
	"github.com/winsznx/cookathon/internal/logger"
	"github.com/winsznx/cookathon/internal/policy"
	"github.com/winsznx/cookathon/internal/session"
	"github.com/winsznx/cookathon/internal/store"
	"github.com/winsznx/cookathon/internal/store/schema"
)

// Handler serves the mint assistant REST API.
type Handler struct {
	store    store.Store
	policy   *policy.Policy
	sessions *session.Manager
	clock    adapter.Clock
}

// NewHandler creates a Handler with its collaborators.
func NewHandler(s store.Store, p *policy.Policy, sm *session.Manager, clock adapter.Clock) *Handler {
	return &Handler{
		store:    s,
		policy:   p,
		sessions: sm,
		clock:    clock,
	}
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateSession upserts the Telegram user, checks mint eligibility, and
// opens a session when the user is allowed to mint.
func (h *Handler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := h.store.UpsertUserByTelegramID(c.Request.Context(), req.TelegramID, req.DisplayName)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	decision := h.policy.Evaluate(user, h.clock.Now())
	if !decision.Allowed {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":       ErrorBody{Code: ErrCodeMintDenied, Message: "user is not eligible to mint"},
			"eligibility": dto.MapDecisionToDTO(decision),
		})
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	sess, err := h.sessions.Create(c.Request.Context(), req.TelegramID, ttl, req.Payload)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSessionToDTO(sess))
}

// GetSession returns a live session, or 404 if it is unknown or expired.
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.sessions.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if sess == nil {
		respondError(c, http.StatusNotFound, ErrCodeSessionExpired, "session not found or expired")
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionToDTO(sess))
}

// ConnectWallet attaches a wallet address to the session and to the
// session's user.
func (h *Handler) ConnectWallet(c *gin.Context) {
	var req dto.ConnectWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	wallet := domain.NormalizeWallet(req.WalletAddress)
	if wallet == "" {
		respondBadRequest(c, "wallet_address must not be empty")
		return
	}

	err := h.sessions.AttachWallet(c.Request.Context(), c.Param("id"), wallet)
	if errors.Is(err, domain.ErrSessionExpired) {
		respondError(c, http.StatusNotFound, ErrCodeSessionExpired, "session not found or expired")
		return
	}
	if err != nil {
		respondInternalError(c, err)
		return
	}

	sess, err := h.sessions.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if sess == nil {
		respondError(c, http.StatusNotFound, ErrCodeSessionExpired, "session not found or expired")
		return
	}

	user, err := h.store.GetUserByTelegramID(c.Request.Context(), sess.TelegramID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if user != nil {
		if err := h.store.AttachWallet(c.Request.Context(), user.ID, wallet); err != nil {
			respondInternalError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, dto.MapSessionToDTO(sess))
}

// ConfirmMint records a completed mint against the resolved owner and bumps
// their mint counters. The mint already happened on-chain by the time this
// callback fires, so it is recorded unconditionally: refusing here would
// desynchronize the counter from real holdings. Eligibility gating belongs
// at flow start (CreateSession / GetEligibility).
func (h *Handler) ConfirmMint(c *gin.Context) {
	var req dto.ConfirmMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	wallet := domain.NormalizeWallet(req.WalletAddress)
	if wallet == "" {
		respondBadRequest(c, "wallet_address must not be empty")
		return
	}

	user, platform, ok := h.resolveMintOwner(c, &req, wallet)
	if !ok {
		return
	}
	if req.Platform != "" {
		override := domain.Platform(req.Platform)
		if !domain.IsValidPlatform(override) {
			respondBadRequest(c, "platform must be telegram or farcaster")
			return
		}
		platform = override
	}

	if err := h.store.AttachWallet(c.Request.Context(), user.ID, wallet); err != nil {
		respondInternalError(c, err)
		return
	}

	asset, err := h.store.RecordMint(c.Request.Context(), store.RecordMintInput{
		OwnerUserID:    user.ID,
		TokenID:        *req.TokenID,
		WalletAddress:  wallet,
		MetadataURI:    req.MetadataURI,
		TransactionRef: req.TransactionRef,
		BlockHeight:    req.BlockHeight,
		Platform:       platform,
	})
	if errors.Is(err, domain.ErrConstraintViolation) {
		respondError(c, http.StatusConflict, ErrCodeConflict, "mint already recorded")
		return
	}
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MintRecordedResponse{
		TokenID:        asset.TokenID,
		TransactionRef: asset.TransactionRef,
		MintedCount:    user.MintedCount + 1,
	})
}

// resolveMintOwner finds the owning user for a mint confirmation. A session
// ID wins over a Farcaster FID; with neither, the wallet must already be
// attached to a known user. Writes the error response itself on failure.
func (h *Handler) resolveMintOwner(c *gin.Context, req *dto.ConfirmMintRequest, wallet string) (*schema.User, domain.Platform, bool) {
	ctx := c.Request.Context()

	if req.SessionID != "" {
		sess, err := h.sessions.Resolve(ctx, req.SessionID)
		if err != nil {
			respondInternalError(c, err)
			return nil, "", false
		}
		if sess == nil {
			respondError(c, http.StatusNotFound, ErrCodeSessionExpired, "session not found or expired")
			return nil, "", false
		}
		name, ok := h.displayNameFor(c, req.DisplayName,
			func() (*schema.User, error) { return h.store.GetUserByTelegramID(ctx, sess.TelegramID) },
			fmt.Sprintf("tg_%d", sess.TelegramID))
		if !ok {
			return nil, "", false
		}
		user, err := h.store.UpsertUserByTelegramID(ctx, sess.TelegramID, name)
		if err != nil {
			respondInternalError(c, err)
			return nil, "", false
		}
		return user, domain.PlatformTelegram, true
	}

	if req.FarcasterFID != nil {
		name, ok := h.displayNameFor(c, req.DisplayName,
			func() (*schema.User, error) { return h.store.GetUserByFarcasterFID(ctx, *req.FarcasterFID) },
			fmt.Sprintf("fc_%d", *req.FarcasterFID))
		if !ok {
			return nil, "", false
		}
		user, err := h.store.UpsertUserByFarcasterFID(ctx, *req.FarcasterFID, name)
		if err != nil {
			respondInternalError(c, err)
			return nil, "", false
		}
		return user, domain.PlatformFarcaster, true
	}

	user, err := h.store.GetUserByWallet(ctx, wallet)
	if err != nil {
		respondInternalError(c, err)
		return nil, "", false
	}
	if user == nil {
		respondNotFound(c, "no user found for wallet; provide session_id or farcaster_fid")
		return nil, "", false
	}
	return user, user.Platform, true
}

// displayNameFor picks the display name for an upsert on the mint path.
// An absent name must not blank out what the user already has, so the
// stored name wins over the fallback. Writes the error response itself
// when the lookup fails.
func (h *Handler) displayNameFor(c *gin.Context, requested string, lookup func() (*schema.User, error), fallback string) (string, bool) {
	if requested != "" {
		return requested, true
	}

	existing, err := lookup()
	if err != nil {
		respondInternalError(c, err)
		return "", false
	}
	if existing != nil && existing.DisplayName != "" {
		return existing.DisplayName, true
	}
	return fallback, true
}

// GetEligibility evaluates the mint policy for a user identified by
// telegram_id or farcaster_fid. Unknown users are eligible.
func (h *Handler) GetEligibility(c *gin.Context) {
	telegramID, tgErr := parseOptionalInt64(c.Query("telegram_id"))
	farcasterFID, fcErr := parseOptionalInt64(c.Query("farcaster_fid"))
	if tgErr != nil || fcErr != nil {
		respondBadRequest(c, "telegram_id and farcaster_fid must be integers")
		return
	}
	if (telegramID == nil) == (farcasterFID == nil) {
		respondBadRequest(c, "provide exactly one of telegram_id or farcaster_fid")
		return
	}

	var (
		user *schema.User
		err  error
	)
	if telegramID != nil {
		user, err = h.store.GetUserByTelegramID(c.Request.Context(), *telegramID)
	} else {
		user, err = h.store.GetUserByFarcasterFID(c.Request.Context(), *farcasterFID)
	}
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapDecisionToDTO(h.policy.Evaluate(user, h.clock.Now())))
}

// GetUserStats returns a user's mint count and assets, looked up by
// farcaster_fid or wallet. Unknown users get the zero-valued shape.
func (h *Handler) GetUserStats(c *gin.Context) {
	farcasterFID, err := parseOptionalInt64(c.Query("farcaster_fid"))
	if err != nil {
		respondBadRequest(c, "farcaster_fid must be an integer")
		return
	}
	wallet := domain.NormalizeWallet(c.Query("wallet"))
	if farcasterFID == nil && wallet == "" {
		respondBadRequest(c, "provide farcaster_fid or wallet")
		return
	}

	var user *schema.User
	if farcasterFID != nil {
		user, err = h.store.GetUserByFarcasterFID(c.Request.Context(), *farcasterFID)
	} else {
		user, err = h.store.GetUserByWallet(c.Request.Context(), wallet)
	}
	if err != nil {
		respondInternalError(c, err)
		return
	}

	var assets []*schema.MintedAsset
	if user != nil {
		assets, err = h.store.ListMintedAssets(c.Request.Context(), user.ID)
		if err != nil {
			respondInternalError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, dto.MapUserStatsToDTO(user, assets))
}

// FarcasterWebhook acknowledges frame lifecycle events from the hub. Events
// are logged for now; notification delivery lives outside this service.
func (h *Handler) FarcasterWebhook(c *gin.Context) {
	var req dto.FarcasterWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	logger.InfoCtx(c.Request.Context(), "farcaster webhook event",
		zap.String("event", req.Event),
		zap.Any("data", req.Data))

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseOptionalInt64(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
