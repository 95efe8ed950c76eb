// Package rest wires the mint assistant's HTTP routes to their handlers.
package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/winsznx/cookathon/internal/api/middleware"
)

// SetupRoutes registers the public API surface on the router. Mutating
// routes sit behind API-key auth when keys are configured.
func SetupRoutes(router *gin.Engine, handler *Handler, apiKeys []string) {
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")

	v1.GET("/sessions/:id", handler.GetSession)
	v1.GET("/eligibility", handler.GetEligibility)
	v1.GET("/users/stats", handler.GetUserStats)
	v1.POST("/webhooks/farcaster", handler.FarcasterWebhook)

	authed := v1.Group("", middleware.APIKeyAuth(apiKeys))
	authed.POST("/sessions", handler.CreateSession)
	authed.POST("/sessions/:id/wallet", handler.ConnectWallet)
	authed.POST("/mints", handler.ConfirmMint)
}
