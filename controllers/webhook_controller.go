package controllers

import (
	"io"
	"net/http"

	"github.com/fixhub/fixhub-backend/payments"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookController receives asynchronous payment notifications. Providers
// retry aggressively on non-2xx, so every delivery is acknowledged with 200
// regardless of what happens internally.
type WebhookController struct {
	Registry   *payments.Registry
	Reconciler *payments.Reconciler
	Logger     *zap.Logger
}

// HandleProviderWebhook is the single inbound endpoint for all providers,
// mounted at POST /webhooks/:provider.
func (wc *WebhookController) HandleProviderWebhook(c *gin.Context) {
	providerID, err := payments.ParseProviderID(c.Param("provider"))
	if err != nil {
		// Unknown path segment, not a provider retry; a 404 is safe here.
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		wc.Logger.Warn("Failed to read webhook body",
			zap.String("provider", string(providerID)),
			zap.Error(err),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	signature := ""
	if provider, err := wc.Registry.Get(providerID); err == nil {
		signature = c.GetHeader(provider.SignatureHeader())
	}

	wc.Reconciler.HandleWebhook(c.Request.Context(), providerID, body, signature)

	c.JSON(http.StatusOK, gin.H{"received": true})
}
