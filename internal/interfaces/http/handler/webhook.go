package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	webhookapp "github.com/ecomdash/backend/internal/application/webhook"
	"github.com/ecomdash/backend/internal/interfaces/http/dto"
)

// Shopify webhook delivery headers
const (
	HeaderShopifyTopic     = "X-Shopify-Topic"
	HeaderShopifyHmac      = "X-Shopify-Hmac-Sha256"
	HeaderShopifyDomain    = "X-Shopify-Shop-Domain"
	HeaderShopifyWebhookID = "X-Shopify-Webhook-Id"
)

// WebhookHandler receives raw platform webhook deliveries
type WebhookHandler struct {
	BaseHandler
	webhookService *webhookapp.Service
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *webhookapp.Service) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Ingest godoc
// @ID           ingestWebhook
// @Summary      Ingest a Shopify webhook
// @Description  Verify and apply one webhook delivery. Verification runs over the raw request bytes. Duplicates return 200 so the platform stops redelivering.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Shopify-Topic header string true "Webhook topic" example(orders/create)
// @Param        X-Shopify-Hmac-Sha256 header string true "Base64 HMAC-SHA256 of the raw body"
// @Param        X-Shopify-Shop-Domain header string true "Originating shop domain"
// @Param        X-Shopify-Webhook-Id header string false "Platform delivery ID"
// @Success      200 {object} APIResponse[webhookapp.IngestResult]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /webhooks/shopify [post]
func (h *WebhookHandler) Ingest(c *gin.Context) {
	// The signature covers the exact wire bytes, so the body must not go
	// through any binding or re-serialization before verification.
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	result, err := h.webhookService.Ingest(c.Request.Context(), webhookapp.IngestCommand{
		ShopDomain: c.GetHeader(HeaderShopifyDomain),
		Topic:      c.GetHeader(HeaderShopifyTopic),
		EventID:    c.GetHeader(HeaderShopifyWebhookID),
		RawBody:    rawBody,
		Signature:  c.GetHeader(HeaderShopifyHmac),
	})
	if err != nil {
		// Persisting the effect failed; a non-2xx makes the platform redeliver
		h.HandleDomainError(c, err)
		return
	}

	if result.Outcome == webhookapp.OutcomeRejected {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, result.Reason))
		return
	}
	h.Success(c, result)
}
