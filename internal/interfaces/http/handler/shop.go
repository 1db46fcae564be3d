package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	merchantapp "github.com/ecomdash/backend/internal/application/merchant"
	"github.com/ecomdash/backend/internal/domain/shared"
	"github.com/ecomdash/backend/internal/interfaces/http/dto"
)

// ShopHandler handles shop onboarding and lifecycle API endpoints
type ShopHandler struct {
	BaseHandler
	shopService *merchantapp.Service
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shopService *merchantapp.Service) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
	}
}

// RegisterShopRequest represents a request to register a shop after OAuth
// @Description Request body for registering a shop
type RegisterShopRequest struct {
	Domain        string `json:"domain" binding:"required,min=4,max=255" example:"demo-store.myshopify.com"`
	AccessToken   string `json:"access_token" binding:"required,min=1" example:"shpat_xxxxxxxxxxxx"`
	Scopes        string `json:"scopes" binding:"max=1000" example:"read_products,read_orders"`
	WebhookSecret string `json:"webhook_secret" binding:"max=255"`
}

// UpdateShopCredentialRequest represents a credential rotation request
// @Description Request body for rotating a shop's access token
type UpdateShopCredentialRequest struct {
	AccessToken   string `json:"access_token" binding:"required,min=1" example:"shpat_yyyyyyyyyyyy"`
	Scopes        string `json:"scopes" binding:"max=1000"`
	WebhookSecret string `json:"webhook_secret" binding:"max=255"`
}

// Register godoc
// @ID           registerShop
// @Summary      Register a shop
// @Description  Register a shop with its OAuth access token and start tracking it
// @Tags         shops
// @Accept       json
// @Produce      json
// @Param        request body RegisterShopRequest true "Shop registration request"
// @Success      201 {object} APIResponse[merchantapp.ShopResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops [post]
func (h *ShopHandler) Register(c *gin.Context) {
	var req RegisterShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shop, err := h.shopService.Register(c.Request.Context(), merchantapp.RegisterCommand{
		Domain:        req.Domain,
		AccessToken:   req.AccessToken,
		Scopes:        req.Scopes,
		WebhookSecret: req.WebhookSecret,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, shop)
}

// List godoc
// @ID           listShops
// @Summary      List shops
// @Description  List registered shops with pagination
// @Tags         shops
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]merchantapp.ShopResponse]
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops [get]
func (h *ShopHandler) List(c *gin.Context) {
	filter := shared.DefaultFilter()
	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err == nil {
		if query.Page > 0 {
			filter.Page = query.Page
		}
		if query.PageSize > 0 {
			filter.PageSize = query.PageSize
		}
	}

	page, err := h.shopService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getShop
// @Summary      Get a shop
// @Description  Get a shop by its ID
// @Tags         shops
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Success      200 {object} APIResponse[merchantapp.ShopResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/{id} [get]
func (h *ShopHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	shop, err := h.shopService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shop)
}

// GetByDomain godoc
// @ID           getShopByDomain
// @Summary      Get a shop by domain
// @Description  Get a shop by its myshopify domain
// @Tags         shops
// @Produce      json
// @Param        domain path string true "Shop domain" example(demo-store.myshopify.com)
// @Success      200 {object} APIResponse[merchantapp.ShopResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/domain/{domain} [get]
func (h *ShopHandler) GetByDomain(c *gin.Context) {
	domain := c.Param("domain")
	if domain == "" {
		h.BadRequest(c, "Shop domain is required")
		return
	}

	shop, err := h.shopService.GetByDomain(c.Request.Context(), domain)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shop)
}

// UpdateCredential godoc
// @ID           updateShopCredential
// @Summary      Rotate a shop's credential
// @Description  Replace a shop's access token after re-authentication. An uninstalled shop becomes active again.
// @Tags         shops
// @Accept       json
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Param        request body UpdateShopCredentialRequest true "Credential rotation request"
// @Success      200 {object} APIResponse[merchantapp.ShopResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/{id}/credential [put]
func (h *ShopHandler) UpdateCredential(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	var req UpdateShopCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shop, err := h.shopService.UpdateCredential(c.Request.Context(), id, merchantapp.UpdateCredentialCommand{
		AccessToken:   req.AccessToken,
		Scopes:        req.Scopes,
		WebhookSecret: req.WebhookSecret,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shop)
}

// Delete godoc
// @ID           deleteShop
// @Summary      Delete a shop
// @Description  Remove a shop and purge all of its mirrored data
// @Tags         shops
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Success      200 {object} APIResponse[merchantapp.PurgeResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/{id} [delete]
func (h *ShopHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	purged, err := h.shopService.Delete(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, purged)
}
