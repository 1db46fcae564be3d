package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	syncapp "github.com/ecomdash/backend/internal/application/sync"
	"github.com/ecomdash/backend/internal/domain/merchant"
	"github.com/ecomdash/backend/internal/interfaces/http/dto"
)

// SyncHandler handles sync trigger and status API endpoints
type SyncHandler struct {
	BaseHandler
	syncService *syncapp.Service
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncapp.Service) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// TriggerSyncRequest represents a request to start a sync run
// @Description Request body for triggering a sync
type TriggerSyncRequest struct {
	Resource string `json:"resource" binding:"required,oneof=products orders" example:"products"`
	// Full restarts the pull from the beginning instead of resuming the
	// stored cursor
	Full bool `json:"full" example:"false"`
}

// Trigger godoc
// @ID           triggerSync
// @Summary      Trigger a sync run
// @Description  Queue an asynchronous sync of one resource. Returns 202 when accepted and 409 when a run already holds the resource.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Param        request body TriggerSyncRequest true "Sync trigger request"
// @Success      202 {object} APIResponse[syncapp.TriggerResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} APIResponse[syncapp.TriggerResult]
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/{id}/sync [post]
func (h *SyncHandler) Trigger(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	var req TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.syncService.Trigger(c.Request.Context(), syncapp.TriggerCommand{
		ShopID:   shopID,
		Resource: merchant.SyncResource(req.Resource),
		Full:     req.Full,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if !result.Accepted {
		c.JSON(http.StatusConflict, dto.NewSuccessResponse(result))
		return
	}
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(result))
}

// Status godoc
// @ID           getSyncStatus
// @Summary      Get sync status
// @Description  Get the sync state of both resources of a shop
// @Tags         sync
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Success      200 {object} APIResponse[syncapp.StatusResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/{id}/sync [get]
func (h *SyncHandler) Status(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	status, err := h.syncService.Status(c.Request.Context(), shopID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, status)
}
