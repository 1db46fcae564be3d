package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	insightapp "github.com/ecomdash/backend/internal/application/insight"
)

// InsightHandler handles insight listing and lifecycle API endpoints
type InsightHandler struct {
	BaseHandler
	insightService *insightapp.Service
}

// NewInsightHandler creates a new InsightHandler
func NewInsightHandler(insightService *insightapp.Service) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
	}
}

// ListInsightsRequest represents insight list query parameters
// @Description Query parameters for listing insights
type ListInsightsRequest struct {
	Page     int      `form:"page" binding:"omitempty,min=1"`
	PageSize int      `form:"page_size" binding:"omitempty,min=1,max=100"`
	Types    []string `form:"type"`
	Severity []string `form:"severity"`
}

// List godoc
// @ID           listInsights
// @Summary      List insights
// @Description  List open insights of a shop, newest first, optionally filtered by type and severity
// @Tags         insights
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        type query []string false "Insight type filter" collectionFormat(multi)
// @Param        severity query []string false "Severity filter" collectionFormat(multi)
// @Success      200 {object} APIResponse[[]insightapp.Response]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/{id}/insights [get]
func (h *InsightHandler) List(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	var req ListInsightsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.insightService.List(c.Request.Context(), shopID, insightapp.ListQuery{
		Types:      req.Types,
		Severities: req.Severity,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getInsight
// @Summary      Get an insight
// @Description  Get one insight by its ID. Another tenant's insight reads as not found.
// @Tags         insights
// @Produce      json
// @Param        id path string true "Insight ID" format(uuid)
// @Success      200 {object} APIResponse[insightapp.Response]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /insights/{id} [get]
func (h *InsightHandler) Get(c *gin.Context) {
	tenantID, insightID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	ins, err := h.insightService.Get(c.Request.Context(), tenantID, insightID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ins)
}

// Dismiss godoc
// @ID           dismissInsight
// @Summary      Dismiss an insight
// @Description  Dismiss an insight so it never reopens for the same subject
// @Tags         insights
// @Produce      json
// @Param        id path string true "Insight ID" format(uuid)
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /insights/{id}/dismiss [post]
func (h *InsightHandler) Dismiss(c *gin.Context) {
	tenantID, insightID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	if err := h.insightService.Dismiss(c.Request.Context(), tenantID, insightID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, nil)
}

// MarkActioned godoc
// @ID           actionInsight
// @Summary      Mark an insight actioned
// @Description  Record that the merchant acted on an insight
// @Tags         insights
// @Produce      json
// @Param        id path string true "Insight ID" format(uuid)
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /insights/{id}/action [post]
func (h *InsightHandler) MarkActioned(c *gin.Context) {
	tenantID, insightID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	if err := h.insightService.MarkActioned(c.Request.Context(), tenantID, insightID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, nil)
}

// Stats godoc
// @ID           getInsightStats
// @Summary      Get insight stats
// @Description  Count a shop's open insights by severity and type
// @Tags         insights
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Success      200 {object} APIResponse[insight.Stats]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/{id}/insights/stats [get]
func (h *InsightHandler) Stats(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	stats, err := h.insightService.Stats(c.Request.Context(), shopID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// Refresh godoc
// @ID           refreshInsights
// @Summary      Refresh insights
// @Description  Recompute a shop's insights from its mirrored data
// @Tags         insights
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Success      200 {object} APIResponse[insightapp.RefreshResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shops/{id}/insights/refresh [post]
func (h *InsightHandler) Refresh(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shop ID format")
		return
	}

	result, err := h.insightService.Refresh(c.Request.Context(), shopID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// tenantAndID resolves the caller's tenant and the insight id path param.
// The tenant is the shop resolved by auth, or the dev header fallback.
func (h *InsightHandler) tenantAndID(c *gin.Context) (tenantID, insightID uuid.UUID, ok bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, false
	}
	insightID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid insight ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, insightID, true
}
