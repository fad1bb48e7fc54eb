package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/npl/backend/internal/application/asset"
	assetdomain "github.com/npl/backend/internal/domain/asset"
)

// AssetHandler handles boarded asset HTTP requests
type AssetHandler struct {
	BaseHandler
	assetService *asset.AssetService
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService *asset.AssetService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
	}
}

// GetByID godoc
// @Summary      Get an asset by ID
// @Tags         assets
// @Produce      json
// @Param        id path string true "Asset ID" format(uuid)
// @Success      200 {object} dto.Response{data=asset.AssetResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /assets/{id} [get]
func (h *AssetHandler) GetByID(c *gin.Context) {
	assetID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	result, err := h.assetService.GetByID(c.Request.Context(), assetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByHub godoc
// @Summary      Get an asset by hub ID
// @Tags         assets
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Success      200 {object} dto.Response{data=asset.AssetResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/asset [get]
func (h *AssetHandler) GetByHub(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	result, err := h.assetService.GetByHub(c.Request.Context(), hubID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetHub godoc
// @Summary      Get a hub record by ID
// @Description  The hub is the stable identity spine joining tape, servicing and AM data
// @Tags         assets
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Success      200 {object} dto.Response{data=asset.HubResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id} [get]
func (h *AssetHandler) GetHub(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	result, err := h.assetService.GetHub(c.Request.Context(), hubID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @Summary      List assets
// @Tags         assets
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        trade_id query string false "Filter by trade" format(uuid)
// @Param        status query string false "Filter by status" Enums(ACTIVE, LIQUIDATED, SOLD)
// @Success      200 {object} dto.Response{data=[]asset.AssetResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /assets [get]
func (h *AssetHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	if tradeIDStr := c.Query("trade_id"); tradeIDStr != "" {
		tradeID, err := uuid.Parse(tradeIDStr)
		if err != nil {
			h.BadRequest(c, "Invalid trade ID")
			return
		}
		results, err := h.assetService.ListByTrade(c.Request.Context(), tradeID, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, results)
		return
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := assetdomain.AssetStatus(statusStr)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid asset status")
			return
		}
		results, err := h.assetService.ListByStatus(c.Request.Context(), status, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, results)
		return
	}

	results, total, err := h.assetService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// UpdateUPB godoc
// @Summary      Update an asset's current UPB
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        id path string true "Asset ID" format(uuid)
// @Param        request body asset.UpdateUPBRequest true "New UPB"
// @Success      200 {object} dto.Response{data=asset.AssetResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /assets/{id}/upb [put]
func (h *AssetHandler) UpdateUPB(c *gin.Context) {
	assetID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	var req asset.UpdateUPBRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.assetService.UpdateUPB(c.Request.Context(), assetID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MarkLiquidated godoc
// @Summary      Mark an asset as liquidated
// @Tags         assets
// @Produce      json
// @Param        id path string true "Asset ID" format(uuid)
// @Success      200 {object} dto.Response{data=asset.AssetResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /assets/{id}/liquidate [post]
func (h *AssetHandler) MarkLiquidated(c *gin.Context) {
	h.resolve(c, h.assetService.MarkLiquidated)
}

// MarkSold godoc
// @Summary      Mark an asset as sold
// @Tags         assets
// @Produce      json
// @Param        id path string true "Asset ID" format(uuid)
// @Success      200 {object} dto.Response{data=asset.AssetResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /assets/{id}/sell [post]
func (h *AssetHandler) MarkSold(c *gin.Context) {
	h.resolve(c, h.assetService.MarkSold)
}

func (h *AssetHandler) resolve(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*asset.AssetResponse, error)) {
	assetID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid asset ID")
		return
	}

	result, err := op(c.Request.Context(), assetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
