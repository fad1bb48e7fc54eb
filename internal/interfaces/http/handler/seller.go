package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/npl/backend/internal/application/seller"
)

// SellerHandler handles seller counterparty HTTP requests
type SellerHandler struct {
	BaseHandler
	sellerService *seller.SellerService
}

// NewSellerHandler creates a new seller handler
func NewSellerHandler(sellerService *seller.SellerService) *SellerHandler {
	return &SellerHandler{
		sellerService: sellerService,
	}
}

// Create godoc
// @Summary      Create a seller
// @Description  Register a new selling counterparty
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        request body seller.CreateSellerRequest true "Seller data"
// @Success      201 {object} dto.Response{data=seller.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers [post]
func (h *SellerHandler) Create(c *gin.Context) {
	var req seller.CreateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.sellerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @Summary      Get a seller by ID
// @Tags         sellers
// @Produce      json
// @Param        id path string true "Seller ID" format(uuid)
// @Success      200 {object} dto.Response{data=seller.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id} [get]
func (h *SellerHandler) GetByID(c *gin.Context) {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	result, err := h.sellerService.GetByID(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByCode godoc
// @Summary      Get a seller by code
// @Tags         sellers
// @Produce      json
// @Param        code path string true "Seller code"
// @Success      200 {object} dto.Response{data=seller.SellerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/code/{code} [get]
func (h *SellerHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Seller code is required")
		return
	}

	result, err := h.sellerService.GetByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @Summary      List sellers
// @Tags         sellers
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        search query string false "Search by code or name"
// @Success      200 {object} dto.Response{data=[]seller.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers [get]
func (h *SellerHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	results, total, err := h.sellerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a seller
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Seller ID" format(uuid)
// @Param        request body seller.UpdateSellerRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=seller.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id} [put]
func (h *SellerHandler) Update(c *gin.Context) {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	var req seller.UpdateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.sellerService.Update(c.Request.Context(), sellerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Activate godoc
// @Summary      Activate a seller
// @Tags         sellers
// @Produce      json
// @Param        id path string true "Seller ID" format(uuid)
// @Success      200 {object} dto.Response{data=seller.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id}/activate [post]
func (h *SellerHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.sellerService.Activate)
}

// Deactivate godoc
// @Summary      Deactivate a seller
// @Tags         sellers
// @Produce      json
// @Param        id path string true "Seller ID" format(uuid)
// @Success      200 {object} dto.Response{data=seller.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id}/deactivate [post]
func (h *SellerHandler) Deactivate(c *gin.Context) {
	h.changeStatus(c, h.sellerService.Deactivate)
}

// Block godoc
// @Summary      Block a seller
// @Description  Block a counterparty from new trades
// @Tags         sellers
// @Produce      json
// @Param        id path string true "Seller ID" format(uuid)
// @Success      200 {object} dto.Response{data=seller.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sellers/{id}/block [post]
func (h *SellerHandler) Block(c *gin.Context) {
	h.changeStatus(c, h.sellerService.Block)
}

func (h *SellerHandler) changeStatus(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*seller.SellerResponse, error)) {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid seller ID")
		return
	}

	result, err := op(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
