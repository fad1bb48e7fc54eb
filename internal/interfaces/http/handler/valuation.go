package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/npl/backend/internal/application/valuation"
)

// ValuationHandler handles valuation HTTP requests
type ValuationHandler struct {
	BaseHandler
	valuationService *valuation.ValuationService
}

// NewValuationHandler creates a new valuation handler
func NewValuationHandler(valuationService *valuation.ValuationService) *ValuationHandler {
	return &ValuationHandler{
		valuationService: valuationService,
	}
}

// Add godoc
// @Summary      Add a valuation
// @Description  Record a value opinion against a hub
// @Tags         valuations
// @Accept       json
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Param        request body valuation.AddValuationRequest true "Valuation data"
// @Success      201 {object} dto.Response{data=valuation.ValuationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/valuations [post]
func (h *ValuationHandler) Add(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	var req valuation.AddValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.valuationService.Add(c.Request.Context(), hubID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @Summary      Get a valuation by ID
// @Tags         valuations
// @Produce      json
// @Param        id path string true "Valuation ID" format(uuid)
// @Success      200 {object} dto.Response{data=valuation.ValuationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /valuations/{id} [get]
func (h *ValuationHandler) GetByID(c *gin.Context) {
	valuationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid valuation ID")
		return
	}

	result, err := h.valuationService.GetByID(c.Request.Context(), valuationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListByHub godoc
// @Summary      List valuations for a hub
// @Tags         valuations
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]valuation.ValuationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/valuations [get]
func (h *ValuationHandler) ListByHub(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	results, err := h.valuationService.ListByHub(c.Request.Context(), hubID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// Reconciled godoc
// @Summary      Get the reconciled value for a hub
// @Description  Applies the source-hierarchy waterfall over the hub's valuations
// @Tags         valuations
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Success      200 {object} dto.Response{data=valuation.ReconciledValueResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/valuations/reconciled [get]
func (h *ValuationHandler) Reconciled(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	result, err := h.valuationService.Reconciled(c.Request.Context(), hubID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
