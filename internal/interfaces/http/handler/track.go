package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/npl/backend/internal/application/am"
	amdomain "github.com/npl/backend/internal/domain/am"
)

// TrackHandler handles asset management workout track HTTP requests
type TrackHandler struct {
	BaseHandler
	trackService *am.TrackService
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(trackService *am.TrackService) *TrackHandler {
	return &TrackHandler{
		trackService: trackService,
	}
}

// Open godoc
// @Summary      Open a workout track
// @Description  Open a REO/FC/DIL/MOD/short-sale/note-sale track on a hub
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Param        request body am.OpenTrackRequest true "Track type"
// @Success      201 {object} dto.Response{data=am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/tracks [post]
func (h *TrackHandler) Open(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	var req am.OpenTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.Open(c.Request.Context(), hubID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @Summary      Get a track by ID
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id} [get]
func (h *TrackHandler) GetByID(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	result, err := h.trackService.GetByID(c.Request.Context(), trackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListByHub godoc
// @Summary      List tracks for a hub
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/tracks [get]
func (h *TrackHandler) ListByHub(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	results, err := h.trackService.ListByHub(c.Request.Context(), hubID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// List godoc
// @Summary      List tracks
// @Tags         tracks
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        status query string false "Filter by status" Enums(OPEN, IN_PROGRESS, ON_HOLD, RESOLVED, CANCELLED)
// @Success      200 {object} dto.Response{data=[]am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks [get]
func (h *TrackHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := amdomain.TrackStatus(statusStr)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid track status")
			return
		}
		results, err := h.trackService.ListByStatus(c.Request.Context(), status, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, results)
		return
	}

	results, total, err := h.trackService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// Pipeline godoc
// @Summary      Get the workout pipeline
// @Description  Open track counts grouped by type and status
// @Tags         tracks
// @Produce      json
// @Success      200 {object} dto.Response{data=[]am.PipelineCountResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/pipeline [get]
func (h *TrackHandler) Pipeline(c *gin.Context) {
	results, err := h.trackService.Pipeline(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// Start godoc
// @Summary      Start work on a track
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/start [post]
func (h *TrackHandler) Start(c *gin.Context) {
	h.transition(c, h.trackService.Start)
}

// Hold godoc
// @Summary      Put a track on hold
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.HoldTrackRequest true "Hold reason"
// @Success      200 {object} dto.Response{data=am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/hold [post]
func (h *TrackHandler) Hold(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.HoldTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.Hold(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Resume godoc
// @Summary      Resume a held track
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/resume [post]
func (h *TrackHandler) Resume(c *gin.Context) {
	h.transition(c, h.trackService.Resume)
}

// Assign godoc
// @Summary      Assign a track to an asset manager
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.AssignTrackRequest true "Assignee"
// @Success      200 {object} dto.Response{data=am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/assign [put]
func (h *TrackHandler) Assign(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.AssignTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.Assign(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Resolve godoc
// @Summary      Resolve a track
// @Description  Close the track with an outcome; resolves the underlying asset
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.ResolveTrackRequest true "Resolution outcome"
// @Success      200 {object} dto.Response{data=am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/resolve [post]
func (h *TrackHandler) Resolve(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.ResolveTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.Resolve(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel godoc
// @Summary      Cancel a track
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/cancel [post]
func (h *TrackHandler) Cancel(c *gin.Context) {
	h.transition(c, h.trackService.Cancel)
}

// AddMilestone godoc
// @Summary      Add a milestone to a track
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.AddMilestoneRequest true "Milestone data"
// @Success      200 {object} dto.Response{data=am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/milestones [post]
func (h *TrackHandler) AddMilestone(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.AddMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.AddMilestone(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReachMilestone godoc
// @Summary      Mark a milestone as reached
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        milestoneId path string true "Milestone ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.TrackResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/milestones/{milestoneId}/reach [post]
func (h *TrackHandler) ReachMilestone(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	milestoneID, err := parseIDParam(c, "milestoneId")
	if err != nil {
		h.BadRequest(c, "Invalid milestone ID")
		return
	}

	result, err := h.trackService.ReachMilestone(c.Request.Context(), trackID, milestoneID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// =====================
// REO disposition
// =====================

// GetREO godoc
// @Summary      Get the REO detail for a track
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.REOResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/reo [get]
func (h *TrackHandler) GetREO(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	result, err := h.trackService.GetREO(c.Request.Context(), trackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListREO godoc
// @Summary      List an REO property for sale
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.ListREORequest true "Listing terms"
// @Success      200 {object} dto.Response{data=am.REOResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/reo/list [post]
func (h *TrackHandler) ListREO(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.ListREORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.ListREO(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReducePrice godoc
// @Summary      Reduce the list price of an REO property
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.ReducePriceRequest true "New list price"
// @Success      200 {object} dto.Response{data=am.REOResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/reo/reduce-price [post]
func (h *TrackHandler) ReducePrice(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.ReducePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.ReduceREOPrice(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AcceptContract godoc
// @Summary      Accept a purchase contract on an REO property
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.AcceptContractRequest true "Contract terms"
// @Success      200 {object} dto.Response{data=am.REOResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/reo/contract [post]
func (h *TrackHandler) AcceptContract(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.AcceptContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.AcceptContract(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ContractFell godoc
// @Summary      Record a fallen-through REO contract
// @Description  Returns the property to LISTED
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.REOResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/reo/contract-fell [post]
func (h *TrackHandler) ContractFell(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	result, err := h.trackService.ContractFell(c.Request.Context(), trackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// CloseREO godoc
// @Summary      Close an REO sale
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.CloseREORequest true "Closing terms"
// @Success      200 {object} dto.Response{data=am.REOResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/reo/close [post]
func (h *TrackHandler) CloseREO(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.CloseREORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.CloseREO(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// =====================
// Foreclosure
// =====================

// GetForeclosure godoc
// @Summary      Get the foreclosure case for a track
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.ForeclosureResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/foreclosure [get]
func (h *TrackHandler) GetForeclosure(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	result, err := h.trackService.GetForeclosure(c.Request.Context(), trackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// FileComplaint godoc
// @Summary      File a foreclosure complaint
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.FileComplaintRequest true "Case details"
// @Success      200 {object} dto.Response{data=am.ForeclosureResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/foreclosure/complaint [post]
func (h *TrackHandler) FileComplaint(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.FileComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.FileComplaint(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// EnterJudgment godoc
// @Summary      Enter a foreclosure judgment
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.EnterJudgmentRequest true "Judgment details"
// @Success      200 {object} dto.Response{data=am.ForeclosureResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/foreclosure/judgment [post]
func (h *TrackHandler) EnterJudgment(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.EnterJudgmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.EnterJudgment(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ScheduleSale godoc
// @Summary      Schedule a foreclosure sale
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.ScheduleSaleRequest true "Sale date"
// @Success      200 {object} dto.Response{data=am.ForeclosureResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/foreclosure/sale [post]
func (h *TrackHandler) ScheduleSale(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.ScheduleSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.ScheduleSale(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// PostponeSale godoc
// @Summary      Postpone a scheduled foreclosure sale
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.ForeclosureResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/foreclosure/postpone [post]
func (h *TrackHandler) PostponeSale(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	result, err := h.trackService.PostponeSale(c.Request.Context(), trackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RecordSale godoc
// @Summary      Record a held foreclosure sale
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.RecordSaleRequest true "Sale result"
// @Success      200 {object} dto.Response{data=am.ForeclosureResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/foreclosure/record-sale [post]
func (h *TrackHandler) RecordSale(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.RecordSale(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// =====================
// Loan modification
// =====================

// GetModification godoc
// @Summary      Get the loan modification for a track
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.ModificationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/modification [get]
func (h *TrackHandler) GetModification(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	result, err := h.trackService.GetModification(c.Request.Context(), trackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// StartTrial godoc
// @Summary      Start a trial modification plan
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.StartTrialRequest true "Trial start"
// @Success      200 {object} dto.Response{data=am.ModificationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/modification/trial [post]
func (h *TrackHandler) StartTrial(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.StartTrialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.StartTrial(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RecordTrialPayment godoc
// @Summary      Record one received trial payment
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.ModificationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/modification/trial-payments [post]
func (h *TrackHandler) RecordTrialPayment(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	result, err := h.trackService.RecordTrialPayment(c.Request.Context(), trackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MakePermanent godoc
// @Summary      Convert a trial modification to permanent
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.MakePermanentRequest true "Effective date"
// @Success      200 {object} dto.Response{data=am.ModificationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/modification/permanent [post]
func (h *TrackHandler) MakePermanent(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.MakePermanentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.MakePermanent(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// BreakModification godoc
// @Summary      Record a broken modification
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.BreakModRequest true "Break date"
// @Success      200 {object} dto.Response{data=am.ModificationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/modification/break [post]
func (h *TrackHandler) BreakModification(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.BreakModRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.BreakModification(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// =====================
// Short sale
// =====================

// GetShortSale godoc
// @Summary      Get the short sale for a track
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.ShortSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/short-sale [get]
func (h *TrackHandler) GetShortSale(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	result, err := h.trackService.GetShortSale(c.Request.Context(), trackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ApproveShortSale godoc
// @Summary      Approve a short sale offer
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.ApproveShortSaleRequest true "Approval terms"
// @Success      200 {object} dto.Response{data=am.ShortSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/short-sale/approve [post]
func (h *TrackHandler) ApproveShortSale(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.ApproveShortSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.ApproveShortSale(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// CloseShortSale godoc
// @Summary      Close a short sale
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.CloseShortSaleRequest true "Closing terms"
// @Success      200 {object} dto.Response{data=am.ShortSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/short-sale/close [post]
func (h *TrackHandler) CloseShortSale(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.CloseShortSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.CloseShortSale(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// =====================
// Note sale
// =====================

// GetNoteSale godoc
// @Summary      Get the note sale for a track
// @Tags         tracks
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Success      200 {object} dto.Response{data=am.NoteSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/note-sale [get]
func (h *TrackHandler) GetNoteSale(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	result, err := h.trackService.GetNoteSale(c.Request.Context(), trackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SettleNoteSale godoc
// @Summary      Settle a note sale
// @Tags         tracks
// @Accept       json
// @Produce      json
// @Param        id path string true "Track ID" format(uuid)
// @Param        request body am.SettleNoteSaleRequest true "Settlement date"
// @Success      200 {object} dto.Response{data=am.NoteSaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tracks/{id}/note-sale/settle [post]
func (h *TrackHandler) SettleNoteSale(c *gin.Context) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	var req am.SettleNoteSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.trackService.SettleNoteSale(c.Request.Context(), trackID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *TrackHandler) transition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*am.TrackResponse, error)) {
	trackID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid track ID")
		return
	}

	result, err := op(c.Request.Context(), trackID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
