package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/npl/backend/internal/application/etl"
	etldomain "github.com/npl/backend/internal/domain/etl"
)

// ExtractionHandler handles document extraction job HTTP requests
type ExtractionHandler struct {
	BaseHandler
	extractionService *etl.ExtractionService
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(extractionService *etl.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{
		extractionService: extractionService,
	}
}

// Start godoc
// @Summary      Start an extraction job
// @Description  Queue a multi-pass vision extraction over an uploaded valuation document
// @Tags         extraction
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      202 {object} dto.Response{data=etl.JobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /documents/{id}/extract [post]
func (h *ExtractionHandler) Start(c *gin.Context) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	result, err := h.extractionService.Start(c.Request.Context(), documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID godoc
// @Summary      Get an extraction job by ID
// @Tags         extraction
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=etl.JobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /extractions/{id} [get]
func (h *ExtractionHandler) GetByID(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	result, err := h.extractionService.GetByID(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListByHub godoc
// @Summary      List extraction jobs for a hub
// @Tags         extraction
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]etl.JobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/extractions [get]
func (h *ExtractionHandler) ListByHub(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	results, err := h.extractionService.ListByHub(c.Request.Context(), hubID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// ListByDocument godoc
// @Summary      List extraction jobs for a document
// @Tags         extraction
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]etl.JobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /documents/{id}/extractions [get]
func (h *ExtractionHandler) ListByDocument(c *gin.Context) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	results, err := h.extractionService.ListByDocument(c.Request.Context(), documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// ListByStatus godoc
// @Summary      List extraction jobs by status
// @Tags         extraction
// @Produce      json
// @Param        status path string true "Job status" Enums(PENDING, RUNNING, MERGING, COMPLETED, FAILED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]etl.JobResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /extractions/status/{status} [get]
func (h *ExtractionHandler) ListByStatus(c *gin.Context) {
	status := etldomain.JobStatus(c.Param("status"))
	if !status.IsValid() {
		h.BadRequest(c, "Invalid job status")
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	results, err := h.extractionService.ListByStatus(c.Request.Context(), status, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// Result godoc
// @Summary      Get the merged extraction result
// @Description  Field-level winners after cross-pass reconciliation
// @Tags         extraction
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} dto.Response{data=etl.ExtractionResultResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /extractions/{id}/result [get]
func (h *ExtractionHandler) Result(c *gin.Context) {
	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	result, err := h.extractionService.Result(c.Request.Context(), jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
