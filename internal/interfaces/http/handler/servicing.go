package handler

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/npl/backend/internal/application/servicing"
)

// periodPattern validates YYYY-MM servicing periods
var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ServicingHandler handles monthly servicing extract HTTP requests
type ServicingHandler struct {
	BaseHandler
	importService *servicing.ImportService
}

// NewServicingHandler creates a new servicing handler
func NewServicingHandler(importService *servicing.ImportService) *ServicingHandler {
	return &ServicingHandler{
		importService: importService,
	}
}

// Import godoc
// @Summary      Import a servicing extract
// @Description  Upload a monthly servicer CSV for a trade and roll UPB forward
// @Tags         servicing
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Param        period formData string true "Reporting period (YYYY-MM)"
// @Param        servicer formData string true "Servicer name"
// @Param        file formData file true "Servicing CSV file"
// @Success      200 {object} dto.Response{data=servicing.ImportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/servicing [post]
func (h *ServicingHandler) Import(c *gin.Context) {
	tradeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid trade ID")
		return
	}

	period := c.PostForm("period")
	if !periodPattern.MatchString(period) {
		h.BadRequest(c, "Period must be formatted YYYY-MM")
		return
	}

	servicer := c.PostForm("servicer")
	if servicer == "" {
		h.BadRequest(c, "Servicer name is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Servicing file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	result, err := h.importService.Import(c.Request.Context(), tradeID, period, servicer, fileHeader.Filename, file, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByHubAndPeriod godoc
// @Summary      Get a servicing extract for one hub and period
// @Tags         servicing
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Param        period path string true "Reporting period (YYYY-MM)"
// @Success      200 {object} dto.Response{data=servicing.ExtractResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/servicing/{period} [get]
func (h *ServicingHandler) GetByHubAndPeriod(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	period := c.Param("period")
	if !periodPattern.MatchString(period) {
		h.BadRequest(c, "Period must be formatted YYYY-MM")
		return
	}

	result, err := h.importService.GetByHubAndPeriod(c.Request.Context(), hubID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// History godoc
// @Summary      List servicing history for a hub
// @Tags         servicing
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]servicing.ExtractResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/servicing [get]
func (h *ServicingHandler) History(c *gin.Context) {
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

	results, err := h.importService.History(c.Request.Context(), hubID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// Latest godoc
// @Summary      Get the latest servicing extract for a hub
// @Tags         servicing
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Success      200 {object} dto.Response{data=servicing.ExtractResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/servicing/latest [get]
func (h *ServicingHandler) Latest(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	result, err := h.importService.Latest(c.Request.Context(), hubID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// BucketDistribution godoc
// @Summary      Get the delinquency bucket distribution for a period
// @Tags         servicing
// @Produce      json
// @Param        period path string true "Reporting period (YYYY-MM)"
// @Success      200 {object} dto.Response{data=servicing.BucketDistributionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /servicing/{period}/buckets [get]
func (h *ServicingHandler) BucketDistribution(c *gin.Context) {
	period := c.Param("period")
	if !periodPattern.MatchString(period) {
		h.BadRequest(c, "Period must be formatted YYYY-MM")
		return
	}

	result, err := h.importService.BucketDistribution(c.Request.Context(), period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
