package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/npl/backend/internal/application/seller"
)

// TapeImportHandler handles loan tape upload and population HTTP requests
type TapeImportHandler struct {
	BaseHandler
	tapeService *seller.TapeImportService
}

// NewTapeImportHandler creates a new tape import handler
func NewTapeImportHandler(tapeService *seller.TapeImportService) *TapeImportHandler {
	return &TapeImportHandler{
		tapeService: tapeService,
	}
}

// Import godoc
// @Summary      Import a loan tape
// @Description  Upload a seller tape CSV for a trade, validate it and board the population
// @Tags         tapes
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Param        file formData file true "Tape CSV file"
// @Success      200 {object} dto.Response{data=seller.TapeImportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/tapes [post]
func (h *TapeImportHandler) Import(c *gin.Context) {
	tradeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid trade ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Tape file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	result, err := h.tapeService.Import(c.Request.Context(), tradeID, fileHeader.Filename, file, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetImport godoc
// @Summary      Get a tape import by ID
// @Tags         tapes
// @Produce      json
// @Param        id path string true "Import ID" format(uuid)
// @Success      200 {object} dto.Response{data=seller.TapeImportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tapes/{id} [get]
func (h *TapeImportHandler) GetImport(c *gin.Context) {
	importID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid import ID")
		return
	}

	result, err := h.tapeService.GetImport(c.Request.Context(), importID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListImports godoc
// @Summary      List tape imports for a trade
// @Tags         tapes
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]seller.TapeImportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/tapes [get]
func (h *TapeImportHandler) ListImports(c *gin.Context) {
	tradeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid trade ID")
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	results, err := h.tapeService.ListImports(c.Request.Context(), tradeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// PopulationSummary godoc
// @Summary      Get the boarded population summary for a trade
// @Tags         tapes
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Success      200 {object} dto.Response{data=seller.PopulationSummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/population [get]
func (h *TapeImportHandler) PopulationSummary(c *gin.Context) {
	tradeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid trade ID")
		return
	}

	result, err := h.tapeService.PopulationSummary(c.Request.Context(), tradeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RejectRow godoc
// @Summary      Reject a tape row
// @Description  Drop a raw tape row from the boarding population
// @Tags         tapes
// @Produce      json
// @Param        id path string true "Raw data row ID" format(uuid)
// @Success      200 {object} dto.Response{data=seller.RawDataResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /tapes/rows/{id}/reject [post]
func (h *TapeImportHandler) RejectRow(c *gin.Context) {
	rowID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid row ID")
		return
	}

	result, err := h.tapeService.RejectRow(c.Request.Context(), rowID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
