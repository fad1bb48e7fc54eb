package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/npl/backend/internal/application/document"
	documentdomain "github.com/npl/backend/internal/domain/document"
)

// DocumentHandler handles document registry HTTP requests
type DocumentHandler struct {
	BaseHandler
	documentService *document.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *document.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// Register godoc
// @Summary      Register a document
// @Description  Register document metadata and receive a presigned upload URL
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body document.RegisterDocumentRequest true "Document metadata"
// @Success      201 {object} dto.Response{data=document.RegisterDocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /documents [post]
func (h *DocumentHandler) Register(c *gin.Context) {
	var req document.RegisterDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.documentService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ConfirmUpload godoc
// @Summary      Confirm a document upload
// @Description  Mark a registered document as uploaded once the client finishes the presigned PUT
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body document.ConfirmUploadRequest true "Upload details"
// @Success      200 {object} dto.Response{data=document.DocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /documents/{id}/confirm [post]
func (h *DocumentHandler) ConfirmUpload(c *gin.Context) {
	docID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req document.ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.documentService.ConfirmUpload(c.Request.Context(), docID, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID godoc
// @Summary      Get a document by ID
// @Description  Includes a presigned download URL for uploaded documents
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response{data=document.DocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	docID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	result, err := h.documentService.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListByHub godoc
// @Summary      List documents for a hub
// @Tags         documents
// @Produce      json
// @Param        id path string true "Hub ID" format(uuid)
// @Param        type query string false "Filter by document type" Enums(COLLATERAL, VALUATION, TITLE, SERVICING, TAPE, CORRESPONDENCE, OTHER)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]document.DocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /hubs/{id}/documents [get]
func (h *DocumentHandler) ListByHub(c *gin.Context) {
	hubID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid hub ID")
		return
	}

	if typeStr := c.Query("type"); typeStr != "" {
		docType := documentdomain.DocumentType(typeStr)
		if !docType.IsValid() {
			h.BadRequest(c, "Invalid document type")
			return
		}
		results, err := h.documentService.ListByHubAndType(c.Request.Context(), hubID, docType)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, results)
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	results, err := h.documentService.ListByHub(c.Request.Context(), hubID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// ListByTrade godoc
// @Summary      List documents for a trade
// @Tags         documents
// @Produce      json
// @Param        id path string true "Trade ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]document.DocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /trades/{id}/documents [get]
func (h *DocumentHandler) ListByTrade(c *gin.Context) {
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

	results, err := h.documentService.ListByTrade(c.Request.Context(), tradeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// Delete godoc
// @Summary      Delete a document
// @Description  Removes the registry entry and the stored object
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), docID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
