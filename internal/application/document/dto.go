package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/document"
)

// RegisterDocumentRequest registers file metadata ahead of a presigned
// upload. Exactly one of HubID/TradeID anchors the document.
type RegisterDocumentRequest struct {
	HubID       *uuid.UUID `json:"hub_id,omitempty"`
	TradeID     *uuid.UUID `json:"trade_id,omitempty"`
	Type        string     `json:"type" binding:"required,oneof=COLLATERAL VALUATION TITLE SERVICING TAPE CORRESPONDENCE OTHER"`
	FileName    string     `json:"file_name" binding:"required,max=255"`
	ContentType string     `json:"content_type" binding:"required,max=100"`
}

// RegisterDocumentResponse carries the presigned upload URL for the client
type RegisterDocumentResponse struct {
	DocumentID uuid.UUID `json:"document_id"`
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ConfirmUploadRequest confirms the object landed in storage
type ConfirmUploadRequest struct {
	SizeBytes int64 `json:"size_bytes" binding:"required,min=1"`
	PageCount int   `json:"page_count,omitempty"`
}

// DocumentResponse is the API representation of document metadata
type DocumentResponse struct {
	ID          uuid.UUID  `json:"id"`
	HubID       *uuid.UUID `json:"hub_id,omitempty"`
	TradeID     *uuid.UUID `json:"trade_id,omitempty"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	PageCount   int        `json:"page_count"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	DownloadURL string     `json:"download_url,omitempty"`
}

// ToDocumentResponse converts a document to its API representation
func ToDocumentResponse(d *document.Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		HubID:       d.HubID,
		TradeID:     d.TradeID,
		Type:        d.Type.String(),
		Status:      string(d.Status),
		FileName:    d.FileName,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		PageCount:   d.PageCount,
		UploadedBy:  d.UploadedBy,
		ConfirmedAt: d.ConfirmedAt,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDocumentResponses converts a slice of documents
func ToDocumentResponses(docs []document.Document) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = ToDocumentResponse(&docs[i])
	}
	return out
}
