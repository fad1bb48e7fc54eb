package document

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// DocumentType categorizes stored files
type DocumentType string

const (
	DocTypeCollateral    DocumentType = "COLLATERAL" // Note, mortgage, assignments
	DocTypeValuation     DocumentType = "VALUATION"  // BPO/appraisal reports
	DocTypeTitle         DocumentType = "TITLE"
	DocTypeServicing     DocumentType = "SERVICING"
	DocTypeTape          DocumentType = "TAPE"
	DocTypeCorrespondence DocumentType = "CORRESPONDENCE"
	DocTypeOther         DocumentType = "OTHER"
)

// IsValid checks if the type is a valid DocumentType
func (t DocumentType) IsValid() bool {
	switch t {
	case DocTypeCollateral, DocTypeValuation, DocTypeTitle, DocTypeServicing,
		DocTypeTape, DocTypeCorrespondence, DocTypeOther:
		return true
	}
	return false
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// DocumentStatus tracks the presigned-upload handshake
type DocumentStatus string

const (
	DocStatusPendingUpload DocumentStatus = "PENDING_UPLOAD"
	DocStatusAvailable     DocumentStatus = "AVAILABLE"
	DocStatusDeleted       DocumentStatus = "DELETED"
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocStatusPendingUpload, DocStatusAvailable, DocStatusDeleted:
		return true
	}
	return false
}

// allowed upload content types
var allowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"image/jpeg":         true,
	"image/png":          true,
	"image/tiff":         true,
	"text/csv":           true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// Document is file metadata for an object stored in S3. The object is
// uploaded by the client against a presigned URL; the row stays
// PENDING_UPLOAD until the upload is confirmed.
type Document struct {
	shared.BaseEntity
	HubID       *uuid.UUID     `gorm:"type:uuid;index"` // Nil for trade-level files (tapes)
	TradeID     *uuid.UUID     `gorm:"type:uuid;index"`
	Type        DocumentType   `gorm:"type:varchar(20);not null;index"`
	Status      DocumentStatus `gorm:"type:varchar(20);not null;default:'PENDING_UPLOAD'"`
	FileName    string         `gorm:"type:varchar(255);not null"`
	ContentType string         `gorm:"type:varchar(100);not null"`
	SizeBytes   int64          `gorm:"not null;default:0"`
	StorageKey  string         `gorm:"type:varchar(512);not null;uniqueIndex"`
	PageCount   int            `gorm:"not null;default:0"` // Filled for PDFs at confirm time
	UploadedBy  *uuid.UUID     `gorm:"type:uuid"`
	ConfirmedAt *time.Time
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument registers file metadata ahead of a presigned upload.
// Exactly one of hubID/tradeID anchors the document.
func NewDocument(hubID, tradeID *uuid.UUID, docType DocumentType, fileName, contentType string) (*Document, error) {
	if (hubID == nil) == (tradeID == nil) {
		return nil, shared.NewDomainError("INVALID_ANCHOR", "Document must attach to exactly one of asset or trade")
	}
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Unknown document type: "+string(docType))
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if !allowedContentTypes[contentType] {
		return nil, shared.NewDomainError("UNSUPPORTED_CONTENT_TYPE", "Content type not allowed: "+contentType)
	}

	d := &Document{
		BaseEntity:  shared.NewBaseEntity(),
		HubID:       hubID,
		TradeID:     tradeID,
		Type:        docType,
		Status:      DocStatusPendingUpload,
		FileName:    fileName,
		ContentType: contentType,
	}
	d.StorageKey = d.buildStorageKey()
	return d, nil
}

// buildStorageKey derives a collision-free object key from the anchor
func (d *Document) buildStorageKey() string {
	anchor := "trade"
	anchorID := uuid.Nil
	if d.HubID != nil {
		anchor = "asset"
		anchorID = *d.HubID
	} else if d.TradeID != nil {
		anchorID = *d.TradeID
	}
	ext := strings.ToLower(path.Ext(d.FileName))
	return fmt.Sprintf("%s/%s/%s/%s%s",
		anchor, anchorID, strings.ToLower(string(d.Type)), d.ID, ext)
}

// ConfirmUpload marks the object as present in storage
func (d *Document) ConfirmUpload(sizeBytes int64, pageCount int, uploadedBy *uuid.UUID) error {
	if d.Status != DocStatusPendingUpload {
		return shared.NewDomainError("INVALID_STATE", "Only pending documents can be confirmed")
	}
	if sizeBytes <= 0 {
		return shared.NewDomainError("INVALID_SIZE", "Uploaded size must be positive")
	}
	now := time.Now()
	d.Status = DocStatusAvailable
	d.SizeBytes = sizeBytes
	if pageCount > 0 {
		d.PageCount = pageCount
	}
	d.UploadedBy = uploadedBy
	d.ConfirmedAt = &now
	d.UpdatedAt = now
	return nil
}

// MarkDeleted soft-deletes the metadata after the object is removed
func (d *Document) MarkDeleted() error {
	if d.Status == DocStatusDeleted {
		return shared.NewDomainError("INVALID_STATE", "Document is already deleted")
	}
	d.Status = DocStatusDeleted
	d.UpdatedAt = time.Now()
	return nil
}

// IsAvailable returns true once the upload has been confirmed
func (d *Document) IsAvailable() bool {
	return d.Status == DocStatusAvailable
}

// IsPDF reports whether the stored object is a PDF
func (d *Document) IsPDF() bool {
	return d.ContentType == "application/pdf"
}
