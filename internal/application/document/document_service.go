package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/document"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// ObjectStorageService abstracts the S3 operations the document layer needs
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file.
	// Returns the upload URL and expiration time.
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file.
	// Returns the download URL and expiration time.
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)

	// Download fetches the object body. Used by the extraction pipeline
	// to hand PDFs to the vision model.
	Download(ctx context.Context, storageKey string) ([]byte, error)
}

// DocumentServiceConfig holds URL expiry settings
type DocumentServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultDocumentServiceConfig returns the default configuration
func DefaultDocumentServiceConfig() DocumentServiceConfig {
	return DocumentServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// DocumentService manages document metadata and the presigned-upload handshake
type DocumentService struct {
	docRepo   document.DocumentRepository
	hubRepo   asset.HubRepository
	tradeRepo trade.TradeRepository
	storage   ObjectStorageService
	config    DocumentServiceConfig
	logger    *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	docRepo document.DocumentRepository,
	hubRepo asset.HubRepository,
	tradeRepo trade.TradeRepository,
	storage ObjectStorageService,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		docRepo:   docRepo,
		hubRepo:   hubRepo,
		tradeRepo: tradeRepo,
		storage:   storage,
		config:    DefaultDocumentServiceConfig(),
		logger:    logger,
	}
}

// SetConfig sets the service configuration
func (s *DocumentService) SetConfig(config DocumentServiceConfig) {
	s.config = config
}

// Register creates a pending document record and returns a presigned
// upload URL. The row stays PENDING_UPLOAD until ConfirmUpload.
func (s *DocumentService) Register(ctx context.Context, req RegisterDocumentRequest) (*RegisterDocumentResponse, error) {
	if req.HubID != nil {
		if _, err := s.hubRepo.FindByID(ctx, *req.HubID); err != nil {
			return nil, err
		}
	}
	if req.TradeID != nil {
		if _, err := s.tradeRepo.FindByID(ctx, *req.TradeID); err != nil {
			return nil, err
		}
	}

	doc, err := document.NewDocument(req.HubID, req.TradeID, document.DocumentType(req.Type), req.FileName, req.ContentType)
	if err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, doc.StorageKey, doc.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		s.logger.Error("failed to presign upload",
			zap.String("storage_key", doc.StorageKey),
			zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	return &RegisterDocumentResponse{
		DocumentID: doc.ID,
		StorageKey: doc.StorageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmUpload verifies the object landed in storage and marks the
// document available
func (s *DocumentService) ConfirmUpload(ctx context.Context, docID uuid.UUID, req ConfirmUploadRequest, uploadedBy *uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, doc.StorageKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Please upload the file first.")
	}

	if err := doc.ConfirmUpload(req.SizeBytes, req.PageCount, uploadedBy); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	return s.withDownloadURL(ctx, doc), nil
}

// GetByID retrieves a document, enriched with a download URL when available
func (s *DocumentService) GetByID(ctx context.Context, docID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.withDownloadURL(ctx, doc), nil
}

// ListByHub retrieves documents attached to an asset
func (s *DocumentService) ListByHub(ctx context.Context, hubID uuid.UUID, filter shared.Filter) ([]DocumentResponse, error) {
	docs, err := s.docRepo.FindByHub(ctx, hubID, filter)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponses(docs), nil
}

// ListByTrade retrieves documents attached to a trade
func (s *DocumentService) ListByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]DocumentResponse, error) {
	docs, err := s.docRepo.FindByTrade(ctx, tradeID, filter)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponses(docs), nil
}

// ListByHubAndType retrieves one category of an asset's documents
func (s *DocumentService) ListByHubAndType(ctx context.Context, hubID uuid.UUID, docType document.DocumentType) ([]DocumentResponse, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Unknown document type: "+docType.String())
	}
	docs, err := s.docRepo.FindByHubAndType(ctx, hubID, docType)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponses(docs), nil
}

// Delete removes the stored object and soft-deletes the metadata
func (s *DocumentService) Delete(ctx context.Context, docID uuid.UUID) error {
	doc, err := s.docRepo.FindByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := doc.MarkDeleted(); err != nil {
		return err
	}

	if err := s.storage.DeleteObject(ctx, doc.StorageKey); err != nil {
		s.logger.Error("failed to delete stored object",
			zap.String("storage_key", doc.StorageKey),
			zap.Error(err))
		return shared.NewDomainError("STORAGE_DELETE_FAILED", "Failed to delete stored object")
	}

	return s.docRepo.Save(ctx, doc)
}

func (s *DocumentService) withDownloadURL(ctx context.Context, doc *document.Document) *DocumentResponse {
	response := ToDocumentResponse(doc)
	if doc.IsAvailable() {
		url, _, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey, s.config.DownloadURLExpiry)
		if err == nil {
			response.DownloadURL = url
		}
	}
	return &response
}
