package document

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// DocumentRepository defines persistence operations for document metadata
type DocumentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindByHub(ctx context.Context, hubID uuid.UUID, filter shared.Filter) ([]Document, error)
	FindByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]Document, error)
	FindByHubAndType(ctx context.Context, hubID uuid.UUID, docType DocumentType) ([]Document, error)
	Save(ctx context.Context, doc *Document) error
	CountByHub(ctx context.Context, hubID uuid.UUID) (int64, error)
}
