package valuation

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// ValuationRepository defines persistence operations for valuations
type ValuationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Valuation, error)
	FindByHub(ctx context.Context, hubID uuid.UUID) ([]Valuation, error)
	FindByHubAndSource(ctx context.Context, hubID uuid.UUID, source ValuationSource) ([]Valuation, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Valuation, error)
	Save(ctx context.Context, v *Valuation) error
	SaveBatch(ctx context.Context, vs []*Valuation) error
	CountByHub(ctx context.Context, hubID uuid.UUID) (int64, error)
}
