package servicing

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// ExtractRepository defines persistence operations for servicing extracts
type ExtractRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServicingExtract, error)
	FindByHubAndPeriod(ctx context.Context, hubID uuid.UUID, period string) (*ServicingExtract, error)
	FindByHub(ctx context.Context, hubID uuid.UUID, filter shared.Filter) ([]ServicingExtract, error)
	FindLatestByHub(ctx context.Context, hubID uuid.UUID) (*ServicingExtract, error)
	FindByPeriod(ctx context.Context, period string, filter shared.Filter) ([]ServicingExtract, error)
	Save(ctx context.Context, e *ServicingExtract) error
	SaveBatch(ctx context.Context, es []*ServicingExtract) error
	CountByPeriod(ctx context.Context, period string) (int64, error)
	BucketCountsByPeriod(ctx context.Context, period string) (map[DelinquencyBucket]int64, error)
}
