package etl

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// JobRepository defines persistence operations for extraction jobs
type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ExtractionJob, error)
	FindByHub(ctx context.Context, hubID uuid.UUID, filter shared.Filter) ([]ExtractionJob, error)
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]ExtractionJob, error)
	FindByStatus(ctx context.Context, status JobStatus, filter shared.Filter) ([]ExtractionJob, error)
	FindActiveByDocument(ctx context.Context, documentID uuid.UUID) (*ExtractionJob, error)
	Save(ctx context.Context, job *ExtractionJob) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, status JobStatus) (int64, error)
}
