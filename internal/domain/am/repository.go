package am

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// TrackRepository defines persistence operations for AM tracks
type TrackRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AMTrack, error)
	FindByHub(ctx context.Context, hubID uuid.UUID) ([]AMTrack, error)
	FindOpenByHubAndType(ctx context.Context, hubID uuid.UUID, trackType TrackType) (*AMTrack, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]AMTrack, error)
	FindByStatus(ctx context.Context, status TrackStatus, filter shared.Filter) ([]AMTrack, error)
	Save(ctx context.Context, track *AMTrack) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByTypeAndStatus(ctx context.Context, trackType TrackType, status TrackStatus) (int64, error)
}

// DetailRepository defines persistence operations for track detail records
type DetailRepository interface {
	FindREOByTrack(ctx context.Context, trackID uuid.UUID) (*REOProperty, error)
	SaveREO(ctx context.Context, reo *REOProperty) error
	FindForeclosureByTrack(ctx context.Context, trackID uuid.UUID) (*ForeclosureCase, error)
	SaveForeclosure(ctx context.Context, fc *ForeclosureCase) error
	FindModificationByTrack(ctx context.Context, trackID uuid.UUID) (*LoanModification, error)
	SaveModification(ctx context.Context, mod *LoanModification) error
	FindShortSaleByTrack(ctx context.Context, trackID uuid.UUID) (*ShortSale, error)
	SaveShortSale(ctx context.Context, ss *ShortSale) error
	FindNoteSaleByTrack(ctx context.Context, trackID uuid.UUID) (*NoteSale, error)
	SaveNoteSale(ctx context.Context, ns *NoteSale) error
}
