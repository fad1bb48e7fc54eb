package asset

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// HubRepository defines persistence operations for hub identities
type HubRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AssetIdHub, error)
	FindByTradeAndLoanNumber(ctx context.Context, tradeID uuid.UUID, loanNumber string) (*AssetIdHub, error)
	Save(ctx context.Context, hub *AssetIdHub) error
	CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error)
}

// AssetRepository defines persistence operations for assets
type AssetRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	FindByHubID(ctx context.Context, hubID uuid.UUID) (*Asset, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Asset, error)
	FindByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]Asset, error)
	FindByStatus(ctx context.Context, status AssetStatus, filter shared.Filter) ([]Asset, error)
	Save(ctx context.Context, asset *Asset) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, status AssetStatus) (int64, error)
	CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error)
}
