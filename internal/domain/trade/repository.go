package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// TradeRepository defines persistence operations for trades
type TradeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Trade, error)
	FindByTradeNumber(ctx context.Context, tradeNumber string) (*Trade, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Trade, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]Trade, error)
	FindByStatus(ctx context.Context, status TradeStatus, filter shared.Filter) ([]Trade, error)
	Save(ctx context.Context, trade *Trade) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, status TradeStatus) (int64, error)
	ExistsByTradeNumber(ctx context.Context, tradeNumber string) (bool, error)
}
