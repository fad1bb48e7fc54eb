package seller

import (
	"context"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// SellerRepository defines persistence operations for sellers
type SellerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Seller, error)
	FindByCode(ctx context.Context, code string) (*Seller, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Seller, error)
	Save(ctx context.Context, seller *Seller) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, status SellerStatus) (int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// RawDataRepository defines persistence operations for landed tape rows
type RawDataRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SellerRawData, error)
	FindByTradeAndLoanNumber(ctx context.Context, tradeID uuid.UUID, loanNumber string) (*SellerRawData, error)
	FindByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]SellerRawData, error)
	FindBoardable(ctx context.Context, tradeID uuid.UUID) ([]SellerRawData, error)
	Save(ctx context.Context, row *SellerRawData) error
	SaveBatch(ctx context.Context, rows []*SellerRawData) error
	CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error)
	CountByTradeAndStatus(ctx context.Context, tradeID uuid.UUID, status RawDataStatus) (int64, error)
	SumUPBByTrade(ctx context.Context, tradeID uuid.UUID) (TradePopulationSummary, error)
}

// TradePopulationSummary aggregates a trade's landed population
type TradePopulationSummary struct {
	LoanCount     int64  `json:"loan_count"`
	TotalUPB      string `json:"total_upb"`
	TotalAsIs     string `json:"total_as_is"`
	TotalARV      string `json:"total_arv"`
	BoardedCount  int64  `json:"boarded_count"`
	RejectedCount int64  `json:"rejected_count"`
}

// TapeImportRepository defines persistence operations for import-history records
type TapeImportRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TapeImport, error)
	FindByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]TapeImport, error)
	Save(ctx context.Context, imp *TapeImport) error
	CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error)
}
