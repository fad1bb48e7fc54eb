package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PortfolioSummary is a read model for the whole-book snapshot
type PortfolioSummary struct {
	AsOf             time.Time       `json:"as_of"`
	ActiveAssets     int64           `json:"active_assets"`
	LiquidatedAssets int64           `json:"liquidated_assets"`
	SoldAssets       int64           `json:"sold_assets"`
	TotalUPB         decimal.Decimal `json:"total_upb"`
	AvgUPB           decimal.Decimal `json:"avg_upb"`
	TotalAsIsValue   decimal.Decimal `json:"total_as_is_value"` // Reconciled values
	WeightedRate     decimal.Decimal `json:"weighted_rate"`     // UPB-weighted note rate
}

// TradePipelineRow is a read model for one trade in the pipeline view
type TradePipelineRow struct {
	TradeID        uuid.UUID       `json:"trade_id"`
	TradeNumber    string          `json:"trade_number"`
	SellerName     string          `json:"seller_name"`
	Status         string          `json:"status"`
	LoanCount      int64           `json:"loan_count"`
	TotalUPB       decimal.Decimal `json:"total_upb"`
	BidAmount      decimal.Decimal `json:"bid_amount"`
	BidPctOfUPB    decimal.Decimal `json:"bid_pct_of_upb"`
	SettlementDate *time.Time      `json:"settlement_date,omitempty"`
}

// DelinquencyBand is one bucket of the delinquency distribution
type DelinquencyBand struct {
	Bucket    string          `json:"bucket"`
	LoanCount int64           `json:"loan_count"`
	TotalUPB  decimal.Decimal `json:"total_upb"`
	PctOfUPB  decimal.Decimal `json:"pct_of_upb"`
}

// DelinquencyDistribution is the per-period bucket breakdown
type DelinquencyDistribution struct {
	Period string            `json:"period"` // YYYY-MM
	Bands  []DelinquencyBand `json:"bands"`
}

// TrackSummaryRow counts tracks per type and status
type TrackSummaryRow struct {
	TrackType string `json:"track_type"`
	Status    string `json:"status"`
	Count     int64  `json:"count"`
}

// ValuationCoverageRow reports how fresh the book's value opinions are
type ValuationCoverageRow struct {
	Source     string `json:"source"`
	AssetCount int64  `json:"asset_count"`
	StaleCount int64  `json:"stale_count"` // Older than the staleness window
}

// PortfolioReportFilter defines filtering options for portfolio reports
type PortfolioReportFilter struct {
	TradeID  *uuid.UUID `json:"trade_id,omitempty"`
	SellerID *uuid.UUID `json:"seller_id,omitempty"`
	Period   string     `json:"period,omitempty"` // YYYY-MM, for servicing-derived reports
}

// PortfolioReportRepository defines the interface for portfolio report queries
type PortfolioReportRepository interface {
	// GetPortfolioSummary returns the whole-book snapshot
	GetPortfolioSummary(ctx context.Context, filter PortfolioReportFilter) (*PortfolioSummary, error)

	// GetTradePipeline returns one row per trade with population rollups
	GetTradePipeline(ctx context.Context, filter PortfolioReportFilter) ([]TradePipelineRow, error)

	// GetDelinquencyDistribution returns bucket counts for a servicing period
	GetDelinquencyDistribution(ctx context.Context, filter PortfolioReportFilter) (*DelinquencyDistribution, error)

	// GetTrackSummary returns track counts grouped by type and status
	GetTrackSummary(ctx context.Context, filter PortfolioReportFilter) ([]TrackSummaryRow, error)

	// GetValuationCoverage returns per-source coverage and staleness
	GetValuationCoverage(ctx context.Context, filter PortfolioReportFilter) ([]ValuationCoverageRow, error)
}
