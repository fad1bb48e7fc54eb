package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/report"
	"github.com/npl/backend/internal/domain/valuation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPortfolioReportRepository implements PortfolioReportRepository using GORM
type GormPortfolioReportRepository struct {
	db *gorm.DB
}

var _ report.PortfolioReportRepository = (*GormPortfolioReportRepository)(nil)

// NewGormPortfolioReportRepository creates a new GormPortfolioReportRepository
func NewGormPortfolioReportRepository(db *gorm.DB) *GormPortfolioReportRepository {
	return &GormPortfolioReportRepository{db: db}
}

// GetPortfolioSummary returns the whole-book snapshot
func (r *GormPortfolioReportRepository) GetPortfolioSummary(ctx context.Context, filter report.PortfolioReportFilter) (*report.PortfolioSummary, error) {
	type summaryResult struct {
		ActiveAssets     int64
		LiquidatedAssets int64
		SoldAssets       int64
		TotalUPB         decimal.Decimal
		WeightedRateNum  decimal.Decimal
	}

	var result summaryResult

	query := r.db.WithContext(ctx).Table("assets a").
		Select(`
			COUNT(*) FILTER (WHERE a.status = 'ACTIVE') as active_assets,
			COUNT(*) FILTER (WHERE a.status = 'LIQUIDATED') as liquidated_assets,
			COUNT(*) FILTER (WHERE a.status = 'SOLD') as sold_assets,
			COALESCE(SUM(a.current_upb) FILTER (WHERE a.status = 'ACTIVE'), 0) as total_upb,
			COALESCE(SUM(a.current_upb * a.interest_rate) FILTER (WHERE a.status = 'ACTIVE'), 0) as weighted_rate_num
		`)

	if filter.TradeID != nil {
		query = query.Where("a.trade_id = ?", *filter.TradeID)
	}
	if filter.SellerID != nil {
		query = query.Where("a.seller_id = ?", *filter.SellerID)
	}

	if err := query.Scan(&result).Error; err != nil {
		return nil, err
	}

	var avgUPB, weightedRate decimal.Decimal
	if result.ActiveAssets > 0 {
		avgUPB = result.TotalUPB.Div(decimal.NewFromInt(result.ActiveAssets))
	}
	if !result.TotalUPB.IsZero() {
		weightedRate = result.WeightedRateNum.Div(result.TotalUPB)
	}

	totalAsIs, err := r.reconciledAsIsTotal(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &report.PortfolioSummary{
		AsOf:             time.Now(),
		ActiveAssets:     result.ActiveAssets,
		LiquidatedAssets: result.LiquidatedAssets,
		SoldAssets:       result.SoldAssets,
		TotalUPB:         result.TotalUPB,
		AvgUPB:           avgUPB,
		TotalAsIsValue:   totalAsIs,
		WeightedRate:     weightedRate,
	}, nil
}

// reconciledAsIsTotal sums the freshest valuation per active asset,
// preferring higher-ranked sources the same way Reconcile does.
func (r *GormPortfolioReportRepository) reconciledAsIsTotal(ctx context.Context, filter report.PortfolioReportFilter) (decimal.Decimal, error) {
	type totalResult struct {
		TotalAsIs decimal.Decimal
	}

	var result totalResult

	query := r.db.WithContext(ctx).Table("assets a").
		Select("COALESCE(SUM(best.as_is_value), 0) as total_as_is").
		Joins(`LEFT JOIN LATERAL (
			SELECT v.as_is_value
			FROM valuations v
			WHERE v.hub_id = a.hub_id AND v.effective_date >= ?
			ORDER BY CASE v.source
				WHEN 'APPRAISAL' THEN 1
				WHEN 'BPO' THEN 2
				WHEN 'DESKTOP' THEN 3
				WHEN 'AVM' THEN 4
				WHEN 'EXTRACTION' THEN 5
				WHEN 'SELLER_TAPE' THEN 6
				ELSE 7
			END, v.effective_date DESC
			LIMIT 1
		) best ON TRUE`, time.Now().Add(-valuation.DefaultStalenessWindow)).
		Where("a.status = 'ACTIVE'")

	if filter.TradeID != nil {
		query = query.Where("a.trade_id = ?", *filter.TradeID)
	}
	if filter.SellerID != nil {
		query = query.Where("a.seller_id = ?", *filter.SellerID)
	}

	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.TotalAsIs, nil
}

// GetTradePipeline returns one row per trade with population rollups
func (r *GormPortfolioReportRepository) GetTradePipeline(ctx context.Context, filter report.PortfolioReportFilter) ([]report.TradePipelineRow, error) {
	type pipelineResult struct {
		TradeID        uuid.UUID
		TradeNumber    string
		SellerName     string
		Status         string
		LoanCount      int64
		TotalUPB       decimal.Decimal
		BidAmount      decimal.Decimal
		BidPctOfUPB    decimal.Decimal
		SettlementDate *time.Time
	}

	var results []pipelineResult

	query := r.db.WithContext(ctx).Table("trades t").
		Select(`
			t.id as trade_id,
			t.trade_number,
			t.seller_name,
			t.status,
			COUNT(srd.id) as loan_count,
			COALESCE(SUM(srd.current_upb), 0) as total_upb,
			t.bid_amount,
			t.bid_pct_of_upb,
			t.settlement_date
		`).
		Joins("LEFT JOIN seller_raw_data srd ON srd.trade_id = t.id").
		Group("t.id, t.trade_number, t.seller_name, t.status, t.bid_amount, t.bid_pct_of_upb, t.settlement_date").
		Order("t.created_at DESC")

	if filter.TradeID != nil {
		query = query.Where("t.id = ?", *filter.TradeID)
	}
	if filter.SellerID != nil {
		query = query.Where("t.seller_id = ?", *filter.SellerID)
	}

	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	rows := make([]report.TradePipelineRow, len(results))
	for i, res := range results {
		rows[i] = report.TradePipelineRow{
			TradeID:        res.TradeID,
			TradeNumber:    res.TradeNumber,
			SellerName:     res.SellerName,
			Status:         res.Status,
			LoanCount:      res.LoanCount,
			TotalUPB:       res.TotalUPB,
			BidAmount:      res.BidAmount,
			BidPctOfUPB:    res.BidPctOfUPB,
			SettlementDate: res.SettlementDate,
		}
	}

	return rows, nil
}

// GetDelinquencyDistribution returns bucket counts for a servicing period
func (r *GormPortfolioReportRepository) GetDelinquencyDistribution(ctx context.Context, filter report.PortfolioReportFilter) (*report.DelinquencyDistribution, error) {
	type bandResult struct {
		Bucket    string
		LoanCount int64
		TotalUPB  decimal.Decimal
	}

	var results []bandResult

	query := r.db.WithContext(ctx).Table("servicing_extracts se").
		Select(`
			se.bucket,
			COUNT(*) as loan_count,
			COALESCE(SUM(se.current_upb), 0) as total_upb
		`).
		Where("se.period = ?", filter.Period).
		Group("se.bucket").
		Order(`CASE se.bucket
			WHEN 'CURRENT' THEN 1
			WHEN '30' THEN 2
			WHEN '60' THEN 3
			WHEN '90' THEN 4
			WHEN '120+' THEN 5
			ELSE 6
		END`)

	if filter.TradeID != nil {
		query = query.
			Joins("JOIN assets a ON a.hub_id = se.hub_id").
			Where("a.trade_id = ?", *filter.TradeID)
	}

	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	grandTotal := decimal.Zero
	for _, res := range results {
		grandTotal = grandTotal.Add(res.TotalUPB)
	}

	bands := make([]report.DelinquencyBand, len(results))
	for i, res := range results {
		var pct decimal.Decimal
		if !grandTotal.IsZero() {
			pct = res.TotalUPB.Div(grandTotal).Mul(decimal.NewFromInt(100))
		}
		bands[i] = report.DelinquencyBand{
			Bucket:    res.Bucket,
			LoanCount: res.LoanCount,
			TotalUPB:  res.TotalUPB,
			PctOfUPB:  pct,
		}
	}

	return &report.DelinquencyDistribution{
		Period: filter.Period,
		Bands:  bands,
	}, nil
}

// GetTrackSummary returns track counts grouped by type and status
func (r *GormPortfolioReportRepository) GetTrackSummary(ctx context.Context, filter report.PortfolioReportFilter) ([]report.TrackSummaryRow, error) {
	type summaryResult struct {
		TrackType string
		Status    string
		Count     int64
	}

	var results []summaryResult

	query := r.db.WithContext(ctx).Table("am_tracks tr").
		Select("tr.type as track_type, tr.status, COUNT(*) as count").
		Group("tr.type, tr.status").
		Order("tr.type ASC, tr.status ASC")

	if filter.TradeID != nil || filter.SellerID != nil {
		query = query.Joins("JOIN assets a ON a.hub_id = tr.hub_id")
		if filter.TradeID != nil {
			query = query.Where("a.trade_id = ?", *filter.TradeID)
		}
		if filter.SellerID != nil {
			query = query.Where("a.seller_id = ?", *filter.SellerID)
		}
	}

	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	rows := make([]report.TrackSummaryRow, len(results))
	for i, res := range results {
		rows[i] = report.TrackSummaryRow{
			TrackType: res.TrackType,
			Status:    res.Status,
			Count:     res.Count,
		}
	}

	return rows, nil
}

// GetValuationCoverage returns per-source coverage and staleness
func (r *GormPortfolioReportRepository) GetValuationCoverage(ctx context.Context, filter report.PortfolioReportFilter) ([]report.ValuationCoverageRow, error) {
	type coverageResult struct {
		Source     string
		AssetCount int64
		StaleCount int64
	}

	var results []coverageResult

	staleBefore := time.Now().Add(-valuation.DefaultStalenessWindow)

	query := r.db.WithContext(ctx).Table("valuations v").
		Select(`
			v.source,
			COUNT(DISTINCT v.hub_id) as asset_count,
			COUNT(DISTINCT v.hub_id) FILTER (WHERE NOT EXISTS (
				SELECT 1 FROM valuations v2
				WHERE v2.hub_id = v.hub_id AND v2.source = v.source AND v2.effective_date >= ?
			)) as stale_count
		`, staleBefore).
		Joins("JOIN assets a ON a.hub_id = v.hub_id").
		Where("a.status = 'ACTIVE'").
		Group("v.source").
		Order("v.source ASC")

	if filter.TradeID != nil {
		query = query.Where("a.trade_id = ?", *filter.TradeID)
	}
	if filter.SellerID != nil {
		query = query.Where("a.seller_id = ?", *filter.SellerID)
	}

	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	rows := make([]report.ValuationCoverageRow, len(results))
	for i, res := range results {
		rows[i] = report.ValuationCoverageRow{
			Source:     res.Source,
			AssetCount: res.AssetCount,
			StaleCount: res.StaleCount,
		}
	}

	return rows, nil
}
