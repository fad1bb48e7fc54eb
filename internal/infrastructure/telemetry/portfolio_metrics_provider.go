package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormPortfolioMetricsProvider implements PortfolioMetricsProvider
// using GORM. It queries the assets and am_tracks tables directly for
// aggregated gauge values.
type GormPortfolioMetricsProvider struct {
	db *gorm.DB
}

// NewGormPortfolioMetricsProvider creates a new GormPortfolioMetricsProvider.
func NewGormPortfolioMetricsProvider(db *gorm.DB) *GormPortfolioMetricsProvider {
	return &GormPortfolioMetricsProvider{db: db}
}

// ActiveBook returns the count and total UPB of assets still on the book.
func (p *GormPortfolioMetricsProvider) ActiveBook(ctx context.Context) (int64, float64, error) {
	var result struct {
		AssetCount int64   `gorm:"column:asset_count"`
		TotalUPB   float64 `gorm:"column:total_upb"`
	}

	err := p.db.WithContext(ctx).
		Table("assets").
		Select("COUNT(*) as asset_count, COALESCE(SUM(current_upb), 0) as total_upb").
		Where("status = ?", "ACTIVE").
		Scan(&result).Error

	if err != nil {
		return 0, 0, err
	}

	return result.AssetCount, result.TotalUPB, nil
}

// OpenTrackCounts returns the number of unresolved tracks per track type.
func (p *GormPortfolioMetricsProvider) OpenTrackCounts(ctx context.Context) (map[string]int64, error) {
	type result struct {
		TrackType string `gorm:"column:track_type"`
		OpenCount int64  `gorm:"column:open_count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("am_tracks").
		Select("type as track_type, COUNT(*) as open_count").
		Where("status NOT IN ?", []string{"RESOLVED", "CANCELLED"}).
		Group("type").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.TrackType] = r.OpenCount
	}

	return m, nil
}
