package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/servicing"
	"github.com/npl/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormExtractRepository implements ExtractRepository using GORM
type GormExtractRepository struct {
	db *gorm.DB
}

var _ servicing.ExtractRepository = (*GormExtractRepository)(nil)

// NewGormExtractRepository creates a new GormExtractRepository
func NewGormExtractRepository(db *gorm.DB) *GormExtractRepository {
	return &GormExtractRepository{db: db}
}

// FindByID finds a servicing extract by ID
func (r *GormExtractRepository) FindByID(ctx context.Context, id uuid.UUID) (*servicing.ServicingExtract, error) {
	var e servicing.ServicingExtract
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindByHubAndPeriod finds the extract for one asset and one reporting period
func (r *GormExtractRepository) FindByHubAndPeriod(ctx context.Context, hubID uuid.UUID, period string) (*servicing.ServicingExtract, error) {
	var e servicing.ServicingExtract
	if err := r.db.WithContext(ctx).
		Where("hub_id = ? AND period = ?", hubID, period).
		First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindByHub finds extracts for an asset, newest period first
func (r *GormExtractRepository) FindByHub(ctx context.Context, hubID uuid.UUID, filter shared.Filter) ([]servicing.ServicingExtract, error) {
	var extracts []servicing.ServicingExtract
	query := r.db.WithContext(ctx).
		Model(&servicing.ServicingExtract{}).
		Where("hub_id = ?", hubID).
		Order("period DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&extracts).Error; err != nil {
		return nil, err
	}
	return extracts, nil
}

// FindLatestByHub finds the most recent extract for an asset
func (r *GormExtractRepository) FindLatestByHub(ctx context.Context, hubID uuid.UUID) (*servicing.ServicingExtract, error) {
	var e servicing.ServicingExtract
	if err := r.db.WithContext(ctx).
		Where("hub_id = ?", hubID).
		Order("period DESC").
		First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindByPeriod finds all extracts for a reporting period
func (r *GormExtractRepository) FindByPeriod(ctx context.Context, period string, filter shared.Filter) ([]servicing.ServicingExtract, error) {
	var extracts []servicing.ServicingExtract
	query := r.db.WithContext(ctx).
		Model(&servicing.ServicingExtract{}).
		Where("period = ?", period)

	for key, value := range filter.Filters {
		switch key {
		case "bucket":
			query = query.Where("bucket = ?", value)
		case "servicer":
			query = query.Where("servicer = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if filter.OrderBy == "" {
		query = query.Order("days_past_due DESC")
	} else {
		orderBy := ValidateSortField(filter.OrderBy, ExtractSortFields, "days_past_due")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	}

	if err := query.Find(&extracts).Error; err != nil {
		return nil, err
	}
	return extracts, nil
}

// Save persists a servicing extract
func (r *GormExtractRepository) Save(ctx context.Context, e *servicing.ServicingExtract) error {
	return r.db.WithContext(ctx).Save(e).Error
}

// SaveBatch persists multiple extracts in one statement
func (r *GormExtractRepository) SaveBatch(ctx context.Context, es []*servicing.ServicingExtract) error {
	if len(es) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Save(es).Error
}

// CountByPeriod counts extracts landed for a reporting period
func (r *GormExtractRepository) CountByPeriod(ctx context.Context, period string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&servicing.ServicingExtract{}).
		Where("period = ?", period).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// BucketCountsByPeriod groups a period's extracts by delinquency bucket
func (r *GormExtractRepository) BucketCountsByPeriod(ctx context.Context, period string) (map[servicing.DelinquencyBucket]int64, error) {
	type bucketCount struct {
		Bucket servicing.DelinquencyBucket
		Count  int64
	}
	var rows []bucketCount
	if err := r.db.WithContext(ctx).
		Model(&servicing.ServicingExtract{}).
		Select("bucket, COUNT(*) AS count").
		Where("period = ?", period).
		Group("bucket").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[servicing.DelinquencyBucket]int64, len(rows))
	for _, row := range rows {
		counts[row.Bucket] = row.Count
	}
	return counts, nil
}
