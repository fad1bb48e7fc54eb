package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/valuation"
	"gorm.io/gorm"
)

// GormValuationRepository implements ValuationRepository using GORM
type GormValuationRepository struct {
	db *gorm.DB
}

var _ valuation.ValuationRepository = (*GormValuationRepository)(nil)

// NewGormValuationRepository creates a new GormValuationRepository
func NewGormValuationRepository(db *gorm.DB) *GormValuationRepository {
	return &GormValuationRepository{db: db}
}

// FindByID finds a valuation by ID
func (r *GormValuationRepository) FindByID(ctx context.Context, id uuid.UUID) (*valuation.Valuation, error) {
	var v valuation.Valuation
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// FindByHub finds all valuations for an asset, newest effective date first
func (r *GormValuationRepository) FindByHub(ctx context.Context, hubID uuid.UUID) ([]valuation.Valuation, error) {
	var valuations []valuation.Valuation
	if err := r.db.WithContext(ctx).
		Where("hub_id = ?", hubID).
		Order("effective_date DESC").
		Find(&valuations).Error; err != nil {
		return nil, err
	}
	return valuations, nil
}

// FindByHubAndSource finds valuations for an asset from one source
func (r *GormValuationRepository) FindByHubAndSource(ctx context.Context, hubID uuid.UUID, source valuation.ValuationSource) ([]valuation.Valuation, error) {
	var valuations []valuation.Valuation
	if err := r.db.WithContext(ctx).
		Where("hub_id = ? AND source = ?", hubID, source).
		Order("effective_date DESC").
		Find(&valuations).Error; err != nil {
		return nil, err
	}
	return valuations, nil
}

// FindAll finds all valuations matching the filter
func (r *GormValuationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]valuation.Valuation, error) {
	var valuations []valuation.Valuation
	query := r.db.WithContext(ctx).Model(&valuation.Valuation{})

	for key, value := range filter.Filters {
		switch key {
		case "source":
			query = query.Where("source = ?", value)
		case "vendor":
			query = query.Where("vendor = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if filter.OrderBy == "" {
		query = query.Order("effective_date DESC")
	} else {
		orderBy := ValidateSortField(filter.OrderBy, ValuationSortFields, "effective_date")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	}

	if err := query.Find(&valuations).Error; err != nil {
		return nil, err
	}
	return valuations, nil
}

// Save persists a valuation
func (r *GormValuationRepository) Save(ctx context.Context, v *valuation.Valuation) error {
	return r.db.WithContext(ctx).Save(v).Error
}

// SaveBatch persists multiple valuations in one statement
func (r *GormValuationRepository) SaveBatch(ctx context.Context, vs []*valuation.Valuation) error {
	if len(vs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Save(vs).Error
}

// CountByHub counts valuations recorded for an asset
func (r *GormValuationRepository) CountByHub(ctx context.Context, hubID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&valuation.Valuation{}).
		Where("hub_id = ?", hubID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
