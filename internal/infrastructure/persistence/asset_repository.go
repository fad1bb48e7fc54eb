package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormHubRepository implements HubRepository using GORM
type GormHubRepository struct {
	db *gorm.DB
}

var _ asset.HubRepository = (*GormHubRepository)(nil)

// NewGormHubRepository creates a new GormHubRepository
func NewGormHubRepository(db *gorm.DB) *GormHubRepository {
	return &GormHubRepository{db: db}
}

// FindByID finds a hub identity by ID
func (r *GormHubRepository) FindByID(ctx context.Context, id uuid.UUID) (*asset.AssetIdHub, error) {
	var hub asset.AssetIdHub
	if err := r.db.WithContext(ctx).First(&hub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &hub, nil
}

// FindByTradeAndLoanNumber finds a hub by its natural key
func (r *GormHubRepository) FindByTradeAndLoanNumber(ctx context.Context, tradeID uuid.UUID, loanNumber string) (*asset.AssetIdHub, error) {
	var hub asset.AssetIdHub
	if err := r.db.WithContext(ctx).
		Where("trade_id = ? AND seller_loan_number = ?", tradeID, loanNumber).
		First(&hub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &hub, nil
}

// Save persists a hub identity
func (r *GormHubRepository) Save(ctx context.Context, hub *asset.AssetIdHub) error {
	return r.db.WithContext(ctx).Save(hub).Error
}

// CountByTrade counts hub identities minted for a trade
func (r *GormHubRepository) CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&asset.AssetIdHub{}).
		Where("trade_id = ?", tradeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GormAssetRepository implements AssetRepository using GORM
type GormAssetRepository struct {
	db *gorm.DB
}

var _ asset.AssetRepository = (*GormAssetRepository)(nil)

// NewGormAssetRepository creates a new GormAssetRepository
func NewGormAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

// FindByID finds an asset by ID
func (r *GormAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*asset.Asset, error) {
	var a asset.Asset
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindByHubID finds the asset behind a hub identity
func (r *GormAssetRepository) FindByHubID(ctx context.Context, hubID uuid.UUID) (*asset.Asset, error) {
	var a asset.Asset
	if err := r.db.WithContext(ctx).
		Where("hub_id = ?", hubID).
		First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindAll finds all assets matching the filter
func (r *GormAssetRepository) FindAll(ctx context.Context, filter shared.Filter) ([]asset.Asset, error) {
	var assets []asset.Asset
	query := r.applyFilter(r.db.WithContext(ctx).Model(&asset.Asset{}), filter)

	if err := query.Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// FindByTrade finds assets boarded from a trade
func (r *GormAssetRepository) FindByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]asset.Asset, error) {
	var assets []asset.Asset
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&asset.Asset{}).Where("trade_id = ?", tradeID),
		filter,
	)

	if err := query.Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// FindByStatus finds assets in the given status
func (r *GormAssetRepository) FindByStatus(ctx context.Context, status asset.AssetStatus, filter shared.Filter) ([]asset.Asset, error) {
	var assets []asset.Asset
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&asset.Asset{}).Where("status = ?", status),
		filter,
	)

	if err := query.Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// Save persists an asset
func (r *GormAssetRepository) Save(ctx context.Context, a *asset.Asset) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// Count counts assets matching the filter
func (r *GormAssetRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&asset.Asset{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts assets in the given status
func (r *GormAssetRepository) CountByStatus(ctx context.Context, status asset.AssetStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&asset.Asset{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByTrade counts assets boarded from a trade
func (r *GormAssetRepository) CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&asset.Asset{}).
		Where("trade_id = ?", tradeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAssetRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if filter.OrderBy == "" {
		query = query.Order("boarded_at DESC")
	} else {
		orderBy := ValidateSortField(filter.OrderBy, AssetSortFields, "boarded_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	}

	return query
}

func (r *GormAssetRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("seller_loan_number ILIKE ? OR property_city ILIKE ? OR property_zip ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "trade_id":
			query = query.Where("trade_id = ?", value)
		case "seller_id":
			query = query.Where("seller_id = ?", value)
		case "property_state":
			query = query.Where("property_state = ?", value)
		case "lien_position":
			query = query.Where("lien_position = ?", value)
		}
	}

	return query
}
