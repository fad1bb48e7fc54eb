package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTradeRepository implements TradeRepository using GORM
type GormTradeRepository struct {
	db *gorm.DB
}

var _ trade.TradeRepository = (*GormTradeRepository)(nil)

// NewGormTradeRepository creates a new GormTradeRepository
func NewGormTradeRepository(db *gorm.DB) *GormTradeRepository {
	return &GormTradeRepository{db: db}
}

// FindByID finds a trade by its ID
func (r *GormTradeRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Trade, error) {
	var t trade.Trade
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByTradeNumber finds a trade by its trade number
func (r *GormTradeRepository) FindByTradeNumber(ctx context.Context, tradeNumber string) (*trade.Trade, error) {
	var t trade.Trade
	if err := r.db.WithContext(ctx).
		Where("trade_number = ?", strings.ToUpper(tradeNumber)).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindAll finds all trades matching the filter
func (r *GormTradeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Trade, error) {
	var trades []trade.Trade
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.Trade{}), filter)

	if err := query.Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// FindBySeller finds trades for a seller
func (r *GormTradeRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]trade.Trade, error) {
	var trades []trade.Trade
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&trade.Trade{}).Where("seller_id = ?", sellerID),
		filter,
	)

	if err := query.Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// FindByStatus finds trades in the given status
func (r *GormTradeRepository) FindByStatus(ctx context.Context, status trade.TradeStatus, filter shared.Filter) ([]trade.Trade, error) {
	var trades []trade.Trade
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&trade.Trade{}).Where("status = ?", status),
		filter,
	)

	if err := query.Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// Save persists a trade
func (r *GormTradeRepository) Save(ctx context.Context, t *trade.Trade) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// Delete removes a trade by ID
func (r *GormTradeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&trade.Trade{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts trades matching the filter
func (r *GormTradeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&trade.Trade{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts trades in the given status
func (r *GormTradeRepository) CountByStatus(ctx context.Context, status trade.TradeStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&trade.Trade{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByTradeNumber checks whether a trade with the number exists
func (r *GormTradeRepository) ExistsByTradeNumber(ctx context.Context, tradeNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&trade.Trade{}).
		Where("trade_number = ?", strings.ToUpper(tradeNumber)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormTradeRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if filter.OrderBy == "" {
		query = query.Order("created_at DESC")
	} else {
		orderBy := ValidateSortField(filter.OrderBy, TradeSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	}

	return query
}

func (r *GormTradeRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("trade_number ILIKE ? OR name ILIKE ? OR seller_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "seller_id":
			query = query.Where("seller_id = ?", value)
		}
	}

	return query
}
