package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/seller"
	"github.com/npl/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRawDataRepository implements RawDataRepository using GORM
type GormRawDataRepository struct {
	db *gorm.DB
}

var _ seller.RawDataRepository = (*GormRawDataRepository)(nil)

// NewGormRawDataRepository creates a new GormRawDataRepository
func NewGormRawDataRepository(db *gorm.DB) *GormRawDataRepository {
	return &GormRawDataRepository{db: db}
}

// FindByID finds a landed tape row by ID
func (r *GormRawDataRepository) FindByID(ctx context.Context, id uuid.UUID) (*seller.SellerRawData, error) {
	var row seller.SellerRawData
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// FindByTradeAndLoanNumber finds a row by its natural key within a trade
func (r *GormRawDataRepository) FindByTradeAndLoanNumber(ctx context.Context, tradeID uuid.UUID, loanNumber string) (*seller.SellerRawData, error) {
	var row seller.SellerRawData
	if err := r.db.WithContext(ctx).
		Where("trade_id = ? AND seller_loan_number = ?", tradeID, loanNumber).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// FindByTrade finds all landed rows for a trade
func (r *GormRawDataRepository) FindByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]seller.SellerRawData, error) {
	var rows []seller.SellerRawData
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&seller.SellerRawData{}).Where("trade_id = ?", tradeID),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindBoardable finds landed rows that have not yet been boarded or rejected
func (r *GormRawDataRepository) FindBoardable(ctx context.Context, tradeID uuid.UUID) ([]seller.SellerRawData, error) {
	var rows []seller.SellerRawData
	if err := r.db.WithContext(ctx).
		Where("trade_id = ? AND status = ?", tradeID, seller.RawDataStatusLanded).
		Order("seller_loan_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save persists a landed tape row
func (r *GormRawDataRepository) Save(ctx context.Context, row *seller.SellerRawData) error {
	return r.db.WithContext(ctx).Save(row).Error
}

// SaveBatch persists multiple rows in one statement
func (r *GormRawDataRepository) SaveBatch(ctx context.Context, rows []*seller.SellerRawData) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Save(rows).Error
}

// CountByTrade counts landed rows for a trade
func (r *GormRawDataRepository) CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&seller.SellerRawData{}).
		Where("trade_id = ?", tradeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByTradeAndStatus counts rows for a trade in the given status
func (r *GormRawDataRepository) CountByTradeAndStatus(ctx context.Context, tradeID uuid.UUID, status seller.RawDataStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&seller.SellerRawData{}).
		Where("trade_id = ? AND status = ?", tradeID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumUPBByTrade aggregates a trade's landed population
func (r *GormRawDataRepository) SumUPBByTrade(ctx context.Context, tradeID uuid.UUID) (seller.TradePopulationSummary, error) {
	var summary seller.TradePopulationSummary
	err := r.db.WithContext(ctx).
		Model(&seller.SellerRawData{}).
		Select(`COUNT(*) AS loan_count,
			COALESCE(SUM(current_upb), 0) AS total_upb,
			COALESCE(SUM(seller_as_is_value), 0) AS total_as_is,
			COALESCE(SUM(seller_arv_value), 0) AS total_arv,
			COUNT(*) FILTER (WHERE status = ?) AS boarded_count,
			COUNT(*) FILTER (WHERE status = ?) AS rejected_count`,
			seller.RawDataStatusBoarded, seller.RawDataStatusRejected).
		Where("trade_id = ?", tradeID).
		Scan(&summary).Error
	if err != nil {
		return seller.TradePopulationSummary{}, err
	}
	return summary, nil
}

func (r *GormRawDataRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("seller_loan_number ILIKE ? OR property_city ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "property_state":
			query = query.Where("property_state = ?", value)
		case "lien_position":
			query = query.Where("lien_position = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, RawDataSortFields, "seller_loan_number")
	if filter.OrderBy == "" {
		query = query.Order("seller_loan_number ASC")
	} else {
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	}

	return query
}

// GormTapeImportRepository implements TapeImportRepository using GORM
type GormTapeImportRepository struct {
	db *gorm.DB
}

var _ seller.TapeImportRepository = (*GormTapeImportRepository)(nil)

// NewGormTapeImportRepository creates a new GormTapeImportRepository
func NewGormTapeImportRepository(db *gorm.DB) *GormTapeImportRepository {
	return &GormTapeImportRepository{db: db}
}

// FindByID finds an import run by ID
func (r *GormTapeImportRepository) FindByID(ctx context.Context, id uuid.UUID) (*seller.TapeImport, error) {
	var imp seller.TapeImport
	if err := r.db.WithContext(ctx).First(&imp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &imp, nil
}

// FindByTrade finds import runs for a trade, newest first
func (r *GormTapeImportRepository) FindByTrade(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]seller.TapeImport, error) {
	var imports []seller.TapeImport
	query := r.db.WithContext(ctx).
		Model(&seller.TapeImport{}).
		Where("trade_id = ?", tradeID).
		Order("created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&imports).Error; err != nil {
		return nil, err
	}
	return imports, nil
}

// Save persists an import run
func (r *GormTapeImportRepository) Save(ctx context.Context, imp *seller.TapeImport) error {
	return r.db.WithContext(ctx).Save(imp).Error
}

// CountByTrade counts import runs for a trade
func (r *GormTapeImportRepository) CountByTrade(ctx context.Context, tradeID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&seller.TapeImport{}).
		Where("trade_id = ?", tradeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
