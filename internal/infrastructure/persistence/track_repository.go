package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/am"
	"github.com/npl/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTrackRepository implements TrackRepository using GORM
type GormTrackRepository struct {
	db *gorm.DB
}

var _ am.TrackRepository = (*GormTrackRepository)(nil)

// NewGormTrackRepository creates a new GormTrackRepository
func NewGormTrackRepository(db *gorm.DB) *GormTrackRepository {
	return &GormTrackRepository{db: db}
}

// FindByID finds a track by ID, milestones included
func (r *GormTrackRepository) FindByID(ctx context.Context, id uuid.UUID) (*am.AMTrack, error) {
	var track am.AMTrack
	if err := r.db.WithContext(ctx).
		Preload("Milestones").
		First(&track, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &track, nil
}

// FindByHub finds all tracks opened against an asset
func (r *GormTrackRepository) FindByHub(ctx context.Context, hubID uuid.UUID) ([]am.AMTrack, error) {
	var tracks []am.AMTrack
	if err := r.db.WithContext(ctx).
		Preload("Milestones").
		Where("hub_id = ?", hubID).
		Order("opened_at DESC").
		Find(&tracks).Error; err != nil {
		return nil, err
	}
	return tracks, nil
}

// FindOpenByHubAndType finds the non-terminal track of a type on an asset, if any
func (r *GormTrackRepository) FindOpenByHubAndType(ctx context.Context, hubID uuid.UUID, trackType am.TrackType) (*am.AMTrack, error) {
	var track am.AMTrack
	if err := r.db.WithContext(ctx).
		Preload("Milestones").
		Where("hub_id = ? AND type = ? AND status NOT IN ?", hubID, trackType,
			[]am.TrackStatus{am.TrackStatusResolved, am.TrackStatusCancelled}).
		First(&track).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &track, nil
}

// FindAll finds all tracks matching the filter
func (r *GormTrackRepository) FindAll(ctx context.Context, filter shared.Filter) ([]am.AMTrack, error) {
	var tracks []am.AMTrack
	query := r.applyFilter(r.db.WithContext(ctx).Model(&am.AMTrack{}), filter)

	if err := query.Find(&tracks).Error; err != nil {
		return nil, err
	}
	return tracks, nil
}

// FindByStatus finds tracks in the given status
func (r *GormTrackRepository) FindByStatus(ctx context.Context, status am.TrackStatus, filter shared.Filter) ([]am.AMTrack, error) {
	var tracks []am.AMTrack
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&am.AMTrack{}).Where("status = ?", status),
		filter,
	)

	if err := query.Find(&tracks).Error; err != nil {
		return nil, err
	}
	return tracks, nil
}

// Save persists a track and its milestones
func (r *GormTrackRepository) Save(ctx context.Context, track *am.AMTrack) error {
	return r.db.WithContext(ctx).Save(track).Error
}

// Count counts tracks matching the filter
func (r *GormTrackRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&am.AMTrack{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByTypeAndStatus counts tracks of a type in the given status
func (r *GormTrackRepository) CountByTypeAndStatus(ctx context.Context, trackType am.TrackType, status am.TrackStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&am.AMTrack{}).
		Where("type = ? AND status = ?", trackType, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTrackRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if filter.OrderBy == "" {
		query = query.Order("opened_at DESC")
	} else {
		orderBy := ValidateSortField(filter.OrderBy, TrackSortFields, "opened_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	}

	return query
}

func (r *GormTrackRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "hub_id":
			query = query.Where("hub_id = ?", value)
		}
	}

	return query
}

// GormDetailRepository implements DetailRepository using GORM.
// Each detail table holds at most one row per track.
type GormDetailRepository struct {
	db *gorm.DB
}

var _ am.DetailRepository = (*GormDetailRepository)(nil)

// NewGormDetailRepository creates a new GormDetailRepository
func NewGormDetailRepository(db *gorm.DB) *GormDetailRepository {
	return &GormDetailRepository{db: db}
}

// FindREOByTrack finds the REO detail record for a track
func (r *GormDetailRepository) FindREOByTrack(ctx context.Context, trackID uuid.UUID) (*am.REOProperty, error) {
	var reo am.REOProperty
	if err := r.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		First(&reo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reo, nil
}

// SaveREO persists an REO detail record
func (r *GormDetailRepository) SaveREO(ctx context.Context, reo *am.REOProperty) error {
	return r.db.WithContext(ctx).Save(reo).Error
}

// FindForeclosureByTrack finds the foreclosure detail record for a track
func (r *GormDetailRepository) FindForeclosureByTrack(ctx context.Context, trackID uuid.UUID) (*am.ForeclosureCase, error) {
	var fc am.ForeclosureCase
	if err := r.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		First(&fc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &fc, nil
}

// SaveForeclosure persists a foreclosure detail record
func (r *GormDetailRepository) SaveForeclosure(ctx context.Context, fc *am.ForeclosureCase) error {
	return r.db.WithContext(ctx).Save(fc).Error
}

// FindModificationByTrack finds the modification detail record for a track
func (r *GormDetailRepository) FindModificationByTrack(ctx context.Context, trackID uuid.UUID) (*am.LoanModification, error) {
	var mod am.LoanModification
	if err := r.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		First(&mod).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &mod, nil
}

// SaveModification persists a modification detail record
func (r *GormDetailRepository) SaveModification(ctx context.Context, mod *am.LoanModification) error {
	return r.db.WithContext(ctx).Save(mod).Error
}

// FindShortSaleByTrack finds the short sale detail record for a track
func (r *GormDetailRepository) FindShortSaleByTrack(ctx context.Context, trackID uuid.UUID) (*am.ShortSale, error) {
	var ss am.ShortSale
	if err := r.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		First(&ss).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ss, nil
}

// SaveShortSale persists a short sale detail record
func (r *GormDetailRepository) SaveShortSale(ctx context.Context, ss *am.ShortSale) error {
	return r.db.WithContext(ctx).Save(ss).Error
}

// FindNoteSaleByTrack finds the note sale detail record for a track
func (r *GormDetailRepository) FindNoteSaleByTrack(ctx context.Context, trackID uuid.UUID) (*am.NoteSale, error) {
	var ns am.NoteSale
	if err := r.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		First(&ns).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ns, nil
}

// SaveNoteSale persists a note sale detail record
func (r *GormDetailRepository) SaveNoteSale(ctx context.Context, ns *am.NoteSale) error {
	return r.db.WithContext(ctx).Save(ns).Error
}
