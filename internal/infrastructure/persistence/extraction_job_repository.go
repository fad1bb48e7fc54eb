package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/etl"
	"github.com/npl/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormJobRepository implements JobRepository using GORM
type GormJobRepository struct {
	db *gorm.DB
}

var _ etl.JobRepository = (*GormJobRepository)(nil)

// NewGormJobRepository creates a new GormJobRepository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// FindByID finds an extraction job by ID, passes included
func (r *GormJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*etl.ExtractionJob, error) {
	var job etl.ExtractionJob
	if err := r.db.WithContext(ctx).
		Preload("Passes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindByHub finds extraction jobs run against an asset
func (r *GormJobRepository) FindByHub(ctx context.Context, hubID uuid.UUID, filter shared.Filter) ([]etl.ExtractionJob, error) {
	var jobs []etl.ExtractionJob
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&etl.ExtractionJob{}).Where("hub_id = ?", hubID),
		filter,
	)

	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindByDocument finds all jobs run against a document, newest first
func (r *GormJobRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]etl.ExtractionJob, error) {
	var jobs []etl.ExtractionJob
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindByStatus finds jobs in the given status
func (r *GormJobRepository) FindByStatus(ctx context.Context, status etl.JobStatus, filter shared.Filter) ([]etl.ExtractionJob, error) {
	var jobs []etl.ExtractionJob
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&etl.ExtractionJob{}).Where("status = ?", status),
		filter,
	)

	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindActiveByDocument finds the non-terminal job for a document, if any
func (r *GormJobRepository) FindActiveByDocument(ctx context.Context, documentID uuid.UUID) (*etl.ExtractionJob, error) {
	var job etl.ExtractionJob
	if err := r.db.WithContext(ctx).
		Preload("Passes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("document_id = ? AND status NOT IN ?", documentID,
			[]etl.JobStatus{etl.JobStatusCompleted, etl.JobStatusFailed}).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// Save persists a job and its passes
func (r *GormJobRepository) Save(ctx context.Context, job *etl.ExtractionJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// Count counts jobs matching the filter
func (r *GormJobRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&etl.ExtractionJob{})

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "hub_id":
			query = query.Where("hub_id = ?", value)
		}
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts jobs in the given status
func (r *GormJobRepository) CountByStatus(ctx context.Context, status etl.JobStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&etl.ExtractionJob{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormJobRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "model":
			query = query.Where("model = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if filter.OrderBy == "" {
		query = query.Order("created_at DESC")
	} else {
		orderBy := ValidateSortField(filter.OrderBy, JobSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	}

	return query
}
