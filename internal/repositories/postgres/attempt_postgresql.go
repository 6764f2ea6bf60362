package postgres

import (
	"context"

	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.Attempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) CreateResponse(ctx context.Context, response *models.Response) error {
	return a.db.WithContext(ctx).Create(response).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByIDWithResponses(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("responses.id ASC")
		}).
		First(&attempt, id).Error; err != nil {
		return nil, err
	}

	// Test name is display-only and comes from a join, not a stored column.
	var name string
	if err := a.db.WithContext(ctx).
		Model(&models.Test{}).
		Where("id = ?", attempt.TestID).
		Pluck("name", &name).Error; err == nil {
		attempt.TestName = name
	}

	return &attempt, nil
}

func (a AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	var attempts []*models.Attempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.Attempt{})
	query = applyFiltersAttempt(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("completed_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.
		Select("attempts.*, tests.name AS test_name").
		Joins("LEFT JOIN tests ON tests.id = attempts.test_id").
		Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a AttemptPostgreSQL) GetByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters) ([]*models.Attempt, error) {
	filters.TestID = &testID
	attempts, _, err := a.List(ctx, filters)
	return attempts, err
}

func applyFiltersAttempt(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.TestID != nil {
		query = query.Where("attempts.test_id = ?", *filters.TestID)
	}
	if filters.Mode != nil {
		query = query.Where("attempts.mode = ?", *filters.Mode)
	}
	if filters.DateFrom != nil {
		query = query.Where("attempts.completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("attempts.completed_at <= ?", *filters.DateTo)
	}
	return query
}
