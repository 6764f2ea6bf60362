package postgres

import (
	"context"
	"errors"

	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

func (t TestPostgreSQL) Create(ctx context.Context, test *models.Test) error {
	return t.db.WithContext(ctx).Create(test).Error
}

func (t TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t TestPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.id ASC")
		}).
		First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t TestPostgreSQL) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	var tests []*models.Test
	var total int64

	query := t.db.WithContext(ctx).Model(&models.Test{})
	if filters.GroupName != nil {
		query = query.Where("group_name = ?", *filters.GroupName)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSortTest(query, filters)

	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

func (t TestPostgreSQL) Update(ctx context.Context, test *models.Test) error {
	return t.db.WithContext(ctx).Save(test).Error
}

func (t TestPostgreSQL) Delete(ctx context.Context, id uint) error {
	// Questions, options, attempts and responses go with the test.
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&models.Question{}).Where("test_id = ?", id).
			Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).
				Delete(&models.QuestionOption{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("test_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		var attemptIDs []uint
		if err := tx.Model(&models.Attempt{}).Where("test_id = ?", id).
			Pluck("id", &attemptIDs).Error; err != nil {
			return err
		}
		if len(attemptIDs) > 0 {
			if err := tx.Where("attempt_id IN ?", attemptIDs).
				Delete(&models.Response{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("test_id = ?", id).Delete(&models.Attempt{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Test{}, id).Error
	})
}

func (t TestPostgreSQL) GetQuestionCount(ctx context.Context, id uint) (int, error) {
	var count int64
	if err := t.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("test_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (t TestPostgreSQL) GetStatistics(ctx context.Context, id uint) (*repositories.TestStatistics, error) {
	var stats repositories.TestStatistics
	err := t.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Select("COUNT(*) AS attempt_count, COALESCE(AVG(percentage), 0) AS avg_score, COALESCE(MAX(percentage), 0) AS best_score, MAX(completed_at) AS last_attempt").
		Where("test_id = ?", id).
		Scan(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &repositories.TestStatistics{}, nil
		}
		return nil, err
	}
	return &stats, nil
}

func applyPaginationAndSortTest(query *gorm.DB, filters repositories.TestFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "name", "group_name", "created_at":
	default:
		sortBy = "created_at"
	}

	sortOrder := filters.SortOrder
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	return query
}
