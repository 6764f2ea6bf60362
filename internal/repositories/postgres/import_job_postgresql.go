package postgres

import (
	"context"

	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
	"gorm.io/gorm"
)

type ImportJobPostgreSQL struct {
	db *gorm.DB
}

func NewImportJobPostgreSQL(db *gorm.DB) repositories.ImportJobRepository {
	return &ImportJobPostgreSQL{db: db}
}

func (i ImportJobPostgreSQL) Create(ctx context.Context, job *models.ImportJob) error {
	return i.db.WithContext(ctx).Create(job).Error
}

func (i ImportJobPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := i.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}
