package postgres

import (
	"context"

	"github.com/studydesk/study-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the gorm-backed implementation of the aggregate storage
// interface.
type Repository struct {
	db        *gorm.DB
	test      repositories.TestRepository
	question  repositories.QuestionRepository
	attempt   repositories.AttemptRepository
	analytics repositories.AnalyticsRepository
	importJob repositories.ImportJobRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:        db,
		test:      NewTestPostgreSQL(db),
		question:  NewQuestionPostgreSQL(db),
		attempt:   NewAttemptPostgreSQL(db),
		analytics: NewAnalyticsPostgreSQL(db),
		importJob: NewImportJobPostgreSQL(db),
	}
}

func (r *Repository) Test() repositories.TestRepository           { return r.test }
func (r *Repository) Question() repositories.QuestionRepository   { return r.question }
func (r *Repository) Attempt() repositories.AttemptRepository     { return r.attempt }
func (r *Repository) Analytics() repositories.AnalyticsRepository { return r.analytics }
func (r *Repository) ImportJob() repositories.ImportJobRepository { return r.importJob }

// WithTransaction runs fn against a repository bound to a single transaction.
// Returning an error from fn rolls the transaction back.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
