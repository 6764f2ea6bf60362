package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
	"gorm.io/gorm"
)

type AnalyticsPostgreSQL struct {
	db *gorm.DB
}

func NewAnalyticsPostgreSQL(db *gorm.DB) repositories.AnalyticsRepository {
	return &AnalyticsPostgreSQL{db: db}
}

func (a AnalyticsPostgreSQL) GetScoresOverTime(ctx context.Context, testID *uint, mode models.AttemptMode) ([]repositories.ScorePoint, error) {
	var points []repositories.ScorePoint

	query := a.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Select("attempts.id AS attempt_id, attempts.percentage, attempts.completed_at, tests.name AS test_name").
		Joins("LEFT JOIN tests ON tests.id = attempts.test_id").
		Where("attempts.mode = ?", mode).
		Order("attempts.completed_at ASC")

	if testID != nil {
		query = query.Where("attempts.test_id = ?", *testID)
	}

	if err := query.Scan(&points).Error; err != nil {
		return nil, fmt.Errorf("failed to load scores over time: %w", err)
	}
	return points, nil
}

func (a AnalyticsPostgreSQL) GetAverageScoresByTest(ctx context.Context, mode models.AttemptMode) ([]repositories.TestAverage, error) {
	var averages []repositories.TestAverage

	err := a.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Select("attempts.test_id, tests.name AS test_name, AVG(attempts.percentage) AS avg_score, MAX(attempts.percentage) AS best_score, COUNT(*) AS attempt_count").
		Joins("JOIN tests ON tests.id = attempts.test_id").
		Where("attempts.mode = ?", mode).
		Group("attempts.test_id, tests.name").
		Order("tests.name ASC").
		Scan(&averages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load average scores by test: %w", err)
	}
	return averages, nil
}

func (a AnalyticsPostgreSQL) GetAttemptFrequency(ctx context.Context, days int) ([]repositories.AttemptFrequency, error) {
	var frequency []repositories.AttemptFrequency

	since := time.Now().AddDate(0, 0, -days)
	err := a.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Select("DATE_TRUNC('day', completed_at) AS day, COUNT(*) AS count").
		Where("completed_at >= ?", since).
		Group("day").
		Order("day ASC").
		Scan(&frequency).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt frequency: %w", err)
	}
	return frequency, nil
}

func (a AnalyticsPostgreSQL) GetCategoryPerformance(ctx context.Context, testID *uint) ([]repositories.CategoryPerformance, error) {
	var performance []repositories.CategoryPerformance

	// Essay responses carry a NULL is_correct and stay out of the tallies.
	query := a.db.WithContext(ctx).
		Table("responses").
		Select("COALESCE(NULLIF(questions.category, ''), 'Uncategorized') AS category, " +
			"COUNT(*) AS total, " +
			"SUM(CASE WHEN responses.is_correct THEN 1 ELSE 0 END) AS correct, " +
			"ROUND(100.0 * SUM(CASE WHEN responses.is_correct THEN 1 ELSE 0 END) / COUNT(*), 1) AS percentage").
		Joins("JOIN questions ON questions.id = responses.question_id").
		Where("responses.is_correct IS NOT NULL").
		Group("category").
		Order("category ASC")

	if testID != nil {
		query = query.Where("questions.test_id = ?", *testID)
	}

	if err := query.Scan(&performance).Error; err != nil {
		return nil, fmt.Errorf("failed to load category performance: %w", err)
	}
	return performance, nil
}

func (a AnalyticsPostgreSQL) GetMissedQuestions(ctx context.Context, testID *uint) ([]repositories.MissedQuestion, error) {
	var missed []repositories.MissedQuestion

	query := a.db.WithContext(ctx).
		Table("responses").
		Select("questions.id AS question_id, questions.test_id, tests.name AS test_name, "+
			"questions.text, questions.category, questions.correct_answer, "+
			"COUNT(*) AS times_attempted, "+
			"SUM(CASE WHEN responses.is_correct THEN 0 ELSE 1 END) AS times_missed, "+
			"ROUND(1.0 * SUM(CASE WHEN responses.is_correct THEN 0 ELSE 1 END) / COUNT(*), 2) AS miss_rate").
		Joins("JOIN questions ON questions.id = responses.question_id").
		Joins("JOIN tests ON tests.id = questions.test_id").
		Where("responses.is_correct IS NOT NULL").
		Group("questions.id, questions.test_id, tests.name, questions.text, questions.category, questions.correct_answer").
		Having("SUM(CASE WHEN responses.is_correct THEN 0 ELSE 1 END) > 0").
		Order("times_missed DESC")

	if testID != nil {
		query = query.Where("questions.test_id = ?", *testID)
	}

	if err := query.Scan(&missed).Error; err != nil {
		return nil, fmt.Errorf("failed to load missed questions: %w", err)
	}
	return missed, nil
}
