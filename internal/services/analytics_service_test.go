package services

import (
	"context"
	"testing"

	"github.com/studydesk/study-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAnalyticsService_GetWeakTopics(t *testing.T) {
	repo := NewMockRepository()
	service := NewAnalyticsService(repo, testLogger(), nil)

	performance := []repositories.CategoryPerformance{
		{Category: "Biology", Percentage: 45.0},
		{Category: "Chemistry", Percentage: 69.9},
		{Category: "Physics", Percentage: 70.0},
		{Category: "Math", Percentage: 84.9},
		{Category: "History", Percentage: 85.0},
		{Category: "Geography", Percentage: 100.0},
	}
	repo.AnalyticsRepo.On("GetCategoryPerformance", mock.Anything, (*uint)(nil)).Return(performance, nil)

	report, err := service.GetWeakTopics(context.Background(), nil)

	assert.NoError(t, err)
	assert.Len(t, report.Weak, 2)
	assert.Len(t, report.Moderate, 2)
	assert.Len(t, report.Strong, 2)
	assert.Equal(t, "Biology", report.Weak[0].Category)
	assert.Equal(t, "Physics", report.Moderate[0].Category)
	assert.Equal(t, "History", report.Strong[0].Category)
}

func TestAnalyticsService_WorksWithoutCache(t *testing.T) {
	repo := NewMockRepository()
	service := NewAnalyticsService(repo, testLogger(), nil)

	repo.AnalyticsRepo.On("GetAttemptFrequency", mock.Anything, 30).
		Return([]repositories.AttemptFrequency{{Count: 3}}, nil)

	// days <= 0 falls back to the 30-day default.
	frequency, err := service.GetAttemptFrequency(context.Background(), 0)

	assert.NoError(t, err)
	assert.Len(t, frequency, 1)

	// No cache configured; invalidation is a no-op rather than a panic.
	service.InvalidateCache(context.Background())
}
