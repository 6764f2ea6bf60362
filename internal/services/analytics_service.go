package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/studydesk/study-service/internal/cache"
	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
)

// AnalyticsService aggregates attempt history into progress views. Results
// are cached; every completed attempt invalidates the whole analytics
// namespace so views never serve stale aggregates.
type AnalyticsService interface {
	GetScoresOverTime(ctx context.Context, testID *uint, mode models.AttemptMode) ([]repositories.ScorePoint, error)
	GetAverageScoresByTest(ctx context.Context, mode models.AttemptMode) ([]repositories.TestAverage, error)
	GetAttemptFrequency(ctx context.Context, days int) ([]repositories.AttemptFrequency, error)
	GetCategoryPerformance(ctx context.Context, testID *uint) ([]repositories.CategoryPerformance, error)
	GetWeakTopics(ctx context.Context, testID *uint) (*WeakTopicReport, error)
	InvalidateCache(ctx context.Context)
}

// WeakTopicReport buckets categories by mastery level.
type WeakTopicReport struct {
	Weak     []repositories.CategoryPerformance `json:"weak"`
	Moderate []repositories.CategoryPerformance `json:"moderate"`
	Strong   []repositories.CategoryPerformance `json:"strong"`
}

// Mastery thresholds: below 70% is weak, below 85% moderate.
const (
	weakTopicThreshold     = 70.0
	moderateTopicThreshold = 85.0
)

const analyticsCacheTTL = 10 * time.Minute

type analyticsService struct {
	repo   repositories.Repository
	logger *slog.Logger
	cache  cache.CacheService
}

// NewAnalyticsService creates the analytics service. cacheService may be nil,
// in which case every call goes straight to the database.
func NewAnalyticsService(repo repositories.Repository, logger *slog.Logger, cacheService cache.CacheService) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		logger: logger,
		cache:  cacheService,
	}
}

func (s *analyticsService) GetScoresOverTime(ctx context.Context, testID *uint, mode models.AttemptMode) ([]repositories.ScorePoint, error) {
	key := fmt.Sprintf("analytics:scores:%s:%s", uintPtrKey(testID), mode)

	var cached []repositories.ScorePoint
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	points, err := s.repo.Analytics().GetScoresOverTime(ctx, testID, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores over time: %w", err)
	}

	s.cacheSet(ctx, key, points)
	return points, nil
}

func (s *analyticsService) GetAverageScoresByTest(ctx context.Context, mode models.AttemptMode) ([]repositories.TestAverage, error) {
	key := fmt.Sprintf("analytics:averages:%s", mode)

	var cached []repositories.TestAverage
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	averages, err := s.repo.Analytics().GetAverageScoresByTest(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to get average scores: %w", err)
	}

	s.cacheSet(ctx, key, averages)
	return averages, nil
}

func (s *analyticsService) GetAttemptFrequency(ctx context.Context, days int) ([]repositories.AttemptFrequency, error) {
	if days <= 0 {
		days = 30
	}

	key := fmt.Sprintf("analytics:frequency:%d", days)

	var cached []repositories.AttemptFrequency
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	frequency, err := s.repo.Analytics().GetAttemptFrequency(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt frequency: %w", err)
	}

	s.cacheSet(ctx, key, frequency)
	return frequency, nil
}

func (s *analyticsService) GetCategoryPerformance(ctx context.Context, testID *uint) ([]repositories.CategoryPerformance, error) {
	key := fmt.Sprintf("analytics:categories:%s", uintPtrKey(testID))

	var cached []repositories.CategoryPerformance
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	performance, err := s.repo.Analytics().GetCategoryPerformance(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category performance: %w", err)
	}

	s.cacheSet(ctx, key, performance)
	return performance, nil
}

// GetWeakTopics buckets category performance into weak, moderate and strong
// bands so study time can be pointed at the weak ones first.
func (s *analyticsService) GetWeakTopics(ctx context.Context, testID *uint) (*WeakTopicReport, error) {
	performance, err := s.GetCategoryPerformance(ctx, testID)
	if err != nil {
		return nil, err
	}

	report := &WeakTopicReport{}
	for _, category := range performance {
		switch {
		case category.Percentage < weakTopicThreshold:
			report.Weak = append(report.Weak, category)
		case category.Percentage < moderateTopicThreshold:
			report.Moderate = append(report.Moderate, category)
		default:
			report.Strong = append(report.Strong, category)
		}
	}

	return report, nil
}

// InvalidateCache drops every cached analytics view. Called after each
// completed attempt and after imports.
func (s *analyticsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "analytics:*"); err != nil {
		s.logger.Warn("Failed to invalidate analytics cache", "error", err)
	}
}

func (s *analyticsService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Analytics cache read failed", "key", key, "error", err)
	}
	return false
}

func (s *analyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, analyticsCacheTTL); err != nil {
		s.logger.Warn("Analytics cache write failed", "key", key, "error", err)
	}
}

func uintPtrKey(id *uint) string {
	if id == nil {
		return "all"
	}
	return fmt.Sprintf("%d", *id)
}
