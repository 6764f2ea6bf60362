package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/studydesk/study-service/internal/events"
	"github.com/studydesk/study-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string {
	return &s
}

func TestScoringService_ScoreQuestion(t *testing.T) {
	service := NewScoringService(NewMockRepository(), testLogger(), nil)

	mc := &models.Question{
		ID:            1,
		Type:          models.MultipleChoice,
		CorrectAnswer: "Paris",
	}
	essay := &models.Question{
		ID:            2,
		Type:          models.Essay,
		CorrectAnswer: "Any thoughtful answer",
	}

	t.Run("exact match is correct", func(t *testing.T) {
		result := service.ScoreQuestion(mc, strPtr("Paris"))
		assert.NotNil(t, result)
		assert.True(t, *result)
	})

	t.Run("comparison is case sensitive", func(t *testing.T) {
		result := service.ScoreQuestion(mc, strPtr("paris"))
		assert.NotNil(t, result)
		assert.False(t, *result)
	})

	t.Run("surrounding whitespace is ignored", func(t *testing.T) {
		result := service.ScoreQuestion(mc, strPtr("  Paris  "))
		assert.True(t, *result)
	})

	t.Run("missing answer is wrong", func(t *testing.T) {
		result := service.ScoreQuestion(mc, nil)
		assert.NotNil(t, result)
		assert.False(t, *result)
	})

	t.Run("empty answer is wrong", func(t *testing.T) {
		result := service.ScoreQuestion(mc, strPtr(""))
		assert.False(t, *result)
	})

	t.Run("essay is never auto-graded", func(t *testing.T) {
		assert.Nil(t, service.ScoreQuestion(essay, strPtr("Any thoughtful answer")))
		assert.Nil(t, service.ScoreQuestion(essay, nil))
	})
}

func TestScoringService_ScoreTest(t *testing.T) {
	service := NewScoringService(NewMockRepository(), testLogger(), nil)
	testID := uint(1)

	t.Run("two of three correct rounds to 66.7", func(t *testing.T) {
		questions := []*models.Question{
			{ID: 1, Type: models.MultipleChoice, CorrectAnswer: "A"},
			{ID: 2, Type: models.MultipleChoice, CorrectAnswer: "B"},
			{ID: 3, Type: models.MultipleChoice, CorrectAnswer: "C"},
		}
		session := NewTestSession(&testID, questions, models.ModeTest)
		session.Start()
		session.SaveResponse(1, "A")
		session.SaveResponse(2, "B")
		// Question 3 is left unanswered; it still scores as incorrect.
		session.FinishTest()

		result := service.ScoreTest(session)

		assert.Equal(t, 2, result.Score)
		assert.Equal(t, 3, result.Total)
		assert.Equal(t, 3, result.TotalQuestions)
		assert.Equal(t, 66.7, result.Percentage)
		assert.Equal(t, 2, result.CorrectQuestions)
		assert.Equal(t, 1, result.IncorrectQuestions)
		assert.Equal(t, 0, result.EssayQuestions)
	})

	t.Run("essays are excluded from the percentage denominator", func(t *testing.T) {
		questions := []*models.Question{
			{ID: 1, Type: models.MultipleChoice, CorrectAnswer: "A"},
			{ID: 2, Type: models.Essay},
		}
		session := NewTestSession(&testID, questions, models.ModeTest)
		session.Start()
		session.SaveResponse(1, "A")
		session.SaveResponse(2, "my essay")
		session.FinishTest()

		result := service.ScoreTest(session)

		assert.Equal(t, 100.0, result.Percentage)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, 2, result.TotalQuestions)
		assert.Equal(t, 1, result.EssayQuestions)
	})

	t.Run("all-essay session has zero percentage", func(t *testing.T) {
		questions := []*models.Question{
			{ID: 1, Type: models.Essay},
			{ID: 2, Type: models.Essay},
		}
		session := NewTestSession(&testID, questions, models.ModeTest)
		session.Start()
		session.FinishTest()

		result := service.ScoreTest(session)

		assert.Equal(t, 0.0, result.Percentage)
		assert.Equal(t, 0, result.Total)
		assert.Equal(t, 2, result.EssayQuestions)
	})

	t.Run("produces one response per question including unanswered", func(t *testing.T) {
		questions := []*models.Question{
			{ID: 1, Type: models.MultipleChoice, CorrectAnswer: "A"},
			{ID: 2, Type: models.MultipleChoice, CorrectAnswer: "B"},
			{ID: 3, Type: models.Essay},
		}
		session := NewTestSession(&testID, questions, models.ModeTest)
		session.Start()
		session.SaveResponse(1, "A")
		session.FlagQuestion(2)
		session.FinishTest()

		result := service.ScoreTest(session)

		assert.Len(t, result.Responses, 3)

		answered := result.Responses[0]
		assert.Equal(t, "A", *answered.UserAnswer)
		assert.True(t, *answered.IsCorrect)

		unanswered := result.Responses[1]
		assert.Nil(t, unanswered.UserAnswer)
		assert.False(t, *unanswered.IsCorrect)
		assert.True(t, unanswered.WasFlagged)

		essay := result.Responses[2]
		assert.Nil(t, essay.IsCorrect)
	})
}

func TestScoringService_SaveAttempt(t *testing.T) {
	repo := NewMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	service := NewScoringService(repo, testLogger(), publisher)

	repo.AttemptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Attempt")).Return(nil)
	repo.AttemptRepo.On("CreateResponse", mock.Anything, mock.AnythingOfType("*models.Response")).Return(nil)

	result := &ScoreResult{
		Score:          2,
		Total:          2,
		TotalQuestions: 2,
		Percentage:     100.0,
		TimeTaken:      45,
		Responses: []models.Response{
			{QuestionID: 1, UserAnswer: strPtr("A")},
			{QuestionID: 2, UserAnswer: strPtr("B")},
		},
	}

	attemptID, err := service.SaveAttempt(context.Background(), 7, result, models.ModeTest)

	assert.NoError(t, err)
	assert.Equal(t, uint(1), attemptID)
	repo.AttemptRepo.AssertNumberOfCalls(t, "CreateResponse", 2)

	published := publisher.GetPublishedEvents()
	assert.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptCompleted, published[0].Type)

	data, ok := published[0].Data.(events.AttemptCompletedEvent)
	assert.True(t, ok)
	assert.Equal(t, uint(7), data.TestID)
	assert.Equal(t, 100.0, data.Percentage)
}

func TestScoringService_SaveMixedAttempt(t *testing.T) {
	sessionFor := func(questions []*models.Question, answers map[uint]string) *TestSession {
		session := NewTestSession(nil, questions, models.ModePractice)
		session.Start()
		for id, answer := range answers {
			session.SaveResponse(id, answer)
		}
		session.FinishTest()
		return session
	}

	t.Run("splits into one attempt per source test", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		service := NewScoringService(repo, testLogger(), publisher)

		var created []models.Attempt
		repo.AttemptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Attempt")).
			Run(func(args mock.Arguments) {
				created = append(created, *args.Get(1).(*models.Attempt))
			}).Return(nil)
		repo.AttemptRepo.On("CreateResponse", mock.Anything, mock.AnythingOfType("*models.Response")).Return(nil)

		testA := uint(10)
		testB := uint(20)
		questions := []*models.Question{
			{ID: 1, TestID: &testA, Type: models.MultipleChoice, CorrectAnswer: "A"},
			{ID: 2, TestID: &testA, Type: models.MultipleChoice, CorrectAnswer: "B"},
			{ID: 3, TestID: &testB, Type: models.MultipleChoice, CorrectAnswer: "C"},
		}
		session := sessionFor(questions, map[uint]string{1: "A", 2: "B", 3: "wrong"})
		result := service.ScoreTest(session)
		result.TimeTaken = 90

		attemptIDs, err := service.SaveMixedAttempt(context.Background(), result, questions, models.ModePractice)

		assert.NoError(t, err)
		assert.Len(t, attemptIDs, 2)
		assert.Len(t, created, 2)

		// First-seen order: test A then test B.
		assert.Equal(t, testA, created[0].TestID)
		assert.Equal(t, 2, created[0].Score)
		assert.Equal(t, 100.0, created[0].Percentage)
		assert.Equal(t, 60, *created[0].TimeTaken)

		assert.Equal(t, testB, created[1].TestID)
		assert.Equal(t, 0, created[1].Score)
		assert.Equal(t, 0.0, created[1].Percentage)
		assert.Equal(t, 30, *created[1].TimeTaken)

		published := publisher.GetPublishedEvents()
		assert.Len(t, published, 1)
		assert.Equal(t, events.EventMixedAttemptCompleted, published[0].Type)
	})

	t.Run("drops responses with no resolvable source test", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		service := NewScoringService(repo, testLogger(), publisher)

		repo.AttemptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Attempt")).Return(nil)
		repo.AttemptRepo.On("CreateResponse", mock.Anything, mock.AnythingOfType("*models.Response")).Return(nil)

		testA := uint(10)
		questions := []*models.Question{
			{ID: 1, TestID: &testA, Type: models.MultipleChoice, CorrectAnswer: "A"},
			{ID: 2, TestID: nil, Type: models.MultipleChoice, CorrectAnswer: "B"},
		}
		session := sessionFor(questions, map[uint]string{1: "A", 2: "B"})
		result := service.ScoreTest(session)

		attemptIDs, err := service.SaveMixedAttempt(context.Background(), result, questions, models.ModePractice)

		assert.NoError(t, err)
		assert.Len(t, attemptIDs, 1)
		repo.AttemptRepo.AssertNumberOfCalls(t, "CreateResponse", 1)

		data := publisher.GetPublishedEvents()[0].Data.(events.MixedAttemptCompletedEvent)
		assert.Equal(t, 1, data.Orphaned)
	})

	t.Run("empty result produces no attempts", func(t *testing.T) {
		repo := NewMockRepository()
		service := NewScoringService(repo, testLogger(), events.NewMockEventPublisher(testLogger()))

		result := &ScoreResult{TimeTaken: 10}
		attemptIDs, err := service.SaveMixedAttempt(context.Background(), result, nil, models.ModePractice)

		assert.NoError(t, err)
		assert.Empty(t, attemptIDs)
	})
}

func TestScoringService_GetAttemptDetails(t *testing.T) {
	repo := NewMockRepository()
	service := NewScoringService(repo, testLogger(), nil)

	timeTaken := 120
	attempt := &models.Attempt{
		ID:             3,
		TestID:         1,
		Score:          8,
		TotalQuestions: 10,
		Percentage:     80.0,
		TimeTaken:      &timeTaken,
		Mode:           models.ModeTest,
		CompletedAt:    time.Now(),
	}
	repo.AttemptRepo.On("GetByIDWithResponses", mock.Anything, uint(3)).Return(attempt, nil)

	got, err := service.GetAttemptDetails(context.Background(), 3)

	assert.NoError(t, err)
	assert.Equal(t, attempt, got)
}
