package services

import (
	"math/rand"
	"testing"

	"github.com/studydesk/study-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func seededRandomizer(seed int64) *RandomizerService {
	return NewRandomizerServiceWithSource(rand.New(rand.NewSource(seed)))
}

func questionWithOptions(id uint, correct string, others ...string) *models.Question {
	question := &models.Question{
		ID:            id,
		Text:          "question",
		Type:          models.MultipleChoice,
		CorrectAnswer: correct,
		Options:       []models.QuestionOption{{Text: correct, IsCorrect: true}},
	}
	for _, text := range others {
		question.Options = append(question.Options, models.QuestionOption{Text: text})
	}
	return question
}

func TestRandomizerService_ShuffleQuestions(t *testing.T) {
	randomizer := seededRandomizer(42)

	questions := []*models.Question{
		{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5},
	}

	shuffled := randomizer.ShuffleQuestions(questions)

	t.Run("is a permutation of the input", func(t *testing.T) {
		assert.Len(t, shuffled, len(questions))
		assert.ElementsMatch(t, questions, shuffled)
	})

	t.Run("input order is untouched", func(t *testing.T) {
		for i, question := range questions {
			assert.Equal(t, uint(i+1), question.ID)
		}
	})

	t.Run("same seed gives the same order", func(t *testing.T) {
		first := seededRandomizer(7).ShuffleQuestions(questions)
		second := seededRandomizer(7).ShuffleQuestions(questions)
		assert.Equal(t, first, second)
	})
}

func TestRandomizerService_ShuffleOptions(t *testing.T) {
	randomizer := seededRandomizer(42)

	question := questionWithOptions(1, "4", "3", "5", "6")
	shuffled := randomizer.ShuffleOptions(question)

	t.Run("keeps exactly one correct option", func(t *testing.T) {
		correct := 0
		for _, option := range shuffled.Options {
			if option.IsCorrect {
				correct++
				assert.Equal(t, "4", option.Text)
			}
		}
		assert.Equal(t, 1, correct)
		assert.Equal(t, "4", shuffled.CorrectAnswer)
	})

	t.Run("option set is preserved", func(t *testing.T) {
		assert.ElementsMatch(t, question.Options, shuffled.Options)
	})

	t.Run("copy is independent of the original", func(t *testing.T) {
		shuffled.Options[0].Text = "mutated"
		for _, option := range question.Options {
			assert.NotEqual(t, "mutated", option.Text)
		}
	})
}

func TestRandomizerService_ShuffleAll(t *testing.T) {
	randomizer := seededRandomizer(42)

	questions := []*models.Question{
		questionWithOptions(1, "a", "b", "c"),
		questionWithOptions(2, "x", "y", "z"),
	}

	shuffled := randomizer.ShuffleAll(questions)

	assert.Len(t, shuffled, 2)
	for _, question := range shuffled {
		var original *models.Question
		for _, candidate := range questions {
			if candidate.ID == question.ID {
				original = candidate
			}
		}
		assert.NotNil(t, original)
		assert.NotSame(t, original, question)
		assert.ElementsMatch(t, original.Options, question.Options)
	}
}
