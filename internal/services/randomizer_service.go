package services

import (
	"math/rand"
	"time"

	"github.com/studydesk/study-service/internal/models"
)

// RandomizerService shuffles question order and option order for test
// presentation. All methods return fresh copies; inputs are never mutated,
// so callers can still rely on canonical order for later lookups.
type RandomizerService struct {
	rng *rand.Rand
}

// NewRandomizerService creates a randomizer with its own time-seeded source.
func NewRandomizerService() *RandomizerService {
	return NewRandomizerServiceWithSource(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewRandomizerServiceWithSource creates a randomizer over an explicit
// source, which makes shuffles reproducible in tests.
func NewRandomizerServiceWithSource(rng *rand.Rand) *RandomizerService {
	return &RandomizerService{rng: rng}
}

// ShuffleQuestions returns a new slice with the same questions in random
// order. The input slice's order is left untouched.
func (r *RandomizerService) ShuffleQuestions(questions []*models.Question) []*models.Question {
	shuffled := make([]*models.Question, len(questions))
	copy(shuffled, questions)
	r.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// ShuffleOptions returns a deep copy of the question with its options
// permuted. The copy shares no option values with the original, so later
// edits to one can never bleed into the other.
func (r *RandomizerService) ShuffleOptions(question *models.Question) *models.Question {
	copied := copyQuestion(question)
	r.rng.Shuffle(len(copied.Options), func(i, j int) {
		copied.Options[i], copied.Options[j] = copied.Options[j], copied.Options[i]
	})
	return copied
}

// ShuffleAll shuffles question order, then independently shuffles each
// question's options. Used whenever a test is taken, never when it is merely
// listed or edited.
func (r *RandomizerService) ShuffleAll(questions []*models.Question) []*models.Question {
	shuffled := r.ShuffleQuestions(questions)
	for i, question := range shuffled {
		shuffled[i] = r.ShuffleOptions(question)
	}
	return shuffled
}

func copyQuestion(question *models.Question) *models.Question {
	copied := *question
	copied.Options = make([]models.QuestionOption, len(question.Options))
	copy(copied.Options, question.Options)
	return &copied
}
