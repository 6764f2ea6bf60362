package validator

import (
	"fmt"

	"github.com/studydesk/study-service/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Text == "" {
		return fmt.Errorf("question text is required")
	}

	switch question.Type {
	case models.MultipleChoice:
		return v.validateMultipleChoice(question)
	case models.Essay:
		return v.validateEssay(question)
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

// Warnings reports non-fatal problems with a question, in the order the
// export validation screen lists them. An imported question with no marked
// correct answer is usable but flagged here.
func (v *QuestionValidator) Warnings(question *models.Question, position int) []string {
	var warnings []string

	switch question.Type {
	case models.MultipleChoice:
		if question.CorrectAnswer == "" {
			warnings = append(warnings, fmt.Sprintf("Q%d has no correct answer set.", position))
		}
		if len(question.Options) == 0 {
			warnings = append(warnings, fmt.Sprintf("Q%d has no answer options.", position))
		}
	case models.Essay:
		if question.CorrectAnswer == "" {
			warnings = append(warnings, fmt.Sprintf("Q%d (essay) has no expected answer set.", position))
		}
	}

	return warnings
}

func (v *QuestionValidator) validateMultipleChoice(question *models.Question) error {
	if len(question.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}

	correct := 0
	for _, option := range question.Options {
		if option.Text == "" {
			return fmt.Errorf("option text cannot be empty")
		}
		if option.IsCorrect {
			correct++
			if question.CorrectAnswer != "" && option.Text != question.CorrectAnswer {
				return fmt.Errorf("correct option text must match the question's correct answer")
			}
		}
	}

	if correct > 1 {
		return fmt.Errorf("must have at most 1 correct option")
	}

	return nil
}

func (v *QuestionValidator) validateEssay(question *models.Question) error {
	if len(question.Options) != 0 {
		return fmt.Errorf("essay questions cannot have options")
	}
	return nil
}
