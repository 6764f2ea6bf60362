package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/studydesk/study-service/internal/events"
	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
	"github.com/studydesk/study-service/internal/validator"
	"gorm.io/datatypes"
)

// ImportService loads tests from plain-text and JSON files. The text parser
// is deliberately tolerant: study documents found in the wild are routinely
// imperfect, so individual malformed blocks are skipped and recorded rather
// than failing the whole import.
type ImportService interface {
	Import(ctx context.Context, filePath string, testName string) (uint, error)
	ImportFromText(ctx context.Context, filePath string, testName string) (uint, error)
	ImportFromJSON(ctx context.Context, filePath string) (uint, error)
	GetImportJob(ctx context.Context, jobID uint) (*models.ImportJob, error)
}

type importService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewImportService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) ImportService {
	return &importService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

// Text format patterns. Question blocks start at a line beginning with
// digits then '.' or ')' and whitespace; options at a line beginning with a
// single letter a-d then '.' or ')'.
var (
	blockStartPattern    = regexp.MustCompile(`(?m)^\d+\s*[.)]\s`)
	leadingNumberPattern = regexp.MustCompile(`^\d+\s*[.)]\s*`)
	optionPattern        = regexp.MustCompile(`(?m)^([a-dA-D])\s*[.)][ \t]*(.*)$`)

	// Trailing correct-answer markers. Source documents spell
	// "established" inconsistently, so that branch matches any suffix
	// after the stem.
	correctMarkerPattern     = regexp.MustCompile(`(?i)\s*--\s*correct\s*$`)
	establishedMarkerPattern = regexp.MustCompile(`(?i)\s*--\s*already\s+establish\w*\s*$`)

	// A checkbox glyph run followed by a letter inside an option's text is
	// another option's marker that bled over from a garbled source.
	garbledOptionPattern = regexp.MustCompile(`\s+☑+\s+[A-Za-z]`)
)

// Import dispatches on the file extension.
func (s *importService) Import(ctx context.Context, filePath string, testName string) (uint, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".txt":
		return s.ImportFromText(ctx, filePath, testName)
	case ".json":
		return s.ImportFromJSON(ctx, filePath)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedExtension, filepath.Ext(filePath))
	}
}

// ===== TEXT IMPORT =====

func (s *importService) ImportFromText(ctx context.Context, filePath string, testName string) (uint, error) {
	content, err := readImportFile(filePath)
	if err != nil {
		return 0, err
	}

	name := testName
	if name == "" {
		name = stemOf(filePath)
	}

	questions, skipped := s.parseTextQuestions(content)
	if len(questions) == 0 {
		s.recordImportJob(ctx, nil, filePath, models.ImportFailed, 0, skipped)
		return 0, fmt.Errorf("%w: %s", ErrNoQuestionsFound, filePath)
	}

	test := &models.Test{
		Name:        name,
		Description: fmt.Sprintf("Imported from %s", filepath.Base(filePath)),
	}

	if err := s.persistImportedTest(ctx, test, questions); err != nil {
		return 0, err
	}

	s.recordImportJob(ctx, &test.ID, filePath, models.ImportCompleted, len(questions), skipped)

	for i, question := range questions {
		for _, warning := range s.validator.Question().Warnings(question, i+1) {
			s.logger.Warn("Imported question needs attention", "test_id", test.ID, "warning", warning)
		}
	}

	s.publishEvent(ctx, events.NewStudyEvent(events.EventTestImported, events.TestImportedEvent{
		TestID:        test.ID,
		TestName:      test.Name,
		Filename:      filepath.Base(filePath),
		QuestionCount: len(questions),
		SkippedBlocks: len(skipped),
	}))

	s.logger.Info("Text import completed",
		"test_id", test.ID,
		"questions", len(questions),
		"skipped_blocks", len(skipped),
		"file", filepath.Base(filePath))

	return test.ID, nil
}

// parseTextQuestions splits a document into question blocks and parses each
// one. Blocks that cannot be recovered are returned as skip notes.
func (s *importService) parseTextQuestions(content string) ([]*models.Question, []models.ImportSkipNote) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, nil
	}

	var blocks []string
	starts := blockStartPattern.FindAllStringIndex(trimmed, -1)
	if len(starts) == 0 {
		blocks = []string{trimmed}
	} else {
		if starts[0][0] > 0 {
			blocks = append(blocks, trimmed[:starts[0][0]])
		}
		for i, start := range starts {
			end := len(trimmed)
			if i+1 < len(starts) {
				end = starts[i+1][0]
			}
			blocks = append(blocks, trimmed[start[0]:end])
		}
	}

	var questions []*models.Question
	var skipped []models.ImportSkipNote

	blockNum := 0
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		blockNum++

		question, reason := parseTextQuestionBlock(block)
		if question == nil {
			skipped = append(skipped, models.ImportSkipNote{Block: blockNum, Reason: reason})
			s.logger.Debug("Skipping malformed question block", "block", blockNum, "reason", reason)
			continue
		}
		questions = append(questions, question)
	}

	return questions, skipped
}

// parseTextQuestionBlock recovers one question from a block, or returns nil
// with the reason the block was unusable.
func parseTextQuestionBlock(block string) (*models.Question, string) {
	block = leadingNumberPattern.ReplaceAllString(block, "")

	optionMatches := optionPattern.FindAllStringSubmatchIndex(block, -1)
	if len(optionMatches) == 0 {
		return nil, "no option markers"
	}

	questionText := strings.TrimSpace(block[:optionMatches[0][0]])
	if questionText == "" {
		return nil, "no question text"
	}

	var options []models.QuestionOption
	correctAnswer := ""

	for i, match := range optionMatches {
		// Option text runs from just after the letter marker to the start
		// of the next marker, or the end of the block for the last one.
		start := match[4]
		end := len(block)
		if i+1 < len(optionMatches) {
			end = optionMatches[i+1][0]
		}

		// Join wrapped lines and collapse whitespace runs so option text is
		// always a single line.
		rawText := strings.Join(strings.Fields(block[start:end]), " ")

		isCorrect, cleanText := extractCorrectMarker(rawText)

		// Truncate at a bled-over option marker from a garbled source.
		if loc := garbledOptionPattern.FindStringIndex(cleanText); loc != nil {
			cleanText = strings.TrimSpace(cleanText[:loc[0]])
		}

		if cleanText == "" {
			continue
		}

		options = append(options, models.QuestionOption{
			Text:      cleanText,
			IsCorrect: isCorrect,
		})
		if isCorrect {
			correctAnswer = cleanText
		}
	}

	if len(options) == 0 {
		return nil, "no usable options"
	}

	// Duplicate correct markers happen in malformed sources. Resolve by
	// keeping only the last marked option.
	var correctIdx []int
	for i, option := range options {
		if option.IsCorrect {
			correctIdx = append(correctIdx, i)
		}
	}
	if len(correctIdx) > 1 {
		for i := range options {
			options[i].IsCorrect = false
		}
		last := correctIdx[len(correctIdx)-1]
		options[last].IsCorrect = true
		correctAnswer = options[last].Text
	}

	return &models.Question{
		Text:          questionText,
		Type:          models.MultipleChoice,
		CorrectAnswer: correctAnswer,
		Options:       options,
	}, ""
}

// extractCorrectMarker strips a trailing correct-answer marker off an
// option's text, reporting whether one was present.
func extractCorrectMarker(text string) (bool, string) {
	if loc := correctMarkerPattern.FindStringIndex(text); loc != nil {
		return true, strings.TrimSpace(text[:loc[0]])
	}
	if loc := establishedMarkerPattern.FindStringIndex(text); loc != nil {
		return true, strings.TrimSpace(text[:loc[0]])
	}
	return false, strings.TrimSpace(text)
}

// ===== JSON IMPORT =====

type jsonTestFile struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Questions   []jsonQuestion `json:"questions"`
}

type jsonQuestion struct {
	Text           string       `json:"text"`
	Type           string       `json:"type"`
	Category       string       `json:"category"`
	Options        []jsonOption `json:"options"`
	ExpectedAnswer string       `json:"expected_answer"`
}

type jsonOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

func (s *importService) ImportFromJSON(ctx context.Context, filePath string) (uint, error) {
	content, err := readImportFile(filePath)
	if err != nil {
		return 0, err
	}

	var data jsonTestFile
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidImportFormat, err)
	}
	if len(data.Questions) == 0 {
		return 0, fmt.Errorf("%w: test must contain at least one question", ErrInvalidImportFormat)
	}

	name := data.Name
	if name == "" {
		name = stemOf(filePath)
	}

	questions := make([]*models.Question, 0, len(data.Questions))
	for i, qd := range data.Questions {
		question, err := parseJSONQuestion(qd)
		if err != nil {
			return 0, fmt.Errorf("%w: question %d: %v", ErrInvalidImportFormat, i+1, err)
		}
		questions = append(questions, question)
	}

	test := &models.Test{
		Name:        name,
		Description: data.Description,
	}

	if err := s.persistImportedTest(ctx, test, questions); err != nil {
		return 0, err
	}

	s.publishEvent(ctx, events.NewStudyEvent(events.EventTestImported, events.TestImportedEvent{
		TestID:        test.ID,
		TestName:      test.Name,
		Filename:      filepath.Base(filePath),
		QuestionCount: len(questions),
	}))

	s.logger.Info("JSON import completed",
		"test_id", test.ID,
		"questions", len(questions),
		"file", filepath.Base(filePath))

	return test.ID, nil
}

func parseJSONQuestion(qd jsonQuestion) (*models.Question, error) {
	text := strings.TrimSpace(qd.Text)
	if text == "" {
		return nil, errors.New("question text is required")
	}

	qType := models.QuestionType(qd.Type)
	if qd.Type == "" {
		qType = models.MultipleChoice
	}

	question := &models.Question{
		Text:     text,
		Type:     qType,
		Category: qd.Category,
	}

	switch qType {
	case models.MultipleChoice:
		for _, od := range qd.Options {
			option := models.QuestionOption{
				Text:      strings.TrimSpace(od.Text),
				IsCorrect: od.Correct,
			}
			question.Options = append(question.Options, option)
			if option.IsCorrect {
				question.CorrectAnswer = option.Text
			}
		}
	case models.Essay:
		question.CorrectAnswer = strings.TrimSpace(qd.ExpectedAnswer)
	default:
		return nil, fmt.Errorf("unknown question type %q", qd.Type)
	}

	return question, nil
}

// ===== SHARED HELPERS =====

func (s *importService) GetImportJob(ctx context.Context, jobID uint) (*models.ImportJob, error) {
	job, err := s.repo.ImportJob().GetByID(ctx, jobID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	return job, nil
}

// persistImportedTest writes the test and its questions in one transaction
// so a failed import never leaves a half-populated test behind.
func (s *importService) persistImportedTest(ctx context.Context, test *models.Test, questions []*models.Question) error {
	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Test().Create(ctx, test); err != nil {
			return fmt.Errorf("failed to create test: %w", err)
		}
		for _, question := range questions {
			question.TestID = &test.ID
			if err := txRepo.Question().Create(ctx, question); err != nil {
				return fmt.Errorf("failed to create question: %w", err)
			}
		}
		return nil
	})
}

// recordImportJob persists an audit record of the import, including notes
// for every skipped block. Failures here are logged, not surfaced; the
// import itself already succeeded or failed on its own terms.
func (s *importService) recordImportJob(ctx context.Context, testID *uint, filePath string, status models.ImportJobStatus, questionCount int, skipped []models.ImportSkipNote) {
	var skippedJSON datatypes.JSON
	if len(skipped) > 0 {
		if data, err := json.Marshal(skipped); err == nil {
			skippedJSON = data
		}
	}

	job := &models.ImportJob{
		TestID:        testID,
		Filename:      filepath.Base(filePath),
		Status:        status,
		QuestionCount: questionCount,
		SkippedCount:  len(skipped),
		Skipped:       skippedJSON,
	}

	if err := s.repo.ImportJob().Create(ctx, job); err != nil {
		s.logger.Error("Failed to record import job", "file", job.Filename, "error", err)
	}
}

func (s *importService) publishEvent(ctx context.Context, event *events.StudyEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStudyEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish study event", "event_type", event.Type, "error", err)
	}
}

func readImportFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrImportFileNotFound, filePath)
		}
		return "", fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return string(content), nil
}

func stemOf(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
