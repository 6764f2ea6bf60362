package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/studydesk/study-service/internal/models"
	"github.com/studydesk/study-service/internal/repositories"
	"github.com/studydesk/study-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

// ExportService writes tests back out as JSON files and renders attempt
// history as CSV or Excel spreadsheets.
type ExportService interface {
	ExportToJSON(ctx context.Context, testID uint, filePath string) error
	ValidateTest(ctx context.Context, testID uint) ([]string, error)
	ExportResultsToCSV(ctx context.Context, testID uint) ([]byte, error)
	ExportResultsToExcel(ctx context.Context, testID uint) ([]byte, error)
}

type exportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) ExportService {
	return &exportService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// ExportToJSON writes a test and its questions to a JSON file in the same
// format ImportFromJSON accepts, so exports round-trip.
func (s *exportService) ExportToJSON(ctx context.Context, testID uint, filePath string) error {
	test, err := s.repo.Test().GetByIDWithQuestions(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to get test: %w", err)
	}

	data := jsonTestFile{
		Name:        test.Name,
		Description: test.Description,
		Questions:   make([]jsonQuestion, 0, len(test.Questions)),
	}

	for _, question := range test.Questions {
		qd := jsonQuestion{
			Text:     question.Text,
			Type:     string(question.Type),
			Category: question.Category,
		}

		if question.IsEssay() {
			qd.ExpectedAnswer = question.CorrectAnswer
		} else {
			for _, option := range question.Options {
				qd.Options = append(qd.Options, jsonOption{
					Text:    option.Text,
					Correct: option.IsCorrect,
				})
			}
		}

		data.Questions = append(data.Questions, qd)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode test: %w", err)
	}

	if err := os.WriteFile(filePath, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	s.logger.Info("Test exported",
		"test_id", testID,
		"questions", len(data.Questions),
		"file", filePath)

	return nil
}

// ValidateTest reports non-fatal problems with a test's questions, such as a
// question left without a marked correct answer after a tolerant import.
func (s *exportService) ValidateTest(ctx context.Context, testID uint) ([]string, error) {
	test, err := s.repo.Test().GetByIDWithQuestions(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	var warnings []string
	for i, question := range test.Questions {
		warnings = append(warnings, s.validator.Question().Warnings(&question, i+1)...)
	}

	return warnings, nil
}

func (s *exportService) ExportResultsToCSV(ctx context.Context, testID uint) ([]byte, error) {
	test, attempts, err := s.getResultsForExport(ctx, testID)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	headers := []string{
		"Attempt ID", "Test", "Mode", "Score", "Total Questions",
		"Percentage", "Time Taken (s)", "Completed At",
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, attempt := range attempts {
		row := attemptToRow(test.Name, attempt)
		record := make([]string, len(row))
		for i, value := range row {
			record[i] = fmt.Sprintf("%v", value)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return []byte(buf.String()), nil
}

func (s *exportService) ExportResultsToExcel(ctx context.Context, testID uint) ([]byte, error) {
	test, attempts, err := s.getResultsForExport(ctx, testID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Attempt ID", "Test", "Mode", "Score", "Total Questions",
		"Percentage", "Time Taken (s)", "Completed At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		row := attemptToRow(test.Name, attempt)
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *exportService) getResultsForExport(ctx context.Context, testID uint) (*models.Test, []*models.Attempt, error) {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrTestNotFound
		}
		return nil, nil, fmt.Errorf("failed to get test: %w", err)
	}

	attempts, err := s.repo.Attempt().GetByTest(ctx, testID, repositories.AttemptFilters{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get attempts: %w", err)
	}

	return test, attempts, nil
}

func attemptToRow(testName string, attempt *models.Attempt) []interface{} {
	row := []interface{}{
		attempt.ID,
		testName,
		string(attempt.Mode),
		attempt.Score,
		attempt.TotalQuestions,
		attempt.Percentage,
	}

	if attempt.TimeTaken != nil {
		row = append(row, *attempt.TimeTaken)
	} else {
		row = append(row, "")
	}

	row = append(row, attempt.CompletedAt.Format("2006-01-02 15:04:05"))

	return row
}
