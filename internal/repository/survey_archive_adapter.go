package repository

import (
	"context"
	"fmt"

	"survey-responder/internal/domain"
	"survey-responder/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// SurveyArchiveAdapter implements domain.ResultArchive on Oracle.
type SurveyArchiveAdapter struct {
	db *sqlx.DB
	tm domain.TransactionManager
}

// NewSurveyArchiveAdapter creates a new SurveyArchiveAdapter.
func NewSurveyArchiveAdapter(db *sqlx.DB, tm domain.TransactionManager) *SurveyArchiveAdapter {
	return &SurveyArchiveAdapter{db: db, tm: tm}
}

// SaveResult stores the run and every answer in a single transaction.
func (a *SurveyArchiveAdapter) SaveResult(ctx context.Context, result *domain.SurveyResult) error {
	if result == nil {
		return fmt.Errorf("cannot archive nil survey result")
	}
	run := toModelSurveyRun(result)

	return a.tm.WithTransaction(ctx, func(ctx context.Context) error {
		exec := GetExecutor(ctx, a.db)

		runQuery := `INSERT INTO survey_runs (
			id, model, temperature, num_responses, response_options, questions, created_at
		) VALUES (
			:1, :2, :3, :4, :5, :6, :7
		)`
		if _, err := exec.ExecContext(ctx, runQuery,
			run.ID,
			run.Model,
			run.Temperature,
			run.NumResponses,
			run.ResponseOptions,
			run.Questions,
			run.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to save survey run %s: %w", run.ID, err)
		}

		responseQuery := `INSERT INTO survey_responses (
			run_id, respondent, question_number, response
		) VALUES (
			:1, :2, :3, :4
		)`
		for _, row := range toModelSurveyResponses(result) {
			if _, err := exec.ExecContext(ctx, responseQuery,
				row.RunID,
				row.Respondent,
				row.QuestionNumber,
				row.Response,
			); err != nil {
				return fmt.Errorf("failed to save response %d/%d for run %s: %w", row.Respondent, row.QuestionNumber, row.RunID, err)
			}
		}
		return nil
	})
}

func toModelSurveyRun(result *domain.SurveyResult) *models.SurveyRun {
	return &models.SurveyRun{
		ID:              result.RunID,
		Model:           result.Model,
		Temperature:     result.Temperature,
		NumResponses:    len(result.Respondents),
		ResponseOptions: models.StringSlice(result.Options),
		Questions:       models.StringSlice(result.Questions),
		CreatedAt:       result.CreatedAt,
	}
}

func toModelSurveyResponses(result *domain.SurveyResult) []models.SurveyResponse {
	rows := make([]models.SurveyResponse, 0, len(result.Respondents)*len(result.Questions))
	for _, r := range result.Respondents {
		for i, answer := range r.Answers {
			rows = append(rows, models.SurveyResponse{
				RunID:          result.RunID,
				Respondent:     r.Number,
				QuestionNumber: i + 1,
				Response:       answer,
			})
		}
	}
	return rows
}

var _ domain.ResultArchive = (*SurveyArchiveAdapter)(nil)
