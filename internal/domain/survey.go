package domain

import (
	"context"
	"time"
)

// DefaultResponseOptions is the 5-point Likert scale used when no custom
// response options are supplied.
var DefaultResponseOptions = []string{"Never", "Rarely", "Sometimes", "Often", "Always"}

// MinResponseOptions is the smallest number of custom response options accepted.
const MinResponseOptions = 3

// RunParams carries everything a survey run needs.
type RunParams struct {
	QuestionsPath   string
	PersonaPath     string
	ModelName       string
	ResponseOptions []string // nil means DefaultResponseOptions
	NumResponses    int
	Temperature     float64
}

// Options returns the effective response options for the run.
func (p RunParams) Options() []string {
	if len(p.ResponseOptions) == 0 {
		return DefaultResponseOptions
	}
	return p.ResponseOptions
}

// Persona is a JSON profile used to bias generated responses.
// Its attributes are passed to the model as-is.
type Persona struct {
	Name       string
	Attributes map[string]any
}

// Respondent is one synthetic survey response.
type Respondent struct {
	Number  int      // 1-based
	Answers []string // one label per question, in question order
}

// SurveyResult is the output of a run.
type SurveyResult struct {
	RunID       string
	Model       string
	Temperature float64
	Questions   []string
	Options     []string
	Respondents []Respondent
	CreatedAt   time.Time
}

// AnswerRequest is the input for generating a single respondent's answers.
type AnswerRequest struct {
	Persona     *Persona
	Questions   []string
	Options     []string
	Temperature float64
}

// AnswerGenerator produces one respondent's answers, one label per question.
type AnswerGenerator interface {
	GenerateAnswers(ctx context.Context, req AnswerRequest) ([]string, error)
}

// ResultWriter persists a survey result to a file.
type ResultWriter interface {
	Write(path string, result *SurveyResult) error
}

// ResultArchive stores survey results for later analysis.
type ResultArchive interface {
	SaveResult(ctx context.Context, result *SurveyResult) error
}

// TransactionManager defines the interface for managing database transactions.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
