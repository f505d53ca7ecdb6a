package output

import (
	"os"
	"path/filepath"
	"testing"

	"survey-responder/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	result := &domain.SurveyResult{
		Questions: []string{"I sleep well.", "I like \"quotes\", commas too."},
		Respondents: []domain.Respondent{
			{Number: 1, Answers: []string{"Never", "Often"}},
			{Number: 2, Answers: []string{"Always", "Sometimes"}},
		},
	}

	require.NoError(t, NewCSVWriter().Write(path, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"respondent,I sleep well.,\"I like \"\"quotes\"\", commas too.\"\n"+
			"1,Never,Often\n"+
			"2,Always,Sometimes\n",
		string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestCSVWriter_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "results.csv")

	err := NewCSVWriter().Write(path, &domain.SurveyResult{Questions: []string{"Q"}})
	require.Error(t, err)
	assert.Equal(t, domain.ErrFileNotFound, domain.CodeOf(err))
}

func TestCSVWriter_AnswerCountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	result := &domain.SurveyResult{
		Questions:   []string{"Q1", "Q2"},
		Respondents: []domain.Respondent{{Number: 1, Answers: []string{"Never"}}},
	}

	err := NewCSVWriter().Write(path, result)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
