package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringSlice stores a string list as a JSON array column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = StringSlice{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringSlice Scan: unsupported type %T", value)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// SurveyRun is a row of survey_runs.
type SurveyRun struct {
	ID              string      `db:"ID"`
	Model           string      `db:"MODEL"`
	Temperature     float64     `db:"TEMPERATURE"`
	NumResponses    int         `db:"NUM_RESPONSES"`
	ResponseOptions StringSlice `db:"RESPONSE_OPTIONS"`
	Questions       StringSlice `db:"QUESTIONS"`
	CreatedAt       time.Time   `db:"CREATED_AT"`
}

// SurveyResponse is a row of survey_responses.
type SurveyResponse struct {
	RunID          string `db:"RUN_ID"`
	Respondent     int    `db:"RESPONDENT"`
	QuestionNumber int    `db:"QUESTION_NUMBER"`
	Response       string `db:"RESPONSE"`
}
