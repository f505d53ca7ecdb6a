package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"survey-responder/internal/domain"
)

// CSVWriter writes survey results in wide format: one row per respondent,
// one column per question.
type CSVWriter struct{}

// NewCSVWriter creates a new CSVWriter.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// Write implements domain.ResultWriter. The file is written to a temp file
// next to path and renamed into place.
func (w *CSVWriter) Write(path string, result *domain.SurveyResult) error {
	if result == nil {
		return domain.NewInternalError("no survey result to write", nil)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".results-*.csv")
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewFileNotFoundError(fmt.Sprintf("Output directory does not exist: %s", dir))
		}
		return domain.NewInternalError(fmt.Sprintf("failed to create output file in %s", dir), err)
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	header := append([]string{"respondent"}, result.Questions...)
	if err := cw.Write(header); err != nil {
		tmp.Close()
		return domain.NewInternalError("failed to write CSV header", err)
	}
	for _, r := range result.Respondents {
		if len(r.Answers) != len(result.Questions) {
			tmp.Close()
			return domain.NewInternalError(fmt.Sprintf("respondent %d has %d answers for %d questions", r.Number, len(r.Answers), len(result.Questions)), nil)
		}
		row := append([]string{strconv.Itoa(r.Number)}, r.Answers...)
		if err := cw.Write(row); err != nil {
			tmp.Close()
			return domain.NewInternalError("failed to write CSV row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return domain.NewInternalError("failed to flush CSV output", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return domain.NewInternalError("failed to set output file mode", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.NewInternalError("failed to close output file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to write output file %s", path), err)
	}
	return nil
}

var _ domain.ResultWriter = (*CSVWriter)(nil)
