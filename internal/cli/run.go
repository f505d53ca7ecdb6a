package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"survey-responder/internal/config"
	"survey-responder/internal/domain"

	"github.com/spf13/cobra"
)

const defaultModel = "llama3.1:latest"

// Runner is the survey delegate invoked once inputs are valid.
type Runner interface {
	RunAndWrite(ctx context.Context, path string) (*domain.SurveyResult, error)
}

// RunnerFactory builds a Runner. The returned cleanup releases any
// connections the runner holds and is safe to call when err is nil.
type RunnerFactory func(ctx context.Context, cfg *config.Config, params domain.RunParams) (Runner, func(), error)

type runFlags struct {
	questions       string
	persona         string
	model           string
	numResponses    int
	temperature     float64
	responseOptions string
	output          string
}

func (a *app) runCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run survey responder",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return categorize(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if m := a.cfg.DefaultModel(); !cmd.Flags().Changed("model") && m != "" {
				f.model = m
			}
			if err := a.runSurvey(cmd, f); err != nil {
				return categorize(err)
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return categorize(domain.NewInvalidInputError(err.Error()))
	})

	flags := cmd.Flags()
	flags.StringVar(&f.questions, "questions", "questions.txt", "Path to questions text file")
	flags.StringVar(&f.persona, "persona", "persona.json", "Path to persona JSON file")
	flags.StringVar(&f.model, "model", defaultModel, "Model to use. Ollama models must be pulled locally")
	flags.IntVar(&f.numResponses, "num-responses", 10, "Number of responses to generate")
	flags.Float64Var(&f.temperature, "temperature", 1.0, "LLM temperature, 0.0 to 2.0")
	flags.StringVar(&f.responseOptions, "response-options", "", "Comma-separated custom response options (default: 5-point Likert scale)")
	flags.StringVar(&f.output, "output", "results.csv", "CSV filepath to save results")
	return cmd
}

func (a *app) runSurvey(cmd *cobra.Command, f runFlags) error {
	var options []string
	if f.responseOptions != "" {
		options = ParseResponseOptions(f.responseOptions)
		if options == nil {
			options = []string{}
		}
	}

	params := domain.RunParams{
		QuestionsPath:   f.questions,
		PersonaPath:     f.persona,
		ModelName:       f.model,
		ResponseOptions: options,
		NumResponses:    f.numResponses,
		Temperature:     f.temperature,
	}
	if err := ValidateRun(params, f.output); err != nil {
		return err
	}

	ctx := cmd.Context()
	runner, cleanup, err := a.newRunner(ctx, a.cfg, params)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := runner.RunAndWrite(ctx, f.output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d responses to %s (run %s)\n", len(result.Respondents), f.output, result.RunID)
	return nil
}

// ParseResponseOptions splits a comma-separated list into trimmed,
// non-empty labels.
func ParseResponseOptions(s string) []string {
	var options []string
	for _, part := range strings.Split(s, ",") {
		if label := strings.TrimSpace(part); label != "" {
			options = append(options, label)
		}
	}
	return options
}

// ValidateRun checks a run's inputs in a fixed order and returns the first
// problem found. A nil ResponseOptions means the defaults are used; a non-nil
// one must hold at least domain.MinResponseOptions labels.
func ValidateRun(params domain.RunParams, output string) error {
	if !exists(params.QuestionsPath) {
		return domain.NewFileNotFoundError(fmt.Sprintf("Questions file not found: %s", params.QuestionsPath))
	}
	if !exists(params.PersonaPath) {
		return domain.NewFileNotFoundError(fmt.Sprintf("Persona file not found: %s", params.PersonaPath))
	}
	if dir := filepath.Dir(output); dir != "." && !isDir(dir) {
		return domain.NewFileNotFoundError(fmt.Sprintf("Output directory does not exist: %s", dir))
	}
	if params.ResponseOptions != nil && len(params.ResponseOptions) < domain.MinResponseOptions {
		return domain.NewInvalidInputError(fmt.Sprintf("You must provide at least %d response options.", domain.MinResponseOptions))
	}
	if math.IsNaN(params.Temperature) || params.Temperature < 0.0 || params.Temperature > 2.0 {
		return domain.NewInvalidInputError("Temperature must be between 0.0 and 2.0")
	}
	if params.NumResponses < 1 {
		return domain.NewInvalidInputError("Number of responses must be at least 1")
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
