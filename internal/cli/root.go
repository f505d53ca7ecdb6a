// Package cli implements the surveyresponder command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"survey-responder/internal/config"
	"survey-responder/internal/domain"
	"survey-responder/internal/logger"

	"github.com/spf13/cobra"
)

// app carries state shared by the subcommands.
type app struct {
	configFile string
	cfg        *config.Config
	newRunner  RunnerFactory
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, args, stdout, stderr, buildRunner)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, factory RunnerFactory) int {
	a := &app{newRunner: factory}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// setup loads configuration and initializes the logger.
func (a *app) setup() error {
	cfg, err := config.LoadConfig(a.configFile)
	if err != nil {
		return domain.NewError(domain.ErrInvalidInput, "Failed to load configuration", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return domain.NewError(domain.ErrInvalidInput, "Failed to initialize logger", err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "surveyresponder",
		Short: "Generate synthetic survey responses with a local language model",
		Long: `surveyresponder asks a language model to answer a questionnaire as a given
persona, repeatedly, and writes the synthetic responses to CSV.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to a YAML config file (default: ./config.yaml if present)")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return domain.NewInvalidInputError(err.Error())
	})

	root.AddCommand(a.runCmd(), a.questionsCmd())
	return root
}
