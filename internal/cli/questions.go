package cli

import (
	"fmt"

	"survey-responder/internal/domain"
	"survey-responder/internal/logger"
	"survey-responder/internal/questions"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) questionsCmd() *cobra.Command {
	var (
		file       string
		list       bool
		add        string
		deleteLine int
	)

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List or update a questions file (default: questions.txt)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			flags := cmd.Flags()
			log := logger.Get().With(zap.String("file", file))

			switch {
			case flags.Changed("list"):
				if !list {
					return domain.NewInvalidInputError("No action specified. Use --list, --add, or --delete.")
				}
				return questions.List(out, file)

			case flags.Changed("add"):
				added, err := questions.Add(file, add)
				if err != nil {
					return err
				}
				log.Debug("Added question", zap.String("question", added))
				fmt.Fprintf(out, "Added question: %s\n", added)
				return nil

			case flags.Changed("delete"):
				removed, err := questions.Delete(file, deleteLine)
				if err != nil {
					return err
				}
				log.Debug("Deleted question", zap.Int("line", deleteLine), zap.String("question", removed))
				fmt.Fprintf(out, "Deleted question: %s\n", removed)
				return nil

			default:
				return domain.NewInvalidInputError("No action specified. Use --list, --add, or --delete.")
			}
		},
	}

	cmd.Flags().StringVar(&file, "file", "questions.txt", "Questions file to manage")
	cmd.Flags().BoolVar(&list, "list", false, "List all questions")
	cmd.Flags().StringVar(&add, "add", "", "Add a new question")
	cmd.Flags().IntVar(&deleteLine, "delete", 0, "Delete question by line number")
	cmd.MarkFlagsMutuallyExclusive("list", "add", "delete")
	return cmd
}
