package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/audit-eval/internal/config"
	"github.com/godilite/audit-eval/internal/console"
	"github.com/godilite/audit-eval/internal/evaluator"
	"github.com/godilite/audit-eval/internal/service"
)

func newHistoryCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	var (
		rubric string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored results across evaluation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := console.NewReporter(cmd.OutOrStdout())

			svc, closeStore, err := openService(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			history, err := svc.GetRubricHistory(ctx)
			switch {
			case errors.Is(err, service.ErrNoResults):
				out.NoHistory()
				return nil
			case err != nil:
				return err
			}
			out.History(history)

			results, err := svc.ListResults(ctx, rubric, limit)
			if err != nil {
				return err
			}
			out.RecentResults(rubric, results)
			return nil
		},
	}
	cmd.Flags().StringVar(&rubric, "rubric", string(evaluator.RubricCompletion), "rubric whose recent results are listed")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of recent results to list")
	return cmd
}
