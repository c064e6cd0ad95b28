package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/godilite/audit-eval/internal/config"
	"github.com/godilite/audit-eval/internal/console"
	"github.com/godilite/audit-eval/internal/evaluator"
	"github.com/godilite/audit-eval/internal/report"
	"github.com/godilite/audit-eval/internal/repository"
	"github.com/godilite/audit-eval/internal/repository/models"
	"github.com/godilite/audit-eval/internal/service"
	dbbuilder "github.com/godilite/audit-eval/pkg/database"
)

// errAborted signals a failure already reported on the console.
var errAborted = errors.New("evaluation aborted")

func newRootCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	var (
		configPath  string
		queriesPath string
		reportPath  string
	)

	root := &cobra.Command{
		Use:           "evaluate",
		Short:         "Score recorded audit-app interactions and write an evaluation report",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluation(cmd.Context(), cfg, logger, console.NewReporter(cmd.OutOrStdout()), configPath, queriesPath, reportPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "evaluation_config.json", "rubric description file (JSON or YAML)")
	root.Flags().StringVar(&queriesPath, "queries", "test_queries.json", "test scenario file (JSON or YAML)")
	root.Flags().StringVar(&reportPath, "report", cfg.ReportPath, "where to write the evaluation report")

	root.AddCommand(newHistoryCmd(cfg, logger))
	return root
}

// openService connects the result store and returns a service for one run.
func openService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*service.EvaluationService, func(), error) {
	db, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open result store: %w", err)
	}

	repo := repository.NewScoreResultRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("prepare result store: %w", err)
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			logger.Warn("closing result store", zap.Error(err))
		}
	}
	return service.NewEvaluationService(repo, nil, logger), closeFn, nil
}

// unsavedResults stands in for the result store when it cannot be opened.
type unsavedResults struct{}

func (unsavedResults) SaveResult(context.Context, models.ScoreResultRecord) (int64, error) {
	return 0, nil
}

func (unsavedResults) GetRubricHistory(context.Context) ([]models.RubricHistory, error) {
	return nil, nil
}

func (unsavedResults) ListResults(context.Context, string, int) ([]models.ScoreResultRecord, error) {
	return nil, nil
}

func sampleAudit() evaluator.AuditRecord {
	return evaluator.AuditRecord{
		AuditID:      "AUD_001",
		UserID:       "USER_123",
		RestaurantID: "REST_001",
		Items: []evaluator.AuditItem{
			{ItemID: "i1", Category: "Greeting", Response: evaluator.String("yes")},
			{ItemID: "i2", Category: "Seating", Response: evaluator.String("yes")},
		},
	}
}

func runEvaluation(ctx context.Context, cfg *config.Config, logger *zap.Logger, out *console.Reporter, configPath, queriesPath, reportPath string) error {
	out.Banner()

	evalCfg, err := config.LoadEvaluationConfig(configPath)
	if err != nil {
		out.LoadFailed(err)
		return errAborted
	}
	out.ConfigLoaded(configPath)

	queries, err := config.LoadTestQueries(queriesPath)
	if err != nil {
		out.LoadFailed(err)
		return errAborted
	}
	out.QueriesLoaded(queriesPath, len(queries))

	out.Metrics(evalCfg)
	out.Scenarios(queries)
	out.Ready()

	svc, closeStore, err := openService(ctx, cfg, logger)
	if err != nil {
		logger.Warn("result store unavailable, results of this run will not be saved", zap.Error(err))
		svc, closeStore = service.NewEvaluationService(unsavedResults{}, nil, logger), func() {}
	}
	defer closeStore()

	rep, err := svc.GenerateReport(ctx)
	if err != nil {
		return err
	}
	if err := report.Write(reportPath, rep); err != nil {
		return err
	}
	out.ReportSaved(reportPath)

	result, err := svc.EvaluateAuditCompletion(ctx, sampleAudit())
	if err != nil {
		return err
	}
	out.SampleResult(result)

	logger.Info("evaluation run finished", zap.String("run_id", svc.RunID()))
	return nil
}
