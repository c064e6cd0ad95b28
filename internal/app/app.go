package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/audit-eval/internal/config"
	handler "github.com/godilite/audit-eval/internal/grpc"
	"github.com/godilite/audit-eval/internal/metrics"
	"github.com/godilite/audit-eval/internal/repository"
	"github.com/godilite/audit-eval/internal/service"
	"github.com/godilite/audit-eval/pkg/cache"
	dbbuilder "github.com/godilite/audit-eval/pkg/database"
	grpcsrv "github.com/godilite/audit-eval/pkg/grpc/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger        *zap.Logger
	dbPool        *sql.DB
	cache         *cache.Cache
	grpcServer    *grpcsrv.Server
	metricsServer *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	resultRepo := repository.NewScoreResultRepository(dbPool)
	if err := resultRepo.EnsureSchema(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("schema init failed: %w", err)
	}

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
	)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	recorder := metrics.New()
	evaluationService := service.NewEvaluationService(resultRepo, recorder, logger)
	logger.Info("Evaluation run started", zap.String("run_id", evaluationService.RunID()))

	grpcHandlers := handler.NewGRPCHandlers(evaluationService, cacheClient, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
	)
	if err != nil {
		cacheClient.Close()
		dbPool.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}
	grpcServer.RegisterService(&handler.EvaluatorServiceDesc, grpcHandlers)

	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		grpcServer: grpcServer,
		metricsServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Run starts the servers and blocks until ctx is done, then shuts down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	go func() {
		a.logger.Info("metrics server starting", zap.String("addr", a.metricsServer.Addr))
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return a.Shutdown(shutdownCtx)
}

// Shutdown stops the servers and releases the cache and database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if err := a.grpcServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("grpc shutdown: %w", err))
	}
	if err := a.metricsServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	a.logger.Info("graceful shutdown completed successfully")
	_ = a.logger.Sync()
	return nil
}
