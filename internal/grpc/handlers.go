package grpc

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/audit-eval/internal/evaluator"
	"github.com/godilite/audit-eval/internal/service"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeyRubricHistory CacheKeyType = "grpc:rubric_history"
)

type syncRequest struct {
	Submission    evaluator.SyncSubmission `json:"submission"`
	BackendResult evaluator.BackendResult  `json:"backend_result"`
}

type navigationRequest struct {
	Events []evaluator.NavigationEvent `json:"events"`
}

type historyResponse struct {
	Rubrics []service.RubricHistory `json:"rubrics"`
}

type listRequest struct {
	Rubric string `json:"rubric"`
	Limit  int    `json:"limit"`
}

type listResponse struct {
	Results []service.StoredResult `json:"results"`
}

type GRPCHandlers struct {
	evaluation EvaluationService
	cache      Cacher
	logger     *zap.Logger
	sfGroup    singleflight.Group
	cacheTTL   time.Duration
}

var _ EvaluatorServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(evaluation EvaluationService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if evaluation == nil {
		panic("nil EvaluationService provided to NewGRPCHandlers")
	}
	if cache == nil {
		panic("nil Cacher provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		evaluation: evaluation,
		cache:      cache,
		logger:     logger.Named("grpc-handler"),
		cacheTTL:   ttl,
	}
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrUnknownRubric):
		s.logger.Info("unknown rubric", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNoResults):
		s.logger.Info("no results found", zap.String("op", op))
		return status.Error(codes.NotFound, "no evaluation results recorded yet")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) invalidArgument(op string, err error) error {
	s.logger.Info("invalid request", zap.String("op", op), zap.Error(err))
	return status.Errorf(codes.InvalidArgument, "invalid %s request: %v", op, err)
}

// respond encodes a scored result and drops cached history it makes stale.
func (s *GRPCHandlers) respond(ctx context.Context, op string, result evaluator.ScoreResult, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}

	invalidate(ctx, s.cache, s.logger, string(cacheKeyRubricHistory))

	out, err := encodeStruct(result)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

func (s *GRPCHandlers) EvaluateAuditCompletion(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "EvaluateAuditCompletion"

	var audit evaluator.AuditRecord
	if err := decodeStruct(req, &audit); err != nil {
		return nil, s.invalidArgument(op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	result, err := s.evaluation.EvaluateAuditCompletion(ctx, audit)
	return s.respond(ctx, op, result, err)
}

func (s *GRPCHandlers) EvaluateDataSync(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "EvaluateDataSync"

	var in syncRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, s.invalidArgument(op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	result, err := s.evaluation.EvaluateDataSync(ctx, in.Submission, in.BackendResult)
	return s.respond(ctx, op, result, err)
}

func (s *GRPCHandlers) EvaluateNavigationFlow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "EvaluateNavigationFlow"

	var in navigationRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, s.invalidArgument(op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	result, err := s.evaluation.EvaluateNavigationFlow(ctx, in.Events)
	return s.respond(ctx, op, result, err)
}

func (s *GRPCHandlers) GenerateReport(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	const op = "GenerateReport"

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	report, err := s.evaluation.GenerateReport(ctx)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}

	out, err := encodeStruct(report)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

func (s *GRPCHandlers) GetRubricHistory(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	const op = "GetRubricHistory"

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	history, err := FindAndCache(ctx, s.cache, &s.sfGroup, string(cacheKeyRubricHistory), s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]service.RubricHistory, error) {
		return s.evaluation.GetRubricHistory(fetchCtx)
	})
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}

	out, err := encodeStruct(historyResponse{Rubrics: history})
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

func (s *GRPCHandlers) ListResults(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "ListResults"

	var in listRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, s.invalidArgument(op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	results, err := s.evaluation.ListResults(ctx, in.Rubric, in.Limit)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}

	out, err := encodeStruct(listResponse{Results: results})
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}
