package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/audit-eval/internal/grpc"
	"github.com/godilite/audit-eval/internal/grpc/mocks"
	"github.com/godilite/audit-eval/internal/repository"
	"github.com/godilite/audit-eval/internal/service"
	dbbuilder "github.com/godilite/audit-eval/pkg/database"
	"github.com/godilite/audit-eval/pkg/grpc/server"
)

type harness struct {
	client *grpc.EvaluatorClient
	cache  *mocks.TrackingCache
}

func setupHarness(t *testing.T) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))

	db, err := dbbuilder.New(
		dbbuilder.WithDriver("sqlite3"),
		dbbuilder.WithDataSource(":memory:"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewScoreResultRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))

	cache := mocks.NewTrackingCache()
	svc := service.NewEvaluationService(repo, nil, logger)
	handlers := grpc.NewGRPCHandlers(svc, cache, logger, time.Minute)

	lis := bufconn.Listen(1 << 20)
	srv, err := server.New(
		server.WithListener(lis),
		server.WithLogger(logger),
		server.WithLogging(true),
		server.WithRecovery(true),
	)
	require.NoError(t, err)
	srv.RegisterService(&grpc.EvaluatorServiceDesc, handlers)
	srv.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &harness{client: grpc.NewEvaluatorClient(conn), cache: cache}
}

func request(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestEvaluatorOverGRPC_FullWorkflow(t *testing.T) {
	h := setupHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.client.GetRubricHistory(ctx, nil)
	assert.Equal(t, codes.NotFound, status.Code(err), "history is empty before any evaluation")

	completion, err := h.client.EvaluateAuditCompletion(ctx, request(t, map[string]any{
		"audit_id":      "AUD_001",
		"user_id":       "USER_123",
		"restaurant_id": "REST_001",
		"items": []any{
			map[string]any{"item_id": "i1", "category": "Greeting", "response": "yes"},
			map[string]any{"item_id": "i2", "category": "Seating", "response": "yes"},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "AUD_001", completion.Fields["test_id"].GetStringValue())
	assert.Equal(t, 100.0, completion.Fields["score"].GetNumberValue())
	assert.True(t, completion.Fields["passed"].GetBoolValue())
	assert.Empty(t, completion.Fields["issues"].GetListValue().GetValues())

	// Missing response is penalised by both the presence and validity checks.
	partial, err := h.client.EvaluateAuditCompletion(ctx, request(t, map[string]any{
		"audit_id":      "AUD_002",
		"user_id":       "USER_123",
		"restaurant_id": "REST_001",
		"items": []any{
			map[string]any{"item_id": "i1", "category": "Greeting"},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, 70.0, partial.Fields["score"].GetNumberValue())
	assert.False(t, partial.Fields["passed"].GetBoolValue())
	assert.Len(t, partial.Fields["issues"].GetListValue().GetValues(), 2)

	sync, err := h.client.EvaluateDataSync(ctx, request(t, map[string]any{
		"submission": map[string]any{
			"audit_id":        "AUD_001",
			"completion_time": 1000,
			"items":           []any{map[string]any{"item_id": "i1", "response": "yes"}},
		},
		"backend_result": map[string]any{
			"received":      true,
			"received_time": 1250,
			"items":         []any{map[string]any{"item_id": "i1", "response": "yes"}},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, 100.0, sync.Fields["score"].GetNumberValue())
	assert.Equal(t, 250.0, sync.Fields["sync_latency_ms"].GetNumberValue())

	nav, err := h.client.EvaluateNavigationFlow(ctx, request(t, map[string]any{
		"events": []any{
			map[string]any{"category": "Greeting", "type": "progress_update", "audit_id": "AUD_001"},
			map[string]any{"category": "Seating", "state_lost": true, "timestamp": 42, "audit_id": "AUD_001"},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, 75.0, nav.Fields["score"].GetNumberValue())
	assert.Equal(t, 2.0, nav.Fields["navigation_count"].GetNumberValue())
	assert.Equal(t, "State loss at 42", nav.Fields["issues"].GetListValue().GetValues()[0].GetStringValue())

	report, err := h.client.GenerateReport(ctx, nil)
	require.NoError(t, err)
	summary := report.Fields["summary"].GetStructValue().Fields
	require.Len(t, summary, 3)
	completionSummary := summary["audit_completion_accuracy"].GetStructValue().Fields
	assert.Equal(t, 2.0, completionSummary["total_tests"].GetNumberValue())
	assert.Equal(t, "50.0%", completionSummary["pass_rate"].GetStringValue())
	assert.Equal(t, "85.0", completionSummary["average_score"].GetStringValue())

	history, err := h.client.GetRubricHistory(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, history.Fields["rubrics"].GetListValue().GetValues(), 3)

	recent, err := h.client.ListResults(ctx, request(t, map[string]any{"rubric": "audit_completion_accuracy", "limit": 1}))
	require.NoError(t, err)
	results := recent.Fields["results"].GetListValue().GetValues()
	require.Len(t, results, 1)
	assert.Equal(t, "AUD_002", results[0].GetStructValue().Fields["test_id"].GetStringValue())
}

func TestEvaluatorOverGRPC_HistoryCacheInvalidation(t *testing.T) {
	h := setupHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	audit := request(t, map[string]any{"audit_id": "AUD_1", "user_id": "U", "restaurant_id": "R",
		"items": []any{map[string]any{"item_id": "i1", "category": "Greeting", "response": "na"}}})

	_, err := h.client.EvaluateAuditCompletion(ctx, audit)
	require.NoError(t, err)

	_, err = h.client.GetRubricHistory(ctx, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.cache.Has("grpc:rubric_history") }, time.Second, 10*time.Millisecond)

	_, err = h.client.EvaluateAuditCompletion(ctx, audit)
	require.NoError(t, err)
	assert.False(t, h.cache.Has("grpc:rubric_history"), "a new result must drop cached history")

	history, err := h.client.GetRubricHistory(ctx, nil)
	require.NoError(t, err)
	entry := history.Fields["rubrics"].GetListValue().GetValues()[0].GetStructValue().Fields
	assert.Equal(t, 2.0, entry["total_tests"].GetNumberValue())
}

func TestEvaluatorOverGRPC_InvalidRequest(t *testing.T) {
	h := setupHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.client.EvaluateNavigationFlow(ctx, request(t, map[string]any{"events": 12}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
