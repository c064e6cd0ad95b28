package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/godilite/audit-eval/internal/repository"
	"github.com/godilite/audit-eval/internal/repository/models"
)

func setupTestDB(t *testing.T) (*sql.DB, *repository.ScoreResultRepository) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewScoreResultRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return db, repo
}

func seedResults(t *testing.T, repo *repository.ScoreResultRepository, baseTime time.Time) {
	t.Helper()

	latency := int64(-250)
	navCount := 4
	records := []models.ScoreResultRecord{
		{RunID: "run-1", Rubric: "audit_completion_accuracy", TestID: "A1", Score: 100, Passed: true},
		{RunID: "run-1", Rubric: "audit_completion_accuracy", TestID: "A2", Score: 70, Passed: false,
			Issues: []string{"Item i1 missing response", "Item i1 has invalid response: <missing>"}},
		{RunID: "run-2", Rubric: "audit_completion_accuracy", TestID: "A3", Score: 85, Passed: true},
		{RunID: "run-1", Rubric: "data_sync_reliability", TestID: "S1", Score: 100, Passed: true, SyncLatencyMs: &latency},
		{RunID: "run-2", Rubric: "category_navigation_flow", TestID: "N1", Score: 80, Passed: true, NavigationCount: &navCount},
	}

	for i, r := range records {
		r.EvaluatedAt = baseTime.Add(time.Duration(i) * time.Minute)
		_, err := repo.SaveResult(context.Background(), r)
		require.NoError(t, err)
	}
}

func TestScoreResultRepository_Integration(t *testing.T) {
	ctx := context.Background()
	_, repo := setupTestDB(t)

	baseTime := time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)
	seedResults(t, repo, baseTime)

	t.Run("EnsureSchema is idempotent", func(t *testing.T) {
		require.NoError(t, repo.EnsureSchema(ctx))
	})

	t.Run("GetRubricHistory", func(t *testing.T) {
		history, err := repo.GetRubricHistory(ctx)
		require.NoError(t, err)
		require.Len(t, history, 3)

		byRubric := make(map[string]models.RubricHistory)
		for _, h := range history {
			byRubric[h.Rubric] = h
		}

		completion := byRubric["audit_completion_accuracy"]
		require.Equal(t, int64(3), completion.TotalTests)
		require.Equal(t, int64(2), completion.Passed)
		require.InDelta(t, 85.0, completion.AverageScore, 0.001)
		require.Equal(t, int64(2), completion.Runs)

		require.Equal(t, int64(1), byRubric["data_sync_reliability"].TotalTests)
	})

	t.Run("ListResults newest first", func(t *testing.T) {
		results, err := repo.ListResults(ctx, "audit_completion_accuracy", 2)
		require.NoError(t, err)
		require.Len(t, results, 2)

		require.Equal(t, "A3", results[0].TestID)
		require.Equal(t, "A2", results[1].TestID)
		require.False(t, results[1].Passed)
		require.Equal(t, []string{"Item i1 missing response", "Item i1 has invalid response: <missing>"}, results[1].Issues)
		require.Equal(t, baseTime.Add(time.Minute), results[1].EvaluatedAt)
		require.Nil(t, results[1].SyncLatencyMs)
	})

	t.Run("ListResults restores optional fields", func(t *testing.T) {
		syncResults, err := repo.ListResults(ctx, "data_sync_reliability", 10)
		require.NoError(t, err)
		require.Len(t, syncResults, 1)
		require.NotNil(t, syncResults[0].SyncLatencyMs)
		require.Equal(t, int64(-250), *syncResults[0].SyncLatencyMs)
		require.Empty(t, syncResults[0].Issues)

		navResults, err := repo.ListResults(ctx, "category_navigation_flow", 10)
		require.NoError(t, err)
		require.Len(t, navResults, 1)
		require.NotNil(t, navResults[0].NavigationCount)
		require.Equal(t, 4, *navResults[0].NavigationCount)
	})

	t.Run("ListResults unknown rubric", func(t *testing.T) {
		results, err := repo.ListResults(ctx, "unknown", 10)
		require.NoError(t, err)
		require.Empty(t, results)
	})
}

func TestScoreResultRepository_EmptyHistory(t *testing.T) {
	_, repo := setupTestDB(t)

	history, err := repo.GetRubricHistory(context.Background())
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestScoreResultRepository_StorageFailures(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewScoreResultRepository(db)

	t.Run("SaveResult", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO score_results").WillReturnError(errors.New("disk full"))

		_, err := repo.SaveResult(ctx, models.ScoreResultRecord{RunID: "r", Rubric: "x", TestID: "t"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "query SaveResult")
		require.Contains(t, err.Error(), "disk full")
	})

	t.Run("GetRubricHistory", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("database is locked"))

		_, err := repo.GetRubricHistory(ctx)
		require.Error(t, err)
		require.Contains(t, err.Error(), "query GetRubricHistory")
	})

	t.Run("EnsureSchema", func(t *testing.T) {
		mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only"))

		err := repo.EnsureSchema(ctx)
		require.Error(t, err)
		require.Contains(t, err.Error(), "ensure schema")
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
