package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/godilite/audit-eval/internal/repository/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS score_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		rubric TEXT NOT NULL,
		test_id TEXT NOT NULL,
		score INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		issues TEXT NOT NULL,
		sync_latency_ms INTEGER,
		navigation_count INTEGER,
		evaluated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_score_results_rubric ON score_results (rubric);
`

type ScoreResultRepository struct {
	db *sql.DB
}

func NewScoreResultRepository(db *sql.DB) *ScoreResultRepository {
	return &ScoreResultRepository{db: db}
}

// EnsureSchema creates the results table if it does not exist.
func (s *ScoreResultRepository) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveResult inserts a result and returns its row id.
func (s *ScoreResultRepository) SaveResult(ctx context.Context, r models.ScoreResultRecord) (int64, error) {
	const query = `
		INSERT INTO score_results
			(run_id, rubric, test_id, score, passed, issues, sync_latency_ms, navigation_count, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	issues := r.Issues
	if issues == nil {
		issues = []string{}
	}
	encoded, err := json.Marshal(issues)
	if err != nil {
		return 0, fmt.Errorf("encode issues: %w", err)
	}

	var latency, navCount sql.NullInt64
	if r.SyncLatencyMs != nil {
		latency = sql.NullInt64{Int64: *r.SyncLatencyMs, Valid: true}
	}
	if r.NavigationCount != nil {
		navCount = sql.NullInt64{Int64: int64(*r.NavigationCount), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, query,
		r.RunID, r.Rubric, r.TestID, r.Score, r.Passed, string(encoded),
		latency, navCount, r.EvaluatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("query SaveResult: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("SaveResult last insert id: %w", err)
	}
	return id, nil
}

// GetRubricHistory aggregates all persisted results per rubric in SQL.
func (s *ScoreResultRepository) GetRubricHistory(ctx context.Context) ([]models.RubricHistory, error) {
	const query = `
		SELECT
			rubric,
			COUNT(id) AS total_tests,
			SUM(CASE WHEN passed THEN 1 ELSE 0 END) AS passed,
			AVG(CAST(score AS REAL)) AS average_score,
			COUNT(DISTINCT run_id) AS runs
		FROM score_results
		GROUP BY rubric
		ORDER BY rubric
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query GetRubricHistory: %w", err)
	}
	defer rows.Close()

	var results []models.RubricHistory
	for rows.Next() {
		var h models.RubricHistory
		if err := rows.Scan(&h.Rubric, &h.TotalTests, &h.Passed, &h.AverageScore, &h.Runs); err != nil {
			return nil, fmt.Errorf("scan GetRubricHistory row: %w", err)
		}
		results = append(results, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetRubricHistory: %w", err)
	}
	return results, nil
}

// ListResults returns the most recent results of a rubric, newest first.
func (s *ScoreResultRepository) ListResults(ctx context.Context, rubric string, limit int) ([]models.ScoreResultRecord, error) {
	const query = `
		SELECT id, run_id, rubric, test_id, score, passed, issues, sync_latency_ms, navigation_count, evaluated_at
		FROM score_results
		WHERE rubric = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, rubric, limit)
	if err != nil {
		return nil, fmt.Errorf("query ListResults: %w", err)
	}
	defer rows.Close()

	var results []models.ScoreResultRecord
	for rows.Next() {
		var (
			r                 models.ScoreResultRecord
			issues, evaluated string
			latency, navCount sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.RunID, &r.Rubric, &r.TestID, &r.Score, &r.Passed,
			&issues, &latency, &navCount, &evaluated); err != nil {
			return nil, fmt.Errorf("scan ListResults row: %w", err)
		}
		if err := json.Unmarshal([]byte(issues), &r.Issues); err != nil {
			return nil, fmt.Errorf("decode issues of result %d: %w", r.ID, err)
		}
		if latency.Valid {
			v := latency.Int64
			r.SyncLatencyMs = &v
		}
		if navCount.Valid {
			v := int(navCount.Int64)
			r.NavigationCount = &v
		}
		if r.EvaluatedAt, err = time.Parse(time.RFC3339Nano, evaluated); err != nil {
			return nil, fmt.Errorf("parse evaluated_at of result %d: %w", r.ID, err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListResults: %w", err)
	}
	return results, nil
}
