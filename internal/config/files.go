package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrConfigLoad  = errors.New("failed to load config")
	ErrQueriesLoad = errors.New("failed to load test queries")
)

// MetricDescription names a rubric for display.
type MetricDescription struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// EvaluationConfig is the rubric listing shown before a run.
type EvaluationConfig struct {
	EvaluationMetrics []MetricDescription `yaml:"evaluation_metrics" json:"evaluation_metrics"`
}

// TestQuery describes one audit scenario to execute against the app.
type TestQuery struct {
	QueryID  string `yaml:"query_id" json:"query_id"`
	Scenario string `yaml:"scenario" json:"scenario"`
}

// LoadEvaluationConfig reads a JSON or YAML rubric listing.
func LoadEvaluationConfig(path string) (*EvaluationConfig, error) {
	var cfg EvaluationConfig
	if err := decodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}
	return &cfg, nil
}

// LoadTestQueries reads a JSON or YAML list of test scenarios.
func LoadTestQueries(path string) ([]TestQuery, error) {
	var queries []TestQuery
	if err := decodeFile(path, &queries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueriesLoad, err)
	}
	return queries, nil
}

// decodeFile parses JSON documents with encoding/json and anything else as
// YAML. libyaml rejects tab indentation, which is common in JSON files.
func decodeFile(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if err := json.Unmarshal(trimmed, dest); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
