// Package report writes evaluation reports to disk.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/godilite/audit-eval/internal/evaluator"
)

var ErrWriteReport = errors.New("failed to write report")

// Write stores report as two-space indented JSON at path, replacing any
// existing file. The file is written next to its destination and renamed
// into place so readers never see a partial report.
func Write(path string, report evaluator.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrWriteReport, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	return nil
}
