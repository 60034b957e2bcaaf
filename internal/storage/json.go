package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ctp/internal/domain"
)

// Save writes a run's results, cases and failures to the configured JSON output file.
func (s *JSONStorage) Save(run Run) error {
	passed := 0
	failed := 0
	for _, r := range run.Results {
		if r.Success {
			passed++
		} else {
			failed++
		}
	}

	failedCases := 0
	for _, c := range run.Cases {
		if c.Status == domain.CaseFailed {
			failedCases++
		}
	}

	output := domain.TestResultsOutput{
		Meta: domain.TestResultsMeta{
			RunID:           run.ID,
			LaunchID:        run.LaunchID,
			TotalPackages:   len(run.Results),
			FailedPackages:  failed,
			PassedPackages:  passed,
			TotalTestCases:  len(run.Cases),
			FailedTestCases: failedCases,
			Duration:        run.Duration.String(),
			DurationSeconds: run.Duration.Seconds(),
			Workers:         run.Workers,
			Timestamp:       time.Now().Format(time.RFC3339),
		},
		Cases:   run.Cases,
		Details: run.Failures,
	}

	return s.SaveOutput(&output)
}

// Load reads the last test results from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.TestResultsOutput, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.TestResultsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file (e.g. after re-running selected tests).
func (s *JSONStorage) SaveOutput(output *domain.TestResultsOutput) error {
	return writeJSON(s.cfg.GetOutputPath(), output)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
