package ui

import "ctp/internal/domain"

// Viewer displays test results in an interactive TUI
type Viewer interface {
	View(results *domain.TestResultsOutput) error
}

// Rerunner reruns a set of failed cases and returns the merged results
type Rerunner interface {
	RerunFailures(failures []domain.TestFailure) (*domain.TestResultsOutput, error)
}
