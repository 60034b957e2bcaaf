package execution

import (
	"time"

	"ctp/internal/domain"
)

// Executor executes tests and returns results
type Executor interface {
	Execute(tests []domain.Test, filters []string) ([]domain.TestResult, time.Duration, error)
	ExecuteWithOptions(tests []domain.Test, filters []string, failFast bool) ([]domain.TestResult, time.Duration, error)
	SetProgress(progress Progress)
}

var _ Executor = (*WorkerPool)(nil)

// TestRunner runs cargo test for a single package
type TestRunner interface {
	Run(test domain.Test, workerID int, filters []string) domain.TestResult
}
