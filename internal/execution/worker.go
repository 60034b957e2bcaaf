package execution

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"ctp/internal/config"
	"ctp/internal/domain"
)

// Progress receives updates while packages complete
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}

// CaseCounter extracts passed and failed case counts from a result
type CaseCounter interface {
	ParseTestCounts(result domain.TestResult) (passed, failed int)
}

// WorkerPool manages a pool of workers for parallel test execution
type WorkerPool struct {
	config    *config.Config
	runner    TestRunner
	scheduler Scheduler
	progress  Progress
	counter   CaseCounter
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner TestRunner, scheduler Scheduler, counter CaseCounter) *WorkerPool {
	return &WorkerPool{
		config:    cfg,
		runner:    runner,
		scheduler: scheduler,
		counter:   counter,
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute executes packages in parallel using worker pool (no fail-fast).
func (wp *WorkerPool) Execute(tests []domain.Test, filters []string) ([]domain.TestResult, time.Duration, error) {
	return wp.ExecuteWithOptions(tests, filters, false)
}

// ExecuteWithOptions executes packages with optional fail-fast (stop on first failure).
func (wp *WorkerPool) ExecuteWithOptions(tests []domain.Test, filters []string, failFast bool) ([]domain.TestResult, time.Duration, error) {
	if len(tests) == 0 {
		return nil, 0, nil
	}
	if !failFast {
		return wp.executeAll(tests, filters)
	}
	return wp.executeFailFast(tests, filters)
}

func (wp *WorkerPool) workerCount(tests int) int {
	workerCount := wp.config.Processors
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > tests {
		workerCount = tests
	}
	return workerCount
}

// tally tracks completed packages and case counts for progress reporting
type tally struct {
	mu        sync.Mutex
	completed int
	passed    int
	failed    int
}

func (wp *WorkerPool) record(t *tally, result domain.TestResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	if wp.counter != nil {
		p, f := wp.counter.ParseTestCounts(result)
		t.passed += p
		t.failed += f
	} else if result.Success {
		t.passed++
	} else {
		t.failed++
	}
	if wp.progress != nil {
		wp.progress.Update(t.completed, t.passed, t.failed)
	}
}

// executeAll runs every package. Each worker gets a fixed share from the
// scheduler, so a package keeps using the same worker database across runs.
func (wp *WorkerPool) executeAll(tests []domain.Test, filters []string) ([]domain.TestResult, time.Duration, error) {
	results := make(chan domain.TestResult, len(tests))
	distribution := wp.scheduler.Schedule(tests, wp.workerCount(len(tests)))

	var t tally
	startTime := time.Now()

	var wg conc.WaitGroup
	for i, share := range distribution {
		workerID := i + 1
		share := share
		wg.Go(func() {
			for _, test := range share {
				result := wp.runner.Run(test, workerID, filters)
				results <- result
				wp.record(&t, result)
			}
		})
	}
	wg.Wait()
	close(results)

	var allResults []domain.TestResult
	for result := range results {
		allResults = append(allResults, result)
	}
	if wp.progress != nil {
		wp.progress.Finish()
	}
	return allResults, time.Since(startTime), nil
}

// executeFailFast runs packages from a shared queue and stops after the first failure.
func (wp *WorkerPool) executeFailFast(tests []domain.Test, filters []string) ([]domain.TestResult, time.Duration, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	testQueue := make(chan domain.Test)
	results := make(chan domain.TestResult, len(tests))

	go func() {
		defer close(testQueue)
		for _, test := range tests {
			select {
			case <-ctx.Done():
				return
			case testQueue <- test:
			}
		}
	}()

	var t tally
	var seenMu sync.Mutex
	var seenFailure bool
	startTime := time.Now()

	var wg conc.WaitGroup
	for i := 1; i <= wp.workerCount(len(tests)); i++ {
		workerID := i
		wg.Go(func() {
			for test := range testQueue {
				result := wp.runner.Run(test, workerID, filters)
				seenMu.Lock()
				done := seenFailure
				if !done && !result.Success {
					seenFailure = true
					cancel()
				}
				seenMu.Unlock()
				if done {
					continue
				}
				results <- result
				wp.record(&t, result)
			}
		})
	}
	wg.Wait()
	close(results)

	var allResults []domain.TestResult
	for result := range results {
		allResults = append(allResults, result)
	}
	if wp.progress != nil {
		wp.progress.Finish()
	}
	return allResults, time.Since(startTime), nil
}
