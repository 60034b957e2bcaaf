package execution

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"ctp/internal/config"
	"ctp/internal/domain"
)

// Runner executes cargo test for a single package
type Runner struct {
	config *config.Config
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{config: cfg}
}

// Args returns the cargo arguments for a package and libtest filters
func (r *Runner) Args(test domain.Test, filters []string) []string {
	args := []string{"test", "-p", test.Package, "--no-fail-fast"}
	args = append(args, r.config.CargoArgs...)
	if len(filters) > 0 {
		args = append(args, "--")
		args = append(args, filters...)
	}
	return args
}

// Run executes cargo test for a single package
func (r *Runner) Run(test domain.Test, workerID int, filters []string) domain.TestResult {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, r.config.CargoPath, r.Args(test, filters)...)

	// Set environment variables
	cmd.Env = os.Environ() // Start with current environment
	cmd.Env = append(cmd.Env,
		"CARGO_TERM_COLOR=never",
		fmt.Sprintf("DATABASE_URL=%s", r.config.GetDatabaseURL(workerID)),
		fmt.Sprintf("DB_DATABASE=%s", r.config.GetDatabaseName(workerID)),
	)

	// Set working directory
	cmd.Dir = r.config.GetTestPath()

	start := time.Now()
	output, err := cmd.CombinedOutput()

	return domain.TestResult{
		Package:  test.Package,
		Success:  err == nil,
		Output:   string(output),
		Error:    err,
		Duration: time.Since(start),
	}
}
