package migration

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc"
	"ctp/internal/config"
	"ctp/internal/domain"
)

// SqlxMigrator runs sqlx-cli migrations against every worker database
type SqlxMigrator struct {
	config          *config.Config
	databaseManager *DatabaseManager
}

// NewSqlxMigrator creates a new SqlxMigrator
func NewSqlxMigrator(cfg *config.Config, dbManager *DatabaseManager) *SqlxMigrator {
	return &SqlxMigrator{
		config:          cfg,
		databaseManager: dbManager,
	}
}

// Run executes migrations in parallel for all workers
func (sm *SqlxMigrator) Run(workerCount int, noFresh bool) error {
	color.Cyan("\n╔════════════════════════════════════════════════════════════╗")
	color.Cyan("║               Running Database Migrations                  ║")
	color.Cyan("╚════════════════════════════════════════════════════════════╝\n")

	availableWorkers, err := sm.databaseManager.CheckAndCreateDatabases(workerCount)
	if err != nil {
		return fmt.Errorf("failed to check databases: %w", err)
	}

	if len(availableWorkers) == 0 {
		return fmt.Errorf("no test databases available")
	}

	migrationFiles, err := sm.findMigrationFiles()
	if err != nil {
		return fmt.Errorf("failed to find migration files: %w", err)
	}

	totalProgress := len(availableWorkers) * len(migrationFiles)
	color.White("Workers: %d | Migration files: %d | Total progress: %d\n\n", len(availableWorkers), len(migrationFiles), totalProgress)

	var progressMu sync.Mutex
	completedCount := 0

	bar := progressbar.NewOptions(totalProgress,
		progressbar.OptionSetDescription(
			color.CyanString("Migrating: ")+
				color.GreenString("[completed: 0/%d]", totalProgress),
		),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	onApplied := func() {
		progressMu.Lock()
		completedCount++
		current := completedCount
		progressMu.Unlock()

		bar.Set(current)
		bar.Describe(color.CyanString("Migrating: ") +
			color.GreenString("[completed: %d/%d]", current, totalProgress))
	}

	results := make(chan domain.MigrationResult, len(availableWorkers))
	startTime := time.Now()

	var wg conc.WaitGroup
	for _, workerID := range availableWorkers {
		id := workerID
		wg.Go(func() {
			results <- sm.runMigrationForWorker(id, noFresh, onApplied)
		})
	}
	wg.Wait()
	close(results)

	var failedMigrations []domain.MigrationResult
	for result := range results {
		if !result.Success {
			failedMigrations = append(failedMigrations, result)
		}
	}

	bar.Finish()
	duration := time.Since(startTime)

	fmt.Print("\n")
	if len(failedMigrations) > 0 {
		color.Red("✗ Migration failed for %d worker(s)\n", len(failedMigrations))
		for _, result := range failedMigrations {
			color.Red("  Worker %d (DB: %s): %v\n", result.WorkerID, sm.config.GetDatabaseName(result.WorkerID), result.Error)
		}
		return fmt.Errorf("migration failed for %d worker(s)", len(failedMigrations))
	}

	color.Green("✓ Migrations completed successfully for all %d workers\n", len(availableWorkers))
	color.White("Duration: %s\n", duration.Round(time.Millisecond))
	return nil
}

// findMigrationFiles discovers the .sql files sqlx applies from migrations/
func (sm *SqlxMigrator) findMigrationFiles() ([]string, error) {
	migrationsPath := filepath.Join(sm.config.GetTestPath(), "migrations")
	var migrationFiles []string

	err := filepath.WalkDir(migrationsPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		// Reversible migrations ship a .down.sql that is not applied going up
		if strings.HasSuffix(d.Name(), ".sql") && !strings.HasSuffix(d.Name(), ".down.sql") {
			migrationFiles = append(migrationFiles, path)
		}
		return nil
	})

	return migrationFiles, err
}

// Args returns the sqlx arguments for a worker database
func (sm *SqlxMigrator) Args(workerID int, noFresh bool) []string {
	url := sm.config.GetDatabaseURL(workerID)
	if noFresh {
		return []string{"migrate", "run", "--database-url", url}
	}
	return []string{"database", "reset", "-y", "--database-url", url}
}

// runMigrationForWorker runs sqlx with streaming output, counting applied migrations
func (sm *SqlxMigrator) runMigrationForWorker(workerID int, noFresh bool, onApplied func()) domain.MigrationResult {
	dir, err := filepath.Abs(sm.config.GetTestPath())
	if err != nil {
		return domain.MigrationResult{
			WorkerID: workerID,
			Error:    fmt.Errorf("failed to get absolute project path: %w", err),
		}
	}

	cmd := exec.CommandContext(context.Background(), "sqlx", sm.Args(workerID, noFresh)...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("DATABASE_URL=%s", sm.config.GetDatabaseURL(workerID)))
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return domain.MigrationResult{WorkerID: workerID, Error: fmt.Errorf("failed to create stdout pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return domain.MigrationResult{WorkerID: workerID, Error: fmt.Errorf("failed to create stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return domain.MigrationResult{WorkerID: workerID, Error: fmt.Errorf("failed to start command: %w", err)}
	}

	var outputMu sync.Mutex
	var outputBuilder strings.Builder
	stream := func(r io.Reader) {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			outputMu.Lock()
			outputBuilder.WriteString(line)
			outputBuilder.WriteString("\n")
			outputMu.Unlock()
			if strings.HasPrefix(strings.TrimSpace(line), "Applied ") {
				onApplied()
			}
		}
	}

	var scanWg conc.WaitGroup
	scanWg.Go(func() { stream(stdout) })
	scanWg.Go(func() { stream(stderr) })
	scanWg.Wait()

	err = cmd.Wait()

	return domain.MigrationResult{
		WorkerID: workerID,
		Success:  err == nil,
		Output:   outputBuilder.String(),
		Error:    err,
	}
}
