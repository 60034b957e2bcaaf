package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"ctp/internal/config"
	"ctp/internal/domain"
	"ctp/internal/storage"
	"ctp/internal/trace"
	"ctp/internal/ui"
)

// FaillsCommand handles the faills command
type FaillsCommand struct {
	config   *config.Config
	storage  storage.Storage
	rerunner ui.Rerunner
}

// NewFaillsCommand creates a new FaillsCommand
func NewFaillsCommand(cfg *config.Config, st storage.Storage, rerunner ui.Rerunner) *FaillsCommand {
	return &FaillsCommand{
		config:   cfg,
		storage:  st,
		rerunner: rerunner,
	}
}

// Execute runs the command
func (fc *FaillsCommand) Execute(cmd *cobra.Command, args []string) error {
	results, err := fc.storage.Load()
	if err != nil {
		return err
	}

	return fc.View(results)
}

// View opens the failure viewer. The TUI owns the terminal, so malformed
// trace lines are logged to the diagnostics file.
func (fc *FaillsCommand) View(results *domain.TestResultsOutput) error {
	logPath := fc.config.GetLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	locator := trace.NewLocator(ui.NewDiagnostics(logFile))
	viewer := ui.NewErrorViewer(fc.config, fc.storage, locator, fc.rerunner)
	return viewer.View(results)
}
