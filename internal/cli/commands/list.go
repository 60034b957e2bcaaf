package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"ctp/internal/config"
	"ctp/internal/storage"
	"ctp/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	launcher  *launcher
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	l *launcher,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		launcher:  l,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	tests, err := lc.launcher.discover()
	if err != nil {
		return err
	}

	if len(tests) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	// Packages that failed last run are marked; no previous run is fine
	var failed map[string]struct{}
	if previous, err := lc.storage.Load(); err == nil {
		failed = previous.FailedPackages()
	}

	return lc.formatter.PrintTestList(tests, lc.config.Flags.TestCases, failed)
}
