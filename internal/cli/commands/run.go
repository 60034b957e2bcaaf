package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"ctp/internal/config"
	"ctp/internal/domain"
	"ctp/internal/migration"
	"ctp/internal/selector"
	"ctp/internal/testtree"
	"ctp/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	launcher  *launcher
	formatter *ui.Formatter
	migrator  migration.Migrator
	faills    *FaillsCommand
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	l *launcher,
	formatter *ui.Formatter,
	migrator migration.Migrator,
	faills *FaillsCommand,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		launcher:  l,
		formatter: formatter,
		migrator:  migrator,
		faills:    faills,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	// Run migrations if flag is set
	if rc.config.Flags.Migrate {
		if err := rc.migrator.Run(rc.config.Processors, rc.config.Flags.NoFresh); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println()
	}

	tests, err := rc.launcher.discover()
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	origin, err := rc.launcher.newOrigin(packageNames(tests))
	if err != nil {
		return err
	}

	launch := origin
	if rc.config.Flags.OnlyFailed {
		launch, tests, err = rc.planFailed(origin, tests)
		if err != nil {
			return err
		}
		if launch == nil {
			color.Green("No failed tests in the last run")
			return nil
		}
	}

	out, err := rc.launcher.execute(launch, tests, rc.config.Flags.FailFast)
	if err != nil {
		return err
	}

	results, err := rc.launcher.save(launch, out)
	if err != nil {
		return err
	}

	if rc.config.Flags.RerunFailures && len(results.Details) > 0 {
		color.Yellow("\nRerunning %d failed test(s) once...", len(results.Details))
		results, err = rc.launcher.RerunFailures(results.Details)
		if err != nil {
			return fmt.Errorf("rerun failures: %w", err)
		}
	}

	rc.formatter.ClearScreen()
	rc.formatter.PrintMetaStats(results)

	if rc.config.Flags.OpenFaills && len(results.Details) > 0 {
		return rc.faills.View(results)
	}
	return nil
}

// planFailed narrows a run to the cases that failed last time. It returns a
// nil configuration when the last run had no failures.
func (rc *RunCommand) planFailed(origin *domain.LaunchConfiguration, tests []domain.Test) (*domain.LaunchConfiguration, []domain.Test, error) {
	previous, err := rc.launcher.storage.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("no previous run found, run without --failed first")
	}
	if err != nil {
		return nil, nil, err
	}

	nodes := nodesForFailures(testtree.Build(previous.Cases), previous.Details)
	launch, err := rc.launcher.planner.Plan(origin, nodes)
	if err != nil || launch == nil {
		return nil, nil, err
	}

	tests = rc.launcher.filter.FilterByPackages(tests, packagesOf(nodes))
	color.Cyan("Running %d package(s) with filter %q", len(tests), selectorOf(launch))
	return launch, tests, nil
}

func selectorOf(cfg *domain.LaunchConfiguration) string {
	return cfg.Attribute(rerunAttribute, selector.Everything)
}
