package commands

import (
	"ctp/internal/cli"
	"ctp/internal/config"
	"ctp/internal/discovery"
	"ctp/internal/execution"
	"ctp/internal/migration"
	"ctp/internal/parser"
	"ctp/internal/rerun"
	"ctp/internal/storage"
	"ctp/internal/ui"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	List    *ListCommand
	Migrate *MigrateCommand
	Faills  *FaillsCommand
	Rerun   *RerunCommand
	Trace   *TraceCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	// Initialize dependencies
	cargoParser := parser.NewCargoParser()
	runner := execution.NewRunner(cfg)
	scheduler := execution.NewRoundRobinScheduler()
	executor := execution.NewWorkerPool(cfg, runner, scheduler, cargoParser)
	jsonStorage := storage.NewJSONStorage(cfg)
	launchStore := storage.NewJSONLaunchStore(cfg)
	formatter := ui.NewFormatter(cfg, discovery.NewParser())
	dbManager := migration.NewDatabaseManager(cfg)
	migrator := migration.NewSqlxMigrator(cfg, dbManager)

	l := &launcher{
		config:   cfg,
		scanner:  discovery.NewScanner(cfg.PathsToIgnore),
		filter:   discovery.NewFilter(),
		executor: executor,
		parser:   cargoParser,
		storage:  jsonStorage,
		launches: launchStore,
		planner:  rerun.NewPlanner(launchStore),
	}
	faills := NewFaillsCommand(cfg, jsonStorage, l)

	return &Commands{
		Run:     NewRunCommand(cfg, l, formatter, migrator, faills),
		List:    NewListCommand(cfg, l, formatter, jsonStorage),
		Migrate: NewMigrateCommand(cfg, migrator),
		Faills:  faills,
		Rerun:   NewRerunCommand(cfg, l, formatter),
		Trace:   NewTraceCommand(),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		cfg.ApplyFlags(flags.ToConfigFlags())
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run cargo tests in parallel",
		Long:    "Discover workspace packages and run cargo test for each of them on parallel workers",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", cfg.Processors, "Number of processors to use")
	runCmd.Flags().BoolVarP(&flags.Migrate, "migrate", "m", false, "Run migrations before executing tests")
	runCmd.Flags().BoolVar(&flags.NoFresh, "no-fresh", false, "Run migrations without resetting the databases (only pending migrations)")
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the cargo workspace")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter packages by name pattern (supports wildcards, e.g., 'app-*' or '*core*')")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first failing package")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only tests that failed in the last run (from storage/test-results.json)")
	runCmd.Flags().BoolVar(&flags.RerunFailures, "rerun-failures", false, "After running all tests, rerun only failed ones once and save that result")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	runCmd.Flags().StringVar(&flags.LaunchName, "name", "", "Name of the launch configuration saved for this run")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered packages",
		Long:    "Scan the cargo workspace and list its packages without executing them",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter packages by name pattern (supports wildcards, e.g., 'app-*' or '*core*')")
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the cargo workspace")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test functions of each package")
	rootCmd.AddCommand(listCmd)

	// Rerun command
	rerunCmd := &cobra.Command{
		Use:     "rerun <test-or-suite>...",
		Short:   "Rerun tests or suites from the last run",
		Long:    "Select nodes of the last run's test tree by name, save a rerun launch configuration for them and execute it",
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.Rerun.Execute,
		PreRunE: applyFlags,
	}
	rerunCmd.Flags().IntVarP(&flags.Processors, "processors", "p", cfg.Processors, "Number of processors to use")
	rerunCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the cargo workspace")
	rerunCmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Print the selector without running anything")
	rootCmd.AddCommand(rerunCmd)

	// Trace command
	traceCmd := &cobra.Command{
		Use:   "trace [file]",
		Short: "Print source locations found in a trace",
		Long:  "Read a backtrace from a file or stdin and print the identifier:line of every frame that points at source",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.Trace.Execute,
	}
	rootCmd.AddCommand(traceCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:     "migrate",
		Short:   "Run database migrations for all test databases",
		Long:    "Execute sqlx migrations in parallel for all test databases used by workers",
		RunE:    c.Migrate.Execute,
		PreRunE: applyFlags,
	}
	migrateCmd.Flags().IntVarP(&flags.Processors, "processors", "p", cfg.Processors, "Number of processors/workers to use")
	migrateCmd.Flags().BoolVar(&flags.NoFresh, "no-fresh", false, "Run migrations without resetting the databases (only pending migrations)")
	migrateCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the cargo workspace")
	rootCmd.AddCommand(migrateCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:     "faills",
		Short:   "View test failures interactively",
		Long:    "Display test failures from the last test run in an interactive viewer",
		RunE:    c.Faills.Execute,
		PreRunE: applyFlags,
	}
	faillsCmd.Flags().IntVarP(&flags.Processors, "processors", "p", cfg.Processors, "Number of processors to use for reruns")
	rootCmd.AddCommand(faillsCmd)
}
