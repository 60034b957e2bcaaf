package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default workspace path, relative to the project
	DefaultTestPath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultLaunchesFile stores saved launch configurations
	DefaultLaunchesFile = "launches.json"
	// DefaultLogFile receives diagnostics while the viewer owns the terminal
	DefaultLogFile = "ctp.log"
	// DefaultProcessors is the default number of processors
	DefaultProcessors = 4
	// DefaultCargoPath is the cargo binary looked up on PATH
	DefaultCargoPath = "cargo"
	// DefaultDatabasePrefix prefixes per-worker database names
	DefaultDatabasePrefix = "testing"
	// DefaultConfigFile is read from the project directory when present
	DefaultConfigFile = ".ctp.yaml"
	// DefaultLaunchName names the configuration recorded for a plain run
	DefaultLaunchName = "cargo test"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for packages and tests
var DefaultPathsToIgnore = []string{
	"target",
	"vendor",
	"node_modules",
	"storage",
	".cargo",
}
