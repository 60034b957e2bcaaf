package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string
	LaunchesFile   string
	LogFile        string

	// Execution settings
	Processors int
	CargoPath  string
	CargoArgs  []string

	// Database settings
	DatabasePrefix string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Processors    int
	Migrate       bool
	NoFresh       bool
	TestPath      string
	NameFilter    string
	TestCases     bool
	FailFast      bool
	OnlyFailed    bool
	RerunFailures bool
	OpenFaills    bool
	DryRun        bool
	LaunchName    string
}

// FileConfig is the shape of the optional .ctp.yaml file
type FileConfig struct {
	Processors     int      `yaml:"processors"`
	TestPath       string   `yaml:"test_path"`
	OutputDir      string   `yaml:"output_dir"`
	OutputFile     string   `yaml:"output_file"`
	Cargo          string   `yaml:"cargo"`
	CargoArgs      []string `yaml:"cargo_args"`
	DatabasePrefix string   `yaml:"database_prefix"`
	Ignore         []string `yaml:"ignore"`
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		LaunchesFile:   DefaultLaunchesFile,
		LogFile:        DefaultLogFile,
		Processors:     DefaultProcessors,
		CargoPath:      DefaultCargoPath,
		DatabasePrefix: DefaultDatabasePrefix,
		Flags:          Flags{Processors: DefaultProcessors},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config, applies the project's config file and then flags
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.LoadFile(filepath.Join(cfg.ProjectPath, DefaultConfigFile)); err != nil {
		return nil, err
	}
	cfg.ApplyFlags(flags)
	return cfg, nil
}

// LoadFile merges a YAML config file into c. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Processors > 0 {
		c.Processors = fc.Processors
		c.Flags.Processors = fc.Processors
	}
	if fc.TestPath != "" {
		c.TestPath = fc.TestPath
	}
	if fc.OutputDir != "" {
		c.OutputJSONDir = fc.OutputDir
	}
	if fc.OutputFile != "" {
		c.OutputJSONFile = fc.OutputFile
	}
	if fc.Cargo != "" {
		c.CargoPath = fc.Cargo
	}
	if len(fc.CargoArgs) > 0 {
		c.CargoArgs = fc.CargoArgs
	}
	if fc.DatabasePrefix != "" {
		c.DatabasePrefix = fc.DatabasePrefix
	}
	if len(fc.Ignore) > 0 {
		c.PathsToIgnore = append(c.PathsToIgnore, fc.Ignore...)
	}
	return nil
}

// ApplyFlags copies parsed command flags into the config
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
}

// GetTestPath returns the workspace path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to ProjectPath if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run, rerun and faills always share the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	return c.storagePath(c.OutputJSONFile)
}

// GetLaunchesPath returns the full path to the saved launch configurations
func (c *Config) GetLaunchesPath() string {
	return c.storagePath(c.LaunchesFile)
}

// GetLogPath returns the full path to the diagnostics log
func (c *Config) GetLogPath() string {
	return c.storagePath(c.LogFile)
}

func (c *Config) storagePath(name string) string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, name)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetDatabaseName returns the database name for a worker
func (c *Config) GetDatabaseName(workerID int) string {
	prefix := os.Getenv("DB_DATABASE_PREFIX")
	if prefix == "" {
		prefix = c.DatabasePrefix
	}
	if prefix == "" {
		prefix = DefaultDatabasePrefix
	}
	return fmt.Sprintf("%s_%d", prefix, workerID)
}

// GetDatabaseURL returns the DATABASE_URL handed to tests and sqlx for a worker
func (c *Config) GetDatabaseURL(workerID int) string {
	host := getenv("DB_HOST", "127.0.0.1")
	port := getenv("DB_PORT", "3306")
	user := getenv("DB_USERNAME", "root")
	password := os.Getenv("DB_PASSWORD")

	auth := user
	if password != "" {
		auth = user + ":" + password
	}
	return fmt.Sprintf("mysql://%s@%s:%s/%s", auth, host, port, c.GetDatabaseName(workerID))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
