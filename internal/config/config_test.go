package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_GetTestPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				TestPath:    ".",
				Flags:       Flags{},
			},
			expected: ".",
		},
		{
			name: "with test path flag",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "crates",
				},
			},
			expected: "/project/crates",
		},
		{
			name: "absolute test path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    ".",
				Flags: Flags{
					TestPath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetTestPath()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetDatabaseName(t *testing.T) {
	cfg := New()

	t.Run("default database name", func(t *testing.T) {
		t.Setenv("DB_DATABASE_PREFIX", "")
		name := cfg.GetDatabaseName(1)
		expected := "testing_1"
		if name != expected {
			t.Errorf("expected %s, got %s", expected, name)
		}
	})

	t.Run("prefix from environment", func(t *testing.T) {
		t.Setenv("DB_DATABASE_PREFIX", "webiz_testing")
		for i := 1; i <= 5; i++ {
			name := cfg.GetDatabaseName(i)
			if !strings.HasPrefix(name, "webiz_testing_") {
				t.Errorf("unexpected database name for worker %d: %s", i, name)
			}
		}
	})
}

func TestConfig_GetDatabaseURL(t *testing.T) {
	t.Setenv("DB_DATABASE_PREFIX", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_USERNAME", "ci")
	t.Setenv("DB_PASSWORD", "secret")

	cfg := New()
	expected := "mysql://ci:secret@db:3307/testing_2"
	if got := cfg.GetDatabaseURL(2); got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.Processors != DefaultProcessors {
		t.Errorf("expected Processors %d, got %d", DefaultProcessors, cfg.Processors)
	}

	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}
}

func TestConfig_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	content := `processors: 8
output_dir: .ctp
cargo: /opt/cargo/bin/cargo
cargo_args: ["--features", "integration"]
ignore: [fixtures]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := New()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Processors != 8 {
		t.Errorf("expected 8 processors, got %d", cfg.Processors)
	}
	if cfg.OutputJSONDir != ".ctp" {
		t.Errorf("expected output dir .ctp, got %s", cfg.OutputJSONDir)
	}
	if cfg.CargoPath != "/opt/cargo/bin/cargo" {
		t.Errorf("unexpected cargo path %s", cfg.CargoPath)
	}
	if len(cfg.CargoArgs) != 2 {
		t.Errorf("expected 2 cargo args, got %v", cfg.CargoArgs)
	}
	if cfg.PathsToIgnore[len(cfg.PathsToIgnore)-1] != "fixtures" {
		t.Errorf("expected fixtures to be ignored, got %v", cfg.PathsToIgnore)
	}

	t.Run("missing file is ignored", func(t *testing.T) {
		if err := New().LoadFile(filepath.Join(dir, "nope.yaml")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		os.WriteFile(bad, []byte("processors: [oops"), 0644)
		if err := New().LoadFile(bad); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

func TestConfig_ApplyFlags(t *testing.T) {
	cfg := New()
	cfg.ApplyFlags(Flags{Processors: 2, FailFast: true})
	if cfg.Processors != 2 || !cfg.Flags.FailFast {
		t.Errorf("flags not applied: %+v", cfg)
	}

	cfg.ApplyFlags(Flags{})
	if cfg.Processors != 2 {
		t.Errorf("zero processors flag should keep previous value, got %d", cfg.Processors)
	}
}
