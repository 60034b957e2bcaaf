package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create file %s: %v", path, err)
	}
}

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "Cargo.toml"), `
[package]
name = "app"
version = "0.1.0"

[workspace]
members = ["crates/*", "tools/cli"]
exclude = ["crates/experimental"]
`)
	writeFile(t, filepath.Join(tmpDir, "crates/core/Cargo.toml"), "[package]\nname = \"app-core\"\n")
	writeFile(t, filepath.Join(tmpDir, "crates/api/Cargo.toml"), "[package]\nname = \"app-api\"\n")
	writeFile(t, filepath.Join(tmpDir, "crates/experimental/Cargo.toml"), "[package]\nname = \"app-experimental\"\n")
	writeFile(t, filepath.Join(tmpDir, "crates/notes/README.md"), "not a crate")
	writeFile(t, filepath.Join(tmpDir, "tools/cli/Cargo.toml"), "[package]\nname = \"app-cli\"\n")

	scanner := NewScanner([]string{"target", "vendor"})

	t.Run("scans workspace members correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{"app", "app-api", "app-cli", "app-core"}
		if len(results) != len(expected) {
			t.Fatalf("expected %d packages, got %d: %+v", len(expected), len(results), results)
		}
		for i, name := range expected {
			if results[i].Package != name {
				t.Errorf("expected package %s at %d, got %s", name, i, results[i].Package)
			}
		}
		if results[1].Dir != filepath.Join(tmpDir, "crates/api") {
			t.Errorf("unexpected package dir %s", results[1].Dir)
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "Cargo.toml"))
		if err == nil {
			t.Error("expected error for file path")
		}
	})

	t.Run("returns error without manifest", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "crates/notes"))
		if err == nil {
			t.Error("expected error for directory without Cargo.toml")
		}
	})
}

func TestScanner_SkipsIgnoredMembers(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "Cargo.toml"), "[workspace]\nmembers = [\"*\", \"vendor/*\"]\n")
	writeFile(t, filepath.Join(tmpDir, "lib/Cargo.toml"), "[package]\nname = \"lib\"\n")
	writeFile(t, filepath.Join(tmpDir, "vendor/dep/Cargo.toml"), "[package]\nname = \"dep\"\n")
	writeFile(t, filepath.Join(tmpDir, ".hidden/Cargo.toml"), "[package]\nname = \"hidden\"\n")

	results, err := NewScanner([]string{"vendor"}).Scan(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Package != "lib" {
		t.Errorf("expected only lib, got %+v", results)
	}
}
