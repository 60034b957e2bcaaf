package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"ctp/internal/domain"
)

// manifest is the subset of Cargo.toml the scanner reads
type manifest struct {
	Package *struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
}

// Scanner discovers the packages of a Cargo workspace
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all packages of the workspace rooted at root
func (s *Scanner) Scan(root string) ([]domain.Test, error) {
	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	rootManifest := filepath.Join(root, "Cargo.toml")
	m, err := readManifest(rootManifest)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var tests []domain.Test
	add := func(name, manifestPath string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		tests = append(tests, domain.Test{
			Package:      name,
			ManifestPath: manifestPath,
			Dir:          filepath.Dir(manifestPath),
		})
	}

	if m.Package != nil {
		add(m.Package.Name, rootManifest)
	}

	if m.Workspace != nil {
		excluded := make(map[string]bool)
		for _, ex := range m.Workspace.Exclude {
			excluded[filepath.Clean(filepath.Join(root, ex))] = true
		}

		for _, member := range m.Workspace.Members {
			dirs, err := filepath.Glob(filepath.Join(root, member))
			if err != nil {
				return nil, fmt.Errorf("invalid workspace member pattern %q: %w", member, err)
			}
			for _, dir := range dirs {
				if excluded[filepath.Clean(dir)] || s.skipped(root, dir) {
					continue
				}
				memberManifest := filepath.Join(dir, "Cargo.toml")
				if _, err := os.Stat(memberManifest); err != nil {
					continue
				}
				mm, err := readManifest(memberManifest)
				if err != nil {
					return nil, err
				}
				if mm.Package != nil {
					add(mm.Package.Name, memberManifest)
				}
			}
		}
	}

	sort.Slice(tests, func(i, j int) bool { return tests[i].Package < tests[j].Package })
	return tests, nil
}

// skipped reports whether any path element of dir below root is ignored or hidden
func (s *Scanner) skipped(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if s.skipDirs[part] || (strings.HasPrefix(part, ".") && part != "." && part != "..") {
			return true
		}
	}
	return false
}

func readManifest(path string) (*manifest, error) {
	var m manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("error reading manifest %s: %w", path, err)
	}
	return &m, nil
}
