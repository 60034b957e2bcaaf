package discovery

import (
	"path/filepath"
	"strings"

	"ctp/internal/domain"
)

// Filter filters packages by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters packages by name pattern using wildcard matching
// Supports patterns like "*-core" or "*api*"
func (f *Filter) FilterByName(tests []domain.Test, pattern string) []domain.Test {
	if pattern == "" {
		return tests
	}

	var filtered []domain.Test
	for _, test := range tests {
		if matchName(pattern, test.Package) {
			filtered = append(filtered, test)
		}
	}
	return filtered
}

// FilterByPackages keeps only the named packages, preserving order
func (f *Filter) FilterByPackages(tests []domain.Test, packages map[string]struct{}) []domain.Test {
	var filtered []domain.Test
	for _, test := range tests {
		if _, ok := packages[test.Package]; ok {
			filtered = append(filtered, test)
		}
	}
	return filtered
}

func matchName(pattern, name string) bool {
	// Try to match using filepath.Match (supports * and ? wildcards)
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.Contains(pattern, "*") && !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}

	// Fall back to checking that every non-wildcard part occurs in the name,
	// for patterns like "*api*" that filepath.Match rejects on separators
	if !strings.Contains(pattern, "*") {
		return false
	}
	hasNonEmptyPart := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		hasNonEmptyPart = true
		if !strings.Contains(name, part) {
			return false
		}
	}
	return hasNonEmptyPart
}
