package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// testFnPattern matches functions annotated with #[test], #[tokio::test], #[rstest] etc.,
// allowing further attributes between the annotation and the fn:
//
//	#[test]
//	#[should_panic]
//	fn it_panics() {}
//
//	#[tokio::test(flavor = "multi_thread")]
//	async fn it_connects() {}
var testFnPattern = regexp.MustCompile(`(?m)#\[(?:\w+::)*(?:test|rstest|test_case)(?:\([^\]]*\))?\]\s*(?:(?://[^\n]*|#\[[^\]]*\])\s*)*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+(\w+)`)

// FileCases groups the test cases found in one source file
type FileCases struct {
	File  string
	Cases []string
}

// Parser parses Rust source files to extract test cases
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// FindTestCases finds all test functions in a source file
func (p *Parser) FindTestCases(filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	testCasesMap := make(map[string]bool) // Use map to avoid duplicates
	for _, match := range testFnPattern.FindAllStringSubmatch(string(content), -1) {
		if len(match) > 1 {
			testCasesMap[match[1]] = true
		}
	}

	var testCases []string
	for testCase := range testCasesMap {
		testCases = append(testCases, testCase)
	}

	// Sort for consistent output
	sort.Strings(testCases)

	return testCases, nil
}

// FindPackageTestCases walks the src and tests directories of a package
func (p *Parser) FindPackageTestCases(dir string) ([]FileCases, error) {
	var files []FileCases
	for _, sub := range []string{"src", "tests", "benches"} {
		root := filepath.Join(dir, sub)
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".rs") {
				return nil
			}
			cases, err := p.FindTestCases(path)
			if err != nil {
				return err
			}
			if len(cases) > 0 {
				files = append(files, FileCases{File: path, Cases: cases})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
